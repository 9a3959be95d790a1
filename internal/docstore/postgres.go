package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is satisfied by *pgxpool.Pool and pgx.Conn.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// execer is the part of DB and pgx.Tx that single writes need.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    collection  TEXT        NOT NULL,
    id          TEXT        NOT NULL,
    data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
    row_version BIGINT      NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_gin ON documents USING GIN (data jsonb_path_ops);
`

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

const selectDocument = `SELECT id, data, row_version, created_at, updated_at FROM documents`

func scanDocument(row pgx.Row) (*Document, error) {
	var (
		doc  Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &data, &doc.RowVersion, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Data = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc.Data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
	}
	return &doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	row := s.db.QueryRow(ctx, selectDocument+` WHERE collection=$1 AND id=$2`, collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error) {
	where, args, empty, err := buildWhere(collection, filters)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, selectDocument+" WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// buildWhere translates filters into SQL. Equality and array-contains use
// JSONB containment so the GIN index applies. empty reports an IN filter
// with no values, which matches nothing.
func buildWhere(collection string, filters []Filter) (where string, args []any, empty bool, err error) {
	clauses := []string{"collection=$1"}
	args = []any{collection}

	for _, f := range filters {
		parts, perr := splitPath(f.Field)
		if perr != nil {
			return "", nil, false, fmt.Errorf("%w: empty field", ErrInvalidFilter)
		}
		switch f.Op {
		case OpEqual, OpArrayContains:
			v, nerr := normalize(f.Value)
			if nerr != nil {
				return "", nil, false, nerr
			}
			if f.Op == OpArrayContains {
				v = []any{v}
			}
			b, merr := json.Marshal(nestUnder(parts, v))
			if merr != nil {
				return "", nil, false, merr
			}
			args = append(args, string(b))
			clauses = append(clauses, fmt.Sprintf("data @> $%d::jsonb", len(args)))
		case OpIn:
			values, ierr := inValues(f)
			if ierr != nil {
				return "", nil, false, ierr
			}
			if len(values) == 0 {
				return "", nil, true, nil
			}
			args = append(args, parts, values)
			clauses = append(clauses, fmt.Sprintf("(data #>> $%d::text[]) = ANY($%d::text[])", len(args)-1, len(args)))
		default:
			return "", nil, false, fmt.Errorf("%w: unsupported op %q", ErrInvalidFilter, f.Op)
		}
	}
	return strings.Join(clauses, " AND "), args, false, nil
}

// nestUnder turns ["a","b"], v into {"a":{"b":v}}.
func nestUnder(parts []string, v any) map[string]any {
	out := map[string]any{parts[len(parts)-1]: v}
	for i := len(parts) - 2; i >= 0; i-- {
		out = map[string]any{parts[i]: out}
	}
	return out
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data any) error {
	return setDocument(ctx, s.db, collection, id, data)
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch Patch) error {
	return updateDocument(ctx, s.db, collection, id, patch)
}

func (s *PostgresStore) UpdateIfVersion(ctx context.Context, collection, id string, data any, expected int64) (bool, error) {
	return updateIfVersion(ctx, s.db, collection, id, data, expected)
}

func updateIfVersion(ctx context.Context, db execer, collection, id string, data any, expected int64) (bool, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return false, err
	}
	tag, err := db.Exec(ctx, `
        UPDATE documents SET data=$3::jsonb, row_version=row_version+1, updated_at=NOW()
        WHERE collection=$1 AND id=$2 AND row_version=$4
    `, collection, id, string(b), expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// setDocumentIfVersion fails the surrounding transaction when the row moved on.
func setDocumentIfVersion(ctx context.Context, db execer, collection, id string, data any, expected int64) error {
	ok, err := updateIfVersion(ctx, db, collection, id, data, expected)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set %s/%s at version %d: %w", collection, id, expected, ErrVersionConflict)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	return err
}

func (s *PostgresStore) Commit(ctx context.Context, writes []Write) error {
	if len(writes) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, w := range writes {
		switch w.Kind {
		case WriteSet:
			err = setDocument(ctx, tx, w.Collection, w.ID, w.Data)
		case WriteSetIfVersion:
			err = setDocumentIfVersion(ctx, tx, w.Collection, w.ID, w.Data, w.Expected)
		case WriteUpdate:
			err = updateDocument(ctx, tx, w.Collection, w.ID, w.Patch)
		case WriteDelete:
			_, err = tx.Exec(ctx, `DELETE FROM documents WHERE collection=$1 AND id=$2`, w.Collection, w.ID)
		default:
			err = fmt.Errorf("docstore: unknown write kind %d", w.Kind)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func setDocument(ctx context.Context, db execer, collection, id string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
        INSERT INTO documents (collection, id, data, row_version, created_at, updated_at)
        VALUES ($1, $2, $3::jsonb, 1, NOW(), NOW())
        ON CONFLICT (collection, id) DO UPDATE SET
            data=EXCLUDED.data,
            row_version=documents.row_version+1,
            updated_at=NOW()
    `, collection, id, string(b))
	return err
}

// updateDocument chains one jsonb_set per patched path, so sibling fields
// written concurrently by other clients are left alone.
func updateDocument(ctx context.Context, db execer, collection, id string, patch Patch) error {
	paths := make([]string, 0, len(patch))
	for p := range patch {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	expr := "data"
	args := []any{collection, id}
	var guards []string
	for _, p := range paths {
		parts, err := splitPath(p)
		if err != nil {
			return err
		}
		b, err := json.Marshal(patch[p])
		if err != nil {
			return err
		}
		args = append(args, parts, string(b))
		pathArg := len(args) - 1
		expr = fmt.Sprintf("jsonb_set(%s, $%d::text[], $%d::jsonb, true)", expr, pathArg, len(args))

		// jsonb_set silently skips a missing parent and appends past the end
		// of an array; both are rejected like the memory store does.
		if len(parts) > 1 {
			args = append(args, parts[:len(parts)-1])
			parent := fmt.Sprintf("data #> $%d::text[]", len(args))
			guards = append(guards, fmt.Sprintf(
				"(jsonb_typeof(%s) = 'object' OR (jsonb_typeof(%s) = 'array' AND data #> $%d::text[] IS NOT NULL))",
				parent, parent, pathArg))
		}
	}

	where := "collection=$1 AND id=$2"
	for _, g := range guards {
		where += " AND " + g
	}
	tag, err := db.Exec(ctx,
		"UPDATE documents SET data="+expr+", row_version=row_version+1, updated_at=NOW() WHERE "+where,
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if len(guards) > 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE collection=$1 AND id=$2)`,
			collection, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("update %s/%s: %w: missing parent or index out of range", collection, id, ErrInvalidPatch)
		}
	}
	return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
}
