// Package docstore is a small document database facade: JSON documents keyed by
// (collection, id) with field filters, dotted-path patches and atomic batches.
// Limits mirror the hosted document store the data was first written to, so
// callers must chunk IN queries and batch writes the same way.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxBatchOps is the largest number of writes one Commit accepts.
	MaxBatchOps = 500
	// MaxInValues is the largest value list an OpIn filter accepts.
	MaxInValues = 10
)

var (
	ErrNotFound        = errors.New("docstore: document not found")
	ErrBatchTooLarge   = fmt.Errorf("docstore: batch exceeds %d writes", MaxBatchOps)
	ErrInTooLarge      = fmt.Errorf("docstore: in filter exceeds %d values", MaxInValues)
	ErrInvalidFilter   = errors.New("docstore: invalid filter")
	ErrInvalidPatch    = errors.New("docstore: invalid patch path")
	ErrVersionConflict = errors.New("docstore: row version conflict")
)

// Collection names.
const (
	Organizations = "organizations"
	Users         = "users"
	Roles         = "roles"
	Properties    = "properties"
	Rent          = "rent"
	Payments      = "payments"
	Invoices      = "invoices"
	Tenants       = "tenants"
)

type Op string

const (
	OpEqual         Op = "=="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
)

// Filter matches a dotted field path against a value. OpIn takes a []string.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Document struct {
	ID         string
	Data       map[string]any
	RowVersion int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DataTo decodes the document into dst (a pointer to a struct).
func (d *Document) DataTo(dst any) error {
	b, err := json.Marshal(d.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Patch maps dotted field paths ("buildingDetails.floors.0.spaces.1.status")
// to new values. Only the named paths are written.
type Patch map[string]any

type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteUpdate
	WriteDelete
	// WriteSetIfVersion replaces an existing document only while its row
	// version still equals Expected; otherwise the whole commit fails with
	// ErrVersionConflict.
	WriteSetIfVersion
)

type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       any
	Patch      Patch
	Expected   int64
}

func SetWrite(collection, id string, data any) Write {
	return Write{Kind: WriteSet, Collection: collection, ID: id, Data: data}
}

func UpdateWrite(collection, id string, patch Patch) Write {
	return Write{Kind: WriteUpdate, Collection: collection, ID: id, Patch: patch}
}

func SetIfVersionWrite(collection, id string, data any, expected int64) Write {
	return Write{Kind: WriteSetIfVersion, Collection: collection, ID: id, Data: data, Expected: expected}
}

func DeleteWrite(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// Store is implemented by PostgresStore and MemoryStore.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error)
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id string, patch Patch) error
	UpdateIfVersion(ctx context.Context, collection, id string, data any, expected int64) (bool, error)
	Delete(ctx context.Context, collection, id string) error
	// Commit applies all writes atomically or none of them.
	Commit(ctx context.Context, writes []Write) error
}

/* ------------------------------------------------------------------
   shared helpers
------------------------------------------------------------------ */

// toMap converts any JSON-encodable value into its generic map form.
func toMap(data any) (map[string]any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// normalize converts v into the generic JSON value space (float64, string,
// bool, []any, map[string]any, nil) so comparisons are type-stable.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrInvalidPatch
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPatch, path)
		}
	}
	return parts, nil
}

func getPath(root map[string]any, parts []string) (any, bool) {
	var cur any = root
	for _, part := range parts {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// setPath writes value at parts, creating intermediate objects. Array
// elements must already exist.
// setPath writes value at parts. Every parent must already exist and array
// indices must be in range; only the last object key may be new.
func setPath(root map[string]any, parts []string, value any) error {
	var cur any = root
	for i, part := range parts {
		last := i == len(parts)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[part] = value
				return nil
			}
			next, ok := node[part]
			if !ok || next == nil {
				return fmt.Errorf("%w: %q does not exist", ErrInvalidPatch, strings.Join(parts[:i+1], "."))
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("%w: index %q out of range", ErrInvalidPatch, part)
			}
			if last {
				node[idx] = value
				return nil
			}
			cur = node[idx]
		default:
			return fmt.Errorf("%w: %q is not a container", ErrInvalidPatch, strings.Join(parts[:i], "."))
		}
	}
	return nil
}

func inValues(f Filter) ([]string, error) {
	values, ok := f.Value.([]string)
	if !ok {
		return nil, fmt.Errorf("%w: %s in expects []string", ErrInvalidFilter, f.Field)
	}
	if len(values) > MaxInValues {
		return nil, ErrInTooLarge
	}
	return values, nil
}

func matches(data map[string]any, f Filter) (bool, error) {
	parts, err := splitPath(f.Field)
	if err != nil {
		return false, fmt.Errorf("%w: empty field", ErrInvalidFilter)
	}
	got, ok := getPath(data, parts)
	switch f.Op {
	case OpEqual:
		want, err := normalize(f.Value)
		if err != nil {
			return false, err
		}
		if !ok {
			return want == nil, nil
		}
		return reflect.DeepEqual(got, want), nil
	case OpIn:
		values, err := inValues(f)
		if err != nil {
			return false, err
		}
		s, isStr := got.(string)
		if !ok || !isStr {
			return false, nil
		}
		for _, v := range values {
			if v == s {
				return true, nil
			}
		}
		return false, nil
	case OpArrayContains:
		want, err := normalize(f.Value)
		if err != nil {
			return false, err
		}
		arr, isArr := got.([]any)
		if !ok || !isArr {
			return false, nil
		}
		for _, el := range arr {
			if reflect.DeepEqual(el, want) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: unsupported op %q", ErrInvalidFilter, f.Op)
	}
}
