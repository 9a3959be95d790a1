package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memDoc struct {
	data      map[string]any
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps documents in process memory. It backs the service tests
// and local runs without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]memDoc
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cols: map[string]map[string]memDoc{},
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.cols[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return toDocument(id, d)
}

func (s *MemoryStore) Query(_ context.Context, collection string, filters ...Filter) ([]*Document, error) {
	for _, f := range filters {
		if f.Op == OpIn {
			if _, err := inValues(f); err != nil {
				return nil, err
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.cols[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*Document
	for _, id := range ids {
		d := col[id]
		keep := true
		for _, f := range filters {
			ok, err := matches(d.data, f)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		doc, err := toDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	return s.Commit(ctx, []Write{SetWrite(collection, id, data)})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch Patch) error {
	return s.Commit(ctx, []Write{UpdateWrite(collection, id, patch)})
}

func (s *MemoryStore) UpdateIfVersion(_ context.Context, collection, id string, data any, expected int64) (bool, error) {
	m, err := toMap(data)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cols[collection][id]
	if !ok {
		return false, ErrNotFound
	}
	if d.version != expected {
		return false, nil
	}
	s.cols[collection][id] = memDoc{data: m, version: d.version + 1, createdAt: d.createdAt, updatedAt: s.now()}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.Commit(ctx, []Write{DeleteWrite(collection, id)})
}

// Commit stages every write on a copy of the touched collections and swaps
// them in only when all writes succeed.
func (s *MemoryStore) Commit(_ context.Context, writes []Write) error {
	if len(writes) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := map[string]map[string]memDoc{}
	colFor := func(name string) map[string]memDoc {
		if c, ok := staged[name]; ok {
			return c
		}
		c := make(map[string]memDoc, len(s.cols[name]))
		for k, v := range s.cols[name] {
			c[k] = v
		}
		staged[name] = c
		return c
	}

	now := s.now()
	for _, w := range writes {
		col := colFor(w.Collection)
		switch w.Kind {
		case WriteSet:
			m, err := toMap(w.Data)
			if err != nil {
				return err
			}
			prev, existed := col[w.ID]
			d := memDoc{data: m, version: 1, createdAt: now, updatedAt: now}
			if existed {
				d.version = prev.version + 1
				d.createdAt = prev.createdAt
			}
			col[w.ID] = d
		case WriteSetIfVersion:
			prev, existed := col[w.ID]
			if !existed {
				return fmt.Errorf("set %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
			if prev.version != w.Expected {
				return fmt.Errorf("set %s/%s at version %d: %w", w.Collection, w.ID, w.Expected, ErrVersionConflict)
			}
			m, err := toMap(w.Data)
			if err != nil {
				return err
			}
			col[w.ID] = memDoc{data: m, version: prev.version + 1, createdAt: prev.createdAt, updatedAt: now}
		case WriteUpdate:
			prev, existed := col[w.ID]
			if !existed {
				return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
			data, err := deepCopy(prev.data)
			if err != nil {
				return err
			}
			for path, v := range w.Patch {
				parts, err := splitPath(path)
				if err != nil {
					return err
				}
				nv, err := normalize(v)
				if err != nil {
					return err
				}
				if err := setPath(data, parts, nv); err != nil {
					return fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, err)
				}
			}
			col[w.ID] = memDoc{data: data, version: prev.version + 1, createdAt: prev.createdAt, updatedAt: now}
		case WriteDelete:
			delete(col, w.ID)
		default:
			return fmt.Errorf("docstore: unknown write kind %d", w.Kind)
		}
	}

	for name, col := range staged {
		s.cols[name] = col
	}
	return nil
}

// Count returns how many documents a collection holds.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cols[collection])
}

func toDocument(id string, d memDoc) (*Document, error) {
	data, err := deepCopy(d.data)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Data: data, RowVersion: d.version, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}

func deepCopy(m map[string]any) (map[string]any, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
