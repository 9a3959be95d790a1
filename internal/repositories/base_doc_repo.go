package repositories

import (
	"context"
	"errors"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

/*
BaseDocRepo holds the store and collection for a single entity type T.
It gives concrete repositories:

	• get / list / listIn (IN queries chunked to the store limit)
	• set / patch / remove
	• updateIfVersion for WithRetry
*/
type BaseDocRepo[T any] struct {
	store      docstore.Store
	collection string
}

func NewBaseDocRepo[T any](store docstore.Store, collection string) *BaseDocRepo[T] {
	return &BaseDocRepo[T]{store: store, collection: collection}
}

type versionSetter interface {
	SetRowVersion(int64)
}

func decode[T any](doc *docstore.Document) (*T, error) {
	out := new(T)
	if err := doc.DataTo(out); err != nil {
		return nil, err
	}
	if v, ok := any(out).(versionSetter); ok {
		v.SetRowVersion(doc.RowVersion)
	}
	return out, nil
}

// get returns (nil, nil) when the document does not exist.
func (b *BaseDocRepo[T]) get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	doc, err := b.store.Get(ctx, b.collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode[T](doc)
}

func (b *BaseDocRepo[T]) list(ctx context.Context, filters ...docstore.Filter) ([]*T, error) {
	docs, err := b.store.Query(ctx, b.collection, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// listIn runs one `field in chunk` query per chunk of at most
// docstore.MaxInValues values and unions the results.
func (b *BaseDocRepo[T]) listIn(ctx context.Context, field string, values []string, extra ...docstore.Filter) ([]*T, error) {
	seen := map[string]bool{}
	var out []*T
	for _, chunk := range utils.ChunkStrings(utils.UniqueStrings(values), docstore.MaxInValues) {
		filters := append([]docstore.Filter{docstore.Where(field, docstore.OpIn, chunk)}, extra...)
		docs, err := b.store.Query(ctx, b.collection, filters...)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			v, err := decode[T](doc)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (b *BaseDocRepo[T]) set(ctx context.Context, id string, v *T) error {
	return b.store.Set(ctx, b.collection, id, v)
}

func (b *BaseDocRepo[T]) patch(ctx context.Context, id string, p docstore.Patch) error {
	return b.store.Update(ctx, b.collection, id, p)
}

func (b *BaseDocRepo[T]) remove(ctx context.Context, id string) error {
	return b.store.Delete(ctx, b.collection, id)
}

func (b *BaseDocRepo[T]) updateIfVersion(ctx context.Context, id string, v *T, expected int64) (bool, error) {
	return b.store.UpdateIfVersion(ctx, b.collection, id, v, expected)
}
