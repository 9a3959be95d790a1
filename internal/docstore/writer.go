package docstore

import (
	"context"
	"fmt"
	"strings"
)

// WriteBatch collects writes for one atomic Commit.
type WriteBatch struct {
	store  Store
	writes []Write
}

func NewBatch(store Store) *WriteBatch {
	return &WriteBatch{store: store}
}

func (b *WriteBatch) Set(collection, id string, data any) *WriteBatch {
	b.writes = append(b.writes, SetWrite(collection, id, data))
	return b
}

func (b *WriteBatch) Update(collection, id string, patch Patch) *WriteBatch {
	b.writes = append(b.writes, UpdateWrite(collection, id, patch))
	return b
}

func (b *WriteBatch) SetIfVersion(collection, id string, data any, expected int64) *WriteBatch {
	b.writes = append(b.writes, SetIfVersionWrite(collection, id, data, expected))
	return b
}

func (b *WriteBatch) Delete(collection, id string) *WriteBatch {
	b.writes = append(b.writes, DeleteWrite(collection, id))
	return b
}

func (b *WriteBatch) Len() int { return len(b.writes) }

func (b *WriteBatch) Commit(ctx context.Context) error {
	return b.store.Commit(ctx, b.writes)
}

// CommitError reports a failed batch and the labels of the writes it held.
type CommitError struct {
	Labels []string
	Err    error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("batch commit failed for %d writes [%s]: %v", len(e.Labels), strings.Join(e.Labels, ", "), e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// ChunkedWriter stages labelled writes and commits them in batches of at
// most MaxBatchOps. Batches are committed sequentially; a failed batch is
// dropped and reported, later batches still run.
type ChunkedWriter struct {
	store   Store
	size    int
	pending []Write
	labels  []string

	Committed int
	Batches   int
	Failed    []*CommitError
}

func NewChunkedWriter(store Store) *ChunkedWriter {
	return &ChunkedWriter{store: store, size: MaxBatchOps}
}

// WithBatchSize lowers the batch size. Values outside 1..MaxBatchOps are ignored.
func (w *ChunkedWriter) WithBatchSize(n int) *ChunkedWriter {
	if n > 0 && n <= MaxBatchOps {
		w.size = n
	}
	return w
}

func (w *ChunkedWriter) Pending() int { return len(w.pending) }

// Stage queues a write under label and flushes when the batch is full.
// The returned error is the flush error, if one happened.
func (w *ChunkedWriter) Stage(ctx context.Context, label string, write Write) error {
	w.pending = append(w.pending, write)
	w.labels = append(w.labels, label)
	if len(w.pending) >= w.size {
		return w.Flush(ctx)
	}
	return nil
}

// Flush commits whatever is pending.
func (w *ChunkedWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	writes, labels := w.pending, w.labels
	w.pending, w.labels = nil, nil

	if err := w.store.Commit(ctx, writes); err != nil {
		cerr := &CommitError{Labels: labels, Err: err}
		w.Failed = append(w.Failed, cerr)
		return cerr
	}
	w.Committed += len(writes)
	w.Batches++
	return nil
}
