// Package index provides the batching writer that moves embedding records
// into the vector store.
package index

import (
	"context"
	"sync"

	"vecrawl"
)

// DefaultBatchSize is the number of records upserted per request when no
// batch size is configured.
const DefaultBatchSize = 50

// Compile-time interface verification.
var _ vecrawl.RecordWriter = (*Writer)(nil)

// Writer accumulates records and upserts them to the vector index in
// batches. Batching bounds memory and respects store-side request-size
// limits. A failed batch is retried once and then counted, never aborting
// the remaining batches. Writer is safe for concurrent use.
type Writer struct {
	idx       vecrawl.VectorIndex
	batchSize int

	mu      sync.Mutex
	pending []*vecrawl.Record
	stats   Stats
}

// Stats holds running counters for a Writer.
type Stats struct {
	// Upserted is the number of records successfully written.
	Upserted int

	// FailedBatches is the number of batches that failed after a retry.
	FailedBatches int

	// FailedRecords is the number of records lost to failed batches.
	FailedRecords int
}

// NewWriter creates a Writer that upserts to idx in batches of batchSize.
func NewWriter(idx vecrawl.VectorIndex, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Writer{idx: idx, batchSize: batchSize}
}

// Add queues records for upsert, flushing whenever a full batch
// accumulates. The only errors returned are context errors; batch-level
// upsert failures are recorded in Stats.
func (w *Writer) Add(ctx context.Context, records ...*vecrawl.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, records...)
	for len(w.pending) >= w.batchSize {
		batch := w.pending[:w.batchSize]
		w.pending = w.pending[w.batchSize:]
		if err := w.upsertBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// Flush upserts any queued records.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	batch := w.pending
	w.pending = nil
	return w.upsertBatch(ctx, batch)
}

// ValidateDimension returns EINVALID if the index's configured
// dimensionality differs from want.
func (w *Writer) ValidateDimension(ctx context.Context, want int) error {
	dim, err := w.idx.Dimension(ctx)
	if err != nil {
		return err
	}
	if dim != want {
		return vecrawl.Errorf(vecrawl.EINVALID,
			"embedding dimension %d does not match index dimension %d", want, dim)
	}
	return nil
}

// Stats returns a snapshot of the writer's counters.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// upsertBatch writes one batch with a single retry. Callers must hold
// w.mu.
func (w *Writer) upsertBatch(ctx context.Context, batch []*vecrawl.Record) error {
	err := w.idx.Upsert(ctx, batch)
	if err != nil && ctx.Err() == nil {
		err = w.idx.Upsert(ctx, batch)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.stats.FailedBatches++
		w.stats.FailedRecords += len(batch)
		return nil
	}
	w.stats.Upserted += len(batch)
	return nil
}
