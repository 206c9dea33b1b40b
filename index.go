package vecrawl

import "context"

// IndexEntry is the persisted counterpart of a Record inside the vector
// store, as returned by a scan page. Metadata is kept loosely typed because
// the scanner must be able to classify malformed entries.
type IndexEntry struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// RecordWriter accumulates records and upserts them to the vector index
// in batches. Implementations must be safe for concurrent use.
type RecordWriter interface {
	// Add queues records for upsert, flushing full batches as needed.
	Add(ctx context.Context, records ...*Record) error

	// Flush upserts any queued records.
	Flush(ctx context.Context) error

	// ValidateDimension returns EINVALID if the index's configured
	// dimensionality differs from want. Called before any upsert.
	ValidateDimension(ctx context.Context, want int) error
}

// VectorIndex is the vector store the pipeline writes to and the scanner
// reads from. Implementations hide the store's client SDK.
type VectorIndex interface {
	// Upsert inserts or overwrites records keyed by ID.
	Upsert(ctx context.Context, records []*Record) error

	// ListPage returns one page of index entries starting at cursor.
	// An empty cursor starts from the beginning. The returned cursor is
	// a stable store-provided token; it is empty when no pages remain.
	ListPage(ctx context.Context, cursor string, limit int) (entries []*IndexEntry, next string, err error)

	// Delete removes the vectors with the given IDs.
	Delete(ctx context.Context, ids []string) error

	// Dimension returns the index's configured vector dimensionality.
	Dimension(ctx context.Context) (int, error)
}
