package mock

import (
	"context"

	"vecrawl"
)

var _ vecrawl.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of vecrawl.VectorIndex.
type VectorIndex struct {
	UpsertFn    func(ctx context.Context, records []*vecrawl.Record) error
	ListPageFn  func(ctx context.Context, cursor string, limit int) ([]*vecrawl.IndexEntry, string, error)
	DeleteFn    func(ctx context.Context, ids []string) error
	DimensionFn func(ctx context.Context) (int, error)
}

func (idx *VectorIndex) Upsert(ctx context.Context, records []*vecrawl.Record) error {
	return idx.UpsertFn(ctx, records)
}

func (idx *VectorIndex) ListPage(ctx context.Context, cursor string, limit int) ([]*vecrawl.IndexEntry, string, error) {
	return idx.ListPageFn(ctx, cursor, limit)
}

func (idx *VectorIndex) Delete(ctx context.Context, ids []string) error {
	return idx.DeleteFn(ctx, ids)
}

func (idx *VectorIndex) Dimension(ctx context.Context) (int, error) {
	return idx.DimensionFn(ctx)
}

var _ vecrawl.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of vecrawl.RecordWriter.
type RecordWriter struct {
	AddFn               func(ctx context.Context, records ...*vecrawl.Record) error
	FlushFn             func(ctx context.Context) error
	ValidateDimensionFn func(ctx context.Context, want int) error
}

func (w *RecordWriter) Add(ctx context.Context, records ...*vecrawl.Record) error {
	return w.AddFn(ctx, records...)
}

func (w *RecordWriter) Flush(ctx context.Context) error {
	if w.FlushFn == nil {
		return nil
	}
	return w.FlushFn(ctx)
}

func (w *RecordWriter) ValidateDimension(ctx context.Context, want int) error {
	if w.ValidateDimensionFn == nil {
		return nil
	}
	return w.ValidateDimensionFn(ctx, want)
}

var _ vecrawl.Catalog = (*Catalog)(nil)

// Catalog is a mock implementation of vecrawl.Catalog.
type Catalog struct {
	ProcessedFn     func(ctx context.Context, url string) (bool, error)
	MarkProcessedFn func(ctx context.Context, p *vecrawl.ProcessedURL) error
	BeginRunFn      func(ctx context.Context) (string, error)
	EndRunFn        func(ctx context.Context, run *vecrawl.CrawlRun) error
}

func (c *Catalog) Processed(ctx context.Context, url string) (bool, error) {
	if c.ProcessedFn == nil {
		return false, nil
	}
	return c.ProcessedFn(ctx, url)
}

func (c *Catalog) MarkProcessed(ctx context.Context, p *vecrawl.ProcessedURL) error {
	if c.MarkProcessedFn == nil {
		return nil
	}
	return c.MarkProcessedFn(ctx, p)
}

func (c *Catalog) BeginRun(ctx context.Context) (string, error) {
	if c.BeginRunFn == nil {
		return "run", nil
	}
	return c.BeginRunFn(ctx)
}

func (c *Catalog) EndRun(ctx context.Context, run *vecrawl.CrawlRun) error {
	if c.EndRunFn == nil {
		return nil
	}
	return c.EndRunFn(ctx, run)
}
