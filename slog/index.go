package slog

import (
	"context"
	"log/slog"
	"time"

	"vecrawl"
)

// Ensure LoggingVectorIndex implements vecrawl.VectorIndex.
var _ vecrawl.VectorIndex = (*LoggingVectorIndex)(nil)

// LoggingVectorIndex wraps a VectorIndex with logging.
type LoggingVectorIndex struct {
	next   vecrawl.VectorIndex
	logger *slog.Logger
}

// NewLoggingVectorIndex creates a new LoggingVectorIndex.
func NewLoggingVectorIndex(next vecrawl.VectorIndex, logger *slog.Logger) *LoggingVectorIndex {
	return &LoggingVectorIndex{next: next, logger: logger}
}

// Upsert delegates to the wrapped index and logs the operation.
func (idx *LoggingVectorIndex) Upsert(ctx context.Context, records []*vecrawl.Record) (err error) {
	defer func(begin time.Time) {
		idx.logger.Info("upsert",
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return idx.next.Upsert(ctx, records)
}

// ListPage delegates to the wrapped index and logs the operation.
func (idx *LoggingVectorIndex) ListPage(ctx context.Context, cursor string, limit int) (entries []*vecrawl.IndexEntry, next string, err error) {
	defer func(begin time.Time) {
		idx.logger.Debug("list page",
			"entries", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return idx.next.ListPage(ctx, cursor, limit)
}

// Delete delegates to the wrapped index and logs the operation.
func (idx *LoggingVectorIndex) Delete(ctx context.Context, ids []string) (err error) {
	defer func(begin time.Time) {
		idx.logger.Info("delete",
			"ids", len(ids),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return idx.next.Delete(ctx, ids)
}

// Dimension delegates to the wrapped index.
func (idx *LoggingVectorIndex) Dimension(ctx context.Context) (int, error) {
	return idx.next.Dimension(ctx)
}
