package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vecrawl"
)

// Compile-time interface verification.
var _ vecrawl.Catalog = (*CatalogService)(nil)

// CatalogService implements vecrawl.Catalog using SQLite.
type CatalogService struct {
	db *DB
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *DB) *CatalogService {
	return &CatalogService{db: db}
}

// Processed reports whether url has been indexed before.
func (s *CatalogService) Processed(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM processed_urls WHERE url = ?
	`, url).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed records a fully indexed page, overwriting any previous
// entry for the same URL.
func (s *CatalogService) MarkProcessed(ctx context.Context, p *vecrawl.ProcessedURL) error {
	if p.URL == "" {
		return vecrawl.Errorf(vecrawl.EINVALID, "URL required")
	}

	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_urls (url, content_hash, chunks, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content_hash = excluded.content_hash,
			chunks = excluded.chunks,
			fetched_at = excluded.fetched_at
	`, p.URL, p.ContentHash, p.Chunks, fetchedAt.Format(time.RFC3339))

	return err
}

// FindProcessed retrieves the catalog entry for url.
// Returns ENOTFOUND if the URL has not been indexed.
func (s *CatalogService) FindProcessed(ctx context.Context, url string) (*vecrawl.ProcessedURL, error) {
	var p vecrawl.ProcessedURL
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT url, content_hash, chunks, fetched_at
		FROM processed_urls
		WHERE url = ?
	`, url).Scan(&p.URL, &p.ContentHash, &p.Chunks, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, vecrawl.Errorf(vecrawl.ENOTFOUND, "URL not in catalog")
	}
	if err != nil {
		return nil, err
	}

	p.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	return &p, nil
}

// BeginRun records the start of a pipeline run and returns its ID.
func (s *CatalogService) BeginRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	startedAt := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at) VALUES (?, ?)
	`, id, startedAt)
	if err != nil {
		return "", err
	}

	return id, nil
}

// EndRun records the final counters for a run.
// Returns ENOTFOUND if the run does not exist.
func (s *CatalogService) EndRun(ctx context.Context, run *vecrawl.CrawlRun) error {
	if run.ID == "" {
		return vecrawl.Errorf(vecrawl.EINVALID, "run ID required")
	}

	finishedAt := run.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, pages = ?, chunks = ?, failures = ?
		WHERE id = ?
	`, finishedAt.Format(time.RFC3339), run.Pages, run.Chunks, run.Failures, run.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vecrawl.Errorf(vecrawl.ENOTFOUND, "run not found")
	}

	return nil
}
