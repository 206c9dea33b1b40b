package vecrawl

import (
	"context"
	"time"
)

// ProcessedURL records a page that has been fully indexed.
type ProcessedURL struct {
	URL         string    `json:"url"`
	ContentHash string    `json:"contentHash"`
	Chunks      int       `json:"chunks"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// CrawlRun records one execution of the pipeline.
type CrawlRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Failures   int       `json:"failures"`
}

// Catalog persists which URLs have already been indexed, so repeated runs
// over a sitemap or manual list skip unchanged work. It deliberately does
// not persist the crawl frontier; only completed pages are recorded.
type Catalog interface {
	// Processed reports whether url has been indexed before.
	Processed(ctx context.Context, url string) (bool, error)

	// MarkProcessed records a fully indexed page, overwriting any
	// previous entry for the same URL.
	MarkProcessed(ctx context.Context, p *ProcessedURL) error

	// BeginRun records the start of a pipeline run and returns its ID.
	BeginRun(ctx context.Context) (string, error)

	// EndRun records the final counters for a run.
	// Returns ENOTFOUND if the run does not exist.
	EndRun(ctx context.Context, run *CrawlRun) error
}
