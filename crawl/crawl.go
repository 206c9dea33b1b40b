// Package crawl provides crawl orchestration for the indexing pipeline.
// It coordinates seed resolution, breadth-first link traversal, content
// extraction, chunking, embedding, and handoff to the vector index writer.
package crawl

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vecrawl"
)

// Frontier configuration for link traversal.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// excludedExtensions lists path extensions that never contain indexable
// HTML content.
var excludedExtensions = map[string]bool{
	".avi": true, ".css": true, ".eot": true, ".gif": true, ".gz": true,
	".ico": true, ".jpeg": true, ".jpg": true, ".js": true, ".json": true,
	".mov": true, ".mp3": true, ".mp4": true, ".pdf": true, ".png": true,
	".svg": true, ".tar": true, ".ttf": true, ".webm": true, ".webp": true,
	".woff": true, ".woff2": true, ".xml": true, ".zip": true,
}

// Crawler orchestrates the crawl-to-index pipeline.
type Crawler struct {
	Fetcher     vecrawl.Fetcher
	Links       vecrawl.LinkExtractor
	Extractor   vecrawl.Extractor
	Converter   vecrawl.Converter
	Text        vecrawl.TextExtractor
	Embedder    vecrawl.Embedder
	Records     vecrawl.RecordWriter
	Catalog     vecrawl.Catalog
	RateLimiter vecrawl.DomainLimiter

	// Recrawl forces pages recorded in the catalog to be fetched again.
	Recrawl bool

	Concurrency  int
	RetryDelays  []time.Duration
	MaxPages     int
	ChunkSize    int
	ChunkOverlap int

	// MinTextLength drops chunks whose trimmed text is shorter.
	MinTextLength int

	// FailureWindow and FailureThreshold configure the failure budget:
	// when the failure rate over the last FailureWindow fetch attempts
	// exceeds FailureThreshold, the crawl aborts. A zero window disables
	// the budget.
	FailureWindow    int
	FailureThreshold float64
}

// Result holds the outcome of a crawl run.
type Result struct {
	PagesFetched  int
	PagesFailed   int
	PagesSkipped  int
	ChunksIndexed int
	ChunksSkipped int

	// CatalogErrors counts pages whose catalog mark failed; those pages
	// are indexed but will be refetched on the next run.
	CatalogErrors int

	Aborted bool
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Run crawls the seed set and indexes the resulting chunks. When the seed
// set carries a start URL, links discovered on fetched pages are followed
// breadth-first within the start URL's registrable domain; otherwise only
// the explicit seeds are fetched, concurrently.
//
// A dimensionality mismatch between the embedder and the index is
// detected before any page is fetched and returned as EINVALID. Exceeding
// the failure budget aborts the run with EABORTED after records gathered
// so far have been flushed.
func (c *Crawler) Run(ctx context.Context, seeds *SeedSet, progress ProgressFunc) (*Result, error) {
	if err := c.Records.ValidateDimension(ctx, c.Embedder.Dimension()); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(seeds.URLs)})
	}

	var res *Result
	var err error
	if seeds.StartURL != "" {
		res, err = c.traverse(ctx, seeds, progress)
	} else {
		res, err = c.fetchSeedList(ctx, seeds, progress)
	}

	// Records gathered before an abort are still indexed.
	if flushErr := c.Records.Flush(ctx); flushErr != nil && err == nil {
		err = flushErr
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: res.PagesFetched + res.PagesFailed + res.PagesSkipped})
	}
	return res, err
}

// traverse performs sequential breadth-first traversal from the seed set.
// URLs are processed in discovery order; newly discovered links on the
// start URL's registrable domain are enqueued behind everything already
// discovered.
func (c *Crawler) traverse(ctx context.Context, seeds *SeedSet, progress ProgressFunc) (*Result, error) {
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, u := range seeds.URLs {
		frontier.Push(u)
	}

	budget := NewFailureBudget(c.FailureWindow, c.FailureThreshold)
	var res Result
	attempted := 0

	for {
		if err := ctx.Err(); err != nil {
			return &res, err
		}
		if c.MaxPages > 0 && attempted >= c.MaxPages {
			break
		}
		pageURL, ok := frontier.Pop()
		if !ok {
			break
		}
		attempted++

		if c.skipProcessed(ctx, pageURL) {
			res.PagesSkipped++
			c.notify(progress, ProgressSkipped, pageURL, nil)
			continue
		}

		if err := c.wait(ctx, pageURL); err != nil {
			return &res, err
		}

		html, err := c.fetch(ctx, pageURL)
		if err != nil {
			budget.Record(true)
			res.PagesFailed++
			c.notify(progress, ProgressFailed, pageURL, err)
			if budget.Exceeded() {
				res.Aborted = true
				return &res, vecrawl.Errorf(vecrawl.EABORTED,
					"crawl aborted: failure rate over last %d fetches exceeded %.0f%%",
					c.FailureWindow, c.FailureThreshold*100)
			}
			continue
		}
		budget.Record(false)
		res.PagesFetched++

		c.enqueueLinks(html, pageURL, seeds, frontier)

		if err := c.processPage(ctx, pageURL, html, &res); err != nil {
			return &res, err
		}
		c.notify(progress, ProgressCompleted, pageURL, nil)
	}

	return &res, nil
}

// fetchSeedList fetches the explicit seed URLs concurrently without
// following links. Writes to the shared result and to the record writer
// are serialized; the frontier is not involved because the seed set is
// already deduplicated.
func (c *Crawler) fetchSeedList(ctx context.Context, seeds *SeedSet, progress ProgressFunc) (*Result, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	budget := NewFailureBudget(c.FailureWindow, c.FailureThreshold)

	var mu sync.Mutex
	var res Result

	urls := seeds.URLs
	if c.MaxPages > 0 && len(urls) > c.MaxPages {
		urls = urls[:c.MaxPages]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, pageURL := range urls {
		g.Go(func() error {
			if c.skipProcessed(gctx, pageURL) {
				mu.Lock()
				res.PagesSkipped++
				mu.Unlock()
				c.notify(progress, ProgressSkipped, pageURL, nil)
				return nil
			}

			if err := c.wait(gctx, pageURL); err != nil {
				return err
			}

			html, err := c.fetch(gctx, pageURL)
			if err != nil {
				budget.Record(true)
				mu.Lock()
				res.PagesFailed++
				mu.Unlock()
				c.notify(progress, ProgressFailed, pageURL, err)
				if budget.Exceeded() {
					mu.Lock()
					res.Aborted = true
					mu.Unlock()
					return vecrawl.Errorf(vecrawl.EABORTED,
						"crawl aborted: failure rate over last %d fetches exceeded %.0f%%",
						c.FailureWindow, c.FailureThreshold*100)
				}
				return nil
			}
			budget.Record(false)

			mu.Lock()
			res.PagesFetched++
			mu.Unlock()

			if err := c.processPageLocked(gctx, pageURL, html, &res, &mu); err != nil {
				return err
			}
			c.notify(progress, ProgressCompleted, pageURL, nil)
			return nil
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil && vecrawl.ErrorCode(err) != vecrawl.EABORTED {
		err = ctx.Err()
	}
	return &res, err
}

// fetch retrieves a page with bounded retries.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return Do(ctx, delays, func(ctx context.Context) (string, error) {
		return c.Fetcher.Fetch(ctx, pageURL)
	})
}

// enqueueLinks pushes same-domain links discovered on a fetched page.
func (c *Crawler) enqueueLinks(html, baseURL string, seeds *SeedSet, frontier *Frontier) {
	if c.Links == nil || seeds.StartDomain == "" {
		return
	}
	links, err := c.Links.ExtractLinks(html, baseURL)
	if err != nil {
		return
	}
	for _, link := range links {
		normalized, err := NormalizeURL(link)
		if err != nil {
			continue
		}
		if excludedExtension(normalized) {
			continue
		}
		if RegistrableDomain(normalized) != seeds.StartDomain {
			continue
		}
		frontier.Push(normalized)
	}
}

// processPage extracts, chunks, embeds, and hands records to the writer.
// Per-chunk embedding failures are counted and skipped; they never fail
// the page.
func (c *Crawler) processPage(ctx context.Context, pageURL, html string, res *Result) error {
	return c.processPageLocked(ctx, pageURL, html, res, nil)
}

func (c *Crawler) processPageLocked(ctx context.Context, pageURL, html string, res *Result, mu *sync.Mutex) error {
	text := c.extractText(html)
	chunks := vecrawl.ChunkPage(pageURL, text, c.ChunkSize, c.ChunkOverlap, c.MinTextLength)

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	indexed := 0
	skipped := 0
	for _, chunk := range chunks {
		values, err := Do(ctx, delays, func(ctx context.Context) ([]float32, error) {
			return c.Embedder.Embed(ctx, chunk.Text)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			skipped++
			continue
		}

		rec := &vecrawl.Record{
			ID:     vecrawl.RecordID(chunk.SourceURL, chunk.Index),
			Values: values,
			Metadata: vecrawl.RecordMetadata{
				URL:        chunk.SourceURL,
				ChunkIndex: chunk.Index,
				Text:       chunk.Text,
			},
		}
		if err := rec.Validate(); err != nil {
			skipped++
			continue
		}
		if err := c.Records.Add(ctx, rec); err != nil {
			return err
		}
		indexed++
	}

	catalogErrs := 0
	if c.Catalog != nil {
		err := c.Catalog.MarkProcessed(ctx, &vecrawl.ProcessedURL{
			URL:         pageURL,
			ContentHash: vecrawl.ContentHash(text),
			Chunks:      indexed,
			FetchedAt:   time.Now().UTC(),
		})
		if err != nil {
			catalogErrs = 1
		}
	}

	if mu != nil {
		mu.Lock()
	}
	res.ChunksIndexed += indexed
	res.ChunksSkipped += skipped
	res.CatalogErrors += catalogErrs
	if mu != nil {
		mu.Unlock()
	}
	return nil
}

// extractText produces the text representation of a page: main content as
// markdown when the extractor finds any, full visible text otherwise.
func (c *Crawler) extractText(html string) string {
	if c.Extractor != nil {
		if extracted, err := c.Extractor.Extract(html); err == nil && extracted.ContentHTML != "" {
			if c.Converter != nil {
				if md, err := c.Converter.Convert(extracted.ContentHTML); err == nil && strings.TrimSpace(md) != "" {
					return md
				}
			}
		}
	}
	if c.Text != nil {
		if text, err := c.Text.ExtractText(html); err == nil {
			return text
		}
	}
	return ""
}

// skipProcessed reports whether the catalog already holds the URL.
func (c *Crawler) skipProcessed(ctx context.Context, pageURL string) bool {
	if c.Catalog == nil || c.Recrawl {
		return false
	}
	done, err := c.Catalog.Processed(ctx, pageURL)
	return err == nil && done
}

// wait applies the per-domain rate limit for the URL's host.
func (c *Crawler) wait(ctx context.Context, pageURL string) error {
	if c.RateLimiter == nil {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	return c.RateLimiter.Wait(ctx, u.Host)
}

func (c *Crawler) notify(progress ProgressFunc, typ ProgressType, pageURL string, err error) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Type: typ, URL: pageURL, Error: err})
}

// excludedExtension reports whether a URL's path names a non-HTML asset.
func excludedExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return excludedExtensions[ext]
}
