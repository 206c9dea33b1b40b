package main

import (
	"fmt"
	"time"

	"vecrawl"
	"vecrawl/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies, cli *CLI) error {
	cfg := c.Config(cli.EmbeddingDimension)

	seeds, err := deps.Resolver.Resolve(deps.Ctx, cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vecrawl.ErrorMessage(err))
		return err
	}
	for _, srcErr := range seeds.SourceErrs {
		fmt.Fprintf(deps.Stderr, "warning: %v\n", srcErr)
	}

	deps.Crawler.MaxPages = cfg.MaxPages
	deps.Crawler.ChunkSize = cfg.ChunkSize
	deps.Crawler.ChunkOverlap = cfg.ChunkOverlap
	deps.Crawler.MinTextLength = cfg.MinTextLength
	deps.Crawler.FailureWindow = cfg.FailureWindow
	deps.Crawler.FailureThreshold = cfg.FailureThreshold

	runID, err := deps.Catalog.BeginRun(deps.Ctx)
	if err != nil {
		return err
	}
	started := time.Now().UTC()

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Found %d seed URLs\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %v\n", event.URL, event.Error)
		case crawl.ProgressSkipped:
			fmt.Fprintf(deps.Stdout, "  skip %s (already indexed)\n", event.URL)
		}
	}

	result, runErr := deps.Crawler.Run(deps.Ctx, seeds, progress)

	if result != nil {
		endErr := deps.Catalog.EndRun(deps.Ctx, &vecrawl.CrawlRun{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Pages:      result.PagesFetched,
			Chunks:     result.ChunksIndexed,
			Failures:   result.PagesFailed,
		})
		if endErr != nil {
			fmt.Fprintf(deps.Stderr, "warning: failed to record run: %v\n", endErr)
		}

		stats := deps.Writer.Stats()
		fmt.Fprintf(deps.Stdout, "Indexed %d chunks from %d pages (%d failed, %d skipped)\n",
			result.ChunksIndexed, result.PagesFetched, result.PagesFailed, result.PagesSkipped)
		if result.ChunksSkipped > 0 {
			fmt.Fprintf(deps.Stdout, "  %d chunks skipped (embedding failures)\n", result.ChunksSkipped)
		}
		if result.CatalogErrors > 0 {
			fmt.Fprintf(deps.Stderr, "warning: %d pages could not be recorded in the catalog and will be refetched next run\n",
				result.CatalogErrors)
		}
		if stats.FailedRecords > 0 {
			fmt.Fprintf(deps.Stdout, "  %d records lost in %d failed upsert batches\n",
				stats.FailedRecords, stats.FailedBatches)
		}
	}

	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vecrawl.ErrorMessage(runErr))
		return runErr
	}
	return nil
}
