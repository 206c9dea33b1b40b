package scan

import (
	"context"

	"vecrawl"
)

// Default scanner limits, matching the cleanup utility's environment
// defaults.
const (
	DefaultBatchSize       = 1000
	DefaultMaxIterations   = 100
	DefaultDeleteBatchSize = 100
)

// Scanner pages through a vector index and removes defective entries.
type Scanner struct {
	Index vecrawl.VectorIndex
	Rules []Rule

	// BatchSize is the number of entries requested per scan page.
	BatchSize int

	// MaxIterations caps the number of scan pages examined. Hitting the
	// cap is reported as an incomplete scan, not an error.
	MaxIterations int

	// DeleteBatchSize is the number of defective IDs deleted per call.
	DeleteBatchSize int

	// DryRun classifies and counts without deleting.
	DryRun bool
}

// Report summarizes a finished or aborted scan.
type Report struct {
	Examined   int
	Defective  int
	Deleted    int
	Iterations int

	// Complete is false when the scan stopped at MaxIterations with
	// pages remaining; the operator should re-run to finish.
	Complete bool

	// ByRule counts defective entries per rule name. An entry failing
	// several rules is attributed to the first one that matched.
	ByRule map[string]int
}

// Progress reports the state of an in-flight scan after each page.
type Progress struct {
	Iteration int
	Examined  int
	Defective int
}

// ProgressFunc is a callback for reporting scan progress.
type ProgressFunc func(Progress)

// Run scans the index page by page, deleting defective vectors in
// batches. The store's pagination token is advanced regardless of
// deletions in the current page; because the token is stable, deleting
// entries cannot shift page boundaries. The scan terminates when no pages
// remain or when MaxIterations pages have been examined, whichever comes
// first.
func (s *Scanner) Run(ctx context.Context, progress ProgressFunc) (*Report, error) {
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	maxIterations := s.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	deleteBatch := s.DeleteBatchSize
	if deleteBatch <= 0 {
		deleteBatch = DefaultDeleteBatchSize
	}

	report := &Report{ByRule: make(map[string]int)}
	var pending []string
	cursor := ""

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if !s.DryRun {
			if err := s.Index.Delete(ctx, pending); err != nil {
				return err
			}
			report.Deleted += len(pending)
		}
		pending = pending[:0]
		return nil
	}

	for report.Iterations < maxIterations {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entries, next, err := s.Index.ListPage(ctx, cursor, batchSize)
		if err != nil {
			return report, err
		}
		report.Iterations++

		for _, entry := range entries {
			report.Examined++
			for _, rule := range s.Rules {
				if rule.Defective(entry) {
					report.Defective++
					report.ByRule[rule.Name]++
					pending = append(pending, entry.ID)
					break
				}
			}
			if len(pending) >= deleteBatch {
				if err := flush(); err != nil {
					return report, err
				}
			}
		}

		if progress != nil {
			progress(Progress{
				Iteration: report.Iterations,
				Examined:  report.Examined,
				Defective: report.Defective,
			})
		}

		if next == "" {
			report.Complete = true
			break
		}
		cursor = next
	}

	if err := flush(); err != nil {
		return report, err
	}
	return report, nil
}
