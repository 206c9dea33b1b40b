package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrawl"
	"vecrawl/crawl"
	"vecrawl/mock"
)

// recordSink collects records handed to the writer, serialized.
type recordSink struct {
	mu      sync.Mutex
	records []*vecrawl.Record
}

func (s *recordSink) writer() *mock.RecordWriter {
	return &mock.RecordWriter{
		AddFn: func(ctx context.Context, records ...*vecrawl.Record) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.records = append(s.records, records...)
			return nil
		},
	}
}

func (s *recordSink) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, r := range s.records {
		urls = append(urls, r.Metadata.URL)
	}
	return urls
}

func testEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
		DimensionFn: func() int { return 3 },
	}
}

// passthroughText returns the raw HTML as text so chunking is predictable.
func passthroughText() *mock.TextExtractor {
	return &mock.TextExtractor{
		ExtractTextFn: func(html string) (string, error) { return html, nil },
	}
}

func TestCrawler_Run_Traverse(t *testing.T) {
	t.Parallel()

	t.Run("follows same-domain links breadth-first", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/":  strings.Repeat("root page text ", 10),
			"https://example.com/a": strings.Repeat("page a body text ", 10),
			"https://example.com/b": strings.Repeat("page b body text ", 10),
		}
		links := map[string][]string{
			"https://example.com/": {
				"https://example.com/a",
				"https://example.com/b",
				"https://other.org/elsewhere",
				"https://example.com/logo.png",
			},
		}

		var fetched []string
		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					fetched = append(fetched, url)
					html, ok := pages[url]
					if !ok {
						return "", errors.New("HTTP 404")
					}
					return html, nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(html, baseURL string) ([]string, error) {
					return links[baseURL], nil
				},
			},
			Text:          passthroughText(),
			Embedder:      testEmbedder(),
			Records:       sink.writer(),
			RetryDelays:   []time.Duration{},
			ChunkSize:     1000,
			ChunkOverlap:  0,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs:        []string{"https://example.com/"},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"https://example.com/",
			"https://example.com/a",
			"https://example.com/b",
		}, fetched, "off-domain and asset links must not be fetched")
		assert.Equal(t, 3, res.PagesFetched)
		assert.Equal(t, 3, res.ChunksIndexed)
		assert.ElementsMatch(t, []string{
			"https://example.com/",
			"https://example.com/a",
			"https://example.com/b",
		}, sink.urls())
	})

	t.Run("failed page is counted and crawl continues", func(t *testing.T) {
		t.Parallel()

		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					if url == "https://example.com/b" {
						return "", errors.New("HTTP 404")
					}
					return strings.Repeat("some page text ", 10), nil
				},
			},
			Text:          passthroughText(),
			Embedder:      testEmbedder(),
			Records:       sink.writer(),
			RetryDelays:   []time.Duration{},
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs: []string{
				"https://example.com/",
				"https://example.com/a",
				"https://example.com/b",
			},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.PagesFetched)
		assert.Equal(t, 1, res.PagesFailed)
		assert.False(t, res.Aborted)
	})

	t.Run("aborts with EABORTED when failure budget is exceeded", func(t *testing.T) {
		t.Parallel()

		var flushed bool
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return "", errors.New("connection refused")
				},
			},
			Text:     passthroughText(),
			Embedder: testEmbedder(),
			Records: &mock.RecordWriter{
				AddFn:   func(ctx context.Context, records ...*vecrawl.Record) error { return nil },
				FlushFn: func(ctx context.Context) error { flushed = true; return nil },
			},
			RetryDelays:      []time.Duration{},
			FailureWindow:    3,
			FailureThreshold: 0.5,
		}

		urls := []string{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
			"https://example.com/d",
		}
		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/a",
			StartDomain: "example.com",
			URLs:        urls,
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.Error(t, err)
		assert.Equal(t, vecrawl.EABORTED, vecrawl.ErrorCode(err))
		assert.True(t, res.Aborted)
		assert.Equal(t, 3, res.PagesFailed, "abort happens as soon as the window trips")
		assert.True(t, flushed, "gathered records are flushed even on abort")
	})

	t.Run("stops at the page limit", func(t *testing.T) {
		t.Parallel()

		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return strings.Repeat("page text here ", 10), nil
				},
			},
			Text:          passthroughText(),
			Embedder:      testEmbedder(),
			Records:       sink.writer(),
			RetryDelays:   []time.Duration{},
			MaxPages:      2,
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs: []string{
				"https://example.com/",
				"https://example.com/a",
				"https://example.com/b",
			},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.PagesFetched)
	})

	t.Run("skips pages already in the catalog", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					fetched = append(fetched, url)
					return strings.Repeat("page text here ", 10), nil
				},
			},
			Text:     passthroughText(),
			Embedder: testEmbedder(),
			Records:  sink.writer(),
			Catalog: &mock.Catalog{
				ProcessedFn: func(ctx context.Context, url string) (bool, error) {
					return url == "https://example.com/a", nil
				},
			},
			RetryDelays:   []time.Duration{},
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs:        []string{"https://example.com/", "https://example.com/a"},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/"}, fetched)
		assert.Equal(t, 1, res.PagesSkipped)
	})

	t.Run("counts catalog write failures without failing the page", func(t *testing.T) {
		t.Parallel()

		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return strings.Repeat("page text here ", 10), nil
				},
			},
			Text:     passthroughText(),
			Embedder: testEmbedder(),
			Records:  sink.writer(),
			Catalog: &mock.Catalog{
				MarkProcessedFn: func(ctx context.Context, p *vecrawl.ProcessedURL) error {
					return errors.New("disk full")
				},
			},
			RetryDelays:   []time.Duration{},
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs:        []string{"https://example.com/"},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.PagesFetched)
		assert.Equal(t, 1, res.ChunksIndexed, "the page is still indexed")
		assert.Equal(t, 1, res.CatalogErrors)
	})

	t.Run("returns the context error when interrupted", func(t *testing.T) {
		t.Parallel()

		var flushed bool
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return strings.Repeat("page text here ", 10), nil
				},
			},
			Text:     passthroughText(),
			Embedder: testEmbedder(),
			Records: &mock.RecordWriter{
				AddFn:   func(ctx context.Context, records ...*vecrawl.Record) error { return nil },
				FlushFn: func(ctx context.Context) error { flushed = true; return nil },
			},
			RateLimiter: crawl.NewDomainLimiter(1.0),
			RetryDelays: []time.Duration{},
			ChunkSize:   1000,
		}

		seeds := &crawl.SeedSet{
			StartURL:    "https://example.com/",
			StartDomain: "example.com",
			URLs:        []string{"https://example.com/"},
		}

		_, err := c.Run(ctx, seeds, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled,
			"an interrupted crawl must not look like a completed one")
		assert.True(t, flushed)
	})

	t.Run("returns EINVALID on dimension mismatch before fetching", func(t *testing.T) {
		t.Parallel()

		fetchCalled := false
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					fetchCalled = true
					return "", nil
				},
			},
			Text:     passthroughText(),
			Embedder: testEmbedder(),
			Records: &mock.RecordWriter{
				AddFn: func(ctx context.Context, records ...*vecrawl.Record) error { return nil },
				ValidateDimensionFn: func(ctx context.Context, want int) error {
					return vecrawl.Errorf(vecrawl.EINVALID, "embedding dimension %d does not match index dimension 1536", want)
				},
			},
		}

		seeds := &crawl.SeedSet{URLs: []string{"https://example.com/"}}
		_, err := c.Run(context.Background(), seeds, nil)

		require.Error(t, err)
		assert.Equal(t, vecrawl.EINVALID, vecrawl.ErrorCode(err))
		assert.False(t, fetchCalled)
	})
}

func TestCrawler_Run_SeedList(t *testing.T) {
	t.Parallel()

	t.Run("fetches explicit seeds without following links", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					mu.Lock()
					fetched = append(fetched, url)
					mu.Unlock()
					return strings.Repeat("seed page text ", 10), nil
				},
			},
			Links: &mock.LinkExtractor{
				ExtractLinksFn: func(html, baseURL string) ([]string, error) {
					return []string{"https://example.com/never-followed"}, nil
				},
			},
			Text:          passthroughText(),
			Embedder:      testEmbedder(),
			Records:       sink.writer(),
			RetryDelays:   []time.Duration{},
			Concurrency:   2,
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{
			URLs: []string{"https://example.com/a", "https://example.com/b"},
		}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.PagesFetched)
		assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, fetched)
	})

	t.Run("embedding failures skip chunks without failing the page", func(t *testing.T) {
		t.Parallel()

		sink := &recordSink{}
		c := &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return strings.Repeat("seed page text ", 10), nil
				},
			},
			Text: passthroughText(),
			Embedder: &mock.Embedder{
				EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("quota exceeded")
				},
				DimensionFn: func() int { return 3 },
			},
			Records:       sink.writer(),
			RetryDelays:   []time.Duration{},
			ChunkSize:     1000,
			MinTextLength: 10,
		}

		seeds := &crawl.SeedSet{URLs: []string{"https://example.com/a"}}

		res, err := c.Run(context.Background(), seeds, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.PagesFetched)
		assert.Equal(t, 0, res.ChunksIndexed)
		assert.Equal(t, 1, res.ChunksSkipped)
		assert.Empty(t, sink.records)
	})

	t.Run("record IDs are stable across runs", func(t *testing.T) {
		t.Parallel()

		run := func() []string {
			sink := &recordSink{}
			c := &crawl.Crawler{
				Fetcher: &mock.Fetcher{
					FetchFn: func(ctx context.Context, url string) (string, error) {
						return strings.Repeat("identical page content ", 10), nil
					},
				},
				Text:          passthroughText(),
				Embedder:      testEmbedder(),
				Records:       sink.writer(),
				RetryDelays:   []time.Duration{},
				ChunkSize:     100,
				ChunkOverlap:  20,
				MinTextLength: 10,
			}
			seeds := &crawl.SeedSet{URLs: []string{"https://example.com/a"}}
			_, err := c.Run(context.Background(), seeds, nil)
			require.NoError(t, err)

			var ids []string
			for _, r := range sink.records {
				ids = append(ids, r.ID)
			}
			return ids
		}

		first := run()
		second := run()
		require.NotEmpty(t, first)
		assert.Equal(t, first, second, "re-indexing the same content overwrites rather than duplicates")
	})
}
