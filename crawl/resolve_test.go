package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrawl"
	"vecrawl/crawl"
	"vecrawl/mock"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Docs", "https://example.com/Docs"},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strips default https port", "https://example.com:443/page", "https://example.com/page"},
		{"strips default http port", "http://example.com:80/page", "http://example.com/page"},
		{"keeps non-default port", "https://example.com:8443/page", "https://example.com:8443/page"},
		{"adds root path", "https://example.com", "https://example.com/"},
		{"trims trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := crawl.NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()

		_, err := crawl.NormalizeURL("ftp://example.com/file")
		assert.Error(t, err)

		_, err = crawl.NormalizeURL("mailto:someone@example.com")
		assert.Error(t, err)
	})
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", crawl.RegistrableDomain("https://docs.example.com/page"))
	assert.Equal(t, "example.co.uk", crawl.RegistrableDomain("https://www.example.co.uk/"))
	assert.Equal(t, "localhost", crawl.RegistrableDomain("http://localhost:8080/page"))
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	cfg := func() *vecrawl.Config {
		return &vecrawl.Config{EmbeddingDimension: 1536}
	}

	t.Run("returns EINVALID when no source is enabled", func(t *testing.T) {
		t.Parallel()

		r := &crawl.Resolver{}
		_, err := r.Resolve(context.Background(), cfg())

		require.Error(t, err)
		assert.Equal(t, vecrawl.EINVALID, vecrawl.ErrorCode(err))
	})

	t.Run("merges sources in order with deduplication", func(t *testing.T) {
		t.Parallel()

		c := cfg()
		c.UseStartURL = true
		c.StartURL = "https://example.com/"
		c.UseSitemap = true
		c.SitemapURL = "https://example.com/sitemap.xml"
		c.UseManualURLs = true
		c.ManualURLs = []string{"https://example.com/c", "https://example.com/a"}

		r := &crawl.Resolver{Sitemaps: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, sitemapURL string) ([]string, error) {
				return []string{"https://example.com/a", "https://example.com/b", "https://example.com/"}, nil
			},
		}}

		seeds, err := r.Resolve(context.Background(), c)
		require.NoError(t, err)

		assert.Equal(t, "https://example.com/", seeds.StartURL)
		assert.Equal(t, "example.com", seeds.StartDomain)
		assert.Equal(t, []string{
			"https://example.com/",
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
		}, seeds.URLs)
		assert.Empty(t, seeds.SourceErrs)
	})

	t.Run("deduplicates equivalent URL spellings", func(t *testing.T) {
		t.Parallel()

		c := cfg()
		c.UseManualURLs = true
		c.ManualURLs = []string{
			"https://example.com/docs",
			"https://EXAMPLE.com/docs/",
			"https://example.com/docs#intro",
		}

		r := &crawl.Resolver{}
		seeds, err := r.Resolve(context.Background(), c)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://example.com/docs"}, seeds.URLs)
	})

	t.Run("sitemap-only failure returns EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		c := cfg()
		c.UseSitemap = true
		c.SitemapURL = "https://example.com/sitemap.xml"

		r := &crawl.Resolver{Sitemaps: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, sitemapURL string) ([]string, error) {
				return nil, errors.New("HTTP 503")
			},
		}}

		_, err := r.Resolve(context.Background(), c)
		require.Error(t, err)
		assert.Equal(t, vecrawl.EUNAVAILABLE, vecrawl.ErrorCode(err))
	})

	t.Run("sitemap failure with other sources is non-fatal", func(t *testing.T) {
		t.Parallel()

		c := cfg()
		c.UseSitemap = true
		c.SitemapURL = "https://example.com/sitemap.xml"
		c.UseManualURLs = true
		c.ManualURLs = []string{"https://example.com/a"}

		r := &crawl.Resolver{Sitemaps: &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, sitemapURL string) ([]string, error) {
				return nil, errors.New("HTTP 503")
			},
		}}

		seeds, err := r.Resolve(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a"}, seeds.URLs)
		assert.Len(t, seeds.SourceErrs, 1)
	})

	t.Run("invalid manual URL is skipped with a source error", func(t *testing.T) {
		t.Parallel()

		c := cfg()
		c.UseManualURLs = true
		c.ManualURLs = []string{"ftp://example.com/file", "https://example.com/ok"}

		r := &crawl.Resolver{}
		seeds, err := r.Resolve(context.Background(), c)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://example.com/ok"}, seeds.URLs)
		assert.Len(t, seeds.SourceErrs, 1)
	})
}
