package vecrawl

import "context"

// SitemapService discovers URLs from a sitemap.
type SitemapService interface {
	// DiscoverURLs fetches the sitemap at sitemapURL and returns the
	// <loc> entries it contains. Sitemap indexes are resolved
	// recursively. The result preserves document order and contains no
	// duplicates.
	DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error)
}
