package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"

	"vecrawl"
)

// maxSitemapDepth bounds recursion through nested sitemap index files.
const maxSitemapDepth = 5

var _ vecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from XML sitemaps. It handles both
// plain urlset sitemaps and sitemap index files that point at further
// sitemaps.
type SitemapService struct {
	client *http.Client
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapTimeout sets the timeout for sitemap HTTP requests.
func WithSitemapTimeout(d time.Duration) SitemapOption {
	return func(s *SitemapService) {
		s.client.Timeout = d
	}
}

// NewSitemapService creates a new sitemap-based URL discovery service.
func NewSitemapService(opts ...SitemapOption) *SitemapService {
	s := &SitemapService{
		client: &http.Client{Timeout: DefaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs fetches the sitemap at sitemapURL and returns the page URLs
// it lists, in document order with duplicates removed. Sitemap index files
// are followed recursively.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	seen := make(map[string]struct{})
	urls, err := s.discover(ctx, sitemapURL, seen, 0)
	if err != nil {
		return nil, vecrawl.Errorf(vecrawl.EUNAVAILABLE, "sitemap %s: %v", sitemapURL, err)
	}
	return urls, nil
}

func (s *SitemapService) discover(ctx context.Context, sitemapURL string, seen map[string]struct{}, depth int) ([]string, error) {
	if depth > maxSitemapDepth {
		return nil, fmt.Errorf("sitemap nesting exceeds depth %d", maxSitemapDepth)
	}

	body, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parse sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap document")
	}

	var urls []string
	switch root.Tag {
	case "urlset":
		for _, u := range root.SelectElements("url") {
			loc := u.SelectElement("loc")
			if loc == nil {
				continue
			}
			page := loc.Text()
			if page == "" {
				continue
			}
			if _, ok := seen[page]; ok {
				continue
			}
			seen[page] = struct{}{}
			urls = append(urls, page)
		}
	case "sitemapindex":
		for _, sm := range root.SelectElements("sitemap") {
			loc := sm.SelectElement("loc")
			if loc == nil || loc.Text() == "" {
				continue
			}
			nested, err := s.discover(ctx, loc.Text(), seen, depth+1)
			if err != nil {
				return nil, err
			}
			urls = append(urls, nested...)
		}
	default:
		return nil, fmt.Errorf("unexpected sitemap root element %q", root.Tag)
	}

	return urls, nil
}

func (s *SitemapService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
