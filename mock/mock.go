// Package mock provides function-field mock implementations of the root
// interfaces for use in tests.
package mock

import (
	"context"

	"vecrawl"
)

var _ vecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of vecrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ vecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of vecrawl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, sitemapURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, sitemapURL)
}

var _ vecrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of vecrawl.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*vecrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*vecrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ vecrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of vecrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ vecrawl.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of vecrawl.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(html string) (string, error)
}

func (e *TextExtractor) ExtractText(html string) (string, error) {
	return e.ExtractTextFn(html)
}

var _ vecrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of vecrawl.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

var _ vecrawl.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of vecrawl.Embedder.
type Embedder struct {
	EmbedFn     func(ctx context.Context, text string) ([]float32, error)
	DimensionFn func() int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Dimension() int {
	return e.DimensionFn()
}
