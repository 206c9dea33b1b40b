package vecrawl

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the page body at url.
	// The context controls timeout and cancellation. Non-2xx responses
	// are returned as errors.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter transforms HTML into a plain-text representation suitable
// for chunking and embedding.
type Converter interface {
	Convert(html string) (string, error)
}

// TextExtractor extracts the full visible text of an HTML page without
// boilerplate removal. It serves as the fallback when main-content
// extraction finds nothing usable.
type TextExtractor interface {
	ExtractText(html string) (string, error)
}

// LinkExtractor extracts hyperlinks from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns absolute http(s) URLs,
	// resolved against baseURL, with fragments stripped and duplicates
	// removed. Order follows first occurrence in the document.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
