package vecrawl

import "time"

// Config is the finalized configuration the pipeline consumes. It is
// produced by the CLI layer (flags and environment variables) and treated
// as read-only by the core.
type Config struct {
	// URL sources. At least one must be enabled.
	UseStartURL   bool
	StartURL      string
	UseSitemap    bool
	SitemapURL    string
	UseManualURLs bool
	ManualURLs    []string

	// Content processing.
	ChunkSize     int
	ChunkOverlap  int
	MinTextLength int

	// Crawling.
	MaxPages         int
	RequestTimeout   time.Duration
	FailureWindow    int
	FailureThreshold float64

	// Indexing.
	BatchSize          int
	EmbeddingDimension int
}

// Validate returns EINVALID if the configuration cannot produce a valid run.
func (c *Config) Validate() error {
	if !c.UseStartURL && !c.UseSitemap && !c.UseManualURLs {
		return Errorf(EINVALID, "no URL source enabled: enable at least one of start URL, sitemap, or manual URLs")
	}
	if c.UseStartURL && c.StartURL == "" {
		return Errorf(EINVALID, "start URL source enabled but no start URL provided")
	}
	if c.UseSitemap && c.SitemapURL == "" {
		return Errorf(EINVALID, "sitemap source enabled but no sitemap URL provided")
	}
	if c.UseManualURLs && len(c.ManualURLs) == 0 {
		return Errorf(EINVALID, "manual URL source enabled but no URLs provided")
	}
	if c.EmbeddingDimension <= 0 {
		return Errorf(EINVALID, "embedding dimension must be positive")
	}
	if c.ChunkOverlap >= c.ChunkSize && c.ChunkSize > 0 {
		return Errorf(EINVALID, "chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}
