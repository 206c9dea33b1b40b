package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"vecrawl"
	"vecrawl/crawl"
	"vecrawl/index"
	"vecrawl/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger

	DB       *sqlite.DB
	Catalog  vecrawl.Catalog
	Resolver *crawl.Resolver
	Crawler  *crawl.Crawler
	Writer   *index.Writer
	Index    vecrawl.VectorIndex
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	EmbedModel         string `env:"EMBED_MODEL" default:"gemini-embedding-001" help:"Gemini embedding model"`
	EmbeddingDimension int    `env:"EMBEDDING_DIMENSION" default:"1536" help:"Embedding vector dimensionality"`
	Namespace          string `env:"PINECONE_NAMESPACE" help:"Pinecone namespace"`

	Crawl CrawlCmd `cmd:"" help:"Crawl the configured URL sources and index their content"`
	Clean CleanCmd `cmd:"" help:"Scan the vector index and remove defective entries"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	StartURL      string   `env:"START_URL" help:"Start URL for link traversal"`
	UseStartURL   bool     `env:"USE_START_URL" help:"Enable the start URL source"`
	SitemapURL    string   `env:"SITEMAP_URL" help:"Sitemap URL"`
	UseSitemap    bool     `env:"USE_SITEMAP" help:"Enable the sitemap source"`
	ManualURL     []string `env:"MANUAL_URLS" help:"Explicit URL to index (repeatable)"`
	UseManualURLs bool     `name:"use-manual-urls" env:"USE_MANUAL_URLS" help:"Enable the manual URL source"`

	ChunkSize     int `env:"CHUNK_SIZE" default:"1000" help:"Chunk size in characters"`
	ChunkOverlap  int `env:"CHUNK_OVERLAP" default:"200" help:"Overlap between adjacent chunks"`
	MinTextLength int `env:"MIN_TEXT_LENGTH" default:"50" help:"Minimum chunk text length"`

	MaxPages         int           `env:"MAX_PAGES" help:"Page limit for the run (0 = unlimited)"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" default:"10s" help:"HTTP request timeout"`
	FailureWindow    int           `env:"FAILURE_WINDOW" default:"10" help:"Fetch attempts in the failure window (0 disables)"`
	FailureThreshold float64       `env:"FAILURE_THRESHOLD" default:"0.5" help:"Failure rate that aborts the crawl"`

	BatchSize   int     `env:"BATCH_SIZE" default:"50" help:"Upsert batch size"`
	Concurrency int     `short:"c" default:"10" help:"Concurrent fetch limit for seed lists"`
	RPS         float64 `name:"rps" default:"1" help:"Per-domain requests per second"`
	Recrawl     bool    `help:"Re-fetch pages already recorded in the catalog"`
}

// Config builds the pipeline configuration from the command's flags.
func (c *CrawlCmd) Config(dimension int) *vecrawl.Config {
	return &vecrawl.Config{
		UseStartURL:        c.UseStartURL,
		StartURL:           c.StartURL,
		UseSitemap:         c.UseSitemap,
		SitemapURL:         c.SitemapURL,
		UseManualURLs:      c.UseManualURLs,
		ManualURLs:         c.ManualURL,
		ChunkSize:          c.ChunkSize,
		ChunkOverlap:       c.ChunkOverlap,
		MinTextLength:      c.MinTextLength,
		MaxPages:           c.MaxPages,
		RequestTimeout:     c.RequestTimeout,
		FailureWindow:      c.FailureWindow,
		FailureThreshold:   c.FailureThreshold,
		BatchSize:          c.BatchSize,
		EmbeddingDimension: dimension,
	}
}

// CleanCmd is the "clean" subcommand.
type CleanCmd struct {
	Epsilon       float64 `env:"EMBEDDING_NEAR_ZERO_EPSILON" default:"1e-6" help:"L1 magnitude below which a vector counts as near-zero"`
	MinTextLength int     `env:"MIN_TEXT_LENGTH" default:"50" help:"Minimum metadata text length"`
	MaxIterations int     `env:"MAX_ITERATIONS" default:"100" help:"Scan page limit"`
	BatchSize     int     `env:"SCAN_BATCH_SIZE" default:"1000" help:"Entries per scan page"`
	DryRun        bool    `help:"Classify and count without deleting"`
	Yes           bool    `short:"y" help:"Skip the confirmation prompt"`
}
