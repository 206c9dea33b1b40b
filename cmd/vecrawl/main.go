// Command vecrawl crawls websites, embeds their content, and maintains a
// Pinecone vector index.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"vecrawl/crawl"
	"vecrawl/gemini"
	"vecrawl/goquery"
	"vecrawl/htmltomarkdown"
	vechttp "vecrawl/http"
	"vecrawl/index"
	"vecrawl/pinecone"
	vecslog "vecrawl/slog"
	"vecrawl/sqlite"
	"vecrawl/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Catalog database path. Set before calling Run().
	DBPath string

	// SQLite database used by the catalog.
	DB *sqlite.DB

	// Vector index connection, closed on exit.
	Index *pinecone.Index
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Index != nil {
		_ = m.Index.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  stdin,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("vecrawl"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Bind(cli),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'vecrawl --help' to see available commands")
	}

	if first := args[0]; first == "help" || first == "--help" || first == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Root-level flags may precede the subcommand, so the command name
	// comes from the parse result rather than args[0].
	cmd := kongCtx.Command()

	defer m.Close()

	// Both commands talk to the vector index.
	m.Index, err = pinecone.Connect(ctx,
		os.Getenv("PINECONE_API_KEY"),
		os.Getenv("PINECONE_INDEX_HOST"),
		cli.Namespace,
	)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set PINECONE_API_KEY and PINECONE_INDEX_HOST")
		return fmt.Errorf("failed to connect to vector index: %w", err)
	}
	deps.Index = vecslog.NewLoggingVectorIndex(m.Index, logger)

	if strings.HasPrefix(cmd, "crawl") {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set VECRAWL_DB to use a different database path\n")
			return fmt.Errorf("failed to open catalog at %q: %w", m.DBPath, err)
		}
		deps.DB = m.DB
		deps.Catalog = sqlite.NewCatalogService(m.DB)

		fetcher := vecslog.NewLoggingFetcher(
			vechttp.NewFetcher(vechttp.WithTimeout(cli.Crawl.RequestTimeout)), logger)
		defer fetcher.Close()

		sitemaps := vecslog.NewLoggingSitemapService(
			vechttp.NewSitemapService(vechttp.WithSitemapTimeout(cli.Crawl.RequestTimeout)), logger)
		deps.Resolver = &crawl.Resolver{Sitemaps: sitemaps}

		deps.Writer = index.NewWriter(deps.Index, cli.Crawl.BatchSize)

		deps.Crawler = &crawl.Crawler{
			Fetcher:     fetcher,
			Links:       goquery.NewLinkExtractor(),
			Extractor:   trafilatura.NewExtractor(),
			Converter:   htmltomarkdown.NewConverter(),
			Text:        goquery.NewTextExtractor(),
			Embedder:    gemini.NewEmbedder(client, cli.EmbedModel, cli.EmbeddingDimension),
			Records:     deps.Writer,
			Catalog:     deps.Catalog,
			RateLimiter: crawl.NewDomainLimiter(cli.Crawl.RPS),
			Recrawl:     cli.Crawl.Recrawl,
			Concurrency: cli.Crawl.Concurrency,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("VECRAWL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "vecrawl.db"
	}
	dir := filepath.Join(home, ".vecrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "vecrawl.db")
}
