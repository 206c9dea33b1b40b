package vecrawl

import "context"

// Embedder turns text into a fixed-dimension vector using an external
// embedding model.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the dimensionality of vectors produced by Embed.
	Dimension() int
}
