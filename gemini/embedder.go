// Package gemini implements text embedding using the Google Gemini API.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"vecrawl"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// Ensure Embedder implements vecrawl.Embedder at compile time.
var _ vecrawl.Embedder = (*Embedder)(nil)

// Embedder implements vecrawl.Embedder using Google Gemini embeddings.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewEmbedder creates a new Embedder producing vectors of the given
// dimension. An empty model selects DefaultModel.
func NewEmbedder(client *genai.Client, model string, dimension int) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	return &Embedder{client: client, model: model, dimension: dimension}
}

// Embed produces an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, vecrawl.Errorf(vecrawl.EINVALID, "text required")
	}

	dim := int32(e.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		config,
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, vecrawl.Errorf(vecrawl.EINTERNAL, "gemini returned no embedding")
	}

	values := result.Embeddings[0].Values
	if len(values) != e.dimension {
		return nil, vecrawl.Errorf(vecrawl.EINTERNAL, "gemini returned %d-dimensional embedding, want %d", len(values), e.dimension)
	}

	return values, nil
}

// Dimension returns the configured embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}
