// Package pinecone implements vecrawl.VectorIndex backed by a Pinecone
// serverless index.
package pinecone

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"vecrawl"
)

// Ensure Index implements vecrawl.VectorIndex at compile time.
var _ vecrawl.VectorIndex = (*Index)(nil)

// Index wraps a Pinecone index connection.
type Index struct {
	conn *pinecone.IndexConnection
}

// Connect creates a Pinecone client and opens a connection to the index at
// the given host, scoped to namespace.
func Connect(ctx context.Context, apiKey, host, namespace string) (*Index, error) {
	if apiKey == "" {
		return nil, vecrawl.Errorf(vecrawl.EINVALID, "Pinecone API key required")
	}
	if host == "" {
		return nil, vecrawl.Errorf(vecrawl.EINVALID, "Pinecone index host required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, err
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: namespace})
	if err != nil {
		return nil, err
	}

	return &Index{conn: conn}, nil
}

// NewIndex wraps an existing index connection. Used by tests.
func NewIndex(conn *pinecone.IndexConnection) *Index {
	return &Index{conn: conn}
}

// Upsert inserts or overwrites records keyed by ID.
func (idx *Index) Upsert(ctx context.Context, records []*vecrawl.Record) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		metadata, err := structpb.NewStruct(map[string]any{
			"url":         r.Metadata.URL,
			"chunk_index": r.Metadata.ChunkIndex,
			"text":        r.Metadata.Text,
		})
		if err != nil {
			return vecrawl.Errorf(vecrawl.EINTERNAL, "build metadata for %s: %v", r.ID, err)
		}

		values := r.Values
		vectors = append(vectors, &pinecone.Vector{
			Id:       r.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}

	_, err := idx.conn.UpsertVectors(ctx, vectors)
	return err
}

// ListPage returns one page of index entries starting at cursor. Pinecone's
// list endpoint returns IDs only, so the entries are hydrated with a fetch.
func (idx *Index) ListPage(ctx context.Context, cursor string, limit int) ([]*vecrawl.IndexEntry, string, error) {
	req := &pinecone.ListVectorsRequest{}
	if limit > 0 {
		l := uint32(limit)
		req.Limit = &l
	}
	if cursor != "" {
		req.PaginationToken = &cursor
	}

	page, err := idx.conn.ListVectors(ctx, req)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(page.VectorIds))
	for _, id := range page.VectorIds {
		if id != nil {
			ids = append(ids, *id)
		}
	}

	var next string
	if page.NextPaginationToken != nil {
		next = *page.NextPaginationToken
	}

	if len(ids) == 0 {
		return nil, next, nil
	}

	fetched, err := idx.conn.FetchVectors(ctx, ids)
	if err != nil {
		return nil, "", err
	}

	// Keep list order so a page reads the same way on retry.
	entries := make([]*vecrawl.IndexEntry, 0, len(ids))
	for _, id := range ids {
		v, ok := fetched.Vectors[id]
		if !ok {
			continue
		}
		entries = append(entries, toEntry(v))
	}

	return entries, next, nil
}

// Delete removes the vectors with the given IDs.
func (idx *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return idx.conn.DeleteVectorsById(ctx, ids)
}

// Dimension returns the index's configured vector dimensionality.
func (idx *Index) Dimension(ctx context.Context) (int, error) {
	stats, err := idx.conn.DescribeIndexStats(ctx)
	if err != nil {
		return 0, err
	}
	if stats.Dimension == nil {
		return 0, vecrawl.Errorf(vecrawl.EINTERNAL, "index stats missing dimension")
	}
	return int(*stats.Dimension), nil
}

// Close closes the underlying index connection.
func (idx *Index) Close() error {
	return idx.conn.Close()
}

func toEntry(v *pinecone.Vector) *vecrawl.IndexEntry {
	entry := &vecrawl.IndexEntry{ID: v.Id}
	if v.Values != nil {
		entry.Values = *v.Values
	}
	if v.Metadata != nil {
		entry.Metadata = v.Metadata.AsMap()
	}
	return entry
}
