// Package vecrawl provides a website-to-vector-index pipeline.
// It discovers pages on a target site, extracts and cleans their text,
// splits the text into chunks, embeds each chunk, and upserts the vectors
// into a remote vector index for semantic retrieval. A companion scanner
// pages through the live index and removes defective vectors.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., pinecone/, gemini/, goquery/).
package vecrawl
