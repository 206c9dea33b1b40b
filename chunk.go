package vecrawl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Chunk is a bounded span of a page's extracted text, the unit of
// embedding and indexing.
type Chunk struct {
	SourceURL string
	Index     int
	Text      string
}

// Length returns the chunk's text length in bytes.
func (c *Chunk) Length() int { return len(c.Text) }

// RecordMetadata is the metadata stored alongside a vector in the index.
type RecordMetadata struct {
	URL        string
	ChunkIndex int
	Text       string
}

// Record is a vector ready for upsert into the index.
// Records are immutable once created; the same (url, chunk index) pair
// always produces the same ID, so re-indexing a page overwrites its
// previous vectors instead of duplicating them.
type Record struct {
	ID       string
	Values   []float32
	Metadata RecordMetadata
}

// Validate returns an error if the record is not safe to upsert.
func (r *Record) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "record ID required")
	}
	if len(r.Values) == 0 {
		return Errorf(EINVALID, "record values required")
	}
	if r.Metadata.URL == "" {
		return Errorf(EINVALID, "record metadata URL required")
	}
	if r.Metadata.Text == "" {
		return Errorf(EINVALID, "record metadata text required")
	}
	return nil
}

// RecordID derives the deterministic vector ID for a chunk of a page.
func RecordID(url string, chunkIndex int) string {
	h := xxhash.Sum64String(fmt.Sprintf("%s#%d", url, chunkIndex))
	return fmt.Sprintf("%016x", h)
}

// ContentHash computes a stable hash of extracted page content,
// used to detect unchanged pages between runs.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	dotRunRe     = regexp.MustCompile(`\.{2,}`)
	commaRunRe   = regexp.MustCompile(`,{2,}`)
	spacePunctRe = regexp.MustCompile(`\s+([.,;:!?])`)
)

// NormalizeText collapses whitespace and punctuation runs.
// The transformation is idempotent: normalizing already-normalized text
// returns it unchanged.
func NormalizeText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = dotRunRe.ReplaceAllString(text, ".")
	text = commaRunRe.ReplaceAllString(text, ",")
	text = spacePunctRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// SplitText splits text into rune windows of at most size runes with the
// given overlap between consecutive windows. The split is deterministic:
// identical input always yields identical boundaries. The window always
// advances by at least one rune, so the function terminates even when
// overlap >= size.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunkPage normalizes extracted page text and splits it into chunks,
// dropping any chunk whose trimmed text is shorter than minLength.
// A nil result means the page produced no usable content; that is not
// an error.
func ChunkPage(url, text string, size, overlap, minLength int) []*Chunk {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil
	}

	var chunks []*Chunk
	for i, part := range SplitText(normalized, size, overlap) {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) < minLength {
			continue
		}
		chunks = append(chunks, &Chunk{
			SourceURL: url,
			Index:     i,
			Text:      trimmed,
		})
	}
	return chunks
}
