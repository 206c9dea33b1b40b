// Package scan provides the index quality scanner. It pages through the
// live vector index, classifies each entry against a set of defect rules,
// and deletes defective vectors in batches.
package scan

import (
	"math"
	"strings"

	"vecrawl"
)

// Rule classifies an index entry as defective. Rules are pure predicates
// so new quality checks can be added without touching the scan loop.
type Rule struct {
	// Name identifies the rule in reports and logs.
	Name string

	// Defective returns true if the entry should be deleted.
	Defective func(entry *vecrawl.IndexEntry) bool
}

// NearZeroRule flags vectors whose L1 magnitude (sum of absolute
// components) falls below epsilon, indicating a likely embedding failure.
func NearZeroRule(epsilon float64) Rule {
	return Rule{
		Name: "near_zero",
		Defective: func(entry *vecrawl.IndexEntry) bool {
			var sum float64
			for _, v := range entry.Values {
				sum += math.Abs(float64(v))
			}
			return sum < epsilon
		},
	}
}

// ShortTextRule flags entries whose text metadata is missing, empty, or
// shorter than minLength after trimming.
func ShortTextRule(minLength int) Rule {
	return Rule{
		Name: "short_text",
		Defective: func(entry *vecrawl.IndexEntry) bool {
			text, ok := entry.Metadata["text"].(string)
			if !ok {
				return true
			}
			return len(strings.TrimSpace(text)) < minLength
		},
	}
}

// MalformedRule flags entries missing required metadata fields or whose
// vector has the wrong dimensionality. A dimension of zero skips the
// dimensionality check.
func MalformedRule(dimension int) Rule {
	return Rule{
		Name: "malformed",
		Defective: func(entry *vecrawl.IndexEntry) bool {
			if dimension > 0 && len(entry.Values) != dimension {
				return true
			}
			if url, ok := entry.Metadata["url"].(string); !ok || url == "" {
				return true
			}
			if _, ok := entry.Metadata["text"].(string); !ok {
				return true
			}
			return false
		},
	}
}

// DefaultRules returns the standard defect rule set.
func DefaultRules(minTextLength int, epsilon float64, dimension int) []Rule {
	return []Rule{
		NearZeroRule(epsilon),
		ShortTextRule(minTextLength),
		MalformedRule(dimension),
	}
}
