// Package grapheme treats strings as sequences of user-perceived characters
// (extended grapheme clusters), the unit every word, grid cell and mapping
// entry in wordshift is measured in.
package grapheme

import (
	"strings"

	"github.com/rivo/uniseg"
)

// First returns the first grapheme cluster of s, or "" for an empty string.
func First(s string) string {
	if s == "" {
		return ""
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return cluster
}

// Split returns the grapheme clusters of s in order.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// IsSingle reports whether s is exactly one grapheme cluster.
func IsSingle(s string) bool {
	if s == "" {
		return false
	}
	_, rest, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return rest == ""
}

// Normalize trims surrounding whitespace and keeps only the first grapheme.
// Empty input stays empty.
func Normalize(s string) string {
	return First(strings.TrimSpace(s))
}
