// Package dictionary parses newline-delimited word lists into word sets and
// retrieves them from files or URLs.
package dictionary

import "strings"

// WordSet is a set of unique, non-empty words that remembers insertion order.
// Iteration always follows the order in which words were first added, which
// keeps pair search output reproducible for a given dictionary text.
type WordSet struct {
	words []string
	index map[string]struct{}
}

// NewWordSet creates a word set from the given words, trimming each and
// skipping empty and duplicate entries.
func NewWordSet(words ...string) *WordSet {
	s := &WordSet{
		words: make([]string, 0, len(words)),
		index: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add trims w and inserts it. It returns false when w is empty after trimming
// or already present.
func (s *WordSet) Add(w string) bool {
	w = strings.TrimSpace(w)
	if w == "" {
		return false
	}
	if _, ok := s.index[w]; ok {
		return false
	}
	s.index[w] = struct{}{}
	s.words = append(s.words, w)
	return true
}

// Contains reports whether w is a member of the set.
func (s *WordSet) Contains(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[w]
	return ok
}

// Len returns the number of words.
func (s *WordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns a copy of the words in insertion order.
func (s *WordSet) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Each calls fn for every word in insertion order until fn returns false.
func (s *WordSet) Each(fn func(w string) bool) {
	if s == nil {
		return
	}
	for _, w := range s.words {
		if !fn(w) {
			return
		}
	}
}

// Parse splits text on "\n" or "\r\n", trims every line and collects the
// non-empty ones. Duplicates collapse silently; nothing is ever rejected.
func Parse(text string) *WordSet {
	lines := strings.Split(text, "\n")
	s := NewWordSet()
	s.index = make(map[string]struct{}, len(lines))
	for _, line := range lines {
		s.Add(line)
	}
	return s
}
