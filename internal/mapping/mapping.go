// Package mapping holds the substitution map: a table from a single source
// grapheme to a single destination grapheme, applied character by character
// to dictionary words.
package mapping

import "github.com/standardbeagle/wordshift/internal/grapheme"

// Entry is one source → destination row.
type Entry struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Map is a substitution table. A source maps to at most one destination and
// later writes replace earlier ones, but each source keeps the position of
// its first insertion so serialization order is stable.
//
// An empty destination means "no mapping": the source maps to itself.
type Map struct {
	order []string
	dest  map[string]string
}

// New creates an empty map.
func New() *Map {
	return &Map{dest: make(map[string]string)}
}

// FromEntries builds a map from entries in order.
func FromEntries(entries ...Entry) *Map {
	m := New()
	for _, e := range entries {
		m.Set(e.Source, e.Destination)
	}
	return m
}

// Set maps source to destination. An empty source is ignored.
func (m *Map) Set(source, destination string) {
	if source == "" {
		return
	}
	if _, ok := m.dest[source]; !ok {
		m.order = append(m.order, source)
	}
	m.dest[source] = destination
}

// Get returns the raw destination stored for source.
func (m *Map) Get(source string) (string, bool) {
	if m == nil {
		return "", false
	}
	d, ok := m.dest[source]
	return d, ok
}

// Covers reports whether source has a non-empty destination.
func (m *Map) Covers(source string) bool {
	d, ok := m.Get(source)
	return ok && d != ""
}

// Apply returns the substitute for one grapheme, falling back to g itself.
func (m *Map) Apply(g string) string {
	if d, ok := m.Get(g); ok && d != "" {
		return d
	}
	return g
}

// Substitute applies the map to every grapheme of word.
func (m *Map) Substitute(word string) string {
	out := make([]byte, 0, len(word))
	for _, g := range grapheme.Split(word) {
		out = append(out, m.Apply(g)...)
	}
	return string(out)
}

// Len returns the number of entries, including empty destinations.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Effective returns the number of entries with a non-empty destination.
func (m *Map) Effective() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, d := range m.dest {
		if d != "" {
			n++
		}
	}
	return n
}

// Entries returns the entries in first-insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.order))
	for i, src := range m.order {
		out[i] = Entry{Source: src, Destination: m.dest[src]}
	}
	return out
}

// Equal reports whether both maps hold the same source → destination pairs,
// ignoring order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, e := range m.Entries() {
		d, ok := other.Get(e.Source)
		if !ok || d != e.Destination {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	return FromEntries(m.Entries()...)
}
