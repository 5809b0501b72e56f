// Package search finds word pairs related by a substitution map.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/standardbeagle/wordshift/internal/debug"
	"github.com/standardbeagle/wordshift/internal/dictionary"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/grapheme"
	"github.com/standardbeagle/wordshift/internal/mapping"
)

// cancelCheckInterval is how many words are processed between context checks.
const cancelCheckInterval = 1024

// IdentityPolicy decides when a word that maps onto itself is reported.
type IdentityPolicy int

const (
	// IdentityTouched reports w == derived when the map has no effective
	// entries, or when w contains a character the map explicitly covers.
	IdentityTouched IdentityPolicy = iota
	// IdentityAll reports every self-pair.
	IdentityAll
	// IdentityNone never reports self-pairs.
	IdentityNone
)

// String returns the config spelling of the policy.
func (p IdentityPolicy) String() string {
	switch p {
	case IdentityAll:
		return "all"
	case IdentityNone:
		return "none"
	default:
		return "touched"
	}
}

// ParseIdentityPolicy converts "touched", "all" or "none" (empty means touched).
func ParseIdentityPolicy(s string) (IdentityPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "touched":
		return IdentityTouched, nil
	case "all":
		return IdentityAll, nil
	case "none":
		return IdentityNone, nil
	default:
		return IdentityTouched, fmt.Errorf("unknown identity policy %q (want touched, all or none)", s)
	}
}

// Options configures FindPairs.
type Options struct {
	IdentityPairs IdentityPolicy
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{IdentityPairs: IdentityTouched}
}

// WithIdentityPairs returns opts with self-pairs switched on (the touched
// policy) or off.
func (o Options) WithIdentityPairs(include bool) Options {
	if include {
		if o.IdentityPairs == IdentityNone {
			o.IdentityPairs = IdentityTouched
		}
		return o
	}
	o.IdentityPairs = IdentityNone
	return o
}

// Pair is a dictionary word and the dictionary word it maps onto.
type Pair struct {
	Source  string `json:"source"`
	Derived string `json:"derived"`
}

// FindPairs substitutes every word in words through m and returns the pairs
// whose result is also in words. Words are visited in insertion order and
// the result is stably sorted by descending source length in graphemes, so
// equal-length pairs keep dictionary order.
//
// The context is checked periodically; a cancelled search returns the
// context error and no pairs.
func FindPairs(ctx context.Context, words *dictionary.WordSet, m *mapping.Map, opts Options) ([]Pair, error) {
	if words == nil {
		return nil, wserrors.ErrNoDictionary
	}

	start := time.Now()
	emptyMap := m.Effective() == 0

	var (
		pairs   []Pair
		lengths []int
		seen    int
		ctxErr  error
	)

	words.Each(func(w string) bool {
		seen++
		if seen%cancelCheckInterval == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}

		graphemes := grapheme.Split(w)
		var sb strings.Builder
		sb.Grow(len(w))
		touched := false
		for _, g := range graphemes {
			if m.Covers(g) {
				touched = true
			}
			sb.WriteString(m.Apply(g))
		}
		derived := sb.String()

		if !words.Contains(derived) {
			return true
		}
		if derived == w && !keepIdentity(opts.IdentityPairs, emptyMap, touched) {
			return true
		}

		pairs = append(pairs, Pair{Source: w, Derived: derived})
		lengths = append(lengths, len(graphemes))
		return true
	})

	if ctxErr != nil {
		return nil, ctxErr
	}

	sort.Stable(byLength{pairs: pairs, lengths: lengths})

	debug.LogSearch("found %d pairs among %d words in %v\n", len(pairs), words.Len(), time.Since(start))
	return pairs, nil
}

func keepIdentity(policy IdentityPolicy, emptyMap, touched bool) bool {
	switch policy {
	case IdentityAll:
		return true
	case IdentityNone:
		return false
	default:
		return emptyMap || touched
	}
}

// byLength sorts pairs by descending source length, moving the cached
// lengths along with them.
type byLength struct {
	pairs   []Pair
	lengths []int
}

func (b byLength) Len() int           { return len(b.pairs) }
func (b byLength) Less(i, j int) bool { return b.lengths[i] > b.lengths[j] }
func (b byLength) Swap(i, j int) {
	b.pairs[i], b.pairs[j] = b.pairs[j], b.pairs[i]
	b.lengths[i], b.lengths[j] = b.lengths[j], b.lengths[i]
}

// FormatCSV renders pairs as "source,derived" lines joined by "\n".
func FormatCSV(pairs []Pair) string {
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = p.Source + "," + p.Derived
	}
	return strings.Join(lines, "\n")
}
