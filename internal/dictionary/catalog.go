package dictionary

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/wordshift/internal/debug"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/pkg/pathutil"
)

const (
	// DefaultPattern selects dictionary files inside each configured directory
	DefaultPattern = "*.txt"

	defaultProbeConcurrency = 4

	// suggestionThreshold is the minimum Jaro-Winkler similarity for a
	// "did you mean" candidate.
	suggestionThreshold = 0.7
)

// Entry is one selectable dictionary.
type Entry struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// Source returns the Source that fetches this entry.
func (e Entry) Source() Source {
	src := Open(e.Ref)
	if fsrc, ok := src.(*FileSource); ok {
		fsrc.DisplayName = e.Name
	}
	return src
}

// DiscoverOptions controls dictionary discovery.
type DiscoverOptions struct {
	Root        string   // base for relative directories and display names
	Dirs        []string // directories searched with Pattern
	Pattern     string   // doublestar pattern, DefaultPattern when empty
	Sources     []string // explicit file paths or URLs
	Concurrency int      // probe concurrency, 4 when zero
}

// Catalog lists the dictionaries that could actually be fetched.
type Catalog struct {
	entries []Entry
}

// NewCatalog builds a catalog from known entries without probing them.
func NewCatalog(entries ...Entry) *Catalog {
	return &Catalog{entries: entries}
}

// Discover globs every directory, adds explicit sources, and keeps only the
// candidates whose text can be fetched. Probing runs concurrently; entry
// order is deterministic (directories first, in pattern order, then sources).
func Discover(ctx context.Context, opts DiscoverOptions) (*Catalog, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, wserrors.NewConfigError("dictionaries.pattern", pattern, doublestar.ErrBadPattern)
	}

	var candidates []Entry
	seen := make(map[string]bool)
	add := func(e Entry) {
		if seen[e.Ref] {
			return
		}
		seen[e.Ref] = true
		candidates = append(candidates, e)
	}

	for _, dir := range opts.Dirs {
		dir = pathutil.ToAbsolute(dir, opts.Root)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			debug.LogDictionary("skipping dictionary directory %s\n", dir)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s in %s: %w", pattern, dir, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(Entry{Name: m, Ref: filepath.Join(dir, filepath.FromSlash(m))})
		}
	}

	for _, ref := range opts.Sources {
		if isURL(ref) {
			add(Entry{Name: ref, Ref: ref})
			continue
		}
		abs := pathutil.ToAbsolute(ref, opts.Root)
		add(Entry{Name: pathutil.ToRelative(abs, opts.Root), Ref: abs})
	}

	available, err := probe(ctx, candidates, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	debug.LogDictionary("discovered %d of %d candidate dictionaries\n", len(available), len(candidates))
	return &Catalog{entries: available}, nil
}

// probe fetches every candidate and keeps the ones that succeed.
func probe(ctx context.Context, candidates []Entry, concurrency int) ([]Entry, error) {
	if concurrency <= 0 {
		concurrency = defaultProbeConcurrency
	}

	ok := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range candidates {
		g.Go(func() error {
			if _, err := c.Source().Fetch(gctx); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				debug.LogDictionary("dictionary %s unavailable: %v\n", c.Name, err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(candidates))
	for i, c := range candidates {
		if ok[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Entries returns the available dictionaries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the display names of the available dictionaries.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Resolve finds a dictionary by display name, base name (with or without
// extension), or direct reference. An empty name returns ErrNoDictionary.
// Unknown names return a not-found SourceError carrying suggestions.
func (c *Catalog) Resolve(name string) (Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, wserrors.ErrNoDictionary
	}

	for _, e := range c.entries {
		if e.Name == name || e.Ref == name {
			return e.Source(), nil
		}
	}
	for _, e := range c.entries {
		base := path.Base(e.Name)
		if base == name || strings.TrimSuffix(base, path.Ext(base)) == name {
			return e.Source(), nil
		}
	}

	// Direct references bypass the catalog
	if isURL(name) {
		return Open(name), nil
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return Open(name), nil
	}

	return nil, wserrors.NewSourceError("resolve", name, fs.ErrNotExist).
		WithSuggestions(Suggest(name, c.Names(), 3))
}

// Suggest ranks candidates by Jaro-Winkler similarity to name and returns up
// to limit of them above the suggestion threshold, best first.
func Suggest(name string, candidates []string, limit int) []string {
	type scored struct {
		name  string
		score float32
	}

	var ranked []scored
	for _, cand := range candidates {
		score, err := edlib.StringsSimilarity(name, cand, edlib.JaroWinkler)
		if err != nil || score < suggestionThreshold {
			continue
		}
		ranked = append(ranked, scored{name: cand, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}
