// Package session holds the state a front end keeps between calls: the
// canonical substitution map, the pairs of the last search and the current
// page. The grid and CSV views are projections of the canonical map; editing
// either view rebuilds the map and the other view follows from it.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/internal/store"
)

// Keys used in the state store.
const (
	KeyMapping   = "ws_alt"
	KeyValueGrid = "ws_alt_grid_value"
)

// ErrCellNotEditable is returned when editing a blocked or unused cell.
var ErrCellNotEditable = errors.New("cell is not editable")

// Session is the explicit context for one user of the finder.
type Session struct {
	layout    *grid.Layout
	canonical *mapping.Map
	pairs     []search.Pair
	pageSize  int
	page      int
}

// New creates a session over layout with an empty map.
func New(layout *grid.Layout) *Session {
	return &Session{
		layout:    layout,
		canonical: mapping.New(),
		pageSize:  paging.DefaultPageSize,
		page:      1,
	}
}

// NewDefault creates a session with the built-in layout and value grid.
func NewDefault() *Session {
	s := New(grid.DefaultLayout())
	s.canonical = grid.ToMapping(s.layout, grid.DefaultValueGrid())
	return s
}

// Layout returns the key layout.
func (s *Session) Layout() *grid.Layout {
	return s.layout
}

// Mapping returns a copy of the canonical map.
func (s *Session) Mapping() *mapping.Map {
	return s.canonical.Clone()
}

// SetMapping replaces the canonical map with a copy of m.
func (s *Session) SetMapping(m *mapping.Map) {
	s.canonical = m.Clone()
}

// ApplyCSV parses text and, on success, makes it the canonical map.
func (s *Session) ApplyCSV(text string, mode mapping.ParseMode) (mapping.ParseReport, error) {
	m, report, err := mapping.ParseWithReport(KeyMapping, text, mode)
	if err != nil {
		return report, err
	}
	s.canonical = m
	return report, nil
}

// ApplySource fetches CSV text from src and applies it like ApplyCSV.
func (s *Session) ApplySource(ctx context.Context, src dictionary.Source, mode mapping.ParseMode) (mapping.ParseReport, error) {
	text, err := src.Fetch(ctx)
	if err != nil {
		return mapping.ParseReport{}, err
	}
	m, report, err := mapping.ParseWithReport(src.Name(), text, mode)
	if err != nil {
		return report, err
	}
	s.canonical = m
	return report, nil
}

// EditCell writes text (normalized to one grapheme) into an active value
// cell and rebuilds the canonical map from the resulting grid.
func (s *Session) EditCell(index int, text string) error {
	if index < 0 || index >= grid.Size {
		return fmt.Errorf("%w: %d", grid.ErrBadIndex, index)
	}
	if !s.layout.Active(index) {
		return fmt.Errorf("%w: %d", ErrCellNotEditable, index)
	}

	v := s.ValueGrid()
	if err := v.Set(index, text); err != nil {
		return err
	}
	s.canonical = grid.ToMapping(s.layout, v)
	return nil
}

// ApplyGrid replaces the value grid with lines and rebuilds the canonical map.
func (s *Session) ApplyGrid(lines []string) error {
	v, err := grid.FromLines(lines)
	if err != nil {
		return err
	}
	s.canonical = grid.ToMapping(s.layout, s.layout.Conform(v))
	return nil
}

// ValueGrid projects the canonical map onto the layout.
func (s *Session) ValueGrid() grid.Grid {
	return grid.ValueGridFromMapping(s.canonical, s.layout)
}

// CSV projects the canonical map as CSV text.
func (s *Session) CSV() string {
	return mapping.Serialize(s.canonical)
}

// Search runs the pair finder against the canonical map, replaces the
// previous results and returns to page 1.
func (s *Session) Search(ctx context.Context, words *dictionary.WordSet, opts search.Options) ([]search.Pair, error) {
	pairs, err := search.FindPairs(ctx, words, s.canonical, opts)
	if err != nil {
		return nil, err
	}
	s.pairs = pairs
	s.page = 1
	return pairs, nil
}

// Pairs returns the results of the last search.
func (s *Session) Pairs() []search.Pair {
	return s.pairs
}

// SetPageSize changes the page size; non-positive sizes use the default.
// The current page is clamped to the new page count.
func (s *Session) SetPageSize(size int) {
	if size <= 0 {
		size = paging.DefaultPageSize
	}
	s.pageSize = size
	s.page = paging.Clamp(s.page, paging.TotalPages(len(s.pairs), size))
}

// Page returns the current page.
func (s *Session) Page() paging.Result[search.Pair] {
	return paging.Page(s.pairs, s.pageSize, s.page)
}

// GoTo moves to page n, clamped into range.
func (s *Session) GoTo(n int) paging.Result[search.Pair] {
	res := paging.Page(s.pairs, s.pageSize, n)
	s.page = res.Number
	return res
}

// Move moves by offset pages, clamped into range.
func (s *Session) Move(offset int) paging.Result[search.Pair] {
	total := paging.TotalPages(len(s.pairs), s.pageSize)
	return s.GoTo(paging.Move(s.page, offset, total))
}

// Save writes the CSV and value grid projections to st.
func (s *Session) Save(st store.Store) error {
	if err := st.Set(KeyMapping, s.CSV()); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	v := s.ValueGrid()
	if err := st.Set(KeyValueGrid, v.String()); err != nil {
		return fmt.Errorf("failed to save value grid: %w", err)
	}
	return nil
}

// Restore loads the saved CSV, falling back to the saved value grid. It
// reports whether anything was restored. Saved text is parsed leniently.
func (s *Session) Restore(st store.Store) (bool, error) {
	if csv, ok := st.Get(KeyMapping); ok && strings.TrimSpace(csv) != "" {
		if _, err := s.ApplyCSV(csv, mapping.Lenient); err != nil {
			return false, err
		}
		return true, nil
	}
	if lines, ok := st.Get(KeyValueGrid); ok && strings.TrimSpace(lines) != "" {
		if err := s.ApplyGrid(strings.Split(lines, "\n")); err != nil {
			return false, fmt.Errorf("failed to restore value grid: %w", err)
		}
		return true, nil
	}
	return false, nil
}
