// Package grid converts between the 5×18 key/value grid pair and the flat
// substitution map.
//
// The key layout is read-only: each cell is empty, a block marker, or the
// source character for that position. The value grid holds the destination
// for every active position. Cells are addressed by index = row*Cols + col.
package grid

import (
	"errors"
	"fmt"
	"strings"

	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/grapheme"
)

const (
	Rows = 5
	Cols = 18
	Size = Rows * Cols

	// BlockMarker marks an inactive position. AltBlockMarker is accepted as
	// an equivalent on input.
	BlockMarker    = "＃"
	AltBlockMarker = "#"

	// Placeholder is the destination emitted for an active position whose
	// value cell is empty or blocked.
	Placeholder = "？"

	// emptyCell stands for an empty cell in the line form.
	emptyCell = " "
)

var (
	ErrTooManyRows = fmt.Errorf("grid has more than %d rows", Rows)
	ErrRowTooLong  = fmt.Errorf("grid row has more than %d cells", Cols)
	ErrBadIndex    = errors.New("cell index out of range")
)

// IsBlock reports whether s is either block marker glyph.
func IsBlock(s string) bool {
	return s == BlockMarker || s == AltBlockMarker
}

// NormalizeCell trims text and keeps its first grapheme. Empty stays empty.
func NormalizeCell(text string) string {
	return grapheme.Normalize(text)
}

// Index returns the cell index of a row and column.
func Index(row, col int) int {
	return row*Cols + col
}

// Grid is a 5×18 matrix of cells holding zero or one grapheme each.
type Grid [Size]string

// Cell returns the content of cell i, or "" when i is out of range.
func (g *Grid) Cell(i int) string {
	if i < 0 || i >= Size {
		return ""
	}
	return g[i]
}

// Set stores the normalized text in cell i.
func (g *Grid) Set(i int, text string) error {
	if i < 0 || i >= Size {
		return fmt.Errorf("%w: %d", ErrBadIndex, i)
	}
	g[i] = NormalizeCell(text)
	return nil
}

// Lines renders the grid as Rows lines, one grapheme per cell. Empty cells
// are written as a space and trailing empty cells are dropped.
func (g *Grid) Lines() []string {
	lines := make([]string, Rows)
	for r := 0; r < Rows; r++ {
		var sb strings.Builder
		for c := 0; c < Cols; c++ {
			cell := g[Index(r, c)]
			if cell == "" {
				cell = emptyCell
			}
			sb.WriteString(cell)
		}
		lines[r] = strings.TrimRight(sb.String(), emptyCell)
	}
	return lines
}

// String joins Lines with "\n".
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// FromLines builds a grid from up to Rows lines of up to Cols graphemes.
// Missing rows and cells are empty, whitespace graphemes become empty cells
// and every cell is normalized. Blank lines after the last row are ignored.
func FromLines(lines []string) (Grid, error) {
	var g Grid
	for r, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if r >= Rows {
			if strings.TrimSpace(line) != "" {
				return Grid{}, wserrors.NewParseError("grid", r+1, line, ErrTooManyRows)
			}
			continue
		}

		cells := grapheme.Split(line)
		if len(cells) > Cols {
			return Grid{}, wserrors.NewParseError("grid", r+1, line, ErrRowTooLong)
		}
		for c, cell := range cells {
			g[Index(r, c)] = NormalizeCell(cell)
		}
	}
	return g, nil
}

// ParseText splits text on newlines and calls FromLines.
func ParseText(text string) (Grid, error) {
	return FromLines(strings.Split(text, "\n"))
}
