package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "github.com/standardbeagle/wordshift/internal/errors"
)

// TestNormalizeCell tests first-grapheme truncation
func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"か", "か"},
		{" かきく ", "か"},
		{"がx", "が"},
		{"＃", "＃"},
		{"ab", "a"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeCell(tt.input), "input %q", tt.input)
	}
}

// TestGridSet tests cell assignment and bounds
func TestGridSet(t *testing.T) {
	var g Grid
	require.NoError(t, g.Set(Index(1, 2), " ねこ "))
	assert.Equal(t, "ね", g.Cell(20))

	err := g.Set(Size, "x")
	assert.ErrorIs(t, err, ErrBadIndex)
	assert.ErrorIs(t, g.Set(-1, "x"), ErrBadIndex)
	assert.Equal(t, "", g.Cell(Size))
}

// TestFromLines tests the line form of a grid
func TestFromLines(t *testing.T) {
	g, err := FromLines([]string{"abc", " d", "", "xyz\r"})
	require.NoError(t, err)

	assert.Equal(t, "a", g.Cell(Index(0, 0)))
	assert.Equal(t, "c", g.Cell(Index(0, 2)))
	assert.Equal(t, "", g.Cell(Index(1, 0)), "space is an empty cell")
	assert.Equal(t, "d", g.Cell(Index(1, 1)))
	assert.Equal(t, "z", g.Cell(Index(3, 2)))
	assert.Equal(t, "", g.Cell(Index(4, 0)), "missing rows are empty")

	assert.Equal(t, []string{"abc", " d", "", "xyz", ""}, g.Lines())
}

// TestFromLinesErrors tests oversized input
func TestFromLinesErrors(t *testing.T) {
	_, err := FromLines([]string{strings.Repeat("あ", Cols+1)})
	assert.ErrorIs(t, err, ErrRowTooLong)

	var perr *wserrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)

	_, err = FromLines([]string{"a", "b", "c", "d", "e", "f"})
	assert.ErrorIs(t, err, ErrTooManyRows)

	_, err = FromLines([]string{"a", "b", "c", "d", "e", "", "  "})
	assert.NoError(t, err, "trailing blank lines are ignored")
}

// TestLinesRoundTrip tests that Lines and FromLines are inverse
func TestLinesRoundTrip(t *testing.T) {
	original := DefaultValueGrid()
	parsed, err := FromLines(original.Lines())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	text, err := ParseText(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, text)

	var sparse Grid
	require.NoError(t, sparse.Set(Index(2, 5), "x"))
	require.NoError(t, sparse.Set(Index(4, 17), "y"))
	parsed, err = FromLines(sparse.Lines())
	require.NoError(t, err)
	assert.Equal(t, sparse, parsed)
}

// TestLayout tests active and blocked positions
func TestLayout(t *testing.T) {
	l, err := NewLayout([]string{"a＃#b"})
	require.NoError(t, err)

	assert.True(t, l.Active(0))
	assert.True(t, l.Blocked(1))
	assert.True(t, l.Blocked(2), "ASCII marker is equivalent")
	assert.True(t, l.Active(3))
	assert.False(t, l.Active(4), "empty key is inactive")
	assert.False(t, l.Blocked(4))
	assert.Equal(t, "b", l.Key(3))

	var v Grid
	v[1] = "x"
	conformed := l.Conform(v)
	assert.Equal(t, BlockMarker, conformed[1])
	assert.Equal(t, BlockMarker, conformed[2])
	assert.Equal(t, "", conformed[0])
}

// TestDefaultLayout tests the built-in tables
func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, "あ", l.Key(Index(0, 17)))
	assert.Equal(t, "ぽ", l.Key(Index(4, 0)))
	assert.True(t, l.Blocked(Index(0, 1)))

	v := DefaultValueGrid()
	assert.Equal(t, "い", v.Cell(Index(0, 17)))
	assert.Equal(t, "＿", v.Cell(Index(4, 0)))
}
