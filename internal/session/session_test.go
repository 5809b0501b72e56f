package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/internal/store"
)

func smallLayout(t *testing.T) *grid.Layout {
	t.Helper()
	l, err := grid.NewLayout([]string{"こね＃ゐ"})
	require.NoError(t, err)
	return l
}

// TestNewDefault tests the built-in starting map
func TestNewDefault(t *testing.T) {
	s := NewDefault()
	assert.Equal(t, mapping.Serialize(grid.ToMapping(grid.DefaultLayout(), grid.DefaultValueGrid())), s.CSV())
	assert.Equal(t, 1, s.Page().Number)
}

// TestApplyCSVUpdatesGrid tests that a CSV edit re-derives the grid view
func TestApplyCSVUpdatesGrid(t *testing.T) {
	s := New(smallLayout(t))

	report, err := s.ApplyCSV("こ,ゐ\nbad line\nゐ,", mapping.Lenient)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	v := s.ValueGrid()
	assert.Equal(t, "ゐ", v.Cell(0))
	assert.Equal(t, "", v.Cell(1), "absent source leaves the cell empty")
	assert.Equal(t, grid.BlockMarker, v.Cell(2))
	assert.Equal(t, "", v.Cell(3))
	assert.Equal(t, "こ,ゐ\nゐ,", s.CSV())
}

// TestApplyCSVStrictKeepsPreviousMap tests that a failed parse changes nothing
func TestApplyCSVStrictKeepsPreviousMap(t *testing.T) {
	s := New(smallLayout(t))
	_, err := s.ApplyCSV("こ,ゐ", mapping.Strict)
	require.NoError(t, err)

	_, err = s.ApplyCSV("こ,ね\nnonsense", mapping.Strict)
	require.Error(t, err)
	assert.Equal(t, "こ,ゐ", s.CSV())
}

// TestEditCellUpdatesCSV tests that a grid edit re-derives the CSV view
func TestEditCellUpdatesCSV(t *testing.T) {
	s := New(smallLayout(t))

	require.NoError(t, s.EditCell(0, " ゐゐゐ "))
	assert.Equal(t, "ゐ,？\nね,？\nこ,ゐ", s.CSV())
	assert.Equal(t, "ゐ", s.ValueGrid().Cell(0))

	require.NoError(t, s.EditCell(3, "x"))
	assert.Equal(t, "ゐ,x\nね,？\nこ,ゐ", s.CSV())

	require.NoError(t, s.EditCell(0, ""))
	assert.Equal(t, "", s.ValueGrid().Cell(0))
	d, _ := s.Mapping().Get("こ")
	assert.Equal(t, grid.Placeholder, d)

	assert.ErrorIs(t, s.EditCell(2, "x"), ErrCellNotEditable)
	assert.ErrorIs(t, s.EditCell(10, "x"), ErrCellNotEditable)
	assert.ErrorIs(t, s.EditCell(grid.Size, "x"), grid.ErrBadIndex)
}

// TestApplyGrid tests replacing the whole value grid
func TestApplyGrid(t *testing.T) {
	s := New(smallLayout(t))

	require.NoError(t, s.ApplyGrid([]string{"ゐ x!"}))
	assert.Equal(t, "ゐ,!\nね,？\nこ,ゐ", s.CSV())
	assert.Equal(t, grid.BlockMarker, s.ValueGrid().Cell(2))

	err := s.ApplyGrid([]string{"1", "2", "3", "4", "5", "6"})
	assert.ErrorIs(t, err, grid.ErrTooManyRows)
}

// TestSearchAndPaging tests searching then paging through results
func TestSearchAndPaging(t *testing.T) {
	s := New(smallLayout(t))
	_, err := s.ApplyCSV("a,b", mapping.Lenient)
	require.NoError(t, err)

	words := dictionary.NewWordSet()
	for i := 0; i < 25; i++ {
		words.Add(fmt.Sprintf("a%02d", i))
		words.Add(fmt.Sprintf("b%02d", i))
	}

	pairs, err := s.Search(context.Background(), words, search.Options{IdentityPairs: search.IdentityNone})
	require.NoError(t, err)
	require.Len(t, pairs, 25)

	page := s.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)

	page = s.GoTo(5)
	assert.Equal(t, 3, page.Number)
	require.Len(t, page.Items, 5)
	assert.Equal(t, search.Pair{Source: "a20", Derived: "b20"}, page.Items[0])

	page = s.Move(-1)
	assert.Equal(t, 2, page.Number)
	page = s.Move(-100)
	assert.Equal(t, 1, page.Number)
	page = s.Move(10)
	assert.Equal(t, 3, page.Number)

	s.SetPageSize(20)
	assert.Equal(t, 2, s.Page().Number)
	s.SetPageSize(0)
	assert.Equal(t, 10, s.Page().PageSize)

	// a new search replaces the results and resets the page
	s.GoTo(3)
	pairs, err = s.Search(context.Background(), dictionary.NewWordSet("a00", "b00"), search.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 1, s.Page().Number)
	assert.Equal(t, pairs, s.Pairs())
}

// TestSaveRestore tests persisting the projections
func TestSaveRestore(t *testing.T) {
	st := store.NewMemory()

	s := New(smallLayout(t))
	_, err := s.ApplyCSV("こ,ゐ\nね,の", mapping.Lenient)
	require.NoError(t, err)
	require.NoError(t, s.Save(st))

	csv, ok := st.Get(KeyMapping)
	require.True(t, ok)
	assert.Equal(t, "こ,ゐ\nね,の", csv)

	lines, ok := st.Get(KeyValueGrid)
	require.True(t, ok)
	assert.Equal(t, "ゐの＃\n\n\n\n", lines)

	restored := New(smallLayout(t))
	ok, err = restored.Restore(st)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, s.CSV(), restored.CSV())

	// grid-only state
	gridOnly := store.NewMemory()
	require.NoError(t, gridOnly.Set(KeyValueGrid, lines))
	fromGrid := New(smallLayout(t))
	ok, err = fromGrid.Restore(gridOnly)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ゐ,？\nね,の\nこ,ゐ", fromGrid.CSV())

	empty := New(smallLayout(t))
	ok, err = empty.Restore(store.NewMemory())
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestApplySource tests loading a mapping file through a dictionary source
func TestApplySource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alt.csv")
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte("こ,ね\nね,こ\n")...), 0644))

	s := New(smallLayout(t))
	report, err := s.ApplySource(context.Background(), &dictionary.FileSource{Path: path}, mapping.Strict)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, "こ,ね\nね,こ", s.CSV())

	_, err = s.ApplySource(context.Background(), &dictionary.FileSource{Path: filepath.Join(dir, "missing.csv")}, mapping.Lenient)
	assert.Error(t, err)
	assert.Equal(t, "こ,ね\nね,こ", s.CSV())
}
