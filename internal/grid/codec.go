package grid

import (
	"github.com/standardbeagle/wordshift/internal/debug"
	"github.com/standardbeagle/wordshift/internal/mapping"
)

var scanOrder = func() []int {
	order := make([]int, 0, Size)
	for c := Cols - 1; c >= 0; c-- {
		for r := 0; r < Rows; r++ {
			order = append(order, Index(r, c))
		}
	}
	return order
}()

// ScanOrder returns cell indices from the last column to the first, top to
// bottom within each column. Map entries derived from a grid pair always
// follow this order.
func ScanOrder() []int {
	out := make([]int, len(scanOrder))
	copy(out, scanOrder)
	return out
}

// ToMapping derives the substitution map from a layout and value grid.
// Positions whose key is empty or blocked contribute nothing. An active
// position with an empty or blocked value maps to Placeholder.
func ToMapping(l *Layout, v Grid) *mapping.Map {
	m := mapping.New()
	for _, idx := range scanOrder {
		if !l.Active(idx) {
			continue
		}
		dest := NormalizeCell(v[idx])
		if dest == "" || IsBlock(dest) {
			dest = Placeholder
		}
		m.Set(l.Key(idx), dest)
	}
	debug.LogMapping("grid produced %d entries\n", m.Len())
	return m
}

// ValueGridFromMapping projects m onto the layout. Active cells receive the
// mapped destination, or stay empty when the source is absent or maps to
// Placeholder. Blocked cells always hold BlockMarker.
func ValueGridFromMapping(m *mapping.Map, l *Layout) Grid {
	var v Grid
	for i := 0; i < Size; i++ {
		switch {
		case l.Blocked(i):
			v[i] = BlockMarker
		case l.Active(i):
			dest, _ := m.Get(l.Key(i))
			if dest == Placeholder {
				dest = ""
			}
			v[i] = NormalizeCell(dest)
		}
	}
	return v
}
