package grid

// Layout is the read-only key grid.
type Layout struct {
	keys Grid
}

// NewLayout builds a layout from its line form.
func NewLayout(lines []string) (*Layout, error) {
	keys, err := FromLines(lines)
	if err != nil {
		return nil, err
	}
	return &Layout{keys: keys}, nil
}

// Key returns the source character at cell i.
func (l *Layout) Key(i int) string {
	return l.keys.Cell(i)
}

// Blocked reports whether cell i holds a block marker.
func (l *Layout) Blocked(i int) bool {
	return IsBlock(l.keys.Cell(i))
}

// Active reports whether cell i holds a source character.
func (l *Layout) Active(i int) bool {
	k := l.keys.Cell(i)
	return k != "" && !IsBlock(k)
}

// Keys returns a copy of the key grid.
func (l *Layout) Keys() Grid {
	return l.keys
}

// Conform returns v with every blocked position forced to BlockMarker.
func (l *Layout) Conform(v Grid) Grid {
	for i := 0; i < Size; i++ {
		if l.Blocked(i) {
			v[i] = BlockMarker
		}
	}
	return v
}

var defaultKeyLines = []string{
	"ぱ＃ばだざが＃んわらやまはなたさかあ",
	"ぴ＃びぢじぎ＃＃＃り＃みひにちしきい",
	"ぷ＃びぢじぎ＃＃＃るゆむふぬつすくう",
	"ぺ＃べでぜげ＃＃＃れ＃めへねてせけえ",
	"ぽ＃ぼどぞご＃＃をろよもほのとそこお",
}

var defaultValueLines = []string{
	"ぴ＃びぢじぎ＃あをりゆみひにちしきい",
	"ぷ＃ぶづずぐ＃＃＃る＃むふぬつすくう",
	"ぺ＃べでぜげ＃＃＃れよめへねてせけえ",
	"ぽ＃ぼどぞご＃＃＃ろ＃もほのとそこお",
	"＿＃＿だばざ＃＃んわらやまはなたさか",
}

// DefaultLayout returns the built-in kana layout.
func DefaultLayout() *Layout {
	l, err := NewLayout(defaultKeyLines)
	if err != nil {
		panic(err)
	}
	return l
}

// DefaultValueGrid returns the built-in value grid for DefaultLayout.
func DefaultValueGrid() Grid {
	g, err := FromLines(defaultValueLines)
	if err != nil {
		panic(err)
	}
	return g
}
