// Package display renders search results, grids and dictionary listings for
// the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// FormatterOptions controls rendering
type FormatterOptions struct {
	Format string // "text", "json", "csv"
	Styled bool   // colour text output with lipgloss
}

// Formatter renders values according to its options.
type Formatter struct {
	options FormatterOptions
	header  lipgloss.Style
	blocked lipgloss.Style
	arrow   lipgloss.Style
}

// NewFormatter creates a new formatter
func NewFormatter(options FormatterOptions) *Formatter {
	if options.Format == "" {
		options.Format = FormatText
	}

	f := &Formatter{
		options: options,
		header:  lipgloss.NewStyle(),
		blocked: lipgloss.NewStyle(),
		arrow:   lipgloss.NewStyle(),
	}
	if options.Styled {
		f.header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
		f.blocked = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		f.arrow = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}
	return f
}

// FormatPage renders one page of pairs.
func (f *Formatter) FormatPage(page paging.Result[search.Pair]) string {
	switch f.options.Format {
	case FormatJSON:
		return f.formatJSON(page)
	case FormatCSV:
		return search.FormatCSV(page.Items)
	default:
		return f.formatPageText(page)
	}
}

func (f *Formatter) formatPageText(page paging.Result[search.Pair]) string {
	var sb strings.Builder

	sb.WriteString(f.header.Render(fmt.Sprintf("page %d / %d (%d pairs)", page.Number, page.TotalPages, page.TotalItems)))
	sb.WriteString("\n")

	if len(page.Items) == 0 {
		sb.WriteString("no pairs found\n")
		return sb.String()
	}

	width := 0
	for _, p := range page.Items {
		if w := lipgloss.Width(p.Source); w > width {
			width = w
		}
	}

	for _, p := range page.Items {
		pad := strings.Repeat(" ", width-lipgloss.Width(p.Source))
		sb.WriteString(fmt.Sprintf("%s%s %s %s\n", p.Source, pad, f.arrow.Render("→"), p.Derived))
	}
	return sb.String()
}

func (f *Formatter) formatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// FormatGrid renders the key layout above the value grid, one cell per
// column. Blocked cells are dimmed when styling is on.
func (f *Formatter) FormatGrid(layout *grid.Layout, values grid.Grid) string {
	if f.options.Format == FormatJSON {
		keys := layout.Keys()
		return f.formatJSON(map[string][]string{
			"key":   keys.Lines(),
			"value": values.Lines(),
		})
	}

	var sb strings.Builder
	sb.WriteString(f.header.Render("key"))
	sb.WriteString("\n")
	f.writeGrid(&sb, layout, layout.Keys())
	sb.WriteString(f.header.Render("value"))
	sb.WriteString("\n")
	f.writeGrid(&sb, layout, values)
	return sb.String()
}

func (f *Formatter) writeGrid(sb *strings.Builder, layout *grid.Layout, g grid.Grid) {
	for r := 0; r < grid.Rows; r++ {
		cells := make([]string, grid.Cols)
		for c := 0; c < grid.Cols; c++ {
			idx := grid.Index(r, c)
			cell := g.Cell(idx)
			if cell == "" {
				cell = "・"
			}
			// wide characters take two columns
			if lipgloss.Width(cell) < 2 {
				cell += " "
			}
			if layout.Blocked(idx) {
				cell = f.blocked.Render(cell)
			}
			cells[c] = cell
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}
}

// FormatDictionaries renders the available dictionaries.
func (f *Formatter) FormatDictionaries(entries []dictionary.Entry) string {
	if f.options.Format == FormatJSON {
		if entries == nil {
			entries = []dictionary.Entry{}
		}
		return f.formatJSON(entries)
	}
	if len(entries) == 0 {
		return "no dictionaries found\n"
	}

	var sb strings.Builder
	for _, e := range entries {
		if f.options.Format == FormatCSV {
			sb.WriteString(e.Name + "," + e.Ref + "\n")
			continue
		}
		sb.WriteString(e.Name)
		sb.WriteString("\n")
	}
	return sb.String()
}
