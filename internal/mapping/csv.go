package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/wordshift/internal/debug"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/grapheme"
)

// ParseMode selects how malformed CSV lines are treated.
type ParseMode int

const (
	// Lenient skips malformed lines silently.
	Lenient ParseMode = iota
	// Strict reports every malformed line as a ParseError.
	Strict
)

// String returns the config spelling of the mode.
func (p ParseMode) String() string {
	switch p {
	case Strict:
		return "strict"
	default:
		return "lenient"
	}
}

// ParseModeFromString converts "strict" or "lenient" (empty means lenient).
func ParseModeFromString(s string) (ParseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown parse mode %q (want lenient or strict)", s)
	}
}

// Line rejection reasons reported in strict mode.
var (
	ErrMissingDestination = errors.New("expected source,destination")
	ErrEmptySource        = errors.New("source is empty")
	ErrSourceNotSingle    = errors.New("source must be exactly one character")
	ErrDestinationTooLong = errors.New("destination must be at most one character")
)

// ParseReport summarises a parse.
type ParseReport struct {
	Lines    int // non-blank lines seen
	Accepted int
	Skipped  int
}

// Parse reads CSV text into a map. See ParseWithReport.
func Parse(text string, mode ParseMode) (*Map, error) {
	m, _, err := ParseWithReport("mapping", text, mode)
	return m, err
}

// ParseWithReport reads "source,destination" lines. Each line is split on
// every comma, the first two fields are trimmed and any further fields are
// ignored. Blank lines are ignored in both modes. In Lenient mode a line
// without two fields or with an empty source is skipped and counted; in
// Strict mode such lines, and lines whose source is not one grapheme or whose
// destination is longer than one, are collected into a MultiError and no map
// is returned.
func ParseWithReport(name, text string, mode ParseMode) (*Map, ParseReport, error) {
	var (
		report ParseReport
		errs   []error
	)
	m := New()

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		report.Lines++

		source, destination, err := parseLine(line, mode)
		if err != nil {
			report.Skipped++
			if mode == Strict {
				errs = append(errs, wserrors.NewParseError(name, i+1, line, err))
			}
			continue
		}

		m.Set(source, destination)
		report.Accepted++
	}

	if len(errs) > 0 {
		return nil, report, wserrors.NewMultiError(errs)
	}

	debug.LogMapping("parsed %s: %d entries from %d lines (%d skipped)\n",
		name, m.Len(), report.Lines, report.Skipped)
	return m, report, nil
}

func parseLine(line string, mode ParseMode) (string, string, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return "", "", ErrMissingDestination
	}
	source := strings.TrimSpace(fields[0])
	destination := strings.TrimSpace(fields[1])
	if source == "" {
		return "", "", ErrEmptySource
	}
	if mode == Strict {
		if !grapheme.IsSingle(source) {
			return "", "", ErrSourceNotSingle
		}
		if grapheme.Count(destination) > 1 {
			return "", "", ErrDestinationTooLong
		}
	}
	return source, destination, nil
}

// Serialize writes one "source,destination" line per entry in insertion
// order, joined with "\n" and without a trailing newline.
func Serialize(m *Map) string {
	entries := m.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Source + "," + e.Destination
	}
	return strings.Join(lines, "\n")
}
