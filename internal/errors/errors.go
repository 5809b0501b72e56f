package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the wordshift system
type ErrorType string

const (
	// Source errors
	ErrorTypeSourceNotFound   ErrorType = "source_not_found"
	ErrorTypeSourceUnreadable ErrorType = "source_unreadable"

	// Parse errors
	ErrorTypeParse ErrorType = "parse"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Search errors
	ErrorTypeSearch ErrorType = "search"
)

// ErrNoDictionary is returned when a search is requested without a dictionary.
var ErrNoDictionary = errors.New("no dictionary selected")

// SourceError represents a dictionary or mapping source that could not be fetched
type SourceError struct {
	Type        ErrorType
	Name        string
	Operation   string
	Suggestions []string
	Underlying  error
	Timestamp   time.Time
}

// NewSourceError creates a source error, classifying it as not-found or unreadable
func NewSourceError(op, name string, err error) *SourceError {
	errorType := ErrorTypeSourceUnreadable
	if errors.Is(err, fs.ErrNotExist) {
		errorType = ErrorTypeSourceNotFound
	}

	return &SourceError{
		Type:       errorType,
		Name:       name,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestions attaches "did you mean" candidates to the error
func (e *SourceError) WithSuggestions(names []string) *SourceError {
	e.Suggestions = names
	return e
}

// NotFound reports whether the source is missing rather than unreadable
func (e *SourceError) NotFound() bool {
	return e.Type == ErrorTypeSourceNotFound
}

// Error implements the error interface
func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.Name, e.Underlying)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestions[0])
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As
func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a rejected line in strict parsing mode
type ParseError struct {
	Type       ErrorType
	Source     string
	Line       int
	Text       string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error for a 1-based line number
func NewParseError(source string, line int, text string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Source:     source,
		Line:       line,
		Text:       text,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d (line %q): %v", e.Source, e.Line, e.Text, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SearchError represents a pair search that could not complete
type SearchError struct {
	Type       ErrorType
	Dictionary string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(dictionary string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Dictionary: dictionary,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for dictionary %q: %v", e.Dictionary, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
