package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/wordshift/internal/display"
	wserrors "github.com/standardbeagle/wordshift/internal/errors"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
)

// Validator validates configuration and sets defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and fills zero values.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return wserrors.NewConfigError("project.root", "", fmt.Errorf("project root cannot be empty"))
	}

	if cfg.Dictionaries.Pattern != "" && !doublestar.ValidatePattern(cfg.Dictionaries.Pattern) {
		return wserrors.NewConfigError("dictionaries.pattern", cfg.Dictionaries.Pattern, doublestar.ErrBadPattern)
	}

	if _, err := mapping.ParseModeFromString(cfg.Mapping.ParseMode); err != nil {
		return wserrors.NewConfigError("mapping.parse_mode", cfg.Mapping.ParseMode, err)
	}

	if _, err := search.ParseIdentityPolicy(cfg.Search.IdentityPairs); err != nil {
		return wserrors.NewConfigError("search.identity_pairs", cfg.Search.IdentityPairs, err)
	}

	if cfg.Search.PageSize < 0 {
		return wserrors.NewConfigError("search.page_size", fmt.Sprint(cfg.Search.PageSize),
			fmt.Errorf("page size cannot be negative"))
	}

	if cfg.Watch.DebounceMs < 0 {
		return wserrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs),
			fmt.Errorf("debounce cannot be negative"))
	}

	if cfg.Output.Format != "" && !display.ValidFormat(cfg.Output.Format) {
		return wserrors.NewConfigError("output.format", cfg.Output.Format,
			fmt.Errorf("unknown format (want text, json or csv)"))
	}

	v.setDefaults(cfg)
	return nil
}

func (v *Validator) setDefaults(cfg *Config) {
	if cfg.Dictionaries.Pattern == "" {
		cfg.Dictionaries.Pattern = "*.txt"
	}
	if cfg.Mapping.ParseMode == "" {
		cfg.Mapping.ParseMode = mapping.Lenient.String()
	}
	if cfg.Search.IdentityPairs == "" {
		cfg.Search.IdentityPairs = search.IdentityTouched.String()
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = paging.DefaultPageSize
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = display.FormatText
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
