package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wserrors "github.com/standardbeagle/wordshift/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{Project: Project{Root: "/words"}}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Equal(t, "*.txt", cfg.Dictionaries.Pattern)
	assert.Equal(t, "lenient", cfg.Mapping.ParseMode)
	assert.Equal(t, "touched", cfg.Search.IdentityPairs)
	assert.Equal(t, 10, cfg.Search.PageSize)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project.root"},
		{"bad pattern", func(c *Config) { c.Dictionaries.Pattern = "[abc" }, "dictionaries.pattern"},
		{"bad parse mode", func(c *Config) { c.Mapping.ParseMode = "loose" }, "mapping.parse_mode"},
		{"bad identity policy", func(c *Config) { c.Search.IdentityPairs = "sometimes" }, "search.identity_pairs"},
		{"negative page size", func(c *Config) { c.Search.PageSize = -1 }, "search.page_size"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms"},
		{"bad format", func(c *Config) { c.Output.Format = "yaml" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/words")
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)

			var cfgErr *wserrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.section, cfgErr.Field)
		})
	}
}

func TestValidateConfig_Default(t *testing.T) {
	assert.NoError(t, ValidateConfig(Default("/words")))
}
