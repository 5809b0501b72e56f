package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", "/words")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"dictionary"}, cfg.Dictionaries.Dirs)
	assert.Equal(t, "*.txt", cfg.Dictionaries.Pattern)
	assert.Equal(t, "lenient", cfg.Mapping.ParseMode)
	assert.Equal(t, "touched", cfg.Search.IdentityPairs)
	assert.Equal(t, 10, cfg.Search.PageSize)
	assert.Equal(t, DefaultStateFile, cfg.State.File)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.False(t, cfg.Output.Styled)
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
dictionaries {
    dir "words" "more"
    source "https://example.com/kobuta.txt"
    pattern "**/*.dic"
    default "kobuta"
}
mapping {
    file "alt.csv"
    parse_mode "strict"
}
search {
    identity_pairs "all"
    page_size 25
}
state {
    file "state/ws.toml"
}
watch {
    debounce_ms 50
}
output {
    format "json"
    styled true
}
`
	cfg, err := parseKDL(kdlContent, "/words")
	require.NoError(t, err)

	assert.Equal(t, []string{"words", "more"}, cfg.Dictionaries.Dirs)
	assert.Equal(t, []string{"https://example.com/kobuta.txt"}, cfg.Dictionaries.Sources)
	assert.Equal(t, "**/*.dic", cfg.Dictionaries.Pattern)
	assert.Equal(t, "kobuta", cfg.Dictionaries.Default)
	assert.Equal(t, "alt.csv", cfg.Mapping.File)
	assert.Equal(t, "strict", cfg.Mapping.ParseMode)
	assert.Equal(t, "all", cfg.Search.IdentityPairs)
	assert.Equal(t, 25, cfg.Search.PageSize)
	assert.Equal(t, "state/ws.toml", cfg.State.File)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Styled)
}

func TestParseKDL_DirBlock(t *testing.T) {
	kdlContent := `
dictionaries {
    dir {
        "a"
        "b"
    }
}
`
	cfg, err := parseKDL(kdlContent, "/words")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Dictionaries.Dirs)
}

func TestParseKDL_IdentityPairsBoolean(t *testing.T) {
	cfg, err := parseKDL("search {\n    identity_pairs false\n}\n", "/words")
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Search.IdentityPairs)

	cfg, err = parseKDL("search {\n    identity_pairs true\n}\n", "/words")
	require.NoError(t, err)
	assert.Equal(t, "touched", cfg.Search.IdentityPairs)
}

func TestParseKDL_InvalidSyntax(t *testing.T) {
	_, err := parseKDL("search {\n    page_size 10\n", "/words")
	assert.Error(t, err)
}

func TestLoadFile_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
dictionaries {
    dir "words"
    source "extra/ippan.txt" "https://example.com/a.txt"
}
mapping {
    file "alt.csv"
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "words")}, cfg.Dictionaries.Dirs)
	assert.Equal(t, []string{filepath.Join(dir, "extra", "ippan.txt"), "https://example.com/a.txt"}, cfg.Dictionaries.Sources)
	assert.Equal(t, filepath.Join(dir, "alt.csv"), cfg.Mapping.File)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.State.File)
}

func TestLoadKDL_MissingFile(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir(), "/words")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
