// Package testhelpers provides shared utilities for wordshift tests.
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/wordshift/internal/config"
)

// TestProjectBuilder lays out a throwaway project root with dictionaries and
// mapping files, then returns a validated config for it.
// Usage:
//
//	cfg := testhelpers.NewTestProjectBuilder(t).
//		WithDictionary("kobuta.txt", "ねこ\nこね\n").
//		WithDefault("kobuta").
//		Build()
type TestProjectBuilder struct {
	t            *testing.T
	root         string
	dictionaries map[string]string
	files        map[string]string
	defaultDict  string
	mappingFile  string
	format       string
}

// NewTestProjectBuilder creates a builder rooted in a fresh temp directory.
func NewTestProjectBuilder(t *testing.T) *TestProjectBuilder {
	t.Helper()
	return &TestProjectBuilder{
		t:            t,
		root:         t.TempDir(),
		dictionaries: make(map[string]string),
		files:        make(map[string]string),
	}
}

// Root returns the project directory.
func (b *TestProjectBuilder) Root() string {
	return b.root
}

// WithDictionary adds a file under the dictionary directory
func (b *TestProjectBuilder) WithDictionary(name, content string) *TestProjectBuilder {
	b.dictionaries[name] = content
	return b
}

// WithFile adds a file relative to the project root
func (b *TestProjectBuilder) WithFile(name, content string) *TestProjectBuilder {
	b.files[name] = content
	return b
}

// WithDefault sets the dictionary used when none is named
func (b *TestProjectBuilder) WithDefault(name string) *TestProjectBuilder {
	b.defaultDict = name
	return b
}

// WithMappingFile sets the configured CSV mapping, relative to the root
func (b *TestProjectBuilder) WithMappingFile(name string) *TestProjectBuilder {
	b.mappingFile = name
	return b
}

// WithFormat sets the output format
func (b *TestProjectBuilder) WithFormat(format string) *TestProjectBuilder {
	b.format = format
	return b
}

// Write creates the files without building a config.
func (b *TestProjectBuilder) Write() string {
	b.t.Helper()
	dictDir := filepath.Join(b.root, config.DefaultDictionaryDir)
	require.NoError(b.t, os.MkdirAll(dictDir, 0755))

	for name, content := range b.dictionaries {
		path := filepath.Join(dictDir, name)
		require.NoError(b.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(b.t, os.WriteFile(path, []byte(content), 0644))
	}
	for name, content := range b.files {
		path := filepath.Join(b.root, name)
		require.NoError(b.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(b.t, os.WriteFile(path, []byte(content), 0644))
	}
	return b.root
}

// Build writes the project and returns its validated config
func (b *TestProjectBuilder) Build() *config.Config {
	b.t.Helper()
	b.Write()

	cfg := config.Default(b.root)
	cfg.Dictionaries.Default = b.defaultDict
	if b.mappingFile != "" {
		cfg.Mapping.File = cfg.ResolvePath(b.mappingFile)
	}
	if b.format != "" {
		cfg.Output.Format = b.format
	}
	require.NoError(b.t, config.ValidateConfig(cfg))
	return cfg
}
