package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestProjectBuilder(t *testing.T) {
	b := NewTestProjectBuilder(t).
		WithDictionary("kobuta.txt", "ねこ\n").
		WithDictionary("nested/ippan.txt", "いぬ\n").
		WithFile("alt.csv", "ね,こ\n").
		WithMappingFile("alt.csv").
		WithDefault("kobuta").
		WithFormat("csv")
	cfg := b.Build()

	assert.Equal(t, b.Root(), cfg.Project.Root)
	assert.Equal(t, "kobuta", cfg.Dictionaries.Default)
	assert.Equal(t, filepath.Join(b.Root(), "alt.csv"), cfg.Mapping.File)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.FileExists(t, filepath.Join(b.Root(), "dictionary", "kobuta.txt"))
	assert.FileExists(t, filepath.Join(b.Root(), "dictionary", "nested", "ippan.txt"))
	assert.FileExists(t, cfg.Mapping.File)
}
