package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/pkg/pathutil"
)

// FileName is the configuration file looked up in the home and project
// directories.
const FileName = ".wordshift.kdl"

// Defaults
const (
	DefaultDictionaryDir = "dictionary"
	DefaultStateFile     = ".wordshift-state.toml"
	DefaultDebounceMs    = 200
)

type Config struct {
	Version      int
	Project      Project
	Dictionaries Dictionaries
	Mapping      Mapping
	Search       Search
	State        State
	Watch        Watch
	Output       Output
}

type Project struct {
	Root string
}

type Dictionaries struct {
	Dirs    []string // directories globbed with Pattern
	Pattern string   // doublestar pattern
	Sources []string // explicit files or URLs
	Default string   // dictionary used when none is named
}

type Mapping struct {
	File      string // CSV mapping file; empty means state store or built-in grids
	ParseMode string // "lenient" or "strict"
}

type Search struct {
	IdentityPairs string // "touched", "all" or "none"
	PageSize      int
}

type State struct {
	File string // TOML state file
}

type Watch struct {
	DebounceMs int
}

type Output struct {
	Format string // "text", "json" or "csv"
	Styled bool
}

// Default returns the configuration used when no file is present.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Dictionaries: Dictionaries{
			Dirs:    []string{filepath.Join(root, DefaultDictionaryDir)},
			Pattern: dictionary.DefaultPattern,
		},
		Mapping: Mapping{
			ParseMode: mapping.Lenient.String(),
		},
		Search: Search{
			IdentityPairs: search.IdentityTouched.String(),
			PageSize:      paging.DefaultPageSize,
		},
		State: State{
			File: filepath.Join(root, DefaultStateFile),
		},
		Watch: Watch{
			DebounceMs: DefaultDebounceMs,
		},
		Output: Output{
			Format: "text",
		},
	}
}

// Load reads configuration for the current directory. See LoadWithRoot.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads configuration for rootDir. An explicit path is used on
// its own and must exist. Otherwise ~/.wordshift.kdl is read first and the
// project's .wordshift.kdl overrides it; dictionary directories and sources
// from both are kept. With neither file present the defaults apply.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	root, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	if path != "" {
		cfg, err := LoadFile(path, root)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Step 1: global base config from ~/.wordshift.kdl (if exists)
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != root {
		if globalCfg, err := LoadKDL(homeDir, root); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config
	projectConfig, err := LoadKDL(root, root)
	if err != nil {
		return nil, err
	}

	// Step 3: merge
	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		return baseConfig, nil
	}
	return Default(root), nil
}

func resolveRoot(rootDir string) (string, error) {
	if rootDir == "" {
		rootDir = "."
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
	}
	return abs, nil
}

// mergeConfigs merges a base config with a project config.
// Project settings win; dictionary directories and sources accumulate.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Dictionaries.Dirs = dedupe(append(append([]string{}, base.Dictionaries.Dirs...), project.Dictionaries.Dirs...))
	merged.Dictionaries.Sources = dedupe(append(append([]string{}, base.Dictionaries.Sources...), project.Dictionaries.Sources...))

	if merged.Dictionaries.Default == "" {
		merged.Dictionaries.Default = base.Dictionaries.Default
	}
	if merged.Mapping.File == "" {
		merged.Mapping.File = base.Mapping.File
	}
	return &merged
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// DiscoverOptions returns the catalog discovery settings.
func (c *Config) DiscoverOptions() dictionary.DiscoverOptions {
	return dictionary.DiscoverOptions{
		Root:    c.Project.Root,
		Dirs:    c.Dictionaries.Dirs,
		Pattern: c.Dictionaries.Pattern,
		Sources: c.Dictionaries.Sources,
	}
}

// SearchOptions returns the pair finder options. Validation has already
// rejected unknown policies, so an invalid value falls back to the default.
func (c *Config) SearchOptions() search.Options {
	policy, err := search.ParseIdentityPolicy(c.Search.IdentityPairs)
	if err != nil {
		return search.DefaultOptions()
	}
	return search.Options{IdentityPairs: policy}
}

// ParseMode returns the configured CSV parse mode.
func (c *Config) ParseMode() mapping.ParseMode {
	mode, _ := mapping.ParseModeFromString(c.Mapping.ParseMode)
	return mode
}

// ResolvePath resolves a path from the command line against the project root.
func (c *Config) ResolvePath(path string) string {
	return pathutil.ToAbsolute(path, c.Project.Root)
}
