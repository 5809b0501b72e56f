package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/wordshift/internal/debug"
)

// LoadKDL loads dir/.wordshift.kdl. It returns nil, nil when the file does
// not exist.
func LoadKDL(dir, root string) (*Config, error) {
	kdlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadFile(kdlPath, root)
}

// LoadFile loads a configuration file. Relative paths inside it are
// resolved against the file's directory.
func LoadFile(path, root string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content), root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	cfg.resolvePaths(filepath.Dir(absPath))

	debug.Log(debug.CompConfig, "loaded %s\n", absPath)
	return cfg, nil
}

// parseKDL reads KDL content on top of the defaults for root. Paths are left
// as written.
func parseKDL(content, root string) (*Config, error) {
	cfg := Default(root)
	cfg.Dictionaries.Dirs = nil
	cfg.State.File = DefaultStateFile
	dirsSet := false

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "dictionaries":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					cfg.Dictionaries.Dirs = append(cfg.Dictionaries.Dirs, collectStringArgs(cn)...)
					dirsSet = true
				case "source":
					cfg.Dictionaries.Sources = append(cfg.Dictionaries.Sources, collectStringArgs(cn)...)
				}
				assignSimpleString(cn, "pattern", func(v string) { cfg.Dictionaries.Pattern = v })
				assignSimpleString(cn, "default", func(v string) { cfg.Dictionaries.Default = v })
			}
		case "mapping":
			for _, cn := range n.Children { // mapping { file "alt.csv" parse_mode "strict" }
				assignSimpleString(cn, "file", func(v string) { cfg.Mapping.File = v })
				assignSimpleString(cn, "parse_mode", func(v string) { cfg.Mapping.ParseMode = v })
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "identity_pairs":
					// accepts a policy name or a plain boolean
					if b, ok := firstBoolArg(cn); ok {
						if b {
							cfg.Search.IdentityPairs = "touched"
						} else {
							cfg.Search.IdentityPairs = "none"
						}
					}
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.IdentityPairs = s
					}
				case "page_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.PageSize = v
					}
				}
			}
		case "state":
			for _, cn := range n.Children {
				assignSimpleString(cn, "file", func(v string) { cfg.State.File = v })
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "format":
					if s, ok := firstStringArg(cn); ok {
						cfg.Output.Format = s
					}
				case "styled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Styled = b
					}
				}
			}
		}
	}

	if !dirsSet {
		cfg.Dictionaries.Dirs = []string{DefaultDictionaryDir}
	}
	return cfg, nil
}

// resolvePaths makes file and directory settings absolute relative to base.
func (c *Config) resolvePaths(base string) {
	for i, d := range c.Dictionaries.Dirs {
		c.Dictionaries.Dirs[i] = resolveAgainst(d, base)
	}
	for i, s := range c.Dictionaries.Sources {
		if !strings.Contains(s, "://") {
			c.Dictionaries.Sources[i] = resolveAgainst(s, base)
		}
	}
	if c.Mapping.File != "" {
		c.Mapping.File = resolveAgainst(c.Mapping.File, base)
	}
	if c.State.File != "" {
		c.State.File = resolveAgainst(c.State.File, base)
	}
}

func resolveAgainst(path, base string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts inline arguments (dir "a" "b") or a block of
// children (dir { "a"; "b" }).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
