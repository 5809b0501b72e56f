package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/wordshift/internal/cache"
	"github.com/standardbeagle/wordshift/internal/config"
	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/grid"
	"github.com/standardbeagle/wordshift/internal/mapping"
	"github.com/standardbeagle/wordshift/internal/paging"
	"github.com/standardbeagle/wordshift/internal/search"
	"github.com/standardbeagle/wordshift/internal/session"
	"github.com/standardbeagle/wordshift/internal/store"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func mappingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mapping",
			Aliases: []string{"m"},
			Usage:   "CSV mapping file (source,destination per line)",
		},
		&cli.StringFlag{
			Name:    "grid",
			Aliases: []string{"g"},
			Usage:   "Value grid file (up to 5 lines of 18 cells)",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "CSV parse mode: lenient or strict",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Reject malformed CSV lines (same as --mode strict)",
		},
		&cli.BoolFlag{
			Name:  "no-restore",
			Usage: "Ignore the saved mapping",
		},
	}
}

func searchFlags() []cli.Flag {
	return append(mappingFlags(),
		&cli.StringFlag{
			Name:  "identity",
			Usage: "Identity pairs: touched, all or none",
		},
		&cli.BoolFlag{
			Name:  "no-identity-pairs",
			Usage: "Never report words that map onto themselves",
		},
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "Page number",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "page-size",
			Aliases: []string{"n"},
			Usage:   "Pairs per page (default from config)",
		},
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Print every pair on one page",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json or csv",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write every pair to FILE instead of printing a page",
		},
		&cli.BoolFlag{
			Name:  "copy",
			Usage: "Copy all pairs as CSV to the clipboard",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the mapping used for later runs",
		},
	)
}

// parseModeFlag returns --strict or --mode, falling back to the configured mode.
func parseModeFlag(c *cli.Context, cfg *config.Config) (mapping.ParseMode, error) {
	if c.Bool("strict") {
		return mapping.Strict, nil
	}
	if !c.IsSet("mode") {
		return cfg.ParseMode(), nil
	}
	return mapping.ParseModeFromString(c.String("mode"))
}

// loadSession builds a session whose map comes from, in order: --mapping,
// --grid, the configured mapping file, the saved state, the built-in grids.
// It returns a short description of the source.
func loadSession(c *cli.Context, cfg *config.Config) (*session.Session, string, error) {
	ctx := c.Context
	mode, err := parseModeFlag(c, cfg)
	if err != nil {
		return nil, "", err
	}

	sess := session.New(grid.DefaultLayout())

	applyFile := func(path string) (string, error) {
		report, err := sess.ApplySource(ctx, dictionary.Open(path), mode)
		if err != nil {
			return "", err
		}
		if report.Skipped > 0 {
			fmt.Fprintf(c.App.ErrWriter, "skipped %d of %d mapping lines\n", report.Skipped, report.Lines)
		}
		return path, nil
	}

	switch {
	case c.String("mapping") != "":
		name, err := applyFile(cfg.ResolvePath(c.String("mapping")))
		return sess, name, err

	case c.String("grid") != "":
		path := cfg.ResolvePath(c.String("grid"))
		text, err := dictionary.Open(path).Fetch(ctx)
		if err != nil {
			return nil, "", err
		}
		if err := sess.ApplyGrid(strings.Split(text, "\n")); err != nil {
			return nil, "", err
		}
		return sess, path, nil

	case cfg.Mapping.File != "":
		name, err := applyFile(cfg.Mapping.File)
		return sess, name, err
	}

	if !c.Bool("no-restore") {
		st, err := store.Open(cfg.State.File)
		if err != nil {
			return nil, "", err
		}
		ok, err := sess.Restore(st)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return sess, "saved state", nil
		}
	}

	sess.SetMapping(grid.ToMapping(sess.Layout(), grid.DefaultValueGrid()))
	return sess, "built-in grid", nil
}

// saveSession persists the session's map to the state file.
func saveSession(c *cli.Context, cfg *config.Config, sess *session.Session) error {
	st, err := store.Open(cfg.State.File)
	if err != nil {
		return err
	}
	if err := sess.Save(st); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "saved mapping to %s\n", cfg.State.File)
	return nil
}

// resolveDictionary picks the dictionary from the first argument or the
// configured default.
func resolveDictionary(ctx context.Context, c *cli.Context, cfg *config.Config) (dictionary.Source, error) {
	name := c.Args().First()
	if name == "" {
		name = cfg.Dictionaries.Default
	}

	catalog, err := dictionary.Discover(ctx, cfg.DiscoverOptions())
	if err != nil {
		return nil, err
	}
	return catalog.Resolve(name)
}

func searchOptions(c *cli.Context, cfg *config.Config) (search.Options, error) {
	opts := cfg.SearchOptions()
	if c.IsSet("identity") {
		policy, err := search.ParseIdentityPolicy(c.String("identity"))
		if err != nil {
			return opts, err
		}
		opts.IdentityPairs = policy
	}
	if c.Bool("no-identity-pairs") {
		opts.IdentityPairs = search.IdentityNone
	}
	return opts, nil
}

// runSearch loads the dictionary and runs the pair finder for sess.
func runSearch(c *cli.Context, cfg *config.Config, sess *session.Session, words *cache.WordSetCache) error {
	ctx := c.Context
	opts, err := searchOptions(c, cfg)
	if err != nil {
		return err
	}

	src, err := resolveDictionary(ctx, c, cfg)
	if err != nil {
		return err
	}
	wordSet, err := words.GetOrLoad(ctx, src)
	if err != nil {
		return err
	}

	start := time.Now()
	pairs, err := sess.Search(ctx, wordSet, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "%d pairs among %d words in %s (%v)\n",
		len(pairs), wordSet.Len(), src.Name(), time.Since(start).Round(time.Millisecond))

	pageSize := c.Int("page-size")
	if pageSize <= 0 {
		pageSize = cfg.Search.PageSize
	}
	sess.SetPageSize(pageSize)

	page := sess.GoTo(c.Int("page"))
	out := c.String("out")
	if c.Bool("all") || out != "" {
		page = paging.Page(pairs, max(len(pairs), 1), 1)
	}
	text := newFormatter(cfg).FormatPage(page)

	if out == "" {
		writeOutput(c.App.Writer, text)
		return nil
	}
	path := cfg.ResolvePath(out)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	writeOutput(f, text)
	fmt.Fprintf(c.App.ErrWriter, "wrote %d pairs to %s\n", len(pairs), path)
	return f.Close()
}

func searchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	sess, source, err := loadSession(c, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "mapping: %s (%d entries)\n", source, sess.Mapping().Len())

	if err := runSearch(c, cfg, sess, cache.NewWordSetCache(cache.DefaultCacheConfig())); err != nil {
		return err
	}

	if c.Bool("copy") {
		if err := copyToClipboard(search.FormatCSV(sess.Pairs())); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "copied %d pairs to clipboard\n", len(sess.Pairs()))
	}

	if c.Bool("save") {
		return saveSession(c, cfg, sess)
	}
	return nil
}
