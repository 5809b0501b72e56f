package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/wordshift/internal/cache"
	"github.com/standardbeagle/wordshift/internal/config"
	"github.com/standardbeagle/wordshift/internal/debug"
	"github.com/standardbeagle/wordshift/internal/dictionary"
	"github.com/standardbeagle/wordshift/internal/watch"
)

// mappingPaths returns the files the current map may be loaded from.
func mappingPaths(c *cli.Context, cfg *config.Config) []string {
	var paths []string
	if p := c.String("mapping"); p != "" {
		paths = append(paths, cfg.ResolvePath(p))
	}
	if p := c.String("grid"); p != "" {
		paths = append(paths, cfg.ResolvePath(p))
	}
	if cfg.Mapping.File != "" {
		paths = append(paths, cfg.Mapping.File)
	}
	if !c.Bool("no-restore") && cfg.State.File != "" {
		paths = append(paths, cfg.State.File)
	}
	return paths
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	words := cache.NewWordSetCache(cache.CacheConfig{MaxEntries: 4})

	var mu sync.Mutex
	sess, source, err := loadSession(c, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "mapping: %s (%d entries)\n", source, sess.Mapping().Len())
	if err := runSearch(c, cfg, sess, words); err != nil {
		return err
	}

	src, err := resolveDictionary(c.Context, c, cfg)
	if err != nil {
		return err
	}

	mapFiles := make(map[string]bool)
	for _, p := range mappingPaths(c, cfg) {
		if abs, err := filepath.Abs(p); err == nil {
			mapFiles[abs] = true
		}
	}

	onChange := func(changed []string) {
		mu.Lock()
		defer mu.Unlock()

		reload := false
		for _, path := range changed {
			words.Invalidate(path)
			if mapFiles[path] {
				reload = true
			}
			fmt.Fprintf(c.App.ErrWriter, "changed: %s\n", path)
		}

		if reload {
			next, source, err := loadSession(c, cfg)
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "keeping previous mapping: %v\n", err)
			} else {
				sess = next
				fmt.Fprintf(c.App.ErrWriter, "mapping: %s (%d entries)\n", source, sess.Mapping().Len())
			}
		}
		if err := runSearch(c, cfg, sess, words); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "search failed: %v\n", err)
		}
	}

	w, err := watch.New(watch.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
	}, onChange)
	if err != nil {
		return err
	}
	defer w.Stop()

	if fsrc, ok := src.(*dictionary.FileSource); ok {
		if err := w.Add(fsrc.Path); err != nil {
			return err
		}
	}
	for path := range mapFiles {
		if err := w.Add(path); err != nil {
			return err
		}
	}
	w.Start()
	fmt.Fprintln(c.App.ErrWriter, "watching for changes (Ctrl-C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		debug.LogWatch("received %v, stopping\n", sig)
	case <-c.Context.Done():
	}

	stats := w.Stats()
	debug.LogWatch("flushes=%d changes=%d errors=%d\n", stats.Flushes, stats.Changes, stats.ErrorCount)
	return nil
}
