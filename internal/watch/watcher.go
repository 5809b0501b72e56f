// Package watch reports when dictionary or mapping files change on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/wordshift/internal/debug"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Patterns selects additional files in watched directories, matched
	// with doublestar against the file's base name.
	Patterns []string
}

// ChangeFunc receives the files whose content changed, sorted.
type ChangeFunc func(changed []string)

// Watcher watches individual files through their parent directories, so
// editors that save by renaming a temp file over the original are seen.
// A burst of events is debounced and the callback only fires for files
// whose content hash differs from the last one seen.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *eventDebouncer
	patterns  []string
	onChange  ChangeFunc
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	mu     sync.Mutex
	hashes map[string]uint64
	dirs   map[string]bool

	statsMu     sync.RWMutex
	flushes     int64
	changes     int64
	errorCount  int64
	lastChanged time.Time
}

// New creates a watcher that calls onChange for changed files.
func New(opts Options, onChange ChangeFunc) (*Watcher, error) {
	for _, p := range opts.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		patterns: opts.Patterns,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		hashes:   make(map[string]uint64),
		dirs:     make(map[string]bool),
	}
	w.debouncer = newEventDebouncer(debounce, w.flush)
	return w, nil
}

// Add starts tracking path. Its current content becomes the baseline, so
// only later edits are reported.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if sum, ok := hashFile(abs); ok {
		w.hashes[abs] = sum
	} else {
		w.hashes[abs] = 0
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	debug.LogWatch("watching %s (directory %s)\n", abs, dir)
	return nil
}

// Start begins processing events.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.processEvents()
}

// Stop ends watching and waits for the event goroutine. Pending debounced
// events are dropped. Stop is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		w.debouncer.stop()
		err = w.watcher.Close()
		w.wg.Wait()
		debug.LogWatch("watcher stopped\n")
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 0, 1)
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	if !w.shouldProcessPath(event.Name) {
		return
	}
	debug.LogWatch("event %v for %s\n", event.Op, event.Name)
	w.debouncer.addEvent(event.Name)
}

// shouldProcessPath accepts tracked files and files matching a pattern.
func (w *Watcher) shouldProcessPath(path string) bool {
	w.mu.Lock()
	_, tracked := w.hashes[path]
	w.mu.Unlock()
	if tracked {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range w.patterns {
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// flush hashes every pending path and reports the ones that changed.
// Missing files are not reported; the create that follows a rename is.
func (w *Watcher) flush(paths []string) {
	if w.ctx.Err() != nil {
		return
	}

	var changed []string
	w.mu.Lock()
	for _, path := range paths {
		sum, ok := hashFile(path)
		if !ok {
			continue
		}
		if prev, seen := w.hashes[path]; seen && prev == sum {
			continue
		}
		w.hashes[path] = sum
		changed = append(changed, path)
	}
	w.mu.Unlock()

	w.incrementStats(1, int64(len(changed)), 0)
	if len(changed) == 0 {
		return
	}

	sort.Strings(changed)
	debug.LogWatch("%d of %d files changed\n", len(changed), len(paths))
	if w.onChange != nil {
		w.onChange(changed)
	}
}

func hashFile(path string) (uint64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

func (w *Watcher) incrementStats(flushes, changes, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.flushes += flushes
	w.changes += changes
	w.errorCount += errors
	if changes > 0 {
		w.lastChanged = time.Now()
	}
}

// Stats returns watch statistics.
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		Flushes:     w.flushes,
		Changes:     w.changes,
		ErrorCount:  w.errorCount,
		LastChanged: w.lastChanged,
		IsActive:    w.ctx.Err() == nil,
	}
}

// Stats describes watcher activity.
type Stats struct {
	Flushes     int64
	Changes     int64
	ErrorCount  int64
	LastChanged time.Time
	IsActive    bool
}

// eventDebouncer collects paths until no event has arrived for the debounce
// interval, then hands them to flush in one batch.
type eventDebouncer struct {
	mu       sync.Mutex
	paths    map[string]struct{}
	debounce time.Duration
	timer    *time.Timer
	flushFn  func([]string)
	stopped  bool
	inflight sync.WaitGroup
}

func newEventDebouncer(debounce time.Duration, flush func([]string)) *eventDebouncer {
	return &eventDebouncer{
		paths:    make(map[string]struct{}),
		debounce: debounce,
		flushFn:  flush,
	}
}

func (d *eventDebouncer) addEvent(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.paths[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.fire)
}

func (d *eventDebouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.paths) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.paths))
	for p := range d.paths {
		paths = append(paths, p)
	}
	d.paths = make(map[string]struct{})
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	d.flushFn(paths)
}

// stop cancels the pending timer and waits for a running flush.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.paths = make(map[string]struct{})
	d.mu.Unlock()

	d.inflight.Wait()
}
