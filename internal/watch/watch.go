// Package watch reports batches of changed book sources, debounced so an
// editor save that touches several files triggers one rebuild.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the debounce delay used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Watcher watches a directory for changes to matching files.
type Watcher struct {
	dir     string
	delay   time.Duration
	match   func(path string) bool
	watcher *fsnotify.Watcher
	log     *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// New watches dir and its subdirectories. match selects the files whose
// changes count; nil matches every file.
func New(dir string, delay time.Duration, match func(path string) bool, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		dir:     dir,
		delay:   delay,
		match:   match,
		watcher: fsw,
		log:     log,
		pending: make(map[string]fsnotify.Op),
	}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers batches of changed paths to fn until ctx is done. fn runs
// on the watcher goroutine, so events arriving meanwhile are batched for
// the next call.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	ticker := time.NewTicker(w.delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)

		case <-ticker.C:
			if changed := w.flush(); len(changed) > 0 {
				fn(changed)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn("watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.match(event.Name) {
		return
	}
	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
	w.log.Debug("source changed", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flush() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	sort.Strings(changed)
	return changed
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
