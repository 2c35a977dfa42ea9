// Package watch re-runs generation when its input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of editor writes into one run.
const DefaultDebounce = 200 * time.Millisecond

// Watcher observes a fixed set of files. Parent directories are watched so
// that files replaced by rename (as most editors save) keep being tracked.
type Watcher struct {
	debounce time.Duration
	logger   *slog.Logger
	files    map[string]bool
	fs       *fsnotify.Watcher
}

// New starts watching files. Empty paths are ignored.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{debounce: debounce, logger: logger, files: make(map[string]bool), fs: fsw}
	dirs := make(map[string]bool)
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls onChange once per debounced burst of changes until ctx is
// cancelled. Errors from onChange are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer w.fs.Close()

	// Timers are unbuffered since Go 1.23: Stop and Reset never leave a
	// stale tick behind, so no draining is needed.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("input changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.logger.Error("regeneration failed", "error", err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.files[filepath.Clean(ev.Name)] {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
