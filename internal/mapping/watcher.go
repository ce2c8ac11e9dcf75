package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher serves the current registry and swaps in a fresh one whenever the
// mapping file changes on disk. A reload that fails to parse or validate is
// logged and discarded; scoring continues against the previous registry.
type Watcher struct {
	path    string
	current atomic.Pointer[Registry]
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
}

// NewWatcher loads the mapping file once and begins watching its directory.
// Watching the directory rather than the file survives editors and config
// management tools that replace the file via rename.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	reg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch mapping: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch mapping dir: %w", err)
	}

	w := &Watcher{path: path, fsw: fsw, logger: logger}
	w.current.Store(reg)
	return w, nil
}

// Current returns the registry snapshot for a scoring call.
func (w *Watcher) Current() *Registry {
	return w.current.Load()
}

// Reload re-reads the mapping file and swaps the registry on success.
func (w *Watcher) Reload() error {
	reg, err := Load(w.path)
	if err != nil {
		return err
	}
	w.current.Store(reg)
	w.logger.Info("mapping registry reloaded", "path", w.path, "versions", reg.VersionIDs())
	return nil
}

// Run consumes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.Reload(); err != nil {
				w.logger.Warn("mapping reload failed, keeping previous registry", "error", err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("mapping watcher error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
