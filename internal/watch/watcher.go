// Package watch re-runs a callback whenever a transcript file changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pintos-tools/testcfg/internal/logger"
)

// DefaultDebounce collapses the burst of writes a running `make check` produces
const DefaultDebounce = 250 * time.Millisecond

// Watcher observes a single file. The parent directory is watched so that
// files replaced by rename or recreated by a shell redirect keep firing.
type Watcher struct {
	Path     string
	Debounce time.Duration

	watcher *fsnotify.Watcher
	logger  logger.Logger
}

// New starts watching path. The file must already exist.
func New(path string, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("failed to stat transcript: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		Path:     abs,
		Debounce: DefaultDebounce,
		watcher:  fw,
		logger:   log,
	}, nil
}

// Run calls onChange once per settled burst of changes to the file until ctx
// is cancelled. Errors from onChange are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	defer func() { _ = w.watcher.Close() }()

	// nil until a change arrives; each change restarts the quiet period
	var settled <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("Transcript changed: %s", event)
			settled = time.After(w.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error: %v", err)

		case <-settled:
			settled = nil
			if err := onChange(); err != nil {
				w.logger.Error("Regeneration failed: %v", err)
			}
		}
	}
}
