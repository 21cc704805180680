package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when WatcherOptions leaves Debounce unset.
const DefaultDebounce = 200 * time.Millisecond

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Path is the file to watch.
	Path string

	// Debounce is the quiet period before onChange runs.
	Debounce time.Duration

	Logger Logger
}

// Watcher reports changes to a single file.
//
// The parent directory is watched rather than the file itself so that
// editors and tools which replace the file by rename keep being noticed.
type Watcher struct {
	path     string
	name     string
	debounce time.Duration
	log      Logger
}

// NewWatcher creates a Watcher for opts.Path.
func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Path == "" {
		return nil, errors.New("daemon: watcher path is required")
	}
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.Path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	return &Watcher{
		path:     abs,
		name:     filepath.Base(abs),
		debounce: opts.Debounce,
		log:      opts.Logger,
	}, nil
}

// Run watches until ctx is done, calling onChange after each debounced burst
// of writes, creates, renames or removals of the file. onChange runs on a
// timer goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	deb := NewDebouncer(w.debounce)
	defer deb.Stop()

	w.log.Info("watching cluster.conf", "path", w.path, "debounce_ms", w.debounce.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("cluster.conf watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("daemon: watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("cluster.conf event", "op", event.Op.String())
			deb.Trigger(onChange)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("daemon: watcher errors channel closed")
			}
			w.log.Error("cluster.conf watcher error", "error", err)
		}
	}
}

// relevant reports whether event concerns the watched file's content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
