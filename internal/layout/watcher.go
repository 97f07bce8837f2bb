package layout

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before rebuilding.
const DefaultDebounce = 100 * time.Millisecond

// Resolve loads the layout at path. A missing file falls back to the
// built-in layout unless required is set.
func Resolve(fs afero.Fs, path string, required bool) (Node, error) {
	n, err := Load(fs, path)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, os.ErrNotExist) && !required {
		return Default(), nil
	}
	return Node{}, err
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithFs reads the layout through fs instead of the OS filesystem.
func WithFs(fs afero.Fs) WatcherOption {
	return func(w *Watcher) {
		if fs != nil {
			w.fs = fs
		}
	}
}

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRequired makes a missing layout file an error instead of selecting
// the built-in layout.
func WithRequired(required bool) WatcherOption {
	return func(w *Watcher) { w.required = required }
}

// Watcher keeps the child of a holder Box in sync with a layout file.
// A layout that fails to load or build is logged and the previous tree
// stays on the bar.
type Watcher struct {
	path     string
	builder  *Builder
	holder   *widget.Box
	fs       afero.Fs
	debounce time.Duration
	required bool
	logger   *logging.Logger

	mu      sync.Mutex
	current widget.Widget
}

// NewWatcher creates a Watcher that swaps layouts built by builder into
// holder.
func NewWatcher(path string, builder *Builder, holder *widget.Box, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		builder:  builder,
		holder:   holder,
		fs:       afero.NewOsFs(),
		debounce: DefaultDebounce,
		logger:   builder.logger.With("path", path),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Current returns the widget tree last swapped into the holder.
func (w *Watcher) Current() widget.Widget {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Reload loads and builds the layout and swaps it into the holder. On
// error the holder is left unchanged.
func (w *Watcher) Reload() error {
	n, err := Resolve(w.fs, w.path, w.required)
	if err != nil {
		return err
	}
	tree, err := w.builder.Build(n)
	if err != nil {
		return errors.Wrapf(err, "layout %s", w.path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.holder.Len() == 0 {
		err = w.holder.Append(tree)
	} else {
		err = w.holder.Replace(0, tree)
	}
	if err != nil {
		return err
	}
	w.current = tree
	return nil
}

// Run watches the layout file's directory until ctx is cancelled, reloading
// after every burst of writes to the file. Editors that save by renaming a
// temporary file are covered because the directory is watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create layout watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(w.path))
	}
	w.logger.Info("watching layout")

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if err := w.Reload(); err != nil {
				w.logger.Error("keeping previous layout", "error", err)
				continue
			}
			w.logger.Info("layout reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("layout watcher error", "error", err)
		}
	}
}
