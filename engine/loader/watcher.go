package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/fsnotify/fsnotify"
)

// ReloadEvent reports the outcome of one asset change.
type ReloadEvent struct {
	// Path is the asset file that changed.
	Path string

	// Name is the descriptor name affected, empty if the file never loaded.
	Name string

	// Removed is set when the file was deleted or renamed away.
	Removed bool

	// Invalidated counts the cache entries dropped.
	Invalidated int

	// Err is the parse error of a failed reload. The previous descriptor stays loaded.
	Err error
}

// ReloadHandler is called after every processed asset change.
type ReloadHandler func(ReloadEvent)

// Watcher re-parses shader assets when they change on disk, replaces them in a Loader and
// drops every cache entry of the affected descriptor names.
type Watcher interface {
	// Watch adds a directory and its subdirectories.
	//
	// Parameters:
	//   - dir: the directory to watch
	//
	// Returns:
	//   - error: error if the directory cannot be watched
	Watch(dir string) error

	// Run processes file events until ctx is cancelled or the watcher is closed.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: the context error, or nil after Close
	Run(ctx context.Context) error

	// Close releases the underlying file system watcher.
	Close() error
}

// watcher implements the Watcher interface.
type watcher struct {
	loader  Loader
	cache   cache.Cache
	fs      *fsnotify.Watcher
	handler ReloadHandler
	logger  *slog.Logger

	closeOnce sync.Once
}

var _ Watcher = &watcher{}

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithReloadHandler sets a callback invoked after every processed change.
//
// Parameters:
//   - handler: the callback
//
// Returns:
//   - WatcherBuilderOption: a function that sets the handler
func WithReloadHandler(handler ReloadHandler) WatcherBuilderOption {
	return func(w *watcher) {
		w.handler = handler
	}
}

// WithWatcherLogger sets the logger for reload messages.
//
// Parameters:
//   - logger: the logger to use, nil keeps slog.Default()
//
// Returns:
//   - WatcherBuilderOption: a function that sets the logger
func WithWatcherLogger(logger *slog.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a Watcher that reloads into l and invalidates c. It panics if l or c is nil.
//
// Parameters:
//   - l: the loader to reload into
//   - c: the cache to invalidate
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the new watcher
//   - error: error if the file system watcher cannot be created
func NewWatcher(l Loader, c cache.Cache, options ...WatcherBuilderOption) (Watcher, error) {
	if l == nil || c == nil {
		panic("loader: NewWatcher requires a loader and a cache")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	w := &watcher{
		loader: l,
		cache:  c,
		fs:     fsw,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(w)
	}
	w.logger = w.logger.With(slog.String("component", "watcher"))
	return w, nil
}

func (w *watcher) Watch(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("loader: watching %s: %w", p, err)
		}
		return nil
	})
}

func (w *watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

func (w *watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

func (w *watcher) handle(event fsnotify.Event) {
	p := filepath.Clean(event.Name)

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if err := w.Watch(p); err != nil {
				w.logger.Warn("cannot watch new directory", slog.String("path", p), slog.Any("error", err))
			}
			return
		}
	}

	switch {
	case event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.remove(p)
	case event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Write == fsnotify.Write:
		if accepts(w.loader, p) {
			w.reload(p)
		}
	}
}

func (w *watcher) reload(p string) {
	previous, hadPrevious := w.loader.NameAt(p)
	desc, err := w.loader.Load(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.remove(p)
			return
		}
		w.logger.Warn("shader reload failed", slog.String("path", p), slog.Any("error", err))
		w.notify(ReloadEvent{Path: p, Name: previous, Err: err})
		return
	}

	invalidated := w.cache.Invalidate(desc.Name)
	if hadPrevious && previous != desc.Name {
		invalidated += w.cache.Invalidate(previous)
	}
	w.logger.Info("shader reloaded", slog.String("path", p), slog.String("shader", desc.Name), slog.Int("invalidated", invalidated))
	w.notify(ReloadEvent{Path: p, Name: desc.Name, Invalidated: invalidated})
}

func (w *watcher) remove(p string) {
	name, ok := w.loader.NameAt(p)
	if !ok {
		return
	}
	w.loader.Remove(name)
	invalidated := w.cache.Invalidate(name)
	w.logger.Info("shader removed", slog.String("path", p), slog.String("shader", name), slog.Int("invalidated", invalidated))
	w.notify(ReloadEvent{Path: p, Name: name, Removed: true, Invalidated: invalidated})
}

func (w *watcher) notify(event ReloadEvent) {
	if w.handler != nil {
		w.handler(event)
	}
}

func accepts(l Loader, p string) bool {
	if impl, ok := l.(*loader); ok {
		return impl.backend.Accepts(p)
	}
	return filepath.Ext(p) == AssetExt
}
