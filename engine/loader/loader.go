// Package loader reads shader assets from disk or embedded file systems into a descriptor
// library keyed by descriptor name, and keeps that library current while assets are edited.
package loader

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"golang.org/x/sync/errgroup"
)

//go:embed assets/*.shader
var standardAssets embed.FS

// StandardAssets returns the engine's built-in shader assets.
//
// Returns:
//   - fs.FS: a file system rooted at the asset directory
func StandardAssets() fs.FS {
	sub, err := fs.Sub(standardAssets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	descriptors map[string]*shader.ShaderDescriptor
	paths       map[string]string
	names       map[string]string

	backend loaderBackend
	workers int
	logger  *slog.Logger
}

// Loader parses shader assets and caches the descriptors by name.
type Loader interface {
	// Load parses one asset file and stores the result, replacing any descriptor previously
	// loaded from the same path.
	//
	// Parameters:
	//   - path: the asset file path
	//
	// Returns:
	//   - *shader.ShaderDescriptor: the parsed descriptor
	//   - error: error if the file cannot be read, parsed, or its name is already taken by another file
	Load(path string) (*shader.ShaderDescriptor, error)

	// LoadReader parses an asset from a reader and stores it under the given source label.
	//
	// Parameters:
	//   - source: the label recorded as the descriptor's path
	//   - r: the reader providing asset text
	//
	// Returns:
	//   - *shader.ShaderDescriptor: the parsed descriptor
	//   - error: error if reading or parsing fails
	LoadReader(source string, r io.Reader) (*shader.ShaderDescriptor, error)

	// LoadFS parses every asset under fsys in parallel. Files that fail do not stop the others;
	// their errors are joined in the result.
	//
	// Parameters:
	//   - ctx: cancels outstanding parses
	//   - fsys: the file system to walk
	//   - prefix: joined onto each file path to form the recorded source path
	//
	// Returns:
	//   - []*shader.ShaderDescriptor: the descriptors loaded, sorted by name
	//   - error: the joined per-file errors, or the context error
	LoadFS(ctx context.Context, fsys fs.FS, prefix string) ([]*shader.ShaderDescriptor, error)

	// LoadDirs calls LoadFS for each directory.
	//
	// Parameters:
	//   - ctx: cancels outstanding parses
	//   - dirs: the directories to scan recursively
	//
	// Returns:
	//   - []*shader.ShaderDescriptor: every descriptor loaded, sorted by name
	//   - error: the joined errors of every directory
	LoadDirs(ctx context.Context, dirs ...string) ([]*shader.ShaderDescriptor, error)

	// Get returns a descriptor by name, or nil.
	Get(name string) *shader.ShaderDescriptor

	// Path returns the source path a descriptor was loaded from.
	Path(name string) (string, bool)

	// NameAt returns the name of the descriptor loaded from a source path.
	NameAt(path string) (string, bool)

	// Remove drops a descriptor by name.
	//
	// Returns:
	//   - bool: true if the descriptor was present
	Remove(name string) bool

	// Names returns the loaded descriptor names in sorted order.
	Names() []string

	// Descriptors returns the loaded descriptors sorted by name.
	Descriptors() []*shader.ShaderDescriptor
}

var _ Loader = &loader{}

// NewLoader creates an empty Loader with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		descriptors: make(map[string]*shader.ShaderDescriptor),
		paths:       make(map[string]string),
		names:       make(map[string]string),
		backend:     newAssetLoaderBackend(),
		workers:     4,
		logger:      slog.Default(),
	}

	for _, option := range options {
		option(l)
	}
	l.logger = l.logger.With(slog.String("component", "loader"))
	return l
}

// Standard creates a Loader holding the engine's built-in shaders.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the populated loader
//   - error: error if a built-in asset fails to parse
func Standard(options ...LoaderBuilderOption) (Loader, error) {
	l := NewLoader(options...)
	if _, err := l.LoadFS(context.Background(), StandardAssets(), ""); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *loader) Load(p string) (*shader.ShaderDescriptor, error) {
	p = filepath.Clean(p)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return l.add(p, data)
}

func (l *loader) LoadReader(source string, r io.Reader) (*shader.ShaderDescriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", source, err)
	}
	return l.add(source, data)
}

func (l *loader) LoadFS(ctx context.Context, fsys fs.FS, prefix string) ([]*shader.ShaderDescriptor, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && l.backend.Accepts(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	parsed := make([]*shader.ShaderDescriptor, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if l.workers > 0 {
		g.SetLimit(l.workers)
	}
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, f)
			if err != nil {
				errs[i] = fmt.Errorf("loader: %w", err)
				return nil
			}
			desc, err := l.backend.Parse(f, data)
			if err != nil {
				errs[i] = fmt.Errorf("loader: %s: %w", sourcePath(prefix, f), err)
				return nil
			}
			parsed[i] = desc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var loaded []*shader.ShaderDescriptor
	for i, desc := range parsed {
		if desc == nil {
			continue
		}
		if err := l.put(sourcePath(prefix, files[i]), desc); err != nil {
			errs[i] = err
			continue
		}
		loaded = append(loaded, desc)
	}
	sortByName(loaded)
	l.logger.Info("loaded shader assets", slog.String("source", prefix), slog.Int("count", len(loaded)), slog.Int("files", len(files)))
	return loaded, errors.Join(errs...)
}

func (l *loader) LoadDirs(ctx context.Context, dirs ...string) ([]*shader.ShaderDescriptor, error) {
	var loaded []*shader.ShaderDescriptor
	var errs []error
	for _, dir := range dirs {
		descs, err := l.LoadFS(ctx, os.DirFS(dir), dir)
		loaded = append(loaded, descs...)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	sortByName(loaded)
	return loaded, errors.Join(errs...)
}

func (l *loader) add(source string, data []byte) (*shader.ShaderDescriptor, error) {
	desc, err := l.backend.Parse(source, data)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", source, err)
	}
	if err := l.put(source, desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// put stores desc as the descriptor loaded from source. A name already owned by a different
// source is rejected; a source that previously held another name releases it.
func (l *loader) put(source string, desc *shader.ShaderDescriptor) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if owner, ok := l.paths[desc.Name]; ok && owner != source {
		return fmt.Errorf("loader: descriptor %q in %s is already loaded from %s", desc.Name, source, owner)
	}
	if old, ok := l.names[source]; ok && old != desc.Name {
		delete(l.descriptors, old)
		delete(l.paths, old)
	}
	l.descriptors[desc.Name] = desc
	l.paths[desc.Name] = source
	l.names[source] = desc.Name
	return nil
}

func (l *loader) Get(name string) *shader.ShaderDescriptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.descriptors[name]
}

func (l *loader) Path(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.paths[name]
	return p, ok
}

func (l *loader) NameAt(p string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	name, ok := l.names[p]
	return name, ok
}

func (l *loader) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.descriptors[name]; !ok {
		return false
	}
	if p, ok := l.paths[name]; ok {
		delete(l.names, p)
	}
	delete(l.descriptors, name)
	delete(l.paths, name)
	return true
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.descriptors))
	for name := range l.descriptors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (l *loader) Descriptors() []*shader.ShaderDescriptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*shader.ShaderDescriptor, 0, len(l.descriptors))
	for _, desc := range l.descriptors {
		out = append(out, desc)
	}
	sortByName(out)
	return out
}

func sourcePath(prefix, file string) string {
	if prefix == "" {
		return file
	}
	return filepath.Join(prefix, filepath.FromSlash(path.Clean(file)))
}

func sortByName(descs []*shader.ShaderDescriptor) {
	slices.SortFunc(descs, func(a, b *shader.ShaderDescriptor) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
}
