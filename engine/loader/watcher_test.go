package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []ReloadEvent
}

func (r *recorder) handle(e ReloadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) last() (ReloadEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ReloadEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

func warm(t *testing.T, c cache.Cache, name string) {
	t.Helper()
	for _, b := range emitter.Backends {
		_, err := c.Get(cache.Key{Shader: name, Fingerprint: "f", Backend: b}, func() (*emitter.Program, error) {
			return &emitter.Program{Shader: name, Backend: b}, nil
		})
		require.NoError(t, err)
	}
}

func newTestWatcher(t *testing.T) (*watcher, Loader, cache.Cache, *recorder, string) {
	t.Helper()
	dir := t.TempDir()
	l := NewLoader()
	c := cache.NewCache()
	rec := &recorder{}
	w, err := NewWatcher(l, c, WithReloadHandler(rec.handle))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w.(*watcher), l, c, rec, dir
}

func TestWatcherReloadInvalidatesCache(t *testing.T) {
	w, l, c, rec, dir := newTestWatcher(t)
	path := filepath.Join(dir, "a.shader")
	require.NoError(t, os.WriteFile(path, []byte(asset("A")), 0o644))
	_, err := l.Load(path)
	require.NoError(t, err)
	warm(t, c, "A")
	warm(t, c, "Other")

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})

	e, ok := rec.last()
	require.True(t, ok)
	assert.NoError(t, e.Err)
	assert.Equal(t, "A", e.Name)
	assert.Equal(t, len(emitter.Backends), e.Invalidated)
	assert.Equal(t, len(emitter.Backends), c.Stats().Entries)
}

func TestWatcherRenamedDescriptorInvalidatesBothNames(t *testing.T) {
	w, l, c, rec, dir := newTestWatcher(t)
	path := filepath.Join(dir, "a.shader")
	require.NoError(t, os.WriteFile(path, []byte(asset("Old")), 0o644))
	_, err := l.Load(path)
	require.NoError(t, err)
	warm(t, c, "Old")

	require.NoError(t, os.WriteFile(path, []byte(asset("New")), 0o644))
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})

	e, _ := rec.last()
	assert.Equal(t, "New", e.Name)
	assert.Equal(t, len(emitter.Backends), e.Invalidated)
	assert.Nil(t, l.Get("Old"))
	assert.NotNil(t, l.Get("New"))
}

func TestWatcherFailedReloadKeepsPrevious(t *testing.T) {
	w, l, c, rec, dir := newTestWatcher(t)
	path := filepath.Join(dir, "a.shader")
	require.NoError(t, os.WriteFile(path, []byte(asset("A")), 0o644))
	_, err := l.Load(path)
	require.NoError(t, err)
	warm(t, c, "A")

	require.NoError(t, os.WriteFile(path, []byte(`(name: "A", resources: [`), 0o644))
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})

	e, ok := rec.last()
	require.True(t, ok)
	assert.Error(t, e.Err)
	assert.Equal(t, "A", e.Name)
	assert.NotNil(t, l.Get("A"))
	assert.Equal(t, len(emitter.Backends), c.Stats().Entries)
}

func TestWatcherRemove(t *testing.T) {
	w, l, c, rec, dir := newTestWatcher(t)
	path := filepath.Join(dir, "a.shader")
	require.NoError(t, os.WriteFile(path, []byte(asset("A")), 0o644))
	_, err := l.Load(path)
	require.NoError(t, err)
	warm(t, c, "A")

	require.NoError(t, os.Remove(path))
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Remove})

	e, ok := rec.last()
	require.True(t, ok)
	assert.True(t, e.Removed)
	assert.Nil(t, l.Get("A"))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	w, _, _, rec, dir := newTestWatcher(t)
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	_, ok := rec.last()
	assert.False(t, ok)
}

func TestWatcherRunPicksUpNewAsset(t *testing.T) {
	w, l, _, _, dir := newTestWatcher(t)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "live.shader"), []byte(asset("Live")), 0o644))
	assert.Eventually(t, func() bool { return l.Get("Live") != nil }, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewWatcherPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewWatcher(nil, cache.NewCache()) })
}
