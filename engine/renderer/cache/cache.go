// Package cache holds emitted programs keyed by descriptor and backend. Concurrent requests for
// one key share a single emission, and entries are dropped wholesale per descriptor name when
// the descriptor changes.
package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"golang.org/x/sync/singleflight"
)

// Key identifies one cache entry.
type Key struct {
	// Shader is the descriptor name, the unit of invalidation.
	Shader string

	// Fingerprint is the descriptor content digest, so an edited descriptor never reads a stale entry.
	Fingerprint string

	Backend emitter.Backend
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%.12s/%s", k.Shader, k.Fingerprint, k.Backend)
}

// EmitFunc produces the program for a key on a cache miss.
type EmitFunc func() (*emitter.Program, error)

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Emissions     uint64
	Failures      uint64
	Invalidations uint64
	Entries       int
}

// Cache stores emitted programs and coalesces concurrent emissions of the same key.
type Cache interface {
	// Get returns the cached program for key, running emit at most once per key at a time
	// when it is absent. Callers that arrive while an emission is in flight wait for its result,
	// including callers arriving after an Invalidate of the key's shader. A result overtaken by
	// an Invalidate is returned to its waiters but not stored. Failed emissions are not cached.
	//
	// Parameters:
	//   - key: the cache key
	//   - emit: the function producing the program on a miss
	//
	// Returns:
	//   - *emitter.Program: the cached or freshly emitted program
	//   - error: the emission error, shared by every waiting caller
	Get(key Key, emit EmitFunc) (*emitter.Program, error)

	// Peek returns a cached program without emitting.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - *emitter.Program: the cached program, or nil
	//   - bool: true if the key is cached
	Peek(key Key) (*emitter.Program, bool)

	// Invalidate drops every entry of a descriptor name, for all fingerprints and backends.
	// Emissions of that name already in flight complete for their callers but are not stored.
	//
	// Parameters:
	//   - shader: the descriptor name
	//
	// Returns:
	//   - int: the number of entries removed
	Invalidate(shader string) int

	// InvalidateAll drops every entry.
	InvalidateAll()

	// Stats returns a snapshot of the cache counters.
	//
	// Returns:
	//   - Stats: the current counters
	Stats() Stats
}

// cache implements the Cache interface.
type cache struct {
	mu          sync.RWMutex
	entries     map[Key]*emitter.Program
	generations map[string]uint64
	epoch       uint64
	flights     singleflight.Group
	logger      *slog.Logger

	hits          atomic.Uint64
	misses        atomic.Uint64
	emissions     atomic.Uint64
	failures      atomic.Uint64
	invalidations atomic.Uint64
}

var _ Cache = &cache{}

// NewCache creates an empty Cache.
//
// Parameters:
//   - options: functional options to configure the cache
//
// Returns:
//   - Cache: the new cache
func NewCache(options ...CacheBuilderOption) Cache {
	c := &cache{
		entries:     make(map[Key]*emitter.Program),
		generations: make(map[string]uint64),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "cache"))
	return c
}

func (c *cache) Get(key Key, emit EmitFunc) (*emitter.Program, error) {
	if emit == nil {
		panic("cache: nil emit function")
	}
	if p, ok := c.Peek(key); ok {
		c.hits.Add(1)
		return p, nil
	}
	c.misses.Add(1)

	flight := fmt.Sprintf("%s\x00%s\x00%d", key.Shader, key.Fingerprint, key.Backend)
	v, err, _ := c.flights.Do(flight, func() (any, error) {
		if p, ok := c.Peek(key); ok {
			return p, nil
		}
		gen := c.generation(key.Shader)
		c.emissions.Add(1)
		p, err := emit()
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		c.store(key, gen, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*emitter.Program), nil
}

func (c *cache) Peek(key Key) (*emitter.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

// generation returns the invalidation counter an emission for shader is tagged with.
func (c *cache) generation(shader string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch + c.generations[shader]
}

// store records p unless shader was invalidated after the emission started.
func (c *cache) store(key Key, gen uint64, p *emitter.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch+c.generations[key.Shader] != gen {
		c.logger.Debug("discarding stale emission", slog.String("key", key.String()))
		return
	}
	c.entries[key] = p
}

func (c *cache) Invalidate(shader string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[shader]++
	removed := 0
	for k := range c.entries {
		if k.Shader == shader {
			delete(c.entries, k)
			removed++
		}
	}
	c.invalidations.Add(1)
	c.logger.Debug("invalidated shader", slog.String("shader", shader), slog.Int("entries", removed))
	return removed
}

func (c *cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	clear(c.entries)
	c.invalidations.Add(1)
}

func (c *cache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Emissions:     c.emissions.Load(),
		Failures:      c.failures.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       entries,
	}
}
