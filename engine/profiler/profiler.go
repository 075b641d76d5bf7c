// Package profiler accumulates shader compilation timings and reports them with cache and
// memory statistics.
package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
)

// Report is a snapshot of compilation timings.
type Report struct {
	Compiles int
	Failures int
	Total    time.Duration
	Max      time.Duration
	Slowest  string
}

// Mean returns the average compile duration, or 0 before the first compile.
func (r Report) Mean() time.Duration {
	if r.Compiles == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Compiles)
}

// Profiler tracks how long emissions take. It is safe for concurrent use.
type Profiler struct {
	mu             sync.Mutex
	report         Report
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with zeroed counters.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{}
}

// Observe records one compilation.
//
// Parameters:
//   - label: what was compiled, kept when it is the slowest so far
//   - d: how long it took
//   - err: the compilation error, nil on success
func (p *Profiler) Observe(label string, d time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report.Compiles++
	if err != nil {
		p.report.Failures++
	}
	p.report.Total += d
	if d > p.report.Max {
		p.report.Max = d
		p.report.Slowest = label
	}
}

// Time runs fn and records its duration under label.
//
// Parameters:
//   - label: what is being compiled
//   - fn: the work to time
//
// Returns:
//   - error: the error returned by fn
func (p *Profiler) Time(label string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.Observe(label, time.Since(start), err)
	return err
}

// Report returns the current counters.
//
// Returns:
//   - Report: a copy of the accumulated timings
func (p *Profiler) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

// Reset zeroes the counters.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = Report{}
}

// Log writes compile timings, cache counters and heap usage as one structured line.
//
// Parameters:
//   - logger: the destination logger
//   - stats: the cache counters to include
func (p *Profiler) Log(logger *slog.Logger, stats cache.Stats) {
	p.mu.Lock()
	r := p.report
	runtime.ReadMemStats(&p.memStats)
	// TotalAlloc only grows, so the delta is the allocation volume since the last report.
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	p.lastTotalAlloc = p.memStats.TotalAlloc
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	gc := p.memStats.NumGC
	p.mu.Unlock()

	logger.Info("compile profile",
		slog.String("component", "profiler"),
		slog.Group("compile",
			slog.Int("count", r.Compiles),
			slog.Int("failures", r.Failures),
			slog.Duration("mean", r.Mean()),
			slog.Duration("max", r.Max),
			slog.String("slowest", r.Slowest),
		),
		slog.Group("cache",
			slog.Uint64("hits", stats.Hits),
			slog.Uint64("misses", stats.Misses),
			slog.Uint64("emissions", stats.Emissions),
			slog.Int("entries", stats.Entries),
		),
		slog.Group("mem",
			slog.Float64("heap_mb", heapMB),
			slog.Float64("alloc_mb", float64(allocDelta)/1024/1024),
			slog.Uint64("gc", uint64(gc)),
		),
	)
}
