package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/cache"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/pipeline"
)

// CompilerBuilderOption is a functional option for configuring a Compiler.
// Use the With* functions to create options that are applied directly to the compiler instance.
type CompilerBuilderOption func(*compiler)

// WithProfiling enables or disables logging a compile profile after each library compilation.
//
// Parameters:
//   - enabled: if true, enables profile output
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithProfiling(enabled bool) CompilerBuilderOption {
	return func(c *compiler) {
		c.profilingEnabled = enabled
	}
}

// WithWorkers sets the size of the library compilation worker pool.
// Values <= 0 keep the default of one worker per spare CPU.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithWorkers(n int) CompilerBuilderOption {
	return func(c *compiler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithEmitter sets the emitter used on cache misses.
//
// Parameters:
//   - e: a configured Emitter
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithEmitter(e emitter.Emitter) CompilerBuilderOption {
	return func(c *compiler) {
		c.emitter = e
	}
}

// WithCache sets a shared program cache, such as one a loader.Watcher invalidates.
//
// Parameters:
//   - pc: the cache
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithCache(pc cache.Cache) CompilerBuilderOption {
	return func(c *compiler) {
		c.cache = pc
	}
}

// WithLogger sets the logger.
//
// Parameters:
//   - logger: the logger to use, nil keeps slog.Default()
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) CompilerBuilderOption {
	return func(c *compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPipelineOptions sets options applied to every pipeline built by Pipelines.
//
// Parameters:
//   - opts: the pipeline options
//
// Returns:
//   - CompilerBuilderOption: option function to apply
func WithPipelineOptions(opts ...pipeline.PipelineBuilderOption) CompilerBuilderOption {
	return func(c *compiler) {
		c.pipelineOptions = opts
	}
}
