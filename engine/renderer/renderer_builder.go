package renderer

import (
	"github.com/Carmen-Shannon/oxy-shader/engine"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithCompiler sets the compiler shaders are registered through, so several renderers can
// share one program cache.
//
// Parameters:
//   - c: the compiler
//
// Returns:
//   - RendererBuilderOption: a function that applies the compiler option to a renderer
func WithCompiler(c engine.Compiler) RendererBuilderOption {
	return func(r *renderer) {
		r.compiler = c
	}
}
