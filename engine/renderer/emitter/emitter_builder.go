package emitter

import (
	"log/slog"
)

// EmitterBuilderOption is a functional option used to configure an Emitter during construction.
type EmitterBuilderOption func(*emitter)

// WithSharedLibrary replaces the embedded shared function library.
//
// Parameters:
//   - source: GLSL helper functions inlined ahead of every pass body
//
// Returns:
//   - EmitterBuilderOption: a function that sets the shared library
func WithSharedLibrary(source string) EmitterBuilderOption {
	return func(e *emitter) {
		e.shared = source
	}
}

// WithLogger sets the logger used for per-pass debug output.
//
// Parameters:
//   - logger: the logger to use, nil keeps slog.Default()
//
// Returns:
//   - EmitterBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) EmitterBuilderOption {
	return func(e *emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}
