package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that bounds how many assets are parsed at once.
//
// Parameters:
//   - n: the parse concurrency, values below 1 mean unbounded
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker limit to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithParseOptions is an option builder that sets the options every asset is parsed with.
//
// Parameters:
//   - options: the shader.ParseOption values
//
// Returns:
//   - LoaderBuilderOption: a function that applies the parse options to a loader
func WithParseOptions(options ...shader.ParseOption) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = newAssetLoaderBackend(options...)
	}
}

// WithDescriptor is an option builder that pre-populates the library with a descriptor.
//
// Parameters:
//   - desc: the descriptor to add, keyed by its name
//
// Returns:
//   - LoaderBuilderOption: a function that adds the descriptor to a loader
func WithDescriptor(desc *shader.ShaderDescriptor) LoaderBuilderOption {
	return func(l *loader) {
		l.descriptors[desc.Name] = desc
	}
}

// WithLogger is an option builder that sets the logger for load messages.
//
// Parameters:
//   - logger: the logger to use, nil keeps slog.Default()
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
