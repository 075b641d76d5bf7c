package cache

import "log/slog"

// CacheBuilderOption is a functional option used to configure a Cache during construction.
type CacheBuilderOption func(*cache)

// WithLogger sets the logger used for invalidation and stale-result messages.
//
// Parameters:
//   - logger: the logger to use, nil keeps slog.Default()
//
// Returns:
//   - CacheBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) CacheBuilderOption {
	return func(c *cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}
