package shader

// ParseOption is a functional option used to configure a Parse call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	explicitBindings bool
	builtIns         bool
}

func newParseConfig(opts ...ParseOption) *parseConfig {
	c := &parseConfig{builtIns: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithExplicitBindings makes Parse reject any two resources sharing a binding index, as an
// explicit set/binding backend requires. Without it only resources of the same kind
// (texture with texture, group with group) may not collide, since legacy backends keep
// texture units and uniform block binding points apart.
//
// Parameters:
//   - enabled: whether cross-kind collisions are rejected
//
// Returns:
//   - ParseOption: a function that sets the binding check mode
func WithExplicitBindings(enabled bool) ParseOption {
	return func(c *parseConfig) {
		c.explicitBindings = enabled
	}
}

// WithBuiltInGroups controls whether property groups named after engine built-ins have their
// property lists regenerated from the engine definitions. Enabled by default.
//
// Parameters:
//   - enabled: whether built-in groups are regenerated
//
// Returns:
//   - ParseOption: a function that sets the built-in regeneration mode
func WithBuiltInGroups(enabled bool) ParseOption {
	return func(c *parseConfig) {
		c.builtIns = enabled
	}
}
