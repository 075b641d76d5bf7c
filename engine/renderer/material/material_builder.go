package material

import "fmt"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material. Defaults to the shader name.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithProperty is an option builder that overrides a property value. It panics if the
// property is not declared or the value has the wrong type.
//
// Parameters:
//   - group: the property group resource name
//   - name: the property name
//   - value: the override value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the property override to a material
func WithProperty(group, name string, value any) MaterialBuilderOption {
	return func(m *material) {
		if err := m.SetProperty(group, name, value); err != nil {
			panic(err)
		}
	}
}

// WithTexture is an option builder that assigns a texture path to a texture resource. It
// panics if the resource is not a declared texture.
//
// Parameters:
//   - resource: the texture resource name
//   - path: the texture asset path
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture assignment to a material
func WithTexture(resource, path string) MaterialBuilderOption {
	return func(m *material) {
		if err := m.SetTexture(resource, path); err != nil {
			panic(fmt.Errorf("material: %w", err))
		}
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key of the material.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}
