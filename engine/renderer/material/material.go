package material

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	shader      *shader.ShaderDescriptor
	properties  map[string]map[string]any
	textures    map[string]string
	pipelineKey string
}

// Material defines the interface for a render material: a shader descriptor plus per-material
// property overrides and texture assignments. Properties without an override read the default
// declared in the descriptor.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shader retrieves the descriptor the material instantiates.
	//
	// Returns:
	//   - *shader.ShaderDescriptor: the shader descriptor
	Shader() *shader.ShaderDescriptor

	// Property retrieves the effective value of a property: the override if set, otherwise the declared default.
	//
	// Parameters:
	//   - group: the property group resource name
	//   - name: the property name
	//
	// Returns:
	//   - any: the property value
	//   - bool: false if the group or property is not declared
	Property(group, name string) (any, bool)

	// SetProperty overrides a property value.
	//
	// Parameters:
	//   - group: the property group resource name
	//   - name: the property name
	//   - value: the new value, of the Go type documented on shader.PropertyDeclaration
	//
	// Returns:
	//   - error: an error if the property is not declared or the value has the wrong type
	SetProperty(group, name string, value any) error

	// ResetProperty removes an override so the declared default applies again.
	//
	// Parameters:
	//   - group: the property group resource name
	//   - name: the property name
	ResetProperty(group, name string)

	// Texture retrieves the texture path assigned to a texture resource.
	//
	// Parameters:
	//   - resource: the texture resource name
	//
	// Returns:
	//   - string: the assigned path
	//   - bool: false if no texture is assigned and the resource's fallback applies
	Texture(resource string) (string, bool)

	// SetTexture assigns a texture path to a texture resource.
	//
	// Parameters:
	//   - resource: the texture resource name
	//   - path: the texture asset path
	//
	// Returns:
	//   - error: an error if the resource is not a declared texture
	SetTexture(resource, path string) error

	// BufferWrites encodes every property group into its uniform block layout.
	//
	// Returns:
	//   - []BufferWrite: one write per property group, in declaration order
	//   - error: a layout or encoding error
	BufferWrites() ([]BufferWrite, error)

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)
}

var _ Material = &material{}

// NewMaterial creates a new Material for a shader descriptor. Builder options that fail
// validation cause a panic, matching programmer errors elsewhere in the engine.
//
// Parameters:
//   - desc: the shader descriptor the material instantiates
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(desc *shader.ShaderDescriptor, options ...MaterialBuilderOption) Material {
	if desc == nil {
		panic("material: nil shader descriptor")
	}
	m := &material{
		name:       desc.Name,
		shader:     desc,
		properties: make(map[string]map[string]any),
		textures:   make(map[string]string),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Shader() *shader.ShaderDescriptor {
	return m.shader
}

// declaration finds a property declaration within a named group.
func (m *material) declaration(group, name string) (shader.PropertyDeclaration, bool) {
	r, ok := m.shader.Resource(group)
	if !ok {
		return shader.PropertyDeclaration{}, false
	}
	g, ok := r.PropertyGroup()
	if !ok {
		return shader.PropertyDeclaration{}, false
	}
	for _, p := range g.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return shader.PropertyDeclaration{}, false
}

func (m *material) Property(group, name string) (any, bool) {
	decl, ok := m.declaration(group, name)
	if !ok {
		return nil, false
	}
	if v, ok := m.properties[group][name]; ok {
		return v, true
	}
	return decl.Value, true
}

func (m *material) SetProperty(group, name string, value any) error {
	decl, ok := m.declaration(group, name)
	if !ok {
		return fmt.Errorf("material %q: group %q has no property %q", m.name, group, name)
	}
	if want := shader.DefaultValue(decl.Kind); reflect.TypeOf(value) != reflect.TypeOf(want) {
		return fmt.Errorf("material %q: property %s.%s of kind %s expects %T, got %T", m.name, group, name, decl.Kind, want, value)
	}
	if m.properties[group] == nil {
		m.properties[group] = make(map[string]any)
	}
	m.properties[group][name] = value
	return nil
}

func (m *material) ResetProperty(group, name string) {
	delete(m.properties[group], name)
}

func (m *material) Texture(resource string) (string, bool) {
	path, ok := m.textures[resource]
	return path, ok
}

func (m *material) SetTexture(resource, path string) error {
	r, ok := m.shader.Resource(resource)
	if !ok || !r.IsTexture() {
		return fmt.Errorf("material %q: %q is not a declared texture", m.name, resource)
	}
	m.textures[resource] = path
	return nil
}

func (m *material) BufferWrites() ([]BufferWrite, error) {
	var writes []BufferWrite
	for _, r := range m.shader.Resources {
		g, ok := r.PropertyGroup()
		if !ok {
			continue
		}
		l, err := layout.Compute(g.Properties)
		if err != nil {
			return nil, fmt.Errorf("material %q group %q: %w", m.name, r.Name, err)
		}
		values := make(map[string]any, len(g.Properties))
		for _, p := range g.Properties {
			values[p.Name] = p.Value
		}
		for name, v := range m.properties[r.Name] {
			values[name] = v
		}
		data, err := l.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("material %q group %q: %w", m.name, r.Name, err)
		}
		writes = append(writes, BufferWrite{
			Resource: r.Name,
			Binding:  r.Binding,
			Offset:   0,
			Data:     data,
		})
	}
	return writes, nil
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}
