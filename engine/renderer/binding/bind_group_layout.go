package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// samplerViewDimensionMap maps sampler kinds to the texture view dimension they sample.
var samplerViewDimensionMap = map[shader.SamplerKind]wgpu.TextureViewDimension{
	shader.SamplerKind1D:    wgpu.TextureViewDimension1D,
	shader.SamplerKind2D:    wgpu.TextureViewDimension2D,
	shader.SamplerKind3D:    wgpu.TextureViewDimension3D,
	shader.SamplerKindCube:  wgpu.TextureViewDimensionCube,
	shader.SamplerKindU1D:   wgpu.TextureViewDimension1D,
	shader.SamplerKindU2D:   wgpu.TextureViewDimension2D,
	shader.SamplerKindU3D:   wgpu.TextureViewDimension3D,
	shader.SamplerKindUCube: wgpu.TextureViewDimensionCube,
}

// DefaultVisibility is applied to resources without an explicit stage visibility.
const DefaultVisibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// BindGroupLayoutDescriptors derives one bind group layout per descriptor set of an explicit
// binding table. Property groups become uniform buffer entries whose MinBindingSize is the
// resolved block size; textures become sampled texture entries.
//
// Parameters:
//   - table: a binding table built with ExplicitSetBinding
//   - layouts: resolved property group layouts keyed by resource name
//   - visibility: optional per-resource stage visibility; missing names use DefaultVisibility
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by set index, entries sorted by binding
//   - error: an error if the table is implicit or a property group has no resolved layout
func BindGroupLayoutDescriptors(table BindingTable, layouts map[string]layout.ResolvedLayout, visibility map[string]wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, error) {
	if table.Mode() != ExplicitSetBinding {
		return nil, fmt.Errorf("shader %q: bind group layouts require an explicit binding table, got %s", table.Shader(), table.Mode())
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, set := range table.Sets() {
		slots := table.Set(set)
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(slots))
		for _, slot := range slots {
			vis, ok := visibility[slot.Name]
			if !ok {
				vis = DefaultVisibility
			}
			entry, err := classifyResource(slot, vis, layouts)
			if err != nil {
				return nil, fmt.Errorf("shader %q: %w", table.Shader(), err)
			}
			entries = append(entries, entry)
		}
		result[set] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s/set%d", table.Shader(), set),
			Entries: entries,
		}
	}
	return result, nil
}

// classifyResource builds the layout entry for a single slot.
//
// Parameters:
//   - slot: the resolved resource slot
//   - visibility: the shader stages that access the resource
//   - layouts: resolved property group layouts keyed by resource name
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated entry
//   - error: an error if a property group has no resolved layout
func classifyResource(slot Slot, visibility wgpu.ShaderStage, layouts map[string]layout.ResolvedLayout) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(slot.Binding),
		Visibility: visibility,
	}

	switch kind := slot.Resource.Kind.(type) {
	case shader.TextureResource:
		entry.Texture.ViewDimension = samplerViewDimensionMap[kind.Kind]
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if kind.Kind.IsUnsigned() {
			entry.Texture.SampleType = wgpu.TextureSampleTypeUint
		}
	case shader.PropertyGroupResource:
		l, ok := layouts[slot.Name]
		if !ok {
			return entry, fmt.Errorf("property group %q has no resolved layout", slot.Name)
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = l.Size
	default:
		return entry, fmt.Errorf("resource %q has unsupported kind %T", slot.Name, kind)
	}
	return entry, nil
}
