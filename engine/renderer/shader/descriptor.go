// descriptor.go defines the in-memory form of a .shader asset: the shader descriptor, its
// ordered resource declarations, and its render passes. A descriptor is produced by Parse
// and treated as immutable afterwards; derived data (layouts, binding tables, emitted
// sources) is computed from it and cached elsewhere keyed by Name and Fingerprint.
package shader

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// BuiltInPrefix marks resource names owned by the engine. Property groups using a
// recognised built-in name have their property lists regenerated on load.
const BuiltInPrefix = "oxy_"

// Standard render pass names recognised by the renderer. Descriptors may declare other names.
const (
	PassGBuffer           = "GBuffer"
	PassForward           = "Forward"
	PassDirectionalShadow = "DirectionalShadow"
	PassSpotShadow        = "SpotShadow"
	PassPointShadow       = "PointShadow"
)

// ShaderDescriptor is the parsed form of one shader asset. It owns its resources and passes.
type ShaderDescriptor struct {
	// Name identifies the descriptor and must be unique within a shader library.
	Name string

	// Resources lists the external inputs of every pass, in declaration order.
	Resources []ResourceDeclaration

	// Passes lists the render passes, in declaration order.
	Passes []RenderPass

	fingerprint string
}

// ResourceDeclaration names one texture or property group and the binding index it was declared with.
type ResourceDeclaration struct {
	Name    string
	Kind    ResourceKind
	Binding int
}

// ResourceKind is the closed set of resource variants: TextureResource or PropertyGroupResource.
type ResourceKind interface {
	isResourceKind()
}

// TextureResource is a sampled texture input.
type TextureResource struct {
	Kind     SamplerKind
	Fallback SamplerFallback
}

// PropertyGroupResource is an ordered set of properties packed into one uniform block.
type PropertyGroupResource struct {
	Properties []PropertyDeclaration
}

func (TextureResource) isResourceKind()       {}
func (PropertyGroupResource) isResourceKind() {}

// RenderPass is one complete vertex + fragment program with its fixed-function draw state.
type RenderPass struct {
	Name           string
	DrawParameters DrawParameters
	VertexShader   string
	FragmentShader string
}

// Source returns the pass body for the given stage.
//
// Parameters:
//   - stage: the shader stage to retrieve
//
// Returns:
//   - string: the stage body, or an empty string for an unknown stage
func (p RenderPass) Source(stage ShaderType) string {
	switch stage {
	case ShaderTypeVertex:
		return p.VertexShader
	case ShaderTypeFragment:
		return p.FragmentShader
	default:
		return ""
	}
}

// IsBuiltIn reports whether the resource name carries the engine-owned prefix.
func (r ResourceDeclaration) IsBuiltIn() bool {
	return strings.HasPrefix(r.Name, BuiltInPrefix)
}

// IsTexture reports whether the resource is a texture.
func (r ResourceDeclaration) IsTexture() bool {
	_, ok := r.Kind.(TextureResource)
	return ok
}

// PropertyGroup returns the resource's property group, if it is one.
//
// Returns:
//   - PropertyGroupResource: the group, or the zero value when the resource is a texture
//   - bool: true if the resource is a property group
func (r ResourceDeclaration) PropertyGroup() (PropertyGroupResource, bool) {
	g, ok := r.Kind.(PropertyGroupResource)
	return g, ok
}

// Resource looks up a resource declaration by name.
//
// Parameters:
//   - name: the resource name
//
// Returns:
//   - ResourceDeclaration: the declaration, or the zero value if absent
//   - bool: true if a resource with that name exists
func (d *ShaderDescriptor) Resource(name string) (ResourceDeclaration, bool) {
	for _, r := range d.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceDeclaration{}, false
}

// Pass looks up a render pass by name.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - RenderPass: the pass, or the zero value if absent
//   - bool: true if a pass with that name exists
func (d *ShaderDescriptor) Pass(name string) (RenderPass, bool) {
	for _, p := range d.Passes {
		if p.Name == name {
			return p, true
		}
	}
	return RenderPass{}, false
}

// Fingerprint returns a stable hex digest of the descriptor's canonical text form.
// Two descriptors with the same fingerprint emit identical backend source.
//
// Returns:
//   - string: the SHA-256 digest of Marshal(d), hex encoded
func (d *ShaderDescriptor) Fingerprint() string {
	if d.fingerprint != "" {
		return d.fingerprint
	}
	sum := sha256.Sum256([]byte(Marshal(d)))
	return hex.EncodeToString(sum[:])
}

// seal computes and stores the fingerprint once parsing has finished.
func (d *ShaderDescriptor) seal() {
	d.fingerprint = ""
	d.fingerprint = d.Fingerprint()
}
