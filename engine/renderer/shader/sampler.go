package shader

// SamplerKind identifies the dimensionality and component type of a texture resource.
type SamplerKind int

const (
	// SamplerKind2D is a floating point 2D texture (sampler2D). It is the default kind.
	SamplerKind2D SamplerKind = iota

	// SamplerKind1D is a floating point 1D texture (sampler1D).
	SamplerKind1D

	// SamplerKind3D is a floating point 3D texture (sampler3D).
	SamplerKind3D

	// SamplerKindCube is a floating point cube map (samplerCube).
	SamplerKindCube

	// SamplerKindU1D is an unsigned integer 1D texture (usampler1D).
	SamplerKindU1D

	// SamplerKindU2D is an unsigned integer 2D texture (usampler2D).
	SamplerKindU2D

	// SamplerKindU3D is an unsigned integer 3D texture (usampler3D).
	SamplerKindU3D

	// SamplerKindUCube is an unsigned integer cube map (usamplerCube).
	SamplerKindUCube
)

var samplerKindNames = map[SamplerKind]string{
	SamplerKind1D:    "Sampler1D",
	SamplerKind2D:    "Sampler2D",
	SamplerKind3D:    "Sampler3D",
	SamplerKindCube:  "SamplerCube",
	SamplerKindU1D:   "USampler1D",
	SamplerKindU2D:   "USampler2D",
	SamplerKindU3D:   "USampler3D",
	SamplerKindUCube: "USamplerCube",
}

var samplerKindGLSL = map[SamplerKind]string{
	SamplerKind1D:    "sampler1D",
	SamplerKind2D:    "sampler2D",
	SamplerKind3D:    "sampler3D",
	SamplerKindCube:  "samplerCube",
	SamplerKindU1D:   "usampler1D",
	SamplerKindU2D:   "usampler2D",
	SamplerKindU3D:   "usampler3D",
	SamplerKindUCube: "usamplerCube",
}

// String returns the asset spelling of the sampler kind (e.g. "Sampler2D").
func (k SamplerKind) String() string {
	if n, ok := samplerKindNames[k]; ok {
		return n
	}
	return "SamplerKind(?)"
}

// GLSLType returns the GLSL opaque type name used to declare the texture.
func (k SamplerKind) GLSLType() string {
	return samplerKindGLSL[k]
}

// IsUnsigned reports whether the texture yields unsigned integer texels.
func (k SamplerKind) IsUnsigned() bool {
	return k >= SamplerKindU1D
}

// samplerKindFromName resolves the asset spelling of a sampler kind.
func samplerKindFromName(name string) (SamplerKind, bool) {
	for k, n := range samplerKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// SamplerFallback selects the placeholder texture bound when a material leaves a texture unset.
type SamplerFallback int

const (
	// SamplerFallbackWhite is a 1x1 opaque white texture. It is the default fallback.
	SamplerFallbackWhite SamplerFallback = iota

	// SamplerFallbackNormal is a 1x1 flat tangent-space normal (0.5, 0.5, 1.0).
	SamplerFallbackNormal

	// SamplerFallbackBlack is a 1x1 opaque black texture.
	SamplerFallbackBlack

	// SamplerFallbackVolume is a 1x1x1 white volume texture.
	SamplerFallbackVolume
)

var samplerFallbackNames = map[SamplerFallback]string{
	SamplerFallbackWhite:  "White",
	SamplerFallbackNormal: "Normal",
	SamplerFallbackBlack:  "Black",
	SamplerFallbackVolume: "Volume",
}

func (f SamplerFallback) String() string {
	if n, ok := samplerFallbackNames[f]; ok {
		return n
	}
	return "SamplerFallback(?)"
}

func samplerFallbackFromName(name string) (SamplerFallback, bool) {
	for f, n := range samplerFallbackNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}
