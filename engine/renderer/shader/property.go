package shader

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// PropertyKind identifies the type of one property inside a property group. The set is
// closed; the layout engine rejects any value outside it.
type PropertyKind int

const (
	PropertyKindFloat PropertyKind = iota
	PropertyKindInt
	PropertyKindUInt
	PropertyKindBool
	PropertyKindVector2
	PropertyKindVector3
	PropertyKindVector4
	PropertyKindMatrix2
	PropertyKindMatrix3
	PropertyKindMatrix4
	PropertyKindColor

	// PropertyKindSampler is accepted by the parser for material editing but has no uniform block representation.
	PropertyKindSampler

	PropertyKindFloatArray
	PropertyKindIntArray
	PropertyKindUIntArray
	PropertyKindVector2Array
	PropertyKindVector3Array
	PropertyKindVector4Array
	PropertyKindMatrix2Array
	PropertyKindMatrix3Array
	PropertyKindMatrix4Array
)

var propertyKindNames = map[PropertyKind]string{
	PropertyKindFloat:        "Float",
	PropertyKindInt:          "Int",
	PropertyKindUInt:         "UInt",
	PropertyKindBool:         "Bool",
	PropertyKindVector2:      "Vector2",
	PropertyKindVector3:      "Vector3",
	PropertyKindVector4:      "Vector4",
	PropertyKindMatrix2:      "Matrix2",
	PropertyKindMatrix3:      "Matrix3",
	PropertyKindMatrix4:      "Matrix4",
	PropertyKindColor:        "Color",
	PropertyKindSampler:      "Sampler",
	PropertyKindFloatArray:   "FloatArray",
	PropertyKindIntArray:     "IntArray",
	PropertyKindUIntArray:    "UIntArray",
	PropertyKindVector2Array: "Vector2Array",
	PropertyKindVector3Array: "Vector3Array",
	PropertyKindVector4Array: "Vector4Array",
	PropertyKindMatrix2Array: "Matrix2Array",
	PropertyKindMatrix3Array: "Matrix3Array",
	PropertyKindMatrix4Array: "Matrix4Array",
}

var arrayElementKinds = map[PropertyKind]PropertyKind{
	PropertyKindFloatArray:   PropertyKindFloat,
	PropertyKindIntArray:     PropertyKindInt,
	PropertyKindUIntArray:    PropertyKindUInt,
	PropertyKindVector2Array: PropertyKindVector2,
	PropertyKindVector3Array: PropertyKindVector3,
	PropertyKindVector4Array: PropertyKindVector4,
	PropertyKindMatrix2Array: PropertyKindMatrix2,
	PropertyKindMatrix3Array: PropertyKindMatrix3,
	PropertyKindMatrix4Array: PropertyKindMatrix4,
}

var glslTypeNames = map[PropertyKind]string{
	PropertyKindFloat:   "float",
	PropertyKindInt:     "int",
	PropertyKindUInt:    "uint",
	PropertyKindBool:    "bool",
	PropertyKindVector2: "vec2",
	PropertyKindVector3: "vec3",
	PropertyKindVector4: "vec4",
	PropertyKindMatrix2: "mat2",
	PropertyKindMatrix3: "mat3",
	PropertyKindMatrix4: "mat4",
	PropertyKindColor:   "vec4",
}

// String returns the asset tag of the kind (e.g. "Vector3Array").
func (k PropertyKind) String() string {
	if n, ok := propertyKindNames[k]; ok {
		return n
	}
	return "PropertyKind(?)"
}

// Valid reports whether k belongs to the closed kind set.
func (k PropertyKind) Valid() bool {
	_, ok := propertyKindNames[k]
	return ok
}

// IsArray reports whether k is one of the fixed-size array kinds.
func (k PropertyKind) IsArray() bool {
	_, ok := arrayElementKinds[k]
	return ok
}

// ElementKind returns the element kind of an array kind, or k itself for non-array kinds.
func (k PropertyKind) ElementKind() PropertyKind {
	if e, ok := arrayElementKinds[k]; ok {
		return e
	}
	return k
}

// GLSLType returns the GLSL type name of a non-array kind, or of an array kind's element.
// It returns an empty string for kinds without a uniform block representation.
func (k PropertyKind) GLSLType() string {
	return glslTypeNames[k.ElementKind()]
}

func propertyKindFromName(name string) (PropertyKind, bool) {
	for k, n := range propertyKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// SamplerProperty is the value of a Sampler property: an optional default texture path and
// the fallback used when no texture is bound.
type SamplerProperty struct {
	Default  string
	Fallback SamplerFallback
}

// PropertyDeclaration is one named, typed member of a property group. Value holds the
// default and its Go type is fixed by Kind:
//
//	Float float32, Int int32, UInt uint32, Bool bool,
//	Vector2/3/4 mgl32.Vec2/3/4, Matrix2/3/4 mgl32.Mat2/3/4,
//	Color color.RGBA, Sampler SamplerProperty,
//	array kinds a slice of the element type ([]float32, []mgl32.Vec3, ...).
//
// ArrayLen is the fixed element count of array kinds and zero otherwise.
type PropertyDeclaration struct {
	Name     string
	Kind     PropertyKind
	ArrayLen int
	Value    any
}

// NewProperty creates a non-array property with the kind's default value.
//
// Parameters:
//   - name: the property name
//   - kind: the property kind; must not be an array kind
//
// Returns:
//   - PropertyDeclaration: the property carrying DefaultValue(kind)
func NewProperty(name string, kind PropertyKind) PropertyDeclaration {
	return PropertyDeclaration{Name: name, Kind: kind, Value: DefaultValue(kind)}
}

// NewArrayProperty creates an array property with an empty default value list.
//
// Parameters:
//   - name: the property name
//   - kind: an array kind
//   - length: the fixed element count reserved in the uniform block
//
// Returns:
//   - PropertyDeclaration: the array property
func NewArrayProperty(name string, kind PropertyKind, length int) PropertyDeclaration {
	return PropertyDeclaration{Name: name, Kind: kind, ArrayLen: length, Value: DefaultValue(kind)}
}

// DefaultValue returns the value a property of the given kind takes when the asset omits it:
// zero for numbers and vectors, false for booleans, identity for matrices, opaque white for
// colors and an empty slice for arrays.
//
// Parameters:
//   - kind: the property kind
//
// Returns:
//   - any: the default value, or nil for kinds outside the closed set
func DefaultValue(kind PropertyKind) any {
	switch kind {
	case PropertyKindFloat:
		return float32(0)
	case PropertyKindInt:
		return int32(0)
	case PropertyKindUInt:
		return uint32(0)
	case PropertyKindBool:
		return false
	case PropertyKindVector2:
		return mgl32.Vec2{}
	case PropertyKindVector3:
		return mgl32.Vec3{}
	case PropertyKindVector4:
		return mgl32.Vec4{}
	case PropertyKindMatrix2:
		return mgl32.Ident2()
	case PropertyKindMatrix3:
		return mgl32.Ident3()
	case PropertyKindMatrix4:
		return mgl32.Ident4()
	case PropertyKindColor:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	case PropertyKindSampler:
		return SamplerProperty{}
	case PropertyKindFloatArray:
		return []float32{}
	case PropertyKindIntArray:
		return []int32{}
	case PropertyKindUIntArray:
		return []uint32{}
	case PropertyKindVector2Array:
		return []mgl32.Vec2{}
	case PropertyKindVector3Array:
		return []mgl32.Vec3{}
	case PropertyKindVector4Array:
		return []mgl32.Vec4{}
	case PropertyKindMatrix2Array:
		return []mgl32.Mat2{}
	case PropertyKindMatrix3Array:
		return []mgl32.Mat3{}
	case PropertyKindMatrix4Array:
		return []mgl32.Mat4{}
	default:
		return nil
	}
}
