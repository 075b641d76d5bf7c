// Package layout computes the byte layout of property groups inside uniform blocks and
// serializes property values into buffers with that layout.
//
// The layout is deterministic and backend independent. Properties are placed in
// declaration order on a running cursor:
//   - scalars (float, int, uint, bool) are 4 bytes, 4-byte aligned; bool is stored as a 0/1 integer
//   - vectors and colors are 16-byte aligned, 8, 12 or 16 bytes long
//   - matrices are 16-byte aligned with one 16-byte column per column (mat2 32, mat3 48, mat4 64)
//   - array elements are padded to a 16-byte stride
//   - the block size is rounded up to a multiple of 16
package layout

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// BlockAlignment is the alignment of a whole uniform block and of array element strides.
const BlockAlignment = 16

// Field is the placement of one property inside a block.
type Field struct {
	Name   string
	Kind   shader.PropertyKind
	Offset uint64
	Align  uint64

	// Size is the number of bytes the property occupies, padding between array elements included.
	Size uint64

	// Stride is the distance between array elements, zero for non-array kinds.
	Stride uint64

	// Count is the fixed element count of array kinds, zero otherwise.
	Count int
}

// ResolvedLayout is the layout of one property group.
type ResolvedLayout struct {
	Fields []Field
	Size   uint64
}

// Field looks up a field by property name.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - Field: the field, or the zero value if absent
//   - bool: true if the property exists in the layout
func (l ResolvedLayout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type kindLayout struct {
	size  uint64
	align uint64
}

// kindLayoutMap holds the size and alignment of every non-array kind that fits in a block.
var kindLayoutMap = map[shader.PropertyKind]kindLayout{
	shader.PropertyKindFloat:   {4, 4},
	shader.PropertyKindInt:     {4, 4},
	shader.PropertyKindUInt:    {4, 4},
	shader.PropertyKindBool:    {4, 4},
	shader.PropertyKindVector2: {8, 16},
	shader.PropertyKindVector3: {12, 16},
	shader.PropertyKindVector4: {16, 16},
	shader.PropertyKindColor:   {16, 16},
	shader.PropertyKindMatrix2: {32, 16},
	shader.PropertyKindMatrix3: {48, 16},
	shader.PropertyKindMatrix4: {64, 16},
}

// std140AlignmentMap holds the base alignment GLSL's std140 rules give each kind when it is
// not an array element. Only vec2 differs from kindLayoutMap.
var std140AlignmentMap = map[shader.PropertyKind]uint64{
	shader.PropertyKindVector2: 8,
}

// KindSize returns the size and alignment of a single value of a non-array kind.
//
// Parameters:
//   - kind: the property kind
//
// Returns:
//   - size: the byte size of one value
//   - align: the required byte alignment
//   - ok: false if the kind cannot be stored in a uniform block
func KindSize(kind shader.PropertyKind) (size, align uint64, ok bool) {
	kl, ok := kindLayoutMap[kind]
	return kl.size, kl.align, ok
}

// Std140Alignment returns the alignment a GLSL std140 block applies to a field of the given
// kind. Emitters compare it with Field.Offset to decide where explicit padding is needed.
//
// Parameters:
//   - kind: the property kind
//
// Returns:
//   - uint64: the std140 base alignment
func Std140Alignment(kind shader.PropertyKind) uint64 {
	if kind.IsArray() {
		return BlockAlignment
	}
	if a, ok := std140AlignmentMap[kind]; ok {
		return a
	}
	return kindLayoutMap[kind].align
}

// Compute lays out an ordered property list. The same list always yields the same layout and
// reordering properties changes their offsets.
//
// Parameters:
//   - props: the properties in declaration order
//
// Returns:
//   - ResolvedLayout: the placement of every property and the padded block size
//   - error: a *shader.UnsupportedPropertyKindError for kinds that cannot be stored in a block
func Compute(props []shader.PropertyDeclaration) (ResolvedLayout, error) {
	out := ResolvedLayout{Fields: make([]Field, 0, len(props))}
	cursor := uint64(0)
	for _, p := range props {
		f, err := placeField(p)
		if err != nil {
			return ResolvedLayout{}, err
		}
		cursor = common.RoundUpAlign(f.Align, cursor)
		f.Offset = cursor
		cursor += f.Size
		out.Fields = append(out.Fields, f)
	}
	out.Size = common.RoundUpAlign(BlockAlignment, cursor)
	return out, nil
}

// placeField resolves size, alignment and stride of one property without an offset.
func placeField(p shader.PropertyDeclaration) (Field, error) {
	unsupported := &shader.UnsupportedPropertyKindError{Property: p.Name, Kind: p.Kind}
	if !p.Kind.Valid() {
		return Field{}, unsupported
	}
	elem, ok := kindLayoutMap[p.Kind.ElementKind()]
	if !ok {
		return Field{}, unsupported
	}
	if !p.Kind.IsArray() {
		return Field{Name: p.Name, Kind: p.Kind, Size: elem.size, Align: elem.align}, nil
	}
	if p.ArrayLen <= 0 {
		return Field{}, fmt.Errorf("property %q: array length must be positive, got %d: %w", p.Name, p.ArrayLen, shader.ErrUnsupportedPropertyKind)
	}
	stride := common.RoundUpAlign(BlockAlignment, elem.size)
	return Field{
		Name:   p.Name,
		Kind:   p.Kind,
		Size:   stride * uint64(p.ArrayLen),
		Align:  BlockAlignment,
		Stride: stride,
		Count:  p.ArrayLen,
	}, nil
}

// ComputeGroups lays out every property group of a descriptor.
//
// Parameters:
//   - desc: the shader descriptor
//
// Returns:
//   - map[string]ResolvedLayout: layouts keyed by resource name
//   - error: the first layout error, wrapped with the group name
func ComputeGroups(desc *shader.ShaderDescriptor) (map[string]ResolvedLayout, error) {
	out := make(map[string]ResolvedLayout)
	for _, r := range desc.Resources {
		g, ok := r.PropertyGroup()
		if !ok {
			continue
		}
		l, err := Compute(g.Properties)
		if err != nil {
			return nil, fmt.Errorf("shader %q group %q: %w", desc.Name, r.Name, err)
		}
		out[r.Name] = l
	}
	return out, nil
}
