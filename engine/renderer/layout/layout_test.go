package layout

import (
	"encoding/binary"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsets(l ResolvedLayout) []uint64 {
	out := make([]uint64, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Offset
	}
	return out
}

func TestComputeMixedKinds(t *testing.T) {
	l, err := Compute([]shader.PropertyDeclaration{
		shader.NewProperty("a", shader.PropertyKindFloat),
		shader.NewProperty("b", shader.PropertyKindVector3),
		shader.NewProperty("c", shader.PropertyKindMatrix4),
		shader.NewProperty("d", shader.PropertyKindBool),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 16, 32, 96}, offsets(l))
	assert.Equal(t, uint64(112), l.Size)
}

func TestComputeIsDeterministic(t *testing.T) {
	props := []shader.PropertyDeclaration{
		shader.NewProperty("x", shader.PropertyKindVector2),
		shader.NewArrayProperty("y", shader.PropertyKindFloatArray, 3),
		shader.NewProperty("z", shader.PropertyKindColor),
	}
	first, err := Compute(props)
	require.NoError(t, err)
	second, err := Compute(props)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeOrderSensitivity(t *testing.T) {
	a := shader.NewProperty("a", shader.PropertyKindFloat)
	b := shader.NewProperty("b", shader.PropertyKindVector4)

	ab, err := Compute([]shader.PropertyDeclaration{a, b})
	require.NoError(t, err)
	ba, err := Compute([]shader.PropertyDeclaration{b, a})
	require.NoError(t, err)

	fa, _ := ab.Field("a")
	fb, _ := ab.Field("b")
	assert.Equal(t, uint64(0), fa.Offset)
	assert.Equal(t, uint64(16), fb.Offset)
	assert.Equal(t, uint64(32), ab.Size)

	fa, _ = ba.Field("a")
	fb, _ = ba.Field("b")
	assert.Equal(t, uint64(16), fa.Offset)
	assert.Equal(t, uint64(0), fb.Offset)
	assert.Equal(t, uint64(32), ba.Size)
}

func TestComputeKinds(t *testing.T) {
	tests := []struct {
		name   string
		prop   shader.PropertyDeclaration
		size   uint64
		align  uint64
		stride uint64
	}{
		{"float", shader.NewProperty("p", shader.PropertyKindFloat), 4, 4, 0},
		{"int", shader.NewProperty("p", shader.PropertyKindInt), 4, 4, 0},
		{"uint", shader.NewProperty("p", shader.PropertyKindUInt), 4, 4, 0},
		{"bool", shader.NewProperty("p", shader.PropertyKindBool), 4, 4, 0},
		{"vec2", shader.NewProperty("p", shader.PropertyKindVector2), 8, 16, 0},
		{"vec3", shader.NewProperty("p", shader.PropertyKindVector3), 12, 16, 0},
		{"vec4", shader.NewProperty("p", shader.PropertyKindVector4), 16, 16, 0},
		{"color", shader.NewProperty("p", shader.PropertyKindColor), 16, 16, 0},
		{"mat2", shader.NewProperty("p", shader.PropertyKindMatrix2), 32, 16, 0},
		{"mat3", shader.NewProperty("p", shader.PropertyKindMatrix3), 48, 16, 0},
		{"mat4", shader.NewProperty("p", shader.PropertyKindMatrix4), 64, 16, 0},
		{"float array", shader.NewArrayProperty("p", shader.PropertyKindFloatArray, 4), 64, 16, 16},
		{"vec3 array", shader.NewArrayProperty("p", shader.PropertyKindVector3Array, 16), 256, 16, 16},
		{"mat3 array", shader.NewArrayProperty("p", shader.PropertyKindMatrix3Array, 2), 96, 16, 48},
		{"mat4 array", shader.NewArrayProperty("p", shader.PropertyKindMatrix4Array, 256), 16384, 16, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute([]shader.PropertyDeclaration{tt.prop})
			require.NoError(t, err)
			require.Len(t, l.Fields, 1)
			f := l.Fields[0]
			assert.Equal(t, tt.size, f.Size)
			assert.Equal(t, tt.align, f.Align)
			assert.Equal(t, tt.stride, f.Stride)
			assert.Zero(t, l.Size%BlockAlignment)
		})
	}
}

func TestComputeRejectsUnsupportedKinds(t *testing.T) {
	tests := []struct {
		name string
		prop shader.PropertyDeclaration
	}{
		{"sampler", shader.NewProperty("tex", shader.PropertyKindSampler)},
		{"unknown kind", shader.PropertyDeclaration{Name: "future", Kind: shader.PropertyKind(1000)}},
		{"empty array", shader.NewArrayProperty("none", shader.PropertyKindFloatArray, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute([]shader.PropertyDeclaration{tt.prop})
			require.Error(t, err)
			assert.True(t, errors.Is(err, shader.ErrUnsupportedPropertyKind))
		})
	}

	_, err := Compute([]shader.PropertyDeclaration{shader.NewProperty("tex", shader.PropertyKindSampler)})
	var typed *shader.UnsupportedPropertyKindError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "tex", typed.Property)
}

func TestComputeEmptyGroup(t *testing.T) {
	l, err := Compute(nil)
	require.NoError(t, err)
	assert.Empty(t, l.Fields)
	assert.Zero(t, l.Size)
}

func TestStd140Alignment(t *testing.T) {
	assert.Equal(t, uint64(8), Std140Alignment(shader.PropertyKindVector2))
	assert.Equal(t, uint64(16), Std140Alignment(shader.PropertyKindVector3))
	assert.Equal(t, uint64(4), Std140Alignment(shader.PropertyKindFloat))
	assert.Equal(t, uint64(16), Std140Alignment(shader.PropertyKindFloatArray))
}

func readFloat(buf []byte, offset uint64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func TestMarshal(t *testing.T) {
	l, err := Compute([]shader.PropertyDeclaration{
		shader.NewProperty("scale", shader.PropertyKindFloat),
		shader.NewProperty("tint", shader.PropertyKindColor),
		shader.NewProperty("enabled", shader.PropertyKindBool),
		shader.NewProperty("basis", shader.PropertyKindMatrix3),
		shader.NewArrayProperty("weights", shader.PropertyKindFloatArray, 3),
	})
	require.NoError(t, err)

	buf, err := l.Marshal(map[string]any{
		"scale":   float32(2.5),
		"tint":    color.RGBA{R: 255, G: 0, B: 0, A: 255},
		"enabled": true,
		"basis":   mgl32.Ident3(),
		"weights": []float32{0.25, 0.5},
	})
	require.NoError(t, err)
	require.Len(t, buf, int(l.Size))

	assert.Equal(t, float32(2.5), readFloat(buf, 0))

	tint, _ := l.Field("tint")
	assert.Equal(t, float32(1), readFloat(buf, tint.Offset))
	assert.Equal(t, float32(0), readFloat(buf, tint.Offset+4))
	assert.Equal(t, float32(0), readFloat(buf, tint.Offset+8))
	assert.Equal(t, float32(1), readFloat(buf, tint.Offset+12))

	enabled, _ := l.Field("enabled")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[enabled.Offset:]))

	basis, _ := l.Field("basis")
	assert.Equal(t, float32(1), readFloat(buf, basis.Offset))
	assert.Equal(t, float32(1), readFloat(buf, basis.Offset+16+4))
	assert.Equal(t, float32(1), readFloat(buf, basis.Offset+32+8))
	assert.Equal(t, float32(0), readFloat(buf, basis.Offset+12))

	weights, _ := l.Field("weights")
	assert.Equal(t, float32(0.25), readFloat(buf, weights.Offset))
	assert.Equal(t, float32(0.5), readFloat(buf, weights.Offset+16))
	assert.Equal(t, float32(0), readFloat(buf, weights.Offset+32))
}

func TestMarshalRejectsMismatchedValues(t *testing.T) {
	l, err := Compute([]shader.PropertyDeclaration{
		shader.NewProperty("scale", shader.PropertyKindFloat),
		shader.NewArrayProperty("weights", shader.PropertyKindFloatArray, 1),
	})
	require.NoError(t, err)

	_, err = l.Marshal(map[string]any{"scale": mgl32.Vec4{}})
	assert.Error(t, err)

	_, err = l.Marshal(map[string]any{"weights": []float32{1, 2}})
	assert.Error(t, err)
}
