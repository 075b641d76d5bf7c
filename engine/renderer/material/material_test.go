package material

import (
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAsset = `(
    name: "Tinted",
    resources: [
        (name: "diffuseTexture", kind: Texture(kind: Sampler2D, fallback: White), binding: 0),
        (
            name: "properties",
            kind: PropertyGroup([
                (name: "diffuseColor", kind: Color(r: 255, g: 0, b: 0, a: 255)),
                (name: "scale", kind: Float(2.0)),
                (name: "offset", kind: Vector3((1.0, 2.0, 3.0))),
            ]),
            binding: 0
        ),
    ],
)`

func descriptor(t *testing.T) *shader.ShaderDescriptor {
	t.Helper()
	desc, err := shader.Parse(testAsset)
	require.NoError(t, err)
	return desc
}

func floatAt(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func TestBufferWritesUseDefaults(t *testing.T) {
	m := NewMaterial(descriptor(t))

	writes, err := m.BufferWrites()
	require.NoError(t, err)
	require.Len(t, writes, 1)

	w := writes[0]
	assert.Equal(t, "properties", w.Resource)
	assert.Equal(t, 0, w.Binding)
	assert.Equal(t, uint64(0), w.Offset)
	require.Len(t, w.Data, 48)

	assert.Equal(t, []float32{1, 0, 0, 1}, []float32{floatAt(w.Data, 0), floatAt(w.Data, 4), floatAt(w.Data, 8), floatAt(w.Data, 12)})
	assert.Equal(t, float32(2), floatAt(w.Data, 16))
	assert.Equal(t, []float32{1, 2, 3}, []float32{floatAt(w.Data, 32), floatAt(w.Data, 36), floatAt(w.Data, 40)})
}

func TestOverrideWinsOverDefault(t *testing.T) {
	m := NewMaterial(descriptor(t), WithProperty("properties", "diffuseColor", color.RGBA{R: 0, G: 255, B: 0, A: 255}))

	v, ok := m.Property("properties", "diffuseColor")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, v)

	writes, err := m.BufferWrites()
	require.NoError(t, err)
	assert.Equal(t, float32(0), floatAt(writes[0].Data, 0))
	assert.Equal(t, float32(1), floatAt(writes[0].Data, 4))

	m.ResetProperty("properties", "diffuseColor")
	writes, err = m.BufferWrites()
	require.NoError(t, err)
	assert.Equal(t, float32(1), floatAt(writes[0].Data, 0))
}

func TestSetPropertyValidation(t *testing.T) {
	m := NewMaterial(descriptor(t))

	assert.Error(t, m.SetProperty("properties", "missing", float32(1)))
	assert.Error(t, m.SetProperty("diffuseTexture", "scale", float32(1)))
	assert.Error(t, m.SetProperty("properties", "scale", mgl32.Vec2{}))
	assert.NoError(t, m.SetProperty("properties", "offset", mgl32.Vec3{4, 5, 6}))

	_, ok := m.Property("properties", "missing")
	assert.False(t, ok)

	assert.Panics(t, func() {
		NewMaterial(descriptor(t), WithProperty("properties", "scale", "not a float"))
	})
}

func TestTextures(t *testing.T) {
	m := NewMaterial(descriptor(t), WithTexture("diffuseTexture", "textures/brick.png"))

	path, ok := m.Texture("diffuseTexture")
	require.True(t, ok)
	assert.Equal(t, "textures/brick.png", path)

	assert.Error(t, m.SetTexture("properties", "x.png"))
	_, ok = NewMaterial(descriptor(t)).Texture("diffuseTexture")
	assert.False(t, ok)
}

func TestNameAndPipelineKey(t *testing.T) {
	m := NewMaterial(descriptor(t), WithPipelineKey("Tinted/Forward"))
	assert.Equal(t, "Tinted", m.Name())
	assert.Equal(t, "Tinted/Forward", m.PipelineKey())

	m = NewMaterial(descriptor(t), WithName("RedBrick"))
	m.SetPipelineKey("k")
	assert.Equal(t, "RedBrick", m.Name())
	assert.Equal(t, "k", m.PipelineKey())
	assert.Equal(t, "Tinted", m.Shader().Name)
}
