package renderer

import (
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine"
	"github.com/Carmen-Shannon/oxy-shader/engine/loader"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gizmo(t *testing.T) *shader.ShaderDescriptor {
	t.Helper()
	l, err := loader.Standard()
	require.NoError(t, err)
	desc := l.Get("GizmoShader")
	require.NotNil(t, desc)
	return desc
}

func TestRegisterShaderCachesPipelines(t *testing.T) {
	r := NewRenderer(emitter.BackendVulkan)
	desc := gizmo(t)

	pipelines, err := r.RegisterShader(desc)
	require.NoError(t, err)
	require.Len(t, pipelines, 1)

	key := engine.PipelineKey("GizmoShader", shader.PassForward, emitter.BackendVulkan)
	assert.Same(t, pipelines[0], r.Pipeline(key))
	assert.Len(t, r.Pipelines(), 1)

	again, err := r.RegisterShader(desc)
	require.NoError(t, err)
	assert.Same(t, pipelines[0], again[0])
	assert.Equal(t, uint64(1), r.Compiler().Cache().Stats().Emissions)

	assert.Equal(t, 1, r.UnregisterShader("GizmoShader"))
	assert.Nil(t, r.Pipeline(key))
	assert.Nil(t, r.Shader("GizmoShader"))
}

func TestRegisterChangedDescriptorReplacesPipelines(t *testing.T) {
	r := NewRenderer(emitter.BackendOpenGL)
	_, err := r.RegisterShader(gizmo(t))
	require.NoError(t, err)

	edited, err := shader.Parse(`(
        name: "GizmoShader",
        passes: [(name: "Outline", vertex_shader: "void main() {}", fragment_shader: "void main() {}")],
    )`)
	require.NoError(t, err)
	_, err = r.RegisterShader(edited)
	require.NoError(t, err)

	assert.Nil(t, r.Pipeline("GizmoShader/Forward/opengl"))
	assert.NotNil(t, r.Pipeline("GizmoShader/Outline/opengl"))
	assert.Same(t, edited, r.Shader("GizmoShader"))
}

func TestFailedRegistrationKeepsPrevious(t *testing.T) {
	r := NewRenderer(emitter.BackendOpenGL)
	_, err := r.RegisterShader(gizmo(t))
	require.NoError(t, err)

	broken, err := shader.Parse(`(
        name: "GizmoShader",
        passes: [(name: "Forward", vertex_shader: "void main() {}", fragment_shader: "void main() { oxy_nothing.x; }")],
    )`)
	require.NoError(t, err)
	_, err = r.RegisterShader(broken)
	assert.ErrorIs(t, err, shader.ErrEmissionFailed)
	assert.NotNil(t, r.Pipeline("GizmoShader/Forward/opengl"))
}

func TestMaterialsStageBufferWrites(t *testing.T) {
	r := NewRenderer(emitter.BackendVulkan)
	_, err := r.RegisterShader(gizmo(t))
	require.NoError(t, err)

	m, err := r.NewMaterial("GizmoShader", shader.PassForward,
		material.WithProperty("properties", "diffuseColor", color.RGBA{R: 255, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, "GizmoShader/Forward/vulkan", m.PipelineKey())

	require.NoError(t, r.WriteBuffers(m))
	writes := r.DrainWrites()
	require.Len(t, writes, 2)
	assert.Equal(t, "properties", writes[0].Resource)
	assert.Len(t, writes[0].Data, 16)
	assert.Equal(t, "oxy_instanceData", writes[1].Resource)
	assert.Empty(t, r.DrainWrites())

	_, err = r.NewMaterial("GizmoShader", "Shadow")
	assert.Error(t, err)
	_, err = r.NewMaterial("Missing", shader.PassForward)
	assert.Error(t, err)
}

func TestBindGroupLayouts(t *testing.T) {
	r := NewRenderer(emitter.BackendVulkan)
	_, err := r.BindGroupLayouts("GizmoShader")
	assert.Error(t, err)

	_, err = r.RegisterShader(gizmo(t))
	require.NoError(t, err)
	layouts, err := r.BindGroupLayouts("GizmoShader")
	require.NoError(t, err)
	assert.Len(t, layouts[0].Entries, 2)
}

func TestSharedCompiler(t *testing.T) {
	c := engine.NewCompiler()
	gl := NewRenderer(emitter.BackendOpenGL, WithCompiler(c))
	vk := NewRenderer(emitter.BackendVulkan, WithCompiler(c))
	desc := gizmo(t)

	_, err := gl.RegisterShader(desc)
	require.NoError(t, err)
	_, err = vk.RegisterShader(desc)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cache().Stats().Entries)
}
