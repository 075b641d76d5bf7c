package engine

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/loader"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenAsset = `(
    name: "Broken",
    passes: [
        (
            name: "Forward",
            vertex_shader: r#"void main() { gl_Position = vec4(0.0); }"#,
            fragment_shader: r#"out vec4 c; void main() { c = oxy_missing.value; }"#,
        ),
    ],
)`

const commentedAsset = `(
    name: "Commented",
    resources: [
        (name: "diffuseTexture", kind: Texture(kind: Sampler2D, fallback: White), binding: 0),
    ],
    passes: [
        (
            name: "Forward",
            vertex_shader: r#"void main() {
    // uv comes from the quad, not diffuseTexture;
    gl_Position = vec4(0.0);
}"#,
            fragment_shader: r#"out vec4 c; void main() { c = texture(diffuseTexture, vec2(0.0)); }"#,
        ),
    ],
)`

func standard(t *testing.T) loader.Loader {
	t.Helper()
	l, err := loader.Standard()
	require.NoError(t, err)
	return l
}

func TestCompileUsesCache(t *testing.T) {
	c := NewCompiler(WithWorkers(2))
	gizmo := standard(t).Get("GizmoShader")

	first, err := c.Compile(gizmo, emitter.BackendOpenGL)
	require.NoError(t, err)
	second, err := c.Compile(gizmo, emitter.BackendOpenGL)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, gizmo.Fingerprint(), first.Fingerprint)
	assert.Equal(t, uint64(1), c.Cache().Stats().Emissions)
	assert.Equal(t, 1, c.Profiler().Report().Compiles)

	assert.Equal(t, 1, c.Invalidate("GizmoShader"))
	third, err := c.Compile(gizmo, emitter.BackendOpenGL)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestCompileConcurrentCallersShareEmission(t *testing.T) {
	c := NewCompiler()
	gizmo := standard(t).Get("GizmoShader")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Compile(gizmo, emitter.BackendVulkan)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Cache().Stats().Entries)
}

func TestCompileLibraryJoinsFailures(t *testing.T) {
	c := NewCompiler(WithWorkers(3), WithProfiling(true))
	broken, err := shader.Parse(brokenAsset)
	require.NoError(t, err)
	descs := append(standard(t).Descriptors(), broken)

	programs, err := c.CompileLibrary(descs, emitter.BackendVulkan)
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrEmissionFailed)
	assert.Contains(t, err.Error(), "Broken: ")

	assert.Len(t, programs, 2)
	assert.Contains(t, programs, "GizmoShader")
	assert.Contains(t, programs, "SpriteShader")
	assert.Equal(t, emitter.BackendVulkan, programs["SpriteShader"].Backend)
}

func TestCompileLibraryAllBackends(t *testing.T) {
	c := NewCompiler()
	descs := standard(t).Descriptors()
	for _, b := range emitter.Backends {
		programs, err := c.CompileLibrary(descs, b)
		require.NoError(t, err, b.String())
		assert.Len(t, programs, len(descs))
	}
	assert.Equal(t, len(descs)*len(emitter.Backends), c.Cache().Stats().Entries)
}

func TestPipelines(t *testing.T) {
	c := NewCompiler()
	gizmo := standard(t).Get("GizmoShader")

	pipelines, err := c.Pipelines(gizmo, emitter.BackendVulkan)
	require.NoError(t, err)
	require.Len(t, pipelines, 1)

	p := pipelines[0]
	assert.Equal(t, "GizmoShader/Forward/vulkan", p.PipelineKey())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.True(t, p.BlendEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Contains(t, p.Source(shader.ShaderTypeFragment).Code, "#version 450 core")
}

func TestBindGroupLayoutsUseStageVisibility(t *testing.T) {
	c := NewCompiler()
	gizmo := standard(t).Get("GizmoShader")

	layouts, err := c.BindGroupLayouts(gizmo)
	require.NoError(t, err)
	require.Contains(t, layouts, 0)

	entries := layouts[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[0].Visibility)
	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, entries[1].Visibility)
}

func TestBindGroupLayoutsIgnoreCommentMentions(t *testing.T) {
	desc, err := shader.Parse(commentedAsset)
	require.NoError(t, err)

	layouts, err := NewCompiler().BindGroupLayouts(desc)
	require.NoError(t, err)
	entries := layouts[0].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[0].Visibility)
}

func TestLayouts(t *testing.T) {
	c := NewCompiler()
	sprite := standard(t).Get("SpriteShader")

	layouts, err := c.Layouts(sprite)
	require.NoError(t, err)
	props, ok := layouts["properties"]
	require.True(t, ok)
	f, ok := props.Field("alphaCutoff")
	require.True(t, ok)
	assert.Equal(t, uint64(24), f.Offset)
}

func TestCompilePanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewCompiler().Compile(nil, emitter.BackendOpenGL) })
}
