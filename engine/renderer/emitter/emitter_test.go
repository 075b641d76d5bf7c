package emitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gizmoAsset = `(
    name: "GizmoShader",
    resources: [
        (
            name: "properties",
            kind: PropertyGroup([
                (name: "diffuseColor", kind: Color(r: 255, g: 255, b: 255, a: 255)),
            ]),
            binding: 0
        ),
        (
            name: "oxy_instanceData",
            kind: PropertyGroup([]),
            binding: 1
        ),
    ],
    passes: [
        (
            name: "Forward",
            draw_parameters: DrawParameters(
                cull_face: None,
                depth_write: false,
                depth_test: false,
                blend: Some(BlendParameters(
                    func: BlendFunc(sfactor: SrcAlpha, dfactor: OneMinusSrcAlpha),
                    equation: BlendEquation(rgb: Add, alpha: Add)
                )),
            ),
            vertex_shader: r#"
layout(location = 0) in vec3 vertexPosition;

void main()
{
    gl_Position = oxy_instanceData.worldViewProjection * vec4(vertexPosition, 1.0);
}
"#,
            fragment_shader: r#"
out vec4 FragColor;

void main()
{
    FragColor = properties.diffuseColor;
}
"#,
        )
    ]
)`

func parse(t *testing.T, text string) *shader.ShaderDescriptor {
	t.Helper()
	desc, err := shader.Parse(text)
	require.NoError(t, err)
	return desc
}

// singlePass builds a descriptor with one Forward pass around the given bodies.
func singlePass(resources []shader.ResourceDeclaration, vertex, fragment string) *shader.ShaderDescriptor {
	return &shader.ShaderDescriptor{
		Name:      "Test",
		Resources: resources,
		Passes: []shader.RenderPass{{
			Name:           shader.PassForward,
			DrawParameters: shader.DefaultDrawParameters(),
			VertexShader:   vertex,
			FragmentShader: fragment,
		}},
	}
}

func propertiesGroup(binding int, props ...shader.PropertyDeclaration) shader.ResourceDeclaration {
	return shader.ResourceDeclaration{
		Name:    "properties",
		Binding: binding,
		Kind:    shader.PropertyGroupResource{Properties: props},
	}
}

func declarations(code string) string {
	start := strings.Index(code, "\n\n")
	end := strings.Index(code, "// shared library")
	if start < 0 || end < start {
		return ""
	}
	return code[start:end]
}

func TestGizmoOpenGL(t *testing.T) {
	prog, err := NewEmitter().Emit(parse(t, gizmoAsset), BackendOpenGL)
	require.NoError(t, err)

	pass, ok := prog.Pass(shader.PassForward)
	require.True(t, ok)
	frag := pass.Fragment.Code

	assert.True(t, strings.HasPrefix(frag, "#version 330 core\n#define OXY_BACKEND_OPENGL\n"))
	assert.Equal(t, 1, strings.Count(frag, "uniform "))
	assert.Contains(t, frag, "uniform Uproperties {\n    vec4 diffuseColor;\n} properties;")
	assert.NotContains(t, frag, "binding")
	assert.NotContains(t, frag, "oxy_instanceData")
	assert.Contains(t, frag, "FragColor = properties.diffuseColor;")

	vert := pass.Vertex.Code
	assert.Contains(t, vert, "uniform Uoxy_instanceData {")
	assert.Contains(t, vert, "    mat4 worldViewProjection;\n")
	assert.NotContains(t, vert, "Uproperties")
}

func TestGizmoVulkan(t *testing.T) {
	prog, err := NewEmitter().Emit(parse(t, gizmoAsset), BackendVulkan)
	require.NoError(t, err)

	pass, ok := prog.Pass(shader.PassForward)
	require.True(t, ok)
	frag := pass.Fragment.Code

	assert.True(t, strings.HasPrefix(frag, "#version 450 core\n#define OXY_BACKEND_VULKAN\n"))
	assert.Contains(t, frag, "layout(std140, set = 0, binding = 0) uniform Uproperties {\n    vec4 diffuseColor;\n} properties;")
	assert.Contains(t, pass.Vertex.Code, "layout(std140, set = 0, binding = 1) uniform Uoxy_instanceData {")
}

func TestOpenGLESHeader(t *testing.T) {
	prog, err := NewEmitter().Emit(parse(t, gizmoAsset), BackendOpenGLES)
	require.NoError(t, err)

	frag := prog.Passes[0].Fragment.Code
	assert.True(t, strings.HasPrefix(frag, "#version 300 es\nprecision highp float;\n"))
	for _, line := range glesPrecision {
		assert.Contains(t, frag, line)
	}
	assert.Contains(t, frag, "#define OXY_BACKEND_OPENGLES\n")
}

func TestEmitIsIdempotent(t *testing.T) {
	desc := parse(t, gizmoAsset)
	e := NewEmitter()
	for _, backend := range Backends {
		first, err := e.Emit(desc, backend)
		require.NoError(t, err)
		second, err := e.Emit(desc, backend)
		require.NoError(t, err)
		assert.Equal(t, first, second, backend.String())
	}
}

func TestSharedLibraryPrecedesBody(t *testing.T) {
	e := NewEmitter(WithSharedLibrary("float S_Double(float x) { return x * 2.0; }\n"))
	desc := singlePass(nil, "void main() { gl_Position = vec4(S_Double(1.0)); }", "void main() {}")

	prog, err := e.Emit(desc, BackendOpenGL)
	require.NoError(t, err)

	vert := prog.Passes[0].Vertex.Code
	lib := strings.Index(vert, "float S_Double")
	body := strings.Index(vert, "void main()")
	require.GreaterOrEqual(t, lib, 0)
	assert.Greater(t, body, lib)
	assert.Equal(t, "float S_Double(float x) { return x * 2.0; }\n", e.SharedLibrary())
}

func TestDefaultSharedLibraryIsInlined(t *testing.T) {
	prog, err := NewEmitter().Emit(parse(t, gizmoAsset), BackendOpenGL)
	require.NoError(t, err)
	assert.Contains(t, prog.Passes[0].Fragment.Code, "vec3 S_SRGBToLinear(vec3 color)")
	assert.NotContains(t, DefaultSharedLibrary, "uniform")
}

func TestBodyIsPreserved(t *testing.T) {
	fragment := "out vec4 c;\n// gl_FragCoord.y differs between backends\nvoid main() {\n#ifdef OXY_BACKEND_VULKAN\n    c = vec4(1.0 - gl_FragCoord.y);\n#else\n    c = vec4(gl_FragCoord.y);\n#endif\n}\n"
	desc := singlePass(nil, "void main() {}", fragment)

	for _, backend := range Backends {
		prog, err := NewEmitter().Emit(desc, backend)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(prog.Passes[0].Fragment.Code, fragment), backend.String())
	}
}

func TestMissingResourceFailsEmission(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"undeclared engine resource", "void main() { gl_FragColor = oxy_lightData.ambientLightColor; }"},
		{"undeclared annotation", "//@oxy:resource missingTexture\nvoid main() {}"},
		{"undeclared legacy uniform", "uniform vec4 missingColor;\nvoid main() {}"},
		{"unknown group member", "void main() { gl_FragColor = properties.specularColor; }"},
		{"undeclared sampled texture", "in vec2 uv;\nout vec4 c;\nvoid main() { c = texture(diffuseTexture, uv) * properties.diffuseColor; }"},
		{"undeclared sampled texture with lod", "out vec4 c;\nvoid main() { c = textureLod(shadowMap, vec2(0.0), 0.0); }"},
		{"undeclared member root", "out vec4 c;\nvoid main() { c = material.diffuseColor; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := singlePass([]shader.ResourceDeclaration{
				propertiesGroup(0, shader.NewProperty("diffuseColor", shader.PropertyKindColor)),
			}, "void main() {}", tt.fragment)

			for _, backend := range Backends {
				prog, err := NewEmitter().Emit(desc, backend)
				require.Error(t, err, backend.String())
				assert.Nil(t, prog)
				assert.True(t, errors.Is(err, shader.ErrEmissionFailed))

				var failed *shader.EmissionFailedError
				require.ErrorAs(t, err, &failed)
				assert.Equal(t, "Test", failed.Shader)
				assert.Equal(t, shader.PassForward, failed.Pass)
				assert.Equal(t, shader.ShaderTypeFragment, failed.Stage)
			}
		})
	}
}

func TestDeclaredNamesResolve(t *testing.T) {
	fragment := `in VertexData { vec2 uv; } inData;
out vec4 c;

#define TINT vec4(1.0)

vec4 shade(sampler2D tex, vec2 coord)
{
    return texture(tex, coord);
}

void main()
{
    vec2 a = inData.uv, b = a.yx;
    vec4 base = shade(diffuseTexture, b) * TINT;
    c = vec4(base.rgb, S_PI) + vec4(gl_FragCoord.xy, 0.0, 0.0);
}
`
	desc := singlePass([]shader.ResourceDeclaration{
		{Name: "diffuseTexture", Binding: 0, Kind: shader.TextureResource{Kind: shader.SamplerKind2D}},
	}, "void main() {}", fragment)

	prog, err := NewEmitter().Emit(desc, BackendVulkan)
	require.NoError(t, err)
	frag := prog.Passes[0].Fragment
	assert.Contains(t, frag.Code, "layout(set = 0, binding = 0) uniform sampler2D diffuseTexture;")
	assert.Equal(t, []string{"diffuseTexture"}, frag.Resources)
}

func TestBodyGlobalShadowsResource(t *testing.T) {
	desc := singlePass([]shader.ResourceDeclaration{
		{Name: "normalMap", Binding: 0, Kind: shader.TextureResource{Kind: shader.SamplerKind2D}},
	},
		"out vec3 normalMap;\nvoid main() { normalMap = vec3(0.0); gl_Position = vec4(0.0); }",
		"out vec4 c;\nvoid main() { c = texture(normalMap, vec2(0.0)); }",
	)

	prog, err := NewEmitter().Emit(desc, BackendOpenGL)
	require.NoError(t, err)
	pass := prog.Passes[0]

	assert.NotContains(t, pass.Vertex.Code, "uniform sampler2D normalMap;")
	assert.Empty(t, pass.Vertex.Resources)
	assert.Contains(t, pass.Fragment.Code, "uniform sampler2D normalMap;")
	assert.Equal(t, []string{"normalMap"}, pass.Fragment.Resources)
}

func TestExplicitBindingCollisionFailsEmission(t *testing.T) {
	desc := singlePass([]shader.ResourceDeclaration{
		propertiesGroup(0, shader.NewProperty("diffuseColor", shader.PropertyKindColor)),
		{Name: "diffuseTexture", Binding: 0, Kind: shader.TextureResource{Kind: shader.SamplerKind2D}},
	}, "void main() {}", "void main() {}")

	_, err := NewEmitter().Emit(desc, BackendVulkan)
	assert.True(t, errors.Is(err, shader.ErrDuplicateBinding))

	_, err = NewEmitter().Emit(desc, BackendOpenGL)
	assert.NoError(t, err)
}

func TestUnsupportedPropertyFailsEmission(t *testing.T) {
	desc := singlePass([]shader.ResourceDeclaration{
		propertiesGroup(0, shader.NewProperty("tex", shader.PropertyKindSampler)),
	}, "void main() {}", "void main() {}")

	_, err := NewEmitter().Emit(desc, BackendOpenGL)
	assert.True(t, errors.Is(err, shader.ErrUnsupportedPropertyKind))
}

func TestAnnotationsAndLegacyUniforms(t *testing.T) {
	fragment := "//@oxy:resource lookup\nuniform vec4 diffuseColor;\nuniform sampler2D diffuseTexture;\n// uniform vec4 commentedOut;\nvoid main() { gl_FragColor = diffuseColor * texture(diffuseTexture, vec2(0.0)); }\n"
	desc := singlePass([]shader.ResourceDeclaration{
		propertiesGroup(0, shader.NewProperty("diffuseColor", shader.PropertyKindColor)),
		{Name: "diffuseTexture", Binding: 1, Kind: shader.TextureResource{Kind: shader.SamplerKind2D}},
		{Name: "lookup", Binding: 2, Kind: shader.TextureResource{Kind: shader.SamplerKindU3D}},
	}, "void main() {}", fragment)

	prog, err := NewEmitter().Emit(desc, BackendOpenGL)
	require.NoError(t, err)
	frag := prog.Passes[0].Fragment.Code

	assert.NotContains(t, frag, "@oxy:")
	assert.NotContains(t, frag, "uniform vec4 diffuseColor;")
	assert.Contains(t, frag, "#define diffuseColor properties.diffuseColor\n")
	assert.Contains(t, frag, "// uniform vec4 commentedOut;")
	assert.Equal(t, 1, strings.Count(frag, "uniform sampler2D diffuseTexture;"))
	assert.Contains(t, frag, "uniform usampler3D lookup;")
	assert.Contains(t, frag, "uniform Uproperties {")
}

func TestPerStagePruning(t *testing.T) {
	desc := singlePass([]shader.ResourceDeclaration{
		{Name: "vertexOnly", Binding: 0, Kind: shader.TextureResource{Kind: shader.SamplerKind2D}},
		{Name: "fragmentOnly", Binding: 1, Kind: shader.TextureResource{Kind: shader.SamplerKindCube}},
	},
		"void main() { gl_Position = texture(vertexOnly, vec2(0.0)); }",
		"void main() { gl_FragColor = texture(fragmentOnly, vec3(0.0)); }",
	)

	prog, err := NewEmitter().Emit(desc, BackendVulkan)
	require.NoError(t, err)
	pass := prog.Passes[0]

	assert.Contains(t, pass.Vertex.Code, "layout(set = 0, binding = 0) uniform sampler2D vertexOnly;")
	assert.NotContains(t, pass.Vertex.Code, "fragmentOnly;")
	assert.Contains(t, pass.Fragment.Code, "layout(set = 0, binding = 1) uniform samplerCube fragmentOnly;")
	assert.NotContains(t, pass.Fragment.Code, "vertexOnly;")
	assert.Equal(t, []string{"vertexOnly"}, pass.Vertex.Resources)
	assert.Equal(t, []string{"fragmentOnly"}, pass.Fragment.Resources)
}

func TestVector2Padding(t *testing.T) {
	desc := singlePass([]shader.ResourceDeclaration{
		propertiesGroup(0,
			shader.NewProperty("scale", shader.PropertyKindFloat),
			shader.NewProperty("offset", shader.PropertyKindVector2),
			shader.NewArrayProperty("weights", shader.PropertyKindFloatArray, 4),
		),
	}, "void main() {}", "void main() { gl_FragColor = vec4(properties.scale); }")

	prog, err := NewEmitter().Emit(desc, BackendOpenGL)
	require.NoError(t, err)

	want := "uniform Uproperties {\n" +
		"    float scale;\n" +
		"    float _pad0;\n" +
		"    float _pad1;\n" +
		"    vec2 offset;\n" +
		"    float weights[4];\n" +
		"} properties;"
	assert.Contains(t, declarations(prog.Passes[0].Fragment.Code), want)
}

func TestEmitPassUsesGivenTable(t *testing.T) {
	desc := parse(t, gizmoAsset)
	layouts, err := layout.ComputeGroups(desc)
	require.NoError(t, err)
	table, err := binding.NewBindingTable(desc, binding.ExplicitSetBinding)
	require.NoError(t, err)

	ps, err := NewEmitter().EmitPass(desc.Passes[0], layouts, table, BackendVulkan)
	require.NoError(t, err)
	assert.Equal(t, "GizmoShader/Forward/fragment/vulkan", ps.Fragment.Label())
	assert.Equal(t, ps.Fragment, ps.Stage(shader.ShaderTypeFragment))

	md := ps.Vertex.ModuleDescriptor()
	assert.Equal(t, "GizmoShader/Forward/vertex/vulkan", md.Label)
	require.NotNil(t, md.GLSLDescriptor)
	assert.Equal(t, ps.Vertex.Code, md.GLSLDescriptor.Code)
}

func TestParseBackend(t *testing.T) {
	for _, b := range Backends {
		got, err := ParseBackend(strings.ToUpper(b.String()))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	_, err := ParseBackend("metal")
	assert.Error(t, err)
	assert.Equal(t, binding.ExplicitSetBinding, BackendVulkan.BindingMode())
	assert.Equal(t, binding.ImplicitBinding, BackendOpenGLES.BindingMode())
}
