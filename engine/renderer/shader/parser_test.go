package shader

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gizmoAsset = `(
    name: "GizmoShader",

    resources: [
        (
            name: "properties",
            kind: PropertyGroup([
                (name: "diffuseColor", kind: Color(r: 255, g: 128, b: 0, a: 255)),
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
                    func: BlendFunc(
                        sfactor: SrcAlpha,
                        dfactor: OneMinusSrcAlpha,
                        alpha_sfactor: SrcAlpha,
                        alpha_dfactor: OneMinusSrcAlpha,
                    ),
                    equation: BlendEquation(rgb: Add, alpha: Add)
                )),
                stencil_op: StencilOp(fail: Keep, zfail: Keep, zpass: Replace, write_mask: 0xFF),
            ),
            vertex_shader: r#"
layout(location = 0) in vec3 vertexPosition;
void main() { gl_Position = oxy_instanceData.worldViewProjection * vec4(vertexPosition, 1.0); }
"#,
            fragment_shader: r#"
out vec4 FragColor;
void main() { FragColor = properties.diffuseColor; }
"#,
        )
    ]
)`

func TestParseGizmo(t *testing.T) {
	desc, err := Parse(gizmoAsset)
	require.NoError(t, err)

	assert.Equal(t, "GizmoShader", desc.Name)
	require.Len(t, desc.Resources, 2)
	assert.Equal(t, "properties", desc.Resources[0].Name)
	assert.Equal(t, "oxy_instanceData", desc.Resources[1].Name)
	assert.Equal(t, 1, desc.Resources[1].Binding)

	group, ok := desc.Resources[0].PropertyGroup()
	require.True(t, ok)
	require.Len(t, group.Properties, 1)
	assert.Equal(t, PropertyKindColor, group.Properties[0].Kind)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, group.Properties[0].Value)

	pass, ok := desc.Pass(PassForward)
	require.True(t, ok)
	dp := pass.DrawParameters
	assert.Nil(t, dp.CullFace)
	assert.False(t, dp.DepthWrite)
	assert.Nil(t, dp.DepthTest)
	require.NotNil(t, dp.Blend)
	assert.Equal(t, BlendSrcAlpha, dp.Blend.Func.SFactor)
	assert.Equal(t, BlendOneMinusSrcAlpha, dp.Blend.Func.AlphaDFactor)
	assert.Equal(t, BlendModeAdd, dp.Blend.Equation.Alpha)
	assert.Equal(t, StencilReplace, dp.StencilOp.ZPass)
	assert.Equal(t, uint32(0xFF), dp.StencilOp.WriteMask)
	assert.Contains(t, pass.Source(ShaderTypeVertex), "oxy_instanceData.worldViewProjection")
	assert.Contains(t, pass.Source(ShaderTypeFragment), "properties.diffuseColor")
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := Parse(gizmoAsset)
	require.NoError(t, err)
	b, err := Parse(gizmoAsset)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestOmittedDrawParametersUseDefaults(t *testing.T) {
	desc, err := Parse(`(
        name: "Plain",
        passes: [(name: "GBuffer", vertex_shader: "", fragment_shader: "")],
    )`)
	require.NoError(t, err)

	pass, ok := desc.Pass(PassGBuffer)
	require.True(t, ok)
	assert.Equal(t, DefaultDrawParameters(), pass.DrawParameters)
	require.NotNil(t, pass.DrawParameters.CullFace)
	assert.Equal(t, CullFaceBack, *pass.DrawParameters.CullFace)
	require.NotNil(t, pass.DrawParameters.DepthTest)
	assert.Equal(t, CompareLess, *pass.DrawParameters.DepthTest)
	assert.Nil(t, pass.DrawParameters.Blend)
	assert.Nil(t, pass.DrawParameters.StencilTest)
}

func TestShortBlendFuncCopiesColorFactors(t *testing.T) {
	desc, err := Parse(`(
        name: "Short",
        passes: [(
            name: "Forward",
            draw_parameters: DrawParameters(
                blend: Some(BlendParameters(
                    func: BlendFunc(sfactor: One, dfactor: One),
                    equation: BlendEquation(rgb: Max, alpha: Add),
                )),
            ),
            vertex_shader: "",
            fragment_shader: "",
        )],
    )`)
	require.NoError(t, err)

	blend := desc.Passes[0].DrawParameters.Blend
	require.NotNil(t, blend)
	assert.Equal(t, BlendFunc{SFactor: BlendOne, DFactor: BlendOne, AlphaSFactor: BlendOne, AlphaDFactor: BlendOne}, blend.Func)
	assert.Equal(t, BlendModeMax, blend.Equation.RGB)
}

func TestParsePropertyValues(t *testing.T) {
	desc, err := Parse(`(
        name: "Values",
        resources: [(
            name: "props",
            kind: PropertyGroup([
                (name: "f", kind: Float(0.5)),
                (name: "i", kind: Int(-3)),
                (name: "u", kind: UInt(7)),
                (name: "b", kind: Bool(true)),
                (name: "v3", kind: Vector3((1.0, 2.0, 3.0))),
                (name: "plain", kind: Vector4),
                (name: "weights", kind: FloatArray([1.0, 2.0], 4)),
            ]),
            binding: 0,
        )],
    )`)
	require.NoError(t, err)

	group, ok := desc.Resources[0].PropertyGroup()
	require.True(t, ok)
	props := group.Properties
	require.Len(t, props, 7)
	assert.Equal(t, float32(0.5), props[0].Value)
	assert.Equal(t, int32(-3), props[1].Value)
	assert.Equal(t, uint32(7), props[2].Value)
	assert.Equal(t, true, props[3].Value)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, props[4].Value)
	assert.Equal(t, DefaultValue(PropertyKindVector4), props[5].Value)
	assert.Equal(t, PropertyKindFloatArray, props[6].Kind)
	assert.Equal(t, 4, props[6].ArrayLen)
	assert.Equal(t, []float32{1, 2}, props[6].Value)
}

func TestMalformedAssetReportsPosition(t *testing.T) {
	_, err := Parse("(\n    name: 42,\n)")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedAsset)

	var malformed *MalformedAssetError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
	assert.Equal(t, 11, malformed.Column)
	assert.Equal(t, 12, malformed.Offset)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrMalformedAsset},
		{"unterminated", `(name: "x"`, ErrMalformedAsset},
		{"missing name", `(resources: [])`, ErrMalformedAsset},
		{"unknown field", `(name: "x", colour: 1)`, ErrMalformedAsset},
		{"unknown resource kind", `(name: "x", resources: [(name: "r", kind: Buffer, binding: 0)])`, ErrMalformedAsset},
		{"unknown sampler kind", `(name: "x", resources: [(name: "t", kind: Texture(kind: Sampler4D), binding: 0)])`, ErrMalformedAsset},
		{"duplicate resource", `(name: "x", resources: [
			(name: "t", kind: Texture(kind: Sampler2D), binding: 0),
			(name: "t", kind: Texture(kind: Sampler2D), binding: 1),
		])`, ErrMalformedAsset},
		{"duplicate pass", `(name: "x", passes: [
			(name: "Forward", vertex_shader: "", fragment_shader: ""),
			(name: "Forward", vertex_shader: "", fragment_shader: ""),
		])`, ErrMalformedAsset},
		{"missing fragment", `(name: "x", passes: [(name: "Forward", vertex_shader: "")])`, ErrMalformedAsset},
		{"unknown property kind", `(name: "x", resources: [(name: "g", kind: PropertyGroup([(name: "p", kind: Quaternion)]), binding: 0)])`, ErrUnknownPropertyKind},
		{"same kind binding collision", `(name: "x", resources: [
			(name: "a", kind: Texture(kind: Sampler2D), binding: 3),
			(name: "b", kind: Texture(kind: SamplerCube), binding: 3),
		])`, ErrDuplicateBinding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Parse(tt.text)
			assert.Nil(t, desc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnknownPropertyKindCarriesTag(t *testing.T) {
	_, err := Parse("(name: \"x\", resources: [\n(name: \"g\", kind: PropertyGroup([(name: \"p\", kind: Quaternion)]), binding: 0)])")
	var unknown *UnknownPropertyKindError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "p", unknown.Property)
	assert.Equal(t, "Quaternion", unknown.Tag)
	assert.Equal(t, 2, unknown.Line)
}

func TestCrossKindCollisionNeedsExplicitBindings(t *testing.T) {
	text := `(name: "x", resources: [
		(name: "tex", kind: Texture(kind: Sampler2D), binding: 0),
		(name: "grp", kind: PropertyGroup([]), binding: 0),
	])`

	_, err := Parse(text)
	assert.NoError(t, err)

	_, err = Parse(text, WithExplicitBindings(true))
	var dup *DuplicateBindingError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "tex", dup.First)
	assert.Equal(t, "grp", dup.Second)
	assert.Equal(t, 0, dup.Binding)
}

func TestBuiltInGroupsAreRegenerated(t *testing.T) {
	text := `(name: "x", resources: [
		(name: "oxy_cameraData", kind: PropertyGroup([(name: "bogus", kind: Float)]), binding: 0),
		(name: "oxy_sceneDepth", kind: Texture(kind: Sampler2D), binding: 0),
	])`

	desc, err := Parse(text)
	require.NoError(t, err)
	group, ok := desc.Resources[0].PropertyGroup()
	require.True(t, ok)
	want, ok := BuiltInGroup(BuiltInCameraData)
	require.True(t, ok)
	assert.Equal(t, want, group.Properties)
	assert.True(t, desc.Resources[0].IsBuiltIn())

	tex, ok := desc.Resources[1].Kind.(TextureResource)
	require.True(t, ok)
	assert.Equal(t, SamplerKind2D, tex.Kind)

	raw, err := Parse(text, WithBuiltInGroups(false))
	require.NoError(t, err)
	group, _ = raw.Resources[0].PropertyGroup()
	require.Len(t, group.Properties, 1)
	assert.Equal(t, "bogus", group.Properties[0].Name)
}

func TestInstanceDataDefinition(t *testing.T) {
	props, ok := BuiltInGroup(BuiltInInstanceData)
	require.True(t, ok)
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"worldMatrix", "worldViewProjection", "blendShapesCount", "useSkeletalAnimation", "blendShapesWeights"}, names)
	assert.Equal(t, 32, props[4].ArrayLen)

	_, ok = BuiltInGroup("properties")
	assert.False(t, ok)
}
