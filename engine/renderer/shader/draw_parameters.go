package shader

// CullFace selects which polygon faces are discarded before rasterization.
type CullFace int

const (
	CullFaceBack CullFace = iota
	CullFaceFront
	CullFaceFrontAndBack
)

// CompareFunc is the comparison used by depth and stencil tests.
type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessOrEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterOrEqual
	CompareAlways
)

// BlendFactor is a source or destination weight of the blend equation.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
	BlendSrcAlphaSaturate
)

// BlendMode is the operator combining the weighted source and destination.
type BlendMode int

const (
	BlendModeAdd BlendMode = iota
	BlendModeSubtract
	BlendModeReverseSubtract
	BlendModeMin
	BlendModeMax
)

// StencilAction is applied to the stencil buffer on test outcomes.
type StencilAction int

const (
	StencilKeep StencilAction = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilIncrWrap
	StencilDecr
	StencilDecrWrap
	StencilInvert
)

// ColorMask enables writes per color channel.
type ColorMask struct {
	Red, Green, Blue, Alpha bool
}

// StencilFunc configures the stencil test.
type StencilFunc struct {
	Func     CompareFunc
	RefValue uint32
	Mask     uint32
}

// StencilOp configures the stencil buffer updates for the fail, depth-fail and pass outcomes.
type StencilOp struct {
	Fail      StencilAction
	ZFail     StencilAction
	ZPass     StencilAction
	WriteMask uint32
}

// BlendFunc holds separate color and alpha blend factors.
type BlendFunc struct {
	SFactor      BlendFactor
	DFactor      BlendFactor
	AlphaSFactor BlendFactor
	AlphaDFactor BlendFactor
}

// BlendEquation holds separate color and alpha blend operators.
type BlendEquation struct {
	RGB   BlendMode
	Alpha BlendMode
}

// BlendParameters enables blending with the given function and equation.
type BlendParameters struct {
	Func     BlendFunc
	Equation BlendEquation
}

// ScissorBox restricts rasterization to a window-space rectangle.
type ScissorBox struct {
	X, Y, Width, Height int32
}

// DrawParameters is the fixed-function pipeline state of a render pass. Optional states are
// pointers; nil disables the state. Every field has an explicit default and passes never
// inherit from one another.
type DrawParameters struct {
	CullFace    *CullFace
	ColorWrite  ColorMask
	DepthWrite  bool
	StencilTest *StencilFunc
	DepthTest   *CompareFunc
	Blend       *BlendParameters
	StencilOp   StencilOp
	ScissorBox  *ScissorBox
}

// DefaultDrawParameters returns the draw state used for any field an asset omits:
// back-face culling, all channels written, depth write on, depth test Less, no stencil
// test, no blending, keep-everything stencil ops and no scissor.
//
// Returns:
//   - DrawParameters: a fresh default value
func DefaultDrawParameters() DrawParameters {
	return DrawParameters{
		CullFace:   Ptr(CullFaceBack),
		ColorWrite: ColorMask{Red: true, Green: true, Blue: true, Alpha: true},
		DepthWrite: true,
		DepthTest:  Ptr(CompareLess),
		StencilOp:  DefaultStencilOp(),
	}
}

// DefaultStencilFunc returns an always-passing stencil test with reference 0 and a full mask.
func DefaultStencilFunc() StencilFunc {
	return StencilFunc{Func: CompareAlways, Mask: 0xFFFFFFFF}
}

// DefaultStencilOp returns stencil ops that keep the buffer unchanged with a full write mask.
func DefaultStencilOp() StencilOp {
	return StencilOp{WriteMask: 0xFFFFFFFF}
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

var cullFaceNames = []string{"Back", "Front", "FrontAndBack"}

var compareFuncNames = []string{"Never", "Less", "Equal", "LessOrEqual", "Greater", "NotEqual", "GreaterOrEqual", "Always"}

var blendFactorNames = []string{
	"Zero", "One", "SrcColor", "OneMinusSrcColor", "DstColor", "OneMinusDstColor",
	"SrcAlpha", "OneMinusSrcAlpha", "DstAlpha", "OneMinusDstAlpha", "ConstantColor",
	"OneMinusConstantColor", "ConstantAlpha", "OneMinusConstantAlpha", "SrcAlphaSaturate",
}

var blendModeNames = []string{"Add", "Subtract", "ReverseSubtract", "Min", "Max"}

var stencilActionNames = []string{"Keep", "Zero", "Replace", "Incr", "IncrWrap", "Decr", "DecrWrap", "Invert"}

func (c CullFace) String() string      { return enumName(cullFaceNames, int(c)) }
func (c CompareFunc) String() string   { return enumName(compareFuncNames, int(c)) }
func (f BlendFactor) String() string   { return enumName(blendFactorNames, int(f)) }
func (m BlendMode) String() string     { return enumName(blendModeNames, int(m)) }
func (a StencilAction) String() string { return enumName(stencilActionNames, int(a)) }

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "?"
	}
	return names[i]
}

func enumIndex(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
