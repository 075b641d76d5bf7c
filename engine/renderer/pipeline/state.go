package pipeline

import (
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var compareFunctionMap = map[shader.CompareFunc]wgpu.CompareFunction{
	shader.CompareNever:          wgpu.CompareFunctionNever,
	shader.CompareLess:           wgpu.CompareFunctionLess,
	shader.CompareEqual:          wgpu.CompareFunctionEqual,
	shader.CompareLessOrEqual:    wgpu.CompareFunctionLessEqual,
	shader.CompareGreater:        wgpu.CompareFunctionGreater,
	shader.CompareNotEqual:       wgpu.CompareFunctionNotEqual,
	shader.CompareGreaterOrEqual: wgpu.CompareFunctionGreaterEqual,
	shader.CompareAlways:         wgpu.CompareFunctionAlways,
}

// blendFactorMap maps blend factors to wgpu. wgpu has a single blend constant, so the
// constant-alpha factors read the same constant as the constant-color ones.
var blendFactorMap = map[shader.BlendFactor]wgpu.BlendFactor{
	shader.BlendZero:                  wgpu.BlendFactorZero,
	shader.BlendOne:                   wgpu.BlendFactorOne,
	shader.BlendSrcColor:              wgpu.BlendFactorSrc,
	shader.BlendOneMinusSrcColor:      wgpu.BlendFactorOneMinusSrc,
	shader.BlendDstColor:              wgpu.BlendFactorDst,
	shader.BlendOneMinusDstColor:      wgpu.BlendFactorOneMinusDst,
	shader.BlendSrcAlpha:              wgpu.BlendFactorSrcAlpha,
	shader.BlendOneMinusSrcAlpha:      wgpu.BlendFactorOneMinusSrcAlpha,
	shader.BlendDstAlpha:              wgpu.BlendFactorDstAlpha,
	shader.BlendOneMinusDstAlpha:      wgpu.BlendFactorOneMinusDstAlpha,
	shader.BlendConstantColor:         wgpu.BlendFactorConstant,
	shader.BlendOneMinusConstantColor: wgpu.BlendFactorOneMinusConstant,
	shader.BlendConstantAlpha:         wgpu.BlendFactorConstant,
	shader.BlendOneMinusConstantAlpha: wgpu.BlendFactorOneMinusConstant,
	shader.BlendSrcAlphaSaturate:      wgpu.BlendFactorSrcAlphaSaturated,
}

var blendOperationMap = map[shader.BlendMode]wgpu.BlendOperation{
	shader.BlendModeAdd:             wgpu.BlendOperationAdd,
	shader.BlendModeSubtract:        wgpu.BlendOperationSubtract,
	shader.BlendModeReverseSubtract: wgpu.BlendOperationReverseSubtract,
	shader.BlendModeMin:             wgpu.BlendOperationMin,
	shader.BlendModeMax:             wgpu.BlendOperationMax,
}

var stencilOperationMap = map[shader.StencilAction]wgpu.StencilOperation{
	shader.StencilKeep:     wgpu.StencilOperationKeep,
	shader.StencilZero:     wgpu.StencilOperationZero,
	shader.StencilReplace:  wgpu.StencilOperationReplace,
	shader.StencilIncr:     wgpu.StencilOperationIncrementClamp,
	shader.StencilIncrWrap: wgpu.StencilOperationIncrementWrap,
	shader.StencilDecr:     wgpu.StencilOperationDecrementClamp,
	shader.StencilDecrWrap: wgpu.StencilOperationDecrementWrap,
	shader.StencilInvert:   wgpu.StencilOperationInvert,
}

// colorWriteMask packs per-channel write flags into a wgpu mask.
func colorWriteMask(m shader.ColorMask) wgpu.ColorWriteMask {
	var mask wgpu.ColorWriteMask
	if m.Red {
		mask |= wgpu.ColorWriteMaskRed
	}
	if m.Green {
		mask |= wgpu.ColorWriteMaskGreen
	}
	if m.Blue {
		mask |= wgpu.ColorWriteMaskBlue
	}
	if m.Alpha {
		mask |= wgpu.ColorWriteMaskAlpha
	}
	return mask
}

// blendState converts blend parameters into separate color and alpha components.
func blendState(bp shader.BlendParameters) *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: blendFactorMap[bp.Func.SFactor],
			DstFactor: blendFactorMap[bp.Func.DFactor],
			Operation: blendOperationMap[bp.Equation.RGB],
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: blendFactorMap[bp.Func.AlphaSFactor],
			DstFactor: blendFactorMap[bp.Func.AlphaDFactor],
			Operation: blendOperationMap[bp.Equation.Alpha],
		},
	}
}
