package pipeline

import (
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/emitter"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the emitted pass sources and the fixed-function state derived from the pass's draw parameters.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// source holds the emitted vertex and fragment stages the pipeline is created from
	source emitter.PassSource

	// renderPipeline is set once a device has created the pipeline
	renderPipeline *wgpu.RenderPipeline

	// The following properties are derived from shader.DrawParameters and can be overridden with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthFormat         wgpu.TextureFormat
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
	stencilFace         wgpu.StencilFaceState
	stencilReadMask     uint32
	stencilWriteMask    uint32
	stencilReference    uint32
	scissorBox          *shader.ScissorBox
}

// Pipeline defines the interface for a render pipeline built from one emitted pass. It holds
// the pass's stage sources and all fixed-function state required for pipeline creation.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Source returns the emitted source of the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - emitter.Source: the stage source, or the zero value for an unknown stage
	Source(shaderType shader.ShaderType) emitter.Source

	// ShaderModules returns labelled shader module descriptors for both stages, vertex first.
	//
	// Returns:
	//   - []*wgpu.ShaderModuleDescriptor: one descriptor per stage
	ShaderModules() []*wgpu.ShaderModuleDescriptor

	// RenderPipeline returns the device pipeline, nil until SetRenderPipeline is called.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline. It is always
	// false when depth testing is disabled.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline (e.g., wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline (e.g., wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// DepthStencilState returns the depth and stencil state for pipeline creation.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth-stencil state using the configured depth format
	DepthStencilState() *wgpu.DepthStencilState

	// StencilReference returns the reference value to set on the render pass encoder.
	//
	// Returns:
	//   - uint32: the stencil reference value
	StencilReference() uint32

	// ScissorBox returns the scissor rectangle to set on the render pass encoder.
	//
	// Returns:
	//   - *shader.ScissorBox: the scissor box, or nil if scissoring is disabled
	ScissorBox() *shader.ScissorBox

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for one emitted pass, deriving its fixed-function state from
// the pass's draw parameters. Builder options are applied afterwards and take precedence.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - source: the emitted stages of the pass
//   - params: the pass's draw parameters
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the derived configuration
func NewPipeline(pipelineKey string, source emitter.PassSource, params shader.DrawParameters, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		source:      source,
		depthFormat: wgpu.TextureFormatDepth24PlusStencil8,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
	}
	p.applyDrawParameters(params)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// applyDrawParameters translates backend-neutral draw parameters into wgpu state.
func (p *pipeline) applyDrawParameters(dp shader.DrawParameters) {
	p.cullMode = wgpu.CullModeNone
	p.writeMask = colorWriteMask(dp.ColorWrite)
	p.depthWriteEnabled = dp.DepthWrite
	if dp.CullFace != nil {
		switch *dp.CullFace {
		case shader.CullFaceBack:
			p.cullMode = wgpu.CullModeBack
		case shader.CullFaceFront:
			p.cullMode = wgpu.CullModeFront
		case shader.CullFaceFrontAndBack:
			// No primitive survives, so the pass may not touch any attachment.
			p.writeMask = wgpu.ColorWriteMask(0)
			p.depthWriteEnabled = false
		}
	}

	p.depthTestEnabled = dp.DepthTest != nil
	p.depthCompare = wgpu.CompareFunctionAlways
	if dp.DepthTest != nil {
		p.depthCompare = compareFunctionMap[*dp.DepthTest]
	} else {
		// A disabled depth test also disables depth writes.
		p.depthWriteEnabled = false
	}

	p.blendEnabled = dp.Blend != nil
	if dp.Blend != nil {
		p.blendState = blendState(*dp.Blend)
	}

	p.stencilFace = wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	p.stencilReadMask = 0xFFFFFFFF
	p.stencilWriteMask = 0
	if dp.StencilTest != nil {
		p.stencilFace = wgpu.StencilFaceState{
			Compare:     compareFunctionMap[dp.StencilTest.Func],
			FailOp:      stencilOperationMap[dp.StencilOp.Fail],
			DepthFailOp: stencilOperationMap[dp.StencilOp.ZFail],
			PassOp:      stencilOperationMap[dp.StencilOp.ZPass],
		}
		p.stencilReadMask = dp.StencilTest.Mask
		p.stencilWriteMask = dp.StencilOp.WriteMask
		p.stencilReference = dp.StencilTest.RefValue
		if dp.CullFace != nil && *dp.CullFace == shader.CullFaceFrontAndBack {
			p.stencilWriteMask = 0
		}
	}

	if dp.ScissorBox != nil {
		box := *dp.ScissorBox
		p.scissorBox = &box
	}
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source(shaderType shader.ShaderType) emitter.Source {
	return p.source.Stage(shaderType)
}

func (p *pipeline) ShaderModules() []*wgpu.ShaderModuleDescriptor {
	return []*wgpu.ShaderModuleDescriptor{
		p.source.Vertex.ModuleDescriptor(),
		p.source.Fragment.ModuleDescriptor(),
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) DepthStencilState() *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:              p.depthFormat,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        p.depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		StencilFront:        p.stencilFace,
		StencilBack:         p.stencilFace,
		StencilReadMask:     p.stencilReadMask,
		StencilWriteMask:    p.stencilWriteMask,
	}
}

func (p *pipeline) StencilReference() uint32 {
	return p.stencilReference
}

func (p *pipeline) ScissorBox() *shader.ScissorBox {
	return p.scissorBox
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
