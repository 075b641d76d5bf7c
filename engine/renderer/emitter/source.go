package emitter

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Source is the final backend source text of one stage of one pass.
type Source struct {
	Shader  string
	Pass    string
	Stage   shader.ShaderType
	Backend Backend
	Code    string

	// Resources names the resources declared in Code, in binding table order.
	Resources []string
}

// Label returns a debug label of the form "<shader>/<pass>/<stage>/<backend>".
func (s Source) Label() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Shader, s.Pass, s.Stage, s.Backend)
}

// ModuleDescriptor wraps the source in a GLSL shader module descriptor for device creation.
//
// Returns:
//   - *wgpu.ShaderModuleDescriptor: the labelled descriptor carrying the GLSL code and stage
func (s Source) ModuleDescriptor() *wgpu.ShaderModuleDescriptor {
	stage := wgpu.ShaderStageVertex
	if s.Stage == shader.ShaderTypeFragment {
		stage = wgpu.ShaderStageFragment
	}
	return &wgpu.ShaderModuleDescriptor{
		Label: s.Label(),
		GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
			Code:        s.Code,
			ShaderStage: stage,
		},
	}
}

// PassSource holds the emitted vertex and fragment stages of one pass.
type PassSource struct {
	Pass     string
	Vertex   Source
	Fragment Source
}

// Stage returns the emitted source of one stage.
//
// Parameters:
//   - stage: the shader stage
//
// Returns:
//   - Source: the stage source, or the zero value for an unknown stage
func (p PassSource) Stage(stage shader.ShaderType) Source {
	switch stage {
	case shader.ShaderTypeVertex:
		return p.Vertex
	case shader.ShaderTypeFragment:
		return p.Fragment
	default:
		return Source{}
	}
}

// Program is every pass of one descriptor emitted for one backend.
type Program struct {
	Shader      string
	Fingerprint string
	Backend     Backend
	Passes      []PassSource
}

// Pass looks up an emitted pass by name.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - PassSource: the pass, or the zero value if absent
//   - bool: true if the pass exists
func (p *Program) Pass(name string) (PassSource, bool) {
	for _, ps := range p.Passes {
		if ps.Pass == name {
			return ps, true
		}
	}
	return PassSource{}, false
}
