package shader

// ShaderType identifies the programmable stage a shader body belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pass.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pass.
	ShaderTypeFragment
)

// ShaderTypes lists the stages of a render pass in emission order.
var ShaderTypes = []ShaderType{ShaderTypeVertex, ShaderTypeFragment}

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}
