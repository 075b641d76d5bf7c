package emitter

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
)

// Backend identifies a graphics API target for emitted source.
type Backend int

const (
	// BackendOpenGL targets desktop OpenGL 3.3 core with name-based resource lookup.
	BackendOpenGL Backend = iota

	// BackendOpenGLES targets OpenGL ES 3.0 with name-based resource lookup.
	BackendOpenGLES

	// BackendVulkan targets Vulkan GLSL with explicit set/binding locations.
	BackendVulkan
)

// Backends lists every supported backend.
var Backends = []Backend{BackendOpenGL, BackendOpenGLES, BackendVulkan}

var backendNames = []string{"opengl", "opengles", "vulkan"}

func (b Backend) String() string {
	if b < 0 || int(b) >= len(backendNames) {
		return fmt.Sprintf("Backend(%d)", int(b))
	}
	return backendNames[b]
}

// ParseBackend converts a backend name (case-insensitive) to a Backend.
//
// Parameters:
//   - name: one of "opengl", "opengles" or "vulkan"
//
// Returns:
//   - Backend: the matching backend
//   - error: an error if the name is not recognised
func ParseBackend(name string) (Backend, error) {
	for i, n := range backendNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Backend(i), nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q (want one of %s)", name, strings.Join(backendNames, ", "))
}

// BindingMode returns how the backend locates resources.
//
// Returns:
//   - binding.Mode: ExplicitSetBinding for Vulkan, ImplicitBinding otherwise
func (b Backend) BindingMode() binding.Mode {
	if b == BackendVulkan {
		return binding.ExplicitSetBinding
	}
	return binding.ImplicitBinding
}

// glesPrecision is the default precision block OpenGL ES requires before any declaration.
var glesPrecision = []string{
	"precision highp float;",
	"precision highp int;",
	"precision highp usampler2D;",
	"precision highp usampler3D;",
	"precision highp usamplerCube;",
	"precision highp sampler3D;",
	"precision highp sampler2DArray;",
}

// header returns the version directive and backend define that open every emitted stage.
func (b Backend) header() string {
	var sb strings.Builder
	switch b {
	case BackendOpenGL:
		sb.WriteString("#version 330 core\n")
	case BackendOpenGLES:
		sb.WriteString("#version 300 es\n")
		for _, line := range glesPrecision {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	case BackendVulkan:
		sb.WriteString("#version 450 core\n")
	}
	sb.WriteString("#define OXY_BACKEND_")
	sb.WriteString(strings.ToUpper(b.String()))
	sb.WriteByte('\n')
	return sb.String()
}
