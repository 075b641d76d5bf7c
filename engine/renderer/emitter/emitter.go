// Package emitter turns parsed shader descriptors into backend source text. Each stage of each
// pass is assembled from the backend header, the resource declarations the stage uses, the
// shared function library and the author's body. The body is never altered beyond removing
// annotation comments and legacy uniform declarations; Y-orientation differences between
// backends are resolved by the author using the OXY_BACKEND_* defines.
//
// A stage declares only the resources its body or the shared library names. A global the body
// declares itself, such as an out variable, takes the name and the resource is left out.
package emitter

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// DefaultSharedLibrary is the GLSL helper library inlined into every stage unless replaced
// with WithSharedLibrary. Helper names carry the S_ prefix.
//
//go:embed assets/shared.glsl
var DefaultSharedLibrary string

// Emitter produces backend source for shader descriptors. It is the compilation context
// that owns the shared function library, and is safe for concurrent use.
type Emitter interface {
	// SharedLibrary returns the helper library inlined ahead of every pass body.
	//
	// Returns:
	//   - string: the shared library source
	SharedLibrary() string

	// Emit resolves layouts and bindings for a descriptor and emits every pass for a backend.
	//
	// Parameters:
	//   - desc: the parsed shader descriptor
	//   - backend: the target backend
	//
	// Returns:
	//   - *Program: the emitted passes in declaration order
	//   - error: a layout, binding or emission error; no partial program is returned
	Emit(desc *shader.ShaderDescriptor, backend Backend) (*Program, error)

	// EmitPass emits the vertex and fragment stages of a single pass.
	//
	// Parameters:
	//   - pass: the render pass
	//   - layouts: resolved property group layouts keyed by resource name
	//   - table: the binding table of the pass's descriptor
	//   - backend: the target backend
	//
	// Returns:
	//   - PassSource: both emitted stages
	//   - error: a *shader.EmissionFailedError naming the stage and reason
	EmitPass(pass shader.RenderPass, layouts map[string]layout.ResolvedLayout, table binding.BindingTable, backend Backend) (PassSource, error)
}

// emitter implements the Emitter interface.
type emitter struct {
	shared       string
	sharedRefs   map[string]bool
	sharedDecls  map[string]bool
	sharedSource string
	logger       *slog.Logger
}

var _ Emitter = &emitter{}

// NewEmitter creates an Emitter using the embedded shared library unless overridden.
//
// Parameters:
//   - options: functional options to configure the emitter
//
// Returns:
//   - Emitter: the configured emitter
func NewEmitter(options ...EmitterBuilderOption) Emitter {
	e := &emitter{
		shared: DefaultSharedLibrary,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "emitter"))
	e.sharedSource = strings.TrimRight(e.shared, "\n")
	e.sharedRefs = identifierSet(stripComments(e.shared))
	e.sharedDecls = scanDeclarations(stripComments(e.shared)).All
	return e
}

func (e *emitter) SharedLibrary() string {
	return e.shared
}

func (e *emitter) Emit(desc *shader.ShaderDescriptor, backend Backend) (*Program, error) {
	if desc == nil {
		panic("emitter: nil shader descriptor")
	}
	layouts, err := layout.ComputeGroups(desc)
	if err != nil {
		return nil, err
	}
	table, err := binding.NewBindingTable(desc, backend.BindingMode())
	if err != nil {
		return nil, err
	}

	prog := &Program{
		Shader:      desc.Name,
		Fingerprint: desc.Fingerprint(),
		Backend:     backend,
		Passes:      make([]PassSource, 0, len(desc.Passes)),
	}
	for _, pass := range desc.Passes {
		ps, err := e.EmitPass(pass, layouts, table, backend)
		if err != nil {
			return nil, err
		}
		prog.Passes = append(prog.Passes, ps)
	}
	return prog, nil
}

func (e *emitter) EmitPass(pass shader.RenderPass, layouts map[string]layout.ResolvedLayout, table binding.BindingTable, backend Backend) (PassSource, error) {
	out := PassSource{Pass: pass.Name}
	for _, stage := range shader.ShaderTypes {
		code, resources, err := e.emitStage(pass, stage, layouts, table, backend)
		if err != nil {
			return PassSource{}, err
		}
		src := Source{
			Shader:    table.Shader(),
			Pass:      pass.Name,
			Stage:     stage,
			Backend:   backend,
			Code:      code,
			Resources: resources,
		}
		if stage == shader.ShaderTypeVertex {
			out.Vertex = src
		} else {
			out.Fragment = src
		}
		e.logger.Debug("emitted stage",
			slog.String("label", src.Label()),
			slog.Int("bytes", len(code)),
		)
	}
	return out, nil
}

// emitStage assembles one stage: header, used resource declarations, shared library, body.
// It also returns the names of the resources the stage declares, in binding table order.
//
// A resource is used by a stage when the body or the shared library names it, unless the body
// declares a global of the same name itself. The root of every member access and the sampler
// argument of every sampling built-in must resolve to a resource, a gl_ built-in or a name
// declared in the body or the shared library.
func (e *emitter) emitStage(pass shader.RenderPass, stage shader.ShaderType, layouts map[string]layout.ResolvedLayout, table binding.BindingTable, backend Backend) (string, []string, error) {
	fail := func(format string, args ...any) error {
		return &shader.EmissionFailedError{
			Shader: table.Shader(),
			Pass:   pass.Name,
			Stage:  stage,
			Reason: fmt.Sprintf(format, args...),
		}
	}

	body, annotated, err := rewriteBody(pass.Source(stage), table)
	if err != nil {
		return "", nil, fail("%v", err)
	}

	clean := stripComments(body)
	decls := scanDeclarations(clean)
	resolves := func(name string) bool {
		if _, ok := table.Lookup(name); ok {
			return true
		}
		return decls.All[name] || e.sharedDecls[name] || strings.HasPrefix(name, "gl_")
	}

	used := make(map[string]bool, len(annotated))
	for _, name := range annotated {
		used[name] = true
	}
	for _, r := range scanReferences(clean) {
		slot, ok := table.Lookup(r.Name)
		if !ok {
			if strings.HasPrefix(r.Name, shader.BuiltInPrefix) {
				return "", nil, fail("reference to undeclared engine resource %q", r.Name)
			}
			if r.Member != "" && !resolves(r.Name) {
				return "", nil, fail("reference to undeclared resource %q", r.Name)
			}
			continue
		}
		if decls.Global[r.Name] {
			continue
		}
		used[r.Name] = true
		if g, isGroup := slot.Resource.PropertyGroup(); isGroup && r.Member != "" && !hasProperty(g, r.Member) {
			return "", nil, fail("property group %q has no property %q", r.Name, r.Member)
		}
	}
	for _, name := range samplerArguments(clean) {
		if !resolves(name) {
			return "", nil, fail("sampling from undeclared texture %q", name)
		}
	}

	var sb strings.Builder
	var resources []string
	sb.WriteString(backend.header())
	sb.WriteByte('\n')
	for _, slot := range table.Slots() {
		if !used[slot.Name] && !(e.sharedRefs[slot.Name] && !decls.Global[slot.Name]) {
			continue
		}
		switch kind := slot.Resource.Kind.(type) {
		case shader.TextureResource:
			declareTexture(&sb, slot, kind, backend)
		case shader.PropertyGroupResource:
			l, ok := layouts[slot.Name]
			if !ok {
				return "", nil, fail("property group %q has no resolved layout", slot.Name)
			}
			if len(l.Fields) == 0 {
				continue
			}
			declareBlock(&sb, slot, l, backend)
		}
		resources = append(resources, slot.Name)
	}
	sb.WriteString("\n// shared library\n")
	sb.WriteString(e.sharedSource)
	sb.WriteString("\n// end of shared library\n\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String(), resources, nil
}

func hasProperty(g shader.PropertyGroupResource, name string) bool {
	for _, p := range g.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}
