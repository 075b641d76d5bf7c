package emitter

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// rewriteBody removes @oxy: annotation lines and legacy uniform declarations from a pass body.
// A legacy uniform naming a resource is dropped since the emitter declares the resource
// itself; one naming a property of a group becomes a #define alias onto group.property.
// Lines inside comments are left untouched.
//
// Parameters:
//   - body: the pass body for one stage
//   - table: the binding table used to resolve names
//
// Returns:
//   - string: the rewritten body
//   - []string: resource names asserted by annotations, in source order
//   - error: an error for a malformed annotation or a name that matches no declared resource
func rewriteBody(body string, table binding.BindingTable) (string, []string, error) {
	annotations, err := shader.ParseAnnotations(body)
	if err != nil {
		return "", nil, err
	}
	var annotated []string
	for _, a := range annotations {
		if a.Type != shader.AnnotationTypeResource {
			continue
		}
		if _, ok := table.Lookup(a.Args[0]); !ok {
			return "", nil, fmt.Errorf("line %d: annotation references undeclared resource %q", a.Line, a.Args[0])
		}
		annotated = append(annotated, a.Args[0])
	}

	raw := strings.Split(body, "\n")
	stripped := strings.Split(stripComments(body), "\n")
	out := make([]string, 0, len(raw))
	for i, line := range raw {
		if shader.IsAnnotationLine(line) {
			continue
		}
		m := legacyUniformRegex.FindStringSubmatch(stripped[i])
		if m == nil {
			out = append(out, line)
			continue
		}
		name := m[2]
		if _, ok := table.Lookup(name); ok {
			continue
		}
		group, ok := owningGroup(table, name)
		if !ok {
			return "", nil, fmt.Errorf("line %d: uniform %q does not match a declared resource", i+1, name)
		}
		out = append(out, fmt.Sprintf("#define %s %s.%s", name, group, name))
	}
	return strings.Join(out, "\n"), annotated, nil
}

// owningGroup finds the first property group, in declaration order, that has a property with
// the given name.
func owningGroup(table binding.BindingTable, property string) (string, bool) {
	for _, slot := range table.Slots() {
		g, ok := slot.Resource.PropertyGroup()
		if ok && hasProperty(g, property) {
			return slot.Name, true
		}
	}
	return "", false
}
