// annotations.go defines the annotation comments recognised inside pass shader bodies.
// Annotations are single-line GLSL comments prefixed with @oxy: that state facts about the
// body the emitter cannot infer from identifiers alone. They never reach emitted source.
//
// Syntax:
//
//	//@oxy:resource <resource_name>
//
// declares that the body depends on the named resource even when it is only reached
// through a macro or a shared helper. Emission fails if the resource is not declared.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a comment line.
type AnnotationType string

const (
	// AnnotationTypeResource asserts a dependency on a declared resource.
	//
	// Syntax: //@oxy:resource <resource_name>
	//
	// Example: //@oxy:resource oxy_instanceData
	AnnotationTypeResource AnnotationType = "resource"
)

// Annotation is one parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For resource annotations Args[0] is the resource name.
	Args []string

	// Line is the 1-based line number of the annotation within the body.
	Line int
}

// IsAnnotationLine reports whether a source line is an annotation comment.
func IsAnnotationLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "//")
	return ok && strings.HasPrefix(strings.TrimSpace(rest), annotationPrefix)
}

// ParseAnnotations collects every annotation in a shader body in source order.
//
// Parameters:
//   - source: the shader body
//
// Returns:
//   - []Annotation: the annotations found, in order
//   - error: a descriptive error for the first malformed annotation
func ParseAnnotations(source string) ([]Annotation, error) {
	var out []Annotation
	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// parseAnnotation attempts to parse a single line as an annotation. It returns nil with no
// error for lines that are not annotation comments.
//
// Parameters:
//   - line: the raw source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	if !IsAnnotationLine(line) {
		return nil, nil
	}
	_, after, _ := strings.Cut(line, annotationPrefix)

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(AnnotationTypeResource):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy resource annotation requires exactly one argument (resource name)", lineNum)
		}
		return &Annotation{
			Type: AnnotationTypeResource,
			Args: []string{args[1]},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
