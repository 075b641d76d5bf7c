package emitter

import (
	"regexp"
	"strings"
)

// legacyUniformRegex matches a hand-written implicit-backend uniform declaration occupying a
// whole line, e.g. "uniform vec4 diffuseColor;" or "uniform highp sampler2D tex;".
var legacyUniformRegex = regexp.MustCompile(`^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*\w*\s*\])?\s*;\s*$`)

// stripComments blanks out // and /* */ comments from GLSL source. Newlines inside block
// comments are kept so line numbers of the result match the input.
//
// Parameters:
//   - source: raw GLSL source
//
// Returns:
//   - string: source with comments replaced by spaces
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for i := 0; i < len(source); {
		switch {
		case strings.HasPrefix(source[i:], "//"):
			for i < len(source) && source[i] != '\n' {
				sb.WriteByte(' ')
				i++
			}
		case strings.HasPrefix(source[i:], "/*"):
			end := strings.Index(source[i+2:], "*/")
			stop := len(source)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			for ; i < stop; i++ {
				if source[i] == '\n' {
					sb.WriteByte('\n')
				} else {
					sb.WriteByte(' ')
				}
			}
		default:
			sb.WriteByte(source[i])
			i++
		}
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// reference is one identifier occurrence that is not itself a member access.
// Member holds the identifier following a '.', if any.
type reference struct {
	Name   string
	Member string
}

// scanReferences lists the root identifiers of comment-free GLSL source in order.
// Identifiers reached through '.' are reported as the Member of their root, and
// numeric suffixes such as the "e5" in 1e5 are skipped.
//
// Parameters:
//   - source: GLSL source with comments already stripped
//
// Returns:
//   - []reference: the root identifier references in source order
func scanReferences(source string) []reference {
	var out []reference
	n := len(source)
	for i := 0; i < n; {
		c := source[i]
		if !isIdentStart(c) || (i > 0 && isIdentPart(source[i-1])) {
			i++
			continue
		}
		start := i
		for i < n && isIdentPart(source[i]) {
			i++
		}
		if start > 0 && precededByDot(source, start) {
			continue
		}
		ref := reference{Name: source[start:i]}
		if j := skipSpaces(source, i); j < n && source[j] == '.' {
			k := skipSpaces(source, j+1)
			if k < n && isIdentStart(source[k]) {
				m := k
				for m < n && isIdentPart(source[m]) {
					m++
				}
				ref.Member = source[k:m]
			}
		}
		out = append(out, ref)
	}
	return out
}

func precededByDot(source string, pos int) bool {
	for j := pos - 1; j >= 0; j-- {
		switch source[j] {
		case ' ', '\t', '\r', '\n':
			continue
		case '.':
			return true
		default:
			return false
		}
	}
	return false
}

func skipSpaces(source string, i int) int {
	for i < len(source) && (source[i] == ' ' || source[i] == '\t' || source[i] == '\r' || source[i] == '\n') {
		i++
	}
	return i
}

// identifierSet collects the root identifiers of source into a set.
func identifierSet(source string) map[string]bool {
	set := make(map[string]bool)
	for _, r := range scanReferences(source) {
		set[r.Name] = true
	}
	return set
}

// samplingFunctions are the GLSL built-ins whose first argument names a sampler.
var samplingFunctions = map[string]bool{
	"texture":             true,
	"textureOffset":       true,
	"textureProj":         true,
	"textureProjOffset":   true,
	"textureLod":          true,
	"textureLodOffset":    true,
	"textureProjLod":      true,
	"textureGrad":         true,
	"textureGradOffset":   true,
	"textureProjGrad":     true,
	"textureSize":         true,
	"textureQueryLod":     true,
	"textureQueryLevels":  true,
	"textureGather":       true,
	"textureGatherOffset": true,
	"texelFetch":          true,
	"texelFetchOffset":    true,
	"texture2D":           true,
	"texture3D":           true,
	"textureCube":         true,
}

// nonDeclaring lists keywords that can sit directly before an identifier without declaring it.
var nonDeclaring = map[string]bool{
	"return": true,
	"else":   true,
	"case":   true,
}

type token struct {
	text  string
	ident bool
}

// tokenize splits comment-free GLSL source into identifiers, numbers and single punctuation
// characters. Whitespace is dropped.
func tokenize(source string) []token {
	var out []token
	n := len(source)
	for i := 0; i < n; {
		c := source[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(source[i]) {
				i++
			}
			out = append(out, token{text: source[start:i], ident: true})
		case c >= '0' && c <= '9', c == '.' && i+1 < n && source[i+1] >= '0' && source[i+1] <= '9':
			start := i
			for i < n && (isIdentPart(source[i]) || source[i] == '.') {
				i++
			}
			out = append(out, token{text: source[start:i]})
		default:
			out = append(out, token{text: source[i : i+1]})
			i++
		}
	}
	return out
}

// declarationSet holds the names a GLSL source declares. Global holds the ones declared
// outside any function, parameter list or block body.
type declarationSet struct {
	Global map[string]bool
	All    map[string]bool
}

// scanDeclarations finds declared names in comment-free GLSL source: macros named by #define,
// an identifier directly following a type or qualifier identifier ("vec4 color", "out vec2 uv"),
// further names of a comma separated declaration, and block instance names following '}'.
//
// Parameters:
//   - source: GLSL source with comments already stripped
//
// Returns:
//   - declarationSet: the declared names
func scanDeclarations(source string) declarationSet {
	set := declarationSet{Global: make(map[string]bool), All: make(map[string]bool)}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		directive, ok := strings.CutPrefix(strings.TrimSpace(line), "#")
		if !ok {
			continue
		}
		if fields := strings.Fields(directive); len(fields) > 1 && fields[0] == "define" {
			name, _, _ := strings.Cut(fields[1], "(")
			set.Global[name] = true
			set.All[name] = true
		}
		lines[i] = ""
	}
	toks := tokenize(strings.Join(lines, "\n"))
	braces, parens := 0, 0
	inDecl := false
	declare := func(name string) {
		set.All[name] = true
		if braces == 0 && parens == 0 {
			set.Global[name] = true
		}
	}
	for i, t := range toks {
		switch t.text {
		case "(", "[":
			parens++
			continue
		case ")", "]":
			parens = max(parens-1, 0)
			continue
		case "{":
			braces++
			inDecl = false
			continue
		case "}":
			braces = max(braces-1, 0)
			inDecl = false
			continue
		case ";":
			inDecl = false
			continue
		}
		if !t.ident || i == 0 {
			continue
		}
		prev := toks[i-1]
		switch {
		case prev.ident && !nonDeclaring[prev.text]:
			declare(t.text)
			if parens == 0 {
				inDecl = true
			}
		case prev.text == "}":
			declare(t.text)
		case prev.text == "," && inDecl && parens == 0:
			declare(t.text)
		}
	}
	return set
}

// samplerArguments lists the identifiers passed as the first argument of a sampling built-in.
//
// Parameters:
//   - source: GLSL source with comments already stripped
//
// Returns:
//   - []string: the sampler names in source order
func samplerArguments(source string) []string {
	var out []string
	toks := tokenize(source)
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].ident && samplingFunctions[toks[i].text] && toks[i+1].text == "(" && toks[i+2].ident {
			out = append(out, toks[i+2].text)
		}
	}
	return out
}
