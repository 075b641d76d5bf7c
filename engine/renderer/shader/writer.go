package shader

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const indentUnit = "    "

// Marshal renders a descriptor as asset text that Parse accepts. The output is canonical:
// every draw parameter is written explicitly, shader bodies become raw strings and equal
// descriptors always produce identical text.
//
// Parameters:
//   - d: the descriptor to render
//
// Returns:
//   - string: the asset text
func Marshal(d *ShaderDescriptor) string {
	w := &writer{}
	w.line(0, "(")
	w.line(1, "name: %s,", quote(d.Name))

	w.line(1, "resources: [")
	for _, r := range d.Resources {
		w.resource(r)
	}
	w.line(1, "],")

	w.line(1, "passes: [")
	for _, p := range d.Passes {
		w.pass(p)
	}
	w.line(1, "],")
	w.line(0, ")")
	return w.sb.String()
}

type writer struct {
	sb strings.Builder
}

func (w *writer) line(depth int, format string, args ...any) {
	w.sb.WriteString(strings.Repeat(indentUnit, depth))
	if len(args) == 0 {
		w.sb.WriteString(format)
	} else {
		fmt.Fprintf(&w.sb, format, args...)
	}
	w.sb.WriteByte('\n')
}

func (w *writer) resource(r ResourceDeclaration) {
	w.line(2, "(")
	w.line(3, "name: %s,", quote(r.Name))
	switch k := r.Kind.(type) {
	case TextureResource:
		w.line(3, "kind: Texture(kind: %s, fallback: %s),", k.Kind, k.Fallback)
	case PropertyGroupResource:
		w.line(3, "kind: PropertyGroup([")
		for _, p := range k.Properties {
			w.line(4, "(name: %s, kind: %s),", quote(p.Name), formatProperty(p))
		}
		w.line(3, "]),")
	}
	w.line(3, "binding: %d,", r.Binding)
	w.line(2, "),")
}

func (w *writer) pass(p RenderPass) {
	dp := p.DrawParameters
	w.line(2, "(")
	w.line(3, "name: %s,", quote(p.Name))
	w.line(3, "draw_parameters: DrawParameters(")
	w.line(4, "cull_face: %s,", formatOption(dp.CullFace, func(c CullFace) string { return c.String() }))
	w.line(4, "color_write: ColorMask(red: %t, green: %t, blue: %t, alpha: %t),", dp.ColorWrite.Red, dp.ColorWrite.Green, dp.ColorWrite.Blue, dp.ColorWrite.Alpha)
	w.line(4, "depth_write: %t,", dp.DepthWrite)
	w.line(4, "stencil_test: %s,", formatOption(dp.StencilTest, func(s StencilFunc) string {
		return fmt.Sprintf("StencilFunc(func: %s, ref_value: %d, mask: %s)", s.Func, s.RefValue, formatMask(s.Mask))
	}))
	w.line(4, "depth_test: %s,", formatOption(dp.DepthTest, func(c CompareFunc) string { return c.String() }))
	if dp.Blend == nil {
		w.line(4, "blend: None,")
	} else {
		b := dp.Blend
		w.line(4, "blend: Some(BlendParameters(")
		w.line(5, "func: BlendFunc(sfactor: %s, dfactor: %s, alpha_sfactor: %s, alpha_dfactor: %s),", b.Func.SFactor, b.Func.DFactor, b.Func.AlphaSFactor, b.Func.AlphaDFactor)
		w.line(5, "equation: BlendEquation(rgb: %s, alpha: %s),", b.Equation.RGB, b.Equation.Alpha)
		w.line(4, ")),")
	}
	op := dp.StencilOp
	w.line(4, "stencil_op: StencilOp(fail: %s, zfail: %s, zpass: %s, write_mask: %s),", op.Fail, op.ZFail, op.ZPass, formatMask(op.WriteMask))
	w.line(4, "scissor_box: %s,", formatOption(dp.ScissorBox, func(s ScissorBox) string {
		return fmt.Sprintf("ScissorBox(x: %d, y: %d, width: %d, height: %d)", s.X, s.Y, s.Width, s.Height)
	}))
	w.line(3, "),")
	w.line(3, "vertex_shader: %s,", rawString(p.VertexShader))
	w.line(3, "fragment_shader: %s,", rawString(p.FragmentShader))
	w.line(2, "),")
}

func formatOption[T any](v *T, format func(T) string) string {
	if v == nil {
		return "None"
	}
	return "Some(" + format(*v) + ")"
}

func formatMask(m uint32) string {
	return fmt.Sprintf("0x%08X", m)
}

// formatProperty renders the kind tag and value of a property, e.g. Vector2((1.0, 0.5)).
func formatProperty(p PropertyDeclaration) string {
	tag := p.Kind.String()
	if p.Kind.IsArray() {
		var elems []string
		forEachElement(p.Value, func(v any) {
			elems = append(elems, formatValue(v))
		})
		return fmt.Sprintf("%s(value: [%s], max_len: %d)", tag, strings.Join(elems, ", "), p.ArrayLen)
	}
	switch v := p.Value.(type) {
	case color.RGBA:
		return fmt.Sprintf("%s(r: %d, g: %d, b: %d, a: %d)", tag, v.R, v.G, v.B, v.A)
	case SamplerProperty:
		def := "None"
		if v.Default != "" {
			def = "Some(" + quote(v.Default) + ")"
		}
		return fmt.Sprintf("%s(default: %s, fallback: %s)", tag, def, v.Fallback)
	case nil:
		return tag
	default:
		return tag + "(" + formatValue(v) + ")"
	}
}

// forEachElement calls fn for every element of a typed property slice.
func forEachElement(slice any, fn func(any)) {
	switch s := slice.(type) {
	case []float32:
		for _, v := range s {
			fn(v)
		}
	case []int32:
		for _, v := range s {
			fn(v)
		}
	case []uint32:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Vec2:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Vec3:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Vec4:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Mat2:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Mat3:
		for _, v := range s {
			fn(v)
		}
	case []mgl32.Mat4:
		for _, v := range s {
			fn(v)
		}
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float32:
		return formatFloat(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case mgl32.Vec2:
		return formatTuple(x[:])
	case mgl32.Vec3:
		return formatTuple(x[:])
	case mgl32.Vec4:
		return formatTuple(x[:])
	case mgl32.Mat2:
		return formatTuple(x[:])
	case mgl32.Mat3:
		return formatTuple(x[:])
	case mgl32.Mat4:
		return formatTuple(x[:])
	default:
		return fmt.Sprint(x)
	}
}

func formatTuple(fs []float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatFloat writes the shortest text that parses back to exactly f, always with a decimal
// point or exponent so the value reads as a float.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// quote renders s as a double-quoted string using only escapes the lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// rawString wraps s in r#"..."# using enough '#' marks that s cannot terminate it early.
func rawString(s string) string {
	hashes := 1
	for strings.Contains(s, "\""+strings.Repeat("#", hashes)) {
		hashes++
	}
	h := strings.Repeat("#", hashes)
	return "r" + h + "\"" + s + "\"" + h
}
