package shader

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Parse parses shader asset text into a ShaderDescriptor. Resource and property order is
// preserved exactly as declared. Parse is a pure function of its input.
//
// Parameters:
//   - text: the asset text
//   - opts: optional ParseOption values
//
// Returns:
//   - *ShaderDescriptor: the parsed descriptor
//   - error: a *MalformedAssetError, *UnknownPropertyKindError or *DuplicateBindingError
func Parse(text string, opts ...ParseOption) (*ShaderDescriptor, error) {
	cfg := newParseConfig(opts...)
	root, err := parseTree(text)
	if err != nil {
		return nil, err
	}
	d := &decoder{src: text}
	desc, err := d.descriptor(root)
	if err != nil {
		return nil, err
	}
	if cfg.builtIns {
		regenerateBuiltIns(desc)
	}
	if err := checkBindings(desc, cfg.explicitBindings); err != nil {
		return nil, err
	}
	desc.seal()
	return desc, nil
}

// checkBindings rejects binding collisions. Same-kind collisions are always invalid;
// cross-kind collisions only when explicit is set.
func checkBindings(desc *ShaderDescriptor, explicit bool) error {
	for i, a := range desc.Resources {
		for _, b := range desc.Resources[:i] {
			if a.Binding != b.Binding {
				continue
			}
			if explicit || a.IsTexture() == b.IsTexture() {
				return &DuplicateBindingError{Shader: desc.Name, Binding: a.Binding, First: b.Name, Second: a.Name}
			}
		}
	}
	return nil
}

type decoder struct {
	src string
}

func (d *decoder) errorf(n *node, format string, args ...any) error {
	return malformedAt(d.src, n.Pos, fmt.Sprintf(format, args...))
}

// fields verifies n is a struct with named fields drawn from allowed.
func (d *decoder) fields(n *node, what string, allowed ...string) error {
	if n.Kind != nodeStruct || len(n.Elems) > 0 {
		return d.errorf(n, "expected %s with named fields, got %s", what, n.describe())
	}
	for _, f := range n.Fields {
		if !slices.Contains(allowed, f.Name) {
			return malformedAt(d.src, f.Pos, fmt.Sprintf("unknown field %q in %s", f.Name, what))
		}
	}
	return nil
}

func (d *decoder) required(n *node, name, what string) (*node, error) {
	v := n.field(name)
	if v == nil {
		return nil, d.errorf(n, "%s is missing required field %q", what, name)
	}
	return v, nil
}

func (d *decoder) descriptor(root *node) (*ShaderDescriptor, error) {
	if err := d.fields(root, "shader", "name", "resources", "passes"); err != nil {
		return nil, err
	}
	nameNode, err := d.required(root, "name", "shader")
	if err != nil {
		return nil, err
	}
	name, err := d.str(nameNode)
	if err != nil {
		return nil, err
	}
	desc := &ShaderDescriptor{Name: name}

	if res := root.field("resources"); res != nil {
		items, err := d.list(res)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			r, err := d.resource(item)
			if err != nil {
				return nil, err
			}
			if _, dup := desc.Resource(r.Name); dup {
				return nil, d.errorf(item, "duplicate resource %q", r.Name)
			}
			desc.Resources = append(desc.Resources, r)
		}
	}

	if passes := root.field("passes"); passes != nil {
		items, err := d.list(passes)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			p, err := d.pass(item)
			if err != nil {
				return nil, err
			}
			if _, dup := desc.Pass(p.Name); dup {
				return nil, d.errorf(item, "duplicate pass %q", p.Name)
			}
			desc.Passes = append(desc.Passes, p)
		}
	}
	return desc, nil
}

func (d *decoder) resource(n *node) (ResourceDeclaration, error) {
	var r ResourceDeclaration
	if err := d.fields(n, "resource", "name", "kind", "value", "binding"); err != nil {
		return r, err
	}
	nameNode, err := d.required(n, "name", "resource")
	if err != nil {
		return r, err
	}
	if r.Name, err = d.str(nameNode); err != nil {
		return r, err
	}
	bindingNode, err := d.required(n, "binding", "resource")
	if err != nil {
		return r, err
	}
	binding, err := d.uint32(bindingNode)
	if err != nil {
		return r, err
	}
	r.Binding = int(binding)

	kindNode := n.field("kind")
	if kindNode == nil {
		kindNode = n.field("value")
	}
	if kindNode == nil {
		return r, d.errorf(n, "resource %q is missing required field \"kind\"", r.Name)
	}
	tag := kindNode.Name
	if kindNode.Kind == nodeIdent {
		tag = kindNode.Text
	}
	switch tag {
	case "Texture":
		tex := TextureResource{}
		if kindNode.Kind == nodeStruct {
			if err := d.fields(kindNode, "Texture", "kind", "fallback"); err != nil {
				return r, err
			}
			if k := kindNode.field("kind"); k != nil {
				id, err := d.ident(k)
				if err != nil {
					return r, err
				}
				sk, ok := samplerKindFromName(id)
				if !ok {
					return r, d.errorf(k, "unknown sampler kind %q", id)
				}
				tex.Kind = sk
			}
			if f := kindNode.field("fallback"); f != nil {
				if tex.Fallback, err = d.fallback(f); err != nil {
					return r, err
				}
			}
		}
		r.Kind = tex
	case "PropertyGroup":
		group := PropertyGroupResource{Properties: []PropertyDeclaration{}}
		if kindNode.Kind == nodeStruct {
			if len(kindNode.Fields) > 0 || len(kindNode.Elems) > 1 {
				return r, d.errorf(kindNode, "PropertyGroup takes a single list of properties")
			}
			if len(kindNode.Elems) == 1 {
				items, err := d.list(kindNode.Elems[0])
				if err != nil {
					return r, err
				}
				for _, item := range items {
					p, err := d.property(item)
					if err != nil {
						return r, err
					}
					if slices.ContainsFunc(group.Properties, func(q PropertyDeclaration) bool { return q.Name == p.Name }) {
						return r, d.errorf(item, "duplicate property %q in group %q", p.Name, r.Name)
					}
					group.Properties = append(group.Properties, p)
				}
			}
		}
		r.Kind = group
	default:
		return r, d.errorf(kindNode, "unknown resource kind %s", kindNode.describe())
	}
	return r, nil
}

func (d *decoder) fallback(n *node) (SamplerFallback, error) {
	id, err := d.ident(n)
	if err != nil {
		return 0, err
	}
	f, ok := samplerFallbackFromName(id)
	if !ok {
		return 0, d.errorf(n, "unknown sampler fallback %q", id)
	}
	return f, nil
}

func (d *decoder) property(n *node) (PropertyDeclaration, error) {
	var p PropertyDeclaration
	if err := d.fields(n, "property", "name", "kind", "value"); err != nil {
		return p, err
	}
	nameNode, err := d.required(n, "name", "property")
	if err != nil {
		return p, err
	}
	if p.Name, err = d.str(nameNode); err != nil {
		return p, err
	}
	kindNode := n.field("kind")
	if kindNode == nil {
		kindNode = n.field("value")
	}
	if kindNode == nil {
		return p, d.errorf(n, "property %q is missing required field \"kind\"", p.Name)
	}

	tag := kindNode.Name
	if kindNode.Kind == nodeIdent {
		tag = kindNode.Text
	}
	if kindNode.Kind != nodeIdent && kindNode.Kind != nodeStruct || tag == "" {
		return p, d.errorf(kindNode, "expected a property kind, got %s", kindNode.describe())
	}
	kind, ok := propertyKindFromName(tag)
	if !ok {
		line, _ := lineColumn(d.src, kindNode.Pos)
		return p, &UnknownPropertyKindError{Property: p.Name, Tag: tag, Line: line}
	}
	p.Kind = kind
	p.Value = DefaultValue(kind)
	if kindNode.Kind == nodeIdent {
		return p, nil
	}

	switch {
	case kind.IsArray():
		p.Value, p.ArrayLen, err = d.arrayValue(kind, kindNode)
	case kind == PropertyKindColor:
		p.Value, err = d.colorValue(kindNode)
	case kind == PropertyKindSampler:
		p.Value, err = d.samplerValue(kindNode)
	default:
		var payload *node
		switch {
		case len(kindNode.Fields) > 0:
			if err := d.fields(kindNode, tag, "value"); err != nil {
				return p, err
			}
			payload = kindNode.field("value")
		case len(kindNode.Elems) == 1:
			payload = kindNode.Elems[0]
		case len(kindNode.Elems) > 1:
			payload = &node{Kind: nodeStruct, Pos: kindNode.Pos, Elems: kindNode.Elems}
		}
		if payload != nil {
			p.Value, err = d.scalarValue(kind, payload)
		}
	}
	return p, err
}

// scalarValue decodes the value of a non-array, non-color, non-sampler kind.
func (d *decoder) scalarValue(kind PropertyKind, n *node) (any, error) {
	switch kind {
	case PropertyKindFloat:
		return d.float32(n)
	case PropertyKindInt:
		return d.int32(n)
	case PropertyKindUInt:
		return d.uint32(n)
	case PropertyKindBool:
		return d.bool(n)
	case PropertyKindVector2:
		var v mgl32.Vec2
		if err := d.fill(n, v[:]); err != nil {
			return nil, err
		}
		return v, nil
	case PropertyKindVector3:
		var v mgl32.Vec3
		if err := d.fill(n, v[:]); err != nil {
			return nil, err
		}
		return v, nil
	case PropertyKindVector4:
		var v mgl32.Vec4
		if err := d.fill(n, v[:]); err != nil {
			return nil, err
		}
		return v, nil
	case PropertyKindMatrix2:
		var m mgl32.Mat2
		if err := d.fill(n, m[:]); err != nil {
			return nil, err
		}
		return m, nil
	case PropertyKindMatrix3:
		var m mgl32.Mat3
		if err := d.fill(n, m[:]); err != nil {
			return nil, err
		}
		return m, nil
	case PropertyKindMatrix4:
		var m mgl32.Mat4
		if err := d.fill(n, m[:]); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, d.errorf(n, "property kind %s has no scalar value", kind)
	}
}

// arrayValue decodes FloatArray(value: [...], max_len: N), FloatArray([...], N) or
// FloatArray([...]). A missing max_len defaults to the number of values given.
func (d *decoder) arrayValue(kind PropertyKind, n *node) (any, int, error) {
	var valueNode, lenNode *node
	switch {
	case len(n.Fields) > 0:
		if err := d.fields(n, kind.String(), "value", "max_len"); err != nil {
			return nil, 0, err
		}
		valueNode, lenNode = n.field("value"), n.field("max_len")
	case len(n.Elems) > 2:
		return nil, 0, d.errorf(n, "%s takes a value list and an optional max_len", kind)
	default:
		if len(n.Elems) > 0 {
			valueNode = n.Elems[0]
		}
		if len(n.Elems) > 1 {
			lenNode = n.Elems[1]
		}
	}

	var items []*node
	if valueNode != nil {
		var err error
		if items, err = d.list(valueNode); err != nil {
			return nil, 0, err
		}
	}
	maxLen := len(items)
	if lenNode != nil {
		l, err := d.uint32(lenNode)
		if err != nil {
			return nil, 0, err
		}
		maxLen = int(l)
	}
	if len(items) > maxLen {
		return nil, 0, d.errorf(n, "%s has %d values but max_len %d", kind, len(items), maxLen)
	}

	value := DefaultValue(kind)
	elem := kind.ElementKind()
	for _, item := range items {
		v, err := d.scalarValue(elem, item)
		if err != nil {
			return nil, 0, err
		}
		value = appendElement(value, v)
	}
	return value, maxLen, nil
}

func appendElement(slice, v any) any {
	switch s := slice.(type) {
	case []float32:
		return append(s, v.(float32))
	case []int32:
		return append(s, v.(int32))
	case []uint32:
		return append(s, v.(uint32))
	case []mgl32.Vec2:
		return append(s, v.(mgl32.Vec2))
	case []mgl32.Vec3:
		return append(s, v.(mgl32.Vec3))
	case []mgl32.Vec4:
		return append(s, v.(mgl32.Vec4))
	case []mgl32.Mat2:
		return append(s, v.(mgl32.Mat2))
	case []mgl32.Mat3:
		return append(s, v.(mgl32.Mat3))
	case []mgl32.Mat4:
		return append(s, v.(mgl32.Mat4))
	default:
		return slice
	}
}

// colorValue decodes Color(r: 255, g: 0, b: 0, a: 255) or Color(255, 0, 0, 255).
// Omitted channels are 255.
func (d *decoder) colorValue(n *node) (color.RGBA, error) {
	c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	channels := []*uint8{&c.R, &c.G, &c.B, &c.A}
	names := []string{"r", "g", "b", "a"}
	if len(n.Elems) > 0 {
		if len(n.Elems) != 4 {
			return c, d.errorf(n, "Color takes four channels, got %d", len(n.Elems))
		}
		for i, e := range n.Elems {
			v, err := d.uint8(e)
			if err != nil {
				return c, err
			}
			*channels[i] = v
		}
		return c, nil
	}
	if err := d.fields(n, "Color", names...); err != nil {
		return c, err
	}
	for i, name := range names {
		if f := n.field(name); f != nil {
			v, err := d.uint8(f)
			if err != nil {
				return c, err
			}
			*channels[i] = v
		}
	}
	return c, nil
}

// samplerValue decodes Sampler(default: None | Some("path"), fallback: White).
func (d *decoder) samplerValue(n *node) (SamplerProperty, error) {
	var s SamplerProperty
	if err := d.fields(n, "Sampler", "default", "fallback"); err != nil {
		return s, err
	}
	if def := n.field("default"); def != nil {
		inner, none := d.option(def)
		if !none {
			path, err := d.str(inner)
			if err != nil {
				return s, err
			}
			s.Default = path
		}
	}
	if f := n.field("fallback"); f != nil {
		var err error
		if s.Fallback, err = d.fallback(f); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (d *decoder) pass(n *node) (RenderPass, error) {
	var p RenderPass
	if err := d.fields(n, "pass", "name", "draw_parameters", "vertex_shader", "fragment_shader"); err != nil {
		return p, err
	}
	nameNode, err := d.required(n, "name", "pass")
	if err != nil {
		return p, err
	}
	if p.Name, err = d.str(nameNode); err != nil {
		return p, err
	}
	vs, err := d.required(n, "vertex_shader", fmt.Sprintf("pass %q", p.Name))
	if err != nil {
		return p, err
	}
	if p.VertexShader, err = d.str(vs); err != nil {
		return p, err
	}
	fs, err := d.required(n, "fragment_shader", fmt.Sprintf("pass %q", p.Name))
	if err != nil {
		return p, err
	}
	if p.FragmentShader, err = d.str(fs); err != nil {
		return p, err
	}
	p.DrawParameters = DefaultDrawParameters()
	if dp := n.field("draw_parameters"); dp != nil {
		if p.DrawParameters, err = d.drawParameters(dp); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (d *decoder) drawParameters(n *node) (DrawParameters, error) {
	dp := DefaultDrawParameters()
	if err := d.fields(n, "DrawParameters", "cull_face", "color_write", "depth_write", "stencil_test", "depth_test", "blend", "stencil_op", "scissor_box"); err != nil {
		return dp, err
	}
	var err error
	if v := n.field("cull_face"); v != nil {
		dp.CullFace = nil
		if inner, none := d.option(v); !none {
			cf, err := d.enum(inner, cullFaceNames, "cull face")
			if err != nil {
				return dp, err
			}
			dp.CullFace = Ptr(CullFace(cf))
		}
	}
	if v := n.field("color_write"); v != nil {
		if dp.ColorWrite, err = d.colorMask(v); err != nil {
			return dp, err
		}
	}
	if v := n.field("depth_write"); v != nil {
		if dp.DepthWrite, err = d.bool(v); err != nil {
			return dp, err
		}
	}
	if v := n.field("stencil_test"); v != nil {
		dp.StencilTest = nil
		if inner, none := d.option(v); !none {
			sf, err := d.stencilFunc(inner)
			if err != nil {
				return dp, err
			}
			dp.StencilTest = &sf
		}
	}
	if v := n.field("depth_test"); v != nil {
		if dp.DepthTest, err = d.depthTest(v); err != nil {
			return dp, err
		}
	}
	if v := n.field("blend"); v != nil {
		dp.Blend = nil
		if inner, none := d.option(v); !none {
			bp, err := d.blend(inner)
			if err != nil {
				return dp, err
			}
			dp.Blend = &bp
		}
	}
	if v := n.field("stencil_op"); v != nil {
		if dp.StencilOp, err = d.stencilOp(v); err != nil {
			return dp, err
		}
	}
	if v := n.field("scissor_box"); v != nil {
		dp.ScissorBox = nil
		if inner, none := d.option(v); !none {
			sb, err := d.scissorBox(inner)
			if err != nil {
				return dp, err
			}
			dp.ScissorBox = &sb
		}
	}
	return dp, nil
}

// depthTest accepts true (Less), false or None (disabled), Some(func) and a bare func.
func (d *decoder) depthTest(n *node) (*CompareFunc, error) {
	if n.Kind == nodeIdent {
		switch n.Text {
		case "true":
			return Ptr(CompareLess), nil
		case "false", "None":
			return nil, nil
		}
	}
	inner, none := d.option(n)
	if none {
		return nil, nil
	}
	cf, err := d.enum(inner, compareFuncNames, "compare function")
	if err != nil {
		return nil, err
	}
	return Ptr(CompareFunc(cf)), nil
}

func (d *decoder) colorMask(n *node) (ColorMask, error) {
	m := ColorMask{Red: true, Green: true, Blue: true, Alpha: true}
	if err := d.fields(n, "ColorMask", "red", "green", "blue", "alpha"); err != nil {
		return m, err
	}
	targets := map[string]*bool{"red": &m.Red, "green": &m.Green, "blue": &m.Blue, "alpha": &m.Alpha}
	for _, f := range n.Fields {
		v, err := d.bool(f.Value)
		if err != nil {
			return m, err
		}
		*targets[f.Name] = v
	}
	return m, nil
}

func (d *decoder) stencilFunc(n *node) (StencilFunc, error) {
	sf := DefaultStencilFunc()
	if err := d.fields(n, "StencilFunc", "func", "ref_value", "mask"); err != nil {
		return sf, err
	}
	if v := n.field("func"); v != nil {
		cf, err := d.enum(v, compareFuncNames, "compare function")
		if err != nil {
			return sf, err
		}
		sf.Func = CompareFunc(cf)
	}
	var err error
	if v := n.field("ref_value"); v != nil {
		if sf.RefValue, err = d.uint32(v); err != nil {
			return sf, err
		}
	}
	if v := n.field("mask"); v != nil {
		if sf.Mask, err = d.uint32(v); err != nil {
			return sf, err
		}
	}
	return sf, nil
}

func (d *decoder) stencilOp(n *node) (StencilOp, error) {
	op := DefaultStencilOp()
	if err := d.fields(n, "StencilOp", "fail", "zfail", "zpass", "write_mask"); err != nil {
		return op, err
	}
	actions := []struct {
		name   string
		target *StencilAction
	}{{"fail", &op.Fail}, {"zfail", &op.ZFail}, {"zpass", &op.ZPass}}
	for _, action := range actions {
		if v := n.field(action.name); v != nil {
			a, err := d.enum(v, stencilActionNames, "stencil action")
			if err != nil {
				return op, err
			}
			*action.target = StencilAction(a)
		}
	}
	if v := n.field("write_mask"); v != nil {
		var err error
		if op.WriteMask, err = d.uint32(v); err != nil {
			return op, err
		}
	}
	return op, nil
}

// blend accepts BlendParameters(func: ..., equation: ...) or a bare BlendFunc(...), in which
// case both equations are Add.
func (d *decoder) blend(n *node) (BlendParameters, error) {
	var bp BlendParameters
	if n.Name == "BlendFunc" {
		f, err := d.blendFunc(n)
		bp.Func = f
		return bp, err
	}
	if err := d.fields(n, "BlendParameters", "func", "equation"); err != nil {
		return bp, err
	}
	fn, err := d.required(n, "func", "BlendParameters")
	if err != nil {
		return bp, err
	}
	if bp.Func, err = d.blendFunc(fn); err != nil {
		return bp, err
	}
	if eq := n.field("equation"); eq != nil {
		if err := d.fields(eq, "BlendEquation", "rgb", "alpha"); err != nil {
			return bp, err
		}
		if v := eq.field("rgb"); v != nil {
			m, err := d.enum(v, blendModeNames, "blend mode")
			if err != nil {
				return bp, err
			}
			bp.Equation.RGB = BlendMode(m)
		}
		if v := eq.field("alpha"); v != nil {
			m, err := d.enum(v, blendModeNames, "blend mode")
			if err != nil {
				return bp, err
			}
			bp.Equation.Alpha = BlendMode(m)
		}
	}
	return bp, nil
}

// blendFunc decodes BlendFunc(sfactor, dfactor[, alpha_sfactor, alpha_dfactor]). The alpha
// factors default to the color factors.
func (d *decoder) blendFunc(n *node) (BlendFunc, error) {
	var bf BlendFunc
	if err := d.fields(n, "BlendFunc", "sfactor", "dfactor", "alpha_sfactor", "alpha_dfactor"); err != nil {
		return bf, err
	}
	factor := func(name string, def BlendFactor, required bool) (BlendFactor, error) {
		v := n.field(name)
		if v == nil {
			if required {
				return 0, d.errorf(n, "BlendFunc is missing required field %q", name)
			}
			return def, nil
		}
		f, err := d.enum(v, blendFactorNames, "blend factor")
		return BlendFactor(f), err
	}
	var err error
	if bf.SFactor, err = factor("sfactor", 0, true); err != nil {
		return bf, err
	}
	if bf.DFactor, err = factor("dfactor", 0, true); err != nil {
		return bf, err
	}
	if bf.AlphaSFactor, err = factor("alpha_sfactor", bf.SFactor, false); err != nil {
		return bf, err
	}
	if bf.AlphaDFactor, err = factor("alpha_dfactor", bf.DFactor, false); err != nil {
		return bf, err
	}
	return bf, nil
}

func (d *decoder) scissorBox(n *node) (ScissorBox, error) {
	var sb ScissorBox
	if err := d.fields(n, "ScissorBox", "x", "y", "width", "height"); err != nil {
		return sb, err
	}
	targets := map[string]*int32{"x": &sb.X, "y": &sb.Y, "width": &sb.Width, "height": &sb.Height}
	for _, f := range n.Fields {
		v, err := d.int32(f.Value)
		if err != nil {
			return sb, err
		}
		*targets[f.Name] = v
	}
	return sb, nil
}

// option unwraps Some(x) to x and reports None. Any other node is returned unchanged.
func (d *decoder) option(n *node) (*node, bool) {
	if n.Kind == nodeIdent && n.Text == "None" {
		return nil, true
	}
	if n.Kind == nodeStruct && n.Name == "Some" && len(n.Elems) == 1 {
		return n.Elems[0], false
	}
	return n, false
}

func (d *decoder) enum(n *node, names []string, what string) (int, error) {
	id, err := d.ident(n)
	if err != nil {
		return 0, err
	}
	i, ok := enumIndex(names, id)
	if !ok {
		return 0, d.errorf(n, "unknown %s %q", what, id)
	}
	return i, nil
}

func (d *decoder) ident(n *node) (string, error) {
	if n.Kind != nodeIdent {
		return "", d.errorf(n, "expected identifier, got %s", n.describe())
	}
	return n.Text, nil
}

func (d *decoder) str(n *node) (string, error) {
	if n.Kind != nodeString {
		return "", d.errorf(n, "expected string, got %s", n.describe())
	}
	return n.Text, nil
}

func (d *decoder) list(n *node) ([]*node, error) {
	if n.Kind != nodeList {
		return nil, d.errorf(n, "expected list, got %s", n.describe())
	}
	return n.Elems, nil
}

func (d *decoder) bool(n *node) (bool, error) {
	if n.Kind == nodeIdent {
		switch n.Text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, d.errorf(n, "expected true or false, got %s", n.describe())
}

func (d *decoder) number(n *node) (string, error) {
	if n.Kind != nodeNumber {
		return "", d.errorf(n, "expected number, got %s", n.describe())
	}
	return n.Text, nil
}

func (d *decoder) float32(n *node) (float32, error) {
	text, err := d.number(n)
	if err != nil {
		return 0, err
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float32(i), nil
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, d.errorf(n, "invalid float %q", text)
	}
	return float32(f), nil
}

func (d *decoder) int32(n *node) (int32, error) {
	text, err := d.number(n)
	if err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return 0, d.errorf(n, "invalid 32-bit integer %q", text)
	}
	return int32(i), nil
}

func (d *decoder) uint32(n *node) (uint32, error) {
	text, err := d.number(n)
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 0, 32)
	if err != nil {
		return 0, d.errorf(n, "invalid unsigned 32-bit integer %q", text)
	}
	return uint32(u), nil
}

func (d *decoder) uint8(n *node) (uint8, error) {
	u, err := d.uint32(n)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint8 {
		return 0, d.errorf(n, "color channel %d out of range 0..255", u)
	}
	return uint8(u), nil
}

// floats decodes exactly count numbers from a tuple or list. A list of tuples or lists is
// flattened, which allows matrices to be written column by column.
func (d *decoder) floats(n *node, count int) ([]float32, error) {
	if n.Kind != nodeList && (n.Kind != nodeStruct || len(n.Fields) > 0) {
		return nil, d.errorf(n, "expected %d numbers, got %s", count, n.describe())
	}
	out := make([]float32, 0, count)
	for _, e := range n.Elems {
		if e.Kind == nodeList || e.Kind == nodeStruct {
			inner, err := d.floats(e, len(e.Elems))
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
			continue
		}
		f, err := d.float32(e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) != count {
		return nil, d.errorf(n, "expected %d numbers, got %d", count, len(out))
	}
	return out, nil
}

// fill decodes exactly len(dst) numbers into dst.
func (d *decoder) fill(n *node, dst []float32) error {
	v, err := d.floats(n, len(dst))
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}
