package emitter

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/common"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/binding"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/layout"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// blockPrefix is prepended to a property group name to form its uniform block name.
const blockPrefix = "U"

// declareTexture renders the sampler declaration of a texture resource.
func declareTexture(sb *strings.Builder, slot binding.Slot, tex shader.TextureResource, backend Backend) {
	if backend.BindingMode() == binding.ExplicitSetBinding {
		fmt.Fprintf(sb, "layout(set = %d, binding = %d) ", slot.Set, slot.Binding)
	}
	fmt.Fprintf(sb, "uniform %s %s;\n", tex.Kind.GLSLType(), slot.Name)
}

// declareBlock renders the uniform block of a property group from its resolved layout. The
// block instance takes the group's name so bodies address members as group.property.
// Groups without properties produce nothing, GLSL has no empty blocks.
func declareBlock(sb *strings.Builder, slot binding.Slot, l layout.ResolvedLayout, backend Backend) {
	if len(l.Fields) == 0 {
		return
	}
	if backend.BindingMode() == binding.ExplicitSetBinding {
		fmt.Fprintf(sb, "layout(std140, set = %d, binding = %d) ", slot.Set, slot.Binding)
	} else {
		sb.WriteString("layout(std140) ")
	}
	fmt.Fprintf(sb, "uniform %s%s {\n", blockPrefix, slot.Name)
	writeMembers(sb, l)
	fmt.Fprintf(sb, "} %s;\n", slot.Name)
}

// writeMembers renders block members in layout order. std140 places a vec2 on an 8-byte
// boundary while the layout engine uses 16, so explicit float padding is emitted wherever the
// resolved offset is ahead of where std140 would put the member.
func writeMembers(sb *strings.Builder, l layout.ResolvedLayout) {
	cursor := uint64(0)
	pad := 0
	for _, f := range l.Fields {
		for common.RoundUpAlign(layout.Std140Alignment(f.Kind), cursor) < f.Offset {
			fmt.Fprintf(sb, "    float _pad%d;\n", pad)
			pad++
			cursor = common.RoundUpAlign(4, cursor) + 4
		}
		if f.Count > 0 {
			fmt.Fprintf(sb, "    %s %s[%d];\n", f.Kind.GLSLType(), f.Name, f.Count)
		} else {
			fmt.Fprintf(sb, "    %s %s;\n", f.Kind.GLSLType(), f.Name)
		}
		cursor = f.Offset + f.Size
	}
}
