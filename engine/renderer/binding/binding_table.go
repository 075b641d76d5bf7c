package binding

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
)

// Mode selects how a backend locates shader resources.
type Mode int

const (
	// ImplicitBinding is the legacy mode: resources are looked up by name at bind time and
	// declared binding indices are advisory only.
	ImplicitBinding Mode = iota

	// ExplicitSetBinding requires every resource to carry a numeric (set, binding) location.
	ExplicitSetBinding
)

// DefaultSet is the descriptor set every resource is placed in under ExplicitSetBinding.
const DefaultSet = 0

func (m Mode) String() string {
	switch m {
	case ImplicitBinding:
		return "implicit"
	case ExplicitSetBinding:
		return "explicit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Slot is the resolved location of one resource.
type Slot struct {
	Name     string
	Set      int
	Binding  int
	Resource shader.ResourceDeclaration
}

// BindingTable maps the resources of one descriptor to backend binding slots.
// Slots are kept in declaration order.
type BindingTable interface {
	// Mode returns the binding mode the table was built for.
	//
	// Returns:
	//   - Mode: the binding mode
	Mode() Mode

	// Shader returns the name of the descriptor the table was built from.
	//
	// Returns:
	//   - string: the descriptor name
	Shader() string

	// Lookup returns the slot of a resource by name.
	//
	// Parameters:
	//   - name: the resource name
	//
	// Returns:
	//   - Slot: the resolved slot, or the zero value if absent
	//   - bool: true if the resource is in the table
	Lookup(name string) (Slot, bool)

	// Slots returns every slot in declaration order.
	//
	// Returns:
	//   - []Slot: a copy of the table's slots
	Slots() []Slot

	// Sets returns the descriptor set indices in use, ascending.
	//
	// Returns:
	//   - []int: the set indices
	Sets() []int

	// Set returns the slots of one descriptor set ordered by binding index.
	//
	// Parameters:
	//   - set: the descriptor set index
	//
	// Returns:
	//   - []Slot: the slots in the set, empty if the set is unused
	Set(set int) []Slot
}

// bindingTable implements the BindingTable interface.
type bindingTable struct {
	shader string
	mode   Mode
	slots  []Slot
	index  map[string]int
}

var _ BindingTable = &bindingTable{}

// NewBindingTable resolves the resources of a descriptor to binding slots.
// Under ExplicitSetBinding every resource is placed in DefaultSet with its declared binding
// index and any two resources sharing a binding fail the build. Under ImplicitBinding the
// declared indices are recorded unchecked.
//
// Parameters:
//   - desc: the parsed shader descriptor
//   - mode: the backend binding mode
//
// Returns:
//   - BindingTable: the resolved table
//   - error: a *shader.DuplicateBindingError on a collision in explicit mode
func NewBindingTable(desc *shader.ShaderDescriptor, mode Mode) (BindingTable, error) {
	if desc == nil {
		panic("binding: nil shader descriptor")
	}
	t := &bindingTable{
		shader: desc.Name,
		mode:   mode,
		slots:  make([]Slot, 0, len(desc.Resources)),
		index:  make(map[string]int, len(desc.Resources)),
	}

	taken := make(map[[2]int]string)
	for _, r := range desc.Resources {
		slot := Slot{Name: r.Name, Set: DefaultSet, Binding: r.Binding, Resource: r}
		if mode == ExplicitSetBinding {
			key := [2]int{slot.Set, slot.Binding}
			if first, ok := taken[key]; ok {
				return nil, &shader.DuplicateBindingError{
					Shader:  desc.Name,
					Set:     slot.Set,
					Binding: slot.Binding,
					First:   first,
					Second:  r.Name,
				}
			}
			taken[key] = r.Name
		}
		t.index[r.Name] = len(t.slots)
		t.slots = append(t.slots, slot)
	}
	return t, nil
}

func (t *bindingTable) Mode() Mode {
	return t.mode
}

func (t *bindingTable) Shader() string {
	return t.shader
}

func (t *bindingTable) Lookup(name string) (Slot, bool) {
	i, ok := t.index[name]
	if !ok {
		return Slot{}, false
	}
	return t.slots[i], true
}

func (t *bindingTable) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

func (t *bindingTable) Sets() []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range t.slots {
		if !seen[s.Set] {
			seen[s.Set] = true
			out = append(out, s.Set)
		}
	}
	sort.Ints(out)
	return out
}

func (t *bindingTable) Set(set int) []Slot {
	var out []Slot
	for _, s := range t.slots {
		if s.Set == set {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Binding < out[j].Binding
	})
	return out
}
