package vm

import (
	"fmt"
	"sort"
	"strings"
)

// Variable describes a script variable: the memory slot its value lives
// in and its declaration index in the source.
type Variable struct {
	Slot  int
	Index int
}

// Program is a compiled animation script. It is immutable after
// compilation and shared by all its instances.
type Program struct {
	Instructions []Instruction

	// NSlots is the number of persistent memory slots; StackSize is the
	// scratch stack depth evaluation needs on top of them.
	NSlots    int
	StackSize int

	// MaxDuration is the time in seconds after which every transition in
	// the script has settled.
	MaxDuration float64

	vars      map[string]Variable
	overrides map[string]int
}

func NewProgram(instructions []Instruction, nslots, stackSize int, maxDuration float64, vars map[string]Variable, overrides map[string]int) *Program {
	return &Program{
		Instructions: instructions,
		NSlots:       nslots,
		StackSize:    stackSize,
		MaxDuration:  maxDuration,
		vars:         vars,
		overrides:    overrides,
	}
}

// SlotOf returns the memory slot of a declared variable.
func (p *Program) SlotOf(name string) (int, bool) {
	v, ok := p.vars[name]
	return v.Slot, ok
}

// OverrideSlotOf returns the slot holding the start value of the named
// variable's transition, for variables whose start value can be replaced
// when resuming from an earlier instance.
func (p *Program) OverrideSlotOf(name string) (int, bool) {
	slot, ok := p.overrides[name]
	return slot, ok
}

// VariableNames returns the declared variables in declaration order.
func (p *Program) VariableNames() []string {
	names := make([]string, 0, len(p.vars))
	for name := range p.vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.vars[names[i]].Index < p.vars[names[j]].Index
	})
	return names
}

func (p *Program) Disassemble() string {
	var b strings.Builder
	for i, inst := range p.Instructions {
		fmt.Fprintf(&b, "%d: %s\n", i, inst)
	}
	return b.String()
}

// Specialize rewrites context loads at the given offsets into immediate
// values, for scripts evaluated with a context that is known to be
// constant. Must be called before any instance is created.
func (p *Program) Specialize(values map[int]float64) {
	for i, inst := range p.Instructions {
		if inst.Op != OpLoadCtx {
			continue
		}
		v, ok := values[inst.Offset]
		if !ok {
			continue
		}
		p.Instructions[i] = Instruction{Op: OpImm, Imm: v}
	}
}
