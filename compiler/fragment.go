package compiler

import "github.com/lumenwm/anima/vm"

// fragment is a node of the control flow graph built during compilation.
// next is the fall-through edge; onceNext, when set, is taken only during
// the first evaluation of an instance.
type fragment struct {
	instrs   []vm.Instruction
	next     *fragment
	onceNext *fragment

	addr    int
	emitted bool
}

func (c *compileContext) newFragment(instrs ...vm.Instruction) *fragment {
	f := &fragment{instrs: instrs}
	c.frags = append(c.frags, f)
	return f
}

// pruneFragments removes redundant once edges and splices out empty
// fragments, so codegen does not emit branches to branches. Each pass
// shortens at least one edge, so passes are bounded by the fragment
// count.
func (c *compileContext) pruneFragments() {
	changed := true
	for pass := 0; changed && pass <= len(c.frags); pass++ {
		changed = false
		for _, f := range c.frags {
			if f.onceNext == f.next && f.next != nil {
				f.onceNext = nil
				changed = true
			}
		}
		for _, f := range c.frags {
			if next := skipEmpty(f.next); next != f.next {
				f.next = next
				changed = true
			}
			if next := skipEmpty(f.onceNext); next != f.onceNext {
				f.onceNext = next
				changed = true
			}
		}
	}
}

func skipEmpty(f *fragment) *fragment {
	for f != nil && len(f.instrs) == 0 && f.onceNext == nil {
		f = f.next
	}
	return f
}
