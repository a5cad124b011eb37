package compiler

import "github.com/lumenwm/anima/vm"

// codegen lays the fragment graph out into a flat instruction list.
// Fall-through chains are placed contiguously; the targets of once edges
// are queued breadth first. A slot is reserved after a fragment for its
// conditional branch, and for the branch or halt that ends a chain.
func (c *compileContext) codegen() []vm.Instruction {
	queue := make([]*fragment, 0, len(c.frags))
	queue = append(queue, c.head)
	c.head.emitted = true
	pos := 0
	for h := 0; h < len(queue); h++ {
		for curr := queue[h]; curr != nil; curr = curr.next {
			curr.addr = pos
			curr.emitted = true
			pos += len(curr.instrs)
			if curr.onceNext != nil {
				pos++
				if !curr.onceNext.emitted {
					queue = append(queue, curr.onceNext)
					curr.onceNext.emitted = true
				}
			}
			if curr.next == nil || curr.next.emitted {
				pos++
				break
			}
		}
	}

	out := make([]vm.Instruction, pos)
	for _, f := range c.frags {
		// Fragments never placed are unreachable from the head.
		if !f.emitted {
			continue
		}
		copy(out[f.addr:], f.instrs)
		n := len(f.instrs)
		if f.onceNext != nil {
			out[f.addr+n] = vm.Instruction{
				Op:  vm.OpBranchOnce,
				Rel: f.onceNext.addr - (f.addr + n),
			}
			n++
		}
		switch {
		case f.next == nil:
			out[f.addr+n] = vm.Instruction{Op: vm.OpHalt}
		case f.next.addr != f.addr+n:
			out[f.addr+n] = vm.Instruction{
				Op:  vm.OpBranch,
				Rel: f.next.addr - (f.addr + n),
			}
		}
	}
	return out
}
