// Package vm executes compiled animation programs. A program is a flat
// list of instructions operating on a float64 stack; an instance adds
// per-run state: the persistent slots and the elapsed time.
package vm

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNaN is returned when an instruction produces NaN.
	ErrNaN = errors.New("evaluation produced NaN")
	// ErrInf is returned when an instruction produces an infinity.
	ErrInf = errors.New("evaluation produced infinity")
	// ErrContext is returned when a context load reaches past the
	// context passed to Evaluate.
	ErrContext = errors.New("context offset out of range")
)

// Context supplies the external values a script reads through its
// context loads, indexed by offset.
type Context []float64

// Instance is a single run of a program. Multiple instances of the same
// program evaluate independently.
type Instance struct {
	program *Program

	// memory holds NSlots persistent slots followed by StackSize scratch
	// slots. Persistent slots start as NaN so store/nan can tell whether
	// a resumed start value is already present.
	memory  []float64
	elapsed float64
}

func NewInstance(program *Program) *Instance {
	in := &Instance{
		program: program,
		memory:  make([]float64, program.NSlots+program.StackSize),
	}
	for i := 0; i < program.NSlots; i++ {
		in.memory[i] = math.NaN()
	}
	return in
}

func (in *Instance) Program() *Program { return in.program }

// Step advances the instance clock. dt may be zero; negative steps are
// ignored.
func (in *Instance) Step(dt float64) {
	if dt > 0 {
		in.elapsed += dt
	}
}

func (in *Instance) Elapsed() float64 { return in.elapsed }

// IsFinished reports whether every transition in the script has settled.
func (in *Instance) IsFinished() bool {
	return in.elapsed >= in.program.MaxDuration
}

// Value returns the current value of a memory slot.
func (in *Instance) Value(slot int) float64 {
	return in.memory[slot]
}

// ValueOf returns the current value of a declared variable.
func (in *Instance) ValueOf(name string) (float64, bool) {
	slot, ok := in.program.SlotOf(name)
	if !ok {
		return 0, false
	}
	return in.memory[slot], true
}

// ResumeFrom seeds this instance's transition start values from the
// current values of an older instance of a compatible program, so an
// interrupted animation continues from where it left off instead of
// snapping back. Must be called before the first Evaluate.
func (in *Instance) ResumeFrom(old *Instance) {
	for _, name := range in.program.VariableNames() {
		override, ok := in.program.OverrideSlotOf(name)
		if !ok {
			continue
		}
		slot, ok := old.program.SlotOf(name)
		if !ok {
			continue
		}
		v := old.memory[slot]
		if math.IsNaN(v) {
			continue
		}
		in.memory[override] = v
	}
}

// Evaluate runs the program against the instance's current elapsed time.
// ctx may be nil for programs that read no context.
func (in *Instance) Evaluate(ctx Context) error {
	instructions := in.program.Instructions
	stack := in.memory[in.program.NSlots:]
	top := 0
	branchOnce := in.elapsed == 0

	for ip := 0; ip >= 0 && ip < len(instructions); ip++ {
		inst := instructions[ip]
		switch inst.Op {
		case OpImm:
			stack[top] = inst.Imm
			top++
		case OpOperator:
			if inst.Operator == Neg {
				stack[top-1] = -stack[top-1]
			} else {
				stack[top-2] = inst.Operator.Eval(stack[top-2], stack[top-1])
				top--
			}
		case OpLoad:
			stack[top] = in.memory[inst.Slot]
			top++
		case OpLoadCtx:
			if inst.Offset < 0 || inst.Offset >= len(ctx) {
				return fmt.Errorf("%w: %d", ErrContext, inst.Offset)
			}
			stack[top] = ctx[inst.Offset]
			top++
		case OpStore:
			top--
			in.memory[inst.Slot] = stack[top]
		case OpStoreOverNaN:
			top--
			if math.IsNaN(in.memory[inst.Slot]) {
				in.memory[inst.Slot] = stack[top]
			}
		case OpCurve:
			t := (in.elapsed - inst.Delay) / inst.Duration
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			stack[top] = inst.Curve.Sample(t)
			top++
		case OpBranchOnce:
			if branchOnce {
				ip += inst.Rel - 1
			}
		case OpBranch:
			ip += inst.Rel - 1
		case OpHalt:
			return nil
		default:
			return fmt.Errorf("invalid opcode %d at %d", byte(inst.Op), ip)
		}

		if top > 0 {
			if math.IsNaN(stack[top-1]) {
				return fmt.Errorf("%w at instruction %d: %s", ErrNaN, ip, inst)
			}
			if math.IsInf(stack[top-1], 0) {
				return fmt.Errorf("%w at instruction %d: %s", ErrInf, ip, inst)
			}
		}
	}
	return nil
}
