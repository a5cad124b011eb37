package vm

import (
	"fmt"
	"math"

	"github.com/lumenwm/anima/curve"
)

type Op byte

const (
	OpInvalid Op = iota

	// OpImm pushes an immediate value.
	OpImm
	// OpOperator pops two operands and pushes the result.
	OpOperator
	// OpLoad pushes the value of a memory slot.
	OpLoad
	// OpLoadCtx pushes a value from the evaluation context.
	OpLoadCtx
	// OpStore pops the top of the stack into a memory slot.
	OpStore
	// OpStoreOverNaN pops into a slot only if the slot holds NaN.
	OpStoreOverNaN
	// OpCurve pushes the curve sampled at the instance's elapsed time,
	// adjusted for duration and delay and clamped to [0, 1].
	OpCurve
	// OpBranchOnce jumps by Rel during the first evaluation of an
	// instance and falls through afterwards.
	OpBranchOnce
	// OpBranch jumps by Rel unconditionally.
	OpBranch
	// OpHalt stops evaluation.
	OpHalt
)

func (op Op) String() string {
	switch op {
	case OpImm:
		return "imm"
	case OpOperator:
		return "op"
	case OpLoad:
		return "load"
	case OpLoadCtx:
		return "load_ctx"
	case OpStore:
		return "store"
	case OpStoreOverNaN:
		return "store/nan"
	case OpCurve:
		return "curve"
	case OpBranchOnce:
		return "br_once"
	case OpBranch:
		return "br"
	case OpHalt:
		return "halt"
	}
	return fmt.Sprintf("invalid(%d)", byte(op))
}

type Operator byte

const (
	Add Operator = iota
	Sub
	Mul
	Div
	Exp
	// Neg negates its single operand.
	Neg
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Exp:
		return "^"
	case Neg:
		return "neg"
	}
	return fmt.Sprintf("invalid(%d)", byte(o))
}

// Eval applies a binary operator. Neg ignores its left operand.
func (o Operator) Eval(l, r float64) float64 {
	switch o {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	case Div:
		return l / r
	case Exp:
		return math.Pow(l, r)
	case Neg:
		return -r
	}
	return math.NaN()
}

// Instruction is a single VM instruction. Only the fields relevant to
// the opcode are meaningful.
type Instruction struct {
	Op       Op
	Operator Operator
	Imm      float64
	Slot     int
	Offset   int
	Rel      int
	Curve    curve.Curve
	Duration float64
	Delay    float64
}

func (inst Instruction) String() string {
	switch inst.Op {
	case OpImm:
		return fmt.Sprintf("imm %f", inst.Imm)
	case OpOperator:
		return fmt.Sprintf("op %s", inst.Operator)
	case OpLoad:
		return fmt.Sprintf("load %d", inst.Slot)
	case OpLoadCtx:
		return fmt.Sprintf("load_ctx *(%d)", inst.Offset)
	case OpStore:
		return fmt.Sprintf("store %d", inst.Slot)
	case OpStoreOverNaN:
		return fmt.Sprintf("store/nan %d", inst.Slot)
	case OpCurve:
		return fmt.Sprintf("curve %s, duration %f, delay %f", inst.Curve, inst.Duration, inst.Delay)
	case OpBranchOnce:
		return fmt.Sprintf("br_once %d", inst.Rel)
	case OpBranch:
		return fmt.Sprintf("br %d", inst.Rel)
	case OpHalt:
		return "halt"
	}
	return fmt.Sprintf("invalid(%d)", byte(inst.Op))
}
