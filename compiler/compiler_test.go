package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwm/anima/compiler"
	"github.com/lumenwm/anima/config"
	"github.com/lumenwm/anima/vm"
)

func compileYAML(t *testing.T, src string) (*vm.Program, error) {
	t.Helper()
	group, err := config.FromYAML([]byte(src))
	require.NoError(t, err)
	return compiler.Compile(group, nil)
}

const scriptSrc = `a: 10
b: "a * 2"
c: "(b - 1) * (a+1)"
d: "- e - 1"
e:
  timing: "10s cubic-bezier(0.5,0.5, 0.5, 0.5) 0.5s"
  start: 10
  end: "2 * c"
f:
  timing: "10s cubic-bezier(0.1,0.2, 0.3, 0.4) 0.5s"
  start: "e + 1"
  end: "f - 1"
neg: "-a"
timing1:
  timing: 10s
  start: 1
  end: 0
timing2:
  timing: "10s steps(1, jump-start)"
  start: 1
  end: 0
`

func TestCompileAndEvaluate(t *testing.T) {
	program, err := compileYAML(t, scriptSrc)
	require.NoError(t, err)

	_, ok := program.SlotOf("c")
	require.True(t, ok)
	assert.Equal(t, 10.5, program.MaxDuration)

	valueOf := func(in *vm.Instance, name string) float64 {
		v, ok := in.ValueOf(name)
		require.True(t, ok, "variable %s", name)
		return v
	}

	instance := vm.NewInstance(program)
	require.NoError(t, instance.Evaluate(nil))
	assert.Equal(t, 10.0, valueOf(instance, "a"))
	assert.Equal(t, 20.0, valueOf(instance, "b"))
	assert.Equal(t, 209.0, valueOf(instance, "c"))
	assert.Equal(t, -11.0, valueOf(instance, "d"))
	assert.Equal(t, 10.0, valueOf(instance, "e"))
	assert.False(t, instance.IsFinished())

	instance.Step(5.5)
	require.NoError(t, instance.Evaluate(nil))
	assert.InDelta(t, 214.0, valueOf(instance, "e"), 1e-9)

	instance.Step(5.5)
	require.NoError(t, instance.Evaluate(nil))
	assert.Equal(t, 10.0, valueOf(instance, "a"))
	assert.Equal(t, 20.0, valueOf(instance, "b"))
	assert.Equal(t, 209.0, valueOf(instance, "c"))
	assert.InDelta(t, -419.0, valueOf(instance, "d"), 1e-9)
	assert.InDelta(t, 418.0, valueOf(instance, "e"), 1e-9)
	assert.True(t, instance.IsFinished())
}

func TestReportCycle(t *testing.T) {
	_, err := compileYAML(t, "a: \"c\"\nb: \"a * 2\"\nc: \"b + 1\"\n")
	require.Error(t, err)
	assert.Equal(t, "Cyclic references detected in animation script defined at line 1: a -> c -> b -> a",
		err.Error())
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"bad operator", `a: "1 @ 2 "`,
			`Failed to parse expression at line 1. Expected one of "+-*/^", got '@'.`},
		{"bad time unit", `a: {timing: "1 asdf"}`,
			`Invalid curve definition "1 asdf" (invalid time unit at " asdf"). Line 1.`},
		{"unknown curve", `a: {timing: "1s asdf"}`,
			`Unknown curve type "asdf". Line 1.`},
		{"bad step count", `a: {timing: "1s steps(a)"}`,
			`Invalid step count at "a)". Line 1.`},
		{"bad steps arguments", `a: {timing: "1s steps(1)"}`,
			`Invalid steps argument list "(1)". Line 1.`},
		{"missing operand", `a: "1 + +"`,
			`Failed to parse expression at line 1. Expected a number or a variable name, got "+".`},
		{"unmatched paren", `a: "1)"`,
			`Failed to parse expression at line 1. Unmatched ')' in expression "1)"`},
		{"no timing", `a: {}`,
			`Transition section does not contain a timing function. Line 1.`},
		{"zero duration", `a: {timing: "0s", start: 0, end: 0}`,
			`Timing function cannot have a zero duration. Line 1.`},
		{"no start", `a: {timing: "1s", end: 0}`,
			`Transition definition does not contain a start value or expression. Line 1.`},
		{"no end", `a: {timing: "1s", start: 0}`,
			`Transition definition does not contain a end value or expression. Line 1.`},
		{"bad start expression", `a: {timing: "1s", start: "nope", end: 0}`,
			`transition has an invalid start expression: variable name "nope" is not defined Line 1.`},
		{"bad end expression", `a: {timing: "1s", start: 0, end: "nope"}`,
			`Transition has an invalid end expression: variable name "nope" is not defined. Line 1`},
		{"bad variable type", "a: true",
			`Invalid variable "a", it must be either a number, a string, or a config group defining a transition.`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileYAML(t, tc.src)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

// Constant subexpressions are folded at parse time, so a pure constant
// variable compiles to a single immediate.
func TestConstantsAreFolded(t *testing.T) {
	program, err := compileYAML(t, `x: "1 + 2 * 3 - 4"`)
	require.NoError(t, err)
	operators := 0
	for _, inst := range program.Instructions {
		if inst.Op == vm.OpOperator {
			operators++
		}
		if inst.Op == vm.OpImm {
			assert.Equal(t, 3.0, inst.Imm)
		}
	}
	assert.Zero(t, operators)
}

// No operator instruction may follow two immediates; such pairs are
// always folded at parse time.
func TestNoFoldableOperatorsRemain(t *testing.T) {
	program, err := compileYAML(t, scriptSrc)
	require.NoError(t, err)
	instrs := program.Instructions
	for i := 2; i < len(instrs); i++ {
		if instrs[i].Op == vm.OpOperator {
			foldable := instrs[i-1].Op == vm.OpImm && instrs[i-2].Op == vm.OpImm
			assert.False(t, foldable, "foldable operator at %d", i)
		}
	}
}

func TestSlotLayout(t *testing.T) {
	program, err := compileYAML(t, scriptSrc)
	require.NoError(t, err)

	// Declared variables occupy the first slots in declaration order;
	// transition scratch slots follow.
	names := program.VariableNames()
	require.Equal(t, []string{"a", "b", "c", "d", "e", "f", "neg", "timing1", "timing2"}, names)
	for i, name := range names {
		slot, ok := program.SlotOf(name)
		require.True(t, ok)
		assert.Equal(t, i, slot)
	}
	// Four transitions, two extra slots each.
	assert.Equal(t, len(names)+8, program.NSlots)
	assert.GreaterOrEqual(t, program.StackSize, 2)
}

func TestOverridesOnlyForNonResetTransitions(t *testing.T) {
	program, err := compileYAML(t, `v:
  timing: 1s
  start: 0
  end: 1
w:
  timing: 1s
  start: 0
  end: 1
  reset: true
`)
	require.NoError(t, err)
	_, ok := program.OverrideSlotOf("v")
	assert.True(t, ok)
	_, ok = program.OverrideSlotOf("w")
	assert.False(t, ok)
}

func TestDisassemble(t *testing.T) {
	program, err := compileYAML(t, `a: 10`)
	require.NoError(t, err)
	text := program.Disassemble()
	assert.Contains(t, text, "halt")
	assert.Contains(t, text, "imm")
}
