package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwm/anima/file"
	"github.com/lumenwm/anima/vm"
)

type tableResolver struct {
	vars map[string][2]int // slot, index
	ctx  map[string]int
}

func (r tableResolver) ResolveVariable(name string) (int, int, bool) {
	v, ok := r.vars[name]
	return v[0], v[1], ok
}

func (r tableResolver) ResolveContext(name string) (int, bool) {
	offset, ok := r.ctx[name]
	return offset, ok
}

var testResolver = tableResolver{
	vars: map[string][2]int{
		"a":   {3, 0},
		"b":   {4, 1},
		"a-b": {5, 2},
	},
	ctx: map[string]int{
		"speed": 1,
	},
}

func TestConstantFolding(t *testing.T) {
	result, err := ParseExpression("1 + 2 * 3", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 1)
	assert.Equal(t, vm.OpImm, result.Instructions[0].Op)
	assert.Equal(t, 7.0, result.Instructions[0].Imm)
	assert.Empty(t, result.Deps)

	result, err = ParseExpression("(1 + 2) ^ 3", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 1)
	assert.Equal(t, 27.0, result.Instructions[0].Imm)
}

func TestVariableLoad(t *testing.T) {
	result, err := ParseExpression("a * 2", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 3)
	assert.Equal(t, vm.Instruction{Op: vm.OpLoad, Slot: 3}, result.Instructions[0])
	assert.Equal(t, vm.Instruction{Op: vm.OpImm, Imm: 2}, result.Instructions[1])
	assert.Equal(t, vm.Instruction{Op: vm.OpOperator, Operator: vm.Mul}, result.Instructions[2])
	assert.Equal(t, []int{0}, result.Deps)
	assert.False(t, result.NeedsContext)
	assert.Equal(t, 2, result.MaxStack)
}

func TestNegatedVariable(t *testing.T) {
	result, err := ParseExpression("- a - 1", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 4)
	assert.Equal(t, vm.OpLoad, result.Instructions[0].Op)
	assert.Equal(t, vm.Neg, result.Instructions[1].Operator)
	assert.Equal(t, vm.OpImm, result.Instructions[2].Op)
	assert.Equal(t, vm.Sub, result.Instructions[3].Operator)
}

func TestContextLoad(t *testing.T) {
	result, err := ParseExpression("speed + 1", testResolver)
	require.NoError(t, err)
	assert.True(t, result.NeedsContext)
	assert.Equal(t, vm.Instruction{Op: vm.OpLoadCtx, Offset: 1}, result.Instructions[0])
	assert.Empty(t, result.Deps)
}

// Identifiers may contain dashes, so subtraction needs spaces around the
// operator.
func TestDashIdentifier(t *testing.T) {
	result, err := ParseExpression("a-b", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 1)
	assert.Equal(t, vm.Instruction{Op: vm.OpLoad, Slot: 5}, result.Instructions[0])
	assert.Equal(t, []int{2}, result.Deps)

	result, err = ParseExpression("a - b", testResolver)
	require.NoError(t, err)
	require.Len(t, result.Instructions, 3)
	assert.Equal(t, []int{0, 1}, result.Deps)
}

func TestMaxStack(t *testing.T) {
	result, err := ParseExpression("a + (a + (a + a))", testResolver)
	require.NoError(t, err)
	assert.Equal(t, 4, result.MaxStack)
}

func TestExpressionErrors(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"1 @ 2 ", `Expected one of "+-*/^", got '@'.`},
		{"1 + +", `Expected a number or a variable name, got "+".`},
		{"1)", `Unmatched ')' in expression "1)"`},
		{"nope + 1", `variable name "nope" is not defined`},
		{"(1 + 2", `Missing operand for operator (, in expression (1 + 2`},
		{"1 + (2 + 3", `Unmatched '(' in expression "1 + (2 + 3"`},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseExpression(tc.input, testResolver)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestErrorLocation(t *testing.T) {
	_, err := ParseExpression("1 @ 2", testResolver)
	require.Error(t, err)
	var ferr *file.Error
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 2, ferr.From)

	bound := ferr.Bind(file.NewSource("1 @ 2"))
	assert.Equal(t, "Expected one of \"+-*/^\", got '@'.\n | 1 @ 2\n | ..^", bound.Error())
}
