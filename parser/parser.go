// Package parser turns animation expressions and timing function strings
// into VM instructions. Expressions are arithmetic over numbers, script
// variables and context values; the parser is precedence based and folds
// constant subexpressions as it goes.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumenwm/anima/file"
	"github.com/lumenwm/anima/vm"
)

// Resolver resolves names found in expressions. Variables live in memory
// slots and introduce dependencies; context values are read from the
// evaluation context by offset.
type Resolver interface {
	ResolveVariable(name string) (slot, index int, ok bool)
	ResolveContext(name string) (offset int, ok bool)
}

// Result is the compiled form of one expression.
type Result struct {
	Instructions []vm.Instruction

	// Deps lists the declaration indices of the variables the expression
	// reads, in the order they appear.
	Deps []int

	// NeedsContext is set when the expression reads context values.
	NeedsContext bool

	// MaxStack is the operand stack depth evaluation requires.
	MaxStack int
}

const operators = "+-*/^"

// operatorPre is indexed by vm.Operator.
var operatorPre = [...]int{
	vm.Add: 0,
	vm.Sub: 0,
	vm.Mul: 1,
	vm.Div: 1,
	vm.Exp: 2,
}

func charToOp(ch byte) vm.Operator {
	switch ch {
	case '+':
		return vm.Add
	case '-':
		return vm.Sub
	case '*':
		return vm.Mul
	case '/':
		return vm.Div
	case '^':
		return vm.Exp
	}
	panic(fmt.Sprintf("not an operator: %c", ch))
}

type parser struct {
	input    string
	pos      int
	resolver Resolver
	result   *Result

	opStack    []byte
	opTop      int
	operandTop int

	err *file.Error
}

// ParseExpression compiles a single arithmetic expression. The returned
// instructions leave exactly one value on the stack; the caller appends
// the store.
func ParseExpression(input string, resolver Resolver) (*Result, error) {
	p := &parser{
		input:    strings.TrimSpace(input),
		resolver: resolver,
		result:   &Result{},
		opStack:  make([]byte, len(input)+1),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.result, nil
}

func (p *parser) parse() error {
	if !p.parseOperandOrParen() {
		return p.err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			break
		}
		op, ok := p.parseOp()
		if !ok {
			return p.err
		}
		p.skipSpace()

		pre := operatorPre[charToOp(op)]
		for p.opTop > 0 && p.opStack[p.opTop-1] != '(' &&
			pre <= operatorPre[charToOp(p.opStack[p.opTop-1])] {
			if !p.popOp() {
				return p.err
			}
		}
		p.opStack[p.opTop] = op
		p.opTop++
		if !p.parseOperandOrParen() {
			return p.err
		}
	}
	for p.opTop != 0 {
		if !p.popOp() {
			return p.err
		}
	}
	if p.operandTop != 1 {
		p.errorAt(0, "excessive operand on stack %s", p.input)
		return p.err
	}
	return nil
}

// parseOperandOrParen parses an operand with any surrounding parentheses,
// like `(((var))` or `var)))`.
func (p *parser) parseOperandOrParen() bool {
	for p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++
		p.skipSpace()
		p.opStack[p.opTop] = '('
		p.opTop++
	}

	if !p.parseRawOperand() {
		return false
	}
	p.skipSpace()
	p.operandTop++
	if p.operandTop > p.result.MaxStack {
		p.result.MaxStack = p.operandTop
	}

	for p.pos < len(p.input) && p.input[p.pos] == ')' {
		for p.opTop > 0 && p.opStack[p.opTop-1] != '(' {
			if !p.popOp() {
				return false
			}
		}
		if p.opTop == 0 {
			p.errorAt(p.pos, "Unmatched ')' in expression %q", p.input)
			return false
		}
		p.opTop--
		p.pos++
		p.skipSpace()
	}
	return true
}

// parseRawOperand parses a number, or a variable optionally prefixed with
// a minus sign.
func (p *parser) parseRawOperand() bool {
	if v, n := scanNumber(p.input[p.pos:]); n > 0 {
		p.emit(vm.Instruction{Op: vm.OpImm, Imm: v})
		p.pos += n
		return true
	}
	neg := false
	if p.pos < len(p.input) && p.input[p.pos] == '-' {
		neg = true
		p.pos++
		p.skipSpace()
	}
	start := p.pos
	for p.pos < len(p.input) && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		p.errorAt(start, "Expected a number or a variable name, got %q.", p.input[start:])
		return false
	}
	name := p.input[start:p.pos]
	if slot, index, ok := p.resolver.ResolveVariable(name); ok {
		p.emit(vm.Instruction{Op: vm.OpLoad, Slot: slot})
		p.result.Deps = append(p.result.Deps, index)
	} else if offset, ok := p.resolver.ResolveContext(name); ok {
		p.emit(vm.Instruction{Op: vm.OpLoadCtx, Offset: offset})
		p.result.NeedsContext = true
	} else {
		p.errorAt(start, "variable name %q is not defined", name)
		return false
	}
	if neg {
		p.emit(vm.Instruction{Op: vm.OpOperator, Operator: vm.Neg})
	}
	return true
}

func (p *parser) parseOp() (byte, bool) {
	ch := p.input[p.pos]
	if strings.IndexByte(operators, ch) < 0 {
		p.errorAt(p.pos, "Expected one of %q, got '%c'.", operators, ch)
		return 0, false
	}
	p.pos++
	return ch, true
}

// popOp applies the operator on top of the operator stack. When both
// operands are immediates the result is folded into a single immediate.
func (p *parser) popOp() bool {
	if p.operandTop < 2 {
		p.errorAt(0, "Missing operand for operator %c, in expression %s",
			p.opStack[p.opTop-1], p.input)
		return false
	}
	if p.opStack[p.opTop-1] == '(' {
		p.errorAt(0, "Unmatched '(' in expression %q", p.input)
		return false
	}
	op := charToOp(p.opStack[p.opTop-1])
	instrs := p.result.Instructions
	n := len(instrs)
	if instrs[n-1].Op == vm.OpImm && instrs[n-2].Op == vm.OpImm {
		instrs[n-2].Imm = op.Eval(instrs[n-2].Imm, instrs[n-1].Imm)
		p.result.Instructions = instrs[:n-1]
	} else {
		p.emit(vm.Instruction{Op: vm.OpOperator, Operator: op})
	}
	p.opTop--
	p.operandTop--
	return true
}

func (p *parser) emit(inst vm.Instruction) {
	p.result.Instructions = append(p.result.Instructions, inst)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// errorAt records the first error with its position; later errors from
// unwinding are ignored.
func (p *parser) errorAt(pos int, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &file.Error{
		Location: file.Location{From: pos, To: p.pos},
		Message:  fmt.Sprintf(format, args...),
	}
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-'
}

// scanNumber scans a leading number of the form (+|-)?[0-9]*(.[0-9]*)?
// and reports how many bytes it consumed. Exponents are not accepted.
func scanNumber(s string) (float64, int) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0
	}
	return v, i
}
