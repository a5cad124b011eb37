// Package compiler turns an animation script, given as an ordered config
// group, into a VM program. Each variable is either a constant, an
// expression over other variables, or a transition section describing an
// interpolation over time. Variables are compiled in dependency order;
// cyclic references are reported with the chain of names involved.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumenwm/anima/config"
	"github.com/lumenwm/anima/parser"
	"github.com/lumenwm/anima/vm"
)

const (
	notCompiled = iota
	compiledOK
	inProgress
)

type varAlloc struct {
	name  string
	index int
	slot  int
}

type compileContext struct {
	group         *config.Group
	contextFields map[string]int

	vars      map[string]*varAlloc
	overrides map[string]int

	allocatedSlots int
	maxStack       int
	maxDuration    float64

	currentVar string
	compiled   []int

	frags []*fragment
	head  *fragment

	// tail is where the fragment of the next fully resolved variable is
	// attached. onceTail collects code that runs only during the first
	// evaluation; onceEndTail collects code that runs at the end of the
	// first evaluation, after every start value is in place.
	tail        **fragment
	onceTail    **fragment
	onceEndHead *fragment
	onceEndTail **fragment
}

// stackEntry is one variable on the compilation stack: its compiled
// fragment, where its successor attaches, and the unresolved
// dependencies it still waits on.
type stackEntry struct {
	entry *fragment
	exit  **fragment
	index int
	deps  []int
}

// Compile compiles an animation script. contextFields maps the names of
// external context values to their offsets in the evaluation context;
// it may be nil.
func Compile(group *config.Group, contextFields map[string]int) (*vm.Program, error) {
	n := group.Len()
	c := &compileContext{
		group:          group,
		contextFields:  contextFields,
		vars:           make(map[string]*varAlloc, n),
		overrides:      map[string]int{},
		allocatedSlots: n,
		maxStack:       1,
		compiled:       make([]int, n),
	}
	for i := 0; i < n; i++ {
		name := group.Entry(i).Name()
		c.vars[name] = &varAlloc{name: name, index: i, slot: i}
	}
	c.head = c.newFragment()
	c.onceTail = &c.head.onceNext
	c.tail = &c.head.next
	c.onceEndTail = &c.onceEndHead

	for i := 0; i < n; i++ {
		if c.compiled[i] != notCompiled {
			continue
		}
		if err := c.compileRecursive(i); err != nil {
			return nil, err
		}
	}

	if c.onceEndHead != nil {
		onceEnd := c.newFragment()
		*c.tail = onceEnd
		onceEnd.onceNext = c.onceEndHead
	}
	// The once chain falls through into the main chain.
	*c.onceTail = c.head.next

	c.pruneFragments()
	instructions := c.codegen()

	vars := make(map[string]vm.Variable, n)
	for name, v := range c.vars {
		vars[name] = vm.Variable{Slot: v.slot, Index: v.index}
	}
	program := vm.NewProgram(instructions, c.allocatedSlots, c.maxStack,
		c.maxDuration, vars, c.overrides)

	slog.Debug("compiled animation script",
		"line", group.Line(),
		"instructions", len(instructions),
		"max_duration", program.MaxDuration,
		"slots", program.NSlots,
		"stack_size", program.StackSize)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		for _, name := range program.VariableNames() {
			slot, _ := program.SlotOf(name)
			slog.Debug("variable mapping", "name", name, "slot", slot)
		}
	}
	return program, nil
}

// compileRecursive compiles the variable at index and everything it
// depends on, attaching fragments to the main chain in dependency order.
// Uses an explicit stack so cycles can be reported with the full chain.
func (c *compileContext) compileRecursive(index int) error {
	entry, err := c.compileOne(index)
	if err != nil {
		return err
	}
	c.compiled[index] = inProgress
	stack := []*stackEntry{entry}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		pushed := false
		for len(top.deps) > 0 && !pushed {
			dep := top.deps[len(top.deps)-1]
			top.deps = top.deps[:len(top.deps)-1]
			switch c.compiled[dep] {
			case compiledOK:
			case inProgress:
				return c.cycleError(stack, dep)
			default:
				depEntry, err := c.compileOne(dep)
				if err != nil {
					return err
				}
				c.compiled[dep] = inProgress
				stack = append(stack, depEntry)
				pushed = true
			}
		}
		if pushed {
			continue
		}
		*c.tail = top.entry
		c.tail = top.exit
		c.compiled[top.index] = compiledOK
		stack = stack[:len(stack)-1]
	}
	return nil
}

func (c *compileContext) compileOne(index int) (*stackEntry, error) {
	e := c.group.Entry(index)
	c.currentVar = e.Name()
	alloc := c.vars[e.Name()]

	var entry *stackEntry
	if v, ok := e.Number(); ok {
		entry = c.immStackEntry(v, alloc.slot, false)
	} else if s, ok := e.Str(); ok {
		var err error
		entry, err = c.expressionEntry(s, alloc.slot, false)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse expression at line %d. %w", e.Line(), err)
		}
	} else if g, ok := e.Group(); ok {
		var err error
		entry, err = c.transitionCompile(g, alloc.slot)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("Invalid variable %q, it must be either a number, "+
			"a string, or a config group defining a transition.", e.Name())
	}
	entry.index = index
	return entry, nil
}

// immStackEntry emits the constant into the once chain and returns an
// empty placeholder entry for dependency ordering.
func (c *compileContext) immStackEntry(v float64, slot int, allowOverride bool) *stackEntry {
	f := c.newFragment(
		vm.Instruction{Op: vm.OpImm, Imm: v},
		vm.Instruction{Op: storeOp(allowOverride), Slot: slot},
	)
	*c.onceTail = f
	c.onceTail = &f.next

	placeholder := c.newFragment()
	return &stackEntry{entry: placeholder, exit: &placeholder.next}
}

func (c *compileContext) expressionEntry(src string, slot int, allowOverride bool) (*stackEntry, error) {
	result, err := parser.ParseExpression(src, c)
	if err != nil {
		return nil, err
	}
	instrs := append(result.Instructions,
		vm.Instruction{Op: storeOp(allowOverride), Slot: slot})
	f := c.newFragment(instrs...)
	if result.MaxStack > c.maxStack {
		c.maxStack = result.MaxStack
	}
	return &stackEntry{entry: f, exit: &f.next, deps: result.Deps}, nil
}

func (c *compileContext) transitionCompile(t *config.Group, slot int) (*stackEntry, error) {
	timingStr := ""
	if e, ok := t.Lookup("timing"); ok {
		timingStr, ok = e.Str()
		if !ok {
			return nil, missingTiming(t)
		}
	} else {
		return nil, missingTiming(t)
	}
	crv, duration, delay, err := parser.ParseTiming(timingStr)
	if err != nil {
		return nil, fmt.Errorf("%w Line %d.", err, t.Line())
	}
	if duration+delay > c.maxDuration {
		c.maxDuration = duration + delay
	}

	reset := false
	if e, ok := t.Lookup("reset"); ok {
		if b, ok := e.Bool(); ok {
			reset = b
		}
	}

	startSlot := c.allocatedSlots
	endSlot := c.allocatedSlots + 1
	c.allocatedSlots += 2
	if !reset {
		c.overrides[c.currentVar] = startSlot
	}

	var start, end *stackEntry
	if e, ok := t.Lookup("start"); !ok {
		return nil, fmt.Errorf("Transition definition does not contain a start "+
			"value or expression. Line %d.", t.Line())
	} else if v, ok := e.Number(); ok {
		start = c.immStackEntry(v, startSlot, true)
	} else if s, ok := e.Str(); ok {
		start, err = c.expressionEntry(s, startSlot, !reset)
		if err != nil {
			return nil, fmt.Errorf("transition has an invalid start expression: %w Line %d.",
				err, t.Line())
		}
	} else {
		return nil, fmt.Errorf("Transition definition does not contain a start "+
			"value or expression. Line %d.", t.Line())
	}

	if e, ok := t.Lookup("end"); !ok {
		return nil, fmt.Errorf("Transition definition does not contain a end "+
			"value or expression. Line %d.", t.Line())
	} else if v, ok := e.Number(); ok {
		end = c.immStackEntry(v, endSlot, false)
	} else if s, ok := e.Str(); ok {
		end, err = c.expressionEntry(s, endSlot, false)
		if err != nil {
			return nil, fmt.Errorf("Transition has an invalid end expression: %w. Line %d",
				err, t.Line())
		}
	} else {
		return nil, fmt.Errorf("Transition definition does not contain a end "+
			"value or expression. Line %d.", t.Line())
	}

	// value = (end - start) * curve(elapsed) + start
	core := c.newFragment(
		vm.Instruction{Op: vm.OpLoad, Slot: endSlot},
		vm.Instruction{Op: vm.OpLoad, Slot: startSlot},
		vm.Instruction{Op: vm.OpOperator, Operator: vm.Sub},
		vm.Instruction{Op: vm.OpCurve, Curve: crv, Duration: duration, Delay: delay},
		vm.Instruction{Op: vm.OpOperator, Operator: vm.Mul},
		vm.Instruction{Op: vm.OpLoad, Slot: startSlot},
		vm.Instruction{Op: vm.OpOperator, Operator: vm.Add},
		vm.Instruction{Op: vm.OpStore, Slot: slot},
	)
	if c.maxStack < 2 {
		c.maxStack = 2
	}

	// The dependencies of the start value are the real dependencies of
	// this variable.
	entry := &stackEntry{deps: start.deps}
	next := &entry.entry
	if len(start.deps) > 0 {
		// The start expression runs in place, guarded by a once branch,
		// because its inputs are only valid here in dependency order.
		branch := c.newFragment()
		*next = branch
		branch.onceNext = start.entry

		phi := c.newFragment()
		*start.exit = phi
		branch.next = phi
		next = &phi.next
	} else {
		*c.onceTail = start.entry
		c.onceTail = start.exit
	}

	if len(end.deps) > 0 {
		// A dependent end value is computed at the end of the first
		// evaluation, when everything it reads has settled. Until then
		// the output holds the start value.
		*c.onceEndTail = end.entry
		c.onceEndTail = end.exit

		loadStore := c.newFragment(
			vm.Instruction{Op: vm.OpLoad, Slot: startSlot},
			vm.Instruction{Op: vm.OpStore, Slot: slot},
		)
		branch := c.newFragment()
		*next = branch
		branch.onceNext = loadStore
		branch.next = core

		phi := c.newFragment()
		loadStore.next = phi
		core.next = phi
		entry.exit = &phi.next
	} else {
		*c.onceTail = end.entry
		c.onceTail = end.exit

		*next = core
		entry.exit = &core.next
	}
	return entry, nil
}

func (c *compileContext) cycleError(stack []*stackEntry, dep int) error {
	start := len(stack) - 1
	for stack[start].index != dep {
		start--
	}
	var b strings.Builder
	for _, e := range stack[start:] {
		b.WriteString(c.group.Entry(e.index).Name())
		b.WriteString(" -> ")
	}
	b.WriteString(c.group.Entry(dep).Name())
	return fmt.Errorf("Cyclic references detected in animation script defined at line %d: %s",
		c.group.Line(), b.String())
}

func missingTiming(t *config.Group) error {
	return fmt.Errorf("Transition section does not contain a timing function. Line %d.", t.Line())
}

func storeOp(allowOverride bool) vm.Op {
	if allowOverride {
		return vm.OpStoreOverNaN
	}
	return vm.OpStore
}

// ResolveVariable implements parser.Resolver.
func (c *compileContext) ResolveVariable(name string) (slot, index int, ok bool) {
	v, ok := c.vars[name]
	if !ok {
		return 0, 0, false
	}
	return v.slot, v.index, true
}

// ResolveContext implements parser.Resolver.
func (c *compileContext) ResolveContext(name string) (offset int, ok bool) {
	offset, ok = c.contextFields[name]
	return offset, ok
}
