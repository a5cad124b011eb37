// Package anima compiles declarative animation scripts into small
// programs interpolating numeric values over time. A script is a set of
// named variables; each is a constant, an arithmetic expression over
// other variables and external context values, or a transition animating
// between a start and an end value along a timing curve.
package anima

import (
	"github.com/lumenwm/anima/compiler"
	"github.com/lumenwm/anima/config"
	"github.com/lumenwm/anima/vm"
)

// Output requests the memory slot of a named variable. After Compile,
// Slot is filled in, or set to -1 when the script does not declare the
// variable.
type Output struct {
	Name string
	Slot int
}

type options struct {
	context map[string]int
	outputs []Output
}

type Option func(*options)

// WithContext declares the external context values scripts may read,
// mapping each name to its offset in the vm.Context passed to Evaluate.
func WithContext(fields map[string]int) Option {
	return func(o *options) {
		o.context = fields
	}
}

// WithOutputs requests slot lookups for the named variables. The slice
// is updated in place.
func WithOutputs(outputs []Output) Option {
	return func(o *options) {
		o.outputs = outputs
	}
}

// Compile parses a YAML animation script and compiles it.
func Compile(src []byte, opts ...Option) (*vm.Program, error) {
	group, err := config.FromYAML(src)
	if err != nil {
		return nil, err
	}
	return CompileGroup(group, opts...)
}

// CompileGroup compiles an already parsed script.
func CompileGroup(group *config.Group, opts ...Option) (*vm.Program, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	program, err := compiler.Compile(group, o.context)
	if err != nil {
		return nil, err
	}
	for i := range o.outputs {
		slot, ok := program.SlotOf(o.outputs[i].Name)
		if !ok {
			slot = -1
		}
		o.outputs[i].Slot = slot
	}
	return program, nil
}
