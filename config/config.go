// Package config holds the ordered key/value tree animation scripts are
// compiled from. Entries remember declaration order and source line so
// dependency resolution and error messages stay deterministic.
package config

import "fmt"

type kind int

const (
	kindNumber kind = iota
	kindString
	kindBool
	kindGroup
)

// Entry is a single named value inside a Group.
type Entry struct {
	name  string
	kind  kind
	num   float64
	str   string
	b     bool
	group *Group
	line  int
}

func (e *Entry) Name() string { return e.name }

// Line is the 1-based source line the entry was declared on, or 0 when
// the source format carries no line information.
func (e *Entry) Line() int { return e.line }

// Number returns the entry's numeric value; ok is false for non-numbers.
func (e *Entry) Number() (float64, bool) {
	return e.num, e.kind == kindNumber
}

func (e *Entry) Str() (string, bool) {
	return e.str, e.kind == kindString
}

func (e *Entry) Bool() (bool, bool) {
	return e.b, e.kind == kindBool
}

func (e *Entry) Group() (*Group, bool) {
	return e.group, e.kind == kindGroup
}

func (e *Entry) String() string {
	switch e.kind {
	case kindNumber:
		return fmt.Sprintf("%s: %g", e.name, e.num)
	case kindString:
		return fmt.Sprintf("%s: %q", e.name, e.str)
	case kindBool:
		return fmt.Sprintf("%s: %v", e.name, e.b)
	default:
		return fmt.Sprintf("%s: {%d entries}", e.name, e.group.Len())
	}
}

// Group is an ordered collection of entries. Iteration order is
// declaration order; lookup by name is constant time.
type Group struct {
	entries []*Entry
	index   map[string]int
	line    int
}

func NewGroup() *Group {
	return &Group{index: map[string]int{}}
}

func (g *Group) Len() int { return len(g.entries) }

func (g *Group) Entry(i int) *Entry { return g.entries[i] }

func (g *Group) Lookup(name string) (*Entry, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.entries[i], true
}

// Line is the source line of the group's first entry.
func (g *Group) Line() int { return g.line }

func (g *Group) add(e *Entry) {
	if i, ok := g.index[e.name]; ok {
		g.entries[i] = e
		return
	}
	if g.line == 0 && len(g.entries) == 0 {
		g.line = e.line
	}
	g.index[e.name] = len(g.entries)
	g.entries = append(g.entries, e)
}

func (g *Group) AddNumber(name string, v float64, line int) {
	g.add(&Entry{name: name, kind: kindNumber, num: v, line: line})
}

func (g *Group) AddString(name, v string, line int) {
	g.add(&Entry{name: name, kind: kindString, str: v, line: line})
}

func (g *Group) AddBool(name string, v bool, line int) {
	g.add(&Entry{name: name, kind: kindBool, b: v, line: line})
}

func (g *Group) AddGroup(name string, v *Group, line int) {
	g.add(&Entry{name: name, kind: kindGroup, group: v, line: line})
}
