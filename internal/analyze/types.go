package analyze

import (
	"sort"

	"mapping-resolver/internal/common"
)

// Access holds JVM access flags.
type Access uint16

const (
	AccPublic    Access = 0x0001
	AccPrivate   Access = 0x0002
	AccProtected Access = 0x0004
	AccStatic    Access = 0x0008
	AccFinal     Access = 0x0010
	AccBridge    Access = 0x0040 // methods only
	AccInterface Access = 0x0200
	AccAbstract  Access = 0x0400
	AccSynthetic Access = 0x1000
)

// Has reports whether every flag in f is set.
func (a Access) Has(f Access) bool {
	return a&f == f
}

// MemberKind distinguishes fields from methods.
type MemberKind int

const (
	MemberUnknown MemberKind = iota
	MemberField
	MemberMethod
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberMethod:
		return "method"
	default:
		return common.UnknownStr
	}
}

// Member describes a field or method.
type Member struct {
	Kind      MemberKind
	Owner     string // internal name of the declaring class
	Name      string
	Desc      string
	Access    Access
	Inherited bool // declared by an ancestor, not by the queried class
}

// Key identifies the member inside its class.
func (m Member) Key() string {
	return m.Name + m.Desc
}

// Initializer reports whether the member is a constructor or class initializer.
func (m Member) Initializer() bool {
	return m.Kind == MemberMethod && (m.Name == "<init>" || m.Name == "<clinit>")
}

// ClassInfo describes one loaded class.
type ClassInfo struct {
	Name       string // internal name, e.g. "net/minecraft/Block"
	Super      string // empty for java/lang/Object and module-info
	Interfaces []string
	Access     Access
	Fields     []Member
	Methods    []Member
}

// Hierarchy is the direct supertypes of a class.
type Hierarchy struct {
	Super      string
	Interfaces []string
}

// Supertypes returns the superclass (when set) followed by the interfaces.
func (h Hierarchy) Supertypes() []string {
	out := make([]string, 0, len(h.Interfaces)+1)
	if h.Super != "" {
		out = append(out, h.Super)
	}

	return append(out, h.Interfaces...)
}

// Ancestor is a supertype found while walking a hierarchy.
type Ancestor struct {
	Name     string
	Distance int
}

// ClassGraph holds every loaded class keyed by internal name.
type ClassGraph struct {
	classes map[string]*ClassInfo
}

// NewClassGraph creates an empty ClassGraph.
func NewClassGraph() *ClassGraph {
	return &ClassGraph{classes: make(map[string]*ClassInfo)}
}

// Add registers a class, replacing an earlier one with the same name.
func (g *ClassGraph) Add(c *ClassInfo) {
	g.classes[c.Name] = c
}

// Len returns the number of loaded classes.
func (g *ClassGraph) Len() int {
	return len(g.classes)
}

// Class returns the class with the given internal name.
func (g *ClassGraph) Class(name string) (*ClassInfo, bool) {
	c, ok := g.classes[name]
	return c, ok
}

// Classes returns the internal names of every loaded class in sorted order.
func (g *ClassGraph) Classes() []string {
	names := make([]string, 0, len(g.classes))
	for name := range g.classes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// HierarchyOf returns the direct supertypes of a loaded class.
func (g *ClassGraph) HierarchyOf(name string) (Hierarchy, bool) {
	c, ok := g.classes[name]
	if !ok {
		return Hierarchy{}, false
	}

	return Hierarchy{Super: c.Super, Interfaces: append([]string(nil), c.Interfaces...)}, true
}

// Ancestors walks the supertypes of name breadth first, superclass before
// interfaces in declaration order. Types outside the graph are reported but
// not expanded. Each ancestor appears once, at its shortest distance.
func (g *ClassGraph) Ancestors(name string) []Ancestor {
	var out []Ancestor

	seen := map[string]bool{name: true}
	queue := []Ancestor{{Name: name}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		h, ok := g.HierarchyOf(cur.Name)
		if !ok {
			continue
		}

		for _, sup := range h.Supertypes() {
			if seen[sup] {
				continue
			}

			seen[sup] = true
			next := Ancestor{Name: sup, Distance: cur.Distance + 1}
			out = append(out, next)
			queue = append(queue, next)
		}
	}

	return out
}

// MembersOf returns the members declared by name followed by the members it
// inherits from ancestors inside the graph. Inherited members hidden by a
// nearer declaration with the same name and descriptor are omitted, as are
// private members and initializers of ancestors.
func (g *ClassGraph) MembersOf(name string) []Member {
	c, ok := g.classes[name]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	out := make([]Member, 0, len(c.Fields)+len(c.Methods))

	add := func(m Member, inherited bool) {
		key := m.Kind.String() + " " + m.Key()
		if seen[key] {
			return
		}

		seen[key] = true
		m.Inherited = inherited
		out = append(out, m)
	}

	for _, m := range c.Fields {
		add(m, false)
	}

	for _, m := range c.Methods {
		add(m, false)
	}

	for _, anc := range g.Ancestors(name) {
		a, ok := g.classes[anc.Name]
		if !ok {
			continue
		}

		for _, m := range append(append([]Member(nil), a.Fields...), a.Methods...) {
			if m.Access.Has(AccPrivate) || m.Initializer() {
				continue
			}

			add(m, true)
		}
	}

	return out
}
