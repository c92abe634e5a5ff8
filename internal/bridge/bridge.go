// Package bridge streams renames between two namespaces of a table to a
// bytecode remapper.
package bridge

import (
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// UnknownStart marks a local whose scope start offset is not recorded.
const UnknownStart = visitor.Unknown

// Member identifies a method or field by its source owner, name and descriptor.
type Member struct {
	Owner string
	Name  string
	Desc  string
}

func (m Member) String() string {
	return m.Owner + "." + naming.Ident{Name: m.Name, Desc: m.Desc}.String()
}

// Acceptor receives renames. Classes arrive before their members and
// members before their params and locals.
type Acceptor interface {
	AcceptClass(src, dst string) error
	AcceptMethod(m Member, dst string) error
	AcceptField(m Member, dst string) error
	AcceptParam(method Member, lvIndex int, dst string) error
	AcceptLocal(method Member, lvIndex, startOp int, dst string) error
}

// Emitter feeds the renames from src to dst to acceptors.
type Emitter struct {
	t           *table.Table
	src, dst    naming.Namespace
	remapLocals bool
}

// New checks both namespaces before anything is emitted.
func New(t *table.Table, src, dst naming.Namespace, remapLocals bool) (*Emitter, error) {
	for _, ns := range []naming.Namespace{src, dst} {
		if !t.HasNamespace(ns) {
			return nil, table.NewUnknownNamespaceError(ns, t.Namespaces())
		}
	}

	return &Emitter{t: t, src: src, dst: dst, remapLocals: remapLocals}, nil
}

// Apply emits every rename to a. Rows missing either namespace are skipped.
// Params also need a local variable index. Params and locals are emitted
// only when local remapping is enabled.
func (e *Emitter) Apply(a Acceptor) error {
	return e.t.Accept(&emitter{e: e, a: a})
}

type emitter struct {
	visitor.Empty
	e *Emitter
	a Acceptor
}

func (v *emitter) VisitClass(names naming.ClassNames) (visitor.ClassVisitor, error) {
	src, ok := names[v.e.src]
	if !ok {
		return nil, nil
	}

	if dst, ok := names[v.e.dst]; ok {
		if err := v.a.AcceptClass(src, dst); err != nil {
			return nil, err
		}
	}

	return &classEmitter{e: v.e, a: v.a, owner: src}, nil
}

type classEmitter struct {
	visitor.Empty
	e     *Emitter
	a     Acceptor
	owner string
}

func (c *classEmitter) member(names naming.MemberNames) (Member, string, bool) {
	src, ok := names[c.e.src]
	if !ok {
		return Member{}, "", false
	}

	m := Member{Owner: c.owner, Name: src.Name, Desc: src.Desc}
	dst, ok := names[c.e.dst]

	return m, dst.Name, ok
}

func (c *classEmitter) VisitMethod(names naming.MemberNames) (visitor.MethodVisitor, error) {
	m, dst, ok := c.member(names)
	if m.Name == "" {
		return nil, nil
	}

	if ok {
		if err := c.a.AcceptMethod(m, dst); err != nil {
			return nil, err
		}
	}

	if !c.e.remapLocals {
		return nil, nil
	}

	return &methodEmitter{e: c.e, a: c.a, method: m}, nil
}

func (c *classEmitter) VisitField(names naming.MemberNames) (visitor.FieldVisitor, error) {
	if m, dst, ok := c.member(names); ok {
		if err := c.a.AcceptField(m, dst); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

type methodEmitter struct {
	visitor.Empty
	e      *Emitter
	a      Acceptor
	method Member
}

func (m *methodEmitter) rename(names naming.LocalNames) (string, bool) {
	if _, ok := names[m.e.src]; !ok {
		return "", false
	}

	dst, ok := names[m.e.dst]

	return dst, ok
}

func (m *methodEmitter) VisitParam(param visitor.Param, names naming.LocalNames) (visitor.ParamVisitor, error) {
	if dst, ok := m.rename(names); ok && param.LVIndex != visitor.Unknown {
		if err := m.a.AcceptParam(m.method, param.LVIndex, dst); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func (m *methodEmitter) VisitLocal(local visitor.Local, names naming.LocalNames) error {
	if dst, ok := m.rename(names); ok {
		return m.a.AcceptLocal(m.method, local.LVIndex, local.StartOp, dst)
	}

	return nil
}
