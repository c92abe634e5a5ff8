package table

import (
	"slices"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/visitor"
)

// View is read-only access to a table or to a builder in progress.
type View interface {
	Namespaces() naming.Namespaces
	Accept(v visitor.Visitor) error
}

// Table is an immutable multi-namespace symbol table.
type Table struct {
	namespaces naming.Namespaces
	classes    []*classRow
	index      map[naming.Namespace]map[string]*classRow
}

var _ View = (*Table)(nil)

type classRow struct {
	names   naming.ClassNames
	comment string
	methods []*memberRow
	fields  []*memberRow
}

type memberRow struct {
	names   map[naming.Namespace]string
	desc    string
	descNs  naming.Namespace
	comment string
	params  []*paramRow
	locals  []*localRow
}

type paramRow struct {
	param   visitor.Param
	names   naming.LocalNames
	comment string
}

type localRow struct {
	local visitor.Local
	names naming.LocalNames
}

func newTable() *Table {
	return &Table{
		index: make(map[naming.Namespace]map[string]*classRow),
	}
}

// Empty returns a table without namespaces or rows.
func Empty() *Table {
	return newTable()
}

// Namespaces returns the table's namespaces in header order.
func (t *Table) Namespaces() naming.Namespaces {
	return slices.Clone(t.namespaces)
}

// HasNamespace reports whether ns is part of the table header.
func (t *Table) HasNamespace(ns naming.Namespace) bool {
	return t.namespaces.Contains(ns)
}

// Rows returns the number of rows of every kind.
func (t *Table) Rows() int {
	n := 0

	for _, c := range t.classes {
		n++

		for _, m := range c.methods {
			n += 1 + len(m.params) + len(m.locals)
		}

		n += len(c.fields)
	}

	return n
}

// Classes returns the number of class rows.
func (t *Table) Classes() int {
	return len(t.classes)
}

// ClassName looks up the name of a class in ns given its name in from.
func (t *Table) ClassName(from naming.Namespace, name string, ns naming.Namespace) (string, bool) {
	row := t.index[from][name]
	if row == nil {
		return "", false
	}

	v, ok := row.names[ns]

	return v, ok
}

// descriptor returns the member descriptor in ns, reconstructed from the
// recorded one when needed.
func (t *Table) descriptor(m *memberRow, ns naming.Namespace) string {
	if m.desc == "" || ns == m.descNs {
		return m.desc
	}

	return naming.RemapDescriptor(m.desc, func(name string) (string, bool) {
		return t.ClassName(m.descNs, name, ns)
	})
}

func (t *Table) memberNames(m *memberRow) naming.MemberNames {
	out := make(naming.MemberNames, len(m.names))
	for ns, name := range m.names {
		out[ns] = naming.Ident{Name: name, Desc: t.descriptor(m, ns)}
	}

	return out
}

// Accept walks the table in row order.
func (t *Table) Accept(v visitor.Visitor) error {
	if err := v.VisitHeader(t.Namespaces()); err != nil {
		return err
	}

	for _, c := range t.classes {
		if err := t.acceptClass(v, c); err != nil {
			return err
		}
	}

	return v.VisitEnd()
}

func (t *Table) acceptClass(v visitor.Visitor, c *classRow) error {
	cv, err := v.VisitClass(c.names.Clone())
	if err != nil || cv == nil {
		return err
	}

	if c.comment != "" {
		if err := cv.VisitComment(c.comment); err != nil {
			return err
		}
	}

	for _, m := range c.methods {
		if err := t.acceptMethod(cv, m); err != nil {
			return err
		}
	}

	for _, f := range c.fields {
		fv, err := cv.VisitField(t.memberNames(f))
		if err != nil {
			return err
		}

		if fv != nil && f.comment != "" {
			if err := fv.VisitComment(f.comment); err != nil {
				return err
			}
		}
	}

	return nil
}

func (t *Table) acceptMethod(cv visitor.ClassVisitor, m *memberRow) error {
	mv, err := cv.VisitMethod(t.memberNames(m))
	if err != nil || mv == nil {
		return err
	}

	if m.comment != "" {
		if err := mv.VisitComment(m.comment); err != nil {
			return err
		}
	}

	for _, p := range m.params {
		pv, err := mv.VisitParam(p.param, p.names.Clone())
		if err != nil {
			return err
		}

		if pv != nil && p.comment != "" {
			if err := pv.VisitComment(p.comment); err != nil {
				return err
			}
		}
	}

	for _, l := range m.locals {
		if err := mv.VisitLocal(l.local, l.names.Clone()); err != nil {
			return err
		}
	}

	return nil
}
