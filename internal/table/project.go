package table

import (
	"fmt"

	"mapping-resolver/internal/naming"
)

// ElementKind identifies the row kind of a projected pair.
type ElementKind int

const (
	KindClass ElementKind = iota
	KindMethod
	KindField
	KindParam
	KindLocal
)

func (k ElementKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	case KindParam:
		return "param"
	case KindLocal:
		return "local"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Pair is one row projected onto two namespaces.
type Pair struct {
	Kind ElementKind
	// Owner is the source name of the enclosing class for members and
	// "class.method+desc" for params and locals.
	Owner string
	From  naming.Ident
	To    naming.Ident
}

// Project returns a pair for every row named in both src and dst.
func (t *Table) Project(src, dst naming.Namespace) ([]Pair, error) {
	for _, ns := range []naming.Namespace{src, dst} {
		if !t.namespaces.Contains(ns) {
			return nil, NewUnknownNamespaceError(ns, t.Namespaces())
		}
	}

	var out []Pair

	for _, c := range t.classes {
		from, hasFrom := c.names[src]
		if to, ok := c.names[dst]; hasFrom && ok {
			out = append(out, Pair{Kind: KindClass, From: naming.Ident{Name: from}, To: naming.Ident{Name: to}})
		}

		if !hasFrom {
			continue
		}

		for _, m := range c.methods {
			out = t.projectMember(out, KindMethod, from, m, src, dst)

			if _, ok := m.names[src]; !ok {
				continue
			}

			owner := from + "." + naming.Ident{Name: m.names[src], Desc: t.descriptor(m, src)}.String()

			for _, p := range m.params {
				if a, b, ok := both(p.names, src, dst); ok {
					out = append(out, Pair{Kind: KindParam, Owner: owner, From: naming.Ident{Name: a}, To: naming.Ident{Name: b}})
				}
			}

			for _, l := range m.locals {
				if a, b, ok := both(l.names, src, dst); ok {
					out = append(out, Pair{Kind: KindLocal, Owner: owner, From: naming.Ident{Name: a}, To: naming.Ident{Name: b}})
				}
			}
		}

		for _, f := range c.fields {
			out = t.projectMember(out, KindField, from, f, src, dst)
		}
	}

	return out, nil
}

func (t *Table) projectMember(out []Pair, kind ElementKind, owner string, m *memberRow, src, dst naming.Namespace) []Pair {
	a, b, ok := both(m.names, src, dst)
	if !ok {
		return out
	}

	return append(out, Pair{
		Kind:  kind,
		Owner: owner,
		From:  naming.Ident{Name: a, Desc: t.descriptor(m, src)},
		To:    naming.Ident{Name: b, Desc: t.descriptor(m, dst)},
	})
}

func both[M ~map[naming.Namespace]string](names M, src, dst naming.Namespace) (string, string, bool) {
	a, ok := names[src]
	if !ok {
		return "", "", false
	}

	b, ok := names[dst]

	return a, b, ok
}
