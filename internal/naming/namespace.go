package naming

import (
	"slices"
	"strings"
)

// Namespace names one coordinate system of a mapping table.
type Namespace string

// Common namespaces.
const (
	Official       Namespace = "official"
	ClientOfficial Namespace = "clientOfficial"
	ServerOfficial Namespace = "serverOfficial"
)

// String returns the namespace name.
func (n Namespace) String() string {
	return string(n)
}

// Namespaces is an ordered list of unique namespaces.
type Namespaces []Namespace

// NewNamespaces builds a Namespaces list from plain names, dropping duplicates
// and empty names while keeping the first occurrence order.
func NewNamespaces(names ...string) Namespaces {
	out := make(Namespaces, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}

		out = out.With(Namespace(n))
	}

	return out
}

// Contains reports whether ns is in the list.
func (l Namespaces) Contains(ns Namespace) bool {
	return slices.Contains(l, ns)
}

// Index returns the position of ns, or -1.
func (l Namespaces) Index(ns Namespace) int {
	return slices.Index(l, ns)
}

// With returns the list with ns appended if it is not present yet.
func (l Namespaces) With(ns Namespace) Namespaces {
	if l.Contains(ns) {
		return l
	}

	return append(l, ns)
}

// Union appends every namespace of other that is not present yet.
func (l Namespaces) Union(other Namespaces) Namespaces {
	out := slices.Clone(l)
	for _, ns := range other {
		out = out.With(ns)
	}

	return out
}

// Without returns a copy of the list without the given namespaces.
func (l Namespaces) Without(drop ...Namespace) Namespaces {
	out := make(Namespaces, 0, len(l))
	for _, ns := range l {
		if !slices.Contains(drop, ns) {
			out = append(out, ns)
		}
	}

	return out
}

// Intersect returns namespaces of l that are also in other, in l's order.
func (l Namespaces) Intersect(other Namespaces) Namespaces {
	out := make(Namespaces, 0, len(l))
	for _, ns := range l {
		if other.Contains(ns) {
			out = append(out, ns)
		}
	}

	return out
}

// Strings returns the plain names.
func (l Namespaces) Strings() []string {
	out := make([]string, len(l))
	for i, ns := range l {
		out[i] = string(ns)
	}

	return out
}

// String joins the names with commas.
func (l Namespaces) String() string {
	return strings.Join(l.Strings(), ", ")
}
