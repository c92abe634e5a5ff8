package visitor

import (
	"fmt"
	"slices"
	"strings"

	"mapping-resolver/internal/naming"
)

// RenameNamespaces renames namespaces simultaneously, so swapping two
// namespaces is allowed. Renaming two namespaces onto the same name fails.
type RenameNamespaces struct {
	Renames map[naming.Namespace]naming.Namespace
}

func (r RenameNamespaces) rename(ns naming.Namespace) naming.Namespace {
	if to, ok := r.Renames[ns]; ok {
		return to
	}

	return ns
}

func (r RenameNamespaces) Header(namespaces naming.Namespaces) (naming.Namespaces, error) {
	out := make(naming.Namespaces, 0, len(namespaces))

	for _, ns := range namespaces {
		to := r.rename(ns)
		if out.Contains(to) {
			return nil, fmt.Errorf("renaming %q onto %q collides with an existing namespace", ns, to)
		}

		out = append(out, to)
	}

	return out, nil
}

func (r RenameNamespaces) Class(names naming.ClassNames) (naming.ClassNames, bool) {
	return renameKeys(names, r.rename), true
}

func (r RenameNamespaces) Method(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return renameKeys(names, r.rename), true
}

func (r RenameNamespaces) Field(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return renameKeys(names, r.rename), true
}

func (r RenameNamespaces) Param(_ naming.MemberNames, _ Param, names naming.LocalNames) (naming.LocalNames, bool) {
	return renameKeys(names, r.rename), true
}

func (r RenameNamespaces) Local(_ naming.MemberNames, _ Local, names naming.LocalNames) (naming.LocalNames, bool) {
	return renameKeys(names, r.rename), true
}

func renameKeys[M ~map[naming.Namespace]V, V any](m M, rename func(naming.Namespace) naming.Namespace) M {
	if m == nil {
		return nil
	}

	out := make(M, len(m))
	for k, v := range m {
		out[rename(k)] = v
	}

	return out
}

// CopyClassNames fills the To namespace of a class with its From name when
// the class has a From name and no To name yet.
type CopyClassNames struct {
	Identity

	From naming.Namespace
	To   naming.Namespace
}

func (c CopyClassNames) Header(namespaces naming.Namespaces) (naming.Namespaces, error) {
	return namespaces.With(c.To), nil
}

func (c CopyClassNames) Class(names naming.ClassNames) (naming.ClassNames, bool) {
	from, ok := names[c.From]
	if !ok {
		return names, true
	}

	if _, exists := names[c.To]; exists {
		return names, true
	}

	out := names.Clone()
	out[c.To] = from

	return out, true
}

// ReplaceClassNames replaces Old with New in the class names of one
// namespace, e.g. the "__" nesting marker some sources use instead of "$".
type ReplaceClassNames struct {
	Identity

	Namespace naming.Namespace
	Old       string
	New       string
}

func (r ReplaceClassNames) Class(names naming.ClassNames) (naming.ClassNames, bool) {
	name, ok := names[r.Namespace]
	if !ok || !strings.Contains(name, r.Old) {
		return names, true
	}

	out := names.Clone()
	out[r.Namespace] = strings.ReplaceAll(name, r.Old, r.New)

	return out, true
}

// DropNamespaces removes namespaces from the header and every element.
type DropNamespaces struct {
	Namespaces naming.Namespaces
}

func (d DropNamespaces) Header(namespaces naming.Namespaces) (naming.Namespaces, error) {
	return namespaces.Without(d.Namespaces...), nil
}

func (d DropNamespaces) Class(names naming.ClassNames) (naming.ClassNames, bool) {
	return dropKeys(names, d.Namespaces), true
}

func (d DropNamespaces) Method(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return dropKeys(names, d.Namespaces), true
}

func (d DropNamespaces) Field(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return dropKeys(names, d.Namespaces), true
}

func (d DropNamespaces) Param(_ naming.MemberNames, _ Param, names naming.LocalNames) (naming.LocalNames, bool) {
	return dropKeys(names, d.Namespaces), true
}

func (d DropNamespaces) Local(_ naming.MemberNames, _ Local, names naming.LocalNames) (naming.LocalNames, bool) {
	return dropKeys(names, d.Namespaces), true
}

func dropKeys[M ~map[naming.Namespace]V, V any](m M, drop naming.Namespaces) M {
	hit := false
	for _, ns := range drop {
		if _, ok := m[ns]; ok {
			hit = true
			break
		}
	}

	if !hit {
		return m
	}

	out := make(M, len(m))
	for k, v := range m {
		if !drop.Contains(k) {
			out[k] = v
		}
	}

	return out
}

// ClassesOnly keeps classes and drops every member.
type ClassesOnly struct {
	Identity
}

func (ClassesOnly) Method(naming.ClassNames, naming.MemberNames) (naming.MemberNames, bool) {
	return nil, false
}

func (ClassesOnly) Field(naming.ClassNames, naming.MemberNames) (naming.MemberNames, bool) {
	return nil, false
}

// KeepNamespaces drops every namespace that is not listed. The header keeps
// its original order.
type KeepNamespaces struct {
	Namespaces naming.Namespaces
}

func (k KeepNamespaces) Header(namespaces naming.Namespaces) (naming.Namespaces, error) {
	return namespaces.Intersect(k.Namespaces), nil
}

func (k KeepNamespaces) Class(names naming.ClassNames) (naming.ClassNames, bool) {
	return keepKeys(names, k.Namespaces), true
}

func (k KeepNamespaces) Method(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return keepKeys(names, k.Namespaces), true
}

func (k KeepNamespaces) Field(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return keepKeys(names, k.Namespaces), true
}

func (k KeepNamespaces) Param(_ naming.MemberNames, _ Param, names naming.LocalNames) (naming.LocalNames, bool) {
	return keepKeys(names, k.Namespaces), true
}

func (k KeepNamespaces) Local(_ naming.MemberNames, _ Local, names naming.LocalNames) (naming.LocalNames, bool) {
	return keepKeys(names, k.Namespaces), true
}

func keepKeys[M ~map[naming.Namespace]V, V any](m M, keep naming.Namespaces) M {
	out := make(M, len(m))
	for k, v := range m {
		if keep.Contains(k) {
			out[k] = v
		}
	}

	return out
}

func (r RenameNamespaces) Key() string {
	pairs := make([]string, 0, len(r.Renames))
	for from, to := range r.Renames {
		pairs = append(pairs, string(from)+">"+string(to))
	}

	slices.Sort(pairs)

	return "rename-namespaces:" + strings.Join(pairs, ",")
}

func (c CopyClassNames) Key() string {
	return "copy-class-names:" + string(c.From) + ">" + string(c.To)
}

func (r ReplaceClassNames) Key() string {
	return fmt.Sprintf("replace-class-names:%s:%q:%q", r.Namespace, r.Old, r.New)
}

func (d DropNamespaces) Key() string {
	return "drop-namespaces:" + strings.Join(d.Namespaces.Strings(), ",")
}

func (k KeepNamespaces) Key() string {
	return "keep-namespaces:" + strings.Join(k.Namespaces.Strings(), ",")
}

func (ClassesOnly) Key() string { return "classes-only" }
