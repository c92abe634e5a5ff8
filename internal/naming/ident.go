package naming

import "maps"

// Ident identifies a method or field within its owning class.
// Desc is empty when the descriptor is unknown (e.g. srg fields).
type Ident struct {
	Name string
	Desc string
}

// String renders the identity as name+descriptor ("foo(I)V", "bar:I").
func (i Ident) String() string {
	switch {
	case i.Desc == "":
		return i.Name
	case IsMethodDescriptor(i.Desc):
		return i.Name + i.Desc
	default:
		return i.Name + ":" + i.Desc
	}
}

// ClassNames maps a namespace to a class internal name ("net/minecraft/Foo").
type ClassNames map[Namespace]string

// Clone returns a shallow copy.
func (c ClassNames) Clone() ClassNames {
	return maps.Clone(c)
}

// MemberNames maps a namespace to a member identity.
type MemberNames map[Namespace]Ident

// Clone returns a shallow copy.
func (m MemberNames) Clone() MemberNames {
	return maps.Clone(m)
}

// LocalNames maps a namespace to a parameter or local variable name.
type LocalNames map[Namespace]string

// Clone returns a shallow copy.
func (l LocalNames) Clone() LocalNames {
	return maps.Clone(l)
}
