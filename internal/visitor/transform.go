package visitor

import (
	"fmt"

	"mapping-resolver/internal/naming"
)

// Transform inspects or rewrites elements on their way to a visitor.
// Returning false from an element method drops the element and its subtree.
//
// Owner and method arguments carry the names as this transform produced
// them, so a transform always sees a consistent view of its own output.
type Transform interface {
	Header(namespaces naming.Namespaces) (naming.Namespaces, error)
	Class(names naming.ClassNames) (naming.ClassNames, bool)
	Method(owner naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool)
	Field(owner naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool)
	Param(method naming.MemberNames, param Param, names naming.LocalNames) (naming.LocalNames, bool)
	Local(method naming.MemberNames, local Local, names naming.LocalNames) (naming.LocalNames, bool)
}

// Keyed transforms describe their configuration as a string. Equal keys
// mean equal rewrites.
type Keyed interface {
	Key() string
}

// Key returns the key of t, or its type name when t is not Keyed.
func Key(t Transform) string {
	if k, ok := t.(Keyed); ok {
		return k.Key()
	}

	return fmt.Sprintf("%T", t)
}

// Identity passes everything through. Embed it to override single methods.
type Identity struct{}

func (Identity) Header(namespaces naming.Namespaces) (naming.Namespaces, error) {
	return namespaces, nil
}

func (Identity) Class(names naming.ClassNames) (naming.ClassNames, bool) { return names, true }

func (Identity) Method(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return names, true
}

func (Identity) Field(_ naming.ClassNames, names naming.MemberNames) (naming.MemberNames, bool) {
	return names, true
}

func (Identity) Param(_ naming.MemberNames, _ Param, names naming.LocalNames) (naming.LocalNames, bool) {
	return names, true
}

func (Identity) Local(_ naming.MemberNames, _ Local, names naming.LocalNames) (naming.LocalNames, bool) {
	return names, true
}

// Apply places chain in front of next. Elements pass the transforms left to
// right before reaching next.
func Apply(next Visitor, chain ...Transform) Visitor {
	if len(chain) == 0 {
		return next
	}

	return &chained{next: next, chain: chain}
}

type chained struct {
	next  Visitor
	chain []Transform
}

func (c *chained) VisitHeader(namespaces naming.Namespaces) error {
	var err error
	for _, t := range c.chain {
		namespaces, err = t.Header(namespaces)
		if err != nil {
			return err
		}
	}

	return c.next.VisitHeader(namespaces)
}

func (c *chained) VisitClass(names naming.ClassNames) (ClassVisitor, error) {
	owners := make([]naming.ClassNames, len(c.chain))

	for i, t := range c.chain {
		var ok bool

		names, ok = t.Class(names)
		if !ok {
			return nil, nil
		}

		owners[i] = names
	}

	cv, err := c.next.VisitClass(names)
	if err != nil || cv == nil {
		return nil, err
	}

	return &chainedClass{next: cv, chain: c.chain, owners: owners}, nil
}

func (c *chained) VisitEnd() error {
	return c.next.VisitEnd()
}

type chainedClass struct {
	next   ClassVisitor
	chain  []Transform
	owners []naming.ClassNames
}

func (c *chainedClass) VisitComment(comment string) error {
	return c.next.VisitComment(comment)
}

func (c *chainedClass) VisitMethod(names naming.MemberNames) (MethodVisitor, error) {
	methods := make([]naming.MemberNames, len(c.chain))

	for i, t := range c.chain {
		var ok bool

		names, ok = t.Method(c.owners[i], names)
		if !ok {
			return nil, nil
		}

		methods[i] = names
	}

	mv, err := c.next.VisitMethod(names)
	if err != nil || mv == nil {
		return nil, err
	}

	return &chainedMethod{next: mv, chain: c.chain, methods: methods}, nil
}

func (c *chainedClass) VisitField(names naming.MemberNames) (FieldVisitor, error) {
	for i, t := range c.chain {
		var ok bool

		names, ok = t.Field(c.owners[i], names)
		if !ok {
			return nil, nil
		}
	}

	return c.next.VisitField(names)
}

type chainedMethod struct {
	next    MethodVisitor
	chain   []Transform
	methods []naming.MemberNames
}

func (c *chainedMethod) VisitComment(comment string) error {
	return c.next.VisitComment(comment)
}

func (c *chainedMethod) VisitParam(param Param, names naming.LocalNames) (ParamVisitor, error) {
	for i, t := range c.chain {
		var ok bool

		names, ok = t.Param(c.methods[i], param, names)
		if !ok {
			return nil, nil
		}
	}

	return c.next.VisitParam(param, names)
}

func (c *chainedMethod) VisitLocal(local Local, names naming.LocalNames) error {
	for i, t := range c.chain {
		var ok bool

		names, ok = t.Local(c.methods[i], local, names)
		if !ok {
			return nil
		}
	}

	return c.next.VisitLocal(local, names)
}
