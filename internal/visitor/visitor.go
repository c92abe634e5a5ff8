package visitor

import "mapping-resolver/internal/naming"

// Unknown marks an index or offset the source data did not record.
const Unknown = -1

// Param locates a method parameter. LVIndex is the local variable slot,
// Ordinal the position in the descriptor; either may be Unknown.
type Param struct {
	LVIndex int
	Ordinal int
}

// Local locates a local variable. StartOp is the first instruction offset of
// its scope and LVTIndex its local variable table row; both may be Unknown.
type Local struct {
	LVIndex  int
	StartOp  int
	LVTIndex int
}

// Visitor is the root of a traversal.
type Visitor interface {
	VisitHeader(namespaces naming.Namespaces) error
	VisitClass(names naming.ClassNames) (ClassVisitor, error)
	VisitEnd() error
}

// CommentVisitor accepts the documentation attached to an element.
type CommentVisitor interface {
	VisitComment(comment string) error
}

// ClassVisitor receives the content of one class.
type ClassVisitor interface {
	CommentVisitor
	VisitMethod(names naming.MemberNames) (MethodVisitor, error)
	VisitField(names naming.MemberNames) (FieldVisitor, error)
}

// FieldVisitor receives the content of one field.
type FieldVisitor interface {
	CommentVisitor
}

// MethodVisitor receives the content of one method.
type MethodVisitor interface {
	CommentVisitor
	VisitParam(param Param, names naming.LocalNames) (ParamVisitor, error)
	VisitLocal(local Local, names naming.LocalNames) error
}

// ParamVisitor receives the content of one parameter.
type ParamVisitor interface {
	CommentVisitor
}

// Empty accepts everything and keeps walking into children.
type Empty struct{}

var (
	_ Visitor       = Empty{}
	_ ClassVisitor  = Empty{}
	_ MethodVisitor = Empty{}
)

func (Empty) VisitHeader(naming.Namespaces) error { return nil }

func (Empty) VisitClass(naming.ClassNames) (ClassVisitor, error) { return Empty{}, nil }

func (Empty) VisitEnd() error { return nil }

func (Empty) VisitComment(string) error { return nil }

func (Empty) VisitMethod(naming.MemberNames) (MethodVisitor, error) { return Empty{}, nil }

func (Empty) VisitField(naming.MemberNames) (FieldVisitor, error) { return Empty{}, nil }

func (Empty) VisitParam(Param, naming.LocalNames) (ParamVisitor, error) { return Empty{}, nil }

func (Empty) VisitLocal(Local, naming.LocalNames) error { return nil }
