package visitor

import (
	"fmt"
	"strings"

	"mapping-resolver/internal/naming"
)

// Recorder records a traversal as readable lines. It is meant for tests and
// debugging output.
type Recorder struct {
	Lines []string

	namespaces naming.Namespaces
}

var _ Visitor = (*Recorder)(nil)

func (r *Recorder) VisitHeader(namespaces naming.Namespaces) error {
	r.namespaces = namespaces
	r.Lines = append(r.Lines, "header "+strings.Join(namespaces.Strings(), ","))

	return nil
}

func (r *Recorder) VisitClass(names naming.ClassNames) (ClassVisitor, error) {
	r.Lines = append(r.Lines, "class "+r.format(func(ns naming.Namespace) (string, bool) {
		v, ok := names[ns]
		return v, ok
	}))

	return recorderNode{r}, nil
}

func (r *Recorder) VisitEnd() error {
	r.Lines = append(r.Lines, "end")
	return nil
}

func (r *Recorder) format(get func(naming.Namespace) (string, bool)) string {
	parts := make([]string, 0, len(r.namespaces))

	for _, ns := range r.namespaces {
		if v, ok := get(ns); ok {
			parts = append(parts, string(ns)+"="+v)
		}
	}

	return strings.Join(parts, " ")
}

func (r *Recorder) member(kind string, names naming.MemberNames) {
	r.Lines = append(r.Lines, kind+" "+r.format(func(ns naming.Namespace) (string, bool) {
		v, ok := names[ns]
		return v.String(), ok
	}))
}

func (r *Recorder) local(prefix string, names naming.LocalNames) {
	r.Lines = append(r.Lines, prefix+" "+r.format(func(ns naming.Namespace) (string, bool) {
		v, ok := names[ns]
		return v, ok
	}))
}

type recorderNode struct {
	r *Recorder
}

func (n recorderNode) VisitComment(comment string) error {
	n.r.Lines = append(n.r.Lines, "comment "+comment)
	return nil
}

func (n recorderNode) VisitMethod(names naming.MemberNames) (MethodVisitor, error) {
	n.r.member("method", names)
	return n, nil
}

func (n recorderNode) VisitField(names naming.MemberNames) (FieldVisitor, error) {
	n.r.member("field", names)
	return n, nil
}

func (n recorderNode) VisitParam(param Param, names naming.LocalNames) (ParamVisitor, error) {
	n.r.local(fmt.Sprintf("param %d/%d", param.LVIndex, param.Ordinal), names)
	return n, nil
}

func (n recorderNode) VisitLocal(local Local, names naming.LocalNames) error {
	n.r.local(fmt.Sprintf("local %d/%d/%d", local.LVIndex, local.StartOp, local.LVTIndex), names)
	return nil
}
