package format

import (
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// fragment collects parsed rows. Rows are correlated on the first namespace,
// so member lines may revisit their class at any time.
type fragment struct {
	format Format
	file   string
	b      *table.Builder
	v      visitor.Visitor
	line   int

	anchor   naming.Namespace
	declared map[string]bool
}

func newFragment(format Format, f File, namespaces naming.Namespaces) (*fragment, error) {
	frag := &fragment{format: format, file: f.Name, b: table.NewBuilder(), declared: make(map[string]bool)}
	if len(namespaces) > 0 {
		frag.anchor = namespaces[0]
	}

	frag.v = frag.b.Merger(frag.anchor, table.MergeOptions{Source: f.Name})
	if err := frag.v.VisitHeader(namespaces); err != nil {
		return nil, frag.wrap(err)
	}

	return frag, nil
}

func (f *fragment) fail(reason string) error {
	return &ParseError{Format: f.format, File: f.file, Line: f.line, Reason: reason}
}

func (f *fragment) wrap(err error) error {
	if err == nil {
		return nil
	}

	return &ParseError{Format: f.format, File: f.file, Line: f.line, Err: err}
}

func (f *fragment) class(names naming.ClassNames) (visitor.ClassVisitor, error) {
	cv, err := f.v.VisitClass(names)
	if err != nil {
		return nil, f.wrap(err)
	}

	if key, ok := names[f.anchor]; ok {
		f.declared[key] = true
	}

	return cv, nil
}

// owner returns the visitor of a class referenced by a member line. Classes
// seen before are revisited by their anchor name only.
func (f *fragment) owner(names naming.ClassNames) (visitor.ClassVisitor, error) {
	if key := names[f.anchor]; f.declared[key] {
		return f.class(naming.ClassNames{f.anchor: key})
	}

	return f.class(names)
}

func (f *fragment) method(cv visitor.ClassVisitor, names naming.MemberNames) (visitor.MethodVisitor, error) {
	mv, err := cv.VisitMethod(names)
	return mv, f.wrap(err)
}

func (f *fragment) field(cv visitor.ClassVisitor, names naming.MemberNames) (visitor.FieldVisitor, error) {
	fv, err := cv.VisitField(names)
	return fv, f.wrap(err)
}

func (f *fragment) build() (*table.Table, error) {
	if err := f.v.VisitEnd(); err != nil {
		return nil, f.wrap(err)
	}

	t, err := f.b.Build()

	return t, f.wrap(err)
}

// lines splits data into lines without line terminators.
func lines(data []byte) []string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	out := strings.Split(text, "\n")

	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}

	for i, l := range out {
		out[i] = strings.TrimSuffix(l, "\r")
	}

	return out
}

// firstLine returns the first line that is neither blank nor a comment.
func firstLine(data []byte, comment string) string {
	for _, l := range lines(head(data)) {
		if strings.TrimSpace(l) == "" || (comment != "" && strings.HasPrefix(strings.TrimSpace(l), comment)) {
			continue
		}

		return l
	}

	return ""
}

// head limits sniffing to the start of a file.
func head(data []byte) []byte {
	const limit = 4096
	if len(data) <= limit {
		return data
	}

	return data[:limit]
}

// pairNames builds two-namespace names, leaving out empty values.
func pairNames(namespaces naming.Namespaces, values ...string) naming.ClassNames {
	out := make(naming.ClassNames, len(values))
	for i, v := range values {
		if v != "" && i < len(namespaces) {
			out[namespaces[i]] = v
		}
	}

	return out
}

func memberNames(namespaces naming.Namespaces, desc string, values ...string) naming.MemberNames {
	out := make(naming.MemberNames, len(values))
	for i, v := range values {
		if v == "" || i >= len(namespaces) {
			continue
		}

		id := naming.Ident{Name: v}
		if i == 0 {
			id.Desc = desc
		}

		out[namespaces[i]] = id
	}

	return out
}

// splitOwner splits "owner/name" at the last slash.
func splitOwner(s string) (string, string, bool) {
	i := strings.LastIndexByte(s, '/')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}

	return s[:i], s[i+1:], true
}

var sourceTarget = naming.NewNamespaces("source", "target")
