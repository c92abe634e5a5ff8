package format

import (
	"strconv"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// TinyV2Reader reads tiny v2 files ("tiny\t2\t0\t<namespaces>").
type TinyV2Reader struct{}

func (TinyV2Reader) Format() Format { return TinyV2 }

func (TinyV2Reader) CanRead(f File) bool {
	return strings.HasPrefix(firstLine(f.Data, ""), "tiny\t2\t")
}

func (r TinyV2Reader) Read(f File) (*table.Table, error) {
	all := lines(f.Data)
	if len(all) == 0 {
		return nil, &ParseError{Format: TinyV2, File: f.Name, Line: 1, Reason: "missing header"}
	}

	header := strings.Split(all[0], "\t")
	if len(header) < 4 || header[0] != "tiny" || header[1] != "2" {
		return nil, &ParseError{Format: TinyV2, File: f.Name, Line: 1, Reason: "bad header"}
	}

	namespaces := naming.NewNamespaces(header[3:]...)
	if len(namespaces) != len(header)-3 {
		return nil, &ParseError{Format: TinyV2, File: f.Name, Line: 1, Reason: "duplicate namespace"}
	}

	frag, err := newFragment(TinyV2, f, namespaces)
	if err != nil {
		return nil, err
	}

	p := tinyV2Parser{frag: frag, namespaces: namespaces}

	for i, line := range all[1:] {
		frag.line = i + 2
		if err := p.parse(line); err != nil {
			return nil, err
		}
	}

	return frag.build()
}

type tinyV2Parser struct {
	frag       *fragment
	namespaces naming.Namespaces
	escaped    bool
	inClasses  bool

	class  visitor.ClassVisitor
	member visitor.CommentVisitor
	method visitor.MethodVisitor
	param  visitor.CommentVisitor
}

func (p *tinyV2Parser) parse(line string) error {
	if line == "" {
		return nil
	}

	depth := 0
	for depth < len(line) && line[depth] == '\t' {
		depth++
	}

	cols := strings.Split(line[depth:], "\t")
	kind, cols := cols[0], cols[1:]

	if depth == 1 && !p.inClasses {
		// Header properties.
		if kind == "escaped-names" {
			p.escaped = true
		}

		return nil
	}

	switch {
	case depth == 0 && kind == "c":
		p.inClasses = true
		return p.classLine(cols)
	case depth == 1 && (kind == "m" || kind == "f"):
		return p.memberLine(kind == "m", cols)
	case depth == 2 && kind == "p":
		return p.paramLine(cols)
	case depth == 2 && kind == "v":
		return p.localLine(cols)
	case kind == "c" && depth >= 1 && depth <= 3:
		return p.comment(depth, cols)
	default:
		return p.frag.fail("unexpected line " + strconv.Quote(line))
	}
}

func (p *tinyV2Parser) names(cols []string) ([]string, error) {
	if len(cols) != len(p.namespaces) {
		return nil, p.frag.fail("expected " + strconv.Itoa(len(p.namespaces)) + " names, got " + strconv.Itoa(len(cols)))
	}

	if !p.escaped {
		return cols, nil
	}

	out := make([]string, len(cols))

	for i, c := range cols {
		v, err := unescapeTiny(c)
		if err != nil {
			return nil, p.frag.fail(err.Error())
		}

		out[i] = v
	}

	return out, nil
}

func (p *tinyV2Parser) classLine(cols []string) error {
	names, err := p.names(cols)
	if err != nil {
		return err
	}

	cv, err := p.frag.class(pairNames(p.namespaces, names...))
	if err != nil {
		return err
	}

	p.class, p.member, p.method, p.param = cv, nil, nil, nil

	return nil
}

func (p *tinyV2Parser) memberLine(method bool, cols []string) error {
	if p.class == nil {
		return p.frag.fail("member outside of a class")
	}

	if len(cols) < 1 {
		return p.frag.fail("missing descriptor")
	}

	names, err := p.names(cols[1:])
	if err != nil {
		return err
	}

	ids := memberNames(p.namespaces, cols[0], names...)
	p.param = nil

	if method {
		mv, err := p.frag.method(p.class, ids)
		if err != nil {
			return err
		}

		p.member, p.method = mv, mv

		return nil
	}

	fv, err := p.frag.field(p.class, ids)
	if err != nil {
		return err
	}

	p.member, p.method = fv, nil

	return nil
}

func (p *tinyV2Parser) paramLine(cols []string) error {
	if p.method == nil {
		return p.frag.fail("parameter outside of a method")
	}

	if len(cols) < 1 {
		return p.frag.fail("missing lv index")
	}

	lv, err := strconv.Atoi(cols[0])
	if err != nil {
		return p.frag.fail("bad lv index " + strconv.Quote(cols[0]))
	}

	names, err := p.names(cols[1:])
	if err != nil {
		return err
	}

	pv, err := p.method.VisitParam(visitor.Param{LVIndex: lv, Ordinal: visitor.Unknown}, naming.LocalNames(pairNames(p.namespaces, names...)))
	if err != nil {
		return p.frag.wrap(err)
	}

	p.param = pv

	return nil
}

func (p *tinyV2Parser) localLine(cols []string) error {
	if p.method == nil {
		return p.frag.fail("local outside of a method")
	}

	if len(cols) < 3 {
		return p.frag.fail("missing local indices")
	}

	idx := make([]int, 3)

	for i := range idx {
		v, err := strconv.Atoi(cols[i])
		if err != nil {
			return p.frag.fail("bad local index " + strconv.Quote(cols[i]))
		}

		idx[i] = v
	}

	names, err := p.names(cols[3:])
	if err != nil {
		return err
	}

	local := visitor.Local{LVIndex: idx[0], StartOp: idx[1], LVTIndex: idx[2]}
	p.param = nil

	return p.frag.wrap(p.method.VisitLocal(local, naming.LocalNames(pairNames(p.namespaces, names...))))
}

func (p *tinyV2Parser) comment(depth int, cols []string) error {
	if len(cols) != 1 {
		return p.frag.fail("comment must have one column")
	}

	text, err := unescapeTiny(cols[0])
	if err != nil {
		return p.frag.fail(err.Error())
	}

	var target visitor.CommentVisitor

	switch depth {
	case 1:
		target = p.class
	case 2:
		target = p.member
	case 3:
		target = p.param
	}

	if target == nil {
		return p.frag.fail("comment without an owner")
	}

	return p.frag.wrap(target.VisitComment(text))
}

func unescapeTiny(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}

		i++
		if i == len(s) {
			return "", errDanglingEscape
		}

		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		default:
			return "", errBadEscape
		}
	}

	return sb.String(), nil
}

// TinyV1Reader reads tiny v1 files ("v1\t<namespaces>").
type TinyV1Reader struct{}

func (TinyV1Reader) Format() Format { return TinyV1 }

func (TinyV1Reader) CanRead(f File) bool {
	return strings.HasPrefix(firstLine(f.Data, ""), "v1\t")
}

func (TinyV1Reader) Read(f File) (*table.Table, error) {
	all := lines(f.Data)
	if len(all) == 0 {
		return nil, &ParseError{Format: TinyV1, File: f.Name, Line: 1, Reason: "missing header"}
	}

	header := strings.Split(all[0], "\t")
	if len(header) < 2 || header[0] != "v1" {
		return nil, &ParseError{Format: TinyV1, File: f.Name, Line: 1, Reason: "bad header"}
	}

	namespaces := naming.NewNamespaces(header[1:]...)
	if len(namespaces) != len(header)-1 {
		return nil, &ParseError{Format: TinyV1, File: f.Name, Line: 1, Reason: "duplicate namespace"}
	}

	frag, err := newFragment(TinyV1, f, namespaces)
	if err != nil {
		return nil, err
	}

	n := len(namespaces)

	for i, line := range all[1:] {
		frag.line = i + 2
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")

		switch cols[0] {
		case "CLASS":
			if len(cols) != n+1 {
				return nil, frag.fail("bad CLASS arity")
			}

			if _, err := frag.class(pairNames(namespaces, cols[1:]...)); err != nil {
				return nil, err
			}
		case "FIELD", "METHOD":
			if len(cols) != n+3 {
				return nil, frag.fail("bad " + cols[0] + " arity")
			}

			cv, err := frag.class(naming.ClassNames{namespaces[0]: cols[1]})
			if err != nil {
				return nil, err
			}

			ids := memberNames(namespaces, cols[2], cols[3:]...)
			if cols[0] == "FIELD" {
				_, err = frag.field(cv, ids)
			} else {
				_, err = frag.method(cv, ids)
			}

			if err != nil {
				return nil, err
			}
		case "MTH-ARG":
			// MTH-ARG owner desc method lvIndex names...
			if len(cols) != n+5 {
				return nil, frag.fail("bad MTH-ARG arity")
			}

			lv, err := strconv.Atoi(cols[4])
			if err != nil {
				return nil, frag.fail("bad lv index " + strconv.Quote(cols[4]))
			}

			cv, err := frag.class(naming.ClassNames{namespaces[0]: cols[1]})
			if err != nil {
				return nil, err
			}

			mv, err := frag.method(cv, naming.MemberNames{namespaces[0]: {Name: cols[3], Desc: cols[2]}})
			if err != nil {
				return nil, err
			}

			param := visitor.Param{LVIndex: lv, Ordinal: visitor.Unknown}
			if _, err := mv.VisitParam(param, naming.LocalNames(pairNames(namespaces, cols[5:]...))); err != nil {
				return nil, frag.wrap(err)
			}
		default:
			return nil, frag.fail("unknown line kind " + strconv.Quote(cols[0]))
		}
	}

	return frag.build()
}
