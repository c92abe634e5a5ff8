package table

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/visitor"
)

const (
	textMagic   = "mappings"
	textVersion = "1"
)

// Write serializes the table in the text format. Member descriptors are
// written in the namespace they were recorded in, so Read restores them
// unchanged.
func (t *Table) Write(w io.Writer) error {
	tw := NewWriter(w)

	if err := tw.VisitHeader(t.Namespaces()); err != nil {
		return err
	}

	for _, c := range t.classes {
		if err := t.writeClass(tw, c); err != nil {
			return err
		}
	}

	return tw.VisitEnd()
}

func (t *Table) writeClass(tw *Writer, c *classRow) error {
	cv, err := tw.VisitClass(c.names)
	if err != nil {
		return err
	}

	if c.comment != "" {
		if err := cv.VisitComment(c.comment); err != nil {
			return err
		}
	}

	for _, m := range c.methods {
		if err := writeMember(tw, "m", m); err != nil {
			return err
		}
	}

	for _, f := range c.fields {
		if err := writeMember(tw, "f", f); err != nil {
			return err
		}
	}

	return nil
}

func writeMember(tw *Writer, kind string, m *memberRow) error {
	if err := tw.member(kind, m.descNs, m.desc, func(ns naming.Namespace) string { return m.names[ns] }); err != nil {
		return err
	}

	node := writerNode{w: tw, depth: 2}

	if m.comment != "" {
		if err := node.VisitComment(m.comment); err != nil {
			return err
		}
	}

	for _, p := range m.params {
		pv, err := node.VisitParam(p.param, p.names)
		if err != nil {
			return err
		}

		if p.comment != "" {
			if err := pv.VisitComment(p.comment); err != nil {
				return err
			}
		}
	}

	for _, l := range m.locals {
		if err := node.VisitLocal(l.local, l.names); err != nil {
			return err
		}
	}

	return nil
}

// Writer is a visitor that serializes whatever it is fed in the text format.
type Writer struct {
	w          *bufio.Writer
	namespaces naming.Namespaces
	err        error
}

var _ visitor.Visitor = (*Writer)(nil)

// NewWriter returns a writer visitor on w. Output is flushed by VisitEnd.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) line(parts ...string) error {
	if w.err != nil {
		return w.err
	}

	for i, p := range parts {
		if i > 0 {
			w.w.WriteByte('\t')
		}

		w.w.WriteString(p)
	}

	_, w.err = w.w.WriteString("\n")

	return w.err
}

func (w *Writer) cells(prefix []string, get func(naming.Namespace) string) []string {
	out := prefix
	for _, ns := range w.namespaces {
		out = append(out, escape(get(ns)))
	}

	return out
}

func (w *Writer) VisitHeader(namespaces naming.Namespaces) error {
	w.namespaces = namespaces

	header := []string{textMagic, textVersion}
	for _, ns := range namespaces {
		header = append(header, escape(string(ns)))
	}

	return w.line(header...)
}

func (w *Writer) VisitClass(names naming.ClassNames) (visitor.ClassVisitor, error) {
	err := w.line(w.cells([]string{"c"}, func(ns naming.Namespace) string { return names[ns] })...)
	return writerNode{w: w, depth: 1}, err
}

func (w *Writer) VisitEnd() error {
	if w.err != nil {
		return w.err
	}

	return w.w.Flush()
}

func (w *Writer) member(kind string, descNs naming.Namespace, desc string, name func(naming.Namespace) string) error {
	prefix := []string{"", kind, escape(string(descNs)), escape(desc)}
	return w.line(w.cells(prefix, name)...)
}

// visitedMember writes a member fed through the visitor, recording the
// descriptor of the first header namespace that has one.
func (w *Writer) visitedMember(kind string, names naming.MemberNames) error {
	var descNs naming.Namespace

	desc := ""

	for _, ns := range w.namespaces {
		if id, ok := names[ns]; ok && id.Desc != "" {
			descNs, desc = ns, id.Desc
			break
		}
	}

	return w.member(kind, descNs, desc, func(ns naming.Namespace) string { return names[ns].Name })
}

type writerNode struct {
	w     *Writer
	depth int
}

func (n writerNode) VisitComment(comment string) error {
	parts := make([]string, n.depth, n.depth+2)
	parts = append(parts, "#", escape(comment))

	return n.w.line(parts...)
}

func (n writerNode) VisitMethod(names naming.MemberNames) (visitor.MethodVisitor, error) {
	return writerNode{w: n.w, depth: 2}, n.w.visitedMember("m", names)
}

func (n writerNode) VisitField(names naming.MemberNames) (visitor.FieldVisitor, error) {
	return writerNode{w: n.w, depth: 2}, n.w.visitedMember("f", names)
}

func (n writerNode) VisitParam(param visitor.Param, names naming.LocalNames) (visitor.ParamVisitor, error) {
	prefix := []string{"", "", "p", strconv.Itoa(param.LVIndex), strconv.Itoa(param.Ordinal)}
	err := n.w.line(n.w.cells(prefix, func(ns naming.Namespace) string { return names[ns] })...)

	return writerNode{w: n.w, depth: 3}, err
}

func (n writerNode) VisitLocal(local visitor.Local, names naming.LocalNames) error {
	prefix := []string{"", "", "v", strconv.Itoa(local.LVIndex), strconv.Itoa(local.StartOp), strconv.Itoa(local.LVTIndex)}
	return n.w.line(n.w.cells(prefix, func(ns naming.Namespace) string { return names[ns] })...)
}

// Read parses a table written by Write.
func Read(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)

	p := &textParser{t: newTable()}

	for scanner.Scan() {
		p.line++
		if err := p.parse(scanner.Text()); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &MalformedTableError{Line: p.line + 1, Reason: err.Error()}
	}

	if p.line == 0 {
		return nil, &MalformedTableError{Line: 1, Reason: "missing header"}
	}

	return p.t, nil
}

type textParser struct {
	t    *Table
	line int

	class  *classRow
	member *memberRow
	method bool
	param  *paramRow
}

func (p *textParser) fail(reason string) error {
	return &MalformedTableError{Line: p.line, Reason: reason}
}

func (p *textParser) parse(line string) error {
	if p.line == 1 {
		return p.header(line)
	}

	depth := 0
	for depth < len(line) && line[depth] == '\t' {
		depth++
	}

	fields := strings.Split(line[depth:], "\t")
	kind := fields[0]
	fields = fields[1:]

	switch {
	case kind == "#":
		return p.comment(depth, fields)
	case depth == 0 && kind == "c":
		return p.classLine(fields)
	case depth == 1 && (kind == "m" || kind == "f"):
		return p.memberLine(kind == "m", fields)
	case depth == 2 && kind == "p":
		return p.paramLine(fields)
	case depth == 2 && kind == "v":
		return p.localLine(fields)
	default:
		return p.fail("unexpected line kind " + strconv.Quote(kind))
	}
}

func (p *textParser) header(line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] != textMagic {
		return p.fail("missing header")
	}

	if fields[1] != textVersion {
		return p.fail("unsupported version " + strconv.Quote(fields[1]))
	}

	for _, f := range fields[2:] {
		name, err := unescape(f)
		if err != nil {
			return p.fail(err.Error())
		}

		ns := naming.Namespace(name)
		if ns == "" || p.t.namespaces.Contains(ns) {
			return p.fail("empty or duplicate namespace " + strconv.Quote(name))
		}

		p.t.namespaces = append(p.t.namespaces, ns)
	}

	return nil
}

func (p *textParser) names(fields []string) (map[naming.Namespace]string, error) {
	if len(fields) != len(p.t.namespaces) {
		return nil, p.fail("expected " + strconv.Itoa(len(p.t.namespaces)) + " names, got " + strconv.Itoa(len(fields)))
	}

	out := make(map[naming.Namespace]string, len(fields))

	for i, f := range fields {
		if f == "" {
			continue
		}

		name, err := unescape(f)
		if err != nil {
			return nil, p.fail(err.Error())
		}

		out[p.t.namespaces[i]] = name
	}

	return out, nil
}

func (p *textParser) ints(fields []string, n int) ([]int, error) {
	if len(fields) < n {
		return nil, p.fail("missing index columns")
	}

	out := make([]int, n)

	for i := range n {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, p.fail("bad index " + strconv.Quote(fields[i]))
		}

		out[i] = v
	}

	return out, nil
}

func (p *textParser) classLine(fields []string) error {
	names, err := p.names(fields)
	if err != nil {
		return err
	}

	row := &classRow{names: names}

	for ns, name := range names {
		idx := p.t.classIndex(ns)
		if idx[name] != nil {
			return p.fail("duplicate class " + strconv.Quote(name) + " in namespace " + string(ns))
		}

		idx[name] = row
	}

	p.t.classes = append(p.t.classes, row)
	p.class, p.member, p.param = row, nil, nil

	return nil
}

func (p *textParser) memberLine(method bool, fields []string) error {
	if p.class == nil {
		return p.fail("member outside of a class")
	}

	if len(fields) < 2 {
		return p.fail("missing descriptor columns")
	}

	descNs, err := unescape(fields[0])
	if err != nil {
		return p.fail(err.Error())
	}

	desc, err := unescape(fields[1])
	if err != nil {
		return p.fail(err.Error())
	}

	if (descNs == "") != (desc == "") || (descNs != "" && !p.t.namespaces.Contains(naming.Namespace(descNs))) {
		return p.fail("bad descriptor namespace " + strconv.Quote(descNs))
	}

	names, err := p.names(fields[2:])
	if err != nil {
		return err
	}

	row := &memberRow{names: names, desc: desc, descNs: naming.Namespace(descNs)}
	if method {
		p.class.methods = append(p.class.methods, row)
	} else {
		p.class.fields = append(p.class.fields, row)
	}

	p.member, p.method, p.param = row, method, nil

	return nil
}

func (p *textParser) paramLine(fields []string) error {
	if p.member == nil || !p.method {
		return p.fail("parameter outside of a method")
	}

	idx, err := p.ints(fields, 2)
	if err != nil {
		return err
	}

	names, err := p.names(fields[2:])
	if err != nil {
		return err
	}

	row := &paramRow{param: visitor.Param{LVIndex: idx[0], Ordinal: idx[1]}, names: names}
	p.member.params = append(p.member.params, row)
	p.param = row

	return nil
}

func (p *textParser) localLine(fields []string) error {
	if p.member == nil || !p.method {
		return p.fail("local outside of a method")
	}

	idx, err := p.ints(fields, 3)
	if err != nil {
		return err
	}

	names, err := p.names(fields[3:])
	if err != nil {
		return err
	}

	p.member.locals = append(p.member.locals, &localRow{
		local: visitor.Local{LVIndex: idx[0], StartOp: idx[1], LVTIndex: idx[2]},
		names: names,
	})
	p.param = nil

	return nil
}

func (p *textParser) comment(depth int, fields []string) error {
	if len(fields) != 1 {
		return p.fail("comment must have exactly one column")
	}

	text, err := unescape(fields[0])
	if err != nil {
		return p.fail(err.Error())
	}

	var target *string

	switch depth {
	case 1:
		if p.class != nil {
			target = &p.class.comment
		}
	case 2:
		if p.member != nil {
			target = &p.member.comment
		}
	case 3:
		if p.param != nil {
			target = &p.param.comment
		}
	}

	if target == nil {
		return p.fail("comment without an owner")
	}

	*target = text

	return nil
}

var escaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`, "\x00", `\0`)

func escape(s string) string {
	return escaper.Replace(s)
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}

		i++
		if i == len(s) {
			return "", errDanglingEscape
		}

		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		default:
			return "", errBadEscape
		}
	}

	return sb.String(), nil
}
