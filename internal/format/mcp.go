package format

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// MCPReader reads MCP fields.csv, methods.csv and params.csv files. Rows are
// keyed on searge member names, so the reader needs a base table carrying
// them. Output namespaces are "source" (the base names) and "target".
type MCPReader struct{}

var _ BaseReader = MCPReader{}

func (MCPReader) Format() Format { return MCPCSV }

func (MCPReader) CanRead(f File) bool {
	first := firstLine(f.Data, "")
	return strings.HasPrefix(first, "searge,name") || strings.HasPrefix(first, "param,name")
}

func (MCPReader) Read(File) (*table.Table, error) {
	return nil, ErrNeedsBase
}

type mcpName struct {
	name    string
	comment string
}

type mcpParam struct {
	lv   int
	name string
}

type mcpData struct {
	members map[string]mcpName
	// params maps a searge method id ("1234" of func_1234_a) to its params.
	params map[string][]mcpParam
}

func (MCPReader) parse(f File) (*mcpData, error) {
	r := csv.NewReader(bytes.NewReader(f.Data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: MCPCSV, File: f.Name, Err: err}
	}

	data := &mcpData{members: make(map[string]mcpName), params: make(map[string][]mcpParam)}
	if len(records) == 0 {
		return data, nil
	}

	paramsFile := records[0][0] == "param"

	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, &ParseError{Format: MCPCSV, File: f.Name, Line: i + 2, Reason: "expected at least two columns"}
		}

		if !paramsFile {
			entry := mcpName{name: rec[1]}
			if len(rec) > 3 {
				entry.comment = rec[3]
			}

			data.members[rec[0]] = entry

			continue
		}

		id, lv, ok := parseMCPParam(rec[0])
		if !ok {
			// Constructor parameters (p_i...) and unknown shapes have no method key.
			continue
		}

		data.params[id] = append(data.params[id], mcpParam{lv: lv, name: rec[1]})
	}

	return data, nil
}

// parseMCPParam splits "p_1234_2_" into the method id and lv index.
func parseMCPParam(s string) (string, int, bool) {
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, "p_"), "_"), "_")
	if len(parts) != 2 || !strings.HasPrefix(s, "p_") {
		return "", 0, false
	}

	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", 0, false
	}

	lv, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}

	return parts[0], lv, true
}

// methodID returns "1234" for "func_1234_a".
func methodID(searge string) (string, bool) {
	if !strings.HasPrefix(searge, "func_") {
		return "", false
	}

	parts := strings.SplitN(searge[len("func_"):], "_", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}

	return parts[0], true
}

func (r MCPReader) ReadWith(f File, base table.View, ns naming.Namespace) (*table.Table, error) {
	if !base.Namespaces().Contains(ns) {
		return nil, &ParseError{Format: MCPCSV, File: f.Name, Err: table.NewUnknownNamespaceError(ns, base.Namespaces())}
	}

	data, err := r.parse(f)
	if err != nil {
		return nil, err
	}

	classes := &mcpIndex{ns: ns}
	if err := base.Accept(classes); err != nil {
		return nil, err
	}

	frag, err := newFragment(MCPCSV, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	for _, c := range classes.classes {
		var cv visitor.ClassVisitor

		visit := func() (visitor.ClassVisitor, error) {
			if cv == nil {
				cv, err = frag.class(pairNames(sourceTarget, c.name, c.name))
			}

			return cv, err
		}

		for _, m := range c.methods {
			entry, named := data.members[m.Name]

			id, _ := methodID(m.Name)
			params := data.params[id]

			if !named && len(params) == 0 {
				continue
			}

			owner, err := visit()
			if err != nil {
				return nil, err
			}

			ids := naming.MemberNames{"source": m}
			if named {
				ids["target"] = naming.Ident{Name: entry.name}
			}

			mv, err := frag.method(owner, ids)
			if err != nil {
				return nil, err
			}

			if entry.comment != "" {
				if err := mv.VisitComment(entry.comment); err != nil {
					return nil, frag.wrap(err)
				}
			}

			for _, p := range params {
				param := visitor.Param{LVIndex: p.lv, Ordinal: visitor.Unknown}
				if _, err := mv.VisitParam(param, naming.LocalNames{"target": p.name}); err != nil {
					return nil, frag.wrap(err)
				}
			}
		}

		for _, fd := range c.fields {
			entry, ok := data.members[fd.Name]
			if !ok {
				continue
			}

			owner, err := visit()
			if err != nil {
				return nil, err
			}

			fv, err := frag.field(owner, naming.MemberNames{"source": fd, "target": {Name: entry.name}})
			if err != nil {
				return nil, err
			}

			if entry.comment != "" {
				if err := fv.VisitComment(entry.comment); err != nil {
					return nil, frag.wrap(err)
				}
			}
		}
	}

	return frag.build()
}

type mcpClass struct {
	name    string
	methods []naming.Ident
	fields  []naming.Ident
}

// mcpIndex collects the classes and members named in one namespace.
type mcpIndex struct {
	visitor.Empty

	ns      naming.Namespace
	classes []*mcpClass
}

func (x *mcpIndex) VisitClass(names naming.ClassNames) (visitor.ClassVisitor, error) {
	name, ok := names[x.ns]
	if !ok {
		return nil, nil
	}

	c := &mcpClass{name: name}
	x.classes = append(x.classes, c)

	return &mcpClassIndex{ns: x.ns, class: c}, nil
}

type mcpClassIndex struct {
	visitor.Empty

	ns    naming.Namespace
	class *mcpClass
}

func (x *mcpClassIndex) VisitMethod(names naming.MemberNames) (visitor.MethodVisitor, error) {
	if id, ok := names[x.ns]; ok {
		x.class.methods = append(x.class.methods, id)
	}

	return nil, nil
}

func (x *mcpClassIndex) VisitField(names naming.MemberNames) (visitor.FieldVisitor, error) {
	if id, ok := names[x.ns]; ok {
		x.class.fields = append(x.class.fields, id)
	}

	return nil, nil
}
