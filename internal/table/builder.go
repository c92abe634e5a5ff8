package table

import (
	"fmt"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/visitor"
)

// MergeMode decides what happens when a fragment writes a populated cell.
type MergeMode int

const (
	// MergeStrict reports every write to a populated cell as a conflict.
	MergeStrict MergeMode = iota
	// MergeOverwrite replaces populated cells.
	MergeOverwrite
	// MergeFillMissing keeps populated cells and only fills empty ones.
	MergeFillMissing
)

func (m MergeMode) String() string {
	switch m {
	case MergeStrict:
		return "strict"
	case MergeOverwrite:
		return "overwrite"
	case MergeFillMissing:
		return "fill-missing"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

// MergeOptions configures a single merge.
type MergeOptions struct {
	Mode MergeMode
	// Source names the fragment in conflict reports.
	Source string
}

// Builder accumulates fragments into a table.
type Builder struct {
	t     *Table
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{t: newTable()}
}

// Namespaces returns the namespaces present so far.
func (b *Builder) Namespaces() naming.Namespaces {
	return b.t.Namespaces()
}

// AddNamespaces registers namespaces as present even if no row names them.
func (b *Builder) AddNamespaces(namespaces ...naming.Namespace) error {
	if b.built {
		return ErrBuilt
	}

	b.t.namespaces = b.t.namespaces.Union(namespaces)

	return nil
}

// View returns a read-only view of the table under construction.
func (b *Builder) View() View {
	return b.t
}

// Merge folds fragment into the builder, correlating rows through anchor.
func (b *Builder) Merge(fragment View, anchor naming.Namespace, opts MergeOptions) error {
	if b.built {
		return ErrBuilt
	}

	return fragment.Accept(b.Merger(anchor, opts))
}

// Merger returns a visitor that merges whatever it is fed into the builder.
func (b *Builder) Merger(anchor naming.Namespace, opts MergeOptions) visitor.Visitor {
	return &merger{b: b, t: b.t, anchor: anchor, opts: opts}
}

// Build freezes the builder and returns the table.
func (b *Builder) Build() (*Table, error) {
	if b.built {
		return nil, ErrBuilt
	}

	b.built = true

	return b.t, nil
}

// ClassRef points at a class row of a builder.
type ClassRef struct {
	row *classRow
}

// Name returns the class name in ns.
func (r ClassRef) Name(ns naming.Namespace) (string, bool) {
	v, ok := r.row.names[ns]
	return v, ok
}

// Names returns a copy of the class names.
func (r ClassRef) Names() naming.ClassNames {
	return r.row.names.Clone()
}

// Classes returns references to every class row in row order.
func (b *Builder) Classes() []ClassRef {
	out := make([]ClassRef, len(b.t.classes))
	for i, c := range b.t.classes {
		out[i] = ClassRef{row: c}
	}

	return out
}

// FindClass looks a class row up by its name in ns.
func (b *Builder) FindClass(ns naming.Namespace, name string) (ClassRef, bool) {
	row := b.t.index[ns][name]
	return ClassRef{row: row}, row != nil
}

// SetClassName overwrites the name of a class row in ns. Another row already
// claiming the name is a conflict.
func (b *Builder) SetClassName(ref ClassRef, ns naming.Namespace, name string) error {
	if b.built {
		return ErrBuilt
	}

	if !b.t.namespaces.Contains(ns) {
		return NewUnknownNamespaceError(ns, b.t.Namespaces())
	}

	return b.t.setClassName(ref.row, ns, name, MergeOverwrite, "")
}

func (t *Table) classIndex(ns naming.Namespace) map[string]*classRow {
	idx := t.index[ns]
	if idx == nil {
		idx = make(map[string]*classRow)
		t.index[ns] = idx
	}

	return idx
}

func (t *Table) setClassName(row *classRow, ns naming.Namespace, name string, mode MergeMode, source string) error {
	idx := t.classIndex(ns)

	if existing, ok := row.names[ns]; ok {
		switch mode {
		case MergeFillMissing:
			return nil
		case MergeOverwrite:
			if existing == name {
				return nil
			}
		default:
			return &ConflictingMappingError{
				Source:    source,
				Element:   "class " + t.classLabel(row),
				Namespace: ns,
				Existing:  existing,
				Incoming:  name,
			}
		}
	}

	if other := idx[name]; other != nil && other != row {
		if mode == MergeFillMissing {
			return nil
		}

		return &ConflictingMappingError{
			Source:    source,
			Element:   "class " + t.classLabel(row),
			Namespace: ns,
			Existing:  "claimed by class " + t.classLabel(other),
			Incoming:  name,
		}
	}

	if existing, ok := row.names[ns]; ok {
		delete(idx, existing)
	}

	row.names[ns] = name
	idx[name] = row

	return nil
}

func (t *Table) classLabel(row *classRow) string {
	for _, ns := range t.namespaces {
		if name, ok := row.names[ns]; ok {
			return name
		}
	}

	return "<unnamed>"
}

type merger struct {
	b      *Builder
	t      *Table
	anchor naming.Namespace
	opts   MergeOptions

	namespaces naming.Namespaces
}

func (m *merger) VisitHeader(namespaces naming.Namespaces) error {
	if m.b.built {
		return ErrBuilt
	}

	m.namespaces = namespaces
	m.t.namespaces = m.t.namespaces.Union(namespaces)

	return nil
}

func (m *merger) VisitClass(names naming.ClassNames) (visitor.ClassVisitor, error) {
	var row *classRow

	if name, ok := names[m.anchor]; ok && name != "" {
		row = m.t.index[m.anchor][name]
	}

	matched := row != nil
	if !matched {
		row = &classRow{names: make(naming.ClassNames, len(names))}
		m.t.classes = append(m.t.classes, row)
	}

	for _, ns := range m.namespaces {
		name, ok := names[ns]
		if !ok || name == "" || (matched && ns == m.anchor) {
			continue
		}

		if err := m.t.setClassName(row, ns, name, m.opts.Mode, m.opts.Source); err != nil {
			return nil, err
		}
	}

	return &classMerger{m: m, row: row}, nil
}

func (m *merger) VisitEnd() error {
	return nil
}

func (m *merger) comment(current *string, comment string) {
	if comment == "" {
		return
	}

	if *current == "" || m.opts.Mode == MergeOverwrite {
		*current = comment
	}
}

func (m *merger) setCell(cells map[naming.Namespace]string, ns naming.Namespace, value, element string) error {
	existing, ok := cells[ns]
	if ok {
		switch m.opts.Mode {
		case MergeFillMissing:
			return nil
		case MergeStrict:
			return &ConflictingMappingError{
				Source:    m.opts.Source,
				Element:   element,
				Namespace: ns,
				Existing:  existing,
				Incoming:  value,
			}
		}
	}

	cells[ns] = value

	return nil
}

type classMerger struct {
	m   *merger
	row *classRow
}

func (c *classMerger) VisitComment(comment string) error {
	c.m.comment(&c.row.comment, comment)
	return nil
}

func (c *classMerger) VisitMethod(names naming.MemberNames) (visitor.MethodVisitor, error) {
	row, err := c.member(&c.row.methods, names, "method")
	if err != nil {
		return nil, err
	}

	return &methodMerger{m: c.m, owner: c.row, row: row}, nil
}

func (c *classMerger) VisitField(names naming.MemberNames) (visitor.FieldVisitor, error) {
	row, err := c.member(&c.row.fields, names, "field")
	if err != nil {
		return nil, err
	}

	return &fieldMerger{m: c.m, row: row}, nil
}

func (c *classMerger) member(rows *[]*memberRow, names naming.MemberNames, kind string) (*memberRow, error) {
	m := c.m

	var row *memberRow

	if id, ok := names[m.anchor]; ok && id.Name != "" {
		row = c.find(*rows, id)
	}

	matched := row != nil
	if !matched {
		row = &memberRow{names: make(map[naming.Namespace]string, len(names))}
		*rows = append(*rows, row)
	}

	if row.desc == "" {
		row.descNs, row.desc = m.pickDescriptor(names)
	}

	element := kind + " " + m.t.classLabel(c.row) + "." + names[m.anchor].String()

	for _, ns := range m.namespaces {
		id, ok := names[ns]
		if !ok || id.Name == "" || (matched && ns == m.anchor) {
			continue
		}

		if err := m.setCell(row.names, ns, id.Name, element); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// find correlates a member by its anchor identity. Descriptors must match
// when both sides know one; otherwise the first row with the name wins.
func (c *classMerger) find(rows []*memberRow, id naming.Ident) *memberRow {
	var byName *memberRow

	for _, r := range rows {
		if r.names[c.m.anchor] != id.Name {
			continue
		}

		desc := c.m.t.descriptor(r, c.m.anchor)
		if desc != "" && id.Desc != "" {
			if desc == id.Desc {
				return r
			}

			continue
		}

		if byName == nil {
			byName = r
		}
	}

	return byName
}

func (m *merger) pickDescriptor(names naming.MemberNames) (naming.Namespace, string) {
	if id, ok := names[m.anchor]; ok && id.Desc != "" {
		return m.anchor, id.Desc
	}

	for _, ns := range m.namespaces {
		if id, ok := names[ns]; ok && id.Desc != "" {
			return ns, id.Desc
		}
	}

	return "", ""
}

type fieldMerger struct {
	m   *merger
	row *memberRow
}

func (f *fieldMerger) VisitComment(comment string) error {
	f.m.comment(&f.row.comment, comment)
	return nil
}

type methodMerger struct {
	m     *merger
	owner *classRow
	row   *memberRow
}

func (mm *methodMerger) VisitComment(comment string) error {
	mm.m.comment(&mm.row.comment, comment)
	return nil
}

func (mm *methodMerger) label() string {
	return mm.m.t.classLabel(mm.owner) + "." + mm.row.names[mm.m.anchor]
}

func (mm *methodMerger) VisitParam(param visitor.Param, names naming.LocalNames) (visitor.ParamVisitor, error) {
	var row *paramRow

	for _, p := range mm.row.params {
		if (param.LVIndex >= 0 && p.param.LVIndex == param.LVIndex) ||
			(param.LVIndex < 0 && param.Ordinal >= 0 && p.param.Ordinal == param.Ordinal) {
			row = p
			break
		}
	}

	if row == nil {
		row = &paramRow{param: param, names: make(naming.LocalNames, len(names))}
		mm.row.params = append(mm.row.params, row)
	} else {
		if row.param.LVIndex < 0 {
			row.param.LVIndex = param.LVIndex
		}

		if row.param.Ordinal < 0 {
			row.param.Ordinal = param.Ordinal
		}
	}

	element := fmt.Sprintf("param %d/%d of %s", param.LVIndex, param.Ordinal, mm.label())
	if err := mm.setLocalNames(row.names, names, element); err != nil {
		return nil, err
	}

	return &paramMerger{m: mm.m, row: row}, nil
}

func (mm *methodMerger) VisitLocal(local visitor.Local, names naming.LocalNames) error {
	var row *localRow

	for _, l := range mm.row.locals {
		if l.local.LVIndex == local.LVIndex && l.local.StartOp == local.StartOp {
			row = l
			break
		}
	}

	if row == nil {
		row = &localRow{local: local, names: make(naming.LocalNames, len(names))}
		mm.row.locals = append(mm.row.locals, row)
	} else if row.local.LVTIndex < 0 {
		row.local.LVTIndex = local.LVTIndex
	}

	element := fmt.Sprintf("local %d/%d of %s", local.LVIndex, local.StartOp, mm.label())

	return mm.setLocalNames(row.names, names, element)
}

func (mm *methodMerger) setLocalNames(cells, names naming.LocalNames, element string) error {
	for _, ns := range mm.m.namespaces {
		name, ok := names[ns]
		if !ok || name == "" {
			continue
		}

		if err := mm.m.setCell(cells, ns, name, element); err != nil {
			return err
		}
	}

	return nil
}

type paramMerger struct {
	m   *merger
	row *paramRow
}

func (p *paramMerger) VisitComment(comment string) error {
	p.m.comment(&p.row.comment, comment)
	return nil
}
