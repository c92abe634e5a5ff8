package propagate

import (
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/visitor"
)

// classEntry is the table content of one class, keyed by anchor names.
type classEntry struct {
	names   naming.ClassNames
	methods map[string]naming.MemberNames
	fields  map[string]naming.MemberNames
}

// indexer collects classes and members of a view keyed by anchor identity.
// Rows without an anchor name cannot be located in bytecode and are skipped.
type indexer struct {
	visitor.Empty
	anchor  naming.Namespace
	classes map[string]*classEntry
}

func newIndexer(anchor naming.Namespace) *indexer {
	return &indexer{anchor: anchor, classes: make(map[string]*classEntry)}
}

func (x *indexer) VisitClass(names naming.ClassNames) (visitor.ClassVisitor, error) {
	name, ok := names[x.anchor]
	if !ok {
		return nil, nil
	}

	entry := &classEntry{
		names:   names.Clone(),
		methods: make(map[string]naming.MemberNames),
		fields:  make(map[string]naming.MemberNames),
	}
	x.classes[name] = entry

	return &classIndexer{anchor: x.anchor, entry: entry}, nil
}

type classIndexer struct {
	visitor.Empty
	anchor naming.Namespace
	entry  *classEntry
}

func (c *classIndexer) VisitMethod(names naming.MemberNames) (visitor.MethodVisitor, error) {
	if id, ok := names[c.anchor]; ok {
		c.entry.methods[methodKey(id.Name, id.Desc)] = names.Clone()
	}

	return nil, nil
}

func (c *classIndexer) VisitField(names naming.MemberNames) (visitor.FieldVisitor, error) {
	if id, ok := names[c.anchor]; ok {
		c.entry.fields[id.Name] = names.Clone()
	}

	return nil, nil
}

func methodKey(name, desc string) string {
	return name + desc
}

// lookup returns the table names of a member, nil when absent.
func (e *classEntry) lookup(field bool, name, desc string) naming.MemberNames {
	if e == nil {
		return nil
	}

	if field {
		return e.fields[name]
	}

	if names, ok := e.methods[methodKey(name, desc)]; ok {
		return names
	}

	return e.methods[name]
}
