package propagate

import (
	"fmt"

	"mapping-resolver/internal/analyze"
	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// Provider exposes the class structure of the binaries a unit covers.
type Provider interface {
	Classes() []string
	HierarchyOf(name string) (analyze.Hierarchy, bool)
	MembersOf(name string) []analyze.Member
}

var _ Provider = (*analyze.ClassGraph)(nil)

// Unit is one propagation pass: the namespace the binaries are named in,
// the binaries themselves and the namespaces it must not touch.
type Unit struct {
	Name    string
	Anchor  naming.Namespace
	Classes Provider
	Exclude naming.Namespaces
}

// Propagate fills missing member names in targets from ancestor classes.
// The result holds the anchor plus the propagated namespaces and only the
// rows that gained a name; it is meant to be merged back in fill-missing
// mode. Targets absent from the view are ignored.
func Propagate(view table.View, unit Unit, targets naming.Namespaces) (*table.Table, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	known := view.Namespaces()
	if !known.Contains(unit.Anchor) {
		return nil, diags, table.NewUnknownNamespaceError(unit.Anchor, known)
	}

	targets = targets.Intersect(known).Without(unit.Anchor).Without(unit.Exclude...)

	idx := newIndexer(unit.Anchor)
	if err := view.Accept(idx); err != nil {
		return nil, diags, fmt.Errorf("failed to index table: %w", err)
	}

	p := &propagator{
		unit:    unit,
		targets: targets,
		classes: idx.classes,
		members: make(map[string][]analyze.Member),
		diags:   &diags,
	}

	b := table.NewBuilder()
	out := naming.Namespaces{unit.Anchor}.Union(targets)

	if err := b.AddNamespaces(out...); err != nil {
		return nil, diags, err
	}

	merger := b.Merger(unit.Anchor, table.MergeOptions{Mode: table.MergeStrict, Source: unit.label()})
	if err := merger.VisitHeader(out); err != nil {
		return nil, diags, err
	}

	if len(targets) > 0 {
		for _, name := range unit.Classes.Classes() {
			if err := p.class(merger, name); err != nil {
				return nil, diags, err
			}
		}
	}

	if err := merger.VisitEnd(); err != nil {
		return nil, diags, err
	}

	t, err := b.Build()

	return t, diags, err
}

func (u Unit) label() string {
	if u.Name != "" {
		return "propagation " + u.Name
	}

	return "propagation " + u.Anchor.String()
}

type propagator struct {
	unit    Unit
	targets naming.Namespaces
	classes map[string]*classEntry
	members map[string][]analyze.Member // declared members by owner
	diags   *diagnostic.Diagnostics
}

func (p *propagator) class(v visitor.Visitor, owner string) error {
	entry := p.classes[owner]

	var methods, fields []naming.MemberNames

	for _, m := range p.unit.Classes.MembersOf(owner) {
		if m.Inherited || m.Initializer() || !lendable(m) {
			continue
		}

		names := p.member(owner, entry, m)
		if names == nil {
			continue
		}

		if m.Kind == analyze.MemberField {
			fields = append(fields, names)
		} else {
			methods = append(methods, names)
		}
	}

	if len(methods) == 0 && len(fields) == 0 {
		return nil
	}

	classNames := naming.ClassNames{p.unit.Anchor: owner}
	if entry != nil {
		for _, ns := range p.targets {
			if name, ok := entry.names[ns]; ok {
				classNames[ns] = name
			}
		}
	}

	cv, err := v.VisitClass(classNames)
	if err != nil || cv == nil {
		return err
	}

	for _, names := range methods {
		if _, err := cv.VisitMethod(names); err != nil {
			return err
		}
	}

	for _, names := range fields {
		if _, err := cv.VisitField(names); err != nil {
			return err
		}
	}

	return nil
}

// member returns the names m gains, nil when it gains none.
func (p *propagator) member(owner string, entry *classEntry, m analyze.Member) naming.MemberNames {
	field := m.Kind == analyze.MemberField
	existing := entry.lookup(field, m.Name, m.Desc)

	var missing naming.Namespaces

	for _, ns := range p.targets {
		if _, ok := existing[ns]; !ok {
			missing = append(missing, ns)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	levels := p.ancestors(owner)
	out := naming.MemberNames{}

	for _, ns := range missing {
		for _, level := range levels {
			name, ok := p.nearest(owner, m, ns, level)
			if ok {
				out[ns] = naming.Ident{Name: name}
				break
			}
		}
	}

	if len(out) == 0 {
		return nil
	}

	out[p.unit.Anchor] = naming.Ident{Name: m.Name, Desc: m.Desc}

	return out
}

// nearest picks the name of m in ns among ancestors at one distance. The
// first ancestor in walk order wins; a disagreeing one is reported.
func (p *propagator) nearest(owner string, m analyze.Member, ns naming.Namespace, level []string) (string, bool) {
	var pick, from string

	for _, anc := range level {
		if !p.lends(anc, m) {
			continue
		}

		id, ok := p.classes[anc].lookup(m.Kind == analyze.MemberField, m.Name, m.Desc)[ns]
		if !ok {
			continue
		}

		if from == "" {
			pick, from = id.Name, anc

			continue
		}

		if id.Name != pick {
			p.diags.AddWarning(diagnostic.CodeAmbiguousPropagation,
				fmt.Sprintf("%s %s: %s names it %q, %s names it %q; using %q",
					ns, m.Kind, from, pick, anc, id.Name, pick),
				p.unit.label(), owner+"."+m.Key())
		}
	}

	return pick, from != ""
}

// lends reports whether ancestor anc can give its name for m. Ancestors
// outside the provider are trusted when the table names the member.
func (p *propagator) lends(anc string, m analyze.Member) bool {
	declared, ok := p.declared(anc)
	if !ok {
		return true
	}

	for _, d := range declared {
		if d.Kind != m.Kind || d.Name != m.Name {
			continue
		}

		if m.Kind == analyze.MemberMethod && d.Desc != m.Desc {
			continue
		}

		return lendable(d)
	}

	return false
}

func lendable(m analyze.Member) bool {
	if m.Access.Has(analyze.AccPrivate) {
		return false
	}

	return m.Kind != analyze.MemberMethod || !m.Access.Has(analyze.AccStatic)
}

func (p *propagator) declared(owner string) ([]analyze.Member, bool) {
	if members, ok := p.members[owner]; ok {
		return members, true
	}

	if _, ok := p.unit.Classes.HierarchyOf(owner); !ok {
		return nil, false
	}

	var members []analyze.Member

	for _, m := range p.unit.Classes.MembersOf(owner) {
		if !m.Inherited {
			members = append(members, m)
		}
	}

	p.members[owner] = members

	return members, true
}

// ancestors groups the supertypes of owner by distance, walk order kept.
func (p *propagator) ancestors(owner string) [][]string {
	var levels [][]string

	seen := map[string]bool{owner: true}
	current := []string{owner}

	for len(current) > 0 {
		var next []string

		for _, name := range current {
			h, ok := p.unit.Classes.HierarchyOf(name)
			if !ok {
				continue
			}

			for _, sup := range h.Supertypes() {
				if !seen[sup] {
					seen[sup] = true
					next = append(next, sup)
				}
			}
		}

		if len(next) > 0 {
			levels = append(levels, next)
		}

		current = next
	}

	return levels
}
