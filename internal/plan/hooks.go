package plan

import (
	"fmt"
	"sort"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
)

// Renest re-derives nested class names in To from the names of their outer
// classes, using the nesting found in From: when a$b is nested in a, its
// name in every To namespace becomes the outer name plus "$" plus its own
// simple name.
type Renest struct {
	From naming.Namespace
	To   naming.Namespaces
}

var _ Hook = Renest{}

func (Renest) Name() string { return "renest" }

func (h Renest) Run(b *table.Builder) error {
	present := b.Namespaces()
	if !present.Contains(h.From) {
		return nil
	}

	type nested struct {
		ref   table.ClassRef
		name  string
		depth int
	}

	var classes []nested

	for _, ref := range b.Classes() {
		name, ok := ref.Name(h.From)
		if !ok {
			continue
		}

		if _, ok := naming.OuterName(name); ok {
			classes = append(classes, nested{ref: ref, name: name, depth: strings.Count(name, "$")})
		}
	}

	// Outer classes settle before their inner classes.
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].depth < classes[j].depth })

	for _, c := range classes {
		outerName, _ := naming.OuterName(c.name)

		outer, ok := b.FindClass(h.From, outerName)
		if !ok {
			continue
		}

		for _, ns := range h.To {
			if !present.Contains(ns) {
				continue
			}

			outerTo, ok := outer.Name(ns)
			if !ok {
				continue
			}

			want := outerTo + "$" + innerName(c.ref, ns, c.name)
			if current, ok := c.ref.Name(ns); ok && current == want {
				continue
			}

			if err := b.SetClassName(c.ref, ns, want); err != nil {
				return fmt.Errorf("renest %s in %s: %w", c.name, ns, err)
			}
		}
	}

	return nil
}

// innerName is the simple name of a nested class in ns, falling back to
// its name in from.
func innerName(ref table.ClassRef, ns naming.Namespace, from string) string {
	if current, ok := ref.Name(ns); ok {
		return naming.SimpleName(current)
	}

	return naming.SimpleName(from)
}

// CopyClassNames sets the To name of every class to its From name. Rows
// without a From name keep their To name.
type CopyClassNames struct {
	From naming.Namespace
	To   naming.Namespace
}

var _ Hook = CopyClassNames{}

func (CopyClassNames) Name() string { return "copy-class-names" }

func (h CopyClassNames) Run(b *table.Builder) error {
	present := b.Namespaces()
	if !present.Contains(h.From) || !present.Contains(h.To) {
		return nil
	}

	for _, ref := range b.Classes() {
		name, ok := ref.Name(h.From)
		if !ok {
			continue
		}

		if current, ok := ref.Name(h.To); ok && current == name {
			continue
		}

		if err := b.SetClassName(ref, h.To, name); err != nil {
			return fmt.Errorf("copy %s names into %s: %w", h.From, h.To, err)
		}
	}

	return nil
}
