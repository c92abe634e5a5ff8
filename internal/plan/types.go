package plan

import (
	"fmt"

	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/format"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// Rename renames one namespace of a parsed fragment.
type Rename struct {
	From naming.Namespace
	To   naming.Namespace
}

// Provided is a namespace an entry contributes. Authoritative namespaces
// are final human-facing names; the flag does not change resolution.
type Provided struct {
	Namespace     naming.Namespace
	Authoritative bool
}

// Behavior is what an entry declares for one detected format.
type Behavior struct {
	Renames  []Rename
	Provides []Provided
	Requires naming.Namespaces
	// Skip drops the entry for this format.
	Skip bool
}

// Provided returns the provided namespaces.
func (b Behavior) Provided() naming.Namespaces {
	out := make(naming.Namespaces, 0, len(b.Provides))
	for _, p := range b.Provides {
		out = out.With(p.Namespace)
	}

	return out
}

// Authoritative returns the namespaces provided as authoritative.
func (b Behavior) Authoritative() naming.Namespaces {
	var out naming.Namespaces

	for _, p := range b.Provides {
		if p.Authoritative {
			out = out.With(p.Namespace)
		}
	}

	return out
}

func (b Behavior) renames() visitor.RenameNamespaces {
	r := visitor.RenameNamespaces{Renames: make(map[naming.Namespace]naming.Namespace, len(b.Renames))}
	for _, rn := range b.Renames {
		r.Renames[rn.From] = rn.To
	}

	return r
}

// BehaviorFunc adjusts the declared behavior of an entry for the format its
// content was detected as. It must be pure.
type BehaviorFunc func(f format.Format, declared Behavior) Behavior

// Hook restructures the table after every entry is merged.
type Hook interface {
	Name() string
	Run(b *table.Builder) error
}

// Entry declares one mapping source of a batch.
type Entry struct {
	ID string
	// Source is passed to the content provider as is.
	Source string
	// Format forces a reader; empty means detect.
	Format format.Format

	Renames  []Rename
	Provides []Provided
	Requires naming.Namespaces
	Behavior BehaviorFunc

	// Transforms run on the fragment after renaming, before merging.
	Transforms []visitor.Transform
	Hooks      []Hook
	// Overwrite lets this entry replace names already in the table.
	Overwrite bool
}

// BehaviorFor returns the behavior of the entry when its content is f.
func (e Entry) BehaviorFor(f format.Format) Behavior {
	b := Behavior{Renames: e.Renames, Provides: e.Provides, Requires: e.Requires}
	if e.Behavior != nil {
		b = e.Behavior(f, b)
	}

	return b
}

// Unit is one propagation pass over the classes found in Sources.
type Unit struct {
	Name    string
	Anchor  naming.Namespace
	Sources []string
	Exclude naming.Namespaces
}

// Batch is every entry merged into one table.
type Batch struct {
	Key     string
	Entries []Entry
	// Stub is a table fragment merged last, overwriting.
	Stub  []byte
	Units []Unit
}

// Result is a resolved batch.
type Result struct {
	Table       *table.Table
	Fingerprint string
	Cached      bool
	// Order lists merged part ids in merge order: the entry id, or
	// "id/format" for an entry whose archive mixes formats.
	Order       []string
	Diagnostics diagnostic.Diagnostics
}

// UnsatisfiedDependencyError reports an entry whose requirement no entry
// provides.
type UnsatisfiedDependencyError struct {
	Entry      string
	Namespace  naming.Namespace
	Suggestion naming.Namespace
}

func (e *UnsatisfiedDependencyError) Error() string {
	msg := fmt.Sprintf("entry %q requires namespace %q, which no entry provides", e.Entry, e.Namespace)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", e.Suggestion)
	}

	return msg
}
