package mapping

import (
	"fmt"
	"slices"

	"mapping-resolver/internal/naming"
)

// BatchFile represents the root of a batch definition file.
type BatchFile struct {
	// Key names the batch in logs and cache diagnostics.
	Key string `yaml:"key"`

	// Environment selects the game side presets target.
	Environment Environment `yaml:"environment,omitempty"`

	// Split marks versions whose client and server ship separately
	// obfuscated jars. Joined split batches anchor on clientOfficial and
	// serverOfficial instead of official.
	Split bool `yaml:"split,omitempty"`

	// Anchors overrides the anchor namespaces derived from Environment
	// and Split.
	Anchors StringOrArray `yaml:"anchors,omitempty"`

	// Cache configures the table cache.
	Cache CacheDef `yaml:"cache,omitempty"`

	// Stub is the source of a table fragment merged last, overwriting.
	Stub string `yaml:"stub,omitempty"`

	// Entries lists the mapping entries in declaration order.
	Entries []EntryDef `yaml:"entries"`

	// Propagation lists the propagation units run after merging.
	Propagation []UnitDef `yaml:"propagation,omitempty"`
}

// CacheDef configures the table cache.
type CacheDef struct {
	// Dir is the cache location; empty disables caching.
	Dir string `yaml:"dir,omitempty"`

	// ForceReload ignores cached tables and resolves again.
	ForceReload bool `yaml:"force_reload,omitempty"`
}

// EntryDef declares one mapping entry. Preset fills in namespaces and
// behavior; every other field adds to or overrides what the preset sets.
type EntryDef struct {
	// ID identifies the entry in errors and diagnostics.
	ID string `yaml:"id"`

	// Preset names a known mapping set (see PresetNames).
	Preset string `yaml:"preset,omitempty"`

	// Source is the content location of the mapping file or archive.
	Source string `yaml:"source"`

	// Format forces a reader instead of detecting one.
	Format string `yaml:"format,omitempty"`

	// Renames are applied in order after the preset renames. A later
	// rename of the same namespace wins.
	Renames RenameList `yaml:"renames,omitempty"`

	// Provides lists contributed namespaces. {name: true} marks a
	// namespace authoritative.
	Provides ProvidedArray `yaml:"provides,omitempty"`

	// Requires lists namespaces that must be present before merging.
	Requires StringOrArray `yaml:"requires,omitempty"`

	// Transforms run on the fragment after renaming, before merging.
	Transforms []TransformDef `yaml:"transforms,omitempty"`

	// Hooks run on the merged table.
	Hooks []HookDef `yaml:"hooks,omitempty"`

	// Overwrite lets the entry replace names already in the table.
	Overwrite bool `yaml:"overwrite,omitempty"`
}

// TransformDef declares an insertion transform by kind. Which of the other
// fields apply depends on the kind.
type TransformDef struct {
	Kind       string        `yaml:"kind"`
	From       string        `yaml:"from,omitempty"`
	To         string        `yaml:"to,omitempty"`
	Namespace  string        `yaml:"namespace,omitempty"`
	Old        string        `yaml:"old,omitempty"`
	New        string        `yaml:"new,omitempty"`
	Namespaces StringOrArray `yaml:"namespaces,omitempty"`
}

// HookDef declares a post-merge hook by kind.
type HookDef struct {
	Kind string        `yaml:"kind"`
	From string        `yaml:"from,omitempty"`
	To   StringOrArray `yaml:"to,omitempty"`
}

// UnitDef declares a propagation unit.
type UnitDef struct {
	Name    string        `yaml:"name"`
	Anchor  string        `yaml:"anchor"`
	Sources StringOrArray `yaml:"sources"`

	// Exclude lists namespaces the unit does not propagate into. It
	// defaults to the other anchors of the batch.
	Exclude StringOrArray `yaml:"exclude,omitempty"`
}

// Environment is the game side a batch targets.
type Environment string

const (
	EnvJoined Environment = "joined"
	EnvClient Environment = "client"
	EnvServer Environment = "server"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case EnvJoined, EnvClient, EnvServer:
		return true
	default:
		return false
	}
}

// Rename is one ordered namespace rename.
type Rename struct {
	From string
	To   string
}

// RenameList keeps renames in file order.
type RenameList []Rename

// Provided is one contributed namespace.
type Provided struct {
	Namespace     string
	Authoritative bool
}

// ProvidedArray accepts plain namespace names and {name: authoritative}
// maps.
type ProvidedArray []Provided

// Names returns the provided namespace names.
func (p ProvidedArray) Names() []string {
	out := make([]string, len(p))
	for i, v := range p {
		out[i] = v.Namespace
	}

	return out
}

// StringOrArray is a type that can be unmarshaled from either a string or an array of strings.
// This allows fields to accept both "ns" and ["ns1", "ns2"].
type StringOrArray []string

// Namespaces converts the values to namespaces.
func (s StringOrArray) Namespaces() naming.Namespaces {
	return naming.NewNamespaces(s...)
}

// AnchorNamespaces returns the anchor namespaces of the batch: the explicit list,
// else clientOfficial and serverOfficial for joined split batches, else
// official.
func (bf *BatchFile) AnchorNamespaces() naming.Namespaces {
	switch {
	case !bf.Anchors.IsEmpty():
		return bf.Anchors.Namespaces()
	case bf.Split && bf.environment() == EnvJoined:
		return naming.NewNamespaces("clientOfficial", "serverOfficial")
	default:
		return naming.NewNamespaces("official")
	}
}

func (bf *BatchFile) environment() Environment {
	if bf.Environment == "" {
		return EnvJoined
	}

	return bf.Environment
}

// Entry returns the entry with the given id.
func (bf *BatchFile) Entry(id string) (*EntryDef, bool) {
	i := slices.IndexFunc(bf.Entries, func(e EntryDef) bool { return e.ID == id })
	if i < 0 {
		return nil, false
	}

	return &bf.Entries[i], true
}

func (e *EntryDef) String() string {
	if e.Preset == "" {
		return fmt.Sprintf("%s (%s)", e.ID, e.Source)
	}

	return fmt.Sprintf("%s (%s %s)", e.ID, e.Preset, e.Source)
}
