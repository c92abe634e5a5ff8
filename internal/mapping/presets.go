package mapping

import (
	"slices"

	"mapping-resolver/internal/format"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/plan"
	"mapping-resolver/internal/visitor"
)

// PresetOptions are the batch settings presets depend on.
type PresetOptions struct {
	Environment Environment
	Split       bool
}

// Preset builds the namespaces, behavior, transforms and hooks of a known
// mapping set. ID and Source are left to the caller.
type Preset func(opts PresetOptions) plan.Entry

var presets = map[string]Preset{
	"intermediary":        intermediary("intermediary"),
	"legacy-intermediary": intermediary("legacyIntermediary"),
	"calamus":             intermediary("calamus"),
	"babric-intermediary": babricIntermediary,
	"yarn":                named("intermediary", "yarn"),
	"legacy-yarn":         named("legacyIntermediary", "legacyYarn"),
	"feather":             feather,
	"barn":                named("babricIntermediary", "barn"),
	"biny":                named("babricIntermediary", "biny"),
	"quilt":               named("intermediary", "quilt"),
	"mojmap":              mojmap,
	"searge":              searge,
	"searge-mojmap":       seargeMojmap,
	"mcp":                 mcp("mcp"),
	"forge-mcp":           mcp("forgeMCP"),
	"retro-mcp":           retroMCP,
	"parchment":           parchment,
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns every preset name, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func renames(pairs ...naming.Namespace) []plan.Rename {
	out := make([]plan.Rename, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] != pairs[i+1] {
			out = append(out, plan.Rename{From: pairs[i], To: pairs[i+1]})
		}
	}

	return out
}

func provides(ns naming.Namespace, authoritative bool) plan.Provided {
	return plan.Provided{Namespace: ns, Authoritative: authoritative}
}

// intermediary files carry official and intermediary columns.
func intermediary(ns naming.Namespace) Preset {
	return func(PresetOptions) plan.Entry {
		return plan.Entry{
			Renames:  renames("intermediary", ns),
			Provides: []plan.Provided{provides(ns, false)},
		}
	}
}

// sides maps the client and server columns of split-jar files onto the
// official namespaces of the environment.
func sides(e *plan.Entry, opts PresetOptions) {
	switch opts.Environment {
	case EnvClient:
		e.Renames = append(e.Renames, renames("client", "official", "clientOfficial", "official")...)
	case EnvServer:
		e.Renames = append(e.Renames, renames("server", "official", "serverOfficial", "official")...)
	default:
		e.Renames = append(e.Renames, renames("client", "clientOfficial", "server", "serverOfficial")...)
		e.Requires = e.Requires.With("clientOfficial")
		e.Provides = append(e.Provides, provides("serverOfficial", false))
	}
}

func babricIntermediary(opts PresetOptions) plan.Entry {
	e := plan.Entry{Provides: []plan.Provided{provides("babricIntermediary", false)}}
	sides(&e, opts)
	e.Renames = append(e.Renames, renames("intermediary", "babricIntermediary")...)

	return e
}

// named builds a tiny v2 named set layered on an intermediary namespace.
// Nested class names are re-derived from the intermediary nesting.
func named(requires, ns naming.Namespace) Preset {
	return func(PresetOptions) plan.Entry {
		return plan.Entry{
			Renames:  renames("intermediary", requires, "named", ns),
			Requires: naming.Namespaces{requires},
			Provides: []plan.Provided{provides(ns, true)},
			Hooks:    []plan.Hook{plan.Renest{From: requires, To: naming.Namespaces{ns}}},
		}
	}
}

func feather(opts PresetOptions) plan.Entry {
	e := named("calamus", "feather")(opts)
	e.Transforms = []visitor.Transform{visitor.ReplaceClassNames{Namespace: "feather", Old: "__", New: "$"}}

	return e
}

// mojmap is a proguard file from named to obfuscated names.
func mojmap(PresetOptions) plan.Entry {
	return plan.Entry{
		Renames:  renames("source", "mojmap", "target", "official"),
		Provides: []plan.Provided{provides("mojmap", true)},
	}
}

// searge reads the legacy joined srg or tsrg files.
func searge(PresetOptions) plan.Entry {
	return plan.Entry{
		Renames:  renames("source", "official", "target", "searge"),
		Provides: []plan.Provided{provides("searge", false)},
	}
}

// seargeMojmap reads the tsrg v2 files of modern versions, whose class
// names follow mojmap.
func seargeMojmap(PresetOptions) plan.Entry {
	return plan.Entry{
		Renames:    renames("obf", "official", "srg", "searge"),
		Requires:   naming.NewNamespaces("mojmap"),
		Provides:   []plan.Provided{provides("searge", false)},
		Transforms: []visitor.Transform{visitor.DropNamespaces{Namespaces: naming.NewNamespaces("id")}},
		Hooks:      []plan.Hook{plan.CopyClassNames{From: "mojmap", To: "searge"}},
	}
}

// mcp archives mix srg or rgs files with csv files named on searge names;
// which namespaces an entry provides depends on the file.
func mcp(ns naming.Namespace) Preset {
	return func(PresetOptions) plan.Entry {
		return plan.Entry{Behavior: mcpBehavior(ns)}
	}
}

func mcpBehavior(ns naming.Namespace) plan.BehaviorFunc {
	return func(f format.Format, declared plan.Behavior) plan.Behavior {
		var preset plan.Behavior

		switch f {
		case format.SRG, format.TSRG, format.RGS:
			preset = plan.Behavior{
				Renames:  renames("source", "official", "target", "searge"),
				Provides: []plan.Provided{provides("searge", false)},
			}
		default:
			preset = plan.Behavior{
				Renames:  renames("source", "searge", "target", ns),
				Requires: naming.NewNamespaces("searge"),
				Provides: []plan.Provided{provides(ns, true)},
			}
		}

		return layer(preset, declared)
	}
}

func retroMCP(opts PresetOptions) plan.Entry {
	e := plan.Entry{
		Renames:  renames("named", "retroMCP"),
		Provides: []plan.Provided{provides("retroMCP", true)},
	}

	if opts.Split {
		sides(&e, opts)
	}

	return e
}

// parchment adds parameter names and javadoc to mojmap. The reader's
// target column carries the mojmap names; the source copy is dropped.
func parchment(PresetOptions) plan.Entry {
	return plan.Entry{
		Renames:    renames("target", "mojmap"),
		Requires:   naming.NewNamespaces("mojmap"),
		Provides:   []plan.Provided{provides("mojmap", true)},
		Transforms: []visitor.Transform{visitor.DropNamespaces{Namespaces: naming.NewNamespaces("source")}},
	}
}

// layer puts declared on top of base: renames run after base renames,
// provides and requires add up.
func layer(base, declared plan.Behavior) plan.Behavior {
	out := plan.Behavior{
		Renames:  append(slices.Clone(base.Renames), declared.Renames...),
		Provides: append(slices.Clone(base.Provides), declared.Provides...),
		Requires: base.Requires.Union(declared.Requires),
		Skip:     base.Skip || declared.Skip,
	}

	return out
}
