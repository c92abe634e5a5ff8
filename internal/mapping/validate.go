package mapping

import (
	"fmt"

	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/format"
	"mapping-resolver/internal/match"
	"mapping-resolver/internal/naming"
)

// Validate checks a batch file for structural errors: duplicate ids,
// unknown presets, formats, transform and hook kinds, empty sources and
// entries that require a namespace they provide. It does not fetch any
// content. A nil registry uses the built-in kinds.
func Validate(bf *BatchFile, registry *TransformRegistry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if bf == nil {
		res.AddError(diagnostic.CodeInvalidValue, "batch file is nil", "", "")
		return res
	}

	if registry == nil {
		registry = NewTransformRegistry()
	}

	if bf.Key == "" {
		res.AddError(diagnostic.CodeInvalidValue, "batch key is empty", "", "key")
	}

	if bf.Environment != "" && !bf.Environment.IsValid() {
		res.AddError(diagnostic.CodeInvalidValue,
			fmt.Sprintf("unknown environment %q", bf.Environment), "", "environment",
			suggest(string(bf.Environment), []string{string(EnvJoined), string(EnvClient), string(EnvServer)})...)
	}

	if len(bf.Entries) == 0 {
		res.AddWarning(diagnostic.CodeInvalidValue, "batch declares no entries", bf.Key, "entries")
	}

	seen := make(map[string]struct{}, len(bf.Entries))
	opts := PresetOptions{Environment: bf.environment(), Split: bf.Split}

	for i := range bf.Entries {
		e := &bf.Entries[i]

		if e.ID == "" {
			res.AddError(diagnostic.CodeInvalidValue, fmt.Sprintf("entry %d has no id", i+1), "", "")
		} else if _, ok := seen[e.ID]; ok {
			res.AddError(diagnostic.CodeDuplicateID, fmt.Sprintf("duplicate entry id %q", e.ID), e.ID, "")
		} else {
			seen[e.ID] = struct{}{}
		}

		validateEntry(res, registry, e, opts)
	}

	validateUnits(res, bf)

	return res
}

func validateEntry(res *diagnostic.Diagnostics, registry *TransformRegistry, e *EntryDef, opts PresetOptions) {
	if e.Source == "" {
		res.AddError(diagnostic.CodeEmptySource, "entry has no source", e.ID, "source")
	}

	if e.Format != "" && !format.Known(format.Format(e.Format)) {
		res.AddError(diagnostic.CodeUnknownFormat, fmt.Sprintf("unknown format %q", e.Format), e.ID, "format",
			suggest(e.Format, formatNames())...)
	}

	provided := naming.NewNamespaces(e.Provides.Names()...)
	requires := e.Requires.Namespaces()

	if e.Preset != "" {
		preset, ok := LookupPreset(e.Preset)
		if !ok {
			res.AddError(diagnostic.CodeUnknownPreset, fmt.Sprintf("unknown preset %q", e.Preset), e.ID, "preset",
				suggest(e.Preset, PresetNames())...)
		} else {
			behavior := preset(opts).BehaviorFor(format.Format(e.Format))
			provided = provided.Union(behavior.Provided())
			requires = requires.Union(behavior.Requires)
		}
	}

	for _, ns := range requires.Intersect(provided) {
		res.AddError(diagnostic.CodeSelfRequirement,
			fmt.Sprintf("entry requires namespace %q it provides", ns), e.ID, string(ns))
	}

	for _, t := range e.Transforms {
		if !registry.Has(t.Kind) {
			res.AddError(diagnostic.CodeUnknownTransform, fmt.Sprintf("unknown transform kind %q", t.Kind), e.ID, "transforms",
				suggest(t.Kind, registry.Kinds())...)

			continue
		}

		if _, err := registry.Transform(t); err != nil {
			res.AddError(diagnostic.CodeInvalidValue, err.Error(), e.ID, "transforms")
		}
	}

	for _, h := range e.Hooks {
		if !registry.HasHook(h.Kind) {
			res.AddError(diagnostic.CodeUnknownHook, fmt.Sprintf("unknown hook kind %q", h.Kind), e.ID, "hooks",
				suggest(h.Kind, registry.HookKinds())...)

			continue
		}

		if _, err := registry.Hook(h); err != nil {
			res.AddError(diagnostic.CodeInvalidValue, err.Error(), e.ID, "hooks")
		}
	}
}

func validateUnits(res *diagnostic.Diagnostics, bf *BatchFile) {
	seen := make(map[string]struct{}, len(bf.Propagation))

	for i, u := range bf.Propagation {
		label := u.Name
		if label == "" {
			label = fmt.Sprintf("propagation %d", i+1)
			res.AddError(diagnostic.CodeInvalidValue, "propagation unit has no name", label, "name")
		} else if _, ok := seen[u.Name]; ok {
			res.AddError(diagnostic.CodeDuplicateID, fmt.Sprintf("duplicate propagation unit %q", u.Name), label, "")
		}

		seen[u.Name] = struct{}{}

		if u.Anchor == "" {
			res.AddError(diagnostic.CodeInvalidValue, "propagation unit has no anchor", label, "anchor")
		}

		if u.Sources.IsEmpty() {
			res.AddError(diagnostic.CodeEmptySource, "propagation unit has no sources", label, "sources")
		}
	}
}

func suggest(value string, candidates []string) []string {
	if s, ok := match.Suggest(value, candidates); ok {
		return []string{s}
	}

	return nil
}

func formatNames() []string {
	formats := format.Formats()

	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	return names
}
