package mapping

import (
	"fmt"

	"mapping-resolver/internal/format"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/plan"
)

// Build turns a batch file into a resolvable batch. The stub source is not
// read; callers fetch it into Batch.Stub. A nil registry uses the built-in
// kinds.
func Build(bf *BatchFile, registry *TransformRegistry) (plan.Batch, error) {
	if registry == nil {
		registry = NewTransformRegistry()
	}

	batch := plan.Batch{Key: bf.Key}
	opts := PresetOptions{Environment: bf.environment(), Split: bf.Split}

	for i := range bf.Entries {
		e, err := registry.Entry(bf.Entries[i], opts)
		if err != nil {
			return plan.Batch{}, err
		}

		batch.Entries = append(batch.Entries, e)
	}

	anchors := bf.AnchorNamespaces()

	for _, u := range bf.Propagation {
		unit := plan.Unit{
			Name:    u.Name,
			Anchor:  naming.Namespace(u.Anchor),
			Sources: u.Sources,
			Exclude: u.Exclude.Namespaces(),
		}

		if u.Exclude.IsEmpty() {
			unit.Exclude = anchors.Without(unit.Anchor)
		}

		batch.Units = append(batch.Units, unit)
	}

	return batch, nil
}

// Entry builds one plan entry: the preset first, then the declaration on
// top of it.
func (r *TransformRegistry) Entry(def EntryDef, opts PresetOptions) (plan.Entry, error) {
	var e plan.Entry

	if def.Preset != "" {
		preset, ok := LookupPreset(def.Preset)
		if !ok {
			return plan.Entry{}, fmt.Errorf("entry %s: unknown preset %q", def.ID, def.Preset)
		}

		e = preset(opts)
	}

	e.ID = def.ID
	e.Source = def.Source
	e.Format = format.Format(def.Format)
	e.Overwrite = e.Overwrite || def.Overwrite
	e.Requires = e.Requires.Union(def.Requires.Namespaces())

	for _, rn := range def.Renames {
		e.Renames = append(e.Renames, plan.Rename{From: naming.Namespace(rn.From), To: naming.Namespace(rn.To)})
	}

	for _, p := range def.Provides {
		e.Provides = append(e.Provides, plan.Provided{Namespace: naming.Namespace(p.Namespace), Authoritative: p.Authoritative})
	}

	for _, td := range def.Transforms {
		t, err := r.Transform(td)
		if err != nil {
			return plan.Entry{}, fmt.Errorf("entry %s: %w", def.ID, err)
		}

		e.Transforms = append(e.Transforms, t)
	}

	for _, hd := range def.Hooks {
		h, err := r.Hook(hd)
		if err != nil {
			return plan.Entry{}, fmt.Errorf("entry %s: %w", def.ID, err)
		}

		e.Hooks = append(e.Hooks, h)
	}

	return e, nil
}
