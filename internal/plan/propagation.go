package plan

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"mapping-resolver/internal/analyze"
	"mapping-resolver/internal/ctxlog"
	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/propagate"
	"mapping-resolver/internal/table"
)

// propagate runs every unit concurrently against the merged table and
// merges the results back in unit order, filling only missing names.
func (r *Resolver) propagate(ctx context.Context, b *table.Builder, units []Unit, diags *diagnostic.Diagnostics) error {
	if len(units) == 0 {
		return nil
	}

	view := b.View()
	targets := view.Namespaces()

	results := make([]*table.Table, len(units))
	unitDiags := make([]diagnostic.Diagnostics, len(units))

	g, gctx := errgroup.WithContext(ctx)
	if r.config.Workers > 0 {
		g.SetLimit(r.config.Workers)
	}

	for i, u := range units {
		g.Go(func() error {
			graph, err := r.classes(gctx, u)
			if err != nil {
				return fmt.Errorf("propagation %s: %w", u.Name, err)
			}

			unit := propagate.Unit{Name: u.Name, Anchor: u.Anchor, Classes: graph, Exclude: u.Exclude}

			results[i], unitDiags[i], err = propagate.Propagate(view, unit, targets)
			if err != nil {
				return fmt.Errorf("propagation %s: %w", u.Name, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)

	for i, u := range units {
		diags.Merge(unitDiags[i])

		opts := table.MergeOptions{Mode: table.MergeFillMissing, Source: "propagation " + u.Name}
		if err := b.Merge(results[i], u.Anchor, opts); err != nil {
			return err
		}

		logger.Debug("Merged propagated names.", "unit", u.Name, "anchor", u.Anchor, "rows", results[i].Rows())
	}

	return nil
}

// classes loads the class graph of a unit.
func (r *Resolver) classes(ctx context.Context, u Unit) (*analyze.ClassGraph, error) {
	a := analyze.NewAnalyzer()

	for _, source := range u.Sources {
		data, err := r.content.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}

		name := r.content.DisplayName(source)

		if strings.HasSuffix(name, ".class") {
			err = a.LoadClass(name, data)
		} else {
			err = a.LoadJar(name, data)
		}

		if err != nil {
			return nil, err
		}
	}

	return a.Graph(), nil
}
