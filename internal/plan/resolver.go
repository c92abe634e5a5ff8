package plan

import (
	"context"
	"fmt"
	"runtime"

	"mapping-resolver/internal/cache"
	"mapping-resolver/internal/common"
	"mapping-resolver/internal/content"
	"mapping-resolver/internal/ctxlog"
	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/format"
	"mapping-resolver/internal/match"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// Anchors are preferred, in order, when choosing the namespace a
	// fragment is correlated on.
	Anchors naming.Namespaces
	// Workers bounds concurrent fetching and parsing (0 = unbounded).
	Workers int
	// Readers are tried in order when detecting formats.
	Readers []format.Reader
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		Anchors: naming.NewNamespaces("official", "clientOfficial", "serverOfficial"),
		Workers: runtime.NumCPU(),
		Readers: format.Default(),
	}
}

// Resolver resolves batches. It holds no per-batch state.
type Resolver struct {
	content content.Provider
	store   cache.Store
	config  ResolutionConfig
}

// NewResolver creates a new Resolver. A nil store disables caching.
func NewResolver(provider content.Provider, store cache.Store, config ResolutionConfig) *Resolver {
	if config.Readers == nil {
		config.Readers = format.Default()
	}

	return &Resolver{content: provider, store: store, config: config}
}

// Resolve merges a batch into one table, or loads it from the cache.
func (r *Resolver) Resolve(ctx context.Context, batch Batch) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("key", batch.Key)
	ctx = ctxlog.WithLogger(ctx, logger)

	res := &Result{Fingerprint: Fingerprint(batch)}

	if r.store != nil {
		cached, err := r.store.Load(ctx, res.Fingerprint)
		if err != nil {
			return nil, err
		}

		if cached != nil {
			logger.Info("Loaded mappings from cache.", "fingerprint", res.Fingerprint)
			res.Table, res.Cached = cached, true

			return res, nil
		}

		res.Diagnostics.AddInfo(diagnostic.CodeCacheMiss, "no cached table", batch.Key, res.Fingerprint)
	}

	parts, diags, err := r.load(ctx, batch.Entries)
	res.Diagnostics.Merge(diags)

	if err != nil {
		return nil, err
	}

	b := table.NewBuilder()

	if res.Order, err = r.merge(ctx, b, parts, &res.Diagnostics); err != nil {
		return nil, err
	}

	if len(batch.Stub) > 0 {
		if err := r.mergeStub(b, batch.Stub); err != nil {
			return nil, err
		}
	}

	for _, e := range batch.Entries {
		for _, hook := range e.Hooks {
			if err := hook.Run(b); err != nil {
				return nil, fmt.Errorf("hook %s of entry %s: %w", hook.Name(), e.ID, err)
			}
		}
	}

	if err := r.propagate(ctx, b, batch.Units, &res.Diagnostics); err != nil {
		return nil, err
	}

	if res.Table, err = b.Build(); err != nil {
		return nil, err
	}

	logger.Info("Resolved mappings.", "entries", len(res.Order), "namespaces", res.Table.Namespaces().String(), "rows", res.Table.Rows())

	if r.store != nil {
		if err := r.store.Store(ctx, res.Fingerprint, res.Table); err != nil {
			logger.Warn("Failed to cache mappings.", "fingerprint", res.Fingerprint, "error", err)
		}
	}

	res.Diagnostics.Log(ctx, logger)

	return res, nil
}

// merge runs the rounds. Each round merges the first pending part, in
// declaration order, whose requirements are all present.
func (r *Resolver) merge(ctx context.Context, b *table.Builder, parts []*part, diags *diagnostic.Diagnostics) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	var pending []*part

	for _, p := range parts {
		if p.behavior.Skip {
			diags.AddInfo(diagnostic.CodeSkippedFile,
				fmt.Sprintf("entry skipped for format %s", p.format), p.id, "")

			continue
		}

		pending = append(pending, p)
	}

	order := make([]string, 0, len(pending))

	for round := 1; len(pending) > 0; round++ {
		present := b.Namespaces()

		next := -1

		for i, p := range pending {
			if len(p.behavior.Requires.Without(present...)) == 0 {
				next = i
				break
			}
		}

		if next < 0 {
			return nil, unsatisfied(pending, present)
		}

		p := pending[next]
		pending = append(pending[:next], pending[next+1:]...)

		if err := r.mergePart(ctx, b, p, diags); err != nil {
			return nil, fmt.Errorf("entry %s: %w", p.id, err)
		}

		logger.Debug("Merged mapping entry.", "round", round, "entry", p.id, "format", p.format)

		order = append(order, p.id)
	}

	return order, nil
}

func unsatisfied(pending []*part, present naming.Namespaces) error {
	p := pending[0]
	missing := p.behavior.Requires.Without(present...)[0]

	candidates := present
	for _, other := range pending {
		candidates = candidates.Union(other.behavior.Provided())
	}

	err := &UnsatisfiedDependencyError{Entry: p.id, Namespace: missing}
	if s, ok := match.Suggest(string(missing), candidates.Strings()); ok {
		err.Suggestion = naming.Namespace(s)
	}

	return err
}

// mergePart merges every file of a part, then registers its provided
// namespaces.
func (r *Resolver) mergePart(ctx context.Context, b *table.Builder, p *part, diags *diagnostic.Diagnostics) error {
	mode := table.MergeStrict
	if p.entry.Overwrite {
		mode = table.MergeOverwrite
	}

	for _, pf := range p.files {
		fragment := pf.fragment

		if fragment == nil {
			base, ok := pf.reader.(format.BaseReader)
			if !ok {
				continue
			}

			ns, ok := firstPresent(p.behavior.Requires, b.Namespaces())
			if !ok {
				return fmt.Errorf("%s: %s reads against a base namespace, declare one in requires", pf.file.Name, pf.reader.Format())
			}

			var err error
			if fragment, err = base.ReadWith(pf.file, b.View(), ns); err != nil {
				return err
			}
		}

		if err := r.mergeFragment(ctx, b, p, fragment, mode, diags); err != nil {
			return err
		}
	}

	return b.AddNamespaces(p.behavior.Provided()...)
}

func (r *Resolver) mergeFragment(ctx context.Context, b *table.Builder, p *part, fragment *table.Table, mode table.MergeMode, diags *diagnostic.Diagnostics) error {
	rename := p.behavior.renames()

	renamed, err := rename.Header(fragment.Namespaces())
	if err != nil {
		return err
	}

	present := b.Namespaces()

	anchor, ok := r.anchor(renamed, present, p.behavior.Requires)
	if !ok {
		if len(present) > 0 {
			return fmt.Errorf("fragment namespaces %s share nothing with the table (%s)", renamed, present)
		}

		if anchor, ok = common.First(renamed); !ok {
			return nil
		}
	}

	// Known columns the entry does not provide are context, not data.
	provided := p.behavior.Provided()

	var drop naming.Namespaces

	for _, ns := range renamed {
		if ns != anchor && !provided.Contains(ns) && present.Contains(ns) {
			drop = append(drop, ns)
		}
	}

	chain := []visitor.Transform{rename}

	if len(drop) > 0 {
		diags.AddInfo(diagnostic.CodeDroppedNamespace,
			fmt.Sprintf("dropping context namespaces %s", drop), p.id, "")
		chain = append(chain, visitor.DropNamespaces{Namespaces: drop})
	}

	chain = append(chain, p.entry.Transforms...)

	// Into an existing table, only the anchor and provided namespaces are
	// registered; columns the entry never declared are dropped.
	if len(present) > 0 {
		undeclared, err := undeclaredNamespaces(renamed.Without(drop...), p.entry.Transforms, anchor, provided)
		if err != nil {
			return err
		}

		if len(undeclared) > 0 {
			diags.AddWarning(diagnostic.CodeDroppedNamespace,
				fmt.Sprintf("dropping namespaces %s the entry does not provide", undeclared), p.id, "")
			chain = append(chain, visitor.DropNamespaces{Namespaces: undeclared})
		}
	}

	ctxlog.FromContext(ctx).Debug("Merging fragment.", "entry", p.id, "anchor", anchor, "namespaces", renamed.String())

	merger := b.Merger(anchor, table.MergeOptions{Mode: mode, Source: p.id})

	return fragment.Accept(visitor.Apply(merger, chain...))
}

// undeclaredNamespaces returns the namespaces left after transforms that are
// neither the anchor nor provided.
func undeclaredNamespaces(header naming.Namespaces, transforms []visitor.Transform, anchor naming.Namespace, provided naming.Namespaces) (naming.Namespaces, error) {
	var err error

	for _, t := range transforms {
		if header, err = t.Header(header); err != nil {
			return nil, err
		}
	}

	var out naming.Namespaces

	for _, ns := range header {
		if ns != anchor && !provided.Contains(ns) {
			out = append(out, ns)
		}
	}

	return out, nil
}

// anchor picks the namespace a fragment is correlated on: the first
// configured anchor both sides carry, else the first such requirement, else
// the first such fragment namespace.
func (r *Resolver) anchor(fragment, present, requires naming.Namespaces) (naming.Namespace, bool) {
	shared := fragment.Intersect(present)

	for _, candidates := range []naming.Namespaces{r.config.Anchors, requires, fragment} {
		if ns, ok := firstPresent(candidates, shared); ok {
			return ns, true
		}
	}

	return "", false
}

func firstPresent(candidates, present naming.Namespaces) (naming.Namespace, bool) {
	return common.First(candidates.Intersect(present))
}

// mergeStub merges the stub fragment last, overwriting.
func (r *Resolver) mergeStub(b *table.Builder, stub []byte) error {
	reader, fragment, err := format.Detect(format.File{Name: "stub", Data: stub}, r.config.Readers)
	if err != nil {
		return fmt.Errorf("stub: %w", err)
	}

	if fragment == nil {
		return fmt.Errorf("stub: %s needs a base table", reader.Format())
	}

	present := b.Namespaces()

	anchor, ok := r.anchor(fragment.Namespaces(), present, nil)
	if !ok {
		if len(present) > 0 {
			return fmt.Errorf("stub namespaces %s share nothing with the table", fragment.Namespaces())
		}

		if anchor, ok = common.First(fragment.Namespaces()); !ok {
			return nil
		}
	}

	return b.Merge(fragment, anchor, table.MergeOptions{Mode: table.MergeOverwrite, Source: "stub"})
}
