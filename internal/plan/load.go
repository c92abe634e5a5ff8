package plan

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mapping-resolver/internal/common"
	"mapping-resolver/internal/ctxlog"
	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/format"
	"mapping-resolver/internal/table"
)

// part is the files of an entry that share one format, parsed, with the
// behavior for that format fixed. An entry whose archive mixes formats
// splits into one part per format.
type part struct {
	id       string
	entry    Entry
	format   format.Format
	behavior Behavior
	files    []parsedFile
}

type parsedFile struct {
	file   format.File
	reader format.Reader
	// fragment is nil for base readers, which parse against the table
	// at merge time.
	fragment *table.Table
}

// load fetches and parses every entry concurrently. Parts keep the entry
// declaration order.
func (r *Resolver) load(ctx context.Context, entries []Entry) ([]*part, diagnostic.Diagnostics, error) {
	loaded := make([][]*part, len(entries))
	diags := make([]diagnostic.Diagnostics, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	if r.config.Workers > 0 {
		g.SetLimit(r.config.Workers)
	}

	for i := range entries {
		g.Go(func() error {
			p, err := r.loadEntry(gctx, entries[i], &diags[i])
			if err != nil {
				return fmt.Errorf("entry %s: %w", entries[i].ID, err)
			}

			loaded[i] = p

			return nil
		})
	}

	var all diagnostic.Diagnostics

	if err := g.Wait(); err != nil {
		return nil, all, err
	}

	var parts []*part

	for i := range entries {
		all.Merge(diags[i])
		parts = append(parts, loaded[i]...)
	}

	return parts, all, nil
}

func (r *Resolver) loadEntry(ctx context.Context, e Entry, diags *diagnostic.Diagnostics) ([]*part, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := r.content.Fetch(ctx, e.Source)
	if err != nil {
		return nil, err
	}

	name := r.content.DisplayName(e.Source)

	files, err := format.Unpack(format.File{Name: name, Data: data})
	if err != nil {
		return nil, err
	}

	single, ok := common.Only(files)
	archive := !ok || single.Name != name

	var parsed []parsedFile

	for _, f := range files {
		pf, err := r.parse(f, e.Format)
		if errors.Is(err, format.ErrUnknownFormat) && archive {
			diags.AddWarning(diagnostic.CodeSkippedFile,
				fmt.Sprintf("%s is not a known mapping format", f.Name), e.ID, f.Name)

			continue
		}

		if err != nil {
			return nil, err
		}

		parsed = append(parsed, pf)
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%s: %w", name, format.ErrUnknownFormat)
	}

	formats, groups := common.GroupBy(parsed, func(pf parsedFile) format.Format { return pf.reader.Format() })

	parts := make([]*part, len(formats))

	for i, f := range formats {
		parts[i] = &part{id: e.ID, entry: e, format: f, behavior: e.BehaviorFor(f), files: groups[f]}
		if len(formats) > 1 {
			parts[i].id = e.ID + "/" + string(f)
		}
	}

	logger.Debug("Loaded mapping entry.", "entry", e.ID, "parts", len(parts), "files", len(files))

	return parts, nil
}

func (r *Resolver) parse(f format.File, forced format.Format) (parsedFile, error) {
	if forced == "" {
		reader, t, err := format.Detect(f, r.config.Readers)
		if err != nil {
			return parsedFile{}, err
		}

		return parsedFile{file: f, reader: reader, fragment: t}, nil
	}

	reader, ok := format.Lookup(r.config.Readers, forced)
	if !ok {
		return parsedFile{}, fmt.Errorf("%s: no reader for %q: %w", f.Name, forced, format.ErrUnknownFormat)
	}

	if !reader.CanRead(f) {
		return parsedFile{}, fmt.Errorf("%s is not %s: %w", f.Name, forced, format.ErrUnknownFormat)
	}

	if _, ok := reader.(format.BaseReader); ok {
		return parsedFile{file: f, reader: reader}, nil
	}

	t, err := reader.Read(f)
	if err != nil {
		return parsedFile{}, err
	}

	return parsedFile{file: f, reader: reader, fragment: t}, nil
}
