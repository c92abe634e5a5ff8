package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"mapping-resolver/internal/bridge"
	"mapping-resolver/internal/cache"
	"mapping-resolver/internal/content"
	"mapping-resolver/internal/ctxlog"
	"mapping-resolver/internal/mapping"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/plan"
)

// summary is the JSON output of resolve.
type summary struct {
	Key         string   `json:"key"`
	Fingerprint string   `json:"fingerprint"`
	Cached      bool     `json:"cached"`
	Order       []string `json:"order,omitempty"`
	Namespaces  []string `json:"namespaces"`
	Classes     int      `json:"classes"`
	Rows        int      `json:"rows"`
	Warnings    int      `json:"warnings"`
	Output      string   `json:"output,omitempty"`
}

func (c *ResolveCommand) run(ctx context.Context, stdout io.Writer) error {
	fs := afs.New()

	bf, res, err := c.resolve(ctx, fs)
	if err != nil {
		return err
	}

	if c.Output != "" {
		var buf bytes.Buffer
		if err := res.Table.Write(&buf); err != nil {
			return err
		}

		if err := fs.Upload(ctx, c.Output, file.DefaultFileOsMode, &buf); err != nil {
			return fmt.Errorf("write %s: %w", c.Output, err)
		}

		ctxlog.FromContext(ctx).Info("Wrote mappings.", "output", c.Output)
	}

	if c.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(summary{
			Key:         bf.Key,
			Fingerprint: res.Fingerprint,
			Cached:      res.Cached,
			Order:       res.Order,
			Namespaces:  res.Table.Namespaces().Strings(),
			Classes:     res.Table.Classes(),
			Rows:        res.Table.Rows(),
			Warnings:    len(res.Diagnostics.Warnings),
			Output:      c.Output,
		})
	}

	if c.Output == "" {
		return res.Table.Write(stdout)
	}

	return nil
}

func (c *BridgeCommand) run(ctx context.Context, stdout io.Writer) error {
	_, res, err := c.resolve(ctx, afs.New())
	if err != nil {
		return err
	}

	emitter, err := bridge.New(res.Table, naming.Namespace(c.Src), naming.Namespace(c.Dst), c.Locals)
	if err != nil {
		return err
	}

	rec := &bridge.Recorder{}
	if err := emitter.Apply(rec); err != nil {
		return err
	}

	for _, line := range rec.Lines {
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return err
		}
	}

	return nil
}

func (c *NamespacesCommand) run(ctx context.Context, stdout io.Writer) error {
	_, res, err := c.resolve(ctx, afs.New())
	if err != nil {
		return err
	}

	names := res.Table.Namespaces().Strings()

	if c.JSON {
		return json.NewEncoder(stdout).Encode(names)
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}

	return nil
}

func (c *ValidateCommand) run(ctx context.Context, stdout io.Writer) error {
	bf, err := mapping.LoadFile(c.File)
	if err != nil {
		return err
	}

	diags := mapping.Validate(bf, nil)
	diags.Log(ctx, ctxlog.FromContext(ctx))

	if err := diags.Error(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "%s: %d entries, %d warnings\n", bf.Key, len(bf.Entries), len(diags.Warnings))

	return err
}

func (c *PresetsCommand) run(stdout io.Writer) error {
	for _, name := range mapping.PresetNames() {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}

	return nil
}

// resolve loads, validates, builds and resolves the batch file.
func (o *BatchOptions) resolve(ctx context.Context, fs afs.Service) (*mapping.BatchFile, *plan.Result, error) {
	logger := ctxlog.FromContext(ctx)

	bf, err := mapping.LoadFile(o.File)
	if err != nil {
		return nil, nil, err
	}

	diags := mapping.Validate(bf, nil)
	if err := diags.Error(); err != nil {
		return nil, nil, fmt.Errorf("invalid batch file %s: %w", o.File, err)
	}

	diags.Log(ctx, logger)

	batch, err := mapping.Build(bf, nil)
	if err != nil {
		return nil, nil, err
	}

	baseURL, err := o.baseURL()
	if err != nil {
		return nil, nil, err
	}

	provider := content.New(baseURL, fs)

	if bf.Stub != "" {
		if batch.Stub, err = provider.Fetch(ctx, bf.Stub); err != nil {
			return nil, nil, fmt.Errorf("stub: %w", err)
		}
	}

	config := plan.DefaultConfig()
	config.Anchors = bf.AnchorNamespaces()

	if o.Workers > 0 {
		config.Workers = o.Workers
	}

	res, err := plan.NewResolver(provider, o.store(bf, baseURL, fs), config).Resolve(ctx, batch)
	if err != nil {
		return nil, nil, err
	}

	return bf, res, nil
}

func (o *BatchOptions) baseURL() (string, error) {
	if o.BaseURL != "" {
		return o.BaseURL, nil
	}

	abs, err := filepath.Abs(o.File)
	if err != nil {
		return "", err
	}

	return filepath.Dir(abs), nil
}

// store returns nil when caching is disabled: no directory is configured
// or --no-cache is set.
func (o *BatchOptions) store(bf *mapping.BatchFile, baseURL string, fs afs.Service) cache.Store {
	dir := bf.Cache.Dir
	if o.CacheDir != "" {
		dir = o.CacheDir
	}

	if o.NoCache || dir == "" {
		return nil
	}

	if url.IsRelative(dir) {
		dir = url.Join(baseURL, dir)
	}

	store := cache.NewFileStore(dir, fs)
	store.ForceReload = o.ForceReload || bf.Cache.ForceReload

	return store
}
