package mapping

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclBatchFile represents the top-level structure of an HCL batch file for
// decoding:
//
//	key         = "1.20.1-yarn"
//	environment = "joined"
//
//	entry "intermediary" {
//	  preset = "intermediary"
//	  source = "intermediary-1.20.1-v2.jar"
//	}
//
//	entry "yarn" {
//	  preset = "yarn"
//	  source = "yarn-1.20.1+build.1-v2.jar"
//	}
//
//	propagation "joined" {
//	  anchor  = "official"
//	  sources = ["minecraft-1.20.1-merged.jar"]
//	}
type hclBatchFile struct {
	Key         string      `hcl:"key,attr"`
	Environment string      `hcl:"environment,optional"`
	Split       bool        `hcl:"split,optional"`
	Anchors     []string    `hcl:"anchors,optional"`
	Stub        string      `hcl:"stub,optional"`
	Cache       *hclCache   `hcl:"cache,block"`
	Entries     []*hclEntry `hcl:"entry,block"`
	Units       []*hclUnit  `hcl:"propagation,block"`
}

type hclCache struct {
	Dir         string `hcl:"dir,optional"`
	ForceReload bool   `hcl:"force_reload,optional"`
}

type hclEntry struct {
	ID            string          `hcl:"id,label"`
	Preset        string          `hcl:"preset,optional"`
	Source        string          `hcl:"source,attr"`
	Format        string          `hcl:"format,optional"`
	Renames       []*hclRename    `hcl:"rename,block"`
	Provides      []string        `hcl:"provides,optional"`
	Authoritative []string        `hcl:"authoritative,optional"`
	Requires      []string        `hcl:"requires,optional"`
	Transforms    []*hclTransform `hcl:"transform,block"`
	Hooks         []*hclHook      `hcl:"hook,block"`
	Overwrite     bool            `hcl:"overwrite,optional"`
}

type hclRename struct {
	From string `hcl:"from,attr"`
	To   string `hcl:"to,attr"`
}

type hclTransform struct {
	Kind       string   `hcl:"kind,label"`
	From       string   `hcl:"from,optional"`
	To         string   `hcl:"to,optional"`
	Namespace  string   `hcl:"namespace,optional"`
	Old        string   `hcl:"old,optional"`
	New        string   `hcl:"new,optional"`
	Namespaces []string `hcl:"namespaces,optional"`
}

type hclHook struct {
	Kind string   `hcl:"kind,label"`
	From string   `hcl:"from,optional"`
	To   []string `hcl:"to,optional"`
}

type hclUnit struct {
	Name    string   `hcl:"name,label"`
	Anchor  string   `hcl:"anchor,attr"`
	Sources []string `hcl:"sources,attr"`
	Exclude []string `hcl:"exclude,optional"`
}

// ParseHCL parses HCL data into a BatchFile. filename is used in error
// positions only.
func ParseHCL(data []byte, filename string) (*BatchFile, error) {
	parser := hclparse.NewParser()

	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL batch file %s: %w", filename, diags)
	}

	var parsed hclBatchFile

	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL batch file %s: %w", filename, diags)
	}

	bf := parsed.batchFile()
	applyDefaults(bf)

	return bf, nil
}

func (h *hclBatchFile) batchFile() *BatchFile {
	bf := &BatchFile{
		Key:         h.Key,
		Environment: Environment(h.Environment),
		Split:       h.Split,
		Anchors:     h.Anchors,
		Stub:        h.Stub,
	}

	if h.Cache != nil {
		bf.Cache = CacheDef{Dir: h.Cache.Dir, ForceReload: h.Cache.ForceReload}
	}

	for _, e := range h.Entries {
		bf.Entries = append(bf.Entries, e.entryDef())
	}

	for _, u := range h.Units {
		bf.Propagation = append(bf.Propagation, UnitDef{
			Name:    u.Name,
			Anchor:  u.Anchor,
			Sources: u.Sources,
			Exclude: u.Exclude,
		})
	}

	return bf
}

func (e *hclEntry) entryDef() EntryDef {
	def := EntryDef{
		ID:        e.ID,
		Preset:    e.Preset,
		Source:    e.Source,
		Format:    e.Format,
		Requires:  e.Requires,
		Overwrite: e.Overwrite,
	}

	for _, r := range e.Renames {
		def.Renames = append(def.Renames, Rename{From: r.From, To: r.To})
	}

	authoritative := StringOrArray(e.Authoritative)

	for _, ns := range e.Provides {
		def.Provides = append(def.Provides, Provided{Namespace: ns, Authoritative: authoritative.Contains(ns)})
	}

	for _, ns := range e.Authoritative {
		if !slices.Contains(e.Provides, ns) {
			def.Provides = append(def.Provides, Provided{Namespace: ns, Authoritative: true})
		}
	}

	for _, t := range e.Transforms {
		def.Transforms = append(def.Transforms, TransformDef{
			Kind:       t.Kind,
			From:       t.From,
			To:         t.To,
			Namespace:  t.Namespace,
			Old:        t.Old,
			New:        t.New,
			Namespaces: t.Namespaces,
		})
	}

	for _, h := range e.Hooks {
		def.Hooks = append(def.Hooks, HookDef{Kind: h.Kind, From: h.From, To: h.To})
	}

	return def
}
