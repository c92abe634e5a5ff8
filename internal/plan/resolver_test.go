package plan

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-resolver/internal/cache"
	"mapping-resolver/internal/content"
	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/format"
	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

const (
	intermediaryTiny = "tiny\t2\t0\tofficial\tintermediary\n" +
		"c\ta\tnet/minecraft/class_1\n" +
		"\tm\t()V\ta\tmethod_1\n" +
		"\tf\tI\tb\tfield_1\n" +
		"c\ta$a\tnet/minecraft/class_1$class_2\n"

	namedTiny = "tiny\t2\t0\tintermediary\tnamed\n" +
		"c\tnet/minecraft/class_1\tnet/minecraft/Block\n" +
		"\tm\t()V\tmethod_1\ttick\n" +
		"\tf\tI\tfield_1\tcount\n" +
		"c\tnet/minecraft/class_1$class_2\tnet/minecraft/Block$Settings\n"
)

func intermediaryEntry() Entry {
	return Entry{
		ID:       "intermediary",
		Source:   "intermediary.tiny",
		Provides: []Provided{{Namespace: "intermediary"}},
	}
}

func namedEntry() Entry {
	return Entry{
		ID:       "named",
		Source:   "named.tiny",
		Requires: naming.NewNamespaces("intermediary"),
		Provides: []Provided{{Namespace: "named", Authoritative: true}},
	}
}

func sources() content.Static {
	return content.Static{
		"intermediary.tiny": []byte(intermediaryTiny),
		"named.tiny":        []byte(namedTiny),
	}
}

func resolve(t *testing.T, provider content.Provider, store cache.Store, batch Batch) (*Result, error) {
	t.Helper()

	return NewResolver(provider, store, DefaultConfig()).Resolve(context.Background(), batch)
}

func text(t *testing.T, tbl *table.Table) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))

	return buf.String()
}

func TestResolve_DependencyOrderIndependent(t *testing.T) {
	forward, err := resolve(t, sources(), nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry()}})
	require.NoError(t, err)

	backward, err := resolve(t, sources(), nil, Batch{Key: "k", Entries: []Entry{namedEntry(), intermediaryEntry()}})
	require.NoError(t, err)

	assert.Equal(t, []string{"intermediary", "named"}, forward.Order)
	assert.Equal(t, []string{"intermediary", "named"}, backward.Order)
	assert.Equal(t, text(t, forward.Table), text(t, backward.Table))
	assert.Equal(t, naming.NewNamespaces("official", "intermediary", "named"), forward.Table.Namespaces())

	name, ok := forward.Table.ClassName("official", "a", "named")
	require.True(t, ok)
	assert.Equal(t, "net/minecraft/Block", name)
}

func TestResolve_UnsatisfiedDependency(t *testing.T) {
	store := cache.NewMemoryStore()

	missing := Entry{ID: "extra", Source: "named.tiny", Requires: naming.NewNamespaces("z")}

	_, err := resolve(t, sources(), store, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), missing}})

	var unsatisfied *UnsatisfiedDependencyError
	require.ErrorAs(t, err, &unsatisfied)
	assert.Equal(t, "extra", unsatisfied.Entry)
	assert.Equal(t, naming.Namespace("z"), unsatisfied.Namespace)
	assert.Zero(t, store.Len())
}

func TestResolve_UnsatisfiedDependencySuggestion(t *testing.T) {
	typo := namedEntry()
	typo.Requires = naming.NewNamespaces("intermediery")

	_, err := resolve(t, sources(), nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), typo}})

	var unsatisfied *UnsatisfiedDependencyError
	require.ErrorAs(t, err, &unsatisfied)
	assert.Equal(t, naming.Namespace("intermediary"), unsatisfied.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "intermediary"?`)
}

func TestResolve_Cache(t *testing.T) {
	store := cache.NewMemoryStore()
	batch := Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry()}}

	first, err := resolve(t, sources(), store, batch)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, store.Len())

	// A hit never touches the content provider.
	second, err := resolve(t, content.Static{}, store, batch)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, text(t, first.Table), text(t, second.Table))
}

func TestResolve_CacheWithTransforms(t *testing.T) {
	store := cache.NewMemoryStore()

	named := namedEntry()
	named.Transforms = []visitor.Transform{
		visitor.KeepNamespaces{Namespaces: naming.NewNamespaces("intermediary", "named")},
		visitor.ReplaceClassNames{Namespace: "named", Old: "__", New: "$"},
	}

	batch := Batch{Key: "k", Entries: []Entry{intermediaryEntry(), named}}
	before := Fingerprint(batch)

	first, err := resolve(t, sources(), store, batch)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, before, first.Fingerprint)

	// Resolving leaves the batch fingerprint unchanged, so the same batch
	// hits the cache.
	assert.Equal(t, before, Fingerprint(batch))

	second, err := resolve(t, content.Static{}, store, batch)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, store.Len())
}

func TestResolve_UnavailableContent(t *testing.T) {
	store := cache.NewMemoryStore()

	_, err := resolve(t, content.Static{}, store, Batch{Key: "k", Entries: []Entry{intermediaryEntry()}})

	var unavailable *content.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "intermediary.tiny", unavailable.Source)
	assert.Zero(t, store.Len())
}

func TestResolve_ConflictAbortsBatch(t *testing.T) {
	provider := sources()
	provider["other.tiny"] = []byte("tiny\t2\t0\tofficial\tintermediary\nc\ta\tnet/minecraft/class_9\n")

	other := Entry{ID: "other", Source: "other.tiny", Provides: []Provided{{Namespace: "intermediary"}}}

	_, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), other}})

	var conflict *table.ConflictingMappingError
	require.ErrorAs(t, err, &conflict, spew.Sdump(err))
	assert.Equal(t, "other", conflict.Source)
	assert.Equal(t, naming.Namespace("intermediary"), conflict.Namespace)
}

func TestResolve_ContextColumnsDropped(t *testing.T) {
	provider := sources()
	// A named file that also carries stale official and intermediary columns.
	provider["named.tiny"] = []byte("tiny\t2\t0\tofficial\tintermediary\tnamed\n" +
		"c\ta\tnet/minecraft/class_99\tnet/minecraft/Block\n")

	named := namedEntry()

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), named}})
	require.NoError(t, err)

	name, ok := res.Table.ClassName("official", "a", "intermediary")
	require.True(t, ok)
	assert.Equal(t, "net/minecraft/class_1", name)

	require.Len(t, res.Diagnostics.Infos, 1)
	assert.Equal(t, diagnostic.CodeDroppedNamespace, res.Diagnostics.Infos[0].Code)
}

func TestResolve_UndeclaredColumnsDropped(t *testing.T) {
	provider := sources()
	// A named file that also carries a mojmap column it does not provide.
	provider["named.tiny"] = []byte("tiny\t2\t0\tintermediary\tnamed\tmojmap\n" +
		"c\tnet/minecraft/class_1\tnet/minecraft/Block\tnet/minecraft/world/Block\n")

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry()}})
	require.NoError(t, err)
	assert.Equal(t, naming.NewNamespaces("official", "intermediary", "named"), res.Table.Namespaces())

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeDroppedNamespace, res.Diagnostics.Warnings[0].Code)

	// The dropped column never satisfies a requirement.
	needsMojmap := Entry{
		ID:       "parchment",
		Source:   "intermediary.tiny",
		Requires: naming.NewNamespaces("mojmap"),
		Provides: []Provided{{Namespace: "parchment"}},
	}

	_, err = resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry(), needsMojmap}})

	var unsatisfied *UnsatisfiedDependencyError
	require.ErrorAs(t, err, &unsatisfied)
	assert.Equal(t, "parchment", unsatisfied.Entry)
	assert.Equal(t, naming.Namespace("mojmap"), unsatisfied.Namespace)
}

func TestResolve_BehaviorByFormat(t *testing.T) {
	provider := content.Static{
		"searge.tsrg": []byte("a net/minecraft/src/Foo\n\ta field_1_a\n\tb (I)V func_2_b\n"),
	}

	searge := Entry{
		ID:     "searge",
		Source: "searge.tsrg",
		Behavior: func(f format.Format, declared Behavior) Behavior {
			if f == format.TSRG {
				declared.Renames = []Rename{{From: "source", To: "official"}, {From: "target", To: "searge"}}
				declared.Provides = []Provided{{Namespace: "searge"}}
			}

			return declared
		},
	}

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{searge}})
	require.NoError(t, err)
	assert.Equal(t, naming.NewNamespaces("official", "searge"), res.Table.Namespaces())
}

func TestResolve_SkipBehavior(t *testing.T) {
	skipped := namedEntry()
	skipped.Behavior = func(f format.Format, declared Behavior) Behavior {
		declared.Skip = f == format.TinyV2
		return declared
	}

	res, err := resolve(t, sources(), nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), skipped}})
	require.NoError(t, err)
	assert.Equal(t, []string{"intermediary"}, res.Order)
	assert.False(t, res.Table.HasNamespace("named"))
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestResolve_BaseReaderArchive(t *testing.T) {
	provider := content.Static{
		"joined.srg": []byte("CL: a net/minecraft/src/Foo\n" +
			"FD: a/b net/minecraft/src/Foo/field_1_b\n" +
			"MD: a/c (La;)V net/minecraft/src/Foo/func_2_a (Lnet/minecraft/src/Foo;)V\n"),
		"mcp.zip": zipOf(t, map[string]string{
			"fields.csv":  "searge,name,side,desc\nfield_1_b,count,0,\n",
			"methods.csv": "searge,name,side,desc\nfunc_2_a,setFoo,0,Sets the foo.\n",
			"readme.txt":  "mappings built from the csv exports\n",
		}),
	}

	searge := Entry{
		ID:       "searge",
		Source:   "joined.srg",
		Renames:  []Rename{{From: "source", To: "official"}, {From: "target", To: "searge"}},
		Provides: []Provided{{Namespace: "searge"}},
	}

	mcp := Entry{
		ID:       "mcp",
		Source:   "mcp.zip",
		Renames:  []Rename{{From: "source", To: "searge"}, {From: "target", To: "mcp"}},
		Requires: naming.NewNamespaces("searge"),
		Provides: []Provided{{Namespace: "mcp", Authoritative: true}},
	}

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{mcp, searge}})
	require.NoError(t, err, spew.Sdump(res))

	pairs, err := res.Table.Project("official", "mcp")
	require.NoError(t, err)

	got := make(map[string]string)
	for _, p := range pairs {
		got[p.Kind.String()+" "+p.From.String()] = p.To.Name
	}

	assert.Equal(t, map[string]string{
		"class a":        "net/minecraft/src/Foo",
		"method c(La;)V": "setFoo",
		"field b":        "count",
	}, got)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeSkippedFile, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "mcp.zip!readme.txt", res.Diagnostics.Warnings[0].Element)
}

func TestResolve_StubOverwrites(t *testing.T) {
	stub := "mappings\t1\tofficial\tnamed\n" +
		"c\ta\tnet/minecraft/BlockBase\n"

	res, err := resolve(t, sources(), nil, Batch{
		Key:     "k",
		Entries: []Entry{intermediaryEntry(), namedEntry()},
		Stub:    []byte(stub),
	})
	require.NoError(t, err)

	name, ok := res.Table.ClassName("official", "a", "named")
	require.True(t, ok)
	assert.Equal(t, "net/minecraft/BlockBase", name)
}

func TestResolve_TransformsRunAfterRename(t *testing.T) {
	provider := sources()
	provider["named.tiny"] = []byte("tiny\t2\t0\tintermediary\tnamed\n" +
		"c\tnet/minecraft/class_1\tnet/minecraft/Block\n" +
		"c\tnet/minecraft/class_1$class_2\tnet/minecraft/Block__Settings\n")

	named := namedEntry()
	named.Transforms = []visitor.Transform{visitor.ReplaceClassNames{Namespace: "named", Old: "__", New: "$"}}

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{intermediaryEntry(), named}})
	require.NoError(t, err)

	name, ok := res.Table.ClassName("official", "a$a", "named")
	require.True(t, ok)
	assert.Equal(t, "net/minecraft/Block$Settings", name)
}

func TestFingerprint(t *testing.T) {
	batch := Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry()}}

	fp := Fingerprint(batch)
	assert.Len(t, fp, 16)
	assert.Equal(t, fp, Fingerprint(batch))

	withStub := batch
	withStub.Stub = []byte("mappings\t1\tofficial\n")
	assert.NotEqual(t, fp, Fingerprint(withStub))

	reordered := Batch{Key: "k", Entries: []Entry{namedEntry(), intermediaryEntry()}}
	assert.NotEqual(t, fp, Fingerprint(reordered))

	withUnit := batch
	withUnit.Units = []Unit{{Name: "joined", Anchor: "official", Sources: []string{"game.jar"}}}
	assert.NotEqual(t, fp, Fingerprint(withUnit))

	transformed := Batch{Key: "k", Entries: []Entry{intermediaryEntry(), namedEntry()}}
	transformed.Entries[1].Transforms = []visitor.Transform{visitor.ClassesOnly{}}
	assert.NotEqual(t, fp, Fingerprint(transformed))
}

func TestFingerprint_IgnoresResolverState(t *testing.T) {
	batch := Batch{Key: "k", Entries: []Entry{intermediaryEntry()}}

	res, err := resolve(t, sources(), nil, batch)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(batch), res.Fingerprint)
	assert.True(t, strings.Trim(res.Fingerprint, "0123456789abcdef") == "")
}

func TestResolve_MixedArchiveSplitsByFormat(t *testing.T) {
	provider := content.Static{
		"forge.zip": zipOf(t, map[string]string{
			"conf/joined.srg":  "CL: a net/minecraft/src/Foo\nFD: a/b net/minecraft/src/Foo/field_1_b\n",
			"conf/fields.csv":  "searge,name,side,desc\nfield_1_b,count,0,\n",
			"conf/methods.csv": "searge,name,side,desc\n",
		}),
	}

	forge := Entry{
		ID:     "forge",
		Source: "forge.zip",
		Behavior: func(f format.Format, declared Behavior) Behavior {
			if f == format.SRG {
				declared.Renames = []Rename{{From: "source", To: "official"}, {From: "target", To: "searge"}}
				declared.Provides = []Provided{{Namespace: "searge"}}

				return declared
			}

			declared.Renames = []Rename{{From: "source", To: "searge"}, {From: "target", To: "forgeMCP"}}
			declared.Requires = naming.NewNamespaces("searge")
			declared.Provides = []Provided{{Namespace: "forgeMCP", Authoritative: true}}

			return declared
		},
	}

	res, err := resolve(t, provider, nil, Batch{Key: "k", Entries: []Entry{forge}})
	require.NoError(t, err)

	assert.Equal(t, []string{"forge/srg", "forge/mcp-csv"}, res.Order)
	assert.Equal(t, naming.NewNamespaces("official", "searge", "forgeMCP"), res.Table.Namespaces())

	pairs, err := res.Table.Project("official", "forgeMCP")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "count", pairs[1].To.Name)
}
