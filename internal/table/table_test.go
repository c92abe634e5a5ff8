package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/visitor"
)

const sampleText = "mappings\t1\tofficial\tintermediary\tnamed\n" +
	"c\ta\tnet/minecraft/class_1\tnet/minecraft/Foo\n" +
	"\t#\tThe foo.\\tTabbed\n" +
	"\tm\tofficial\t(La;)V\ta\tmethod_1\tsetFoo\n" +
	"\t\tp\t1\t0\t\t\tfoo\n" +
	"\t\t\t#\tthe foo\n" +
	"\t\tv\t2\t5\t0\t\t\ttmp\n" +
	"\tf\tofficial\tI\tb\tfield_1\tcount\n" +
	"c\tb\tnet/minecraft/class_2\t\n"

// build feeds events into a fresh builder and returns the table.
func build(t *testing.T, namespaces naming.Namespaces, feed func(v visitor.Visitor)) *Table {
	t.Helper()

	b := NewBuilder()
	v := b.Merger(namespaces[0], MergeOptions{})
	require.NoError(t, v.VisitHeader(namespaces))
	feed(v)
	require.NoError(t, v.VisitEnd())

	tbl, err := b.Build()
	require.NoError(t, err)

	return tbl
}

func sample(t *testing.T) *Table {
	t.Helper()

	return build(t, naming.NewNamespaces("official", "intermediary", "named"), func(v visitor.Visitor) {
		cv, err := v.VisitClass(naming.ClassNames{
			"official":     "a",
			"intermediary": "net/minecraft/class_1",
			"named":        "net/minecraft/Foo",
		})
		require.NoError(t, err)
		require.NoError(t, cv.VisitComment("The foo.\tTabbed"))

		mv, err := cv.VisitMethod(naming.MemberNames{
			"official":     {Name: "a", Desc: "(La;)V"},
			"intermediary": {Name: "method_1"},
			"named":        {Name: "setFoo"},
		})
		require.NoError(t, err)

		pv, err := mv.VisitParam(visitor.Param{LVIndex: 1, Ordinal: 0}, naming.LocalNames{"named": "foo"})
		require.NoError(t, err)
		require.NoError(t, pv.VisitComment("the foo"))
		require.NoError(t, mv.VisitLocal(visitor.Local{LVIndex: 2, StartOp: 5, LVTIndex: 0}, naming.LocalNames{"named": "tmp"}))

		_, err = cv.VisitField(naming.MemberNames{
			"official":     {Name: "b", Desc: "I"},
			"intermediary": {Name: "field_1"},
			"named":        {Name: "count"},
		})
		require.NoError(t, err)

		_, err = v.VisitClass(naming.ClassNames{"official": "b", "intermediary": "net/minecraft/class_2"})
		require.NoError(t, err)
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample(t).Write(&buf))
	assert.Equal(t, sampleText, buf.String())
}

func TestRoundTrip(t *testing.T) {
	original := sample(t)

	var first bytes.Buffer
	require.NoError(t, original.Write(&first))

	read, err := Read(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, read.Write(&second))
	assert.Equal(t, first.String(), second.String())

	want, got := &visitor.Recorder{}, &visitor.Recorder{}
	require.NoError(t, original.Accept(want))
	require.NoError(t, read.Accept(got))
	assert.Equal(t, want.Lines, got.Lines, spew.Sdump(got.Lines))
	assert.Equal(t, original.Rows(), read.Rows())
}

func TestRoundTrip_RecordedDescriptorNamespace(t *testing.T) {
	// Class a has no named name, and named a is official b: rebuilding the
	// official descriptor from named would turn La; into Lb;.
	text := "mappings\t1\tnamed\tofficial\n" +
		"c\t\ta\n" +
		"c\ta\tb\n" +
		"\tm\tofficial\t(La;)V\tdoIt\tm\n"

	original, err := Read(strings.NewReader(text))
	require.NoError(t, err)

	var written bytes.Buffer
	require.NoError(t, original.Write(&written))
	assert.Equal(t, text, written.String())

	read, err := Read(bytes.NewReader(written.Bytes()))
	require.NoError(t, err)

	for _, tbl := range []*Table{original, read} {
		pairs, err := tbl.Project("official", "named")
		require.NoError(t, err)

		var methods []Pair
		for _, p := range pairs {
			if p.Kind == KindMethod {
				methods = append(methods, p)
			}
		}

		require.Len(t, methods, 1)
		assert.Equal(t, naming.Ident{Name: "m", Desc: "(La;)V"}, methods[0].From)
		assert.Equal(t, "doIt", methods[0].To.Name)
	}
}

func TestRows(t *testing.T) {
	assert.Equal(t, 6, sample(t).Rows())
	assert.Equal(t, 2, sample(t).Classes())
	assert.Equal(t, 0, Empty().Rows())
}

func TestDescriptorReconstruction(t *testing.T) {
	pairs, err := sample(t).Project("official", "named")
	require.NoError(t, err)

	var method *Pair
	for i := range pairs {
		if pairs[i].Kind == KindMethod {
			method = &pairs[i]
		}
	}

	require.NotNil(t, method)
	assert.Equal(t, naming.Ident{Name: "a", Desc: "(La;)V"}, method.From)
	assert.Equal(t, naming.Ident{Name: "setFoo", Desc: "(Lnet/minecraft/Foo;)V"}, method.To)
	assert.Equal(t, "a", method.Owner)
}

func TestProject(t *testing.T) {
	pairs, err := sample(t).Project("intermediary", "named")
	require.NoError(t, err)

	kinds := make([]ElementKind, 0, len(pairs))
	for _, p := range pairs {
		kinds = append(kinds, p.Kind)
	}

	// class_2 has no named name and the parameter no intermediary one.
	assert.Equal(t, []ElementKind{KindClass, KindMethod, KindField}, kinds)
	assert.Equal(t, "net/minecraft/class_1", pairs[0].From.Name)
	assert.Equal(t, "net/minecraft/Foo", pairs[0].To.Name)
	assert.Equal(t, naming.Ident{Name: "field_1", Desc: "I"}, pairs[2].From)

	_, err = sample(t).Project("official", "mojmap")

	var unknown *UnknownNamespaceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, naming.Namespace("mojmap"), unknown.Namespace)
}

func TestMerge_SameFragmentTwiceConflicts(t *testing.T) {
	fragment := sample(t)

	b := NewBuilder()
	require.NoError(t, b.Merge(fragment, "official", MergeOptions{Source: "first"}))

	err := b.Merge(fragment, "official", MergeOptions{Source: "second"})

	var conflict *ConflictingMappingError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "second", conflict.Source)
	assert.Equal(t, naming.Namespace("intermediary"), conflict.Namespace)
	assert.Contains(t, err.Error(), "conflicting mapping")
}

func TestMerge_DisjointSumsRows(t *testing.T) {
	left := sample(t)
	right := build(t, naming.NewNamespaces("official", "intermediary"), func(v visitor.Visitor) {
		cv, err := v.VisitClass(naming.ClassNames{"official": "z", "intermediary": "net/minecraft/class_9"})
		require.NoError(t, err)

		_, err = cv.VisitField(naming.MemberNames{"official": {Name: "a", Desc: "J"}, "intermediary": {Name: "field_9"}})
		require.NoError(t, err)
	})

	b := NewBuilder()
	require.NoError(t, b.Merge(left, "official", MergeOptions{}))
	require.NoError(t, b.Merge(right, "official", MergeOptions{}))

	merged, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, left.Rows()+right.Rows(), merged.Rows())
}

func TestMerge_Modes(t *testing.T) {
	renamed := build(t, naming.NewNamespaces("official", "named"), func(v visitor.Visitor) {
		_, err := v.VisitClass(naming.ClassNames{"official": "a", "named": "net/minecraft/Bar"})
		require.NoError(t, err)
		_, err = v.VisitClass(naming.ClassNames{"official": "b", "named": "net/minecraft/Baz"})
		require.NoError(t, err)
	})

	tests := []struct {
		name  string
		mode  MergeMode
		wantA string
		fails bool
	}{
		{name: "strict", mode: MergeStrict, fails: true},
		{name: "fill missing", mode: MergeFillMissing, wantA: "net/minecraft/Foo"},
		{name: "overwrite", mode: MergeOverwrite, wantA: "net/minecraft/Bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			require.NoError(t, b.Merge(sample(t), "official", MergeOptions{}))

			err := b.Merge(renamed, "official", MergeOptions{Mode: tt.mode})
			if tt.fails {
				var conflict *ConflictingMappingError
				require.ErrorAs(t, err, &conflict)
				return
			}

			require.NoError(t, err)

			merged, err := b.Build()
			require.NoError(t, err)

			got, ok := merged.ClassName("official", "a", "named")
			require.True(t, ok)
			assert.Equal(t, tt.wantA, got)

			got, ok = merged.ClassName("official", "b", "named")
			require.True(t, ok)
			assert.Equal(t, "net/minecraft/Baz", got)
		})
	}
}

func TestMerge_ClaimedNameConflicts(t *testing.T) {
	clash := build(t, naming.NewNamespaces("official", "named"), func(v visitor.Visitor) {
		_, err := v.VisitClass(naming.ClassNames{"official": "c", "named": "net/minecraft/Foo"})
		require.NoError(t, err)
	})

	b := NewBuilder()
	require.NoError(t, b.Merge(sample(t), "official", MergeOptions{}))

	var conflict *ConflictingMappingError
	require.ErrorAs(t, b.Merge(clash, "official", MergeOptions{}), &conflict)
	assert.Contains(t, conflict.Existing, "claimed by class a")
}

func TestMerge_MemberWithoutDescriptorMatchesByName(t *testing.T) {
	extra := build(t, naming.NewNamespaces("official", "extra"), func(v visitor.Visitor) {
		cv, err := v.VisitClass(naming.ClassNames{"official": "a"})
		require.NoError(t, err)
		_, err = cv.VisitField(naming.MemberNames{"official": {Name: "b"}, "extra": {Name: "counter"}})
		require.NoError(t, err)
	})

	b := NewBuilder()
	require.NoError(t, b.Merge(sample(t), "official", MergeOptions{}))
	require.NoError(t, b.Merge(extra, "official", MergeOptions{}))

	merged, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 6, merged.Rows())

	pairs, err := merged.Project("named", "extra")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, naming.Ident{Name: "counter", Desc: "I"}, pairs[0].To)
}

func TestBuilder_BuiltIsFrozen(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	require.ErrorIs(t, err, ErrBuilt)
	require.ErrorIs(t, b.Merge(sample(t), "official", MergeOptions{}), ErrBuilt)
	require.ErrorIs(t, b.AddNamespaces("named"), ErrBuilt)
}

func TestBuilder_SetClassName(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Merge(sample(t), "official", MergeOptions{}))

	ref, ok := b.FindClass("official", "b")
	require.True(t, ok)
	require.NoError(t, b.SetClassName(ref, "named", "net/minecraft/Foo$Inner"))

	found, ok := b.FindClass("named", "net/minecraft/Foo$Inner")
	require.True(t, ok)
	name, _ := found.Name("official")
	assert.Equal(t, "b", name)

	var conflict *ConflictingMappingError
	require.ErrorAs(t, b.SetClassName(ref, "named", "net/minecraft/Foo"), &conflict)

	var unknown *UnknownNamespaceError
	require.ErrorAs(t, b.SetClassName(ref, "mojmap", "x"), &unknown)
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{name: "empty", text: "", line: 1},
		{name: "bad magic", text: "tiny\t2\ta\tb\n", line: 1},
		{name: "bad version", text: "mappings\t2\ta\n", line: 1},
		{name: "duplicate namespace", text: "mappings\t1\ta\ta\n", line: 1},
		{name: "class arity", text: "mappings\t1\ta\tb\nc\tx\n", line: 2},
		{name: "member arity", text: "mappings\t1\ta\tb\nc\tx\ty\n\tf\ta\tI\tf\n", line: 3},
		{name: "member without class", text: "mappings\t1\ta\n\tm\t\t\tf\n", line: 2},
		{name: "unknown descriptor namespace", text: "mappings\t1\ta\nc\tx\n\tm\tz\t()V\tf\n", line: 3},
		{name: "param under field", text: "mappings\t1\ta\nc\tx\n\tf\t\t\tf\n\t\tp\t1\t0\tp\n", line: 4},
		{name: "bad index", text: "mappings\t1\ta\nc\tx\n\tm\t\t\tf\n\t\tp\tx\t0\tp\n", line: 4},
		{name: "bad escape", text: "mappings\t1\ta\nc\tx\\q\n", line: 2},
		{name: "blank line", text: "mappings\t1\ta\n\nc\tx\n", line: 2},
		{name: "duplicate class", text: "mappings\t1\ta\nc\tx\nc\tx\n", line: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.text))

			var malformed *MalformedTableError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.line, malformed.Line)
		})
	}
}

func TestEscape(t *testing.T) {
	for _, s := range []string{"plain", "a\tb", "line\nbreak\r", `back\slash`, "nul\x00"} {
		got, err := unescape(escape(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotContains(t, escape(s), "\t")
	}
}

func TestUnknownNamespaceError_Suggestion(t *testing.T) {
	_, err := sample(t).Project("intermediary", "Named")

	var unknown *UnknownNamespaceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, naming.Namespace("named"), unknown.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "named"?`)

	err = NewUnknownNamespaceError("xyz", naming.NewNamespaces("official", "intermediary"))
	assert.Empty(t, err.(*UnknownNamespaceError).Suggestion)
}
