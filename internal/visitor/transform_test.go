package visitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-resolver/internal/naming"
)

// drive pushes a tiny fixed traversal into v.
func drive(t *testing.T, v Visitor) {
	t.Helper()

	require.NoError(t, v.VisitHeader(naming.Namespaces{"source", "target"}))

	cv, err := v.VisitClass(naming.ClassNames{"source": "a", "target": "net/minecraft/Foo__Bar"})
	require.NoError(t, err)

	if cv != nil {
		require.NoError(t, cv.VisitComment("doc"))

		mv, err := cv.VisitMethod(naming.MemberNames{
			"source": {Name: "a", Desc: "(I)V"},
			"target": {Name: "tick", Desc: "(I)V"},
		})
		require.NoError(t, err)

		if mv != nil {
			_, err = mv.VisitParam(Param{LVIndex: 1, Ordinal: 0}, naming.LocalNames{"target": "delta"})
			require.NoError(t, err)
			require.NoError(t, mv.VisitLocal(Local{LVIndex: 2, StartOp: Unknown, LVTIndex: Unknown}, naming.LocalNames{"target": "tmp"}))
		}

		_, err = cv.VisitField(naming.MemberNames{"source": {Name: "b", Desc: "I"}})
		require.NoError(t, err)
	}

	require.NoError(t, v.VisitEnd())
}

func TestApply_NoChainIsIdentity(t *testing.T) {
	rec := &Recorder{}
	assert.Same(t, Visitor(rec), Apply(rec))
}

func TestRenameNamespaces(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, RenameNamespaces{Renames: map[naming.Namespace]naming.Namespace{
		"source": "official",
		"target": "mojmap",
	}}))

	assert.Equal(t, []string{
		"header official,mojmap",
		"class official=a mojmap=net/minecraft/Foo__Bar",
		"comment doc",
		"method official=a(I)V mojmap=tick(I)V",
		"param 1/0 mojmap=delta",
		"local 2/-1/-1 mojmap=tmp",
		"field official=b:I",
		"end",
	}, rec.Lines)
}

func TestRenameNamespaces_Swap(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, RenameNamespaces{Renames: map[naming.Namespace]naming.Namespace{
		"source": "target",
		"target": "source",
	}}))

	assert.Equal(t, "header target,source", rec.Lines[0])
	assert.Equal(t, "class target=a source=net/minecraft/Foo__Bar", rec.Lines[1])
}

func TestRenameNamespaces_Collision(t *testing.T) {
	v := Apply(&Recorder{}, RenameNamespaces{Renames: map[naming.Namespace]naming.Namespace{
		"source": "target",
	}})

	err := v.VisitHeader(naming.Namespaces{"source", "target"})
	assert.Error(t, err)
}

func TestChain_LeftToRight(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec,
		RenameNamespaces{Renames: map[naming.Namespace]naming.Namespace{"target": "feather"}},
		ReplaceClassNames{Namespace: "feather", Old: "__", New: "$"},
		CopyClassNames{From: "feather", To: "copy"},
	))

	assert.Equal(t, "header source,feather,copy", rec.Lines[0])
	assert.Equal(t, "class source=a feather=net/minecraft/Foo$Bar copy=net/minecraft/Foo$Bar", rec.Lines[1])
}

func TestCopyClassNames_KeepsExisting(t *testing.T) {
	c := CopyClassNames{From: "source", To: "target"}
	out, ok := c.Class(naming.ClassNames{"source": "a", "target": "b"})
	require.True(t, ok)
	assert.Equal(t, "b", out["target"])
}

func TestDropNamespaces(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, DropNamespaces{Namespaces: naming.Namespaces{"source"}}))

	assert.Equal(t, []string{
		"header target",
		"class target=net/minecraft/Foo__Bar",
		"comment doc",
		"method target=tick(I)V",
		"param 1/0 target=delta",
		"local 2/-1/-1 target=tmp",
		"field ",
		"end",
	}, rec.Lines)
}

func TestClassesOnly_ClosesSubtrees(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, ClassesOnly{}))

	assert.Equal(t, []string{
		"header source,target",
		"class source=a target=net/minecraft/Foo__Bar",
		"comment doc",
		"end",
	}, rec.Lines)
}

type dropClass struct {
	Identity
}

func (dropClass) Class(naming.ClassNames) (naming.ClassNames, bool) { return nil, false }

func TestDroppedClass_ReturnsNilVisitor(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, dropClass{}))

	assert.Equal(t, []string{"header source,target", "end"}, rec.Lines)
}

func TestKeepNamespaces(t *testing.T) {
	rec := &Recorder{}
	drive(t, Apply(rec, KeepNamespaces{Namespaces: naming.Namespaces{"target"}}))

	assert.Equal(t, []string{
		"header target",
		"class target=net/minecraft/Foo__Bar",
		"comment doc",
		"method target=tick(I)V",
		"param 1/0 target=delta",
		"local 2/-1/-1 target=tmp",
		"field ",
		"end",
	}, rec.Lines)
}

func TestKey(t *testing.T) {
	keep := KeepNamespaces{Namespaces: naming.Namespaces{"target"}}
	before := Key(keep)

	drive(t, Apply(&Recorder{}, keep))
	assert.Equal(t, before, Key(keep))

	tests := []struct {
		transform Transform
		want      string
	}{
		{transform: RenameNamespaces{Renames: map[naming.Namespace]naming.Namespace{"target": "named", "source": "official"}}, want: "rename-namespaces:source>official,target>named"},
		{transform: CopyClassNames{From: "mojmap", To: "searge"}, want: "copy-class-names:mojmap>searge"},
		{transform: ReplaceClassNames{Namespace: "feather", Old: "__", New: "$"}, want: `replace-class-names:feather:"__":"$"`},
		{transform: DropNamespaces{Namespaces: naming.Namespaces{"id", "obf"}}, want: "drop-namespaces:id,obf"},
		{transform: keep, want: "keep-namespaces:target"},
		{transform: ClassesOnly{}, want: "classes-only"},
		{transform: Identity{}, want: "visitor.Identity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.transform))
	}
}
