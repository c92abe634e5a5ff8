package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/plan"
	"mapping-resolver/internal/visitor"
)

func TestTransformRegistry_Kinds(t *testing.T) {
	r := NewTransformRegistry()

	assert.Equal(t, []string{"classes-only", "copy-class-names", "drop-namespaces", "keep-namespaces", "replace-class-names"}, r.Kinds())
	assert.Equal(t, []string{"copy-class-names", "renest"}, r.HookKinds())
	assert.True(t, r.Has("classes-only"))
	assert.False(t, r.Has("renest"))
	assert.True(t, r.HasHook("renest"))
}

func TestTransformRegistry_Transform(t *testing.T) {
	r := NewTransformRegistry()

	tests := []struct {
		def  TransformDef
		want visitor.Transform
	}{
		{
			def:  TransformDef{Kind: "copy-class-names", From: "mojmap", To: "searge"},
			want: visitor.CopyClassNames{From: "mojmap", To: "searge"},
		},
		{
			def:  TransformDef{Kind: "replace-class-names", Namespace: "feather", Old: "__", New: "$"},
			want: visitor.ReplaceClassNames{Namespace: "feather", Old: "__", New: "$"},
		},
		{
			def:  TransformDef{Kind: "drop-namespaces", Namespaces: StringOrArray{"id", "obf"}},
			want: visitor.DropNamespaces{Namespaces: naming.NewNamespaces("id", "obf")},
		},
		{
			def:  TransformDef{Kind: "keep-namespaces", Namespaces: StringOrArray{"official"}},
			want: visitor.KeepNamespaces{Namespaces: naming.NewNamespaces("official")},
		},
		{
			def:  TransformDef{Kind: "classes-only"},
			want: visitor.ClassesOnly{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.def.Kind, func(t *testing.T) {
			got, err := r.Transform(tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformRegistry_TransformErrors(t *testing.T) {
	r := NewTransformRegistry()

	_, err := r.Transform(TransformDef{Kind: "nope"})
	require.ErrorContains(t, err, `unknown transform kind "nope"`)

	_, err = r.Transform(TransformDef{Kind: "replace-class-names", Namespace: "named"})
	require.ErrorIs(t, err, errMissingOld)

	_, err = r.Transform(TransformDef{Kind: "drop-namespaces"})
	require.ErrorIs(t, err, errMissingNamespaces)
}

func TestTransformRegistry_Hook(t *testing.T) {
	r := NewTransformRegistry()

	h, err := r.Hook(HookDef{Kind: "renest", From: "intermediary", To: StringOrArray{"yarn", "extra"}})
	require.NoError(t, err)
	assert.Equal(t, plan.Renest{From: "intermediary", To: naming.NewNamespaces("yarn", "extra")}, h)

	h, err = r.Hook(HookDef{Kind: "copy-class-names", From: "mojmap", To: StringOrArray{"searge"}})
	require.NoError(t, err)
	assert.Equal(t, plan.CopyClassNames{From: "mojmap", To: "searge"}, h)

	_, err = r.Hook(HookDef{Kind: "copy-class-names", From: "mojmap", To: StringOrArray{"a", "b"}})
	require.Error(t, err)

	_, err = r.Hook(HookDef{Kind: "renest", To: StringOrArray{"yarn"}})
	require.ErrorIs(t, err, errMissingFrom)
}
