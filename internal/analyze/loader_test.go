package analyze

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestAnalyzer_LoadDir(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/analyze/case001"

	uploads := map[string][]byte{
		base + "/classes/a/Base.class": classBytes(classSpec{name: "a/Base", super: "java/lang/Object"}),
		base + "/classes/a/Leaf.class": classBytes(classSpec{name: "a/Leaf", super: "a/Base"}),
		base + "/libs/lib.jar": jarBytes(t, map[string][]byte{
			"b/Lib.class": classBytes(classSpec{name: "b/Lib", super: "a/Base"}),
		}),
		base + "/notes.txt": []byte("not a class"),
	}

	for URL, data := range uploads {
		require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)))
	}

	a := NewAnalyzer()
	require.NoError(t, a.LoadDir(ctx, fs, base))

	assert.Equal(t, []string{"a/Base", "a/Leaf", "b/Lib"}, a.Graph().Classes())

	h, ok := a.Graph().HierarchyOf("b/Lib")
	require.True(t, ok)
	assert.Equal(t, "a/Base", h.Super)
}
