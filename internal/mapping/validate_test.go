package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-resolver/internal/diagnostic"
	"mapping-resolver/internal/visitor"
)

func codes(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}

	return out
}

func TestValidate_Valid(t *testing.T) {
	bf, err := Parse([]byte(batchYAML))
	require.NoError(t, err)

	res := Validate(bf, nil)
	assert.True(t, res.IsValid(), res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_Nil(t *testing.T) {
	res := Validate(nil, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.CodeInvalidValue, res.Errors[0].Code)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		code       string
		suggestion string
	}{
		{
			name: "duplicate id",
			yaml: "key: k\nentries:\n  - {id: a, source: a.tiny}\n  - {id: a, source: b.tiny}\n",
			code: diagnostic.CodeDuplicateID,
		},
		{
			name:       "unknown preset",
			yaml:       "key: k\nentries:\n  - {id: a, preset: yran, source: a.tiny}\n",
			code:       diagnostic.CodeUnknownPreset,
			suggestion: "yarn",
		},
		{
			name:       "unknown format",
			yaml:       "key: k\nentries:\n  - {id: a, format: tiny-v3, source: a.tiny}\n",
			code:       diagnostic.CodeUnknownFormat,
			suggestion: "tiny-v2",
		},
		{
			name: "empty source",
			yaml: "key: k\nentries:\n  - {id: a}\n",
			code: diagnostic.CodeEmptySource,
		},
		{
			name: "self requirement",
			yaml: "key: k\nentries:\n  - {id: a, source: a.tiny, requires: named, provides: named}\n",
			code: diagnostic.CodeSelfRequirement,
		},
		{
			name: "preset self requirement",
			yaml: "key: k\nentries:\n  - {id: a, preset: yarn, source: a.tiny, provides: intermediary}\n",
			code: diagnostic.CodeSelfRequirement,
		},
		{
			name:       "unknown transform",
			yaml:       "key: k\nentries:\n  - id: a\n    source: a.tiny\n    transforms: [{kind: drop-namespace, namespaces: x}]\n",
			code:       diagnostic.CodeUnknownTransform,
			suggestion: "drop-namespaces",
		},
		{
			name: "transform parameters",
			yaml: "key: k\nentries:\n  - id: a\n    source: a.tiny\n    transforms: [{kind: copy-class-names, from: named}]\n",
			code: diagnostic.CodeInvalidValue,
		},
		{
			name:       "unknown hook",
			yaml:       "key: k\nentries:\n  - id: a\n    source: a.tiny\n    hooks: [{kind: renset, from: a, to: b}]\n",
			code:       diagnostic.CodeUnknownHook,
			suggestion: "renest",
		},
		{
			name:       "environment",
			yaml:       "key: k\nenvironment: clinet\nentries:\n  - {id: a, source: a.tiny}\n",
			code:       diagnostic.CodeInvalidValue,
			suggestion: "client",
		},
		{
			name: "missing key",
			yaml: "entries:\n  - {id: a, source: a.tiny}\n",
			code: diagnostic.CodeInvalidValue,
		},
		{
			name: "unit without sources",
			yaml: "key: k\nentries:\n  - {id: a, source: a.tiny}\npropagation:\n  - {name: joined, anchor: official}\n",
			code: diagnostic.CodeEmptySource,
		},
		{
			name: "duplicate unit",
			yaml: "key: k\nentries:\n  - {id: a, source: a.tiny}\npropagation:\n" +
				"  - {name: joined, anchor: official, sources: a.jar}\n" +
				"  - {name: joined, anchor: official, sources: b.jar}\n",
			code: diagnostic.CodeDuplicateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			res := Validate(bf, nil)
			require.Len(t, res.Errors, 1, codes(res.Errors))
			assert.Equal(t, tt.code, res.Errors[0].Code)

			if tt.suggestion != "" {
				assert.Equal(t, []string{tt.suggestion}, res.Errors[0].Suggestions)
			}
		})
	}
}

func TestValidate_NoEntries(t *testing.T) {
	res := Validate(&BatchFile{Key: "k"}, nil)
	assert.True(t, res.IsValid())
	require.Len(t, res.Warnings, 1)
}

func TestValidate_CustomRegistry(t *testing.T) {
	bf, err := Parse([]byte("key: k\nentries:\n  - id: a\n    source: a.tiny\n    transforms: [{kind: custom}]\n"))
	require.NoError(t, err)

	assert.False(t, Validate(bf, nil).IsValid())

	registry := NewTransformRegistry()
	registry.Add("custom", func(TransformDef) (visitor.Transform, error) { return visitor.Identity{}, nil })

	assert.True(t, Validate(bf, registry).IsValid())
}
