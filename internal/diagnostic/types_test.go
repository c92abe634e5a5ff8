package diagnostic

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddWarning(CodeDroppedNamespace, "dropped namespace intermediary", "yarn", "")
	assert.False(t, d.HasErrors())

	d.AddError(CodeUnknownPreset, "unknown preset yarm", "entries[1]", "preset", "yarn")
	assert.True(t, d.HasErrors())
	assert.EqualError(t, d.Error(), "[entries[1]] preset: [unknown_preset] unknown preset yarm (did you mean yarn?)")

	var other Diagnostics
	other.AddInfo(CodeCacheMiss, "cache miss", "", "")
	d.Merge(other)
	assert.Len(t, d.Infos, 1)
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}

func TestDiagnostics_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var d Diagnostics
	d.AddWarning(CodeAmbiguousPropagation, "ancestors disagree", "client", "a.b()V")
	d.Log(context.Background(), logger)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=ambiguous_propagation")
	assert.Contains(t, buf.String(), "element=a.b()V")
}
