package content

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestService_Fetch(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	base := "mem://localhost/content/case001"
	require.NoError(t, fs.Upload(ctx, base+"/yarn/mappings.tiny", file.DefaultFileOsMode, bytes.NewReader([]byte("tiny\t2\t0\tofficial\n"))))

	srv := New(base, fs)

	tests := []struct {
		description string
		source      string
		want        string
		unavailable bool
	}{
		{description: "relative source", source: "yarn/mappings.tiny", want: "tiny\t2\t0\tofficial\n"},
		{description: "absolute URL", source: base + "/yarn/mappings.tiny", want: "tiny\t2\t0\tofficial\n"},
		{description: "missing source", source: "yarn/missing.tiny", unavailable: true},
		{description: "empty source", source: " ", unavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			data, err := srv.Fetch(ctx, tt.source)
			if tt.unavailable {
				var unavailable *UnavailableError
				require.ErrorAs(t, err, &unavailable)
				assert.Equal(t, tt.source, unavailable.Source)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}

	assert.Equal(t, "mappings.tiny", srv.DisplayName("yarn/mappings.tiny"))
}

func TestStatic(t *testing.T) {
	s := Static{"a.srg": []byte("CL: a b\n")}

	data, err := s.Fetch(context.Background(), "a.srg")
	require.NoError(t, err)
	assert.Equal(t, "CL: a b\n", string(data))

	_, err = s.Fetch(context.Background(), "b.srg")
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
}
