package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"mapping-resolver/internal/table"
)

const cachedText = "mappings\t1\tofficial\tnamed\n" +
	"c\ta\tnet/minecraft/Foo\n" +
	"\tf\tofficial\tI\tb\tcount\n"

func sampleTable(t *testing.T) *table.Table {
	t.Helper()

	tbl, err := table.Read(strings.NewReader(cachedText))
	require.NoError(t, err)

	return tbl
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	var useCases = []struct {
		description string
		baseURL     string
		prepare     string
		store       bool
		forceReload bool
		hasData     bool
	}{
		{
			description: "stored table is loaded",
			baseURL:     "mem://localhost/cache/case001/",
			store:       true,
			hasData:     true,
		},
		{
			description: "missing table",
			baseURL:     "mem://localhost/cache/case002/",
		},
		{
			description: "force reload ignores stored table",
			baseURL:     "mem://localhost/cache/case003/",
			store:       true,
			forceReload: true,
		},
		{
			description: "malformed table is a miss",
			baseURL:     "mem://localhost/cache/case004/",
			prepare:     "not a table\n",
		},
	}

	for _, useCase := range useCases {
		t.Run(useCase.description, func(t *testing.T) {
			fs := afs.New()
			srv := NewFileStore(useCase.baseURL, fs)

			if useCase.store {
				require.NoError(t, srv.Store(ctx, "abc", sampleTable(t)))
			}

			if useCase.prepare != "" {
				require.NoError(t, fs.Upload(ctx, srv.URL("abc"), file.DefaultFileOsMode, strings.NewReader(useCase.prepare)))
			}

			srv.ForceReload = useCase.forceReload

			got, err := srv.Load(ctx, "abc")
			require.NoError(t, err)

			if !useCase.hasData {
				assert.Nil(t, got)

				if useCase.store || useCase.prepare != "" {
					exists, err := fs.Exists(ctx, srv.URL("abc"))
					require.NoError(t, err)
					assert.False(t, exists, "stale cache file should be removed")
				}

				return
			}

			require.NotNil(t, got)

			var buf bytes.Buffer
			require.NoError(t, got.Write(&buf))
			assert.Equal(t, cachedText, buf.String())
		})
	}
}

type failingService struct {
	afs.Service
	existsErr error
	deleteErr error
}

func (s *failingService) Exists(ctx context.Context, URL string, options ...storage.Option) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}

	return s.Service.Exists(ctx, URL, options...)
}

func (s *failingService) Delete(ctx context.Context, URL string, options ...storage.Option) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}

	return s.Service.Delete(ctx, URL, options...)
}

func TestFileStore_StorageFailureIsMiss(t *testing.T) {
	ctx := context.Background()

	var useCases = []struct {
		description string
		baseURL     string
		prepare     string
		forceReload bool
		existsErr   error
		deleteErr   error
	}{
		{
			description: "exists check fails",
			baseURL:     "mem://localhost/cache/case006/",
			existsErr:   errors.New("permission denied"),
		},
		{
			description: "force reload cannot delete",
			baseURL:     "mem://localhost/cache/case007/",
			prepare:     cachedText,
			forceReload: true,
			deleteErr:   errors.New("read-only"),
		},
		{
			description: "malformed table cannot be deleted",
			baseURL:     "mem://localhost/cache/case008/",
			prepare:     "not a table\n",
			deleteErr:   errors.New("read-only"),
		},
	}

	for _, useCase := range useCases {
		t.Run(useCase.description, func(t *testing.T) {
			fs := afs.New()
			srv := NewFileStore(useCase.baseURL, &failingService{
				Service:   fs,
				existsErr: useCase.existsErr,
				deleteErr: useCase.deleteErr,
			})
			srv.ForceReload = useCase.forceReload

			if useCase.prepare != "" {
				require.NoError(t, fs.Upload(ctx, srv.URL("abc"), file.DefaultFileOsMode, strings.NewReader(useCase.prepare)))
			}

			got, err := srv.Load(ctx, "abc")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestFileStore_NoTemporaryLeftovers(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/cache/case005/"

	srv := NewFileStore(baseURL, fs)
	require.NoError(t, srv.Store(ctx, "abc", sampleTable(t)))
	require.NoError(t, srv.Store(ctx, "abc", sampleTable(t)))

	objects, err := fs.List(ctx, baseURL)
	require.NoError(t, err)

	var names []string
	for _, o := range objects {
		if !o.IsDir() {
			names = append(names, o.Name())
		}
	}

	assert.Equal(t, []string{"mappings-abc.umt"}, names)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	tbl := sampleTable(t)
	require.NoError(t, s.Store(ctx, "abc", tbl))

	got, err = s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Same(t, tbl, got)
	assert.Equal(t, 1, s.Len())
}
