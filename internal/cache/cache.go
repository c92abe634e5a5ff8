// Package cache persists resolved tables keyed by batch fingerprint.
package cache

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"mapping-resolver/internal/ctxlog"
	"mapping-resolver/internal/table"
)

// Store loads and stores resolved tables. Load returns nil for absent.
type Store interface {
	Load(ctx context.Context, fingerprint string) (*table.Table, error)
	Store(ctx context.Context, fingerprint string, t *table.Table) error
}

// FileStore keeps tables as text files under a base URL.
type FileStore struct {
	fs      afs.Service
	baseURL string
	// ForceReload treats every load as a miss and removes the stale file.
	ForceReload bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at baseURL.
func NewFileStore(baseURL string, fs afs.Service) *FileStore {
	if fs == nil {
		fs = afs.New()
	}

	return &FileStore{fs: fs, baseURL: baseURL}
}

// URL returns the location of the table for fingerprint.
func (s *FileStore) URL(fingerprint string) string {
	return url.Join(s.baseURL, "mappings-"+fingerprint+".umt")
}

// Load returns nil on a miss. Storage failures are logged and treated as a
// miss so the caller resolves from sources.
func (s *FileStore) Load(ctx context.Context, fingerprint string) (*table.Table, error) {
	URL := s.URL(fingerprint)
	logger := ctxlog.FromContext(ctx)

	exists, err := s.fs.Exists(ctx, URL, option.NewObjectKind(true))
	if err != nil {
		logger.Warn("failed to check cache, resolving", "url", URL, "error", err)
		return nil, nil
	}

	if !exists {
		return nil, nil
	}

	if s.ForceReload {
		logger.Debug("force reload, dropping cached table", "url", URL)
		s.discard(ctx, URL)
		return nil, nil
	}

	data, err := s.fs.DownloadWithURL(ctx, URL, option.NewObjectKind(true))
	if err != nil {
		logger.Warn("failed to load cache, resolving", "url", URL, "error", err)
		return nil, nil
	}

	t, err := table.Read(bytes.NewReader(data))
	if err != nil {
		logger.Warn("discarding malformed cached table", "url", URL, "error", err)
		s.discard(ctx, URL)
		return nil, nil
	}

	return t, nil
}

// Store writes the table to a temporary object and moves it into place so
// readers never observe a partial file.
func (s *FileStore) Store(ctx context.Context, fingerprint string, t *table.Table) error {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return errors.Wrap(err, "failed to serialize table")
	}

	URL := s.URL(fingerprint)
	tmpURL := url.Join(s.baseURL, ".tmp-"+uuid.New().String()+".umt")

	if err := s.fs.Upload(ctx, tmpURL, file.DefaultFileOsMode, &buf); err != nil {
		return errors.Wrapf(err, "failed to upload %v", tmpURL)
	}

	if err := s.fs.Move(ctx, tmpURL, URL); err != nil {
		_ = s.fs.Delete(ctx, tmpURL)
		return errors.Wrapf(err, "failed to publish %v", URL)
	}

	ctxlog.FromContext(ctx).Debug("stored table", "url", URL, "rows", t.Rows())

	return nil
}

func (s *FileStore) discard(ctx context.Context, URL string) {
	if err := s.fs.Delete(ctx, URL, option.NewObjectKind(true)); err != nil {
		ctxlog.FromContext(ctx).Warn("failed to delete cached table", "url", URL, "error", err)
	}
}

// MemoryStore keeps tables in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*table.Table)}
}

func (s *MemoryStore) Load(_ context.Context, fingerprint string) (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tables[fingerprint], nil
}

func (s *MemoryStore) Store(_ context.Context, fingerprint string, t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[fingerprint] = t

	return nil
}

// Len returns the number of stored tables.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tables)
}
