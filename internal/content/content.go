// Package content fetches the raw bytes of mapping sources.
package content

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Provider resolves an opaque source identity to bytes.
type Provider interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
	// DisplayName returns a short name used for file names and reports.
	DisplayName(source string) string
}

// UnavailableError reports a source that cannot be read.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("content unavailable: %s", e.Source)
	}

	return fmt.Sprintf("content unavailable: %s: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Service reads sources through afs: local paths, file:// and mem:// URLs,
// and any storage scheme registered with afs. Relative sources resolve
// against BaseURL.
type Service struct {
	fs      afs.Service
	baseURL string
}

var _ Provider = (*Service)(nil)

// New creates a service rooted at baseURL.
func New(baseURL string, fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}

	return &Service{fs: fs, baseURL: baseURL}
}

// URL returns the location a source resolves to.
func (s *Service) URL(source string) string {
	if s.baseURL == "" || !url.IsRelative(source) {
		return source
	}

	return url.Join(s.baseURL, source)
}

func (s *Service) Fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &UnavailableError{Source: source, Err: fmt.Errorf("empty source")}
	}

	URL := s.URL(source)

	exists, err := s.fs.Exists(ctx, URL, option.NewObjectKind(true))
	if err != nil {
		return nil, &UnavailableError{Source: source, Err: err}
	}

	if !exists {
		return nil, &UnavailableError{Source: source, Err: fmt.Errorf("%s does not exist", URL)}
	}

	data, err := s.fs.DownloadWithURL(ctx, URL, option.NewObjectKind(true))
	if err != nil {
		return nil, &UnavailableError{Source: source, Err: err}
	}

	return data, nil
}

func (s *Service) DisplayName(source string) string {
	return path.Base(strings.TrimRight(source, "/"))
}

// Static serves sources from memory, keyed by source string.
type Static map[string][]byte

var _ Provider = Static(nil)

func (s Static) Fetch(_ context.Context, source string) ([]byte, error) {
	data, ok := s[source]
	if !ok {
		return nil, &UnavailableError{Source: source}
	}

	return data, nil
}

func (s Static) DisplayName(source string) string {
	return path.Base(source)
}
