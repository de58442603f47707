// Package meta loads guidebook documents through afs, resolving relative
// URLs against a base location and expanding ${env.NAME} expressions.
package meta

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
	lookup  func(string) string
}

// New creates a loader. options are passed to every download, for example
// an *embed.FS for the embed:// scheme.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options, lookup: os.Getenv}
}

// WithLookup replaces the environment lookup used for expansion.
func (s *Service) WithLookup(lookup func(string) string) *Service {
	s.lookup = lookup
	return s
}

// URL resolves a location relative to parent, or to the base URL when
// parent is empty.
func (s *Service) URL(parent, location string) string {
	if !url.IsRelative(location) {
		return location
	}
	if parent != "" {
		parentURL, _ := url.Split(parent, file.Scheme)
		return url.Join(parentURL, location)
	}
	if s.baseURL == "" {
		return url.Normalize(location, file.Scheme)
	}
	return url.Join(s.baseURL, location)
}

// Download returns the expanded content of URL.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return []byte(expand(string(data), s.lookup)), nil
}

// Load decodes the YAML document at URL into node.
func (s *Service) Load(ctx context.Context, URL string, node *yaml.Node) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, node); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// Exists reports whether URL can be read.
func (s *Service) Exists(ctx context.Context, URL string) bool {
	ok, _ := s.fs.Exists(ctx, URL, s.options...)
	return ok
}
