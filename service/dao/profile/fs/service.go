// Package fs stores profiles as YAML files under a base URL, using afs so
// that the location may be a local directory or any supported storage.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/service/dao"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// Service implements filesystem based profile storage.
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

var _ dao.Service[string, model.Profile] = (*Service)(nil)

func (s *Service) Save(ctx context.Context, profile *model.Profile) error {
	if profile == nil {
		return dao.ErrNilEntity
	}
	if profile.Name == "" {
		return dao.ErrInvalidID
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile %v: %w", profile.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.profileURL(profile.Name)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save profile to %s: %w", URL, err)
	}
	return nil
}

func (s *Service) Load(ctx context.Context, name string) (*model.Profile, error) {
	if name == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.profileURL(name)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile %v: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("profile %v: %w", name, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %v: %w", name, err)
	}
	return decode(name, data)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if name == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.profileURL(name)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check profile %v: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("profile %v: %w", name, dao.ErrNotFound)
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete profile %v: %w", name, err)
	}
	return nil
}

// List returns every readable profile ordered by name; unreadable files are
// skipped.
func (s *Service) List(ctx context.Context) ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	var profiles []*model.Profile
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ext) {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		profile, err := decode(strings.TrimSuffix(object.Name(), ext), data)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func (s *Service) profileURL(name string) string {
	return url.Join(s.baseURL, path.Base(name)+ext)
}

func decode(name string, data []byte) (*model.Profile, error) {
	profile := &model.Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %v: %w", name, err)
	}
	if profile.Name == "" {
		profile.Name = name
	}
	if profile.Choices == nil {
		profile.Choices = map[string]string{}
	}
	return profile, nil
}

// New creates a profile storage rooted at baseURL, creating it if needed.
func New(ctx context.Context, baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("profile base URL cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create profile directory: %w", err)
		}
	}
	return &Service{baseURL: baseURL, fs: fs}, nil
}
