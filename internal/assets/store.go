package assets

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Asset is one cached response body.
type Asset struct {
	Path        string
	ContentType string
	Body        []byte
}

// Store holds asset sets keyed by version.
type Store interface {
	// PutVersion replaces the whole asset set of version in one step.
	PutVersion(ctx context.Context, version string, assets []Asset) error
	// Get returns the asset at path under version; ok is false when absent.
	Get(ctx context.Context, version, path string) (Asset, bool, error)
	// Versions lists every stored version.
	Versions(ctx context.Context) ([]string, error)
	// DeleteVersion removes a version and all of its assets.
	DeleteVersion(ctx context.Context, version string) error
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[string]map[string]Asset
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string]map[string]Asset)}
}

func (s *MemoryStore) PutVersion(_ context.Context, version string, assets []Asset) error {
	set := make(map[string]Asset, len(assets))
	for _, a := range assets {
		a.Body = slices.Clone(a.Body)
		set[a.Path] = a
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[version] = set
	return nil
}

func (s *MemoryStore) Get(_ context.Context, version, path string) (Asset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.versions[version][path]
	if !ok {
		return Asset{}, false, nil
	}
	a.Body = slices.Clone(a.Body)
	return a, true, nil
}

func (s *MemoryStore) Versions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.versions)), nil
}

func (s *MemoryStore) DeleteVersion(_ context.Context, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.versions, version)
	return nil
}
