package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// Versions implements ports.VersionSource over an in-memory history.
type Versions struct {
	mu      sync.RWMutex
	records map[domain.RecordRef]map[int]*domain.Version
}

// NewVersions creates an empty version source.
func NewVersions() *Versions {
	return &Versions{records: make(map[domain.RecordRef]map[int]*domain.Version)}
}

// NewFromVersions creates a version source holding the given history of ref.
// This improves DX for tests.
func NewFromVersions(ref domain.RecordRef, versions ...*domain.Version) (*Versions, error) {
	src := NewVersions()
	for _, v := range versions {
		if err := src.Add(ref, v); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// Add stores a copy of v under ref.
func (s *Versions) Add(ref domain.RecordRef, v *domain.Version) error {
	if v == nil || v.Version <= 0 {
		return fmt.Errorf("version of %s must be positive", ref)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[ref] == nil {
		s.records[ref] = make(map[int]*domain.Version)
	}
	s.records[ref][v.Version] = v.Clone()
	return nil
}

// ListVersions returns every version of ref, newest first.
func (s *Versions) ListVersions(ctx context.Context, ref domain.RecordRef) ([]*domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Version, 0, len(s.records[ref]))
	for _, v := range s.records[ref] {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// GetVersion returns a copy of a single version.
func (s *Versions) GetVersion(ctx context.Context, ref domain.RecordRef, version int) (*domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[ref][version]
	if !ok {
		return nil, fmt.Errorf("%w: %s v%d", domain.ErrVersionNotFound, ref, version)
	}
	return v.Clone(), nil
}
