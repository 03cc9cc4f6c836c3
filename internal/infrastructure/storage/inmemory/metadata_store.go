package inmemory

import (
	"context"
	"sync"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
)

type metadataStore struct {
	mtx      sync.RWMutex
	snapshot *domain.Snapshot
}

// NewMetadataStore returns a volatile domain.MetadataStore, useful for tests
// and dry runs.
func NewMetadataStore() domain.MetadataStore {
	return &metadataStore{}
}

func (s *metadataStore) Fetch(_ context.Context) (*domain.Snapshot, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.snapshot, nil
}

func (s *metadataStore) Update(
	_ context.Context, snapshot *domain.Snapshot,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.snapshot = snapshot
	return nil
}
