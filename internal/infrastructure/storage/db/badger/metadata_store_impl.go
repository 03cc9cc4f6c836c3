package dbbadger

import (
	"context"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
)

const snapshotKey = "wallet"

type snapshotRecord struct {
	Key      string
	Revision string
	Snapshot *domain.Snapshot
}

type metadataStore struct {
	db *DbManager
}

// NewMetadataStore returns a domain.MetadataStore persisting the wallet
// snapshot into the given badger store.
func NewMetadataStore(db *DbManager) domain.MetadataStore {
	return &metadataStore{db}
}

func (s *metadataStore) Fetch(_ context.Context) (*domain.Snapshot, error) {
	var record snapshotRecord
	err := s.db.Store.Get(snapshotKey, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return record.Snapshot, nil
}

func (s *metadataStore) Update(
	_ context.Context, snapshot *domain.Snapshot,
) error {
	record := snapshotRecord{
		Key:      snapshotKey,
		Revision: uuid.New().String(),
		Snapshot: snapshot,
	}
	return s.db.Store.Upsert(snapshotKey, record)
}
