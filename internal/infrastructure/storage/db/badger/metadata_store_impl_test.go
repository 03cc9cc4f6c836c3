package dbbadger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	dbbadger "github.com/kestrel-wallet/kestreld/internal/infrastructure/storage/db/badger"
)

func newTestStore(t *testing.T) domain.MetadataStore {
	t.Helper()
	db, err := dbbadger.NewDbManager("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return dbbadger.NewMetadataStore(db)
}

func TestFetchWithoutSnapshot(t *testing.T) {
	store := newTestStore(t)

	snapshot, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestUpdateAndFetchSnapshot(t *testing.T) {
	store := newTestStore(t)
	snapshot := &domain.Snapshot{
		HasSeen:           true,
		DefaultAccountIdx: 0,
		Accounts: []domain.AccountRecord{
			{
				Label: "My Ether Wallet",
				Addr:  "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
				Xpub:  "xpub6FmopZ...",
			},
		},
		TxNotes: map[string]string{"0xabc": "lunch"},
		SeedHex: "7e061ca8e579e5e70e9989ca40d342fe",
	}

	require.NoError(t, store.Update(context.Background(), snapshot))
	fetched, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, fetched)

	snapshot.LastTx = "0xdef"
	require.NoError(t, store.Update(context.Background(), snapshot))
	fetched, err = store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xdef", fetched.LastTx)
}
