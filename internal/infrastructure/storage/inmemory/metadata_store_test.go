package inmemory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/kestrel-wallet/kestreld/internal/infrastructure/storage/inmemory"
)

func TestMetadataStore(t *testing.T) {
	store := inmemory.NewMetadataStore()

	snapshot, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	wallet, err := domain.NewWalletFromSeedHex(domain.NewWalletFromSeedHexOpts{
		SeedHex: "7e061ca8e579e5e70e9989ca40d342fe",
	})
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), wallet.Snapshot()))

	snapshot, err = store.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Len(t, snapshot.Accounts, 1)
}
