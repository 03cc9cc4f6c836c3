package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/kestrel-wallet/kestreld/pkg/hdkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.CreateAccount("savings", nil)
	require.NoError(t, err)
	require.NoError(t, w.ArchiveAccount(1))
	w.SetTxNote("0xabc", "lunch")
	w.SetTxNote("0xdef", "rent")
	w.SetLastTx("0xdef")
	w.SetHasSeen(true)

	snapshot := w.Snapshot()
	serialized, err := json.Marshal(snapshot)
	require.NoError(t, err)

	restored, err := domain.WalletFromSnapshot(snapshot)
	require.NoError(t, err)
	reserialized, err := json.Marshal(restored.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, serialized, reserialized)

	assert.Equal(t, w.DefaultAccountIndex(), restored.DefaultAccountIndex())
	assert.Equal(t, w.Accounts(), restored.Accounts())
	assert.Equal(t, w.TxNotes(), restored.TxNotes())
	assert.Equal(t, w.LastTx(), restored.LastTx())
	assert.Equal(t, w.HasSeen(), restored.HasSeen())
}

func TestWalletFromNilSnapshot(t *testing.T) {
	w, err := domain.WalletFromSnapshot(nil)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Len(t, w.Accounts(), 0)
	assert.Equal(t, 0, w.DefaultAccountIndex())
	assert.False(t, w.HasSeen())
}

func TestFailingWalletFromSnapshot(t *testing.T) {
	validAccount := domain.AccountRecord{
		Label: "My Ether Wallet",
		Addr:  "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
		Xpub:  "xpub6FmopZ...",
	}

	tests := []struct {
		name     string
		snapshot *domain.Snapshot
	}{
		{
			"negative_default_index",
			&domain.Snapshot{DefaultAccountIdx: -1},
		},
		{
			"default_index_out_of_range",
			&domain.Snapshot{
				DefaultAccountIdx: 1,
				Accounts:          []domain.AccountRecord{validAccount},
				SeedHex:           testSeedHex,
			},
		},
		{
			"default_index_without_accounts",
			&domain.Snapshot{DefaultAccountIdx: 2},
		},
		{
			"account_without_address",
			&domain.Snapshot{
				Accounts: []domain.AccountRecord{{Xpub: "xpub6FmopZ..."}},
				SeedHex:  testSeedHex,
			},
		},
		{
			"account_without_xpub",
			&domain.Snapshot{
				Accounts: []domain.AccountRecord{{Addr: validAccount.Addr}},
				SeedHex:  testSeedHex,
			},
		},
		{
			"legacy_account_without_address",
			&domain.Snapshot{
				LegacyAccount: &domain.AccountRecord{Xpub: "xpub6FmopZ..."},
				SeedHex:       testSeedHex,
			},
		},
		{
			"missing_seed_hex",
			&domain.Snapshot{
				Accounts: []domain.AccountRecord{validAccount},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := domain.WalletFromSnapshot(tt.snapshot)
			assert.EqualError(t, err, domain.ErrInvalidSnapshot.Error())
			assert.Nil(t, w)
		})
	}
}

func TestTransitionFromLegacy(t *testing.T) {
	w := newTestWallet(t)
	snapshot := w.Snapshot()
	snapshot.Accounts[0].Correct = false
	w, err := domain.WalletFromSnapshot(snapshot)
	require.NoError(t, err)
	require.True(t, w.NeedsTransitionFromLegacy())

	changed := w.TransitionFromLegacy()
	assert.True(t, changed)
	assert.Len(t, w.Accounts(), 0)
	assert.Equal(t, 0, w.DefaultAccountIndex())
	legacy, ok := w.LegacyAccount()
	require.True(t, ok)
	assert.Equal(t, snapshot.Accounts[0].Addr, legacy.Address())
	assert.True(t, w.NeedsTransitionFromLegacy())

	changed = w.TransitionFromLegacy()
	assert.False(t, changed)
}

func TestGetPrivateKeyForLegacyAccount(t *testing.T) {
	node, err := hdkey.DeriveLegacyAccountNode(hdkey.DeriveLegacyAccountNodeOpts{
		SeedHex: testSeedHex,
	})
	require.NoError(t, err)
	addr, err := node.Address()
	require.NoError(t, err)
	xpub, err := node.ExtendedPublicKey()
	require.NoError(t, err)

	w, err := domain.WalletFromSnapshot(&domain.Snapshot{
		LegacyAccount: &domain.AccountRecord{
			Label: "My Ether Wallet",
			Addr:  addr.Hex(),
			Xpub:  xpub,
			Xpriv: node.ExtendedKey(),
		},
		SeedHex: testSeedHex,
	})
	require.NoError(t, err)

	key, err := w.GetPrivateKeyForLegacyAccount(nil)
	require.NoError(t, err)
	require.NotNil(t, key)

	expected, err := node.PrivateKey()
	require.NoError(t, err)
	assert.Equal(t, expected.D, key.D)
}

func TestFailingGetPrivateKeyForLegacyAccount(t *testing.T) {
	w := newTestWallet(t)

	key, err := w.GetPrivateKeyForLegacyAccount(nil)
	assert.EqualError(t, err, domain.ErrAccountNotFound.Error())
	assert.Nil(t, key)
}

func TestTransitionFromLegacyWithVerifiedDefaultIsNoop(t *testing.T) {
	w := newTestWallet(t)
	require.False(t, w.NeedsTransitionFromLegacy())

	changed := w.TransitionFromLegacy()
	assert.False(t, changed)
	assert.Len(t, w.Accounts(), 1)
	_, ok := w.LegacyAccount()
	assert.False(t, ok)
}
