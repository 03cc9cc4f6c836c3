package domain_test

import (
	"testing"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeedHex = "7e061ca8e579e5e70e9989ca40d342fe"

func newTestWallet(t *testing.T) *domain.Wallet {
	t.Helper()
	w, err := domain.NewWalletFromSeedHex(domain.NewWalletFromSeedHexOpts{
		SeedHex: testSeedHex,
	})
	require.NoError(t, err)
	require.NotNil(t, w)
	return w
}

func TestNewWallet(t *testing.T) {
	w, err := domain.NewWallet(domain.NewWalletOpts{EntropySize: 128})
	require.NoError(t, err)
	require.NotNil(t, w)

	accounts := w.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "My Ether Wallet", accounts[0].Label())
	assert.True(t, accounts[0].IsCorrect())
	assert.False(t, accounts[0].IsArchived())
	assert.NotEmpty(t, accounts[0].Address())
	assert.NotEmpty(t, accounts[0].ExtendedPublicKey())
	assert.Equal(t, 0, w.DefaultAccountIndex())
	assert.False(t, w.IsEncrypted())
	assert.True(t, w.IsUnEncrypted())
}

func TestWalletFromSeedHexIsDeterministic(t *testing.T) {
	w1 := newTestWallet(t)
	w2 := newTestWallet(t)

	a1, err := w1.DefaultAccount()
	require.NoError(t, err)
	a2, err := w2.DefaultAccount()
	require.NoError(t, err)
	assert.Equal(t, a1.Address(), a2.Address())
	assert.Equal(t, a1.ExtendedPublicKey(), a2.ExtendedPublicKey())
}

func TestCreateAccount(t *testing.T) {
	w := newTestWallet(t)

	account, err := w.CreateAccount("", nil)
	require.NoError(t, err)
	assert.Equal(t, "My Ether Wallet 2", account.Label())
	require.Len(t, w.Accounts(), 2)

	labelled, err := w.CreateAccount("savings", nil)
	require.NoError(t, err)
	assert.Equal(t, "savings", labelled.Label())
	require.Len(t, w.Accounts(), 3)

	first, err := w.Account(0)
	require.NoError(t, err)
	assert.NotEqual(t, first.Address(), account.Address())
	assert.NotEqual(t, account.Address(), labelled.Address())
}

func TestSetDefaultAccountIndex(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.CreateAccount("", nil)
	require.NoError(t, err)

	changed, err := w.SetDefaultAccountIndex(1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, w.DefaultAccountIndex())

	changed, err = w.SetDefaultAccountIndex(1)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFailingSetDefaultAccountIndex(t *testing.T) {
	w := newTestWallet(t)

	tests := []struct {
		name         string
		accountIndex int
	}{
		{"negative_index", -1},
		{"out_of_range_index", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := w.SetDefaultAccountIndex(tt.accountIndex)
			assert.EqualError(t, err, domain.ErrInvalidAccountIndex.Error())
			assert.False(t, changed)
			assert.Equal(t, 0, w.DefaultAccountIndex())
		})
	}
}

func TestArchiveAccount(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.CreateAccount("", nil)
	require.NoError(t, err)

	require.NoError(t, w.ArchiveAccount(1))
	account, err := w.Account(1)
	require.NoError(t, err)
	assert.True(t, account.IsArchived())
	assert.Len(t, w.ActiveAccounts(), 1)
	assert.Len(t, w.Accounts(), 2)

	require.NoError(t, w.UnarchiveAccount(1))
	account, err = w.Account(1)
	require.NoError(t, err)
	assert.False(t, account.IsArchived())
}

func TestFailingArchiveDefaultAccount(t *testing.T) {
	w := newTestWallet(t)

	err := w.ArchiveAccount(0)
	assert.EqualError(t, err, domain.ErrCannotArchiveDefault.Error())
	account, err := w.Account(0)
	require.NoError(t, err)
	assert.False(t, account.IsArchived())
}

func TestSetAccountLabel(t *testing.T) {
	w := newTestWallet(t)

	require.NoError(t, w.SetAccountLabel(0, "spending"))
	account, err := w.Account(0)
	require.NoError(t, err)
	assert.Equal(t, "spending", account.Label())

	err = w.SetAccountLabel(4, "nope")
	assert.EqualError(t, err, domain.ErrInvalidAccountIndex.Error())
}

func TestTxNotes(t *testing.T) {
	w := newTestWallet(t)

	w.SetTxNote("0xabc", "lunch")
	note, ok := w.GetTxNote("0xabc")
	assert.True(t, ok)
	assert.Equal(t, "lunch", note)

	w.SetTxNote("0xabc", "")
	note, ok = w.GetTxNote("0xabc")
	assert.False(t, ok)
	assert.Empty(t, note)
}

func TestTxsAreMergedDedupedAndSorted(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.CreateAccount("", nil)
	require.NoError(t, err)

	shared := domain.WalletTx{
		Hash: "0xabc", Value: decimal.New(1, 18),
		BlockNumber: 100, Timestamp: 1000,
	}
	require.NoError(t, w.SetAccountTxs(0, []domain.WalletTx{
		shared,
		{Hash: "0xdef", BlockNumber: 90, Timestamp: 900},
	}))
	require.NoError(t, w.SetAccountTxs(1, []domain.WalletTx{
		shared,
		{Hash: "0xpending", Timestamp: 500},
	}))
	w.SetTxNote("0xdef", "rent")

	txs := w.Txs()
	require.Len(t, txs, 3)
	assert.Equal(t, "0xpending", txs[0].Hash)
	assert.Equal(t, "0xabc", txs[1].Hash)
	assert.Equal(t, "0xdef", txs[2].Hash)
	assert.Equal(t, "rent", txs[2].Note)
}

func TestTxsSkipArchivedAccounts(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.CreateAccount("", nil)
	require.NoError(t, err)

	require.NoError(t, w.SetAccountTxs(1, []domain.WalletTx{
		{Hash: "0xarchived", BlockNumber: 10, Timestamp: 10},
	}))
	require.NoError(t, w.ArchiveAccount(1))

	assert.Len(t, w.Txs(), 0)
}

func TestGetApproximateBalance(t *testing.T) {
	w := newTestWallet(t)

	// 1.5 ETH
	require.NoError(t, w.SetAccountBalance(0, decimal.New(15, 17)))
	balance, err := w.GetApproximateBalance(0)
	require.NoError(t, err)
	assert.Equal(t, "1.50000000", balance)

	w.SetLegacyBalance(decimal.New(5, 16))
	assert.Equal(t, "0.05000000", w.GetApproximateLegacyBalance())
}

func TestGetPrivateKeyForAccount(t *testing.T) {
	w := newTestWallet(t)

	key, err := w.GetPrivateKeyForAccount(0, nil)
	require.NoError(t, err)
	require.NotNil(t, key)
}

func TestFailingGetPrivateKeyForAccount(t *testing.T) {
	w := newTestWallet(t)
	snapshot := w.Snapshot()
	snapshot.Accounts[0].Addr = "0x0000000000000000000000000000000000000001"
	tampered, err := domain.WalletFromSnapshot(snapshot)
	require.NoError(t, err)

	key, err := tampered.GetPrivateKeyForAccount(0, nil)
	assert.EqualError(t, err, domain.ErrKeyDerivationMismatch.Error())
	assert.Nil(t, key)
}
