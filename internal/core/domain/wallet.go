package domain

import (
	"fmt"

	"github.com/kestrel-wallet/kestreld/pkg/hdkey"
	"github.com/shopspring/decimal"
)

// Wallet is the root aggregate of the deterministic wallet. It owns the
// account list, the default-account selection, the legacy slot, the
// transaction notes and the secret material, and it is the only writer of
// all of them.
type Wallet struct {
	hasSeen           bool
	defaultAccountIdx int
	accounts          []Account
	legacyAccount     *Account
	txNotes           map[string]string
	lastTx            string
	seedHex           string
	passphrase        string
	doubleEncrypted   bool
	pending           *pendingChange

	// runtime state, never serialized
	latestBlock   uint64
	balances      map[int]decimal.Decimal
	legacyBalance decimal.Decimal
	accountTxs    map[int][]WalletTx
	legacyTxs     []WalletTx
}

// NewWalletOpts is the struct given to the NewWallet factory
type NewWalletOpts struct {
	EntropySize       int
	Passphrase        string
	FirstAccountLabel string
}

// NewWallet returns a brand new unencrypted wallet with a freshly generated
// seed and its first account already derived at index 0.
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	seedHex, err := hdkey.NewSeedHex(hdkey.NewSeedHexOpts{
		EntropySize: opts.EntropySize,
	})
	if err != nil {
		return nil, err
	}

	w := newEmptyWallet()
	w.seedHex = seedHex
	w.passphrase = opts.Passphrase
	if _, err := w.CreateAccount(opts.FirstAccountLabel, nil); err != nil {
		return nil, err
	}
	return w, nil
}

// NewWalletFromSeedHexOpts is the struct given to the NewWalletFromSeedHex
// factory
type NewWalletFromSeedHexOpts struct {
	SeedHex           string
	Passphrase        string
	FirstAccountLabel string
}

// NewWalletFromSeedHex restores a wallet from an existing seed, deriving its
// first account at index 0.
func NewWalletFromSeedHex(opts NewWalletFromSeedHexOpts) (*Wallet, error) {
	if len(opts.SeedHex) <= 0 {
		return nil, hdkey.ErrNullSeedHex
	}

	w := newEmptyWallet()
	w.seedHex = opts.SeedHex
	w.passphrase = opts.Passphrase
	if _, err := w.CreateAccount(opts.FirstAccountLabel, nil); err != nil {
		return nil, err
	}
	return w, nil
}

func newEmptyWallet() *Wallet {
	return &Wallet{
		accounts:   make([]Account, 0),
		txNotes:    make(map[string]string),
		balances:   make(map[int]decimal.Decimal),
		accountTxs: make(map[int][]WalletTx),
	}
}

// HasSeen returns whether the wallet has already been viewed by its owner.
func (w *Wallet) HasSeen() bool {
	return w.hasSeen
}

// DefaultAccountIndex returns the index of the currently selected account.
func (w *Wallet) DefaultAccountIndex() int {
	return w.defaultAccountIdx
}

// Accounts returns a copy of the whole account list, archived included, in
// derivation-index order.
func (w *Wallet) Accounts() []Account {
	accounts := make([]Account, len(w.accounts))
	copy(accounts, w.accounts)
	return accounts
}

// ActiveAccounts returns a copy of the non-archived accounts in
// derivation-index order.
func (w *Wallet) ActiveAccounts() []Account {
	accounts := make([]Account, 0, len(w.accounts))
	for _, a := range w.accounts {
		if !a.archived {
			accounts = append(accounts, a)
		}
	}
	return accounts
}

// Account returns the account at the given derivation index.
func (w *Wallet) Account(accountIndex int) (Account, error) {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return Account{}, err
	}
	return w.accounts[accountIndex], nil
}

// DefaultAccount returns the currently selected account.
func (w *Wallet) DefaultAccount() (Account, error) {
	if len(w.accounts) <= 0 {
		return Account{}, ErrAccountNotFound
	}
	return w.accounts[w.defaultAccountIdx], nil
}

// LegacyAccount returns the account parked in the legacy slot, if any.
func (w *Wallet) LegacyAccount() (Account, bool) {
	if w.legacyAccount == nil {
		return Account{}, false
	}
	return *w.legacyAccount, true
}

// GetTxNote returns the note attached to the given transaction hash and
// whether one exists.
func (w *Wallet) GetTxNote(txHash string) (string, bool) {
	note, ok := w.txNotes[txHash]
	return note, ok
}

// TxNotes returns a copy of the whole hash-to-note mapping.
func (w *Wallet) TxNotes() map[string]string {
	notes := make(map[string]string, len(w.txNotes))
	for hash, note := range w.txNotes {
		notes[hash] = note
	}
	return notes
}

// LastTx returns the hash of the last broadcast transaction.
func (w *Wallet) LastTx() string {
	return w.lastTx
}

// SeedHex returns the seed material as committed, ciphertext when the wallet
// is double-encrypted.
func (w *Wallet) SeedHex() string {
	return w.seedHex
}

// LatestBlock returns the latest observed block height.
func (w *Wallet) LatestBlock() uint64 {
	return w.latestBlock
}

func (w *Wallet) validateAccountIndex(accountIndex int) error {
	if accountIndex < 0 || accountIndex >= len(w.accounts) {
		return ErrInvalidAccountIndex
	}
	return nil
}

func defaultAccountLabel(accountIndex int) string {
	if accountIndex <= 0 {
		return "My Ether Wallet"
	}
	return fmt.Sprintf("My Ether Wallet %d", accountIndex+1)
}
