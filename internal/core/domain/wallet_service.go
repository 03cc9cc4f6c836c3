package domain

import (
	"crypto/ecdsa"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kestrel-wallet/kestreld/pkg/ethmath"
	"github.com/kestrel-wallet/kestreld/pkg/hdkey"
	"github.com/shopspring/decimal"
)

// CreateAccount derives the next account at index = current account count,
// appends it to the account list and returns it. The account is labelled
// with the given label, or with an index-derived default when empty. When
// the wallet is double-encrypted both cipher directions are required: the
// decrypt one to read the seed, the encrypt one to store the new extended
// private key.
func (w *Wallet) CreateAccount(
	label string, ciphers *hdkey.CipherPair,
) (Account, error) {
	var decryptCipher, encryptCipher hdkey.Cipher
	if w.doubleEncrypted {
		if ciphers == nil {
			return Account{}, ErrSecondPasswordRequired
		}
		decryptCipher, encryptCipher = ciphers.Decrypt, ciphers.Encrypt
	}

	seedHex, passphrase, err := w.plainSecrets(decryptCipher)
	if err != nil {
		return Account{}, err
	}

	accountIndex := len(w.accounts)
	node, err := hdkey.DeriveAccountNode(hdkey.DeriveAccountNodeOpts{
		SeedHex:      seedHex,
		Passphrase:   passphrase,
		AccountIndex: uint32(accountIndex),
	})
	if err != nil {
		return Account{}, err
	}

	addr, err := node.Address()
	if err != nil {
		return Account{}, err
	}
	xpub, err := node.ExtendedPublicKey()
	if err != nil {
		return Account{}, err
	}
	xpriv := node.ExtendedKey()
	if w.doubleEncrypted {
		if xpriv, err = hdkey.ApplyCipher(encryptCipher, xpriv); err != nil {
			return Account{}, ErrEncryptionFailed
		}
	}

	if len(label) <= 0 {
		label = defaultAccountLabel(accountIndex)
	}

	account := NewAccount(label, addr.Hex(), xpub, xpriv, true)
	w.accounts = append(w.accounts, account)
	return account, nil
}

// SetDefaultAccountIndex selects the given account as the default one. It
// returns whether the selection actually changed, so callers can skip the
// metadata sync on an idempotent call.
func (w *Wallet) SetDefaultAccountIndex(accountIndex int) (bool, error) {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return false, err
	}
	if accountIndex == w.defaultAccountIdx {
		return false, nil
	}
	w.defaultAccountIdx = accountIndex
	return true, nil
}

// SetAccountLabel relabels the account at the given index.
func (w *Wallet) SetAccountLabel(accountIndex int, label string) error {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return err
	}
	w.accounts[accountIndex].label = label
	return nil
}

// ArchiveAccount hides the account at the given index from the active list.
// Archived accounts are never removed so derivation indexes stay stable. The
// default account cannot be archived while selected.
func (w *Wallet) ArchiveAccount(accountIndex int) error {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return err
	}
	if accountIndex == w.defaultAccountIdx {
		return ErrCannotArchiveDefault
	}
	w.accounts[accountIndex].archived = true
	return nil
}

// UnarchiveAccount restores an archived account to the active list.
func (w *Wallet) UnarchiveAccount(accountIndex int) error {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return err
	}
	w.accounts[accountIndex].archived = false
	return nil
}

// SetTxNote attaches a free-text note to a transaction hash. An empty note
// deletes the existing one.
func (w *Wallet) SetTxNote(txHash, note string) {
	if len(note) <= 0 {
		delete(w.txNotes, txHash)
		return
	}
	w.txNotes[txHash] = note
}

// SetLastTx records the hash of the last broadcast transaction.
func (w *Wallet) SetLastTx(txHash string) {
	w.lastTx = txHash
}

// SetHasSeen marks the wallet as viewed by its owner.
func (w *Wallet) SetHasSeen(hasSeen bool) {
	w.hasSeen = hasSeen
}

// SetLatestBlock records the latest observed block height.
func (w *Wallet) SetLatestBlock(blockHeight uint64) {
	w.latestBlock = blockHeight
}

// SetAccountBalance replaces the cached wei balance of an account.
func (w *Wallet) SetAccountBalance(
	accountIndex int, balance decimal.Decimal,
) error {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return err
	}
	w.balances[accountIndex] = balance
	return nil
}

// SetLegacyBalance replaces the cached wei balance of the legacy account.
func (w *Wallet) SetLegacyBalance(balance decimal.Decimal) {
	w.legacyBalance = balance
}

// SetAccountTxs replaces wholesale the cached transaction list of an account.
func (w *Wallet) SetAccountTxs(accountIndex int, txs []WalletTx) error {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return err
	}
	w.accountTxs[accountIndex] = txs
	return nil
}

// SetLegacyTxs replaces wholesale the cached transaction list of the legacy
// account.
func (w *Wallet) SetLegacyTxs(txs []WalletTx) {
	w.legacyTxs = txs
}

// Balance returns the cached wei balance of an account.
func (w *Wallet) Balance(accountIndex int) (decimal.Decimal, error) {
	if err := w.validateAccountIndex(accountIndex); err != nil {
		return decimal.Zero, err
	}
	return w.balances[accountIndex], nil
}

// LegacyBalance returns the cached wei balance of the legacy account.
func (w *Wallet) LegacyBalance() decimal.Decimal {
	return w.legacyBalance
}

// GetApproximateBalance renders the cached balance of an account as a
// fixed-precision ether string.
func (w *Wallet) GetApproximateBalance(accountIndex int) (string, error) {
	balance, err := w.Balance(accountIndex)
	if err != nil {
		return "", err
	}
	return ethmath.WeiToEtherString(balance), nil
}

// GetApproximateLegacyBalance renders the cached legacy balance as a
// fixed-precision ether string.
func (w *Wallet) GetApproximateLegacyBalance() string {
	return ethmath.WeiToEtherString(w.legacyBalance)
}

// Txs returns the merged view over every active account's transactions plus
// the legacy ones, de-duplicated by hash with unconfirmed entries first,
// then sorted by descending timestamp. Notes are attached to their matching
// entries.
func (w *Wallet) Txs() []WalletTx {
	lists := make([][]WalletTx, 0, len(w.accounts)+1)
	for i := range w.accounts {
		if w.accounts[i].archived {
			continue
		}
		lists = append(lists, w.accountTxs[i])
	}
	if w.legacyAccount != nil {
		lists = append(lists, w.legacyTxs)
	}

	merged := MergeTxs(lists...)
	for i := range merged {
		if note, ok := w.txNotes[merged[i].Hash]; ok {
			merged[i].Note = note
		}
	}
	return merged
}

// GetPrivateKeyForAccount re-derives the private key of the account at the
// given index and verifies it reproduces the account's recorded address
// before handing it out.
func (w *Wallet) GetPrivateKeyForAccount(
	accountIndex int, cipher hdkey.Cipher,
) (*ecdsa.PrivateKey, error) {
	account, err := w.Account(accountIndex)
	if err != nil {
		return nil, err
	}

	seedHex, passphrase, err := w.plainSecrets(cipher)
	if err != nil {
		return nil, err
	}
	node, err := hdkey.DeriveAccountNode(hdkey.DeriveAccountNodeOpts{
		SeedHex:      seedHex,
		Passphrase:   passphrase,
		AccountIndex: uint32(accountIndex),
	})
	if err != nil {
		return nil, err
	}
	return verifiedPrivateKey(node, account)
}

// GetPrivateKeyForLegacyAccount re-derives the private key of the legacy
// account and verifies it against the legacy slot's recorded address.
func (w *Wallet) GetPrivateKeyForLegacyAccount(
	cipher hdkey.Cipher,
) (*ecdsa.PrivateKey, error) {
	if w.legacyAccount == nil {
		return nil, ErrAccountNotFound
	}

	seedHex, _, err := w.plainSecrets(cipher)
	if err != nil {
		return nil, err
	}
	node, err := hdkey.DeriveLegacyAccountNode(hdkey.DeriveLegacyAccountNodeOpts{
		SeedHex:      seedHex,
		AccountIndex: 0,
	})
	if err != nil {
		return nil, err
	}
	return verifiedPrivateKey(node, *w.legacyAccount)
}

// LegacyState distinguishes the two ways a wallet can carry pre-HD account
// state.
type LegacyState int

const (
	// NoLegacy means the wallet only holds verified HD accounts.
	NoLegacy LegacyState = iota
	// UnverifiedDefault means the default account was derived but its key
	// derivation was never verified; it must be moved to the legacy slot.
	UnverifiedDefault
	// LegacySlot means a known pre-HD account is parked in the legacy slot.
	LegacySlot
)

// LegacyState returns the wallet's migration state. An unverified default
// account takes precedence over an occupied legacy slot since it still needs
// to be transitioned.
func (w *Wallet) LegacyState() LegacyState {
	if defaultAccount, err := w.DefaultAccount(); err == nil {
		if !defaultAccount.correct {
			return UnverifiedDefault
		}
	}
	if w.legacyAccount != nil {
		return LegacySlot
	}
	return NoLegacy
}

// NeedsTransitionFromLegacy reports whether the wallet carries pre-HD
// account state in either form.
func (w *Wallet) NeedsTransitionFromLegacy() bool {
	return w.LegacyState() != NoLegacy
}

// TransitionFromLegacy moves an unverified default account into the legacy
// slot and clears the HD account list so it can be rebuilt with verified
// derivation. It returns whether anything changed; calling it with no
// unverified default account is a no-op.
func (w *Wallet) TransitionFromLegacy() bool {
	defaultAccount, err := w.DefaultAccount()
	if err != nil || defaultAccount.correct {
		return false
	}

	legacy := defaultAccount
	w.legacyAccount = &legacy
	w.accounts = make([]Account, 0)
	w.defaultAccountIdx = 0
	w.balances = make(map[int]decimal.Decimal)
	w.accountTxs = make(map[int][]WalletTx)
	// a change staged before the transition refers to the cleared list
	w.pending = nil
	return true
}

func (w *Wallet) plainSecrets(cipher hdkey.Cipher) (string, string, error) {
	if !w.doubleEncrypted {
		return w.seedHex, w.passphrase, nil
	}
	if cipher == nil {
		return "", "", ErrSecondPasswordRequired
	}

	seedHex, err := hdkey.ApplyCipher(cipher, w.seedHex)
	if err != nil {
		return "", "", err
	}
	passphrase := w.passphrase
	if len(passphrase) > 0 {
		if passphrase, err = hdkey.ApplyCipher(cipher, passphrase); err != nil {
			return "", "", err
		}
	}
	return seedHex, passphrase, nil
}

func verifiedPrivateKey(
	node *hdkey.AccountNode, account Account,
) (*ecdsa.PrivateKey, error) {
	privateKey, err := node.PrivateKey()
	if err != nil {
		return nil, err
	}
	if !account.isCorrectPrivateKey(privateKey) {
		return nil, ErrKeyDerivationMismatch
	}
	return privateKey, nil
}

func (a Account) isCorrectPrivateKey(key *ecdsa.PrivateKey) bool {
	addr := ethcrypto.PubkeyToAddress(key.PublicKey)
	return strings.EqualFold(addr.Hex(), a.addr)
}
