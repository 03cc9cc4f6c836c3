package domain

import (
	"github.com/kestrel-wallet/kestreld/pkg/hdkey"
)

// ChangeKind tells whether a staged secret change encrypts or decrypts the
// wallet's secret fields.
type ChangeKind int

const (
	// ChangeEncrypt ...
	ChangeEncrypt ChangeKind = iota
	// ChangeDecrypt ...
	ChangeDecrypt
)

// pendingChange holds the transformed value of every secret field between
// the staging and the commit phase of a second-password change. Committed
// fields stay untouched until Persist promotes the staged ones.
type pendingChange struct {
	kind        ChangeKind
	seedHex     string
	passphrase  string
	accountKeys map[int]string
	legacyKey   string
}

// Encrypt runs the cipher over every secret field of the wallet and stages
// the results as a pending change. No committed field is mutated; if the
// cipher fails over any field the whole operation aborts and no change is
// staged.
func (w *Wallet) Encrypt(cipher hdkey.Cipher) error {
	return w.stageSecrets(cipher, ChangeEncrypt)
}

// Decrypt is the symmetric counterpart of Encrypt, staging the deciphered
// value of every secret field as a pending change.
func (w *Wallet) Decrypt(cipher hdkey.Cipher) error {
	return w.stageSecrets(cipher, ChangeDecrypt)
}

// Persist promotes the staged secret values to committed state and discards
// the pending change. It is a no-op when nothing is staged and never talks
// to the metadata store by itself.
func (w *Wallet) Persist() {
	if w.pending == nil {
		return
	}
	w.seedHex = w.pending.seedHex
	w.passphrase = w.pending.passphrase
	for i, key := range w.pending.accountKeys {
		if i < len(w.accounts) {
			w.accounts[i].xpriv = key
		}
	}
	if w.legacyAccount != nil && len(w.pending.legacyKey) > 0 {
		w.legacyAccount.xpriv = w.pending.legacyKey
	}
	w.doubleEncrypted = w.pending.kind == ChangeEncrypt
	w.pending = nil
}

// IsEncrypted reports the committed encryption state only. A wallet with a
// staged but unpersisted change reports its previous state.
func (w *Wallet) IsEncrypted() bool {
	return w.doubleEncrypted
}

// IsUnEncrypted ...
func (w *Wallet) IsUnEncrypted() bool {
	return !w.doubleEncrypted
}

// HasPendingChange returns whether a secret change is staged but not yet
// persisted.
func (w *Wallet) HasPendingChange() bool {
	return w.pending != nil
}

func (w *Wallet) stageSecrets(cipher hdkey.Cipher, kind ChangeKind) error {
	if cipher == nil {
		return ErrSecondPasswordRequired
	}
	change := &pendingChange{
		kind:        kind,
		accountKeys: make(map[int]string),
	}

	seedHex, err := hdkey.ApplyCipher(cipher, w.seedHex)
	if err != nil {
		return ErrEncryptionFailed
	}
	change.seedHex = seedHex

	if len(w.passphrase) > 0 {
		passphrase, err := hdkey.ApplyCipher(cipher, w.passphrase)
		if err != nil {
			return ErrEncryptionFailed
		}
		change.passphrase = passphrase
	}

	for i, account := range w.accounts {
		if len(account.xpriv) <= 0 {
			continue
		}
		key, err := hdkey.ApplyCipher(cipher, account.xpriv)
		if err != nil {
			return ErrEncryptionFailed
		}
		change.accountKeys[i] = key
	}

	if w.legacyAccount != nil && len(w.legacyAccount.xpriv) > 0 {
		key, err := hdkey.ApplyCipher(cipher, w.legacyAccount.xpriv)
		if err != nil {
			return ErrEncryptionFailed
		}
		change.legacyKey = key
	}

	w.pending = change
	return nil
}
