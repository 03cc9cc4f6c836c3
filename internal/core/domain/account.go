package domain

// Account is an entry of the wallet's account list. Its fields can be read
// from everywhere but mutated only through the Wallet owning it.
type Account struct {
	label    string
	archived bool
	correct  bool
	addr     string
	xpub     string
	xpriv    string
}

// NewAccount returns a new account with the given label and key material.
// The correct flag marks whether the key derivation has been verified for
// this account; accounts created locally are always verified.
func NewAccount(label, addr, xpub, xpriv string, correct bool) Account {
	return Account{
		label:   label,
		correct: correct,
		addr:    addr,
		xpub:    xpub,
		xpriv:   xpriv,
	}
}

// Label returns the display label of the account.
func (a Account) Label() string {
	return a.label
}

// IsArchived returns whether the account is hidden from the active list.
func (a Account) IsArchived() bool {
	return a.archived
}

// IsCorrect returns whether the key derivation for this account has been
// verified against its recorded address.
func (a Account) IsCorrect() bool {
	return a.correct
}

// Address returns the ethereum address of the account.
func (a Account) Address() string {
	return a.addr
}

// ExtendedPublicKey returns the extended public key of the account node.
func (a Account) ExtendedPublicKey() string {
	return a.xpub
}

// ExtendedPrivateKey returns the extended private key of the account node.
// It is ciphertext whenever the wallet is double-encrypted.
func (a Account) ExtendedPrivateKey() string {
	return a.xpriv
}
