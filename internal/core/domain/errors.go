package domain

import "errors"

var (
	// ErrAccountNotFound ...
	ErrAccountNotFound = errors.New("account does not exist")
	// ErrInvalidAccountIndex is thrown when an account index is negative or
	// out of bounds of the account list
	ErrInvalidAccountIndex = errors.New("account index must be a number in [0, accounts)")
	// ErrCannotArchiveDefault ...
	ErrCannotArchiveDefault = errors.New("cannot archive default account")
	// ErrSecondPasswordRequired is thrown when deriving key material of a
	// double-encrypted wallet without providing a cipher
	ErrSecondPasswordRequired = errors.New("second password required to derive ethereum wallet")
	// ErrEncryptionFailed is thrown when the cipher fails over any secret
	// field; no field is mutated in that case
	ErrEncryptionFailed = errors.New("failed to encrypt or decrypt secret fields")
	// ErrKeyDerivationMismatch is thrown when a derived private key does not
	// reproduce the public identity recorded for the account
	ErrKeyDerivationMismatch = errors.New("failed to derive correct private key")
	// ErrInvalidSnapshot is thrown when the remote metadata snapshot holds a
	// malformed record; no partially-valid wallet is ever constructed
	ErrInvalidSnapshot = errors.New("invalid wallet snapshot")
)
