package application

import "errors"

var (
	// ErrNoLegacyAccount ...
	ErrNoLegacyAccount = errors.New("wallet has no legacy account")
	// ErrNoFundsToSweep ...
	ErrNoFundsToSweep = errors.New("legacy account has no funds to sweep")
	// ErrWalletNotLoaded is thrown when an operation runs before the wallet
	// has been fetched from the metadata store
	ErrWalletNotLoaded = errors.New("wallet must be loaded first")
)
