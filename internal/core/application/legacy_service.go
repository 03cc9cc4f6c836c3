package application

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/kestrel-wallet/kestreld/pkg/payment"
)

// NeedsTransitionFromLegacy reports whether the wallet carries pre-HD state
// holding a positive balance, meaning a sweep is warranted. When the wallet
// has no legacy state at all the answer is false without any network call.
// An unverified default account takes precedence over an occupied legacy
// slot, so the balance checked is the one the transition would move.
func (s *walletService) NeedsTransitionFromLegacy(
	ctx context.Context,
) (bool, error) {
	s.mtx.RLock()
	if s.wallet == nil {
		s.mtx.RUnlock()
		return false, ErrWalletNotLoaded
	}
	address := ""
	switch s.wallet.LegacyState() {
	case domain.UnverifiedDefault:
		defaultAccount, err := s.wallet.DefaultAccount()
		if err != nil {
			s.mtx.RUnlock()
			return false, err
		}
		address = defaultAccount.Address()
	case domain.LegacySlot:
		legacy, _ := s.wallet.LegacyAccount()
		address = legacy.Address()
	default:
		s.mtx.RUnlock()
		return false, nil
	}
	s.mtx.RUnlock()

	accountsData, err := s.explorerSvc.GetAccountsData([]string{address})
	if err != nil {
		return false, err
	}
	return accountsData[address].Balance.Sign() > 0, nil
}

// TransitionFromLegacy moves an unverified default account into the legacy
// slot and persists the cleared account list. Calling it when no unverified
// default account exists is a no-op and triggers no sync.
func (s *walletService) TransitionFromLegacy(ctx context.Context) error {
	s.mtx.Lock()
	if s.wallet == nil {
		s.mtx.Unlock()
		return ErrWalletNotLoaded
	}
	changed := s.wallet.TransitionFromLegacy()
	s.mtx.Unlock()

	if !changed {
		return nil
	}
	return s.syncer.Sync(ctx)
}

// SweepLegacyAccountOpts is the struct given to SweepLegacyAccount method
type SweepLegacyAccountOpts struct {
	GasPrice       *big.Int
	GasLimit       uint64
	SecondPassword string
}

// SweepLegacyAccount moves the whole spendable balance of the legacy account
// to the HD default account, creating the latter first when missing. The
// mandatory ordering is balance check, key derivation and validation, sign,
// publish; a failure at any step aborts without publishing.
func (s *walletService) SweepLegacyAccount(
	ctx context.Context, opts SweepLegacyAccountOpts,
) (string, error) {
	s.mtx.RLock()
	if s.wallet == nil {
		s.mtx.RUnlock()
		return "", ErrWalletNotLoaded
	}
	legacy, hasLegacy := s.wallet.LegacyAccount()
	hasAccounts := len(s.wallet.Accounts()) > 0
	s.mtx.RUnlock()

	if !hasLegacy {
		return "", ErrNoLegacyAccount
	}
	if !hasAccounts {
		if _, err := s.CreateAccount(ctx, "", opts.SecondPassword); err != nil {
			return "", err
		}
	}
	destination, err := s.DefaultAccount()
	if err != nil {
		return "", err
	}

	accountsData, err := s.explorerSvc.GetAccountsData(
		[]string{legacy.Address()},
	)
	if err != nil {
		return "", err
	}
	data := accountsData[legacy.Address()]
	if data.Balance.Sign() <= 0 {
		return "", ErrNoFundsToSweep
	}

	s.mtx.RLock()
	privateKey, err := s.wallet.GetPrivateKeyForLegacyAccount(
		decryptCipher(opts.SecondPassword),
	)
	s.mtx.RUnlock()
	if err != nil {
		return "", err
	}

	pay := payment.NewPayment(payment.NewPaymentOpts{
		From:        common.HexToAddress(legacy.Address()),
		BalanceWei:  data.Balance,
		Nonce:       data.Nonce,
		ChainID:     s.chainID,
		Broadcaster: s.explorerSvc,
	})
	pay.SetTo(common.HexToAddress(destination.Address()))
	pay.SetSweep()
	pay.SetGasPrice(s.gasPriceOrDefault(opts.GasPrice))
	pay.SetGasLimit(s.gasLimitOrDefault(opts.GasLimit))

	if err := pay.Sign(privateKey); err != nil {
		return "", err
	}
	txHash, err := pay.Publish()
	if err != nil {
		return "", err
	}

	s.mtx.Lock()
	s.wallet.SetLastTx(txHash)
	s.wallet.SetLegacyBalance(decimal.Zero)
	s.mtx.Unlock()
	if err := s.syncer.Sync(ctx); err != nil {
		log.WithError(err).Warn("wallet: failed to sync after legacy sweep")
	}
	return txHash, nil
}
