package application

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/kestrel-wallet/kestreld/pkg/ethmath"
	"github.com/kestrel-wallet/kestreld/pkg/ethsocket"
	"github.com/kestrel-wallet/kestreld/pkg/explorer"
	"github.com/kestrel-wallet/kestreld/pkg/hdkey"
	"github.com/kestrel-wallet/kestreld/pkg/payment"
)

// WalletService is the application facade over the wallet aggregate. Every
// mutation of persisted state triggers a debounced write to the metadata
// store; read-only views never do.
type WalletService interface {
	LoadWallet(ctx context.Context) error
	InitWallet(ctx context.Context, entropySize int, passphrase string) error
	CreateAccount(
		ctx context.Context, label, secondPassword string,
	) (domain.Account, error)
	SetDefaultAccountIndex(ctx context.Context, accountIndex int) error
	SetAccountLabel(ctx context.Context, accountIndex int, label string) error
	ArchiveAccount(ctx context.Context, accountIndex int) error
	UnarchiveAccount(ctx context.Context, accountIndex int) error
	SetTxNote(ctx context.Context, txHash, note string) error
	GetTxNote(txHash string) (string, bool)
	SetHasSeen(ctx context.Context) error
	EnableSecondPassword(ctx context.Context, secondPassword string) error
	DisableSecondPassword(ctx context.Context, secondPassword string) error
	Accounts() []domain.Account
	ActiveAccounts() []domain.Account
	DefaultAccount() (domain.Account, error)
	Txs() []domain.WalletTx
	GetApproximateBalance(accountIndex int) (string, error)
	TotalApproximateBalance() string
	RefreshWalletState(ctx context.Context) error
	SendPayment(ctx context.Context, opts SendPaymentOpts) (string, error)
	NeedsTransitionFromLegacy(ctx context.Context) (bool, error)
	TransitionFromLegacy(ctx context.Context) error
	SweepLegacyAccount(
		ctx context.Context, opts SweepLegacyAccountOpts,
	) (string, error)
	Close()
}

// gas limit applied to transfers towards contract addresses when the caller
// does not pass an explicit one
const contractGasLimit = 65000

type walletService struct {
	store       domain.MetadataStore
	explorerSvc explorer.Service
	socketSvc   ethsocket.Service
	chainID     *big.Int
	gasPrice    *big.Int
	gasLimit    uint64

	mtx    sync.RWMutex
	wallet *domain.Wallet
	syncer *syncer
}

// NewWalletServiceOpts is the struct given to NewWalletService method
type NewWalletServiceOpts struct {
	Store           domain.MetadataStore
	ExplorerSvc     explorer.Service
	SocketSvc       ethsocket.Service
	ChainID         *big.Int
	DefaultGasPrice *big.Int
	DefaultGasLimit uint64
	SyncDebounce    time.Duration
}

func (o NewWalletServiceOpts) validate() error {
	if o.Store == nil {
		return errors.New("metadata store must not be null")
	}
	if o.ExplorerSvc == nil {
		return errors.New("explorer service must not be null")
	}
	if o.ChainID == nil || o.ChainID.Sign() <= 0 {
		return errors.New("chain id must be a positive number")
	}
	if o.DefaultGasPrice == nil || o.DefaultGasPrice.Sign() <= 0 {
		return errors.New("default gas price must be a positive number")
	}
	if o.DefaultGasLimit == 0 {
		return errors.New("default gas limit must be a positive number")
	}
	if o.SyncDebounce <= 0 {
		return errors.New("sync debounce must be a positive duration")
	}
	return nil
}

// NewWalletService returns a WalletService backed by the given collaborators.
func NewWalletService(opts NewWalletServiceOpts) (WalletService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	svc := &walletService{
		store:       opts.Store,
		explorerSvc: opts.ExplorerSvc,
		socketSvc:   opts.SocketSvc,
		chainID:     opts.ChainID,
		gasPrice:    opts.DefaultGasPrice,
		gasLimit:    opts.DefaultGasLimit,
	}
	svc.syncer = newSyncer(opts.Store, opts.SyncDebounce, svc.takeSnapshot)
	return svc, nil
}

// LoadWallet fetches the metadata snapshot and rebuilds the wallet from it.
// A missing snapshot leaves the wallet in its empty default state. Live
// subscriptions for blocks and every known address are established when a
// socket service is configured.
func (s *walletService) LoadWallet(ctx context.Context) error {
	snapshot, err := s.store.Fetch(ctx)
	if err != nil {
		return err
	}
	wallet, err := domain.WalletFromSnapshot(snapshot)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.wallet = wallet
	s.mtx.Unlock()

	s.subscribeWallet()
	return nil
}

// InitWallet creates a brand new wallet with a freshly generated seed and
// persists its first snapshot. It is rejected when a wallet with accounts is
// already loaded.
func (s *walletService) InitWallet(
	ctx context.Context, entropySize int, passphrase string,
) error {
	s.mtx.Lock()
	if s.wallet != nil && len(s.wallet.Accounts()) > 0 {
		s.mtx.Unlock()
		return errors.New("wallet is already initialized")
	}
	wallet, err := domain.NewWallet(domain.NewWalletOpts{
		EntropySize: entropySize,
		Passphrase:  passphrase,
	})
	if err != nil {
		s.mtx.Unlock()
		return err
	}
	s.wallet = wallet
	s.mtx.Unlock()

	s.subscribeWallet()
	return s.syncer.Sync(ctx)
}

func (s *walletService) CreateAccount(
	ctx context.Context, label, secondPassword string,
) (domain.Account, error) {
	s.mtx.Lock()
	if s.wallet == nil {
		s.mtx.Unlock()
		return domain.Account{}, ErrWalletNotLoaded
	}
	var ciphers *hdkey.CipherPair
	if len(secondPassword) > 0 {
		pair := hdkey.NewCipherPair(secondPassword)
		ciphers = &pair
	}
	account, err := s.wallet.CreateAccount(label, ciphers)
	s.mtx.Unlock()
	if err != nil {
		return domain.Account{}, err
	}

	if s.socketSvc != nil {
		s.socketSvc.SubscribeToAccount(account.Address())
	}
	if err := s.syncer.Sync(ctx); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *walletService) SetDefaultAccountIndex(
	ctx context.Context, accountIndex int,
) error {
	s.mtx.Lock()
	if s.wallet == nil {
		s.mtx.Unlock()
		return ErrWalletNotLoaded
	}
	changed, err := s.wallet.SetDefaultAccountIndex(accountIndex)
	s.mtx.Unlock()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.syncer.Sync(ctx)
}

func (s *walletService) SetAccountLabel(
	ctx context.Context, accountIndex int, label string,
) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		return w.SetAccountLabel(accountIndex, label)
	})
}

func (s *walletService) ArchiveAccount(
	ctx context.Context, accountIndex int,
) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		return w.ArchiveAccount(accountIndex)
	})
}

func (s *walletService) UnarchiveAccount(
	ctx context.Context, accountIndex int,
) error {
	s.mtx.Lock()
	if s.wallet == nil {
		s.mtx.Unlock()
		return ErrWalletNotLoaded
	}
	err := s.wallet.UnarchiveAccount(accountIndex)
	var address string
	if err == nil {
		account, _ := s.wallet.Account(accountIndex)
		address = account.Address()
	}
	s.mtx.Unlock()
	if err != nil {
		return err
	}

	// the address may have been skipped at load time while archived
	if s.socketSvc != nil {
		s.socketSvc.SubscribeToAccount(address)
	}
	return s.syncer.Sync(ctx)
}

func (s *walletService) SetTxNote(
	ctx context.Context, txHash, note string,
) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		w.SetTxNote(txHash, note)
		return nil
	})
}

func (s *walletService) GetTxNote(txHash string) (string, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return "", false
	}
	return s.wallet.GetTxNote(txHash)
}

func (s *walletService) SetHasSeen(ctx context.Context) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		w.SetHasSeen(true)
		return nil
	})
}

// EnableSecondPassword stages the encryption of every secret field, commits
// it and persists the new snapshot.
func (s *walletService) EnableSecondPassword(
	ctx context.Context, secondPassword string,
) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		if err := w.Encrypt(
			hdkey.NewCipher(secondPassword, hdkey.CipherModeEncrypt),
		); err != nil {
			return err
		}
		w.Persist()
		return nil
	})
}

// DisableSecondPassword is the symmetric counterpart of EnableSecondPassword.
func (s *walletService) DisableSecondPassword(
	ctx context.Context, secondPassword string,
) error {
	return s.mutate(ctx, func(w *domain.Wallet) error {
		if err := w.Decrypt(
			hdkey.NewCipher(secondPassword, hdkey.CipherModeDecrypt),
		); err != nil {
			return err
		}
		w.Persist()
		return nil
	})
}

func (s *walletService) Accounts() []domain.Account {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return nil
	}
	return s.wallet.Accounts()
}

func (s *walletService) ActiveAccounts() []domain.Account {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return nil
	}
	return s.wallet.ActiveAccounts()
}

func (s *walletService) DefaultAccount() (domain.Account, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return domain.Account{}, ErrWalletNotLoaded
	}
	return s.wallet.DefaultAccount()
}

func (s *walletService) Txs() []domain.WalletTx {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return nil
	}
	return s.wallet.Txs()
}

func (s *walletService) GetApproximateBalance(
	accountIndex int,
) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return "", ErrWalletNotLoaded
	}
	return s.wallet.GetApproximateBalance(accountIndex)
}

func (s *walletService) TotalApproximateBalance() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.wallet == nil {
		return ethmath.WeiToEtherString(decimal.Zero)
	}

	amounts := make([]decimal.Decimal, 0, len(s.wallet.Accounts())+1)
	for i, account := range s.wallet.Accounts() {
		if account.IsArchived() {
			continue
		}
		if balance, err := s.wallet.Balance(i); err == nil {
			amounts = append(amounts, balance.Div(ethmath.WeiPerEther))
		}
	}
	amounts = append(amounts, s.wallet.LegacyBalance().Div(ethmath.WeiPerEther))
	return ethmath.EtherSum(amounts...)
}

// RefreshWalletState reloads balances, transaction lists and the latest
// block height from the explorer for every known address, legacy included.
func (s *walletService) RefreshWalletState(ctx context.Context) error {
	s.mtx.RLock()
	if s.wallet == nil {
		s.mtx.RUnlock()
		return ErrWalletNotLoaded
	}
	accounts := s.wallet.Accounts()
	legacy, hasLegacy := s.wallet.LegacyAccount()
	s.mtx.RUnlock()

	activeIdxs := make([]int, 0, len(accounts))
	addresses := make([]string, 0, len(accounts)+1)
	for i, account := range accounts {
		if account.IsArchived() {
			continue
		}
		activeIdxs = append(activeIdxs, i)
		addresses = append(addresses, account.Address())
	}
	if hasLegacy {
		addresses = append(addresses, legacy.Address())
	}
	if len(addresses) <= 0 {
		return nil
	}

	accountsData, err := s.explorerSvc.GetAccountsData(addresses)
	if err != nil {
		return err
	}
	accountsTxs, err := s.explorerSvc.GetAccountsTransactions(addresses)
	if err != nil {
		return err
	}
	blockHeight, err := s.explorerSvc.GetLatestBlock()
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, i := range activeIdxs {
		address := accounts[i].Address()
		if data, ok := accountsData[address]; ok {
			// nolint
			s.wallet.SetAccountBalance(i, data.Balance)
		}
		// nolint
		s.wallet.SetAccountTxs(i, walletTxs(accountsTxs[address]))
	}
	if hasLegacy {
		if data, ok := accountsData[legacy.Address()]; ok {
			s.wallet.SetLegacyBalance(data.Balance)
		}
		s.wallet.SetLegacyTxs(walletTxs(accountsTxs[legacy.Address()]))
	}
	s.wallet.SetLatestBlock(blockHeight)
	return nil
}

// SendPaymentOpts is the struct given to SendPayment method
type SendPaymentOpts struct {
	AccountIndex   int
	To             string
	AmountWei      decimal.Decimal
	GasPrice       *big.Int
	GasLimit       uint64
	SecondPassword string
}

// SendPayment builds, signs and broadcasts a payment from the given account.
// The signing key is re-derived and verified against the account's recorded
// address before any signature is produced.
func (s *walletService) SendPayment(
	ctx context.Context, opts SendPaymentOpts,
) (string, error) {
	s.mtx.RLock()
	if s.wallet == nil {
		s.mtx.RUnlock()
		return "", ErrWalletNotLoaded
	}
	account, err := s.wallet.Account(opts.AccountIndex)
	s.mtx.RUnlock()
	if err != nil {
		return "", err
	}

	accountsData, err := s.explorerSvc.GetAccountsData(
		[]string{account.Address()},
	)
	if err != nil {
		return "", err
	}
	data := accountsData[account.Address()]

	s.mtx.RLock()
	privateKey, err := s.wallet.GetPrivateKeyForAccount(
		opts.AccountIndex, decryptCipher(opts.SecondPassword),
	)
	s.mtx.RUnlock()
	if err != nil {
		return "", err
	}

	pay := payment.NewPayment(payment.NewPaymentOpts{
		From:        common.HexToAddress(account.Address()),
		BalanceWei:  data.Balance,
		Nonce:       data.Nonce,
		ChainID:     s.chainID,
		Broadcaster: s.explorerSvc,
	})
	pay.SetTo(common.HexToAddress(opts.To))
	pay.SetAmount(opts.AmountWei)
	pay.SetGasPrice(s.gasPriceForPayment(opts.GasPrice))
	pay.SetGasLimit(s.gasLimitForDestination(opts.To, opts.GasLimit))

	if err := pay.Sign(privateKey); err != nil {
		return "", err
	}
	txHash, err := pay.Publish()
	if err != nil {
		return "", err
	}

	s.mtx.Lock()
	s.wallet.SetLastTx(txHash)
	s.mtx.Unlock()
	if err := s.syncer.Sync(ctx); err != nil {
		log.WithError(err).Warn("wallet: failed to sync after payment")
	}
	return txHash, nil
}

// Close tears down the live-update subscription.
func (s *walletService) Close() {
	if s.socketSvc != nil {
		s.socketSvc.Close()
	}
}

func (s *walletService) mutate(
	ctx context.Context, fn func(w *domain.Wallet) error,
) error {
	s.mtx.Lock()
	if s.wallet == nil {
		s.mtx.Unlock()
		return ErrWalletNotLoaded
	}
	err := fn(s.wallet)
	s.mtx.Unlock()
	if err != nil {
		return err
	}
	return s.syncer.Sync(ctx)
}

func (s *walletService) takeSnapshot() *domain.Snapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.wallet.Snapshot()
}

func (s *walletService) subscribeWallet() {
	if s.socketSvc == nil {
		return
	}

	s.mtx.RLock()
	accounts := s.wallet.ActiveAccounts()
	legacy, hasLegacy := s.wallet.LegacyAccount()
	s.mtx.RUnlock()

	s.socketSvc.SubscribeToBlocks()
	for _, account := range accounts {
		s.socketSvc.SubscribeToAccount(account.Address())
	}
	if hasLegacy {
		s.socketSvc.SubscribeToAccount(legacy.Address())
	}
}

// gasPriceForPayment falls back to the fee suggested by the explorer, then
// to the configured default.
func (s *walletService) gasPriceForPayment(gasPrice *big.Int) *big.Int {
	if gasPrice != nil && gasPrice.Sign() > 0 {
		return gasPrice
	}
	if fees, err := s.explorerSvc.GetFees(); err == nil &&
		fees.GasPrice.Sign() > 0 {
		return fees.GasPrice.BigInt()
	}
	return s.gasPrice
}

// gasLimitForDestination raises the default gas limit when the destination
// hosts contract code, since a plain transfer limit would revert there.
func (s *walletService) gasLimitForDestination(
	to string, gasLimit uint64,
) uint64 {
	if gasLimit > 0 {
		return gasLimit
	}
	if isContract, err := s.explorerSvc.IsContractAddress(to); err == nil &&
		isContract {
		return contractGasLimit
	}
	return s.gasLimit
}

func (s *walletService) gasPriceOrDefault(gasPrice *big.Int) *big.Int {
	if gasPrice == nil || gasPrice.Sign() <= 0 {
		return s.gasPrice
	}
	return gasPrice
}

func (s *walletService) gasLimitOrDefault(gasLimit uint64) uint64 {
	if gasLimit == 0 {
		return s.gasLimit
	}
	return gasLimit
}

func decryptCipher(secondPassword string) hdkey.Cipher {
	if len(secondPassword) <= 0 {
		return nil
	}
	return hdkey.NewCipher(secondPassword, hdkey.CipherModeDecrypt)
}

func walletTxs(txs []explorer.Transaction) []domain.WalletTx {
	list := make([]domain.WalletTx, 0, len(txs))
	for _, tx := range txs {
		list = append(list, domain.WalletTx{
			Hash:        tx.Hash,
			From:        tx.From,
			To:          tx.To,
			Value:       tx.Value,
			BlockNumber: tx.BlockNumber,
			Timestamp:   tx.Timestamp,
		})
	}
	return list
}
