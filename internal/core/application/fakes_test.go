package application_test

import (
	"context"
	"sync"

	"github.com/kestrel-wallet/kestreld/internal/core/domain"
	"github.com/kestrel-wallet/kestreld/pkg/explorer"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mtx         sync.Mutex
	snapshot    *domain.Snapshot
	updateCount int
	updateErr   error
}

func (s *fakeStore) Fetch(_ context.Context) (*domain.Snapshot, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.snapshot, nil
}

func (s *fakeStore) Update(
	_ context.Context, snapshot *domain.Snapshot,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.updateCount++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.snapshot = snapshot
	return nil
}

func (s *fakeStore) updates() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.updateCount
}

func (s *fakeStore) stored() *domain.Snapshot {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.snapshot
}

type fakeExplorer struct {
	mtx         sync.Mutex
	data        map[string]explorer.AccountData
	txs         map[string][]explorer.Transaction
	blockHeight uint64
	broadcasted []string
	dataQueries [][]string
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		data: map[string]explorer.AccountData{},
		txs:  map[string][]explorer.Transaction{},
	}
}

func (e *fakeExplorer) setBalance(address string, balance decimal.Decimal) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.data[address] = explorer.AccountData{Balance: balance}
}

func (e *fakeExplorer) GetAccountsData(
	addresses []string,
) (map[string]explorer.AccountData, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.dataQueries = append(e.dataQueries, addresses)
	data := map[string]explorer.AccountData{}
	for _, addr := range addresses {
		data[addr] = e.data[addr]
	}
	return data, nil
}

func (e *fakeExplorer) queriedAddresses() []string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	addresses := make([]string, 0)
	for _, batch := range e.dataQueries {
		addresses = append(addresses, batch...)
	}
	return addresses
}

func (e *fakeExplorer) GetAccountsTransactions(
	addresses []string,
) (map[string][]explorer.Transaction, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	txs := map[string][]explorer.Transaction{}
	for _, addr := range addresses {
		txs[addr] = e.txs[addr]
	}
	return txs, nil
}

func (e *fakeExplorer) GetLatestBlock() (uint64, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.blockHeight, nil
}

func (e *fakeExplorer) IsContractAddress(_ string) (bool, error) {
	return false, nil
}

func (e *fakeExplorer) GetFees() (*explorer.Fees, error) {
	return &explorer.Fees{
		GasPrice: decimal.New(21, 9),
		GasLimit: 21000,
	}, nil
}

func (e *fakeExplorer) BroadcastTransaction(txHex string) (string, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.broadcasted = append(e.broadcasted, txHex)
	return "0xbroadcasted", nil
}

func (e *fakeExplorer) broadcastedTxs() []string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	txs := make([]string, len(e.broadcasted))
	copy(txs, e.broadcasted)
	return txs
}
