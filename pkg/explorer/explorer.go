package explorer

import "github.com/shopspring/decimal"

// AccountData is the balance/nonce pair tracked for one address.
type AccountData struct {
	Balance decimal.Decimal `json:"balance"`
	Nonce   uint64          `json:"nonce"`
}

// Transaction is one observed transaction of an address.
type Transaction struct {
	Hash        string          `json:"hash"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Value       decimal.Decimal `json:"value"`
	BlockNumber uint64          `json:"blockNumber"`
	Timestamp   int64           `json:"timeStamp"`
}

// Confirmed returns whether the transaction has been included in a block.
func (t Transaction) Confirmed() bool {
	return t.BlockNumber > 0
}

// Fees holds the network fee defaults suggested by the remote API: gas price
// in wei, gas limit in gas units.
type Fees struct {
	GasPrice decimal.Decimal `json:"regular"`
	GasLimit uint64          `json:"limit"`
}

// Service is the representation of the remote index the wallet refreshes its
// observable state from and broadcasts signed payments through. Lookups are
// address-batched; a non-200 response carries a JSON error body that is
// surfaced as the failure.
type Service interface {
	// GetAccountsData fetches balance and nonce for the given address batch.
	GetAccountsData(addresses []string) (map[string]AccountData, error)
	// GetAccountsTransactions fetches the tx list of the given address batch.
	GetAccountsTransactions(addresses []string) (map[string][]Transaction, error)
	// GetLatestBlock returns the current best block number.
	GetLatestBlock() (uint64, error)
	// IsContractAddress returns whether the address hosts contract code.
	IsContractAddress(address string) (bool, error)
	// GetFees returns the suggested network fee defaults.
	GetFees() (*Fees, error)
	// BroadcastTransaction pushes a raw signed tx in hex format and returns
	// its hash.
	BroadcastTransaction(txHex string) (string, error)
}
