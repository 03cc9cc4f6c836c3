package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// WalletTx is a transaction as seen by the wallet, optionally annotated with
// a user note.
type WalletTx struct {
	Hash        string
	From        string
	To          string
	Value       decimal.Decimal
	BlockNumber uint64
	Timestamp   int64
	Note        string
}

// Confirmed returns whether the transaction has been included in a block.
func (t WalletTx) Confirmed() bool {
	return t.BlockNumber > 0
}

// MergeTxs deduplicates the given lists by hash, keeping the first occurrence
// of each hash, and sorts the result with unconfirmed transactions first,
// then by descending timestamp.
func MergeTxs(lists ...[]WalletTx) []WalletTx {
	seen := make(map[string]struct{})
	merged := make([]WalletTx, 0)
	for _, list := range lists {
		for _, tx := range list {
			if _, ok := seen[tx.Hash]; ok {
				continue
			}
			seen[tx.Hash] = struct{}{}
			merged = append(merged, tx)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := merged[i], merged[j]
		if ti.Confirmed() != tj.Confirmed() {
			return !ti.Confirmed()
		}
		return ti.Timestamp > tj.Timestamp
	})
	return merged
}
