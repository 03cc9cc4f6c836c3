package ethmath

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// WeiPerEther ...
var WeiPerEther = decimal.New(1, 18)

// ApproximatePrecision is the number of fractional digits kept when
// rendering ether amounts for display and cross-account sums.
const ApproximatePrecision = 8

// WeiToEtherString renders a wei amount as a fixed-precision ether string.
// All balance arithmetic goes through decimals so repeated sums cannot
// accumulate floating point drift.
func WeiToEtherString(wei decimal.Decimal) string {
	return wei.Div(WeiPerEther).StringFixed(ApproximatePrecision)
}

// EtherSum adds ether-denominated decimal amounts and renders the total with
// the display precision.
func EtherSum(amounts ...decimal.Decimal) string {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total.StringFixed(ApproximatePrecision)
}

// FeeWei returns gasPrice*gasLimit as a wei decimal.
func FeeWei(gasPrice *big.Int, gasLimit uint64) decimal.Decimal {
	price := decimal.NewFromBigInt(gasPrice, 0)
	limit := decimal.NewFromBigInt(new(big.Int).SetUint64(gasLimit), 0)
	return price.Mul(limit)
}

// GweiToWei converts a gwei amount to wei.
func GweiToWei(gwei uint64) *big.Int {
	return new(big.Int).Mul(
		new(big.Int).SetUint64(gwei),
		big.NewInt(1e9),
	)
}
