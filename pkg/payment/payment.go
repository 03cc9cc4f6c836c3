package payment

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/kestrel-wallet/kestreld/pkg/ethmath"
)

var (
	// ErrNullDestination ...
	ErrNullDestination = errors.New("payment destination must be set before signing")
	// ErrNullGasPrice ...
	ErrNullGasPrice = errors.New("gas price must be set before signing")
	// ErrNullGasLimit ...
	ErrNullGasLimit = errors.New("gas limit must be set before signing")
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = errors.New("available balance does not cover the network fee")
	// ErrWrongSigningKey ...
	ErrWrongSigningKey = errors.New("signing key does not belong to the source address")
	// ErrNotSigned ...
	ErrNotSigned = errors.New("payment must be signed before publishing")
)

// Broadcaster publishes a raw signed transaction in hex format.
type Broadcaster interface {
	BroadcastTransaction(txHex string) (string, error)
}

// Payment builds one outgoing transaction from a source account. The zero
// value is unusable; create it with NewPayment, then configure fee and
// destination, Sign and Publish, in that order.
type Payment struct {
	from        common.Address
	balance     decimal.Decimal
	nonce       uint64
	chainID     *big.Int
	broadcaster Broadcaster

	to       common.Address
	toSet    bool
	amount   decimal.Decimal
	sweep    bool
	gasPrice *big.Int
	gasLimit uint64

	signed *types.Transaction
}

// NewPaymentOpts is the struct given to NewPayment method
type NewPaymentOpts struct {
	From        common.Address
	BalanceWei  decimal.Decimal
	Nonce       uint64
	ChainID     *big.Int
	Broadcaster Broadcaster
}

// NewPayment returns a payment spending from the given source account state.
func NewPayment(opts NewPaymentOpts) *Payment {
	return &Payment{
		from:        opts.From,
		balance:     opts.BalanceWei,
		nonce:       opts.Nonce,
		chainID:     opts.ChainID,
		broadcaster: opts.Broadcaster,
	}
}

// SetGasPrice sets the gas price in wei.
func (p *Payment) SetGasPrice(gasPrice *big.Int) {
	p.gasPrice = gasPrice
}

// SetGasLimit sets the gas limit in gas units.
func (p *Payment) SetGasLimit(gasLimit uint64) {
	p.gasLimit = gasLimit
}

// SetTo sets the destination address.
func (p *Payment) SetTo(to common.Address) {
	p.to = to
	p.toSet = true
}

// SetAmount sets an explicit amount in wei.
func (p *Payment) SetAmount(wei decimal.Decimal) {
	p.amount = wei
	p.sweep = false
}

// SetSweep marks the payment as a full-balance sweep: the amount becomes the
// whole available balance minus the network fee.
func (p *Payment) SetSweep() {
	p.sweep = true
}

// Amount returns the wei amount the payment will transfer once signed.
func (p *Payment) Amount() (decimal.Decimal, error) {
	if !p.sweep {
		return p.amount, nil
	}
	if p.gasPrice == nil {
		return decimal.Zero, ErrNullGasPrice
	}
	if p.gasLimit == 0 {
		return decimal.Zero, ErrNullGasLimit
	}
	amount := p.balance.Sub(ethmath.FeeWei(p.gasPrice, p.gasLimit))
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInsufficientFunds
	}
	return amount, nil
}

// Sign validates the configuration, checks the key against the source
// address and produces the signed transaction. Nothing is broadcast.
func (p *Payment) Sign(privateKey *ecdsa.PrivateKey) error {
	if !p.toSet {
		return ErrNullDestination
	}
	if p.gasPrice == nil {
		return ErrNullGasPrice
	}
	if p.gasLimit == 0 {
		return ErrNullGasLimit
	}
	if ethcrypto.PubkeyToAddress(privateKey.PublicKey) != p.from {
		return ErrWrongSigningKey
	}

	amount, err := p.Amount()
	if err != nil {
		return err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    p.nonce,
		To:       &p.to,
		Value:    amount.BigInt(),
		Gas:      p.gasLimit,
		GasPrice: p.gasPrice,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(p.chainID), privateKey)
	if err != nil {
		return err
	}

	p.signed = signed
	return nil
}

// Publish broadcasts the signed transaction and returns its hash.
func (p *Payment) Publish() (string, error) {
	if p.signed == nil {
		return "", ErrNotSigned
	}
	raw, err := p.signed.MarshalBinary()
	if err != nil {
		return "", err
	}
	return p.broadcaster.BroadcastTransaction(hex.EncodeToString(raw))
}
