package payment

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	published []string
	err       error
}

func (f *fakeBroadcaster) BroadcastTransaction(txHex string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, txHex)
	return "0xbeef", nil
}

func newTestPayment(t *testing.T) (*Payment, *ecdsa.PrivateKey, *fakeBroadcaster) {
	privateKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	broadcaster := &fakeBroadcaster{}

	p := NewPayment(NewPaymentOpts{
		From:        ethcrypto.PubkeyToAddress(privateKey.PublicKey),
		BalanceWei:  decimal.RequireFromString("50000000000000000"),
		Nonce:       7,
		ChainID:     big.NewInt(1),
		Broadcaster: broadcaster,
	})
	return p, privateKey, broadcaster
}

func TestSweepAmount(t *testing.T) {
	p, _, _ := newTestPayment(t)
	p.SetGasPrice(big.NewInt(21000000000))
	p.SetGasLimit(21000)
	p.SetSweep()

	amount, err := p.Amount()
	require.NoError(t, err)

	// 0.05 ETH minus 21000 * 21 gwei of fee
	assert.Equal(t, "49559000000000000", amount.String())
}

func TestSweepWithBalanceBelowFee(t *testing.T) {
	p, _, _ := newTestPayment(t)
	p.balance = decimal.RequireFromString("1000")
	p.SetGasPrice(big.NewInt(21000000000))
	p.SetGasLimit(21000)
	p.SetSweep()

	_, err := p.Amount()
	assert.Equal(t, ErrInsufficientFunds, err)
}

func TestSignAndPublish(t *testing.T) {
	p, key, broadcaster := newTestPayment(t)
	p.SetGasPrice(big.NewInt(21000000000))
	p.SetGasLimit(21000)
	p.SetTo(p.from)
	p.SetSweep()

	require.NoError(t, p.Sign(key))

	txHash, err := p.Publish()
	require.NoError(t, err)
	assert.Equal(t, "0xbeef", txHash)
	require.Len(t, broadcaster.published, 1)
	assert.NotEmpty(t, broadcaster.published[0])
}

func TestSignRejectsWrongKey(t *testing.T) {
	p, _, _ := newTestPayment(t)
	p.SetGasPrice(big.NewInt(21000000000))
	p.SetGasLimit(21000)
	p.SetTo(p.from)
	p.SetSweep()

	wrongKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	assert.Equal(t, ErrWrongSigningKey, p.Sign(wrongKey))
}

func TestFailingSign(t *testing.T) {
	tests := []struct {
		name      string
		configure func(p *Payment)
		err       error
	}{
		{
			name:      "missing destination",
			configure: func(p *Payment) { p.SetGasPrice(big.NewInt(1)); p.SetGasLimit(21000) },
			err:       ErrNullDestination,
		},
		{
			name:      "missing gas price",
			configure: func(p *Payment) { p.SetTo(p.from); p.SetGasLimit(21000) },
			err:       ErrNullGasPrice,
		},
		{
			name:      "missing gas limit",
			configure: func(p *Payment) { p.SetTo(p.from); p.SetGasPrice(big.NewInt(1)) },
			err:       ErrNullGasLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, key, _ := newTestPayment(t)
			tt.configure(p)
			assert.Equal(t, tt.err, p.Sign(key))
		})
	}
}

func TestPublishWithoutSigning(t *testing.T) {
	p, _, _ := newTestPayment(t)
	_, err := p.Publish()
	assert.Equal(t, ErrNotSigned, err)
}
