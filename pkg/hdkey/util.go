package hdkey

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/vulpemventures/go-bip39"
)

// NewSeedHexOpts is the struct given to NewSeedHex method
type NewSeedHexOpts struct {
	EntropySize int
}

func (o NewSeedHexOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewSeedHex returns fresh BIP39 entropy in hex format, the secret every
// deterministic key of the wallet descends from
func NewSeedHex(opts NewSeedHexOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(entropy), nil
}

// SeedHexFromMnemonic converts a BIP39 mnemonic back to its entropy in hex
// format
func SeedHexFromMnemonic(mnemonic string) (string, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(entropy), nil
}

// MnemonicFromSeedHex returns the BIP39 mnemonic of the given entropy
func MnemonicFromSeedHex(seedHex string) (string, error) {
	entropy, err := entropyFromHex(seedHex)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func entropyFromHex(seedHex string) ([]byte, error) {
	entropy, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, ErrInvalidSeedHex
	}
	return entropy, nil
}

func seedFromEntropyHex(seedHex, passphrase string) ([]byte, error) {
	mnemonic, err := MnemonicFromSeedHex(seedHex)
	if err != nil {
		return nil, err
	}
	return bip39.NewSeed(mnemonic, passphrase), nil
}

func newMasterKey(seed []byte) (*hdkeychain.ExtendedKey, error) {
	return hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
}
