package hdkey

import (
	"crypto/ecdsa"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AccountNode is the derivation result for one account index. It wraps the
// extended key of the account-level node and exposes it in the forms the
// wallet needs: base58 extended keys, the raw ECDSA key pair and the
// a ethereum address of the public key.
type AccountNode struct {
	node *hdkeychain.ExtendedKey
}

// DeriveAccountNodeOpts is the struct given to DeriveAccountNode method
type DeriveAccountNodeOpts struct {
	SeedHex      string
	Passphrase   string
	AccountIndex uint32
}

func (o DeriveAccountNodeOpts) validate() error {
	if len(o.SeedHex) <= 0 {
		return ErrNullSeedHex
	}
	if o.AccountIndex >= hdkeychain.HardenedKeyStart {
		return ErrOutOfRangeAccountIndex
	}
	return nil
}

// DeriveAccountNode computes the standard account node at
// m/44'/60'/0'/0/index. The master key is generated from the BIP39 seed of
// the entropy/passphrase pair, hardened levels are applied internally so
// callers only ever pass the plain account index.
func DeriveAccountNode(opts DeriveAccountNodeOpts) (*AccountNode, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed, err := seedFromEntropyHex(opts.SeedHex, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	return deriveNodeFromSeed(seed, opts.AccountIndex)
}

// DeriveLegacyAccountNodeOpts is the struct given to DeriveLegacyAccountNode method
type DeriveLegacyAccountNodeOpts struct {
	SeedHex      string
	AccountIndex uint32
}

func (o DeriveLegacyAccountNodeOpts) validate() error {
	if len(o.SeedHex) <= 0 {
		return ErrNullSeedHex
	}
	if o.AccountIndex >= hdkeychain.HardenedKeyStart {
		return ErrOutOfRangeAccountIndex
	}
	return nil
}

// DeriveLegacyAccountNode computes the account node the way pre-HD wallets
// did: the raw seed hex bytes are used directly as the master seed, without
// the BIP39 mnemonic stretching of the standard mode. Only meant for
// migrating legacy single-account wallets.
func DeriveLegacyAccountNode(opts DeriveLegacyAccountNodeOpts) (*AccountNode, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed, err := entropyFromHex(opts.SeedHex)
	if err != nil {
		return nil, err
	}
	return deriveNodeFromSeed(seed, opts.AccountIndex)
}

// AccountNodeFromExtendedKey rebuilds an account node from its base58
// extended key encoding, private or neutered.
func AccountNodeFromExtendedKey(extendedKey string) (*AccountNode, error) {
	if len(extendedKey) <= 0 {
		return nil, ErrNullExtendedKey
	}
	node, err := hdkeychain.NewKeyFromString(extendedKey)
	if err != nil {
		return nil, err
	}
	return &AccountNode{node}, nil
}

// ExtendedKey returns the base58 encoding of the node, an xprv when the node
// was derived with private material
func (n *AccountNode) ExtendedKey() string {
	return n.node.String()
}

// ExtendedPublicKey returns the base58 xpub of the neutered node
func (n *AccountNode) ExtendedPublicKey() (string, error) {
	xpub, err := n.node.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

// PrivateKey returns the raw ECDSA private key of the node
func (n *AccountNode) PrivateKey() (*ecdsa.PrivateKey, error) {
	if !n.node.IsPrivate() {
		return nil, ErrNeuteredAccountNode
	}
	privateKey, err := n.node.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return privateKey.ToECDSA(), nil
}

// Address returns the ethereum address of the node's public key
func (n *AccountNode) Address() (common.Address, error) {
	publicKey, err := n.node.ECPubKey()
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*publicKey.ToECDSA()), nil
}

func deriveNodeFromSeed(seed []byte, accountIndex uint32) (*AccountNode, error) {
	hdNode, err := newMasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, step := range EthereumBaseDerivationPath {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, err
		}
	}
	hdNode, err = hdNode.Derive(accountIndex)
	if err != nil {
		return nil, err
	}
	return &AccountNode{hdNode}, nil
}
