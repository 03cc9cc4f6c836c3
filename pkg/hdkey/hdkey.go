package hdkey

import "errors"

var (
	// ErrNullSeedHex ...
	ErrNullSeedHex = errors.New("seed hex must not be null")
	// ErrInvalidSeedHex ...
	ErrInvalidSeedHex = errors.New("seed hex must be a valid hex encoded entropy")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrNullExtendedKey ...
	ErrNullExtendedKey = errors.New("extended key must not be null")
	// ErrOutOfRangeAccountIndex ...
	ErrOutOfRangeAccountIndex = errors.New(
		"account index must be lower than the hardened key start (2^31)",
	)
	// ErrNeuteredAccountNode ...
	ErrNeuteredAccountNode = errors.New(
		"account node holds a public key only and cannot expose a private key",
	)
	// ErrCipherFailed ...
	ErrCipherFailed = errors.New("cipher returned a null result")
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
)

// Cipher is the capability handed in by the owner of the second password. It
// transforms a secret field and reports failure by returning an error or an
// empty result, both of which abort the whole calling operation.
type Cipher func(text string) (string, error)

// ApplyCipher runs a cipher over a secret field, mapping a null result to
// ErrCipherFailed. A nil cipher is the identity.
func ApplyCipher(cipher Cipher, text string) (string, error) {
	if cipher == nil {
		return text, nil
	}
	transformed, err := cipher(text)
	if err != nil {
		return "", err
	}
	if len(transformed) <= 0 {
		return "", ErrCipherFailed
	}
	return transformed, nil
}
