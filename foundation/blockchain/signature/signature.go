// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKey is returned when a private key can't be used for signing.
var ErrInvalidKey = errors.New("invalid private key")

// =============================================================================

// Sign hashes the payload with sha256 and signs the hash with the private key.
// The signature is deterministic (RFC6979) and DER encoded.
func Sign(payload []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	if privateKey == nil || privateKey.D == nil {
		return nil, ErrInvalidKey
	}

	key := secp256k1.PrivKeyFromBytes(crypto.FromECDSA(privateKey))
	defer key.Zero()

	hash := sha256.Sum256(payload)
	sig := dcrecdsa.Sign(key, hash[:])

	return sig.Serialize(), nil
}

// Verify checks the DER signature of the payload against the serialized
// public key. Any parsing failure is reported as an invalid signature.
func Verify(payload []byte, sig []byte, publicKey []byte) bool {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}

	s, err := dcrecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}

	hash := sha256.Sum256(payload)
	return s.Verify(hash[:], pub)
}

// PublicKeyBytes returns the 33 byte compressed form of the public key. This
// is the form used to unlock outputs and derive addresses.
func PublicKeyBytes(publicKey ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(&publicKey)
}
