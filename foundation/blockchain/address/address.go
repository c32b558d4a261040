// Package address derives the public key hash that locks transaction outputs
// and the checksummed base58 address users share to receive value.
package address

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

// HashLength is the size of a public key hash.
const HashLength = ripemd160.Size

// ErrInvalidAddress is returned when an address can't be decoded.
var ErrInvalidAddress = errors.New("invalid address")

// Params holds the address encoding constants.
type Params struct {
	Version        byte
	ChecksumLength int
}

// DefaultParams are the constants used when none are configured.
var DefaultParams = Params{
	Version:        0x00,
	ChecksumLength: 4,
}

// HashPublicKey returns ripemd160(sha256(publicKey)).
func HashPublicKey(publicKey []byte) []byte {
	sum := sha256.Sum256(publicKey)

	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// Encode produces base58(version | publicKeyHash | checksum).
func (p Params) Encode(publicKeyHash []byte) string {
	payload := make([]byte, 0, 1+len(publicKeyHash)+p.ChecksumLength)
	payload = append(payload, p.Version)
	payload = append(payload, publicKeyHash...)
	payload = append(payload, p.checksum(payload)...)

	return base58.Encode(payload)
}

// FromPublicKey returns the address for the serialized public key.
func (p Params) FromPublicKey(publicKey []byte) string {
	return p.Encode(HashPublicKey(publicKey))
}

// Decode validates the address and returns the public key hash it carries.
func (p Params) Decode(addr string) ([]byte, error) {
	payload := base58.Decode(addr)
	if len(payload) != 1+HashLength+p.ChecksumLength {
		return nil, fmt.Errorf("%w: %q: wrong length", ErrInvalidAddress, addr)
	}

	if payload[0] != p.Version {
		return nil, fmt.Errorf("%w: %q: version %#x, exp %#x", ErrInvalidAddress, addr, payload[0], p.Version)
	}

	body := payload[:1+HashLength]
	if !bytes.Equal(payload[1+HashLength:], p.checksum(body)) {
		return nil, fmt.Errorf("%w: %q: checksum mismatch", ErrInvalidAddress, addr)
	}

	return append([]byte{}, body[1:]...), nil
}

// IsValid reports whether the address decodes with these params.
func (p Params) IsValid(addr string) bool {
	_, err := p.Decode(addr)
	return err == nil
}

// checksum returns the first ChecksumLength bytes of sha256(sha256(payload)).
func (p Params) checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	return second[:p.ChecksumLength]
}
