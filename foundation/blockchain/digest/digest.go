// Package digest provides the 256-bit hash value used to identify blocks and
// transactions and to compare proof of work solutions against a target.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Size is the number of bytes in a hash.
const Size = 32

// ErrInvalidHash is returned when a value can't be converted into a hash.
var ErrInvalidHash = errors.New("invalid hash")

// Hash represents a 256-bit unsigned integer. The zero value is the zero hash.
// Hash values are comparable and can be used as map keys.
type Hash struct {
	v uint256.Int
}

// Zero represents a hash of zeros.
var Zero Hash

// Sum hashes the data with sha256 and returns the digest as an integer.
func Sum(data []byte) Hash {
	sum := sha256.Sum256(data)
	return FromBytes(sum[:])
}

// FromBytes interprets the big endian bytes as an integer. Only the last 32
// bytes are used when more are provided.
func FromBytes(b []byte) Hash {
	if len(b) > Size {
		b = b[len(b)-Size:]
	}

	var h Hash
	h.v.SetBytes(b)
	return h
}

// FromHexDigest converts a base-16 digest string, with or without a 0x
// prefix, into a hash.
func FromHexDigest(s string) (Hash, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 2*Size {
		return Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}

	if len(s)%2 != 0 {
		s = "0" + s
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s", ErrInvalidHash, err)
	}

	return FromBytes(b), nil
}

// FromUint256 constructs a hash from the integer value.
func FromUint256(v *uint256.Int) Hash {
	return Hash{v: *v}
}

// Uint256 returns a copy of the hash as an integer.
func (h Hash) Uint256() *uint256.Int {
	return h.v.Clone()
}

// IsZero reports whether the hash is zero.
func (h Hash) IsZero() bool {
	return h.v.IsZero()
}

// Less reports whether h is numerically below x.
func (h Hash) Less(x Hash) bool {
	return h.v.Lt(&x.v)
}

// Cmp compares h and x and returns -1, 0 or +1.
func (h Hash) Cmp(x Hash) int {
	return h.v.Cmp(&x.v)
}

// Bytes32 returns the fixed width big endian form of the hash. This is the
// key blocks are stored under.
func (h Hash) Bytes32() [Size]byte {
	return h.v.Bytes32()
}

// MinimalBytes returns the big endian form of the hash without leading zero
// bytes. The zero hash is represented by a single zero byte.
func (h Hash) MinimalBytes() []byte {
	if h.v.IsZero() {
		return []byte{0}
	}
	return h.v.Bytes()
}

// String returns the hash as a 0x prefixed, zero padded hex string.
func (h Hash) String() string {
	b := h.v.Bytes32()
	return hexutil.Encode(b[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(text []byte) error {
	v, err := FromHexDigest(string(text))
	if err != nil {
		return err
	}

	*h = v
	return nil
}
