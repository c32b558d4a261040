// Package wallet manages the signing identities of the ledger. A wallet is
// a secp256k1 private key and is known by the address derived from it.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotFound is returned when no wallet exists for an address.
var ErrNotFound = errors.New("wallet not found")

// BucketName is the storage bucket wallets are kept in.
const BucketName = "wallets"

// Wallet represents a signing identity.
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
}

// New generates a wallet with a fresh private key.
func New() (Wallet, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generating key: %w", err)
	}

	return Wallet{PrivateKey: pk}, nil
}

// PublicKey returns the compressed form of the wallet's public key.
func (w Wallet) PublicKey() []byte {
	return signature.PublicKeyBytes(w.PrivateKey.PublicKey)
}

// PublicKeyHash returns the hash outputs are locked with.
func (w Wallet) PublicKeyHash() []byte {
	return address.HashPublicKey(w.PublicKey())
}

// Address returns the encoded address of the wallet.
func (w Wallet) Address(params address.Params) string {
	return params.FromPublicKey(w.PublicKey())
}

// =============================================================================

// Store keeps wallets in a storage bucket keyed by address.
type Store struct {
	bucket storage.Bucket
	params address.Params
}

// NewStore constructs a wallet store on top of the wallets bucket.
func NewStore(store storage.Store, params address.Params) (*Store, error) {
	bucket, err := store.Bucket(BucketName)
	if err != nil {
		return nil, fmt.Errorf("opening wallets: %w", err)
	}

	return &Store{bucket: bucket, params: params}, nil
}

// Create generates a new wallet, persists it and returns its address.
func (s *Store) Create() (string, error) {
	w, err := New()
	if err != nil {
		return "", err
	}

	return s.Add(w)
}

// Add persists the wallet and returns its address.
func (s *Store) Add(w Wallet) (string, error) {
	addr := w.Address(s.params)
	if err := s.bucket.Put([]byte(addr), crypto.FromECDSA(w.PrivateKey)); err != nil {
		return "", fmt.Errorf("storing wallet %s: %w", addr, err)
	}

	if err := s.bucket.Flush(); err != nil {
		return "", fmt.Errorf("flushing wallets: %w", err)
	}

	return addr, nil
}

// Get returns the wallet for the address.
func (s *Store) Get(addr string) (Wallet, error) {
	data, err := s.bucket.Get([]byte(addr))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Wallet{}, fmt.Errorf("%w: %s", ErrNotFound, addr)
		}
		return Wallet{}, err
	}

	pk, err := crypto.ToECDSA(data)
	if err != nil {
		return Wallet{}, fmt.Errorf("decoding wallet %s: %w", addr, err)
	}

	return Wallet{PrivateKey: pk}, nil
}

// Addresses returns the address of every stored wallet in sorted order.
func (s *Store) Addresses() ([]string, error) {
	var addrs []string
	err := s.bucket.ForEach(func(k, _ []byte) error {
		addrs = append(addrs, string(k))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(addrs)
	return addrs, nil
}

// Import loads a hex encoded key file written by Export or the go-ethereum
// tooling and stores it.
func (s *Store) Import(path string) (string, error) {
	pk, err := crypto.LoadECDSA(path)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}

	return s.Add(Wallet{PrivateKey: pk})
}

// Export writes the wallet for the address as a key file into dir named
// <name>.ecdsa and returns the file path.
func (s *Store) Export(addr string, dir string, name string) (string, error) {
	w, err := s.Get(addr)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".ecdsa")
	if err := crypto.SaveECDSA(path, w.PrivateKey); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}

	return path, nil
}
