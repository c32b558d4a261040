package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Miner represents the behavior required to solve and check the proof of
// work for a block.
type Miner interface {
	Mine(ctx context.Context, header []byte) (pow.Solution, error)
	Validate(header []byte, nonce uint64, hash digest.Hash) error
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	TimeStamp uint64      // Time the block was mined, seconds since the epoch.
	PrevHash  digest.Hash // Hash of the previous block, zero for genesis.
	Trans     []Tx        // Transactions in the block, coinbase first.
	Nonce     uint64      // Value identified to solve the hash solution.
	Hash      digest.Hash // Proof of work hash, the identity of the block.
}

// NewBlock constructs a block on top of the previous hash and performs the
// work to find a nonce that solves the puzzle. A block is only returned with
// a valid solution.
func NewBlock(ctx context.Context, miner Miner, prevHash digest.Hash, trans []Tx) (Block, error) {
	nb := Block{
		TimeStamp: uint64(time.Now().UTC().Unix()),
		PrevHash:  prevHash,
		Trans:     trans,
	}

	sol, err := miner.Mine(ctx, nb.HeaderBytes())
	if err != nil {
		return Block{}, fmt.Errorf("mining block: %w", err)
	}

	nb.Nonce = sol.Nonce
	nb.Hash = sol.Hash

	return nb, nil
}

// HeaderBytes returns the bytes the proof of work hashes, without the nonce.
// Every mined block depends on this layout, so it must not change.
func (b Block) HeaderBytes() []byte {
	trans := EncodeTxs(b.Trans)
	prev := b.PrevHash.MinimalBytes()
	ts := minimalUint64(b.TimeStamp)

	header := make([]byte, 0, len(prev)+len(trans)+len(ts))
	header = append(header, prev...)
	header = append(header, trans...)
	header = append(header, ts...)

	return header
}

// HeaderHash returns the hash of the header bytes without the nonce.
func (b Block) HeaderHash() digest.Hash {
	return digest.Sum(b.HeaderBytes())
}

// IsGenesis reports whether this is the first block of the chain.
func (b Block) IsGenesis() bool {
	return b.PrevHash.IsZero()
}

// Validate re-hashes the block with its nonce and checks the stored hash.
// Any change to the transactions, previous hash, timestamp or nonce after
// mining fails this check.
func (b Block) Validate(miner Miner) error {
	if err := miner.Validate(b.HeaderBytes(), b.Nonce, b.Hash); err != nil {
		return fmt.Errorf("block[%s]: %w", b.Hash, err)
	}

	return nil
}

// Key returns the storage key of the block.
func (b Block) Key() []byte {
	k := b.Hash.Bytes32()
	return k[:]
}
