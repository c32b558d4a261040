// Package database holds the ledger data model: transactions, blocks and the
// canonical encoding hashed by the proof of work, plus the form blocks take
// when written to storage.
package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// ErrCorruptBlock is returned when a stored block can't be decoded.
var ErrCorruptBlock = errors.New("corrupt block")

// =============================================================================

// BlockData represents what is written to storage.
type BlockData struct {
	Hash      digest.Hash `json:"hash"`
	PrevHash  digest.Hash `json:"prev_hash"`
	TimeStamp uint64      `json:"timestamp"`
	Nonce     uint64      `json:"nonce"`
	Trans     []Tx        `json:"trans"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:      block.Hash,
		PrevHash:  block.PrevHash,
		TimeStamp: block.TimeStamp,
		Nonce:     block.Nonce,
		Trans:     block.Trans,
	}
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) Block {
	return Block{
		TimeStamp: blockData.TimeStamp,
		PrevHash:  blockData.PrevHash,
		Trans:     blockData.Trans,
		Nonce:     blockData.Nonce,
		Hash:      blockData.Hash,
	}
}

// Marshal encodes the block for storage.
func Marshal(block Block) ([]byte, error) {
	data, err := json.Marshal(NewBlockData(block))
	if err != nil {
		return nil, fmt.Errorf("marshal block[%s]: %w", block.Hash, err)
	}

	return data, nil
}

// Unmarshal decodes a stored block.
func Unmarshal(data []byte) (Block, error) {
	var blockData BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return Block{}, fmt.Errorf("%w: %s", ErrCorruptBlock, err)
	}

	return ToBlock(blockData), nil
}
