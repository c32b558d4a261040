package state

import (
	"fmt"
	"math/bits"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// UTXO is an output that hasn't been spent yet.
type UTXO struct {
	TxID   digest.Hash     `json:"tx_id"`
	Index  uint64          `json:"index"`
	Output database.Output `json:"output"`
}

// outpoint identifies a single output of a transaction.
type outpoint struct {
	txID  digest.Hash
	index uint64
}

// =============================================================================

// UnspentOutputs returns the outputs locked to the public key hash that no
// transaction in the chain spends. The chain is walked once from the apex.
// Within a block transactions are visited last to first, so an input is
// always recorded before the outputs it could spend are seen.
func (s *State) UnspentOutputs(publicKeyHash []byte) ([]UTXO, error) {
	var utxos []UTXO
	spent := make(map[outpoint]struct{})

	fn := func(block database.Block) bool {
		for i := len(block.Trans) - 1; i >= 0; i-- {
			tx := block.Trans[i]

			for k, out := range tx.Outputs {
				if !out.IsLockedWith(publicKeyHash) {
					continue
				}
				if _, exists := spent[outpoint{tx.ID, uint64(k)}]; exists {
					continue
				}
				utxos = append(utxos, UTXO{TxID: tx.ID, Index: uint64(k), Output: out})
			}

			if tx.IsCoinbase() {
				continue
			}

			for _, in := range tx.Inputs {
				spent[outpoint{in.PrevTxID, in.OutputIndex}] = struct{}{}
			}
		}
		return true
	}

	if err := s.forEach(fn); err != nil {
		return nil, err
	}

	return utxos, nil
}

// Balance returns the sum of the unspent outputs owned by the address.
func (s *State) Balance(addr string) (uint64, error) {
	pkh, err := s.params.Decode(addr)
	if err != nil {
		return 0, err
	}

	utxos, err := s.UnspentOutputs(pkh)
	if err != nil {
		return 0, err
	}

	var balance uint64
	for _, utxo := range utxos {
		var carry uint64
		balance, carry = bits.Add64(balance, utxo.Output.Value, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: balance of %s", ErrValueOverflow, addr)
		}
	}

	return balance, nil
}

// SpendableOutputs collects unspent outputs owned by the public key hash
// until their sum covers amount. The returned sum is below amount when the
// owner can't afford it.
func (s *State) SpendableOutputs(publicKeyHash []byte, amount uint64) (uint64, map[digest.Hash][]uint64, error) {
	utxos, err := s.UnspentOutputs(publicKeyHash)
	if err != nil {
		return 0, nil, err
	}

	var accumulated uint64
	outputs := make(map[digest.Hash][]uint64)

	for _, utxo := range utxos {
		if accumulated >= amount {
			break
		}

		var carry uint64
		accumulated, carry = bits.Add64(accumulated, utxo.Output.Value, 0)
		if carry != 0 {
			return 0, nil, fmt.Errorf("%w: spendable outputs", ErrValueOverflow)
		}
		outputs[utxo.TxID] = append(outputs[utxo.TxID], utxo.Index)
	}

	return accumulated, outputs, nil
}

// FindTransaction returns the transaction with the specified id.
func (s *State) FindTransaction(id digest.Hash) (database.Tx, error) {
	var found *database.Tx

	fn := func(block database.Block) bool {
		for i := range block.Trans {
			if block.Trans[i].ID == id {
				found = &block.Trans[i]
				return false
			}
		}
		return true
	}

	if err := s.forEach(fn); err != nil {
		return database.Tx{}, err
	}

	if found == nil {
		return database.Tx{}, fmt.Errorf("tx[%s]: %w", id, ErrNotFound)
	}

	return *found, nil
}

// findTransactions returns the transactions with the specified ids that
// exist in the chain, along with every output already spent in the chain.
func (s *State) findTransactions(ids map[digest.Hash]struct{}) (map[digest.Hash]database.Tx, map[outpoint]struct{}, error) {
	found := make(map[digest.Hash]database.Tx, len(ids))
	spent := make(map[outpoint]struct{})

	fn := func(block database.Block) bool {
		for _, tx := range block.Trans {
			if _, exists := ids[tx.ID]; exists {
				if _, dup := found[tx.ID]; !dup {
					found[tx.ID] = tx
				}
			}

			if tx.IsCoinbase() {
				continue
			}

			for _, in := range tx.Inputs {
				spent[outpoint{in.PrevTxID, in.OutputIndex}] = struct{}{}
			}
		}
		return true
	}

	if err := s.forEach(fn); err != nil {
		return nil, nil, err
	}

	return found, spent, nil
}

// Blocks returns every block from the apex back to genesis.
func (s *State) Blocks() ([]database.Block, error) {
	var blocks []database.Block

	fn := func(block database.Block) bool {
		blocks = append(blocks, block)
		return true
	}

	if err := s.forEach(fn); err != nil {
		return nil, err
	}

	return blocks, nil
}

// Length returns the number of blocks in the chain, genesis included.
func (s *State) Length() (uint64, error) {
	var length uint64

	fn := func(block database.Block) bool {
		length++
		return true
	}

	if err := s.forEach(fn); err != nil {
		return 0, err
	}

	return length, nil
}
