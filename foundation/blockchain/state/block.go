package state

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Append validates the transactions, mines a block holding them on top of
// the apex and commits it. The chain is unchanged when an error is returned.
// When a beneficiary is configured a coinbase paying it is placed first.
func (s *State) Append(ctx context.Context, trans []database.Tx) (database.Block, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	apex := s.Apex()

	s.evHandler("state: Append: started: prevBlk[%s]: numTrans[%d]", apex, len(trans))
	defer s.evHandler("state: Append: completed")

	if s.beneficiary != "" {
		memo := fmt.Sprintf("Reward to '%s' on top of %s", s.beneficiary, apex)
		coinbase, err := s.NewCoinbase(s.beneficiary, memo)
		if err != nil {
			return database.Block{}, err
		}
		trans = append([]database.Tx{coinbase}, trans...)
	}

	if len(trans) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: Append: validate transactions")

	if err := s.validateTransactions(trans); err != nil {
		s.evHandler("state: Append: REJECTED: %s", err)
		return database.Block{}, err
	}

	s.evHandler("state: Append: MINING: perform POW")

	block, err := database.NewBlock(ctx, s.engine, apex, trans)
	if err != nil {
		return database.Block{}, err
	}

	if err := block.Validate(s.engine); err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: Append: write to disk: blk[%s]", block.Hash)

	if err := s.commit(block); err != nil {
		return database.Block{}, err
	}

	for _, tx := range block.Trans {
		s.evHandler("viewer: block[%s]: %s", block.Hash, tx)
	}

	return block, nil
}

// =============================================================================

// validateTransactions applies the consensus rules to a batch about to be
// mined. Previous transactions must exist in the chain, every signature
// must verify, and no output may be spent twice, whether earlier in the
// chain or inside the batch. Outputs can't create more value than the inputs
// consume. A block holds at most one coinbase, first in the block, paying
// exactly the mining reward. No transaction id may repeat one in the chain.
func (s *State) validateTransactions(trans []database.Tx) error {
	ids := make(map[digest.Hash]struct{})
	for _, tx := range trans {
		ids[tx.ID] = struct{}{}
		if tx.IsCoinbase() {
			continue
		}
		for _, in := range tx.Inputs {
			ids[in.PrevTxID] = struct{}{}
		}
	}

	prevTxs, spent, err := s.findTransactions(ids)
	if err != nil {
		return err
	}

	seen := make(map[digest.Hash]struct{}, len(trans))
	batchSpent := make(map[outpoint]struct{})

	for i, tx := range trans {
		if tx.ID != tx.ContentHash() {
			return fmt.Errorf("%w: tx[%s]: id does not match content", ErrInvalidTx, tx.ID)
		}

		if _, exists := prevTxs[tx.ID]; exists {
			return fmt.Errorf("%w: tx[%s]: already in chain", ErrInvalidTx, tx.ID)
		}

		if _, exists := seen[tx.ID]; exists {
			return fmt.Errorf("%w: tx[%s]: duplicate in block", ErrInvalidTx, tx.ID)
		}
		seen[tx.ID] = struct{}{}

		if len(tx.Outputs) == 0 {
			return fmt.Errorf("%w: tx[%s]: no outputs", ErrInvalidTx, tx.ID)
		}

		if tx.IsCoinbase() {
			if i != 0 {
				return fmt.Errorf("%w: tx[%s]: coinbase at position %d", ErrInvalidTx, tx.ID, i)
			}
			if err := s.validateReward(tx); err != nil {
				return err
			}
			continue
		}

		if len(tx.Inputs) == 0 {
			return fmt.Errorf("%w: tx[%s]: no inputs", ErrInvalidTx, tx.ID)
		}

		ok, err := tx.Verify(prevTxs)
		if err != nil {
			return fmt.Errorf("tx[%s]: %w", tx.ID, err)
		}
		if !ok {
			return fmt.Errorf("%w: tx[%s]", ErrUnverifiedTx, tx.ID)
		}

		var in uint64
		for _, input := range tx.Inputs {
			op := outpoint{input.PrevTxID, input.OutputIndex}

			if _, exists := spent[op]; exists {
				return fmt.Errorf("%w: tx[%s] spends %s:%d", ErrDoubleSpend, tx.ID, op.txID, op.index)
			}
			if _, exists := batchSpent[op]; exists {
				return fmt.Errorf("%w: tx[%s] spends %s:%d twice in block", ErrDoubleSpend, tx.ID, op.txID, op.index)
			}
			batchSpent[op] = struct{}{}

			var carry uint64
			in, carry = bits.Add64(in, prevTxs[op.txID].Outputs[op.index].Value, 0)
			if carry != 0 {
				return fmt.Errorf("%w: tx[%s]: input value overflow", ErrInvalidTx, tx.ID)
			}
		}

		var out uint64
		for _, output := range tx.Outputs {
			var carry uint64
			out, carry = bits.Add64(out, output.Value, 0)
			if carry != 0 {
				return fmt.Errorf("%w: tx[%s]: output value overflow", ErrInvalidTx, tx.ID)
			}
		}

		if out > in {
			return fmt.Errorf("%w: tx[%s]: outputs %d exceed inputs %d", ErrInvalidTx, tx.ID, out, in)
		}
	}

	return nil
}

// validateReward checks the coinbase creates exactly the mining reward.
func (s *State) validateReward(tx database.Tx) error {
	var total uint64
	for _, output := range tx.Outputs {
		var carry uint64
		total, carry = bits.Add64(total, output.Value, 0)
		if carry != 0 {
			return fmt.Errorf("%w: tx[%s]: reward overflow", ErrInvalidTx, tx.ID)
		}
	}

	if total != s.genesis.MiningReward {
		return fmt.Errorf("%w: tx[%s]: reward %d, expected %d", ErrInvalidTx, tx.ID, total, s.genesis.MiningReward)
	}

	return nil
}
