package state

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// WalletLookup represents the behavior required to find the signing key
// of an address.
type WalletLookup interface {
	Get(addr string) (wallet.Wallet, error)
}

// NewCoinbase constructs a coinbase paying the mining reward to the
// receiver. An empty memo is replaced with a default.
func (s *State) NewCoinbase(receiver string, memo string) (database.Tx, error) {
	pkh, err := s.params.Decode(receiver)
	if err != nil {
		return database.Tx{}, fmt.Errorf("receiver: %w", err)
	}

	if memo == "" {
		memo = fmt.Sprintf("Reward to '%s'", receiver)
	}

	return database.NewCoinbaseTx(s.genesis.MiningReward, pkh, memo), nil
}

// NewPayment constructs a signed transaction moving amount from the sender
// to the receiver. Change is paid back to the sender when the selected
// outputs are worth more than the amount.
func (s *State) NewPayment(sender string, receiver string, amount uint64, wallets WalletLookup) (database.Tx, error) {
	if amount == 0 {
		return database.Tx{}, ErrInvalidAmount
	}

	senderPKH, err := s.params.Decode(sender)
	if err != nil {
		return database.Tx{}, fmt.Errorf("sender: %w", err)
	}

	receiverPKH, err := s.params.Decode(receiver)
	if err != nil {
		return database.Tx{}, fmt.Errorf("receiver: %w", err)
	}

	w, err := wallets.Get(sender)
	if err != nil {
		return database.Tx{}, err
	}

	accumulated, outputs, err := s.SpendableOutputs(senderPKH, amount)
	if err != nil {
		return database.Tx{}, err
	}

	if accumulated < amount {
		return database.Tx{}, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, sender, accumulated, amount)
	}

	// Map iteration is random, order the inputs so the same outputs always
	// produce the same transaction.
	txIDs := make([]digest.Hash, 0, len(outputs))
	for id := range outputs {
		txIDs = append(txIDs, id)
	}
	sort.Slice(txIDs, func(i, j int) bool { return txIDs[i].Less(txIDs[j]) })

	ids := make(map[digest.Hash]struct{}, len(txIDs))
	var inputs []database.Input
	for _, id := range txIDs {
		ids[id] = struct{}{}

		indexes := outputs[id]
		sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

		for _, idx := range indexes {
			inputs = append(inputs, database.Input{
				PrevTxID:    id,
				OutputIndex: idx,
				UnlockKey:   w.PublicKey(),
			})
		}
	}

	outs := []database.Output{database.NewOutput(amount, receiverPKH)}
	if accumulated > amount {
		outs = append(outs, database.NewOutput(accumulated-amount, senderPKH))
	}

	prevTxs, _, err := s.findTransactions(ids)
	if err != nil {
		return database.Tx{}, err
	}

	tx := database.NewTx(inputs, outs)
	if err := tx.Sign(w.PrivateKey, prevTxs); err != nil {
		return database.Tx{}, err
	}
	tx.Finalize()

	if !bytes.Equal(w.PublicKeyHash(), senderPKH) {
		s.evHandler("state: NewPayment: WARNING: wallet for %s does not own its outputs", sender)
	}

	return tx, nil
}

// Send constructs a payment and appends it to the chain in its own block.
func (s *State) Send(ctx context.Context, sender string, receiver string, amount uint64, wallets WalletLookup) (database.Block, error) {
	tx, err := s.NewPayment(sender, receiver, amount, wallets)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: Send: tx[%s] from[%s] to[%s] value[%d]", tx.ID, sender, receiver, amount)

	return s.Append(ctx, []database.Tx{tx})
}
