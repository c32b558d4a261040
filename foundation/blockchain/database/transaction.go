package database

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrPrevTxNotFound is returned when an input references a transaction or
// output that can't be found. This is distinct from an invalid signature.
var ErrPrevTxNotFound = errors.New("previous transaction not found")

// =============================================================================

// Output is an amount of value locked to a public key hash.
type Output struct {
	Value uint64        `json:"value"`
	Lock  hexutil.Bytes `json:"lock"` // Public key hash of who can spend this output.
}

// NewOutput constructs an output of value locked to the public key hash.
func NewOutput(value uint64, publicKeyHash []byte) Output {
	return Output{
		Value: value,
		Lock:  append([]byte{}, publicKeyHash...),
	}
}

// IsLockedWith reports whether the output can be spent by the owner of the
// public key hash.
func (o Output) IsLockedWith(publicKeyHash []byte) bool {
	return bytes.Equal(o.Lock, publicKeyHash)
}

// Input references an output of an earlier transaction and carries the
// proof that the spender owns it.
type Input struct {
	PrevTxID    digest.Hash   `json:"prev_tx_id"`
	OutputIndex uint64        `json:"output_index"`
	Signature   hexutil.Bytes `json:"signature"`  // DER encoded ECDSA signature.
	UnlockKey   hexutil.Bytes `json:"unlock_key"` // Compressed public key of the spender.
}

// UsesKey reports whether the input was unlocked by the owner of the public
// key hash.
func (in Input) UsesKey(publicKeyHash []byte) bool {
	return bytes.Equal(address.HashPublicKey(in.UnlockKey), publicKeyHash)
}

// Tx moves value from the outputs of earlier transactions to new outputs.
type Tx struct {
	ID      digest.Hash `json:"id"`
	Inputs  []Input     `json:"inputs"`
	Outputs []Output    `json:"outputs"`
}

// NewTx constructs an unsigned transaction. The id is set by Finalize once
// the inputs are signed.
func NewTx(inputs []Input, outputs []Output) Tx {
	return Tx{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// NewCoinbaseTx constructs the transaction that creates the reward out of
// nothing. The memo is carried in the unlock key of the single input so
// rewards paid to the same lock still have distinct ids.
func NewCoinbaseTx(reward uint64, publicKeyHash []byte, memo string) Tx {
	tx := NewTx(
		[]Input{{PrevTxID: digest.Zero, OutputIndex: 0, UnlockKey: []byte(memo)}},
		[]Output{NewOutput(reward, publicKeyHash)},
	)
	tx.Finalize()

	return tx
}

// IsCoinbase reports whether the transaction is a coinbase transaction.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].PrevTxID.IsZero() && tx.Inputs[0].OutputIndex == 0
}

// TrimmedCopy returns a copy of the transaction with the signature and unlock
// key of every input cleared. This is the basis of what gets signed, so a
// signature never covers another signature.
func (tx Tx) TrimmedCopy() Tx {
	inputs := make([]Input, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = Input{
			PrevTxID:    in.PrevTxID,
			OutputIndex: in.OutputIndex,
		}
	}

	outputs := make([]Output, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputs[i] = NewOutput(out.Value, out.Lock)
	}

	return Tx{
		ID:      tx.ID,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// ContentHash returns the hash of the canonical encoding of the transaction
// with the id held at zero.
func (tx Tx) ContentHash() digest.Hash {
	tx.ID = digest.Zero

	var buf bytes.Buffer
	encodeTx(&buf, tx)

	return digest.Sum(buf.Bytes())
}

// Finalize sets the id of the transaction. It must be called after the
// inputs are signed so the id covers the final form.
func (tx *Tx) Finalize() {
	tx.ID = tx.ContentHash()
}

// Sign signs every input with the private key. Each input signs a digest of
// the trimmed transaction with its own unlock key set to the lock of the
// output it spends, so inputs are signed independently of each other.
func (tx *Tx) Sign(privateKey *ecdsa.PrivateKey, prevTxs map[digest.Hash]Tx) error {
	if tx.IsCoinbase() {
		return nil
	}

	locks, err := tx.prevLocks(prevTxs)
	if err != nil {
		return err
	}

	trimmed := tx.TrimmedCopy()
	for i := range tx.Inputs {
		id := trimmed.inputDigest(i, locks[i])

		sig, err := signature.Sign(id.MinimalBytes(), privateKey)
		if err != nil {
			return fmt.Errorf("signing input %d: %w", i, err)
		}

		tx.Inputs[i].Signature = sig
	}

	return nil
}

// Verify replays the digest construction used by Sign and checks every
// input's signature against its unlock key. The unlock key must also hash to
// the lock of the output being spent. A false result means the transaction
// is invalid, an error means a previous transaction is missing.
func (tx Tx) Verify(prevTxs map[digest.Hash]Tx) (bool, error) {
	if tx.IsCoinbase() {
		return true, nil
	}

	locks, err := tx.prevLocks(prevTxs)
	if err != nil {
		return false, err
	}

	trimmed := tx.TrimmedCopy()
	for i, in := range tx.Inputs {
		if !in.UsesKey(locks[i]) {
			return false, nil
		}

		id := trimmed.inputDigest(i, locks[i])
		if !signature.Verify(id.MinimalBytes(), in.Signature, in.UnlockKey) {
			return false, nil
		}
	}

	return true, nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tx[%s] in[", tx.ID)
	for i, in := range tx.Inputs {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s:%d", in.PrevTxID, in.OutputIndex)
	}
	b.WriteString("] out[")
	for i, out := range tx.Outputs {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%x", out.Value, []byte(out.Lock))
	}
	b.WriteString("]")

	return b.String()
}

// =============================================================================

// prevLocks returns the lock of the output each input spends.
func (tx Tx) prevLocks(prevTxs map[digest.Hash]Tx) ([][]byte, error) {
	locks := make([][]byte, len(tx.Inputs))
	for i, in := range tx.Inputs {
		prev, exists := prevTxs[in.PrevTxID]
		if !exists {
			return nil, fmt.Errorf("%w: input[%d] tx[%s]", ErrPrevTxNotFound, i, in.PrevTxID)
		}

		if in.OutputIndex >= uint64(len(prev.Outputs)) {
			return nil, fmt.Errorf("%w: input[%d] tx[%s] has no output %d", ErrPrevTxNotFound, i, in.PrevTxID, in.OutputIndex)
		}

		locks[i] = prev.Outputs[in.OutputIndex].Lock
	}

	return locks, nil
}

// inputDigest computes the digest signed for input i of a trimmed copy. The
// unlock key of that input is set to the lock only while hashing.
func (tx *Tx) inputDigest(i int, lock []byte) digest.Hash {
	tx.Inputs[i].UnlockKey = lock
	tx.ID = tx.ContentHash()
	tx.Inputs[i].UnlockKey = nil

	return tx.ID
}
