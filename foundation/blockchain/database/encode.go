package database

import (
	"bytes"
	"encoding/binary"
)

// The canonical encoding is the input to every transaction and block hash, so
// the layout must never change. All integers are big endian and every
// variable length field is prefixed with its length as a uint64.
//
//	tx     = id(32) | u64 n | input*n | u64 m | output*m
//	input  = prev_tx_id(32) | u64 output_index | u64 len | signature | u64 len | unlock_key
//	output = u64 value | u64 len | lock
//	txs    = u64 n | tx*n

// EncodeTxs returns the canonical bytes for the list of transactions.
func EncodeTxs(trans []Tx) []byte {
	var buf bytes.Buffer

	putUint64(&buf, uint64(len(trans)))
	for _, tx := range trans {
		encodeTx(&buf, tx)
	}

	return buf.Bytes()
}

// encodeTx appends the canonical bytes of the transaction.
func encodeTx(buf *bytes.Buffer, tx Tx) {
	id := tx.ID.Bytes32()
	buf.Write(id[:])

	putUint64(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		prev := in.PrevTxID.Bytes32()
		buf.Write(prev[:])
		putUint64(buf, in.OutputIndex)
		putBytes(buf, in.Signature)
		putBytes(buf, in.UnlockKey)
	}

	putUint64(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		putUint64(buf, out.Value)
		putBytes(buf, out.Lock)
	}
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putBytes(buf *bytes.Buffer, b []byte) {
	putUint64(buf, uint64(len(b)))
	buf.Write(b)
}

// minimalUint64 returns v in big endian without leading zero bytes. Zero is
// a single zero byte.
func minimalUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)

	i := 0
	for i < 7 && b[i] == 0 {
		i++
	}

	return b[i:]
}
