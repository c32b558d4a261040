package database_test

import (
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	ownerHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	thiefHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

type identity struct {
	key *ecdsa.PrivateKey
	pub []byte
	pkh []byte
}

func newIdentity(t *testing.T, hexKey string) identity {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %s", err)
	}

	pub := signature.PublicKeyBytes(key.PublicKey)
	return identity{key: key, pub: pub, pkh: address.HashPublicKey(pub)}
}

// funding builds a finalized transaction with two outputs locked to the owner.
func funding(owner identity) database.Tx {
	tx := database.NewTx(
		[]database.Input{{PrevTxID: digest.Sum([]byte("earlier")), OutputIndex: 3}},
		[]database.Output{database.NewOutput(30, owner.pkh), database.NewOutput(70, owner.pkh)},
	)
	tx.Finalize()
	return tx
}

// spend builds a transaction spending both outputs of prev.
func spend(prev database.Tx, unlock []byte, to []byte) database.Tx {
	return database.NewTx(
		[]database.Input{
			{PrevTxID: prev.ID, OutputIndex: 0, UnlockKey: unlock},
			{PrevTxID: prev.ID, OutputIndex: 1, UnlockKey: unlock},
		},
		[]database.Output{database.NewOutput(100, to)},
	)
}

// =============================================================================

func Test_SignVerify(t *testing.T) {
	owner := newIdentity(t, ownerHexKey)
	thief := newIdentity(t, thiefHexKey)

	prev := funding(owner)
	prevTxs := map[digest.Hash]database.Tx{prev.ID: prev}

	t.Log("Given the need to sign and verify transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the owner signs the inputs.", testID)
		{
			tx := spend(prev, owner.pub, thief.pkh)
			if err := tx.Sign(owner.key, prevTxs); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign: %v", failed, testID, err)
			}
			tx.Finalize()
			t.Logf("\t%s\tTest %d:\tShould be able to sign.", success, testID)

			ok, err := tx.Verify(prevTxs)
			if err != nil || !ok {
				t.Fatalf("\t%s\tTest %d:\tShould verify: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould verify.", success, testID)

			if tx.ID != tx.ContentHash() {
				t.Fatalf("\t%s\tTest %d:\tShould have an id covering the signed form.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have an id covering the signed form.", success, testID)

			for _, bit := range []int{0, 9, 100, 8*len(tx.Inputs[0].Signature) - 1} {
				bad := tx
				bad.Inputs = append([]database.Input{}, tx.Inputs...)
				sig := append([]byte{}, tx.Inputs[0].Signature...)
				sig[bit/8] ^= 1 << (bit % 8)
				bad.Inputs[0].Signature = sig

				ok, err := bad.Verify(prevTxs)
				if err != nil || ok {
					t.Fatalf("\t%s\tTest %d:\tShould not verify with bit %d flipped: %v", failed, testID, bit, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould not verify with a flipped signature bit.", success, testID)

			swapped := tx
			swapped.Inputs = append([]database.Input{}, tx.Inputs...)
			swapped.Inputs[0].Signature, swapped.Inputs[1].Signature = tx.Inputs[1].Signature, tx.Inputs[0].Signature

			ok, err = swapped.Verify(prevTxs)
			if err != nil || ok {
				t.Fatalf("\t%s\tTest %d:\tShould not verify with swapped signatures: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not verify with swapped signatures.", success, testID)

			changed := tx
			changed.Outputs = []database.Output{database.NewOutput(1000, thief.pkh)}

			ok, err = changed.Verify(prevTxs)
			if err != nil || ok {
				t.Fatalf("\t%s\tTest %d:\tShould not verify with a changed output: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not verify with a changed output.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen someone else signs the inputs.", testID)
		{
			tx := spend(prev, owner.pub, thief.pkh)
			if err := tx.Sign(thief.key, prevTxs); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign: %v", failed, testID, err)
			}

			if ok, _ := tx.Verify(prevTxs); ok {
				t.Fatalf("\t%s\tTest %d:\tShould not verify with the owner's unlock key.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not verify with the owner's unlock key.", success, testID)

			tx = spend(prev, thief.pub, thief.pkh)
			if err := tx.Sign(thief.key, prevTxs); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign: %v", failed, testID, err)
			}

			if ok, _ := tx.Verify(prevTxs); ok {
				t.Fatalf("\t%s\tTest %d:\tShould not verify with the thief's unlock key.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not verify with the thief's unlock key.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen the previous transaction is missing.", testID)
		{
			tx := spend(prev, owner.pub, thief.pkh)
			if err := tx.Sign(owner.key, map[digest.Hash]database.Tx{}); !errors.Is(err, database.ErrPrevTxNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould fail to sign with ErrPrevTxNotFound: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to sign with ErrPrevTxNotFound.", success, testID)

			if err := tx.Sign(owner.key, prevTxs); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign: %v", failed, testID, err)
			}

			if _, err := tx.Verify(map[digest.Hash]database.Tx{}); !errors.Is(err, database.ErrPrevTxNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould fail to verify with ErrPrevTxNotFound: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to verify with ErrPrevTxNotFound.", success, testID)

			tx.Inputs[1].OutputIndex = 5
			if _, err := tx.Verify(prevTxs); !errors.Is(err, database.ErrPrevTxNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould fail for an output index out of range: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail for an output index out of range.", success, testID)
		}
	}
}

func Test_Coinbase(t *testing.T) {
	owner := newIdentity(t, ownerHexKey)

	t.Log("Given the need to mint a reward.")
	{
		cb1 := database.NewCoinbaseTx(100, owner.pkh, "first")
		cb2 := database.NewCoinbaseTx(100, owner.pkh, "second")

		if !cb1.IsCoinbase() {
			t.Fatalf("\t%s\tShould be a coinbase transaction.", failed)
		}
		t.Logf("\t%s\tShould be a coinbase transaction.", success)

		ok, err := cb1.Verify(nil)
		if err != nil || !ok {
			t.Fatalf("\t%s\tShould verify without previous transactions: %v", failed, err)
		}
		t.Logf("\t%s\tShould verify without previous transactions.", success)

		if cb1.ID == cb2.ID {
			t.Fatalf("\t%s\tShould get distinct ids for distinct memos.", failed)
		}
		t.Logf("\t%s\tShould get distinct ids for distinct memos.", success)

		if funding(owner).IsCoinbase() {
			t.Fatalf("\t%s\tShould not treat a regular transaction as coinbase.", failed)
		}
		t.Logf("\t%s\tShould not treat a regular transaction as coinbase.", success)

		trimmed := cb1.TrimmedCopy()
		if len(trimmed.Inputs[0].UnlockKey) != 0 || trimmed.Outputs[0].Value != 100 {
			t.Fatalf("\t%s\tShould clear unlock keys and keep outputs in a trimmed copy.", failed)
		}
		t.Logf("\t%s\tShould clear unlock keys and keep outputs in a trimmed copy.", success)
	}
}
