package address_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func Test_Address(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %s", err)
	}
	pub := crypto.CompressPubkey(&pk.PublicKey)

	t.Log("Given the need to derive and decode addresses.")
	{
		params := address.DefaultParams

		pkh := address.HashPublicKey(pub)
		if len(pkh) != address.HashLength {
			t.Fatalf("\t%s\tShould get a %d byte public key hash, got %d.", failed, address.HashLength, len(pkh))
		}
		t.Logf("\t%s\tShould get a %d byte public key hash.", success, address.HashLength)

		addr := params.FromPublicKey(pub)
		if addr[0] != '1' {
			t.Fatalf("\t%s\tShould start with a 1 for version zero: %s", failed, addr)
		}
		t.Logf("\t%s\tShould start with a 1 for version zero.", success)

		got, err := params.Decode(addr)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to decode the address: %v", failed, err)
		}
		if !bytes.Equal(got, pkh) {
			t.Fatalf("\t%s\tShould get back the public key hash.", failed)
		}
		t.Logf("\t%s\tShould get back the public key hash.", success)

		raw := base58.Decode(addr)
		raw[len(raw)-1] ^= 0xff
		if _, err := params.Decode(base58.Encode(raw)); !errors.Is(err, address.ErrInvalidAddress) {
			t.Fatalf("\t%s\tShould reject a bad checksum: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a bad checksum.", success)

		other := address.Params{Version: 0x6f, ChecksumLength: 4}
		if other.IsValid(addr) {
			t.Fatalf("\t%s\tShould reject an address with another version.", failed)
		}
		t.Logf("\t%s\tShould reject an address with another version.", success)

		if params.IsValid("not-an-address") {
			t.Fatalf("\t%s\tShould reject garbage.", failed)
		}
		t.Logf("\t%s\tShould reject garbage.", success)
	}
}
