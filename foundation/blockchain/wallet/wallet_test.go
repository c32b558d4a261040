package wallet_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Store(t *testing.T) {
	t.Log("Given the need to manage wallets.")
	{
		ws, err := wallet.NewStore(memory.New(), address.DefaultParams)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a store: %v", failed, err)
		}

		addr1, err := ws.Create()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a wallet: %v", failed, err)
		}
		addr2, err := ws.Create()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a wallet: %v", failed, err)
		}

		if !address.DefaultParams.IsValid(addr1) || addr1 == addr2 {
			t.Fatalf("\t%s\tShould create distinct valid addresses: %s %s", failed, addr1, addr2)
		}
		t.Logf("\t%s\tShould create distinct valid addresses.", success)

		w, err := ws.Get(addr1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get the wallet: %v", failed, err)
		}
		if w.Address(address.DefaultParams) != addr1 {
			t.Fatalf("\t%s\tShould get the wallet for the address.", failed)
		}
		t.Logf("\t%s\tShould get the wallet for the address.", success)

		addrs, err := ws.Addresses()
		if err != nil || len(addrs) != 2 {
			t.Fatalf("\t%s\tShould list two addresses: %v %v", failed, addrs, err)
		}
		t.Logf("\t%s\tShould list two addresses.", success)

		if _, err := ws.Get("1BoatSLRHtKNngkdXEeobR76b53LETtpyT"); !errors.Is(err, wallet.ErrNotFound) {
			t.Fatalf("\t%s\tShould get ErrNotFound for an unknown address: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNotFound for an unknown address.", success)
	}
}

func Test_ImportExport(t *testing.T) {
	dir := t.TempDir()

	t.Log("Given the need to move wallets between stores.")
	{
		db, err := bolt.New(filepath.Join(dir, "wallets.db"))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open a bolt file: %v", failed, err)
		}
		defer db.Close()

		src, err := wallet.NewStore(db, address.DefaultParams)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a store: %v", failed, err)
		}

		addr, err := src.Create()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a wallet: %v", failed, err)
		}

		path, err := src.Export(addr, filepath.Join(dir, "keys"), "kennedy")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to export the wallet: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to export the wallet.", success)

		dst, err := wallet.NewStore(memory.New(), address.DefaultParams)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a store: %v", failed, err)
		}

		got, err := dst.Import(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to import the wallet: %v", failed, err)
		}

		if got != addr {
			t.Logf("\t\tgot: %s", got)
			t.Logf("\t\texp: %s", addr)
			t.Fatalf("\t%s\tShould import the same address.", failed)
		}
		t.Logf("\t%s\tShould import the same address.", success)
	}
}
