package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	dir := t.TempDir()

	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(dir, "kennedy.ecdsa"), w.PrivateKey); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	t.Log("Given the need to name addresses.")
	{
		ns, err := nameservice.New(dir, address.DefaultParams)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the folder: %v", failed, err)
		}

		addr := w.Address(address.DefaultParams)
		if got := ns.Lookup(addr); got != "kennedy" {
			t.Fatalf("\t%s\tShould name the address kennedy: got %q", failed, got)
		}
		t.Logf("\t%s\tShould name the address kennedy.", success)

		if got := ns.Lookup("unknown"); got != "unknown" {
			t.Fatalf("\t%s\tShould return an unknown address as is: got %q", failed, got)
		}
		t.Logf("\t%s\tShould return an unknown address as is.", success)
	}
}
