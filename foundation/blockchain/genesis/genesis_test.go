package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()

	t.Log("Given the need to load the chain constants.")
	{
		g, err := genesis.Load("")
		if err != nil || g.MiningReward != 100 || g.Difficulty != 0 {
			t.Fatalf("\t%s\tShould get the defaults without a file: %+v %v", failed, g, err)
		}
		t.Logf("\t%s\tShould get the defaults without a file.", success)

		path := filepath.Join(dir, "genesis.json")
		if err := os.WriteFile(path, []byte(`{"difficulty": 12, "mining_reward": 50}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}

		g, err = genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the file: %v", failed, err)
		}
		if g.Difficulty != 12 || g.MiningReward != 50 || g.ChecksumLength != 4 {
			t.Fatalf("\t%s\tShould overlay the file on the defaults: %+v", failed, g)
		}
		t.Logf("\t%s\tShould overlay the file on the defaults.", success)

		if err := os.WriteFile(path, []byte(`{"difficulty": 300}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}
		if _, err := genesis.Load(path); err == nil {
			t.Fatalf("\t%s\tShould reject a difficulty above 255.", failed)
		}
		t.Logf("\t%s\tShould reject a difficulty above 255.", success)

		if _, err := genesis.Load(filepath.Join(dir, "missing.json")); err == nil {
			t.Fatalf("\t%s\tShould fail for a missing file.", failed)
		}
		t.Logf("\t%s\tShould fail for a missing file.", success)
	}
}
