package pow_test

import (
	"context"
	"errors"
	"math/bits"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Target(t *testing.T) {
	t.Log("Given the need to compute targets for a range of difficulties.")
	{
		prev := pow.Target(0)

		for d := uint(0); d <= 8; d++ {
			t.Logf("\tTest %d:\tWhen using difficulty %d.", d, d)
			{
				target := pow.Target(d)
				b := target.Bytes32()

				var ones int
				for _, v := range b {
					ones += bits.OnesCount8(v)
				}
				if ones != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould have exactly one bit set, got %d.", failed, d, ones)
				}
				t.Logf("\t%s\tTest %d:\tShould have exactly one bit set.", success, d)

				if bitLen := target.Uint256().BitLen(); bitLen != int(256-d) {
					t.Fatalf("\t%s\tTest %d:\tShould have the bit at position %d, got %d.", failed, d, 255-d, bitLen-1)
				}
				t.Logf("\t%s\tTest %d:\tShould have the bit at position %d.", success, d, 255-d)

				if d > 0 && !target.Less(prev) {
					t.Fatalf("\t%s\tTest %d:\tShould be strictly below the previous target.", failed, d)
				}
				prev = target
			}
		}
	}
}

func Test_MineAndValidate(t *testing.T) {
	t.Log("Given the need to mine and validate a header.")
	{
		const testID = 0
		t.Logf("\tTest %d:\tWhen mining at difficulty 8 with several workers.", testID)
		{
			engine, err := pow.New(pow.Config{Difficulty: 8, Workers: 4})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct an engine: %v", failed, testID, err)
			}

			header := []byte("prev-hash|transactions|timestamp")

			sol, err := engine.Mine(context.Background(), header)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the header: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine the header.", success, testID)

			if b := sol.Hash.Bytes32(); b[0] != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have 8 leading zero bits: %s", failed, testID, sol.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould have 8 leading zero bits.", success, testID)

			if err := engine.Validate(header, sol.Nonce, sol.Hash); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate the solution: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate the solution.", success, testID)

			tampered := append([]byte{}, header...)
			tampered[0] ^= 0x01
			if err := engine.Validate(tampered, sol.Nonce, sol.Hash); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a tampered header.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a tampered header.", success, testID)

			if err := engine.Validate(header, sol.Nonce+1, sol.Hash); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a tampered nonce.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a tampered nonce.", success, testID)

			if err := engine.Validate(header, sol.Nonce, digest.Zero); !errors.Is(err, pow.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a claimed hash that doesn't match: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a claimed hash that doesn't match.", success, testID)
		}

		const testID1 = 1
		t.Logf("\tTest %d:\tWhen mining with a single worker.", testID1)
		{
			engine, err := pow.New(pow.Config{Difficulty: 4, Workers: 1})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct an engine: %v", failed, testID1, err)
			}

			header := []byte("single worker")
			sol, err := engine.Mine(context.Background(), header)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the header: %v", failed, testID1, err)
			}

			for nonce := uint64(0); nonce < sol.Nonce; nonce++ {
				if engine.Hash(header, nonce).Less(engine.Target()) {
					t.Fatalf("\t%s\tTest %d:\tShould find the smallest nonce, %d also solves.", failed, testID1, nonce)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould find the smallest nonce.", success, testID1)
		}
	}
}

func Test_MineFailures(t *testing.T) {
	t.Log("Given the need to report a search that can't succeed.")
	{
		const testID = 0
		t.Logf("\tTest %d:\tWhen the nonce space is exhausted.", testID)
		{
			engine, err := pow.New(pow.Config{Difficulty: pow.MaxDifficulty, Workers: 3, MaxNonce: 64})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct an engine: %v", failed, testID, err)
			}

			if _, err := engine.Mine(context.Background(), []byte("header")); !errors.Is(err, pow.ErrExhausted) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrExhausted: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrExhausted.", success, testID)
		}

		const testID1 = 1
		t.Logf("\tTest %d:\tWhen the search times out.", testID1)
		{
			engine, err := pow.New(pow.Config{Difficulty: pow.MaxDifficulty, Workers: 2})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct an engine: %v", failed, testID1, err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			if _, err := engine.Mine(ctx, []byte("header")); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest %d:\tShould get the deadline error: %v", failed, testID1, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the deadline error.", success, testID1)
		}

		const testID2 = 2
		t.Logf("\tTest %d:\tWhen the difficulty is out of range.", testID2)
		{
			if _, err := pow.New(pow.Config{Difficulty: 256}); !errors.Is(err, pow.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrInvalidDifficulty: %v", failed, testID2, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrInvalidDifficulty.", success, testID2)
		}
	}
}
