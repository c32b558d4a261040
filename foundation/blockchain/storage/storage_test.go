package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Stores(t *testing.T) {
	type table struct {
		name string
		open func(t *testing.T) storage.Store
	}

	tt := []table{
		{
			name: "memory",
			open: func(t *testing.T) storage.Store { return memory.New() },
		},
		{
			name: "bolt",
			open: func(t *testing.T) storage.Store {
				db, err := bolt.New(filepath.Join(t.TempDir(), "test.db"))
				if err != nil {
					t.Fatalf("Should be able to open a bolt file: %s", err)
				}
				return db
			},
		},
	}

	t.Log("Given the need to store and retrieve key/value pairs.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen using the %s store.", testID, tst.name)
				{
					store := tst.open(t)
					defer store.Close()

					bucket, err := store.Bucket("blocks")
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open a bucket: %v", failed, testID, err)
					}

					if _, err := bucket.Get([]byte("apex")); !errors.Is(err, storage.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould get ErrNotFound for a missing key: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get ErrNotFound for a missing key.", success, testID)

					if err := bucket.Put([]byte("b"), []byte("2")); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to put a value: %v", failed, testID, err)
					}

					writes := []storage.Write{
						{Key: []byte("a"), Value: []byte("1")},
						{Key: []byte("apex"), Value: []byte("a")},
					}
					if err := bucket.Apply(writes...); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to apply a batch: %v", failed, testID, err)
					}

					if err := bucket.Apply(storage.Write{Key: []byte("c"), Value: []byte("3")}, storage.Write{}); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject a batch with an empty key.", failed, testID)
					}
					if _, err := bucket.Get([]byte("c")); !errors.Is(err, storage.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould not store part of a rejected batch: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not store part of a rejected batch.", success, testID)

					if err := bucket.Flush(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to flush: %v", failed, testID, err)
					}

					v, err := bucket.Get([]byte("apex"))
					if err != nil || string(v) != "a" {
						t.Fatalf("\t%s\tTest %d:\tShould read back the value: %q %v", failed, testID, v, err)
					}
					t.Logf("\t%s\tTest %d:\tShould read back the value.", success, testID)

					v[0] = 'z'
					if v, _ := bucket.Get([]byte("apex")); string(v) != "a" {
						t.Fatalf("\t%s\tTest %d:\tShould return a copy of the value.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould return a copy of the value.", success, testID)

					var keys []string
					err = bucket.ForEach(func(k, _ []byte) error {
						keys = append(keys, string(k))
						return nil
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to walk the bucket: %v", failed, testID, err)
					}

					exp := []string{"a", "apex", "b"}
					if len(keys) != len(exp) {
						t.Fatalf("\t%s\tTest %d:\tShould walk %d keys, got %v", failed, testID, len(exp), keys)
					}
					for i := range exp {
						if keys[i] != exp[i] {
							t.Fatalf("\t%s\tTest %d:\tShould walk keys in order, got %v", failed, testID, keys)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould walk keys in order.", success, testID)

					other, err := store.Bucket("wallets")
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open a second bucket: %v", failed, testID, err)
					}
					if _, err := other.Get([]byte("a")); !errors.Is(err, storage.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould keep buckets separate: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould keep buckets separate.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_BoltReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	t.Log("Given the need to keep data across restarts.")
	{
		db, err := bolt.New(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open a bolt file: %v", failed, err)
		}

		bucket, err := db.Bucket("blocks")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open a bucket: %v", failed, err)
		}
		if err := bucket.Put([]byte("apex"), []byte("hash")); err != nil {
			t.Fatalf("\t%s\tShould be able to put a value: %v", failed, err)
		}
		db.Close()

		db, err = bolt.New(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reopen the bolt file: %v", failed, err)
		}
		defer db.Close()

		bucket, err = db.Bucket("blocks")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open a bucket: %v", failed, err)
		}

		v, err := bucket.Get([]byte("apex"))
		if err != nil || string(v) != "hash" {
			t.Fatalf("\t%s\tShould read the value after reopening: %q %v", failed, v, err)
		}
		t.Logf("\t%s\tShould read the value after reopening.", success)
	}
}
