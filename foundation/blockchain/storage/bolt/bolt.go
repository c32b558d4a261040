// Package bolt implements the storage contract on top of a bbolt database
// file. Each bucket name maps to a bolt bucket.
package bolt

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	bbolt "go.etcd.io/bbolt"
)

// Bolt represents a store backed by a single bbolt database file. This
// implements the storage.Store interface.
type Bolt struct {
	db *bbolt.DB
}

// New opens or creates the database file at the specified path.
func New(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &Bolt{db: db}, nil
}

// Bucket returns access to the named bucket, creating it if needed.
func (b *Bolt) Bucket(name string) (storage.Bucket, error) {
	f := func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	}

	if err := b.db.Update(f); err != nil {
		return nil, fmt.Errorf("creating bucket %q: %w", name, err)
	}

	return &bucket{db: b.db, name: []byte(name)}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// =============================================================================

// bucket implements the storage.Bucket interface for one bolt bucket.
type bucket struct {
	db   *bbolt.DB
	name []byte
}

// Get returns a copy of the value stored for key.
func (bk *bucket) Get(key []byte) ([]byte, error) {
	var value []byte

	f := func(tx *bbolt.Tx) error {
		v := tx.Bucket(bk.name).Get(key)
		if v == nil {
			return storage.ErrNotFound
		}

		// Bolt values are only valid for the life of the transaction.
		value = append([]byte{}, v...)
		return nil
	}

	if err := bk.db.View(f); err != nil {
		return nil, err
	}

	return value, nil
}

// Put stores the value for key.
func (bk *bucket) Put(key []byte, value []byte) error {
	return bk.Apply(storage.Write{Key: key, Value: value})
}

// Apply stores every write in a single bolt transaction. Either all the
// writes are stored or none are.
func (bk *bucket) Apply(writes ...storage.Write) error {
	f := func(tx *bbolt.Tx) error {
		b := tx.Bucket(bk.name)
		for _, w := range writes {
			if len(w.Key) == 0 {
				return errors.New("empty key")
			}
			if err := b.Put(w.Key, w.Value); err != nil {
				return err
			}
		}
		return nil
	}

	return bk.db.Update(f)
}

// ForEach calls fn for every key in byte order. Returning an error from fn
// stops the walk.
func (bk *bucket) ForEach(fn func(key []byte, value []byte) error) error {
	f := func(tx *bbolt.Tx) error {
		return tx.Bucket(bk.name).ForEach(func(k, v []byte) error {
			return fn(append([]byte{}, k...), append([]byte{}, v...))
		})
	}

	return bk.db.View(f)
}

// Flush forces the database file to disk.
func (bk *bucket) Flush() error {
	return bk.db.Sync()
}
