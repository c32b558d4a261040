// Package storage defines the key-value contract the chain is persisted
// through. Implementations live in the sub-packages.
package storage

import "errors"

// ErrNotFound is returned when a key does not exist in a bucket.
var ErrNotFound = errors.New("key not found")

// Write is a single key/value pair applied as part of a batch.
type Write struct {
	Key   []byte
	Value []byte
}

// Bucket represents a named keyspace inside a store.
type Bucket interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Apply(writes ...Write) error
	ForEach(fn func(key []byte, value []byte) error) error
	Flush() error
}

// Store represents the behavior required to open buckets on some kind of
// persistent or volatile storage.
type Store interface {
	Bucket(name string) (Bucket, error)
	Close() error
}
