// Package memory implements the storage contract using maps. Nothing
// survives the process.
package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
)

// Memory represents the storage implementation for holding buckets in
// memory. This implements the storage.Store interface.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		buckets: make(map[string]*bucket),
	}
}

// Bucket returns access to the named bucket, creating it if needed.
func (m *Memory) Bucket(name string) (storage.Bucket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, exists := m.buckets[name]
	if !exists {
		b = &bucket{data: make(map[string][]byte)}
		m.buckets[name] = b
	}

	return b, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// =============================================================================

type bucket struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func (b *bucket) Get(key []byte) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, exists := b.data[string(key)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return append([]byte{}, v...), nil
}

func (b *bucket) Put(key []byte, value []byte) error {
	return b.Apply(storage.Write{Key: key, Value: value})
}

func (b *bucket) Apply(writes ...storage.Write) error {
	for _, w := range writes {
		if len(w.Key) == 0 {
			return errors.New("empty key")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		b.data[string(w.Key)] = append([]byte{}, w.Value...)
	}

	return nil
}

// ForEach walks the keys in byte order to match the bolt implementation.
func (b *bucket) ForEach(fn func(key []byte, value []byte) error) error {
	b.mu.RLock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	sort.Strings(keys)

	for _, k := range keys {
		v, err := b.Get([]byte(k))
		if err != nil {
			continue
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}

	return nil
}

func (b *bucket) Flush() error {
	return nil
}
