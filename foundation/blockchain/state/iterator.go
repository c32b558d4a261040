package state

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Iterator walks the chain backward from the apex it was created at to the
// genesis block, inclusive.
type Iterator struct {
	state *State
	next  digest.Hash
	eoc   bool
}

// Iterate returns an iterator starting at the current apex. Blocks appended
// after the call are not seen.
func (s *State) Iterate() *Iterator {
	return &Iterator{
		state: s,
		next:  s.Apex(),
	}
}

// Next reads the next block toward genesis. Every block is re-validated
// against the hash it is stored under.
func (it *Iterator) Next() (database.Block, error) {
	if it.eoc {
		return database.Block{}, errors.New("end of chain")
	}

	block, err := it.state.readBlock(it.next)
	if err != nil {
		it.eoc = true
		return database.Block{}, err
	}

	if block.IsGenesis() {
		it.eoc = true
	}
	it.next = block.PrevHash

	return block, nil
}

// Done reports whether the genesis block has been returned.
func (it *Iterator) Done() bool {
	return it.eoc
}

// forEach walks the chain from the apex calling fn for each block. A
// false return from fn stops the walk.
func (s *State) forEach(fn func(block database.Block) bool) error {
	iter := s.Iterate()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return err
		}

		if !fn(block) {
			return nil
		}
	}

	return nil
}
