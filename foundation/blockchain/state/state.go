// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
)

// BucketName is the storage bucket blocks are kept in.
const BucketName = "blocks"

// Keys with special meaning inside the blocks bucket. Block keys are always
// 32 bytes so these can't collide.
var (
	apexKey    = []byte("apex")
	genesisKey = []byte("genesis")
)

// Set of error variables for chain processing.
var (
	ErrNotFound           = errors.New("not found")
	ErrNoTransactions     = errors.New("no transactions to append")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrUnverifiedTx       = errors.New("transaction failed verification")
	ErrDoubleSpend        = errors.New("output already spent")
	ErrInvalidTx          = errors.New("invalid transaction")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrValueOverflow      = errors.New("value overflow")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to open the chain.
type Config struct {
	Storage        storage.Store
	Genesis        genesis.Genesis
	Workers        int                     // Goroutines used for the nonce search, zero means one per CPU.
	Beneficiary    string                  // Optional address paid a reward in every appended block.
	GenesisAddress func() (string, error)  // Called once when the chain has to be created.
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	genesis     genesis.Genesis
	params      address.Params
	engine      *pow.Engine
	blocks      storage.Bucket
	beneficiary string
	evHandler   EventHandler

	writeMu sync.Mutex

	mu          sync.RWMutex
	apex        digest.Hash
	genesisHash digest.Hash
}

// New opens the chain held in storage. When the storage holds no chain, the
// genesis block is mined with a coinbase paid to the address returned by
// GenesisAddress.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	params := cfg.Genesis.Params()

	if cfg.Beneficiary != "" && !params.IsValid(cfg.Beneficiary) {
		return nil, fmt.Errorf("beneficiary %q: %w", cfg.Beneficiary, address.ErrInvalidAddress)
	}

	engine, err := pow.New(pow.Config{
		Difficulty: cfg.Genesis.Difficulty,
		Workers:    cfg.Workers,
		EvHandler:  ev,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Storage == nil {
		return nil, fmt.Errorf("%w: no store configured", ErrStorageUnavailable)
	}

	blocks, err := cfg.Storage.Bucket(BucketName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s := State{
		genesis:     cfg.Genesis,
		params:      params,
		engine:      engine,
		blocks:      blocks,
		beneficiary: cfg.Beneficiary,
		evHandler:   ev,
	}

	apex, err := s.readHash(apexKey)
	switch {
	case err == nil:
		if err := s.reopen(apex); err != nil {
			return nil, err
		}

	case errors.Is(err, storage.ErrNotFound):
		if err := s.create(cfg.GenesisAddress); err != nil {
			return nil, err
		}

	default:
		return nil, err
	}

	return &s, nil
}

// Genesis returns the constants the chain was opened with.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Params returns the address constants of the chain.
func (s *State) Params() address.Params {
	return s.params
}

// Difficulty returns the proof of work difficulty blocks are mined at.
func (s *State) Difficulty() uint {
	return s.engine.Difficulty()
}

// Apex returns the hash of the most recently appended block.
func (s *State) Apex() digest.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.apex
}

// GenesisHash returns the hash of the first block of the chain.
func (s *State) GenesisHash() digest.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.genesisHash
}

// =============================================================================

// create mines and stores the genesis block.
func (s *State) create(genesisAddress func() (string, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if genesisAddress == nil {
		return errors.New("no chain in storage and no genesis address source")
	}

	addr, err := genesisAddress()
	if err != nil {
		return fmt.Errorf("genesis address: %w", err)
	}

	coinbase, err := s.NewCoinbase(addr, s.genesis.Memo)
	if err != nil {
		return err
	}

	s.evHandler("state: create: genesis: address[%s] reward[%d]", addr, s.genesis.MiningReward)

	block, err := database.NewBlock(context.Background(), s.engine, digest.Zero, []database.Tx{coinbase})
	if err != nil {
		return err
	}

	if err := s.commit(block); err != nil {
		return err
	}

	s.evHandler("state: create: genesis: blk[%s]", block.Hash)

	return nil
}

// reopen checks the stored apex and restores the in memory pointers.
func (s *State) reopen(apex digest.Hash) error {
	block, err := s.readBlock(apex)
	if err != nil {
		return fmt.Errorf("reading apex: %w", err)
	}

	genesisHash, err := s.readHash(genesisKey)
	if err != nil {
		return fmt.Errorf("reading genesis: %w", err)
	}

	s.mu.Lock()
	s.apex = block.Hash
	s.genesisHash = genesisHash
	s.mu.Unlock()

	s.evHandler("state: reopen: apex[%s] genesis[%s]", apex, genesisHash)

	return nil
}

// commit stores the block and moves the apex to it in one batch. The block
// and the apex are either both written or neither is.
func (s *State) commit(block database.Block) error {
	data, err := database.Marshal(block)
	if err != nil {
		return err
	}

	writes := []storage.Write{
		{Key: block.Key(), Value: data},
		{Key: apexKey, Value: block.Key()},
	}
	if block.IsGenesis() {
		writes = append(writes, storage.Write{Key: genesisKey, Value: block.Key()})
	}

	if err := s.blocks.Apply(writes...); err != nil {
		return fmt.Errorf("%w: storing blk[%s]: %w", ErrStorageUnavailable, block.Hash, err)
	}

	s.mu.Lock()
	s.apex = block.Hash
	if block.IsGenesis() {
		s.genesisHash = block.Hash
	}
	s.mu.Unlock()

	// The batch is already committed so the block stands even when the
	// sync fails.
	if err := s.blocks.Flush(); err != nil {
		s.evHandler("state: commit: WARNING: flushing blk[%s]: %s", block.Hash, err)
	}

	return nil
}

// readHash reads a hash stored under one of the special keys.
func (s *State) readHash(key []byte) (digest.Hash, error) {
	v, err := s.blocks.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return digest.Hash{}, err
		}
		return digest.Hash{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if len(v) != digest.Size {
		return digest.Hash{}, fmt.Errorf("%w: key %q holds %d bytes", database.ErrCorruptBlock, key, len(v))
	}

	return digest.FromBytes(v), nil
}

// readBlock reads, decodes and re-validates the block stored for hash.
func (s *State) readBlock(hash digest.Hash) (database.Block, error) {
	key := hash.Bytes32()

	data, err := s.blocks.Get(key[:])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return database.Block{}, fmt.Errorf("%w: blk[%s] missing", database.ErrCorruptBlock, hash)
		}
		return database.Block{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	block, err := database.Unmarshal(data)
	if err != nil {
		return database.Block{}, err
	}

	if block.Hash != hash {
		return database.Block{}, fmt.Errorf("%w: blk[%s] stored under %s", database.ErrCorruptBlock, block.Hash, hash)
	}

	if err := block.Validate(s.engine); err != nil {
		return database.Block{}, fmt.Errorf("%w: %w", database.ErrCorruptBlock, err)
	}

	return block, nil
}
