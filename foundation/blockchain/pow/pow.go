// Package pow implements the proof of work puzzle. A block is solved when the
// sha256 hash of its header bytes followed by a big endian nonce is
// numerically below the target for the configured difficulty.
package pow

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/holiman/uint256"
)

// MaxDifficulty is the highest difficulty a target can be computed for.
const MaxDifficulty = 255

// checkInterval is how many attempts a worker makes between checks for
// cancellation.
const checkInterval = 1 << 12

// Set of error variables for mining and validation.
var (
	ErrExhausted         = errors.New("nonce space exhausted without meeting target")
	ErrTargetNotMet      = errors.New("hash does not meet the target")
	ErrHashMismatch      = errors.New("hash does not match the header and nonce")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// Target returns the value a solution's hash must be below. It has exactly one
// bit set at position 255-difficulty, so a solution needs at least difficulty
// leading zero bits. The difficulty must not exceed MaxDifficulty.
func Target(difficulty uint) digest.Hash {
	var t uint256.Int
	t.Lsh(uint256.NewInt(1), MaxDifficulty-difficulty)
	return digest.FromUint256(&t)
}

// =============================================================================

// Solution is the outcome of a successful search.
type Solution struct {
	Nonce uint64
	Hash  digest.Hash
}

// Config represents the settings for the proof of work engine.
type Config struct {
	Difficulty uint
	Workers    int                         // Number of goroutines searching the nonce space.
	MaxNonce   uint64                      // Exclusive upper bound, zero means math.MaxUint64.
	EvHandler  func(v string, args ...any) // Optional progress reporting.
}

// Engine performs and validates the proof of work for a fixed difficulty.
type Engine struct {
	difficulty uint
	target     digest.Hash
	workers    int
	maxNonce   uint64
	evHandler  func(v string, args ...any)
}

// New constructs an engine for the specified configuration.
func New(cfg Config) (*Engine, error) {
	if cfg.Difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: %d is above %d", ErrInvalidDifficulty, cfg.Difficulty, MaxDifficulty)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	maxNonce := cfg.MaxNonce
	if maxNonce == 0 {
		maxNonce = math.MaxUint64
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	e := Engine{
		difficulty: cfg.Difficulty,
		target:     Target(cfg.Difficulty),
		workers:    workers,
		maxNonce:   maxNonce,
		evHandler:  ev,
	}

	return &e, nil
}

// Difficulty returns the difficulty the engine mines at.
func (e *Engine) Difficulty() uint {
	return e.difficulty
}

// Target returns the value hashes must be below.
func (e *Engine) Target() digest.Hash {
	return e.target
}

// Hash returns the proof of work hash for the header and nonce.
func (e *Engine) Hash(header []byte, nonce uint64) digest.Hash {
	buf := make([]byte, len(header)+8)
	copy(buf, header)
	binary.BigEndian.PutUint64(buf[len(header):], nonce)

	return digest.Sum(buf)
}

// Validate re-hashes the header with the nonce and checks the result is below
// the target and matches the claimed hash.
func (e *Engine) Validate(header []byte, nonce uint64, hash digest.Hash) error {
	h := e.Hash(header, nonce)

	if !h.Less(e.target) {
		return fmt.Errorf("%w: hash[%s] difficulty[%d]", ErrTargetNotMet, h, e.difficulty)
	}

	if h != hash {
		return fmt.Errorf("%w: got[%s] exp[%s]", ErrHashMismatch, hash, h)
	}

	return nil
}

// Mine searches the nonce space for a hash below the target. The nonce space
// is partitioned across the workers, worker w trying the nonces that are
// congruent to w. The first solution found stops the other workers. The
// context error is returned if the search is cancelled and ErrExhausted if no
// nonce below MaxNonce solves the puzzle.
func (e *Engine) Mine(ctx context.Context, header []byte) (Solution, error) {
	e.evHandler("pow: Mine: MINING: started: difficulty[%d] workers[%d]", e.difficulty, e.workers)
	defer e.evHandler("pow: Mine: MINING: completed")

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	solutions := make(chan Solution, e.workers)
	var attempts atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(e.workers)

	for w := range e.workers {
		go func(start uint64) {
			defer wg.Done()

			sol, found := e.search(searchCtx, header, start, &attempts)
			if !found {
				return
			}

			solutions <- sol
			cancel()
		}(uint64(w))
	}

	// Can't return until all the G's are complete.
	wg.Wait()

	select {
	case sol := <-solutions:
		e.evHandler("pow: Mine: MINING: SOLVED: nonce[%d] hash[%s] attempts[%d]", sol.Nonce, sol.Hash, attempts.Load())
		return sol, nil
	default:
	}

	if err := ctx.Err(); err != nil {
		e.evHandler("pow: Mine: MINING: CANCELLED: attempts[%d]", attempts.Load())
		return Solution{}, err
	}

	e.evHandler("pow: Mine: MINING: EXHAUSTED: attempts[%d]", attempts.Load())
	return Solution{}, ErrExhausted
}

// search walks the nonces assigned to a single worker.
func (e *Engine) search(ctx context.Context, header []byte, start uint64, attempts *atomic.Uint64) (Solution, bool) {
	step := uint64(e.workers)

	buf := make([]byte, len(header)+8)
	copy(buf, header)
	nonceBuf := buf[len(header):]

	var tries uint64
	for nonce := start; nonce < e.maxNonce; {
		binary.BigEndian.PutUint64(nonceBuf, nonce)

		hash := digest.Sum(buf)
		if hash.Less(e.target) {
			attempts.Add(tries + 1)
			return Solution{Nonce: nonce, Hash: hash}, true
		}

		tries++
		if tries%checkInterval == 0 {
			if n := attempts.Add(checkInterval); n%(1<<24) < checkInterval {
				e.evHandler("pow: Mine: MINING: attempts[%d]", n)
			}
			tries = 0

			if ctx.Err() != nil {
				return Solution{}, false
			}
		}

		// Stop before the nonce would wrap around.
		if e.maxNonce-nonce <= step {
			break
		}
		nonce += step
	}

	attempts.Add(tries)
	return Solution{}, false
}
