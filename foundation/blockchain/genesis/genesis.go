// Package genesis maintains access to the constants a chain is created with.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time `json:"date"`
	Difficulty     uint      `json:"difficulty"`      // How difficult it needs to be to solve the work problem.
	MiningReward   uint64    `json:"mining_reward"`   // Reward for mining a block.
	Memo           string    `json:"memo"`            // Memo carried by the genesis coinbase.
	AddressVersion byte      `json:"address_version"` // Version byte prefixed to every address.
	ChecksumLength int       `json:"checksum_length"` // Number of checksum bytes in an address.
}

// Default returns the constants used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:           time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:     0,
		MiningReward:   100,
		Memo:           "The Times 03/Jan/2009 Chancellor on brink of second bailout for banks",
		AddressVersion: address.DefaultParams.Version,
		ChecksumLength: address.DefaultParams.ChecksumLength,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// defaults.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the constants are usable.
func (g Genesis) Validate() error {
	if g.Difficulty > pow.MaxDifficulty {
		return fmt.Errorf("difficulty %d: %w", g.Difficulty, pow.ErrInvalidDifficulty)
	}

	if g.ChecksumLength < 1 || g.ChecksumLength > 32 {
		return fmt.Errorf("checksum length %d out of range", g.ChecksumLength)
	}

	return nil
}

// Params returns the address constants.
func (g Genesis) Params() address.Params {
	return address.Params{
		Version:        g.AddressVersion,
		ChecksumLength: g.ChecksumLength,
	}
}
