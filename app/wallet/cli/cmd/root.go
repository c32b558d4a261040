// Package cmd contains the wallet and chain command line app. Commands work
// directly on the local database files, so the node must not be running.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	blocksPath     string
	walletsPath    string
	genesisFile    string
	genesisAddress string
	beneficiary    string
	verbose        bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&blocksPath, "blocks", "b", "zblock/blocks.db", "Path to the blocks database.")
	rootCmd.PersistentFlags().StringVarP(&walletsPath, "wallets", "w", "zblock/wallets.db", "Path to the wallets database.")
	rootCmd.PersistentFlags().StringVarP(&genesisFile, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	rootCmd.PersistentFlags().StringVar(&genesisAddress, "genesis-address", "", "Address paid the genesis reward when the chain is created.")
	rootCmd.PersistentFlags().StringVar(&beneficiary, "beneficiary", "", "Address paid a reward for every block mined.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print chain events.")
}

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Wallets and chain tooling for the ledger",
}

// Execute runs the command line app.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// =============================================================================

// env holds everything a command needs open.
type env struct {
	genesis genesis.Genesis
	wallets *wallet.Store
	state   *state.State
	close   func()
}

// openWallets opens the wallets database only.
func openWallets() (*wallet.Store, genesis.Genesis, func(), error) {
	gen, err := genesis.Load(genesisFile)
	if err != nil {
		return nil, genesis.Genesis{}, nil, err
	}

	db, err := bolt.New(walletsPath)
	if err != nil {
		return nil, genesis.Genesis{}, nil, err
	}

	ws, err := wallet.NewStore(db, gen.Params())
	if err != nil {
		db.Close()
		return nil, genesis.Genesis{}, nil, err
	}

	return ws, gen, func() { db.Close() }, nil
}

// openChain opens the wallets and the chain, creating the chain if needed.
func openChain() (env, error) {
	ws, gen, closeWallets, err := openWallets()
	if err != nil {
		return env{}, err
	}

	db, err := bolt.New(blocksPath)
	if err != nil {
		closeWallets()
		return env{}, err
	}

	genesisAddr := func() (string, error) {
		if genesisAddress != "" {
			return genesisAddress, nil
		}

		addr, err := ws.Create()
		if err != nil {
			return "", err
		}
		fmt.Printf("created genesis wallet %s\n", addr)
		return addr, nil
	}

	var ev state.EventHandler
	if verbose {
		ev = func(v string, args ...any) {
			fmt.Printf(v+"\n", args...)
		}
	}

	st, err := state.New(state.Config{
		Storage:        db,
		Genesis:        gen,
		Beneficiary:    beneficiary,
		GenesisAddress: genesisAddr,
		EvHandler:      ev,
	})
	if err != nil {
		db.Close()
		closeWallets()
		return env{}, err
	}

	e := env{
		genesis: gen,
		wallets: ws,
		state:   st,
		close: func() {
			db.Close()
			closeWallets()
		},
	}

	return e, nil
}
