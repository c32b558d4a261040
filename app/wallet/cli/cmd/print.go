package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print every block from the apex back to genesis",
	Run:   printRun,
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func printRun(cmd *cobra.Command, args []string) {
	e, err := openChain()
	if err != nil {
		log.Fatal(err)
	}
	defer e.close()

	params := e.genesis.Params()

	iter := e.state.Iterate()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			log.Fatal(err)
		}
		printBlock(block, params)
	}
}

func printBlock(block database.Block, params address.Params) {
	fmt.Printf("============ Block %s ============\n", block.Hash)
	fmt.Printf("Prev:      %s\n", block.PrevHash)
	fmt.Printf("Time:      %s\n", time.Unix(int64(block.TimeStamp), 0).UTC().Format(time.RFC3339))
	fmt.Printf("Nonce:     %d\n", block.Nonce)

	for _, tx := range block.Trans {
		fmt.Printf("--- Transaction %s:\n", tx.ID)

		for i, in := range tx.Inputs {
			if tx.IsCoinbase() {
				fmt.Printf("     Input %d: coinbase %q\n", i, string(in.UnlockKey))
				continue
			}
			fmt.Printf("     Input %d: %s:%d from %s\n", i, in.PrevTxID, in.OutputIndex, params.FromPublicKey(in.UnlockKey))
		}

		for i, out := range tx.Outputs {
			fmt.Printf("     Output %d: %d to %s\n", i, out.Value, params.Encode(out.Lock))
		}
	}

	fmt.Println()
}
