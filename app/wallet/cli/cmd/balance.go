package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var balanceAddress string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of an address.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balanceAddress, "address", "a", "", "Address to get the balance for.")
	balanceCmd.MarkFlagRequired("address")
}

func balanceRun(cmd *cobra.Command, args []string) {
	e, err := openChain()
	if err != nil {
		log.Fatal(err)
	}
	defer e.close()

	balance, err := e.state.Balance(balanceAddress)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Balance of '%s': %d\n", balanceAddress, balance)
}
