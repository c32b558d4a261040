package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Print the address of every wallet",
	Run:   addressesRun,
}

func init() {
	rootCmd.AddCommand(addressesCmd)
}

func addressesRun(cmd *cobra.Command, args []string) {
	ws, _, closeFn, err := openWallets()
	if err != nil {
		log.Fatal(err)
	}
	defer closeFn()

	addrs, err := ws.Addresses()
	if err != nil {
		log.Fatal(err)
	}

	for _, addr := range addrs {
		fmt.Println(addr)
	}
}
