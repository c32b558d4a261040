package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.ecdsa>...",
	Short: "Import key files as wallets",
	Args:  cobra.MinimumNArgs(1),
	Run:   importRun,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importRun(cmd *cobra.Command, args []string) {
	ws, _, closeFn, err := openWallets()
	if err != nil {
		log.Fatal(err)
	}
	defer closeFn()

	for _, path := range args {
		addr, err := ws.Import(path)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %s\n", path, addr)
	}
}
