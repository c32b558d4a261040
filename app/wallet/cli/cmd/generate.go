package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	keyName string
	keyPath string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new wallet",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&keyName, "name", "n", "", "Also write the key to <path>/<name>.ecdsa for the name service.")
	generateCmd.Flags().StringVarP(&keyPath, "path", "p", "zblock/keys/", "Directory key files are written to.")
}

func generateRun(cmd *cobra.Command, args []string) {
	ws, _, closeFn, err := openWallets()
	if err != nil {
		log.Fatal(err)
	}
	defer closeFn()

	addr, err := ws.Create()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(addr)

	if keyName == "" {
		return
	}

	path, err := ws.Export(addr, keyPath, keyName)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(path)
}
