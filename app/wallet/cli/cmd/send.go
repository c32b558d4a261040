package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value and mine it into a block",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Address to send from, its wallet must be held locally.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Value to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) {
	e, err := openChain()
	if err != nil {
		log.Fatal(err)
	}
	defer e.close()

	// Mining can take a while, allow it to be interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	block, err := e.state.Send(ctx, from, to, amount, e.wallets)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Success! block %s\n", block.Hash)
}
