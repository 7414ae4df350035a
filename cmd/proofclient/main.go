// Proof client - subscribes to a proof node and verifies each update
// locally, optionally cross-checking account state against a JSON-RPC
// endpoint.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/Sovereign-Labs/solana-proofs/bankhash"
	"github.com/Sovereign-Labs/solana-proofs/client"
	"github.com/Sovereign-Labs/solana-proofs/types"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var (
		nodeAddr  string
		wsURL     string
		rpcURL    string
		verbosity int
	)

	rootCmd := &cobra.Command{
		Use:   "proofclient",
		Short: "Slot-state proof verifier",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().IntVar(&verbosity, "verbosity", 3, "Log verbosity (0=crit .. 5=trace)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream updates from a proof node and verify each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbosity)

			var source bankhash.SnapshotSource
			if rpcURL != "" {
				source = client.NewRPCSnapshotSource(rpcURL)
			}

			if wsURL != "" {
				c, err := client.DialWS(wsURL)
				if err != nil {
					return err
				}
				defer c.Close()
				return watch(c.ReadUpdate, source)
			}

			c, err := client.Dial(nodeAddr)
			if err != nil {
				return err
			}
			defer c.Close()
			return watch(c.ReadUpdate, source)
		},
	}
	watchCmd.Flags().StringVar(&nodeAddr, "node", "127.0.0.1:10000", "Proof node TCP address")
	watchCmd.Flags().StringVar(&wsURL, "ws", "", "Proof node websocket URL (overrides --node)")
	watchCmd.Flags().StringVar(&rpcURL, "rpc", "", "JSON-RPC endpoint for account cross-checks")
	rootCmd.AddCommand(watchCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("proofclient %s (%s)\n", Version, Commit)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func watch(next func() (*types.Update, error), source bankhash.SnapshotSource) error {
	for {
		update, err := next()
		if err == io.EOF {
			log.Info("Stream closed by node")
			return nil
		}
		if err != nil {
			return err
		}
		report(update, source)
	}
}

func report(update *types.Update, source bankhash.SnapshotSource) {
	var result bankhash.Result
	if source != nil {
		var err error
		result, err = bankhash.VerifyAgainstSnapshots(update, source)
		if err != nil {
			log.Warn("Snapshot cross-check failed", "slot", update.Slot, "err", err)
		}
	} else {
		result = bankhash.Verify(update)
	}

	if result.OK() {
		log.Info("Update verified", "slot", update.Slot, "root", update.Root, "accounts", len(result.Accounts))
		return
	}
	for _, failure := range result.Failures() {
		log.Error("Account failed verification", "slot", update.Slot, "account", failure.Pubkey, "outcome", failure.Outcome)
	}
}

func setupLogging(verbosity int) {
	level := log.FromLegacyLevel(verbosity)
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}
