// Proof node - accumulates ledger notifications into per-slot bank hash
// proofs and streams them to subscribers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/Sovereign-Labs/solana-proofs/config"
	"github.com/Sovereign-Labs/solana-proofs/geyser"
	"github.com/Sovereign-Labs/solana-proofs/node"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var (
		configPath string
		replayPath string
		verbosity  int
	)

	rootCmd := &cobra.Command{
		Use:   "proofnode",
		Short: "Slot-state proof node",
		Long: `Accumulates account writes, transaction counts and block metadata per
slot, reconstructs the bank hash at confirmation and serves merkle inclusion
proofs for a monitored set of accounts over TCP and websocket.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbosity)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			n, err := node.New(cfg)
			if err != nil {
				return err
			}
			if err := n.Start(); err != nil {
				return err
			}
			defer n.Stop()

			if replayPath != "" {
				return replay(n, replayPath)
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			log.Info("Shutting down")
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&configPath, "config", "config.json", "Path to the node configuration file")
	rootCmd.Flags().StringVar(&replayPath, "replay", "", "Replay a JSON-lines event capture instead of waiting for signals")
	rootCmd.Flags().IntVar(&verbosity, "verbosity", 3, "Log verbosity (0=crit .. 5=trace)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("proofnode %s (%s)\n", Version, Commit)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// replay drives the node from a captured event stream. End-of-startup is
// signalled before the first event so the startup gate can arm from the
// capture itself.
func replay(n *node.Node, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := n.NotifyEndOfStartup(); err != nil {
		return err
	}
	if err := geyser.Replay(f, n); err != nil {
		return err
	}
	log.Info("Replay finished", "file", path)
	return nil
}

func setupLogging(verbosity int) {
	level := log.FromLegacyLevel(verbosity)
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}
