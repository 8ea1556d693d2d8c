// Package main is the entry point for the contract engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rogers-f/contract-engine/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "contractd",
		Short:         "Contract engine for the trading game",
		Version:       fmt.Sprintf("%s (commit=%s, built=%s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `contractd generates contract boards, binds ships to accepted contracts
and advances them on a fixed tick until they complete.`,
	}
	rootCmd.PersistentFlags().String("config", "", "path to configuration JSON file (env: CONTRACTS_CONFIG)")

	rootCmd.AddCommand(cli.ServeCmd(version))
	rootCmd.AddCommand(cli.BoardCmd())
	rootCmd.AddCommand(cli.MissionsCmd())
	rootCmd.AddCommand(cli.AcceptCmd())
	rootCmd.AddCommand(cli.ResolveCmd())
	rootCmd.AddCommand(cli.PruneCmd())
	rootCmd.AddCommand(cli.FleetCmd())
	rootCmd.AddCommand(cli.RepairCmd())
	rootCmd.AddCommand(cli.LocationsCmd())
	rootCmd.AddCommand(cli.PlayerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
