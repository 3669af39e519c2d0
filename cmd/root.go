package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "sportsbook-boot",
	Short: "Sportsbook boot and runtime state orchestrator",
	Long: `Sportsbook boot and runtime state orchestrator.

Derives a single application state (splash, offline, maintenance, forced or
optional update, connecting, ready, error) from network reachability, the
business settings socket, the market-data and account channels and the sports
catalog. Exposes the state and its control actions over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "Base URL of a running instance (for client commands)")
}
