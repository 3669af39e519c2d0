package cmd

import (
	"fmt"
	"os"

	"github.com/mselser95/sportsbook-boot/pkg/versioncheck"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var checkVersionCmd = &cobra.Command{
	Use:   "check-version",
	Short: "Show the update decision for a set of version bounds",
	Long: `Compares the installed version against the server-required and
server-current versions and prints the resulting decision:
none, update_available, update_required or ignore.`,
	RunE: runCheckVersion,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(checkVersionCmd)
	checkVersionCmd.Flags().StringP("installed", "i", "", "Installed version (defaults to APP_VERSION)")
	checkVersionCmd.Flags().StringP("required", "r", "", "Minimum version required by the server")
	checkVersionCmd.Flags().StringP("current", "c", "", "Latest version advertised by the server")
}

func runCheckVersion(cmd *cobra.Command, args []string) error {
	installed, _ := cmd.Flags().GetString("installed")
	required, _ := cmd.Flags().GetString("required")
	current, _ := cmd.Flags().GetString("current")

	if installed == "" {
		installed = os.Getenv("APP_VERSION")
	}
	if installed == "" {
		return fmt.Errorf("installed version not set: use --installed or APP_VERSION")
	}

	decision, err := versioncheck.Compare(installed, required, current)
	if err != nil {
		return fmt.Errorf("compare versions: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "installed=%s required=%s current=%s decision=%s\n",
		installed, required, current, decision)

	return nil
}
