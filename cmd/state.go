package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the application state of a running instance",
	RunE:  runState,
}

//nolint:gochecknoglobals // Cobra boilerplate
var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Restart the boot sequence of a running instance from the error state",
	RunE:  runRetry,
}

//nolint:gochecknoglobals // Cobra boilerplate
var dismissUpdateCmd = &cobra.Command{
	Use:   "dismiss-update",
	Short: "Dismiss the optional update prompt of a running instance",
	RunE:  runDismissUpdate,
}

//nolint:gochecknoglobals // Cobra boilerplate
var setLanguageCmd = &cobra.Command{
	Use:   "set-language <code>",
	Short: "Restart a running instance in another language",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetLanguage,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(stateCmd, retryCmd, dismissUpdateCmd, setLanguageCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	return printControlCall(cmd, http.MethodGet, "/api/state", nil)
}

func runRetry(cmd *cobra.Command, args []string) error {
	return printControlCall(cmd, http.MethodPost, "/api/retry", nil)
}

func runDismissUpdate(cmd *cobra.Command, args []string) error {
	return printControlCall(cmd, http.MethodPost, "/api/update/dismiss", nil)
}

func runSetLanguage(cmd *cobra.Command, args []string) error {
	return printControlCall(cmd, http.MethodPost, "/api/language", map[string]string{"language": args[0]})
}

func printControlCall(cmd *cobra.Command, method, path string, body interface{}) error {
	state, err := callControlAPI(cmd, method, path, body)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), state.String())
	return nil
}
