package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mselser95/sportsbook-boot/internal/app"
	"github.com/mselser95/sportsbook-boot/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the boot orchestrator",
	Long: `Starts the orchestrator, which will:
1. Watch network reachability
2. Gate on the maintenance kill-switch from the settings socket
3. Connect the market-data and account channels and load the sports catalog
4. Keep watching maintenance and version bounds once ready

Use --language to boot in a language other than DEFAULT_LANGUAGE.`,
	RunE: runOrchestrator,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("language", "l", "", "Initial language (BCP 47 code)")
}

func runOrchestrator(cmd *cobra.Command, args []string) error {
	// Load .env
	err := godotenv.Load()
	if err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger(cfg.LogLevel, cfg.InstalledVersion)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Get flags
	language, _ := cmd.Flags().GetString("language")

	application, err := app.New(cfg, logger, &app.Options{Language: language})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
