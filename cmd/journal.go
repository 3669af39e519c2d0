package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/mselser95/sportsbook-boot/internal/storage"
	"github.com/mselser95/sportsbook-boot/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent state transitions from the Postgres journal",
	RunE:  runJournal,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntP("limit", "n", 20, "Maximum number of transitions to show")
}

func runJournal(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := godotenv.Load()
	if err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.InstalledVersion)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	pg, err := storage.NewPostgresStorage(&storage.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("connect journal: %w", err)
	}
	defer pg.Close()

	rows, err := pg.RecentTransitions(ctx, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No transitions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIME\tGEN\tSESSION\tSTATE\tDETAIL\n")
	fmt.Fprintf(w, "----\t---\t-------\t-----\t------\n")

	for i := range rows {
		row := &rows[i]

		at := "-"
		if row.OccurredAt.Valid {
			at = row.OccurredAt.Time.Format(time.RFC3339)
		}

		detail := row.ToMessage
		if row.ToError != "" {
			detail = row.ToError
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", at, row.Generation, row.SessionID, row.ToState, detail)
	}

	w.Flush()

	return nil
}
