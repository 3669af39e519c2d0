package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by printing transitions.
type ConsoleStorage struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    os.Stdout,
		logger: logger,
	}
}

// StoreTransition prints a one-line summary of the transition.
func (c *ConsoleStorage) StoreTransition(ctx context.Context, tr *types.Transition) error {
	_, err := fmt.Fprintf(c.out, "%s  gen=%d session=%s  %s -> %s\n",
		tr.At.Format("2006-01-02 15:04:05.000"),
		tr.Generation,
		shortID(tr.SessionID),
		tr.From,
		tr.To)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
