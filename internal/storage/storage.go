package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/sportsbook-boot/pkg/types"
)

// Storage is the interface for the AppState transition journal.
type Storage interface {
	// StoreTransition records one published state change.
	StoreTransition(ctx context.Context, tr *types.Transition) error

	// Close closes the storage connection.
	Close() error
}

// NewTransition builds a journal entry with a fresh ID.
func NewTransition(sessionID string, generation int, from, to types.AppState, at time.Time) *types.Transition {
	return &types.Transition{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Generation: generation,
		From:       from,
		To:         to,
		At:         at,
	}
}
