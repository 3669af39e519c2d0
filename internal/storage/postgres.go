package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

const insertTransitionQuery = `
		INSERT INTO app_state_transitions (
			id, session_id, generation,
			from_state, from_message, from_error,
			to_state, to_message, to_error,
			occurred_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

// StoreTransition stores a transition in PostgreSQL.
func (p *PostgresStorage) StoreTransition(ctx context.Context, tr *types.Transition) error {
	_, err := p.db.ExecContext(ctx, insertTransitionQuery,
		tr.ID,
		tr.SessionID,
		tr.Generation,
		tr.From.Kind.String(),
		tr.From.Message,
		string(tr.From.Error),
		tr.To.Kind.String(),
		tr.To.Message,
		string(tr.To.Error),
		tr.At,
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}

	p.logger.Debug("transition-stored",
		zap.String("transition-id", tr.ID),
		zap.String("session", tr.SessionID),
		zap.Stringer("to", tr.To))

	return nil
}

const recentTransitionsQuery = `
		SELECT id, session_id, generation, to_state, to_message, to_error, occurred_at
		FROM app_state_transitions
		ORDER BY occurred_at DESC
		LIMIT $1
	`

// TransitionRow is a journal entry as read back for reporting.
type TransitionRow struct {
	ID         string
	SessionID  string
	Generation int
	ToState    string
	ToMessage  string
	ToError    string
	OccurredAt sql.NullTime
}

// RecentTransitions returns the latest limit transitions, newest first.
func (p *PostgresStorage) RecentTransitions(ctx context.Context, limit int) ([]TransitionRow, error) {
	rows, err := p.db.QueryContext(ctx, recentTransitionsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionRow
	for rows.Next() {
		var row TransitionRow
		err = rows.Scan(&row.ID, &row.SessionID, &row.Generation,
			&row.ToState, &row.ToMessage, &row.ToError, &row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
