package session

import (
	"errors"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Store holds the logged-in user and announces server-side expirations.
type Store struct {
	logger      *zap.Logger
	user        *observable.Value[*types.UserProfile]
	expirations *observable.Value[*types.SessionExpiration]
	now         func() time.Time
}

// New creates a store with no logged-in user.
func New(logger *zap.Logger) (*Store, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Store{
		logger:      logger,
		user:        observable.NewValue[*types.UserProfile](nil),
		expirations: observable.NewValue[*types.SessionExpiration](nil),
		now:         time.Now,
	}, nil
}

// User returns the observable logged-in user; nil means logged out.
func (s *Store) User() *observable.Value[*types.UserProfile] {
	return s.user
}

// Expirations returns the observable of the latest session expiration.
func (s *Store) Expirations() *observable.Value[*types.SessionExpiration] {
	return s.expirations
}

// Login publishes profile as the current user.
func (s *Store) Login(profile *types.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return errors.New("profile must have a user id")
	}

	s.user.Set(profile)
	s.logger.Info("user-logged-in", zap.String("user-id", profile.UserID))
	return nil
}

// Logout clears the current user. It does nothing when already logged out.
func (s *Store) Logout() {
	prev := s.user.Get()
	if prev == nil {
		return
	}

	s.user.Set(nil)
	s.logger.Info("user-logged-out", zap.String("user-id", prev.UserID))
}

// Expire announces that the server ended the current user's session.
// The user stays logged in until a subscriber calls Logout.
func (s *Store) Expire(reason string) error {
	current := s.user.Get()
	if current == nil {
		return types.ErrNoUserSession
	}

	ExpirationsTotal.Inc()
	s.logger.Warn("user-session-expired",
		zap.String("user-id", current.UserID),
		zap.String("reason", reason))

	s.expirations.Set(&types.SessionExpiration{
		UserID:    current.UserID,
		Reason:    reason,
		ExpiredAt: s.now(),
	})
	return nil
}
