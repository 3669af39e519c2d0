package preferences

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// FavoritesConfig holds favorites service configuration.
type FavoritesConfig struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
	User       func() *types.UserProfile
	Logger     *zap.Logger
}

// FavoritesService keeps the logged-in user's favorite event IDs.
type FavoritesService struct {
	url     string
	client  *http.Client
	timeout time.Duration
	user    func() *types.UserProfile
	logger  *zap.Logger

	favorites *observable.Value[[]string]
}

// NewFavoritesService creates a favorites service with an empty list.
func NewFavoritesService(cfg FavoritesConfig) (*FavoritesService, error) {
	if cfg.URL == "" {
		return nil, errors.New("url cannot be empty")
	}
	if cfg.User == nil {
		return nil, errors.New("user source cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &FavoritesService{
		url:       cfg.URL,
		client:    client,
		timeout:   timeout,
		user:      cfg.User,
		logger:    cfg.Logger,
		favorites: observable.NewValue[[]string](nil),
	}, nil
}

// Favorites returns the observable favorite event IDs.
func (s *FavoritesService) Favorites() *observable.Value[[]string] {
	return s.favorites
}

// Refresh reloads the favorites in the background.
func (s *FavoritesService) Refresh() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		err := s.Load(ctx)
		if err != nil {
			s.logger.Warn("favorites-refresh-failed", zap.Error(err))
		}
	}()
}

// Load fetches the favorites of the current user.
func (s *FavoritesService) Load(ctx context.Context) error {
	user := s.user()
	if user == nil {
		return types.ErrNoUserSession
	}

	start := time.Now()
	params := url.Values{}
	params.Add("user", user.UserID)

	var ids []string
	err := getJSON(ctx, s.client, "favorites", s.url+"?"+params.Encode(), &ids)
	FetchDurationSeconds.WithLabelValues("favorites").Observe(time.Since(start).Seconds())
	if err != nil {
		FetchErrorsTotal.WithLabelValues("favorites").Inc()
		return err
	}

	s.favorites.Set(ids)
	s.logger.Info("favorites-refreshed", zap.String("user-id", user.UserID), zap.Int("count", len(ids)))
	return nil
}
