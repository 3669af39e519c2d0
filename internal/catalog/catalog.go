package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/cache"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the sports list for a language.
type Fetcher interface {
	FetchSports(ctx context.Context, language string) ([]types.Sport, error)
}

// Config holds catalog service configuration.
type Config struct {
	Fetcher     Fetcher
	Cache       cache.Cache
	CacheTTL    time.Duration
	LoadTimeout time.Duration
	Language    func() string
	Logger      *zap.Logger
}

// Service loads the sports catalog and publishes its lifecycle.
type Service struct {
	fetcher     Fetcher
	cache       cache.Cache
	cacheTTL    time.Duration
	loadTimeout time.Duration
	language    func() string
	logger      *zap.Logger

	state *observable.Value[types.CatalogState]
	group singleflight.Group

	// generation is bumped by Reset and every accepted load request. State
	// publishes are conditional on it, so a superseded load never lands.
	generation atomic.Uint64

	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
}

// New creates an idle catalog service.
func New(cfg *Config) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if cfg.Language == nil {
		return nil, errors.New("language source cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	loadTimeout := cfg.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}

	return &Service{
		fetcher:     cfg.Fetcher,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		loadTimeout: loadTimeout,
		language:    cfg.Language,
		logger:      cfg.Logger,
		state:       observable.NewValue(types.CatalogState{Phase: types.CatalogIdle}),
	}, nil
}

// State returns the observable catalog lifecycle.
func (s *Service) State() *observable.Value[types.CatalogState] {
	return s.state
}

// RequestInitialLoad starts loading the catalog in the background. It does
// nothing while a load is in flight or after the catalog has loaded.
func (s *Service) RequestInitialLoad() {
	s.mu.Lock()
	phase := s.state.Get().Phase
	if s.inFlight || phase == types.CatalogLoaded {
		s.mu.Unlock()
		s.logger.Debug("catalog-load-request-ignored", zap.Stringer("phase", phase))
		return
	}

	generation := s.generation.Add(1)
	s.inFlight = true
	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	s.cancel = cancel
	language := s.language()
	s.mu.Unlock()

	if !s.publish(generation, types.CatalogState{Phase: types.CatalogLoading}) {
		cancel()
		s.logger.Debug("catalog-load-superseded", zap.String("language", language))
		return
	}

	LoadsStartedTotal.Inc()
	s.logger.Info("catalog-load-starting", zap.String("language", language))

	go s.load(ctx, cancel, generation, language)
}

func (s *Service) load(ctx context.Context, cancel context.CancelFunc, generation uint64, language string) {
	defer cancel()

	start := time.Now()
	sports, err := s.fetch(ctx, language)
	LoadDurationSeconds.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	if generation == s.generation.Load() {
		s.inFlight = false
		s.cancel = nil
	}
	s.mu.Unlock()

	next := types.CatalogState{Phase: types.CatalogLoaded, Sports: sports}
	if err != nil {
		next = types.CatalogState{Phase: types.CatalogFailed}
	}

	if !s.publish(generation, next) {
		s.logger.Debug("catalog-load-result-discarded", zap.String("language", language))
		return
	}

	if err != nil {
		LoadFailuresTotal.Inc()
		s.logger.Error("catalog-load-failed", zap.String("language", language), zap.Error(err))
		return
	}

	s.logger.Info("catalog-loaded",
		zap.String("language", language),
		zap.Int("sports", len(sports)),
		zap.Duration("duration", time.Since(start)))
}

// publish stores next only while generation is still current.
func (s *Service) publish(generation uint64, next types.CatalogState) bool {
	return s.state.UpdateIf(func(types.CatalogState) (types.CatalogState, bool) {
		return next, generation == s.generation.Load()
	})
}

// Sports returns the catalog for the active language, from cache when possible.
func (s *Service) Sports(ctx context.Context) ([]types.Sport, error) {
	return s.fetch(ctx, s.language())
}

// fetch serves from cache and collapses concurrent fetches per language.
func (s *Service) fetch(ctx context.Context, language string) ([]types.Sport, error) {
	key := cacheKey(language)

	cached, ok := s.cache.Get(key)
	if ok {
		sports, isSports := cached.([]types.Sport)
		if isSports {
			return sports, nil
		}
	}

	result, err, shared := s.group.Do(key, func() (interface{}, error) {
		sports, fetchErr := s.fetcher.FetchSports(ctx, language)
		if fetchErr != nil {
			return nil, fetchErr
		}
		s.cache.Set(key, sports, s.cacheTTL)
		return sports, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sports: %w", err)
	}
	if shared {
		SharedFetchesTotal.Inc()
	}

	return result.([]types.Sport), nil
}

// Reset cancels any in-flight load, drops cached catalogs and returns to Idle.
func (s *Service) Reset() {
	s.mu.Lock()
	generation := s.generation.Add(1)
	s.inFlight = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.cache.Clear()
	s.group.Forget(cacheKey(s.language()))
	s.logger.Info("catalog-reset")
	s.publish(generation, types.CatalogState{Phase: types.CatalogIdle})
}

func cacheKey(language string) string {
	return "sports:" + language
}
