package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mselser95/sportsbook-boot/internal/boot"
	"github.com/mselser95/sportsbook-boot/internal/catalog"
	"github.com/mselser95/sportsbook-boot/internal/gateway"
	"github.com/mselser95/sportsbook-boot/internal/localization"
	"github.com/mselser95/sportsbook-boot/internal/preferences"
	"github.com/mselser95/sportsbook-boot/internal/reachability"
	"github.com/mselser95/sportsbook-boot/internal/session"
	"github.com/mselser95/sportsbook-boot/internal/settings"
	"github.com/mselser95/sportsbook-boot/internal/storage"
	"github.com/mselser95/sportsbook-boot/pkg/cache"
	"github.com/mselser95/sportsbook-boot/pkg/config"
	"github.com/mselser95/sportsbook-boot/pkg/healthprobe"
	"github.com/mselser95/sportsbook-boot/pkg/httpserver"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/mselser95/sportsbook-boot/pkg/websocket"
	"go.uber.org/zap"
)

const journalBufferSize = 256

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: setupHealthChecker(),
		journal:       make(chan *types.Transition, journalBufferSize),
		ctx:           ctx,
		cancel:        cancel,
	}

	err := a.setup(opts)
	if err != nil {
		cancel()
		if a.storage != nil {
			_ = a.storage.Close()
		}
		if a.cache != nil {
			a.cache.Close()
		}
		return nil, err
	}

	return a, nil
}

func (a *App) setup(opts *Options) error {
	var err error

	a.cache, err = setupCache(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}

	language := a.cfg.DefaultLanguage
	if opts.Language != "" {
		language = opts.Language
	}
	a.localizer, err = localization.New(localization.Config{
		Supported: a.cfg.SupportedLanguages,
		Initial:   language,
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup localizer: %w", err)
	}

	a.sessions, err = session.New(a.logger)
	if err != nil {
		return fmt.Errorf("setup session store: %w", err)
	}

	a.reachability, err = reachability.New(reachability.Config{
		ProbeURL:     a.cfg.ReachabilityProbeURL,
		Interval:     a.cfg.ReachabilityInterval,
		ProbeTimeout: a.cfg.ReachabilityProbeTimeout,
		Logger:       a.logger,
	})
	if err != nil {
		return fmt.Errorf("setup reachability monitor: %w", err)
	}

	err = a.setupSettings()
	if err != nil {
		return fmt.Errorf("setup settings feed: %w", err)
	}

	err = a.setupGateway()
	if err != nil {
		return fmt.Errorf("setup gateway: %w", err)
	}

	err = a.setupServices()
	if err != nil {
		return fmt.Errorf("setup services: %w", err)
	}

	a.storage, err = setupStorage(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}

	a.controller, err = boot.NewController(boot.Config{
		InstalledVersion:        a.cfg.InstalledVersion,
		VersionSettleDelay:      a.cfg.VersionSettleDelay,
		MaintenanceCheckTimeout: a.cfg.MaintenanceCheckTimeout,
		HealthCheckTimeout:      a.cfg.HealthCheckTimeout,
		Logger:                  a.logger,
	}, boot.Dependencies{
		Reachability:  a.reachability,
		Maintenance:   a.settingsFeed,
		Version:       a.settingsFeed,
		Gateway:       a.gateway,
		Catalog:       a.catalog,
		UserSession:   a.sessions,
		Configuration: a.configuration,
		Theme:         a.theme,
		Favorites:     a.favorites,
		Localizer:     a.localizer,
		HealthCheck:   a.reachability.Check,
	})
	if err != nil {
		return fmt.Errorf("setup boot controller: %w", err)
	}

	a.httpServer = setupHTTPServer(a.cfg, a.logger, a.healthChecker, a.controller, a.catalog)

	return nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	controller httpserver.AppController,
	sports httpserver.SportsSource,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Controller:    controller,
		Sports:        sports,
		UsableWait:    cfg.UsableWaitTimeout,
	})
}

func setupCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		Name:        "app",
		NumCounters: cfg.CacheNumCounters,
		MaxCost:     cfg.CacheMaxCost,
		BufferItems: 64,
		Logger:      logger,
	})
}

func (a *App) newChannel(name, url string, handler websocket.Handler) *websocket.Manager {
	return websocket.New(websocket.Config{
		Channel:               name,
		URL:                   url,
		DialTimeout:           a.cfg.WSDialTimeout,
		PingInterval:          a.cfg.WSPingInterval,
		ReconnectInitialDelay: a.cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     a.cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  a.cfg.WSReconnectBackoffMult,
		Handler:               handler,
		Logger:                a.logger,
	})
}

func (a *App) setupSettings() error {
	feed, err := settings.New(a.logger)
	if err != nil {
		return err
	}

	a.settingsWS = a.newChannel("settings", a.cfg.SettingsWSURL, feed.HandleMessage)
	feed.Attach(a.settingsWS)
	a.settingsFeed = feed

	return nil
}

func (a *App) setupGateway() error {
	// The handlers run only after Connect, by which time gw is set.
	var gw *gateway.Gateway
	a.marketWS = a.newChannel("market-data", a.cfg.MarketDataWSURL, func(msg []byte) {
		gw.HandleMarketMessage(msg)
	})
	a.accountWS = a.newChannel("account", a.cfg.AccountWSURL, func(msg []byte) {
		gw.HandleAccountMessage(msg)
	})

	gw, err := gateway.New(gateway.Config{
		MarketData: a.marketWS,
		Account:    a.accountWS,
		Sessions:   a.sessions,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	gw.SetLanguage(a.localizer.Language())
	a.gateway = gw

	return nil
}

func (a *App) setupServices() error {
	var err error
	httpClient := &http.Client{Timeout: a.cfg.HTTPTimeout}

	a.catalog, err = catalog.New(&catalog.Config{
		Fetcher:     catalog.NewClient(a.cfg.CatalogURL, a.logger),
		Cache:       a.cache,
		CacheTTL:    a.cfg.CatalogCacheTTL,
		LoadTimeout: a.cfg.HTTPTimeout,
		Language:    a.localizer.Language,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}

	a.configuration, err = preferences.NewDocumentService(preferences.DocumentConfig{
		Name:       "configuration",
		URL:        a.cfg.ConfigurationURL,
		HTTPClient: httpClient,
		Cache:      a.cache,
		CacheTTL:   a.cfg.CatalogCacheTTL,
		Timeout:    a.cfg.HTTPTimeout,
		Language:   a.localizer.Language,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("create configuration service: %w", err)
	}

	a.theme, err = preferences.NewDocumentService(preferences.DocumentConfig{
		Name:       "theme",
		URL:        a.cfg.ThemeURL,
		HTTPClient: httpClient,
		Cache:      a.cache,
		CacheTTL:   a.cfg.CatalogCacheTTL,
		Timeout:    a.cfg.HTTPTimeout,
		Language:   a.localizer.Language,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("create theme service: %w", err)
	}

	a.favorites, err = preferences.NewFavoritesService(preferences.FavoritesConfig{
		URL:        a.cfg.FavoritesURL,
		HTTPClient: httpClient,
		Timeout:    a.cfg.HTTPTimeout,
		User:       a.sessions.User().Get,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("create favorites service: %w", err)
	}

	return nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}
