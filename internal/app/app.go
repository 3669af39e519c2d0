package app

import (
	"context"
	"sync"

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
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/mselser95/sportsbook-boot/pkg/websocket"
	"go.uber.org/zap"
)

// App wires the boot controller to its concrete collaborators.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server

	cache         cache.Cache
	reachability  *reachability.Monitor
	settingsWS    *websocket.Manager
	settingsFeed  *settings.Feed
	marketWS      *websocket.Manager
	accountWS     *websocket.Manager
	gateway       *gateway.Gateway
	catalog       *catalog.Service
	configuration *preferences.DocumentService
	theme         *preferences.DocumentService
	favorites     *preferences.FavoritesService
	sessions      *session.Store
	localizer     *localization.Localizer
	controller    *boot.Controller
	storage       storage.Storage

	journal chan *types.Transition
	subs    []observable.Subscription

	// Relay-owned. Only touched from the controller subscription.
	last           boot.Snapshot
	monitoredGen   int
	monitorStarted bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// Language overrides the configured default language.
	Language string
}
