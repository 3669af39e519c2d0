package boot

import (
	"context"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
)

// ReachabilityMonitor reports coarse network availability.
type ReachabilityMonitor interface {
	// Start begins monitoring. It is safe to call on an already running monitor.
	Start() error
	Reachability() *observable.Value[types.Reachability]
}

// MaintenanceFeed delivers the server maintenance kill-switch.
type MaintenanceFeed interface {
	Maintenance() *observable.Value[types.Maintenance]
}

// VersionFeed delivers server-advertised version bounds.
type VersionFeed interface {
	Version() *observable.Value[types.VersionInfo]
}

// ConnectionGateway connects the market-data and account channels.
type ConnectionGateway interface {
	Connect()
	Disconnect()
	SetLanguage(code string)
	MarketDataState() *observable.Value[types.ConnectionState]
	AccountState() *observable.Value[types.ConnectionState]
}

// CatalogLoader loads the sports catalog.
type CatalogLoader interface {
	RequestInitialLoad()
	Reset()
	State() *observable.Value[types.CatalogState]
}

// UserSessionStore holds the logged-in user, if any.
type UserSessionStore interface {
	User() *observable.Value[*types.UserProfile]
	Logout()
}

// Starter is a fire-and-forget service started when services begin connecting.
type Starter interface {
	Start()
}

// FavoritesRefresher refreshes the logged-in user's favorites.
type FavoritesRefresher interface {
	Refresh()
}

// BettingSessionManager keeps the betting session alive once services connect.
type BettingSessionManager interface {
	Start()
}

// Localizer owns the active locale.
type Localizer interface {
	SetLanguage(code string) error
	Language() string
}

// HealthCheck probes the backend before services connect.
type HealthCheck func(ctx context.Context) error

// Dependencies is the collaborator graph handed to an Orchestrator.
type Dependencies struct {
	Reachability   ReachabilityMonitor
	Maintenance    MaintenanceFeed
	Version        VersionFeed
	Gateway        ConnectionGateway
	Catalog        CatalogLoader
	UserSession    UserSessionStore
	Configuration  Starter
	Theme          Starter
	Favorites      FavoritesRefresher
	BettingSession BettingSessionManager // optional
	Localizer      Localizer             // used by the restart controller
	HealthCheck    HealthCheck           // optional
}

func (d *Dependencies) validate() error {
	switch {
	case d.Reachability == nil:
		return errMissing("reachability monitor")
	case d.Maintenance == nil:
		return errMissing("maintenance feed")
	case d.Version == nil:
		return errMissing("version feed")
	case d.Gateway == nil:
		return errMissing("connection gateway")
	case d.Catalog == nil:
		return errMissing("catalog loader")
	case d.UserSession == nil:
		return errMissing("user session store")
	case d.Configuration == nil:
		return errMissing("configuration service")
	case d.Theme == nil:
		return errMissing("theme service")
	case d.Favorites == nil:
		return errMissing("favorites service")
	}
	return nil
}
