package boot

import (
	"context"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Initialize starts the boot sequence. Calling it again within the same
// session has no effect.
func (o *Orchestrator) Initialize() {
	o.command("initialize", o.initialize)
}

// RetryFromError discards the failed session and boots again from the top.
// It does nothing unless the current state is Error.
func (o *Orchestrator) RetryFromError() {
	o.command("retry-from-error", func() {
		current := o.state.Get()
		if !current.IsError() {
			o.logger.Debug("retry-ignored-not-in-error", zap.Stringer("state", current))
			return
		}

		RetriesTotal.WithLabelValues(string(current.Error)).Inc()
		sess := o.replaceSession()
		o.resetBootFields()

		o.logger.Info("retrying-boot",
			zap.String("error", string(current.Error)),
			zap.String("session", sess.ID().String()))

		o.initialize()
	})
}

// DismissAvailableUpdate recomputes the post-boot state after the user
// dismisses the update prompt. The catalog is not fetched again.
func (o *Orchestrator) DismissAvailableUpdate() {
	o.command("dismiss-available-update", func() {
		current := o.state.Get()
		if !current.Is(types.StateUpdateAvailable) {
			o.logger.Debug("dismiss-ignored-no-update-available", zap.Stringer("state", current))
			return
		}

		o.dismissedCurrent = o.settledCurrent
		o.logger.Info("available-update-dismissed", zap.String("server-current", o.dismissedCurrent))

		o.loadServicesInParallel()
	})
}

func (o *Orchestrator) initialize() {
	if o.initialized {
		o.logger.Debug("initialize-ignored-already-initialized")
		return
	}
	o.initialized = true

	o.logger.Info("boot-starting",
		zap.String("session", o.currentSession().ID().String()),
		zap.String("installed-version", o.cfg.InstalledVersion))

	o.setState(types.SplashLoading())

	err := o.deps.Reachability.Start()
	if err != nil {
		o.logger.Error("reachability-monitor-start-failed", zap.Error(err))
		o.fail(types.ErrorConfigurationLoadFailed)
		return
	}

	watch(o, subReachability, o.deps.Reachability.Reachability(), o.handleReachability)
}

func (o *Orchestrator) handleReachability(r types.Reachability) {
	prev := o.reachability
	o.reachability = r

	switch r {
	case types.Unreachable:
		o.untrack(bootWave...)
		o.setState(types.NetworkUnavailable())

	case types.Reachable:
		if prev == types.Reachable {
			return
		}
		if o.pastServicesConnecting() {
			o.logger.Debug("reachable-ignored-boot-complete", zap.Stringer("state", o.state.Get()))
			return
		}
		o.startBootMaintenanceCheck()
	}
}

// startBootMaintenanceCheck gates parallel loading on the maintenance flag
// resolving to disabled.
func (o *Orchestrator) startBootMaintenanceCheck() {
	o.logger.Debug("boot-maintenance-check-starting")

	watch(o, subBootMaintenance, o.deps.Maintenance.Maintenance(), o.handleBootMaintenance)

	if o.cfg.MaintenanceCheckTimeout > 0 {
		o.timeout(subMaintenanceTimeout, o.cfg.MaintenanceCheckTimeout, func() {
			o.logger.Warn("boot-maintenance-check-timed-out",
				zap.Duration("timeout", o.cfg.MaintenanceCheckTimeout))
			o.untrack(subBootMaintenance)
			o.fail(types.ErrorMaintenanceModeCheckFailed)
		})
	}
}

func (o *Orchestrator) handleBootMaintenance(m types.Maintenance) {
	switch m.Status {
	case types.MaintenanceEnabled:
		o.untrack(subMaintenanceTimeout)
		o.setState(types.MaintenanceMode(m.Message))

	case types.MaintenanceDisabled:
		o.untrack(subBootMaintenance, subMaintenanceTimeout)
		o.loadServicesInParallel()
	}
}

// loadServicesInParallel starts the fire-and-forget services and waits for
// the catalog while the gateway connects.
func (o *Orchestrator) loadServicesInParallel() {
	o.setState(types.ServicesConnecting())

	o.catalogInFlight = false
	o.favoritesRefreshed = false

	o.deps.Configuration.Start()
	o.deps.Theme.Start()

	if o.deps.HealthCheck == nil {
		o.connectServices()
		return
	}

	o.runHealthCheck()
}

func (o *Orchestrator) runHealthCheck() {
	sess := o.currentSession()
	o.seq++
	token := o.seq
	o.tokens[subHealthCheck] = token

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.HealthCheckTimeout)
	sess.Track(subHealthCheck, observable.Func(cancel))

	check := o.deps.HealthCheck
	go func() {
		err := check(ctx)
		o.post(sess.ID(), subHealthCheck, func() {
			if o.tokens[subHealthCheck] != token {
				EventsDroppedTotal.WithLabelValues("stale_subscription").Inc()
				return
			}
			o.untrack(subHealthCheck)

			if err != nil {
				o.logger.Error("health-check-failed", zap.Error(err))
				o.fail(types.ErrorServiceConnectionFailed)
				return
			}
			o.connectServices()
		})
	}()
}

func (o *Orchestrator) connectServices() {
	watchOnce(o, subMarketConnection, o.deps.Gateway.MarketDataState(), isConnected, o.handleMarketConnected)
	watch(o, subCatalog, o.deps.Catalog.State(), o.handleCatalog)
	watch(o, subAccountConnection, o.deps.Gateway.AccountState(), o.handleAccountConnection)
	watch(o, subUserSession, o.deps.UserSession.User(), o.handleUserSession)

	o.deps.Gateway.Connect()
	if o.deps.BettingSession != nil {
		o.deps.BettingSession.Start()
	}
}

func isConnected(c types.ConnectionState) bool {
	return c == types.Connected
}

// handleMarketConnected requests the catalog on the first market-data
// connection of the wave.
func (o *Orchestrator) handleMarketConnected(types.ConnectionState) {
	phase := o.deps.Catalog.State().Get().Phase
	if phase == types.CatalogLoaded {
		o.logger.Debug("catalog-load-skipped-already-loaded")
		return
	}

	CatalogLoadRequestsTotal.Inc()
	o.logger.Info("catalog-load-requested", zap.Stringer("catalog-phase", phase))
	o.deps.Catalog.RequestInitialLoad()
}

func (o *Orchestrator) handleCatalog(cs types.CatalogState) {
	switch cs.Phase {
	case types.CatalogLoading:
		o.catalogInFlight = true

	case types.CatalogLoaded:
		o.untrack(subCatalog)
		if !o.state.Get().Is(types.StateServicesConnecting) {
			o.logger.Debug("catalog-loaded-outside-boot", zap.Stringer("state", o.state.Get()))
			return
		}
		o.logger.Info("catalog-loaded", zap.Int("sports", len(cs.Sports)))
		o.setState(o.settledState())

	case types.CatalogFailed:
		// Only a failure that follows an observed Loading belongs to this run.
		if !o.catalogInFlight {
			return
		}
		if !o.state.Get().Is(types.StateServicesConnecting) {
			return
		}
		o.logger.Error("catalog-load-failed")
		o.fail(types.ErrorSportsLoadingFailed)
	}
}

func (o *Orchestrator) handleAccountConnection(c types.ConnectionState) {
	o.accountState = c
	o.maybeRefreshFavorites()
}

func (o *Orchestrator) handleUserSession(user *types.UserProfile) {
	o.user = user
	o.maybeRefreshFavorites()
}

func (o *Orchestrator) maybeRefreshFavorites() {
	if o.favoritesRefreshed || o.accountState != types.Connected || o.user == nil {
		return
	}
	o.favoritesRefreshed = true
	o.untrack(subAccountConnection, subUserSession)

	o.logger.Info("favorites-refresh-triggered", zap.String("user-id", o.user.UserID))
	o.deps.Favorites.Refresh()
}
