package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mselser95/sportsbook-boot/internal/boot"
	"github.com/mselser95/sportsbook-boot/internal/storage"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("version", a.cfg.InstalledVersion),
		zap.String("language", a.localizer.Language()),
		zap.String("storage", a.cfg.StorageMode),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.logger.Info("application-started",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Start transition journal
	a.wg.Add(1)
	go a.runJournal()

	a.subs = append(a.subs,
		a.controller.Subscribe(a.onSnapshot),
		a.sessions.Expirations().Subscribe(a.onSessionExpired),
	)

	// The settings socket outlives orchestrator restarts.
	err := a.settingsFeed.Start()
	if err != nil {
		return fmt.Errorf("start settings feed: %w", err)
	}

	a.controller.Start()

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// onSnapshot runs inline with state publication and must not block.
func (a *App) onSnapshot(snap boot.Snapshot) {
	prev := a.last
	a.last = snap

	a.healthChecker.SetState(snap.State.String(), snap.State.Is(types.StateReady))

	if snap.State.Is(types.StateReady) && (!a.monitorStarted || a.monitoredGen != snap.Generation) {
		a.monitorStarted = true
		a.monitoredGen = snap.Generation
		a.controller.StartRuntimeMonitoring()
	}

	if snap.SessionID == "" || prev.State == snap.State {
		return
	}

	tr := storage.NewTransition(snap.SessionID, snap.Generation, prev.State, snap.State, time.Now())
	select {
	case a.journal <- tr:
	default:
		a.logger.Warn("transition-journal-full", zap.Stringer("to", snap.State))
	}
}

func (a *App) onSessionExpired(exp *types.SessionExpiration) {
	if exp == nil {
		return
	}

	a.logger.Warn("logging-out-expired-session",
		zap.String("user-id", exp.UserID),
		zap.String("reason", exp.Reason))
	a.sessions.Logout()
}

func (a *App) runJournal() {
	defer a.wg.Done()

	for {
		select {
		case tr := <-a.journal:
			a.storeTransition(tr)
		case <-a.ctx.Done():
			// Flush what is already buffered.
			for {
				select {
				case tr := <-a.journal:
					a.storeTransition(tr)
				default:
					return
				}
			}
		}
	}
}

func (a *App) storeTransition(tr *types.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.storage.StoreTransition(ctx, tr)
	if err != nil {
		a.logger.Error("store-transition-failed",
			zap.String("transition-id", tr.ID),
			zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
