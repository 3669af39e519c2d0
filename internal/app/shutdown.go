package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Shutdown HTTP server first so no control request races the teardown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Stop the state machine before its collaborators
	a.controller.Close()
	for _, sub := range a.subs {
		sub.Cancel()
	}

	a.gateway.Disconnect()
	a.settingsFeed.Stop()
	a.reachability.Stop()

	// Cancel context to stop the journal after it flushes
	a.cancel()
	a.wg.Wait()

	err = a.storage.Close()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	a.cache.Close()

	a.logger.Info("application-shutdown-complete")

	return nil
}
