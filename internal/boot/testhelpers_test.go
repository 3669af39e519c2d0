package boot

import (
	"testing"

	"github.com/mselser95/sportsbook-boot/internal/testutil"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newDeps(c *testutil.Collaborators) Dependencies {
	return Dependencies{
		Reachability:   c.Reachability,
		Maintenance:    c.Settings,
		Version:        c.Settings,
		Gateway:        c.Gateway,
		Catalog:        c.Catalog,
		UserSession:    c.UserSession,
		Configuration:  c.Configuration,
		Theme:          c.Theme,
		Favorites:      c.Favorites,
		BettingSession: c.BettingSession,
		Localizer:      c.Localizer,
	}
}

func newTestConfig(t *testing.T) Config {
	return Config{
		InstalledVersion:   "2.2.0",
		VersionSettleDelay: 0,
		Logger:             zaptest.NewLogger(t),
	}
}

func newTestOrchestrator(t *testing.T, c *testutil.Collaborators, opts ...func(*Config, *Dependencies)) *Orchestrator {
	t.Helper()

	cfg := newTestConfig(t)
	deps := newDeps(c)
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	o, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(o.Close)
	return o
}

// bootToReady drives the mocks through a clean boot.
func bootToReady(t *testing.T, o *Orchestrator, c *testutil.Collaborators) {
	t.Helper()

	o.Initialize()
	c.Reachability.Emit(types.Reachable)
	c.Settings.EmitMaintenance(types.MaintenanceOff())
	c.Gateway.EmitMarket(types.Connected)
	c.Catalog.Succeed(testutil.CreateTestSports()...)

	require.Equal(t, types.Ready(), o.State())
}

// recordStates collects every state published by o.
func recordStates(o *Orchestrator) func() []types.AppState {
	var (
		states []types.AppState
	)
	ch := make(chan types.AppState, 256)
	o.Subscribe(func(s types.AppState) { ch <- s })

	return func() []types.AppState {
		for {
			select {
			case s := <-ch:
				states = append(states, s)
			default:
				return states
			}
		}
	}
}
