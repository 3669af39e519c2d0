package boot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mselser95/sportsbook-boot/internal/testutil"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, c *testutil.Collaborators) *Controller {
	t.Helper()

	ctrl, err := NewController(newTestConfig(t), newDeps(c))
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return ctrl
}

func bootControllerToReady(t *testing.T, ctrl *Controller, c *testutil.Collaborators) {
	t.Helper()

	ctrl.Start()
	c.Reachability.Emit(types.Reachable)
	c.Settings.EmitMaintenance(types.MaintenanceOff())
	c.Gateway.EmitMarket(types.Connected)
	c.Catalog.Succeed(testutil.CreateTestSports()...)

	require.Equal(t, types.Ready(), ctrl.State())
}

func TestNewController(t *testing.T) {
	c := testutil.NewCollaborators()

	t.Run("nil-logger", func(t *testing.T) {
		_, err := NewController(Config{InstalledVersion: "1.0.0"}, newDeps(c))
		require.Error(t, err)
		assert.Equal(t, "logger cannot be nil", err.Error())
	})

	t.Run("missing-localizer", func(t *testing.T) {
		deps := newDeps(c)
		deps.Localizer = nil
		_, err := NewController(newTestConfig(t), deps)
		require.Error(t, err)
		assert.Equal(t, "localizer cannot be nil", err.Error())
	})

	t.Run("initial-snapshot", func(t *testing.T) {
		ctrl := newTestController(t, c)
		snap := ctrl.Snapshot()
		assert.Equal(t, 0, snap.Generation)
		assert.Equal(t, types.Initializing(), snap.State)
		assert.Equal(t, ctrl.Orchestrator().SessionID(), snap.SessionID)
	})
}

func TestController_RelaysOrchestratorStates(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)

	var (
		mu    sync.Mutex
		kinds []types.StateKind
	)
	ctrl.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, s.State.Kind)
	})

	bootControllerToReady(t, ctrl, c)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []types.StateKind{
		types.StateInitializing,
		types.StateSplashLoading,
		types.StateServicesConnecting,
		types.StateReady,
	}, kinds)
}

func TestController_Restart(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)
	bootControllerToReady(t, ctrl, c)

	old := ctrl.Orchestrator()
	oldSession := old.SessionID()

	err := ctrl.Restart("fr")
	require.NoError(t, err)

	assert.Equal(t, "fr", c.Localizer.Language())
	assert.Equal(t, []string{"fr"}, c.Gateway.Languages())
	assert.Equal(t, 1, c.Gateway.Disconnects())
	assert.Equal(t, 1, c.Catalog.Resets())
	assert.Equal(t, 1, ctrl.Generation())
	assert.Empty(t, old.ActiveSubscriptions())

	fresh := ctrl.Orchestrator()
	assert.NotSame(t, old, fresh)
	assert.NotEqual(t, oldSession, fresh.SessionID())

	// Reachable and maintenance disabled are replayed to the new session.
	assert.Equal(t, types.ServicesConnecting(), ctrl.State())
	assert.Equal(t, 1, ctrl.Snapshot().Generation)

	c.Gateway.EmitMarket(types.Connected)
	assert.Equal(t, 2, c.Catalog.Requests(), "the reset catalog is fetched in the new language")

	c.Catalog.Succeed(testutil.CreateTestSports()...)
	assert.Equal(t, types.Ready(), ctrl.State())
	assert.Equal(t, fresh.SessionID(), ctrl.Snapshot().SessionID)
}

func TestController_RestartIgnoresOldCollaboratorEvents(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)
	bootControllerToReady(t, ctrl, c)

	old := ctrl.Orchestrator()
	require.NoError(t, ctrl.Restart("fr"))
	require.Equal(t, types.ServicesConnecting(), ctrl.State())

	// The old orchestrator is closed and never moves again.
	c.Reachability.Emit(types.Unreachable)
	assert.Equal(t, types.Ready(), old.State())
	assert.Equal(t, types.NetworkUnavailable(), ctrl.State())

	// A state forced onto the old orchestrator never reaches the relay.
	old.state.Set(types.Failed(types.ErrorSportsLoadingFailed))
	assert.Equal(t, types.NetworkUnavailable(), ctrl.State())
	assert.Equal(t, 1, ctrl.Snapshot().Generation)
}

func TestController_RestartRejectsUnsupportedLanguage(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)
	bootControllerToReady(t, ctrl, c)

	old := ctrl.Orchestrator()

	err := ctrl.Restart("xx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnsupportedLanguage))

	assert.Same(t, old, ctrl.Orchestrator())
	assert.Equal(t, 0, ctrl.Generation())
	assert.Equal(t, 0, c.Gateway.Disconnects())
	assert.Equal(t, 0, c.Catalog.Resets())
	assert.Equal(t, types.Ready(), ctrl.State())
	assert.Equal(t, "en", c.Localizer.Language())
}

func TestController_RepeatedRestarts(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)
	bootControllerToReady(t, ctrl, c)

	for i, lang := range []string{"fr", "en", "fr"} {
		require.NoError(t, ctrl.Restart(lang))
		assert.Equal(t, i+1, ctrl.Generation())

		c.Gateway.EmitMarket(types.Connected)
		c.Catalog.Succeed()
		assert.Equal(t, types.Ready(), ctrl.State())
	}

	assert.Equal(t, 3, c.Gateway.Disconnects())
	assert.Equal(t, []string{"fr", "en", "fr"}, c.Gateway.Languages())
}

func TestController_ForwardsCommands(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)

	ctrl.Start()
	c.Reachability.Emit(types.Reachable)
	c.Settings.EmitMaintenance(types.MaintenanceOff())
	c.Gateway.EmitMarket(types.Connected)
	c.Catalog.Fail()
	require.Equal(t, types.Failed(types.ErrorSportsLoadingFailed), ctrl.State())

	ctrl.RetryFromError()
	c.Catalog.Succeed()
	require.Equal(t, types.Ready(), ctrl.State())

	ctrl.StartRuntimeMonitoring()
	c.Settings.EmitVersion("2.1.0", "2.3.0")
	require.Eventually(t, func() bool {
		return ctrl.State() == types.UpdateAvailable()
	}, time.Second, 5*time.Millisecond)

	ctrl.DismissAvailableUpdate()
	assert.Equal(t, types.Ready(), ctrl.State())
}

func TestController_AwaitUsable(t *testing.T) {
	t.Run("already-usable", func(t *testing.T) {
		c := testutil.NewCollaborators()
		ctrl := newTestController(t, c)
		bootControllerToReady(t, ctrl, c)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, ctrl.AwaitUsable(ctx))
	})

	t.Run("waits-for-ready-and-connected", func(t *testing.T) {
		c := testutil.NewCollaborators()
		ctrl := newTestController(t, c)
		ctrl.Start()

		done := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			done <- ctrl.AwaitUsable(ctx)
		}()

		c.Reachability.Emit(types.Reachable)
		c.Settings.EmitMaintenance(types.MaintenanceOff())
		c.Gateway.EmitMarket(types.Connected)

		select {
		case <-done:
			t.Fatal("returned before Ready")
		case <-time.After(30 * time.Millisecond):
		}

		c.Catalog.Succeed()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("did not return after Ready")
		}
	})

	t.Run("ready-but-disconnected", func(t *testing.T) {
		c := testutil.NewCollaborators()
		ctrl := newTestController(t, c)
		bootControllerToReady(t, ctrl, c)
		c.Gateway.EmitMarket(types.Disconnected)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		err := ctrl.AwaitUsable(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestController_Close(t *testing.T) {
	c := testutil.NewCollaborators()
	ctrl := newTestController(t, c)
	bootControllerToReady(t, ctrl, c)

	o := ctrl.Orchestrator()
	ctrl.Close()

	assert.Empty(t, o.ActiveSubscriptions())

	c.Reachability.Emit(types.Unreachable)
	assert.Equal(t, types.Ready(), ctrl.State())

	// Closing twice is harmless.
	ctrl.Close()
}
