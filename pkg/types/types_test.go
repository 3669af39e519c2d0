package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppState_String(t *testing.T) {
	tests := []struct {
		state AppState
		want  string
	}{
		{Initializing(), "initializing"},
		{SplashLoading(), "splash_loading"},
		{NetworkUnavailable(), "network_unavailable"},
		{MaintenanceMode("Back at 5"), `maintenance_mode("Back at 5")`},
		{UpdateRequired(), "update_required"},
		{UpdateAvailable(), "update_available"},
		{ServicesConnecting(), "services_connecting"},
		{Ready(), "ready"},
		{Failed(ErrorSportsLoadingFailed), "error(sportsLoadingFailed)"},
		{AppState{Kind: StateKind(42)}, "state_kind(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestAppState_ZeroValueIsInitializing(t *testing.T) {
	var s AppState
	assert.Equal(t, Initializing(), s)
	assert.Len(t, AllStateKinds(), 9)
}

func TestAppState_Predicates(t *testing.T) {
	assert.True(t, MaintenanceMode("x").IsBlocking())
	assert.True(t, UpdateRequired().IsBlocking())
	assert.False(t, UpdateAvailable().IsBlocking())
	assert.False(t, Ready().IsBlocking())

	assert.True(t, Failed(ErrorConfigurationLoadFailed).IsError())
	assert.False(t, Ready().IsError())

	assert.True(t, Ready().Is(StateReady))
	assert.NotEqual(t, MaintenanceMode("a"), MaintenanceMode("b"))
}

func TestAppState_MarshalJSON(t *testing.T) {
	raw, err := MaintenanceMode("Back soon").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"maintenance_mode","message":"Back soon"}`, string(raw))

	raw, err = Failed(ErrorMaintenanceModeCheckFailed).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"error","error":"maintenanceModeCheckFailed"}`, string(raw))
}

func TestHTTPStatusError(t *testing.T) {
	tests := []struct {
		name      string
		err       *HTTPStatusError
		wantMsg   string
		transient bool
	}{
		{
			name:      "server_error_with_body",
			err:       &HTTPStatusError{Endpoint: "/sports", StatusCode: 503, Body: "down"},
			wantMsg:   "/sports returned status 503: down",
			transient: true,
		},
		{
			name:      "rate_limited",
			err:       &HTTPStatusError{Endpoint: "/sports", StatusCode: 429},
			wantMsg:   "/sports returned status 429",
			transient: true,
		},
		{
			name:    "not_found",
			err:     &HTTPStatusError{Endpoint: "/theme", StatusCode: 404},
			wantMsg: "/theme returned status 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.transient, tt.err.Transient())

			var target *HTTPStatusError
			wrapped := fmt.Errorf("fetch: %w", tt.err)
			assert.True(t, errors.As(wrapped, &target))
		})
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "reachable", Reachable.String())
	assert.Equal(t, "unknown", ReachabilityUnknown.String())
	assert.Equal(t, "enabled", MaintenanceEnabled.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "loaded", CatalogLoaded.String())
}
