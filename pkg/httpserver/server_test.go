package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/healthprobe"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

type fakeController struct {
	mu         sync.Mutex
	state      types.AppState
	generation int
	retries    int
	dismisses  int
	languages  []string
	restartErr error
	usableErr  error
}

func (f *fakeController) State() types.AppState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Generation() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

func (f *fakeController) RetryFromError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	if f.state.IsError() {
		f.state = types.SplashLoading()
	}
}

func (f *fakeController) DismissAvailableUpdate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismisses++
	if f.state.Is(types.StateUpdateAvailable) {
		f.state = types.Ready()
	}
}

func (f *fakeController) Restart(language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.restartErr != nil {
		return f.restartErr
	}
	f.languages = append(f.languages, language)
	f.generation++
	f.state = types.SplashLoading()
	return nil
}

func (f *fakeController) AwaitUsable(ctx context.Context) error {
	if f.usableErr != nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

type fakeSports struct {
	sports []types.Sport
	err    error
}

func (f *fakeSports) Sports(context.Context) ([]types.Sport, error) {
	return f.sports, f.err
}

type stateBody struct {
	AppState struct {
		State   string `json:"state"`
		Message string `json:"message"`
		Error   string `json:"error"`
	} `json:"app_state"`
	Generation int `json:"generation"`
}

func newTestRouter(ctrl AppController, sports SportsSource) http.Handler {
	return NewRouter(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
		Controller:    ctrl,
		Sports:        sports,
		UsableWait:    50 * time.Millisecond,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var body stateBody
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	if err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "valid_config_minimal",
			cfg: &Config{
				Port:          "8080",
				Logger:        logger,
				HealthChecker: healthChecker,
			},
		},
		{
			name: "valid_config_with_controller",
			cfg: &Config{
				Port:          "8080",
				Logger:        logger,
				HealthChecker: healthChecker,
				Controller:    &fakeController{},
				Sports:        &fakeSports{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := New(tt.cfg)
			if server == nil {
				t.Fatal("New() returned nil server")
			}
			if server.server == nil {
				t.Error("New() server.server is nil")
			}
			if server.server.Addr != ":8080" {
				t.Errorf("expected addr :8080, got %s", server.server.Addr)
			}
			if server.logger != tt.cfg.Logger {
				t.Error("New() logger not set correctly")
			}
			if server.healthChecker != tt.cfg.HealthChecker {
				t.Error("New() healthChecker not set correctly")
			}
		})
	}
}

func TestHealthAndReadyEndpoints(t *testing.T) {
	hc := healthprobe.New()
	h := NewRouter(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: hc})

	rec := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before usable: expected 503, got %d", rec.Code)
	}

	hc.SetState(types.Ready().String(), true)
	rec = do(t, h, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready after usable: expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthprobe.New()})

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("go_goroutines")) {
		t.Error("expected default go collector metrics")
	}
}

func TestControlRoutesAbsentWithoutController(t *testing.T) {
	h := NewRouter(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthprobe.New()})

	rec := do(t, h, http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStateEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		state     types.AppState
		wantState string
		wantMsg   string
		wantErr   string
	}{
		{name: "ready", state: types.Ready(), wantState: "ready"},
		{name: "maintenance", state: types.MaintenanceMode("back at 5"), wantState: "maintenance_mode", wantMsg: "back at 5"},
		{name: "error", state: types.Failed(types.ErrorSportsLoadingFailed), wantState: "error", wantErr: "sportsLoadingFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{state: tt.state, generation: 2}
			rec := do(t, newTestRouter(ctrl, nil), http.MethodGet, "/api/state", nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json, got %s", ct)
			}

			body := decodeState(t, rec)
			if body.AppState.State != tt.wantState {
				t.Errorf("expected state %q, got %q", tt.wantState, body.AppState.State)
			}
			if body.AppState.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, body.AppState.Message)
			}
			if body.AppState.Error != tt.wantErr {
				t.Errorf("expected error %q, got %q", tt.wantErr, body.AppState.Error)
			}
			if body.Generation != 2 {
				t.Errorf("expected generation 2, got %d", body.Generation)
			}
		})
	}
}

func TestStateEndpoint_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestRouter(&fakeController{}, nil), http.MethodPost, "/api/state", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRetryEndpoint(t *testing.T) {
	ctrl := &fakeController{state: types.Failed(types.ErrorServiceConnectionFailed)}
	rec := do(t, newTestRouter(ctrl, nil), http.MethodPost, "/api/retry", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if ctrl.retries != 1 {
		t.Errorf("expected 1 retry, got %d", ctrl.retries)
	}
	if got := decodeState(t, rec).AppState.State; got != "splash_loading" {
		t.Errorf("expected splash_loading, got %q", got)
	}
}

func TestDismissUpdateEndpoint(t *testing.T) {
	ctrl := &fakeController{state: types.UpdateAvailable()}
	rec := do(t, newTestRouter(ctrl, nil), http.MethodPost, "/api/update/dismiss", nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if ctrl.dismisses != 1 {
		t.Errorf("expected 1 dismiss, got %d", ctrl.dismisses)
	}
	if got := decodeState(t, rec).AppState.State; got != "ready" {
		t.Errorf("expected ready, got %q", got)
	}
}

func TestLanguageEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		restartErr error
		wantCode   int
		wantLangs  []string
	}{
		{name: "restarts", body: `{"language":"fr"}`, wantCode: http.StatusAccepted, wantLangs: []string{"fr"}},
		{name: "invalid_json", body: `{`, wantCode: http.StatusBadRequest},
		{name: "missing_language", body: `{}`, wantCode: http.StatusBadRequest},
		{
			name:       "unsupported",
			body:       `{"language":"xx"}`,
			restartErr: fmt.Errorf("set language: %w", types.ErrUnsupportedLanguage),
			wantCode:   http.StatusUnprocessableEntity,
		},
		{
			name:       "restart_failure",
			body:       `{"language":"fr"}`,
			restartErr: errors.New("build orchestrator: boom"),
			wantCode:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{state: types.Ready(), restartErr: tt.restartErr}
			rec := do(t, newTestRouter(ctrl, nil), http.MethodPost, "/api/language", []byte(tt.body))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if len(ctrl.languages) != len(tt.wantLangs) {
				t.Fatalf("expected restarts %v, got %v", tt.wantLangs, ctrl.languages)
			}
			for i := range tt.wantLangs {
				if ctrl.languages[i] != tt.wantLangs[i] {
					t.Errorf("expected restarts %v, got %v", tt.wantLangs, ctrl.languages)
				}
			}
			if tt.wantCode == http.StatusAccepted {
				body := decodeState(t, rec)
				if body.Generation != 1 {
					t.Errorf("expected generation 1, got %d", body.Generation)
				}
			}
		})
	}
}

func TestCatalogEndpoint(t *testing.T) {
	sports := []types.Sport{{ID: "1", Name: "Football", EventsCount: 12}}

	t.Run("usable", func(t *testing.T) {
		ctrl := &fakeController{state: types.Ready()}
		rec := do(t, newTestRouter(ctrl, &fakeSports{sports: sports}), http.MethodGet, "/api/catalog", nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp SportsResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Sports) != 1 || resp.Sports[0] != sports[0] {
			t.Errorf("unexpected sports %+v", resp.Sports)
		}
	})

	t.Run("not_usable", func(t *testing.T) {
		ctrl := &fakeController{state: types.MaintenanceMode("down"), usableErr: context.DeadlineExceeded}
		rec := do(t, newTestRouter(ctrl, &fakeSports{sports: sports}), http.MethodGet, "/api/catalog", nil)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("fetch_failure", func(t *testing.T) {
		ctrl := &fakeController{state: types.Ready()}
		rec := do(t, newTestRouter(ctrl, &fakeSports{err: errors.New("boom")}), http.MethodGet, "/api/catalog", nil)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})
}

func TestServerStartShutdown(t *testing.T) {
	server := New(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthprobe.New()})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Start did not return after shutdown")
	}
}
