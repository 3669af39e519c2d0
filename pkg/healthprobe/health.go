package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
	state     atomic.Value // string
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	h := &HealthChecker{
		startTime: time.Now(),
	}
	h.state.Store("initializing")
	return h
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetState records the application state reported by the probes.
// The service is ready exactly when usable is true.
func (h *HealthChecker) SetState(state string, usable bool) {
	h.state.Store(state)
	h.ready.Store(usable)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	State   string `json:"state,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
	Message string `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the process is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "healthy",
			State:  h.currentState(),
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				State:   h.currentState(),
				Message: "application is not usable in its current state",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ready",
			State:  h.currentState(),
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

func (h *HealthChecker) currentState() string {
	s, _ := h.state.Load().(string)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
