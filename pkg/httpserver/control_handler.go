package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// AppController is the part of the boot controller exposed over HTTP.
type AppController interface {
	State() types.AppState
	Generation() int
	RetryFromError()
	DismissAvailableUpdate()
	Restart(language string) error
	AwaitUsable(ctx context.Context) error
}

// SportsSource serves the sports catalog for the active language.
type SportsSource interface {
	Sports(ctx context.Context) ([]types.Sport, error)
}

// ControlHandler handles HTTP requests against the app state machine.
type ControlHandler struct {
	controller AppController
	sports     SportsSource
	usableWait time.Duration
	logger     *zap.Logger
}

// NewControlHandler creates a new control handler.
func NewControlHandler(controller AppController, sports SportsSource, usableWait time.Duration, logger *zap.Logger) *ControlHandler {
	if usableWait <= 0 {
		usableWait = 10 * time.Second
	}
	return &ControlHandler{
		controller: controller,
		sports:     sports,
		usableWait: usableWait,
		logger:     logger,
	}
}

// StateResponse represents the current app state.
type StateResponse struct {
	State      types.AppState `json:"app_state"`
	Generation int            `json:"generation"`
}

// LanguageRequest is the body of POST /api/language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// SportsResponse represents the catalog returned by GET /api/catalog.
type SportsResponse struct {
	Sports []types.Sport `json:"sports"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleState handles GET /api/state.
func (h *ControlHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// HandleRetry handles POST /api/retry.
func (h *ControlHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("retry-requested", zap.Stringer("state", h.controller.State()))
	h.controller.RetryFromError()
	h.writeState(w, http.StatusAccepted)
}

// HandleDismissUpdate handles POST /api/update/dismiss.
func (h *ControlHandler) HandleDismissUpdate(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("update-dismiss-requested", zap.Stringer("state", h.controller.State()))
	h.controller.DismissAvailableUpdate()
	h.writeState(w, http.StatusAccepted)
}

// HandleLanguage handles POST /api/language with {"language":"fr"}.
func (h *ControlHandler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Language == "" {
		h.writeError(w, "missing required field: language", http.StatusBadRequest)
		return
	}

	err = h.controller.Restart(req.Language)
	if errors.Is(err, types.ErrUnsupportedLanguage) {
		h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Error("restart-failed", zap.String("language", req.Language), zap.Error(err))
		h.writeError(w, "restart failed", http.StatusInternalServerError)
		return
	}

	h.writeState(w, http.StatusAccepted)
}

// HandleCatalog handles GET /api/catalog. It waits until the app is usable.
func (h *ControlHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.usableWait)
	defer cancel()

	err := h.controller.AwaitUsable(ctx)
	if err != nil {
		h.logger.Debug("catalog-request-not-usable", zap.Error(err))
		h.writeError(w, "app is not usable: "+h.controller.State().String(), http.StatusServiceUnavailable)
		return
	}

	sports, err := h.sports.Sports(r.Context())
	if err != nil {
		h.logger.Error("catalog-request-failed", zap.Error(err))
		h.writeError(w, "failed to load catalog", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, SportsResponse{Sports: sports})
}

func (h *ControlHandler) writeState(w http.ResponseWriter, status int) {
	h.writeJSON(w, status, StateResponse{
		State:      h.controller.State(),
		Generation: h.controller.Generation(),
	})
}

func (h *ControlHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *ControlHandler) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
