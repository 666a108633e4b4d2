// Package api implements the Agency Pulse REST API.
// It serves health score computation, cached score reads, batch
// recomputation and alert sweeps on top of the monitor service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/agencypulse/agencypulse/internal/monitor"
)

// Handler is the top-level API handler.
type Handler struct {
	svc *monitor.Service
}

// NewHandler creates a new API handler.
func NewHandler(svc *monitor.Service) *Handler {
	return &Handler{svc: svc}
}

// Router builds the full HTTP handler: /healthz is public, /api/v1 is
// guarded by the API key when one is configured.
func (h *Handler) Router(apiKey string, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(APIKeyAuth(apiKey))
	h.RegisterRoutes(v1)

	return RequestLog(CORS(allowedOrigins)(r))
}

// RegisterRoutes registers the versioned API routes on the given router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health-scores", h.handleComputeScore).Methods(http.MethodPost)
	r.HandleFunc("/health-scores/recompute", h.handleRecompute).Methods(http.MethodPost)
	r.HandleFunc("/clients/{clientID}/health", h.handleGetScore).Methods(http.MethodGet)
	r.HandleFunc("/alerts/sweep", h.handleSweep).Methods(http.MethodPost)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Store().Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "score store unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
