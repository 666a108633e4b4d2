package api

import (
	"log"
	"net/http"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/pkg/alerts"
)

type recomputeRequest struct {
	Market string `json:"market"` // optional filter
}

type recomputeResponse struct {
	Computed int                   `json:"computed"`
	Errors   []monitor.ClientError `json:"errors"`
}

// handleRecompute re-runs scoring for every Active client, optionally
// restricted to one market, and refreshes the cache. Per-client failures are
// reported in the response and do not fail the request.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	market, err := alerts.ParseMarketFilter(req.Market)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := h.svc.ScoreAll(r.Context(), monitor.BatchOptions{Market: market})
	if err != nil {
		log.Printf("recompute: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to recompute health scores")
		return
	}

	writeJSON(w, http.StatusOK, recomputeResponse{
		Computed: len(batch.Computed),
		Errors:   batch.Errors,
	})
}
