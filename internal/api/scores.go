package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/pkg/health"
)

type computeRequest struct {
	ClientID string `json:"clientId"`
}

type factorsResponse struct {
	DeliveryRate    int `json:"deliveryRate"`
	OnTimeScore     int `json:"onTimeScore"`
	PaymentScore    int `json:"paymentScore"`
	EngagementScore int `json:"engagementScore"`
}

type scoreResponse struct {
	ClientID      string          `json:"clientId"`
	Score         int             `json:"score"`
	Grade         string          `json:"grade"`
	Tier          string          `json:"tier"`
	Trend         health.Trend    `json:"trend"`
	PreviousScore *int            `json:"previousScore,omitempty"`
	Factors       factorsResponse `json:"factors"`
	Narrative     string          `json:"narrative"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}

func toFactors(f health.Factors) factorsResponse {
	return factorsResponse{
		DeliveryRate:    f.DeliveryRate,
		OnTimeScore:     f.OnTimeScore,
		PaymentScore:    f.PaymentScore,
		EngagementScore: f.EngagementScore,
	}
}

func fromOutcome(o *monitor.Outcome) scoreResponse {
	return scoreResponse{
		ClientID:      o.Result.ClientID,
		Score:         o.Result.Score,
		Grade:         o.Result.Grade,
		Tier:          o.Result.Tier,
		Trend:         o.Trend,
		PreviousScore: o.PreviousScore,
		Factors:       toFactors(o.Result.Factors),
		Narrative:     o.Narrative,
		CalculatedAt:  o.Result.CalculatedAt,
	}
}

func fromRecord(rec *scorecache.Record) scoreResponse {
	return scoreResponse{
		ClientID:      rec.ClientID,
		Score:         rec.Score,
		Grade:         rec.Grade,
		Tier:          rec.Tier,
		Trend:         rec.Trend,
		PreviousScore: rec.PreviousScore,
		Factors:       toFactors(rec.Factors),
		Narrative:     rec.Narrative,
		CalculatedAt:  rec.CalculatedAt,
	}
}

// handleComputeScore computes one client's score, caches it and returns it.
func (h *Handler) handleComputeScore(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "clientId is required")
		return
	}

	out, err := h.svc.ScoreClient(r.Context(), req.ClientID)
	switch {
	case errors.Is(err, monitor.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "client not found")
		return
	case errors.Is(err, monitor.ErrClientNotScorable):
		writeError(w, http.StatusUnprocessableEntity, "client is not active")
		return
	case err != nil:
		log.Printf("compute score %s: %v", req.ClientID, err)
		writeError(w, http.StatusInternalServerError, "failed to compute health score")
		return
	}

	writeJSON(w, http.StatusOK, fromOutcome(out))
}

// handleGetScore returns the last cached score without recomputing.
func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]

	rec, err := h.svc.Cached(r.Context(), clientID)
	if errors.Is(err, scorecache.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no health score computed for client")
		return
	}
	if err != nil {
		log.Printf("get score %s: %v", clientID, err)
		writeError(w, http.StatusInternalServerError, "failed to read health score")
		return
	}

	writeJSON(w, http.StatusOK, fromRecord(rec))
}
