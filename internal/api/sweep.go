package api

import (
	"log"
	"net/http"

	"github.com/agencypulse/agencypulse/internal/narrative"
	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/records"
)

type sweepRequest struct {
	Market string `json:"market"` // SG, ID, US or all
}

type findingResponse struct {
	Priority    alerts.Priority `json:"priority"`
	Category    alerts.Category `json:"category"`
	Rule        string          `json:"rule"`
	SubjectID   string          `json:"subjectId"`
	ClientID    string          `json:"clientId"`
	ClientName  string          `json:"clientName,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	RelatedIDs  []string        `json:"relatedIds,omitempty"`
	Amount      float64         `json:"amount,omitempty"`
	Currency    string          `json:"currency,omitempty"`
	DueDate     *records.Date   `json:"dueDate,omitempty"`
}

type skippedResponse struct {
	Rule       string             `json:"rule"`
	Collection records.Collection `json:"collection"`
	Reason     string             `json:"reason"`
}

type sweepResponse struct {
	RunID       string                 `json:"runId"`
	Market      string                 `json:"market"`
	Suggestions []narrative.Suggestion `json:"suggestions"`
	Findings    []findingResponse      `json:"findings"`
	Skipped     []skippedResponse      `json:"skipped"`
}

// handleSweep runs the alert rules and returns findings with suggestions.
func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	market, err := alerts.ParseMarketFilter(req.Market)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.svc.Sweep(r.Context(), market)
	if err != nil {
		log.Printf("sweep: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to run alert sweep")
		return
	}

	resp := sweepResponse{
		RunID:       report.RunID,
		Market:      "all",
		Suggestions: report.Suggestions,
		Findings:    make([]findingResponse, 0, len(report.Result.Findings)),
		Skipped:     make([]skippedResponse, 0, len(report.Result.Skipped)),
	}
	if market != "" {
		resp.Market = string(market)
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []narrative.Suggestion{}
	}
	for _, f := range report.Result.Findings {
		resp.Findings = append(resp.Findings, findingResponse{
			Priority:    f.Priority,
			Category:    f.Category,
			Rule:        f.Rule,
			SubjectID:   f.SubjectID,
			ClientID:    f.ClientID,
			ClientName:  f.ClientName,
			Title:       f.Title,
			Description: f.Description,
			RelatedIDs:  f.RelatedIDs,
			Amount:      f.Amount,
			Currency:    f.Currency,
			DueDate:     f.DueDate,
		})
	}
	for _, s := range report.Result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedResponse{Rule: s.Rule, Collection: s.Collection, Reason: s.Reason})
	}

	writeJSON(w, http.StatusOK, resp)
}
