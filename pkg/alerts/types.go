// Package alerts implements the operational alert sweep. A fixed set of
// deterministic rules runs over a point-in-time Dataset and emits prioritised
// findings; nothing is persisted between sweeps.
package alerts

import (
	"fmt"
	"strings"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// Priority orders findings by urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 0 for the most urgent priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Category groups findings by the kind of record involved.
type Category string

const (
	CategoryOverdue     Category = "overdue"
	CategoryInvoice     Category = "invoice"
	CategoryDeadline    Category = "deadline"
	CategoryDeliverable Category = "deliverable"
	CategoryContent     Category = "content"
)

// Finding is one actionable condition discovered by a rule.
type Finding struct {
	Priority    Priority      `json:"priority"`
	Category    Category      `json:"category"`
	Rule        string        `json:"rule"`
	SubjectID   string        `json:"subject_id"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	RelatedIDs  []string      `json:"related_ids,omitempty"`
	Amount      float64       `json:"amount,omitempty"`
	Currency    string        `json:"currency,omitempty"`
	DueDate     *records.Date `json:"due_date,omitempty"`
}

// SkippedRule names a rule that could not run because a collection it reads
// failed to load.
type SkippedRule struct {
	Rule       string             `json:"rule"`
	Collection records.Collection `json:"collection"`
	Reason     string             `json:"reason"`
}

// SweepResult is the output of one sweep.
type SweepResult struct {
	Market   records.Market `json:"market,omitempty"`
	Findings []Finding      `json:"findings"`
	Skipped  []SkippedRule  `json:"skipped,omitempty"`
}

// CountByPriority tallies findings per priority.
func (r *SweepResult) CountByPriority() map[Priority]int {
	counts := make(map[Priority]int)
	for _, f := range r.Findings {
		counts[f.Priority]++
	}
	return counts
}

// Granularity controls whether per-record conditions are reported once per
// client or once per record.
type Granularity string

const (
	PerClient Granularity = "client"
	PerItem   Granularity = "item"
)

// ParseGranularity validates a granularity setting. Empty means PerClient.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return PerClient, nil
	case PerClient, PerItem:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want %q or %q)", s, PerClient, PerItem)
}

// ParseMarketFilter parses a sweep scope. Empty or "all" selects every market
// and returns the zero Market.
func ParseMarketFilter(s string) (records.Market, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return records.ParseMarket(strings.ToUpper(s))
}
