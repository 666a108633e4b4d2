// Package health implements the client health scoring engine. It extracts
// four independent factor scores from a client's operational records,
// combines them into a weighted composite, bands the composite into a grade,
// and classifies momentum against the previously computed score.
package health

import (
	"errors"
	"time"
)

// ErrNotScorable is returned when the client is not in a scorable lifecycle stage.
var ErrNotScorable = errors.New("client is not active")

// Factor keys.
const (
	KeyDeliveryRate = "delivery_rate"
	KeyOnTime       = "on_time"
	KeyPayment      = "payment"
	KeyEngagement   = "engagement"
)

// Result is the complete output of scoring one client. Immutable once computed.
type Result struct {
	ClientID     string         `json:"client_id"`
	Score        int            `json:"score"`
	Grade        string         `json:"grade"`
	Tier         string         `json:"tier"`
	Factors      Factors        `json:"factors"`
	Breakdown    []FactorResult `json:"breakdown"`
	Stats        Stats          `json:"stats"`
	CalculatedAt time.Time      `json:"calculated_at"`
}

// Factors is the flat view of the four sub-scores, each in [0,100].
type Factors struct {
	DeliveryRate    int `json:"delivery_rate"`
	OnTimeScore     int `json:"on_time_score"`
	PaymentScore    int `json:"payment_score"`
	EngagementScore int `json:"engagement_score"`
}

// Stats are the raw counts behind the factors, used by narratives and renderers.
type Stats struct {
	Deliverables          int `json:"deliverables"`
	CompletedDeliverables int `json:"completed_deliverables"`
	OverdueDeliverables   int `json:"overdue_deliverables"`
	OverdueTasks          int `json:"overdue_tasks"`
	Invoices              int `json:"invoices"`
	PaidInvoices          int `json:"paid_invoices"`
	OverdueInvoices       int `json:"overdue_invoices"`
	RecentlyUpdated       int `json:"recently_updated"`
}

// FactorResult is the output of a single factor.
type FactorResult struct {
	Key      string         `json:"key"`   // machine key: "on_time"
	Name     string         `json:"name"`  // human name: "On-time delivery"
	Score    int            `json:"score"` // clamped to [0,100]
	Weight   float64        `json:"weight"`
	Evidence []EvidenceItem `json:"evidence,omitempty"`
}

// EvidenceItem names a record that moved a factor.
type EvidenceItem struct {
	Type     EvidenceType `json:"type"`
	Summary  string       `json:"summary"`
	RecordID string       `json:"record_id,omitempty"`
}

// EvidenceType classifies what kind of evidence this is.
type EvidenceType string

const (
	EvidenceOverdueDeliverable EvidenceType = "OVERDUE_DELIVERABLE"
	EvidenceOverdueTask        EvidenceType = "OVERDUE_TASK"
	EvidenceOverdueInvoice     EvidenceType = "OVERDUE_INVOICE"
	EvidenceUnpaidInvoice      EvidenceType = "UNPAID_INVOICE"
	EvidenceOpenDeliverable    EvidenceType = "OPEN_DELIVERABLE"
	EvidenceNoRecentActivity   EvidenceType = "NO_RECENT_ACTIVITY"
)

// Trend is the momentum of a client's score against its previous value.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ParseTrend validates a stored trend value; unknown values read as flat.
func ParseTrend(s string) Trend {
	switch t := Trend(s); t {
	case TrendUp, TrendDown, TrendFlat:
		return t
	}
	return TrendFlat
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
