package health

import (
	"fmt"
	"math"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// Factor is the interface that all health factors implement.
type Factor interface {
	// Key returns the machine-readable factor identifier.
	Key() string
	// Name returns the human-readable factor name.
	Name() string
	// Evaluate computes the factor's sub-score for one client as of an instant.
	Evaluate(cr records.ClientRecords, asOf time.Time) FactorResult
}

// Engine runs all configured factors against a client and produces a Result.
type Engine struct {
	factors []Factor
	weights Weights
	grades  GradeTable
	policy  Policy
}

// NewEngine creates a scoring engine with the given weights, grade table and factors.
func NewEngine(weights Weights, grades GradeTable, policy Policy, factors ...Factor) *Engine {
	return &Engine{factors: factors, weights: weights, grades: grades, policy: policy}
}

// NewDefaultEngine creates an engine with the standard factors, weights and bands.
func NewDefaultEngine() *Engine {
	p := DefaultPolicy()
	return NewEngine(DefaultWeights(), DefaultGradeTable(), p, DefaultFactors(p)...)
}

// Grades returns the engine's grade table.
func (e *Engine) Grades() GradeTable { return e.grades }

// Score evaluates all factors for a client and produces a complete Result.
func (e *Engine) Score(cr records.ClientRecords, asOf time.Time) (*Result, error) {
	if cr.Client.ID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("as-of time is required")
	}
	if !cr.Client.Status.Scorable() {
		return nil, fmt.Errorf("score %s (status %q): %w", cr.Client.ID, cr.Client.Status, ErrNotScorable)
	}

	result := &Result{
		ClientID:     cr.Client.ID,
		CalculatedAt: asOf.UTC(),
		Stats:        computeStats(cr, asOf, e.policy.EngagementWindowDays),
	}

	var composite float64
	for _, f := range e.factors {
		fr := f.Evaluate(cr, asOf)
		fr.Score = clamp(fr.Score)
		fr.Weight = e.weights.For(fr.Key)
		composite += float64(fr.Score) * fr.Weight
		result.Breakdown = append(result.Breakdown, fr)

		switch fr.Key {
		case KeyDeliveryRate:
			result.Factors.DeliveryRate = fr.Score
		case KeyOnTime:
			result.Factors.OnTimeScore = fr.Score
		case KeyPayment:
			result.Factors.PaymentScore = fr.Score
		case KeyEngagement:
			result.Factors.EngagementScore = fr.Score
		}
	}

	result.Score = clamp(int(math.Round(composite)))
	band, _ := e.grades.Band(result.Score)
	result.Grade = band.Grade
	result.Tier = band.Tier

	return result, nil
}

// computeStats gathers the raw counts behind the factors.
func computeStats(cr records.ClientRecords, asOf time.Time, windowDays int) Stats {
	s := Stats{
		Deliverables:    len(cr.Deliverables),
		Invoices:        len(cr.Invoices),
		RecentlyUpdated: countRecent(cr, asOf, windowDays),
	}
	for _, d := range cr.Deliverables {
		if d.Status.Completed() {
			s.CompletedDeliverables++
		}
		if records.DeliverableOverdue(d, asOf) {
			s.OverdueDeliverables++
		}
	}
	for _, t := range cr.Tasks {
		if records.TaskOverdue(t, asOf) {
			s.OverdueTasks++
		}
	}
	for _, inv := range cr.Invoices {
		switch inv.Status {
		case records.InvoicePaid:
			s.PaidInvoices++
		case records.InvoiceOverdue:
			s.OverdueInvoices++
		case records.InvoiceDraft, records.InvoiceSent:
		}
	}
	return s
}
