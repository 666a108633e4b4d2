package alerts

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// ExpiringContractsRule flags contracts ending within the forward window.
// Churned clients never reach a rule, so they are never flagged.
type ExpiringContractsRule struct {
	WindowDays int
}

func (r *ExpiringContractsRule) Key() string { return "expiring_contracts" }

func (r *ExpiringContractsRule) Requires() []records.Collection { return nil }

func (r *ExpiringContractsRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	var findings []Finding
	for _, c := range s.Clients {
		if !records.WithinDays(c.ContractEnd, asOf, r.WindowDays) {
			continue
		}
		days := c.ContractEnd.DaysFrom(asOf)
		findings = append(findings, Finding{
			Priority:    PriorityMedium,
			Category:    CategoryDeadline,
			SubjectID:   c.ID,
			ClientID:    c.ID,
			Title:       fmt.Sprintf("Contract for %s ends in %d day(s)", s.ClientName(c.ID), days),
			Description: fmt.Sprintf("Contract ends %s. Schedule a renewal conversation.", c.ContractEnd),
			Amount:      c.MonthlyValue,
			Currency:    c.Currency,
			DueDate:     c.ContractEnd,
		})
	}
	return findings
}
