package alerts

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// UpcomingRecurringInvoicesRule flags recurring invoices whose next issue
// date falls within the forward window.
type UpcomingRecurringInvoicesRule struct {
	WindowDays int
}

func (r *UpcomingRecurringInvoicesRule) Key() string { return "upcoming_recurring_invoices" }

func (r *UpcomingRecurringInvoicesRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionInvoices}
}

func (r *UpcomingRecurringInvoicesRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	var findings []Finding
	for _, inv := range s.Invoices {
		if !inv.IsRecurring || !records.WithinDays(inv.NextDueDate, asOf, r.WindowDays) {
			continue
		}
		interval := string(inv.RecurrenceInterval)
		if interval == "" {
			interval = "recurring"
		}
		findings = append(findings, Finding{
			Priority:    PriorityMedium,
			Category:    CategoryInvoice,
			SubjectID:   inv.ID,
			ClientID:    inv.ClientID,
			Title:       fmt.Sprintf("Recurring invoice due for %s", s.ClientName(inv.ClientID)),
			Description: fmt.Sprintf("Next %s invoice of %.2f %s is due %s (in %d day(s)).", interval, inv.Amount, inv.Currency, inv.NextDueDate, inv.NextDueDate.DaysFrom(asOf)),
			RelatedIDs:  []string{inv.ID},
			Amount:      inv.Amount,
			Currency:    inv.Currency,
			DueDate:     inv.NextDueDate,
		})
	}
	return findings
}
