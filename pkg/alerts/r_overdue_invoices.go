package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// OverdueInvoicesRule reports overdue invoices, one finding per client and
// currency carrying the total outstanding amount.
type OverdueInvoicesRule struct{}

func (r *OverdueInvoicesRule) Key() string { return "overdue_invoices" }

func (r *OverdueInvoicesRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionInvoices}
}

func (r *OverdueInvoicesRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	type key struct{ client, currency string }
	groups := make(map[key][]records.Invoice)
	for _, inv := range s.Invoices {
		switch inv.Status {
		case records.InvoiceOverdue:
			k := key{inv.ClientID, inv.Currency}
			groups[k] = append(groups[k], inv)
		case records.InvoiceDraft, records.InvoiceSent, records.InvoicePaid:
		}
	}

	var findings []Finding
	for k, invs := range groups {
		sort.Slice(invs, func(i, j int) bool { return invs[i].ID < invs[j].ID })
		var total float64
		ids := make([]string, 0, len(invs))
		for _, inv := range invs {
			total += inv.Amount
			ids = append(ids, inv.ID)
		}
		subject := k.client
		if k.currency != "" {
			subject = k.client + "/" + k.currency
		}
		findings = append(findings, Finding{
			Priority:    PriorityHigh,
			Category:    CategoryInvoice,
			SubjectID:   subject,
			ClientID:    k.client,
			Title:       fmt.Sprintf("%d overdue invoice(s) for %s", len(invs), s.ClientName(k.client)),
			Description: fmt.Sprintf("%.2f %s outstanding. Follow up on payment.", total, k.currency),
			RelatedIDs:  ids,
			Amount:      total,
			Currency:    k.currency,
		})
	}
	return findings
}
