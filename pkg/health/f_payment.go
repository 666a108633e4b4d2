package health

import (
	"fmt"
	"math"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// PaymentFactor scores the paid share of a client's invoices minus a flat
// penalty per overdue invoice. A client with no invoices scores 100.
type PaymentFactor struct {
	OverduePenalty int // points lost per overdue invoice
}

func (f *PaymentFactor) Key() string  { return KeyPayment }
func (f *PaymentFactor) Name() string { return "Payment" }

func (f *PaymentFactor) Evaluate(cr records.ClientRecords, asOf time.Time) FactorResult {
	result := FactorResult{Key: f.Key(), Name: f.Name()}

	total := len(cr.Invoices)
	if total == 0 {
		result.Score = 100
		return result
	}

	paid, overdue := 0, 0
	for _, inv := range cr.Invoices {
		switch inv.Status {
		case records.InvoicePaid:
			paid++
		case records.InvoiceOverdue:
			overdue++
			result.Evidence = append(result.Evidence, EvidenceItem{
				Type:     EvidenceOverdueInvoice,
				Summary:  fmt.Sprintf("Invoice %s overdue (%.2f %s)", invoiceLabel(inv), inv.Amount, inv.Currency),
				RecordID: inv.ID,
			})
		case records.InvoiceDraft, records.InvoiceSent:
			result.Evidence = append(result.Evidence, EvidenceItem{
				Type:     EvidenceUnpaidInvoice,
				Summary:  fmt.Sprintf("Invoice %s is %s", invoiceLabel(inv), inv.Status),
				RecordID: inv.ID,
			})
		}
	}

	ratio := float64(paid) / float64(total) * 100
	result.Score = clamp(int(math.Round(ratio)) - f.OverduePenalty*overdue)
	return result
}

func invoiceLabel(inv records.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return inv.ID
}
