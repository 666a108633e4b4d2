package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// InvoiceStatusFetcher reports the live status of invoices by reference.
// A reference is either our invoice ID or the invoice number.
type InvoiceStatusFetcher interface {
	FetchStatuses(ctx context.Context, asOf time.Time) (map[string]records.InvoiceStatus, error)
}

// StripeInvoices reads invoice status from Stripe. Stripe invoices are
// matched through metadata["invoice_id"] or their number.
type StripeInvoices struct {
	api      *client.API
	lookback time.Duration
}

// NewStripeInvoices creates a fetcher that scans invoices created within lookback.
func NewStripeInvoices(apiKey string, lookback time.Duration) *StripeInvoices {
	return &StripeInvoices{api: client.New(apiKey, nil), lookback: lookback}
}

func (s *StripeInvoices) FetchStatuses(ctx context.Context, asOf time.Time) (map[string]records.InvoiceStatus, error) {
	params := &stripe.InvoiceListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	if s.lookback > 0 {
		params.CreatedRange = &stripe.RangeQueryParams{
			GreaterThanOrEqual: asOf.Add(-s.lookback).Unix(),
		}
	}

	out := make(map[string]records.InvoiceStatus)
	it := s.api.Invoices.List(params)
	for it.Next() {
		inv := it.Invoice()
		status, ok := MapStripeStatus(inv.Status, inv.DueDate, asOf)
		if !ok {
			continue
		}
		if ref := inv.Metadata["invoice_id"]; ref != "" {
			out[ref] = status
		}
		if inv.Number != "" {
			out[inv.Number] = status
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list stripe invoices: %w", err)
	}
	return out, nil
}

// MapStripeStatus converts a Stripe invoice status. Open invoices past their
// due date read as overdue. Void and uncollectible invoices are not mapped.
func MapStripeStatus(status stripe.InvoiceStatus, dueUnix int64, asOf time.Time) (records.InvoiceStatus, bool) {
	switch status {
	case stripe.InvoiceStatusDraft:
		return records.InvoiceDraft, true
	case stripe.InvoiceStatusPaid:
		return records.InvoicePaid, true
	case stripe.InvoiceStatusOpen:
		if dueUnix > 0 {
			due := records.DateOf(time.Unix(dueUnix, 0))
			if records.IsOverdue(&due, asOf) {
				return records.InvoiceOverdue, true
			}
		}
		return records.InvoiceSent, true
	default:
		return "", false
	}
}

// InvoiceOverlay wraps a source and replaces invoice status with live values.
// When the fetcher fails, the base statuses are kept and the failure logged.
type InvoiceOverlay struct {
	base    Source
	fetcher InvoiceStatusFetcher
	now     func() time.Time
}

// NewInvoiceOverlay creates an overlay. now defaults to time.Now.
func NewInvoiceOverlay(base Source, fetcher InvoiceStatusFetcher, now func() time.Time) *InvoiceOverlay {
	if now == nil {
		now = time.Now
	}
	return &InvoiceOverlay{base: base, fetcher: fetcher, now: now}
}

func (o *InvoiceOverlay) Load(ctx context.Context) (*records.Dataset, error) {
	ds, err := o.base.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ds.Available(records.CollectionInvoices) || len(ds.Invoices) == 0 {
		return ds, nil
	}

	statuses, err := o.fetcher.FetchStatuses(ctx, o.now())
	if err != nil {
		log.Printf("source: invoice overlay skipped: %v", err)
		return ds, nil
	}

	updated := 0
	for i := range ds.Invoices {
		inv := &ds.Invoices[i]
		status, ok := statuses[inv.ID]
		if !ok && inv.Number != "" {
			status, ok = statuses[inv.Number]
		}
		if ok && status != inv.Status {
			inv.Status = status
			updated++
		}
	}
	if updated > 0 {
		log.Printf("source: invoice overlay updated %d invoice status(es)", updated)
	}
	return ds, nil
}
