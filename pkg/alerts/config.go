package alerts

import "fmt"

// Windows holds the forward and backward day windows used by the rules.
// Forward windows are inclusive at both ends: a record due today or exactly
// N days out is inside an N-day window.
type Windows struct {
	ContractExpiryDays   int `yaml:"contract_expiry_days" json:"contract_expiry_days"`
	RecurringInvoiceDays int `yaml:"recurring_invoice_days" json:"recurring_invoice_days"`
	NotStartedDays       int `yaml:"not_started_days" json:"not_started_days"`
	StuckContentDays     int `yaml:"stuck_content_days" json:"stuck_content_days"`
}

// DefaultWindows returns the standard rule windows.
func DefaultWindows() Windows {
	return Windows{
		ContractExpiryDays:   30,
		RecurringInvoiceDays: 7,
		NotStartedDays:       3,
		StuckContentDays:     7,
	}
}

// Validate rejects negative windows.
func (w Windows) Validate() error {
	for name, v := range map[string]int{
		"contract_expiry_days":   w.ContractExpiryDays,
		"recurring_invoice_days": w.RecurringInvoiceDays,
		"not_started_days":       w.NotStartedDays,
		"stuck_content_days":     w.StuckContentDays,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, v)
		}
	}
	return nil
}
