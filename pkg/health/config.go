package health

import (
	"fmt"
	"math"
)

// Weights are the composite weights for the four factors. They must be
// non-negative and sum to 1.
type Weights struct {
	DeliveryRate float64 `yaml:"delivery_rate" json:"delivery_rate"`
	OnTime       float64 `yaml:"on_time" json:"on_time"`
	Payment      float64 `yaml:"payment" json:"payment"`
	Engagement   float64 `yaml:"engagement" json:"engagement"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		DeliveryRate: 0.30,
		OnTime:       0.25,
		Payment:      0.25,
		Engagement:   0.20,
	}
}

// For returns the weight of the factor with the given key.
func (w Weights) For(key string) float64 {
	switch key {
	case KeyDeliveryRate:
		return w.DeliveryRate
	case KeyOnTime:
		return w.OnTime
	case KeyPayment:
		return w.Payment
	case KeyEngagement:
		return w.Engagement
	default:
		return 0
	}
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.DeliveryRate, w.OnTime, w.Payment, w.Engagement} {
		if v < 0 {
			return fmt.Errorf("weights must be non-negative, got %v", v)
		}
	}
	sum := w.DeliveryRate + w.OnTime + w.Payment + w.Engagement
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}

// Policy holds the numeric policy constants used by the factors.
type Policy struct {
	// On-time: flat penalty per overdue deliverable or task.
	OverdueItemPenalty int `yaml:"overdue_item_penalty"`

	// Payment: flat penalty per overdue invoice, after the paid ratio.
	OverdueInvoicePenalty int `yaml:"overdue_invoice_penalty"`

	// Engagement: trailing window and the three outcome scores.
	EngagementWindowDays int `yaml:"engagement_window_days"`
	ActiveEngagement     int `yaml:"active_engagement"`
	NewClientEngagement  int `yaml:"new_client_engagement"` // no deliverables yet
	DormantEngagement    int `yaml:"dormant_engagement"`    // deliverables, none touched in window
}

// DefaultPolicy returns the standard policy constants.
func DefaultPolicy() Policy {
	return Policy{
		OverdueItemPenalty:    25,
		OverdueInvoicePenalty: 20,
		EngagementWindowDays:  14,
		ActiveEngagement:      100,
		NewClientEngagement:   70,
		DormantEngagement:     40,
	}
}
