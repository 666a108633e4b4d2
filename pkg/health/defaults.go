package health

// DefaultFactors returns the standard set of health factors for a policy.
func DefaultFactors(p Policy) []Factor {
	return []Factor{
		&DeliveryRateFactor{},
		&OnTimeFactor{
			Penalty: p.OverdueItemPenalty,
		},
		&PaymentFactor{
			OverduePenalty: p.OverdueInvoicePenalty,
		},
		&EngagementFactor{
			WindowDays: p.EngagementWindowDays,
			Active:     p.ActiveEngagement,
			NewClient:  p.NewClientEngagement,
			Dormant:    p.DormantEngagement,
		},
	}
}
