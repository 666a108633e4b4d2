package alerts

// DefaultRules returns the standard rule set for the given windows.
func DefaultRules(w Windows, g Granularity) []Rule {
	return []Rule{
		&OverdueDeliverablesRule{Granularity: g},
		&OverdueInvoicesRule{},
		&ExpiringContractsRule{WindowDays: w.ContractExpiryDays},
		&UpcomingRecurringInvoicesRule{WindowDays: w.RecurringInvoiceDays},
		&DeliverablesNotStartedRule{WindowDays: w.NotStartedDays},
		&StuckContentRule{MaxAgeDays: w.StuckContentDays},
		&BlockedTasksRule{},
	}
}
