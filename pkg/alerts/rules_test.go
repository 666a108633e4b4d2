package alerts_test

import (
	"testing"

	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/records"
)

func dateOffset(days int) *records.Date {
	d := records.DateOf(asOf).AddDays(days)
	return &d
}

func activeScope(ds *records.Dataset) *alerts.Scope {
	ds.Clients = append(ds.Clients, records.Client{ID: "c1", Name: "Client One", Market: records.MarketSG, Status: records.ClientActive})
	return alerts.NewScope(ds, "")
}

func TestUpcomingRecurringInvoiceWindow(t *testing.T) {
	rule := &alerts.UpcomingRecurringInvoicesRule{WindowDays: 7}

	tests := []struct {
		name      string
		days      int
		recurring bool
		want      int
	}{
		{"due today", 0, true, 1},
		{"due in 7 days", 7, true, 1},
		{"due in 8 days", 8, true, 0},
		{"due yesterday", -1, true, 0},
		{"not recurring", 3, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := activeScope(&records.Dataset{Invoices: []records.Invoice{{
				ID: "i1", ClientID: "c1", Amount: 500, Currency: "SGD", Status: records.InvoicePaid,
				IsRecurring: tt.recurring, RecurrenceInterval: records.RecurMonthly, NextDueDate: dateOffset(tt.days),
			}}})
			got := rule.Evaluate(scope, asOf)
			if len(got) != tt.want {
				t.Fatalf("expected %d findings, got %d", tt.want, len(got))
			}
			if tt.want == 1 && (got[0].Priority != alerts.PriorityMedium || got[0].Category != alerts.CategoryInvoice) {
				t.Errorf("unexpected classification %s/%s", got[0].Priority, got[0].Category)
			}
		})
	}
}

func TestStuckContentAge(t *testing.T) {
	rule := &alerts.StuckContentRule{MaxAgeDays: 7}

	tests := []struct {
		name  string
		age   int
		stage records.ContentStage
		want  int
	}{
		{"idea for 8 days", 8, records.ContentIdea, 1},
		{"idea for 7 days", 7, records.ContentIdea, 0},
		{"idea for 6 days", 6, records.ContentIdea, 0},
		{"drafting for 30 days", 30, records.ContentDrafting, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := activeScope(&records.Dataset{Content: []records.ContentItem{{
				ID: "ct1", ClientID: "c1", Title: "Post", Stage: tt.stage, CreatedAt: asOf.AddDate(0, 0, -tt.age),
			}}})
			got := rule.Evaluate(scope, asOf)
			if len(got) != tt.want {
				t.Fatalf("expected %d findings, got %d", tt.want, len(got))
			}
			if tt.want == 1 && got[0].Priority != alerts.PriorityLow {
				t.Errorf("priority = %s, want low", got[0].Priority)
			}
		})
	}
}

func TestOverdueDeliverableGranularity(t *testing.T) {
	ds := &records.Dataset{Deliverables: []records.Deliverable{
		{ID: "d1", ClientID: "c1", Title: "Video", Status: records.DeliverableInProgress, DueDate: dateOffset(-1)},
		{ID: "d2", ClientID: "c1", Title: "Deck", Status: records.DeliverableReview, DueDate: dateOffset(-4)},
		{ID: "d3", ClientID: "c1", Title: "Copy", Status: records.DeliverableDelivered, DueDate: dateOffset(-4)},
		{ID: "d4", ClientID: "c1", Title: "Today", Status: records.DeliverableInProgress, DueDate: dateOffset(0)},
	}}
	scope := activeScope(ds)

	perClient := (&alerts.OverdueDeliverablesRule{Granularity: alerts.PerClient}).Evaluate(scope, asOf)
	if len(perClient) != 1 {
		t.Fatalf("per-client: expected 1 finding, got %d", len(perClient))
	}
	f := perClient[0]
	if f.Priority != alerts.PriorityHigh || f.Category != alerts.CategoryOverdue {
		t.Errorf("per-client classification = %s/%s", f.Priority, f.Category)
	}
	if len(f.RelatedIDs) != 2 || f.RelatedIDs[0] != "d1" || f.RelatedIDs[1] != "d2" {
		t.Errorf("related IDs = %v, want [d1 d2]", f.RelatedIDs)
	}

	perItem := (&alerts.OverdueDeliverablesRule{Granularity: alerts.PerItem}).Evaluate(scope, asOf)
	if len(perItem) != 2 {
		t.Fatalf("per-item: expected 2 findings, got %d", len(perItem))
	}
}

func TestOverdueInvoicesGroupByCurrency(t *testing.T) {
	scope := activeScope(&records.Dataset{Invoices: []records.Invoice{
		{ID: "i1", ClientID: "c1", Amount: 100, Currency: "SGD", Status: records.InvoiceOverdue},
		{ID: "i2", ClientID: "c1", Amount: 250, Currency: "SGD", Status: records.InvoiceOverdue},
		{ID: "i3", ClientID: "c1", Amount: 80, Currency: "USD", Status: records.InvoiceOverdue},
		{ID: "i4", ClientID: "c1", Amount: 999, Currency: "SGD", Status: records.InvoiceSent},
	}})

	got := (&alerts.OverdueInvoicesRule{}).Evaluate(scope, asOf)
	alerts.SortFindings(got)
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	totals := map[string]float64{}
	for _, f := range got {
		totals[f.Currency] = f.Amount
	}
	if totals["SGD"] != 350 || totals["USD"] != 80 {
		t.Errorf("totals = %v", totals)
	}
}

func TestExpiringContractWindow(t *testing.T) {
	rule := &alerts.ExpiringContractsRule{WindowDays: 30}

	for _, tt := range []struct {
		days int
		want int
	}{{0, 1}, {30, 1}, {31, 0}, {-1, 0}} {
		ds := &records.Dataset{Clients: []records.Client{
			{ID: "c2", Name: "Two", Status: records.ClientActive, ContractEnd: dateOffset(tt.days)},
			{ID: "c3", Name: "Gone", Status: records.ClientChurned, ContractEnd: dateOffset(tt.days)},
		}}
		got := rule.Evaluate(alerts.NewScope(ds, ""), asOf)
		if len(got) != tt.want {
			t.Errorf("contract end in %d days: expected %d findings, got %d", tt.days, tt.want, len(got))
		}
	}
}

func TestNotStartedWindow(t *testing.T) {
	rule := &alerts.DeliverablesNotStartedRule{WindowDays: 3}
	scope := activeScope(&records.Dataset{Deliverables: []records.Deliverable{
		{ID: "soon", ClientID: "c1", Status: records.DeliverableNotStarted, DueDate: dateOffset(3)},
		{ID: "later", ClientID: "c1", Status: records.DeliverableNotStarted, DueDate: dateOffset(4)},
		{ID: "started", ClientID: "c1", Status: records.DeliverableInProgress, DueDate: dateOffset(1)},
		{ID: "undated", ClientID: "c1", Status: records.DeliverableNotStarted},
	}})

	got := rule.Evaluate(scope, asOf)
	if len(got) != 1 || got[0].SubjectID != "soon" {
		t.Errorf("expected only 'soon', got %+v", got)
	}
}

func TestBlockedTaskResolvesClientThroughDeliverable(t *testing.T) {
	scope := activeScope(&records.Dataset{
		Deliverables: []records.Deliverable{{ID: "d1", ClientID: "c1", Status: records.DeliverableInProgress}},
		Tasks: []records.Task{
			{ID: "t1", DeliverableID: "d1", Title: "Waiting", Status: records.TaskBlocked},
			{ID: "t2", ClientID: "c1", Title: "Fine", Status: records.TaskInProgress},
			{ID: "t3", ClientID: "other", Title: "Out of scope", Status: records.TaskBlocked},
		},
	})

	got := (&alerts.BlockedTasksRule{}).Evaluate(scope, asOf)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if got[0].ClientID != "c1" || got[0].SubjectID != "t1" {
		t.Errorf("finding = %s/%s, want c1/t1", got[0].ClientID, got[0].SubjectID)
	}
}
