package records_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2026-03-05", want: "2026-03-05"},
		{in: "2026-03-05T23:30:00Z", want: "2026-03-05"},
		{in: "2026-03-05T01:30:00+08:00", want: "2026-03-04"},
		{in: "05/03/2026", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := records.ParseDate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, records.ErrMalformedDate) {
					t.Fatalf("expected ErrMalformedDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDaysFrom(t *testing.T) {
	asOf := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date records.Date
		want int
	}{
		{"same day", records.NewDate(2026, 10, 17), 0},
		{"tomorrow", records.NewDate(2026, 10, 18), 1},
		{"yesterday", records.NewDate(2026, 10, 16), -1},
		{"across month", records.NewDate(2026, 11, 16), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.date.DaysFrom(asOf); got != tt.want {
				t.Errorf("DaysFrom = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	asOf := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	yesterday := records.NewDate(2026, 10, 16)
	today := records.NewDate(2026, 10, 17)

	if !records.IsOverdue(&yesterday, asOf) {
		t.Error("yesterday should be overdue")
	}
	if records.IsOverdue(&today, asOf) {
		t.Error("today should not be overdue")
	}
	if records.IsOverdue(nil, asOf) {
		t.Error("nil due date should never be overdue")
	}
}

func TestDeliverableOverdueIgnoresCompleted(t *testing.T) {
	asOf := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	due := records.NewDate(2026, 10, 1)

	for _, status := range []records.DeliverableStatus{records.DeliverableDelivered, records.DeliverableApproved} {
		d := records.Deliverable{Status: status, DueDate: &due}
		if records.DeliverableOverdue(d, asOf) {
			t.Errorf("status %s should not be overdue", status)
		}
	}

	d := records.Deliverable{Status: records.DeliverableReview, DueDate: &due}
	if !records.DeliverableOverdue(d, asOf) {
		t.Error("in-review deliverable past due should be overdue")
	}
}

func TestDecodeDatasetRejectsUnknownStatus(t *testing.T) {
	_, err := records.DecodeDataset([]byte(`{"deliverables":[{"id":"d1","status":"Shipped"}]}`))
	if err == nil {
		t.Fatal("expected error for unknown deliverable status")
	}
}

func TestDecodeDatasetRejectsMissingEnums(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"client status", `{"clients":[{"id":"c1","market":"SG"}]}`},
		{"client market", `{"clients":[{"id":"c1","status":"Active"}]}`},
		{"deliverable status", `{"deliverables":[{"id":"d1","client_id":"c1"}]}`},
		{"invoice status", `{"invoices":[{"id":"i1","client_id":"c1","amount":10,"currency":"SGD"}]}`},
		{"task status", `{"tasks":[{"id":"t1","client_id":"c1"}]}`},
		{"task owner", `{"tasks":[{"id":"t1","status":"To Do"}]}`},
		{"content stage", `{"content":[{"id":"ci1","client_id":"c1"}]}`},
		{"deliverable id", `{"deliverables":[{"client_id":"c1","status":"Review"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := records.DecodeDataset([]byte(tt.json))
			if !errors.Is(err, records.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestDecodeDatasetRejectsMalformedDate(t *testing.T) {
	_, err := records.DecodeDataset([]byte(`{"tasks":[{"id":"t1","client_id":"c1","status":"To Do","due_date":"next week"}]}`))
	if !errors.Is(err, records.ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}

func TestSaveLoadDataset(t *testing.T) {
	due := records.NewDate(2026, 11, 1)
	ds := &records.Dataset{
		Clients: []records.Client{{ID: "c1", Name: "Acme", Market: records.MarketSG, Status: records.ClientActive}},
		Deliverables: []records.Deliverable{
			{ID: "d1", ClientID: "c1", Title: "Launch video", Status: records.DeliverableInProgress, DueDate: &due},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "dataset.json")
	if err := records.SaveDataset(path, ds); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	got, err := records.LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(got.Deliverables) != 1 || got.Deliverables[0].DueDate.String() != "2026-11-01" {
		t.Errorf("unexpected deliverables after reload: %+v", got.Deliverables)
	}
}

func TestForClient(t *testing.T) {
	ds := &records.Dataset{
		Clients: []records.Client{{ID: "c1"}, {ID: "c2"}},
		Deliverables: []records.Deliverable{
			{ID: "d1", ClientID: "c1"},
			{ID: "d2", ClientID: "c2"},
		},
		Tasks: []records.Task{
			{ID: "t1", ClientID: "c1"},
			{ID: "t2", DeliverableID: "d1"},
			{ID: "t3", DeliverableID: "d2"},
			{ID: "t4", ClientID: "c2", DeliverableID: "d1"},
		},
		Invoices: []records.Invoice{{ID: "i1", ClientID: "c1"}, {ID: "i2", ClientID: "c2"}},
	}

	cr := ds.ForClient(*ds.FindClient("c1"))
	if len(cr.Deliverables) != 1 {
		t.Errorf("expected 1 deliverable, got %d", len(cr.Deliverables))
	}
	if len(cr.Tasks) != 2 {
		t.Errorf("expected 2 tasks (direct + via deliverable), got %d", len(cr.Tasks))
	}
	if len(cr.Invoices) != 1 {
		t.Errorf("expected 1 invoice, got %d", len(cr.Invoices))
	}

	// t4 names c2 directly, so it counts for c2 only, matching TaskOwner.
	other := ds.ForClient(*ds.FindClient("c2"))
	var ids []string
	for _, task := range other.Tasks {
		ids = append(ids, task.ID)
	}
	if len(ids) != 2 || ids[0] != "t3" || ids[1] != "t4" {
		t.Errorf("c2 tasks = %v, want [t3 t4]", ids)
	}
}

func TestDatasetAvailability(t *testing.T) {
	var ds records.Dataset
	if !ds.Available(records.CollectionInvoices) {
		t.Error("collections should be available by default")
	}
	ds.MarkUnavailable(records.CollectionInvoices, errors.New("timeout"))
	if ds.Available(records.CollectionInvoices) {
		t.Error("invoices should be unavailable after MarkUnavailable")
	}
	if !ds.Available(records.CollectionTasks) {
		t.Error("tasks should still be available")
	}
	ds.MarkUnavailable(records.CollectionDeliverables, errors.New("timeout"))
	missing := ds.Missing()
	if len(missing) != 2 || missing[0] != records.CollectionDeliverables || missing[1] != records.CollectionInvoices {
		t.Errorf("Missing() = %v, want [deliverables invoices]", missing)
	}
}
