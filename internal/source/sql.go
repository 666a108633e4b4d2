package source

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/pkg/records"
)

// SQLSource reads records from the agency database.
type SQLSource struct {
	db      *sql.DB
	dialect scorecache.Dialect
}

// NewSQLSource creates a source over an open database handle.
func NewSQLSource(db *sql.DB, dialect scorecache.Dialect) *SQLSource {
	return &SQLSource{db: db, dialect: dialect}
}

// Load reads every collection independently. A failed collection is marked
// unavailable and logged; the remaining collections are still returned.
func (s *SQLSource) Load(ctx context.Context) (*records.Dataset, error) {
	ds := &records.Dataset{}
	loaders := []struct {
		collection records.Collection
		load       func(context.Context, *records.Dataset) error
	}{
		{records.CollectionClients, s.loadClients},
		{records.CollectionDeliverables, s.loadDeliverables},
		{records.CollectionInvoices, s.loadInvoices},
		{records.CollectionTasks, s.loadTasks},
		{records.CollectionContent, s.loadContent},
	}

	for _, l := range loaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.load(ctx, ds); err != nil {
			log.Printf("source: %s unavailable: %v", l.collection, err)
			ds.MarkUnavailable(l.collection, err)
		}
	}
	return ds, nil
}

func (s *SQLSource) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, scorecache.Rebind(s.dialect, q), args...)
}

func (s *SQLSource) loadClients(ctx context.Context, ds *records.Dataset) error {
	rows, err := s.query(ctx,
		`SELECT id, name, market, plan, monthly_value, currency, status, contract_start, contract_end
		 FROM clients ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []records.Client
	for rows.Next() {
		var (
			c                          records.Client
			market, status             string
			plan, currency             sql.NullString
			contractStart, contractEnd sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &market, &plan, &c.MonthlyValue, &currency, &status, &contractStart, &contractEnd); err != nil {
			return fmt.Errorf("scan client: %w", err)
		}
		if c.Market, err = records.ParseMarket(market); err != nil {
			return fmt.Errorf("client %s: %w", c.ID, err)
		}
		if c.Status, err = records.ParseClientStatus(status); err != nil {
			return fmt.Errorf("client %s: %w", c.ID, err)
		}
		c.Plan, c.Currency = plan.String, currency.String
		c.ContractStart, c.ContractEnd = nullDate(contractStart), nullDate(contractEnd)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.Clients = out
	return nil
}

func (s *SQLSource) loadDeliverables(ctx context.Context, ds *records.Dataset) error {
	rows, err := s.query(ctx,
		`SELECT id, client_id, title, status, due_date, approved_by_client, updated_at
		 FROM deliverables ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query deliverables: %w", err)
	}
	defer rows.Close()

	var out []records.Deliverable
	for rows.Next() {
		var (
			d         records.Deliverable
			status    string
			due       sql.NullTime
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.ClientID, &d.Title, &status, &due, &d.ApprovedByClient, &updatedAt); err != nil {
			return fmt.Errorf("scan deliverable: %w", err)
		}
		if d.Status, err = records.ParseDeliverableStatus(status); err != nil {
			return fmt.Errorf("deliverable %s: %w", d.ID, err)
		}
		d.DueDate = nullDate(due)
		d.UpdatedAt = updatedAt.Time
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.Deliverables = out
	return nil
}

func (s *SQLSource) loadInvoices(ctx context.Context, ds *records.Dataset) error {
	rows, err := s.query(ctx,
		`SELECT id, client_id, number, amount, currency, status, month, is_recurring,
		        recurrence_interval, next_due_date
		 FROM invoices ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var out []records.Invoice
	for rows.Next() {
		var (
			inv                     records.Invoice
			status                  string
			number, month, interval sql.NullString
			nextDue                 sql.NullTime
		)
		if err := rows.Scan(&inv.ID, &inv.ClientID, &number, &inv.Amount, &inv.Currency, &status, &month,
			&inv.IsRecurring, &interval, &nextDue); err != nil {
			return fmt.Errorf("scan invoice: %w", err)
		}
		if inv.Status, err = records.ParseInvoiceStatus(status); err != nil {
			return fmt.Errorf("invoice %s: %w", inv.ID, err)
		}
		if inv.RecurrenceInterval, err = records.ParseRecurrenceInterval(interval.String); err != nil {
			return fmt.Errorf("invoice %s: %w", inv.ID, err)
		}
		inv.Number, inv.Month = number.String, month.String
		inv.NextDueDate = nullDate(nextDue)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.Invoices = out
	return nil
}

func (s *SQLSource) loadTasks(ctx context.Context, ds *records.Dataset) error {
	rows, err := s.query(ctx,
		`SELECT id, client_id, deliverable_id, title, status, due_date, updated_at
		 FROM tasks ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []records.Task
	for rows.Next() {
		var (
			t                       records.Task
			status                  string
			clientID, deliverableID sql.NullString
			due, updatedAt          sql.NullTime
		)
		if err := rows.Scan(&t.ID, &clientID, &deliverableID, &t.Title, &status, &due, &updatedAt); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		if t.Status, err = records.ParseTaskStatus(status); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.ClientID, t.DeliverableID = clientID.String, deliverableID.String
		t.DueDate = nullDate(due)
		t.UpdatedAt = updatedAt.Time
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.Tasks = out
	return nil
}

func (s *SQLSource) loadContent(ctx context.Context, ds *records.Dataset) error {
	rows, err := s.query(ctx,
		`SELECT id, client_id, title, stage, created_at FROM content_items ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query content items: %w", err)
	}
	defer rows.Close()

	var out []records.ContentItem
	for rows.Next() {
		var (
			ci    records.ContentItem
			stage string
		)
		if err := rows.Scan(&ci.ID, &ci.ClientID, &ci.Title, &stage, &ci.CreatedAt); err != nil {
			return fmt.Errorf("scan content item: %w", err)
		}
		if ci.Stage, err = records.ParseContentStage(stage); err != nil {
			return fmt.Errorf("content item %s: %w", ci.ID, err)
		}
		out = append(out, ci)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	ds.Content = out
	return nil
}

func nullDate(t sql.NullTime) *records.Date {
	if !t.Valid {
		return nil
	}
	d := records.DateOf(t.Time)
	return &d
}
