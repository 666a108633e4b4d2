// Package records defines the operational data model read by the health
// scoring and alerting engines. These types are the shared vocabulary across
// all modules; the engines treat them as read-only input.
package records

import "time"

// Client is an agency client account.
type Client struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Market        Market       `json:"market"`
	Plan          string       `json:"plan,omitempty"`
	MonthlyValue  float64      `json:"monthly_value"`
	Currency      string       `json:"currency,omitempty"`
	Status        ClientStatus `json:"status"`
	ContractStart *Date        `json:"contract_start,omitempty"`
	ContractEnd   *Date        `json:"contract_end,omitempty"`
}

// Deliverable is a unit of production work owed to exactly one client.
type Deliverable struct {
	ID               string            `json:"id"`
	ClientID         string            `json:"client_id"`
	Title            string            `json:"title"`
	Status           DeliverableStatus `json:"status"`
	DueDate          *Date             `json:"due_date,omitempty"`
	ApprovedByClient bool              `json:"approved_by_client"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Invoice is a bill issued to a client for an accounting month.
type Invoice struct {
	ID                 string             `json:"id"`
	ClientID           string             `json:"client_id"`
	Number             string             `json:"number,omitempty"`
	Amount             float64            `json:"amount"`
	Currency           string             `json:"currency"`
	Status             InvoiceStatus      `json:"status"`
	Month              string             `json:"month,omitempty"` // YYYY-MM
	IsRecurring        bool               `json:"is_recurring"`
	RecurrenceInterval RecurrenceInterval `json:"recurrence_interval,omitempty"`
	NextDueDate        *Date              `json:"next_due_date,omitempty"`
}

// Task is an internal to-do item attached to a client, a deliverable, or both.
type Task struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"client_id,omitempty"`
	DeliverableID string     `json:"deliverable_id,omitempty"`
	Title         string     `json:"title"`
	Status        TaskStatus `json:"status"`
	DueDate       *Date      `json:"due_date,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ContentItem is a piece of content moving through the editorial pipeline.
type ContentItem struct {
	ID        string       `json:"id"`
	ClientID  string       `json:"client_id"`
	Title     string       `json:"title"`
	Stage     ContentStage `json:"stage"`
	CreatedAt time.Time    `json:"created_at"`
}

// Collection names one of the record collections in a Dataset.
type Collection string

const (
	CollectionClients      Collection = "clients"
	CollectionDeliverables Collection = "deliverables"
	CollectionInvoices     Collection = "invoices"
	CollectionTasks        Collection = "tasks"
	CollectionContent      Collection = "content"
)

// AllCollections lists every collection in load order.
var AllCollections = []Collection{
	CollectionClients,
	CollectionDeliverables,
	CollectionInvoices,
	CollectionTasks,
	CollectionContent,
}

// Dataset is a point-in-time bundle of everything the engines read.
// Unavailable records collections that failed to load; their slices are empty
// and must not be trusted.
type Dataset struct {
	Clients      []Client      `json:"clients"`
	Deliverables []Deliverable `json:"deliverables"`
	Invoices     []Invoice     `json:"invoices"`
	Tasks        []Task        `json:"tasks"`
	Content      []ContentItem `json:"content"`

	Unavailable map[Collection]error `json:"-"`
}

// Available reports whether the collection loaded successfully.
func (d *Dataset) Available(c Collection) bool {
	if d.Unavailable == nil {
		return true
	}
	_, failed := d.Unavailable[c]
	return !failed
}

// Missing lists the collections that failed to load, in load order.
func (d *Dataset) Missing() []Collection {
	var out []Collection
	for _, c := range AllCollections {
		if !d.Available(c) {
			out = append(out, c)
		}
	}
	return out
}

// MarkUnavailable records a load failure for a collection.
func (d *Dataset) MarkUnavailable(c Collection, err error) {
	if d.Unavailable == nil {
		d.Unavailable = make(map[Collection]error)
	}
	d.Unavailable[c] = err
}

// FindClient returns the client with the given ID, or nil.
func (d *Dataset) FindClient(id string) *Client {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return &d.Clients[i]
		}
	}
	return nil
}

// ClientRecords is the slice of a Dataset that belongs to one client.
type ClientRecords struct {
	Client       Client
	Deliverables []Deliverable
	Invoices     []Invoice
	Tasks        []Task
	Content      []ContentItem
}

// ForClient filters the dataset down to a single client's records. Tasks are
// assigned by TaskOwner, so a task naming a client belongs to that client
// even when it hangs off another client's deliverable.
func (d *Dataset) ForClient(c Client) ClientRecords {
	cr := ClientRecords{Client: c}

	deliverableClient := make(map[string]string, len(d.Deliverables))
	for _, del := range d.Deliverables {
		deliverableClient[del.ID] = del.ClientID
		if del.ClientID == c.ID {
			cr.Deliverables = append(cr.Deliverables, del)
		}
	}
	for _, inv := range d.Invoices {
		if inv.ClientID == c.ID {
			cr.Invoices = append(cr.Invoices, inv)
		}
	}
	for _, t := range d.Tasks {
		if TaskOwner(t, deliverableClient) == c.ID {
			cr.Tasks = append(cr.Tasks, t)
		}
	}
	for _, ci := range d.Content {
		if ci.ClientID == c.ID {
			cr.Content = append(cr.Content, ci)
		}
	}
	return cr
}

// TaskOwner resolves the client a task belongs to, using the deliverable
// index when the task carries no client ID of its own.
func TaskOwner(t Task, deliverableClient map[string]string) string {
	if t.ClientID != "" {
		return t.ClientID
	}
	return deliverableClient[t.DeliverableID]
}
