package alerts

import "github.com/agencypulse/agencypulse/pkg/records"

// Scope is the slice of a Dataset a sweep runs over: the non-churned clients
// of the selected market and the records that belong to them.
type Scope struct {
	Clients      []records.Client
	Deliverables []records.Deliverable
	Invoices     []records.Invoice
	Tasks        []records.Task
	Content      []records.ContentItem

	clients           map[string]*records.Client
	deliverableClient map[string]string
}

// NewScope filters a dataset down to the clients a sweep covers. An empty
// market selects every market.
func NewScope(ds *records.Dataset, market records.Market) *Scope {
	s := &Scope{
		clients:           make(map[string]*records.Client),
		deliverableClient: make(map[string]string),
	}

	for _, c := range ds.Clients {
		if c.Status == records.ClientChurned {
			continue
		}
		if market != "" && c.Market != market {
			continue
		}
		s.Clients = append(s.Clients, c)
	}
	for i := range s.Clients {
		s.clients[s.Clients[i].ID] = &s.Clients[i]
	}

	for _, d := range ds.Deliverables {
		s.deliverableClient[d.ID] = d.ClientID
		if s.Includes(d.ClientID) {
			s.Deliverables = append(s.Deliverables, d)
		}
	}
	for _, inv := range ds.Invoices {
		if s.Includes(inv.ClientID) {
			s.Invoices = append(s.Invoices, inv)
		}
	}
	for _, t := range ds.Tasks {
		if s.Includes(s.TaskClient(t)) {
			s.Tasks = append(s.Tasks, t)
		}
	}
	for _, ci := range ds.Content {
		if s.Includes(ci.ClientID) {
			s.Content = append(s.Content, ci)
		}
	}
	return s
}

// Includes reports whether a client is in scope.
func (s *Scope) Includes(clientID string) bool {
	_, ok := s.clients[clientID]
	return ok
}

// Client returns an in-scope client by ID, or nil.
func (s *Scope) Client(id string) *records.Client {
	return s.clients[id]
}

// ClientName returns the display name of an in-scope client, falling back to its ID.
func (s *Scope) ClientName(id string) string {
	if c := s.clients[id]; c != nil && c.Name != "" {
		return c.Name
	}
	return id
}

// TaskClient resolves the client a task belongs to.
func (s *Scope) TaskClient(t records.Task) string {
	return records.TaskOwner(t, s.deliverableClient)
}
