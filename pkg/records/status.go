package records

import (
	"encoding/json"
	"fmt"
)

// ClientStatus is the lifecycle stage of a client.
type ClientStatus string

const (
	ClientProspect   ClientStatus = "Prospect"
	ClientOnboarding ClientStatus = "Onboarding"
	ClientActive     ClientStatus = "Active"
	ClientChurned    ClientStatus = "Churned"
)

// ParseClientStatus validates a raw client status.
func ParseClientStatus(s string) (ClientStatus, error) {
	switch v := ClientStatus(s); v {
	case ClientProspect, ClientOnboarding, ClientActive, ClientChurned:
		return v, nil
	}
	return "", fmt.Errorf("unknown client status %q", s)
}

// Scorable reports whether health scores are computed for clients in this stage.
func (s ClientStatus) Scorable() bool {
	switch s {
	case ClientActive:
		return true
	case ClientProspect, ClientOnboarding, ClientChurned:
		return false
	}
	return false
}

func (s *ClientStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseClientStatus, s)
}

// Market is one of the agency's operating regions.
type Market string

const (
	MarketSG Market = "SG"
	MarketID Market = "ID"
	MarketUS Market = "US"
)

// Markets lists every operating region.
var Markets = []Market{MarketSG, MarketID, MarketUS}

// ParseMarket validates a raw market code.
func ParseMarket(s string) (Market, error) {
	switch v := Market(s); v {
	case MarketSG, MarketID, MarketUS:
		return v, nil
	}
	return "", fmt.Errorf("unknown market %q", s)
}

func (m *Market) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseMarket, m)
}

// DeliverableStatus is a stage in the production pipeline.
type DeliverableStatus string

const (
	DeliverableNotStarted DeliverableStatus = "Not Started"
	DeliverableInProgress DeliverableStatus = "In Progress"
	DeliverableReview     DeliverableStatus = "Review"
	DeliverableDelivered  DeliverableStatus = "Delivered"
	DeliverableApproved   DeliverableStatus = "Approved"
)

// ParseDeliverableStatus validates a raw deliverable status.
func ParseDeliverableStatus(s string) (DeliverableStatus, error) {
	switch v := DeliverableStatus(s); v {
	case DeliverableNotStarted, DeliverableInProgress, DeliverableReview, DeliverableDelivered, DeliverableApproved:
		return v, nil
	}
	return "", fmt.Errorf("unknown deliverable status %q", s)
}

// Completed reports whether the deliverable reached a terminal success stage.
func (s DeliverableStatus) Completed() bool {
	switch s {
	case DeliverableDelivered, DeliverableApproved:
		return true
	case DeliverableNotStarted, DeliverableInProgress, DeliverableReview:
		return false
	}
	return false
}

func (s *DeliverableStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseDeliverableStatus, s)
}

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "Draft"
	InvoiceSent    InvoiceStatus = "Sent"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// ParseInvoiceStatus validates a raw invoice status.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch v := InvoiceStatus(s); v {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return v, nil
	}
	return "", fmt.Errorf("unknown invoice status %q", s)
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseInvoiceStatus, s)
}

// RecurrenceInterval is how often a recurring invoice is reissued.
type RecurrenceInterval string

const (
	RecurMonthly   RecurrenceInterval = "monthly"
	RecurQuarterly RecurrenceInterval = "quarterly"
	RecurYearly    RecurrenceInterval = "yearly"
)

// ParseRecurrenceInterval validates a raw interval. The empty string is
// accepted for non-recurring invoices.
func ParseRecurrenceInterval(s string) (RecurrenceInterval, error) {
	switch v := RecurrenceInterval(s); v {
	case "", RecurMonthly, RecurQuarterly, RecurYearly:
		return v, nil
	}
	return "", fmt.Errorf("unknown recurrence interval %q", s)
}

func (r *RecurrenceInterval) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseRecurrenceInterval, r)
}

// TaskStatus is the state of a task.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
	TaskBlocked    TaskStatus = "Blocked"
)

// ParseTaskStatus validates a raw task status.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch v := TaskStatus(s); v {
	case TaskToDo, TaskInProgress, TaskDone, TaskBlocked:
		return v, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Done reports whether the task is finished.
func (s TaskStatus) Done() bool {
	switch s {
	case TaskDone:
		return true
	case TaskToDo, TaskInProgress, TaskBlocked:
		return false
	}
	return false
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseTaskStatus, s)
}

// ContentStage is a step in the editorial pipeline. ContentIdea is the
// initial stage.
type ContentStage string

const (
	ContentIdea      ContentStage = "Idea"
	ContentDrafting  ContentStage = "Drafting"
	ContentReview    ContentStage = "Review"
	ContentScheduled ContentStage = "Scheduled"
	ContentPublished ContentStage = "Published"
)

// ParseContentStage validates a raw content stage.
func ParseContentStage(s string) (ContentStage, error) {
	switch v := ContentStage(s); v {
	case ContentIdea, ContentDrafting, ContentReview, ContentScheduled, ContentPublished:
		return v, nil
	}
	return "", fmt.Errorf("unknown content stage %q", s)
}

// Initial reports whether the item has not left ideation.
func (s ContentStage) Initial() bool {
	switch s {
	case ContentIdea:
		return true
	case ContentDrafting, ContentReview, ContentScheduled, ContentPublished:
		return false
	}
	return false
}

func (s *ContentStage) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, ParseContentStage, s)
}

func unmarshalEnum[T ~string](data []byte, parse func(string) (T, error), dst *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
