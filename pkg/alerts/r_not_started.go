package alerts

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// DeliverablesNotStartedRule flags deliverables due within the forward
// window that nobody has started.
type DeliverablesNotStartedRule struct {
	WindowDays int
}

func (r *DeliverablesNotStartedRule) Key() string { return "deliverables_not_started" }

func (r *DeliverablesNotStartedRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionDeliverables}
}

func (r *DeliverablesNotStartedRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	var findings []Finding
	for _, d := range s.Deliverables {
		if d.Status != records.DeliverableNotStarted || !records.WithinDays(d.DueDate, asOf, r.WindowDays) {
			continue
		}
		findings = append(findings, Finding{
			Priority:    PriorityMedium,
			Category:    CategoryDeliverable,
			SubjectID:   d.ID,
			ClientID:    d.ClientID,
			Title:       fmt.Sprintf("Not started: %s", d.Title),
			Description: fmt.Sprintf("%s for %s is due %s and has not been started.", d.Title, s.ClientName(d.ClientID), d.DueDate),
			RelatedIDs:  []string{d.ID},
			DueDate:     d.DueDate,
		})
	}
	return findings
}
