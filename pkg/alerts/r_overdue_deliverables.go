package alerts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// OverdueDeliverablesRule flags deliverables past their due date that are
// not yet delivered or approved.
type OverdueDeliverablesRule struct {
	Granularity Granularity
}

func (r *OverdueDeliverablesRule) Key() string { return "overdue_deliverables" }

func (r *OverdueDeliverablesRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionDeliverables}
}

func (r *OverdueDeliverablesRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	byClient := make(map[string][]records.Deliverable)
	for _, d := range s.Deliverables {
		if records.DeliverableOverdue(d, asOf) {
			byClient[d.ClientID] = append(byClient[d.ClientID], d)
		}
	}

	var findings []Finding
	for clientID, ds := range byClient {
		if r.Granularity == PerItem {
			for _, d := range ds {
				late := -d.DueDate.DaysFrom(asOf)
				findings = append(findings, Finding{
					Priority:    PriorityHigh,
					Category:    CategoryOverdue,
					SubjectID:   d.ID,
					ClientID:    clientID,
					Title:       fmt.Sprintf("Overdue: %s", d.Title),
					Description: fmt.Sprintf("%s for %s is %d day(s) late and still %s.", d.Title, s.ClientName(clientID), late, d.Status),
					RelatedIDs:  []string{d.ID},
					DueDate:     d.DueDate,
				})
			}
			continue
		}

		sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
		ids := make([]string, 0, len(ds))
		parts := make([]string, 0, len(ds))
		for _, d := range ds {
			ids = append(ids, d.ID)
			parts = append(parts, fmt.Sprintf("%s (%dd late)", d.Title, -d.DueDate.DaysFrom(asOf)))
		}
		findings = append(findings, Finding{
			Priority:    PriorityHigh,
			Category:    CategoryOverdue,
			SubjectID:   clientID,
			ClientID:    clientID,
			Title:       fmt.Sprintf("%d overdue deliverable(s) for %s", len(ds), s.ClientName(clientID)),
			Description: strings.Join(parts, ", "),
			RelatedIDs:  ids,
		})
	}
	return findings
}
