package alerts

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// StuckContentRule flags content still in its initial stage more than
// MaxAgeDays whole days after creation.
type StuckContentRule struct {
	MaxAgeDays int
}

func (r *StuckContentRule) Key() string { return "stuck_content" }

func (r *StuckContentRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionContent}
}

func (r *StuckContentRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	var findings []Finding
	for _, ci := range s.Content {
		if !ci.Stage.Initial() || ci.CreatedAt.IsZero() {
			continue
		}
		age := records.DaysSince(ci.CreatedAt, asOf)
		if age <= r.MaxAgeDays {
			continue
		}
		findings = append(findings, Finding{
			Priority:    PriorityLow,
			Category:    CategoryContent,
			SubjectID:   ci.ID,
			ClientID:    ci.ClientID,
			Title:       fmt.Sprintf("Stuck in %s: %s", ci.Stage, ci.Title),
			Description: fmt.Sprintf("%s for %s has been in %s for %d days.", ci.Title, s.ClientName(ci.ClientID), ci.Stage, age),
			RelatedIDs:  []string{ci.ID},
		})
	}
	return findings
}
