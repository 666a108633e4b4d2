package alerts

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// BlockedTasksRule flags every task marked Blocked.
type BlockedTasksRule struct{}

func (r *BlockedTasksRule) Key() string { return "blocked_tasks" }

func (r *BlockedTasksRule) Requires() []records.Collection {
	return []records.Collection{records.CollectionTasks}
}

func (r *BlockedTasksRule) Evaluate(s *Scope, asOf time.Time) []Finding {
	var findings []Finding
	for _, t := range s.Tasks {
		switch t.Status {
		case records.TaskBlocked:
		case records.TaskToDo, records.TaskInProgress, records.TaskDone:
			continue
		}
		clientID := s.TaskClient(t)
		related := []string{t.ID}
		if t.DeliverableID != "" {
			related = append(related, t.DeliverableID)
		}
		findings = append(findings, Finding{
			Priority:    PriorityMedium,
			Category:    CategoryDeliverable,
			SubjectID:   t.ID,
			ClientID:    clientID,
			Title:       fmt.Sprintf("Blocked: %s", t.Title),
			Description: fmt.Sprintf("Task %q for %s is blocked. Find the owner and unblock it.", t.Title, s.ClientName(clientID)),
			RelatedIDs:  related,
			DueDate:     t.DueDate,
		})
	}
	return findings
}
