package health

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// OnTimeFactor applies a flat penalty per overdue deliverable or task,
// saturating at 0.
type OnTimeFactor struct {
	Penalty int // points lost per overdue item
}

func (f *OnTimeFactor) Key() string  { return KeyOnTime }
func (f *OnTimeFactor) Name() string { return "On-time delivery" }

func (f *OnTimeFactor) Evaluate(cr records.ClientRecords, asOf time.Time) FactorResult {
	result := FactorResult{Key: f.Key(), Name: f.Name()}

	overdue := 0
	for _, d := range cr.Deliverables {
		if !records.DeliverableOverdue(d, asOf) {
			continue
		}
		overdue++
		result.Evidence = append(result.Evidence, EvidenceItem{
			Type:     EvidenceOverdueDeliverable,
			Summary:  fmt.Sprintf("%s overdue by %d day(s)", d.Title, -d.DueDate.DaysFrom(asOf)),
			RecordID: d.ID,
		})
	}
	for _, t := range cr.Tasks {
		if !records.TaskOverdue(t, asOf) {
			continue
		}
		overdue++
		result.Evidence = append(result.Evidence, EvidenceItem{
			Type:     EvidenceOverdueTask,
			Summary:  fmt.Sprintf("Task %s overdue by %d day(s)", t.Title, -t.DueDate.DaysFrom(asOf)),
			RecordID: t.ID,
		})
	}

	result.Score = clamp(100 - f.Penalty*overdue)
	return result
}
