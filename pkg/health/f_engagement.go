package health

import (
	"fmt"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// EngagementFactor rewards recent activity on a client's deliverables and
// tasks. New clients with nothing in production are not penalised as hard as
// established clients that have gone quiet.
type EngagementFactor struct {
	WindowDays int // trailing window, inclusive
	Active     int // score when anything was touched in the window
	NewClient  int // score when the client has no deliverables at all
	Dormant    int // score when deliverables exist but none were touched
}

func (f *EngagementFactor) Key() string  { return KeyEngagement }
func (f *EngagementFactor) Name() string { return "Engagement" }

func (f *EngagementFactor) Evaluate(cr records.ClientRecords, asOf time.Time) FactorResult {
	result := FactorResult{Key: f.Key(), Name: f.Name()}

	recent := countRecent(cr, asOf, f.WindowDays)
	switch {
	case recent > 0:
		result.Score = clamp(f.Active)
	case len(cr.Deliverables) == 0:
		result.Score = clamp(f.NewClient)
	default:
		result.Score = clamp(f.Dormant)
		result.Evidence = append(result.Evidence, EvidenceItem{
			Type:    EvidenceNoRecentActivity,
			Summary: fmt.Sprintf("No deliverable or task updated in the last %d days", f.WindowDays),
		})
	}
	return result
}

// countRecent counts deliverables and tasks updated within the trailing window.
// Records with no update timestamp never count.
func countRecent(cr records.ClientRecords, asOf time.Time, windowDays int) int {
	n := 0
	for _, d := range cr.Deliverables {
		if touchedWithin(d.UpdatedAt, asOf, windowDays) {
			n++
		}
	}
	for _, t := range cr.Tasks {
		if touchedWithin(t.UpdatedAt, asOf, windowDays) {
			n++
		}
	}
	return n
}

func touchedWithin(updated, asOf time.Time, windowDays int) bool {
	if updated.IsZero() {
		return false
	}
	return records.DaysSince(updated, asOf) <= windowDays
}
