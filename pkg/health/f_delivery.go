package health

import (
	"fmt"
	"math"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// DeliveryRateFactor scores the share of a client's deliverables that are
// completed. A client with no deliverables scores 100.
type DeliveryRateFactor struct{}

func (f *DeliveryRateFactor) Key() string  { return KeyDeliveryRate }
func (f *DeliveryRateFactor) Name() string { return "Delivery rate" }

func (f *DeliveryRateFactor) Evaluate(cr records.ClientRecords, asOf time.Time) FactorResult {
	result := FactorResult{Key: f.Key(), Name: f.Name()}

	total := len(cr.Deliverables)
	if total == 0 {
		result.Score = 100
		return result
	}

	completed := 0
	for _, d := range cr.Deliverables {
		if d.Status.Completed() {
			completed++
			continue
		}
		result.Evidence = append(result.Evidence, EvidenceItem{
			Type:     EvidenceOpenDeliverable,
			Summary:  fmt.Sprintf("%s is %s", d.Title, d.Status),
			RecordID: d.ID,
		})
	}

	result.Score = clamp(int(math.Round(float64(completed) / float64(total) * 100)))
	return result
}
