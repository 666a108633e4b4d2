package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencypulse/agencypulse/pkg/health"
	"github.com/agencypulse/agencypulse/pkg/records"
)

// maxEvidenceLines bounds how many named records go into a prompt.
const maxEvidenceLines = 8

// Narrator explains a health result in a few sentences.
type Narrator struct {
	gen       Generator
	timeout   time.Duration
	maxTokens int
}

// NewNarrator creates a narrator. A nil generator always yields the fallback text.
func NewNarrator(gen Generator, timeout time.Duration, maxTokens int) *Narrator {
	return &Narrator{gen: gen, timeout: timeout, maxTokens: maxTokens}
}

// Narrate returns generated text for the result, or the deterministic
// fallback and the generation error when the generator fails.
func (n *Narrator) Narrate(ctx context.Context, client records.Client, r *health.Result, trend health.Trend) (string, error) {
	if n == nil || n.gen == nil {
		return Fallback(client, r, trend), nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.gen.Generate(ctx, BuildPrompt(client, r, trend), n.maxTokens)
	if err != nil {
		return Fallback(client, r, trend), err
	}
	return text, nil
}

// BuildPrompt renders the fixed-shape context handed to the generator.
func BuildPrompt(client records.Client, r *health.Result, trend health.Trend) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s (%s market, %s plan)\n", client.Name, client.Market, orDash(client.Plan))
	fmt.Fprintf(&b, "Health score: %d/100, grade %s (%s), trend %s\n", r.Score, r.Grade, r.Tier, trend)
	fmt.Fprintf(&b, "Factors: delivery rate %d, on-time %d, payment %d, engagement %d\n",
		r.Factors.DeliveryRate, r.Factors.OnTimeScore, r.Factors.PaymentScore, r.Factors.EngagementScore)
	s := r.Stats
	fmt.Fprintf(&b, "Deliverables: %d total, %d completed, %d overdue. Overdue tasks: %d.\n",
		s.Deliverables, s.CompletedDeliverables, s.OverdueDeliverables, s.OverdueTasks)
	fmt.Fprintf(&b, "Invoices: %d total, %d paid, %d overdue. Items updated in the last window: %d.\n",
		s.Invoices, s.PaidInvoices, s.OverdueInvoices, s.RecentlyUpdated)

	lines := 0
evidence:
	for _, fr := range r.Breakdown {
		for _, ev := range fr.Evidence {
			if lines == 0 {
				b.WriteString("Notable records:\n")
			}
			if lines == maxEvidenceLines {
				b.WriteString("- ...\n")
				break evidence
			}
			fmt.Fprintf(&b, "- %s\n", ev.Summary)
			lines++
		}
	}

	b.WriteString("\nIn two or three sentences, explain this client's health and the single most useful next step.")
	return b.String()
}

// Fallback builds a templated explanation from the numbers alone.
func Fallback(client records.Client, r *health.Result, trend health.Trend) string {
	name := client.Name
	if name == "" {
		name = r.ClientID
	}

	weakest, weakestScore := "", 101
	for _, fr := range r.Breakdown {
		if fr.Score < weakestScore {
			weakest, weakestScore = fr.Name, fr.Score
		}
	}

	text := fmt.Sprintf("%s scores %d/100 (%s, %s), trend %s.", name, r.Score, r.Grade, r.Tier, trend)
	if weakest != "" && weakestScore < 100 {
		text += fmt.Sprintf(" Weakest factor: %s at %d.", strings.ToLower(weakest), weakestScore)
	}
	if n := r.Stats.OverdueDeliverables + r.Stats.OverdueTasks; n > 0 {
		text += fmt.Sprintf(" %d overdue item(s) need attention.", n)
	}
	if r.Stats.OverdueInvoices > 0 {
		text += fmt.Sprintf(" %d invoice(s) overdue.", r.Stats.OverdueInvoices)
	}
	return text
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
