package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/agencypulse/agencypulse/pkg/alerts"
)

// MarkdownRenderer produces markdown suitable for a weekly account report.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) RenderScores(w io.Writer, reports []ScoreReport) error {
	_, err := io.WriteString(w, BuildScoresMarkdown(reports))
	return err
}

func (r *MarkdownRenderer) RenderSweep(w io.Writer, report SweepReport) error {
	_, err := io.WriteString(w, BuildSweepMarkdown(report))
	return err
}

// BuildScoresMarkdown renders a summary table followed by one section per client.
func BuildScoresMarkdown(reports []ScoreReport) string {
	var sb strings.Builder

	sb.WriteString("## Client Health\n\n")
	if len(reports) == 0 {
		sb.WriteString("_No clients scored._\n")
		return sb.String()
	}

	sb.WriteString("| Client | Market | Score | Grade | Tier | Trend |\n")
	sb.WriteString("|--------|--------|-------|-------|------|-------|\n")
	for _, rep := range reports {
		res := rep.Result
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s %s |\n",
			escapeCell(displayName(rep)), rep.Client.Market, res.Score, res.Grade, res.Tier, trendArrow(rep.Trend), rep.Trend))
	}
	sb.WriteString("\n")

	for _, rep := range reports {
		res := rep.Result
		sb.WriteString(fmt.Sprintf("### %s: Grade %s (%d/100)\n\n", displayName(rep), res.Grade, res.Score))
		sb.WriteString(fmt.Sprintf("| Factor | Score | Weight |\n|--------|-------|--------|\n"))
		for _, fr := range res.Breakdown {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", fr.Name, fr.Score, fr.Weight))
		}
		sb.WriteString("\n")

		// Show top 3 evidence items per factor
		for _, fr := range res.Breakdown {
			maxEv := 3
			if len(fr.Evidence) < maxEv {
				maxEv = len(fr.Evidence)
			}
			for i := 0; i < maxEv; i++ {
				sb.WriteString(fmt.Sprintf("- %s\n", fr.Evidence[i].Summary))
			}
		}
		if rep.Narrative != "" {
			sb.WriteString("\n> " + rep.Narrative + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildSweepMarkdown renders sweep findings as a prioritised list.
func BuildSweepMarkdown(report SweepReport) string {
	var sb strings.Builder
	res := report.Result
	counts := res.CountByPriority()

	sb.WriteString(fmt.Sprintf("## Alert Sweep: %s\n\n", marketLabel(report.Market)))
	sb.WriteString(fmt.Sprintf("| Priority | Count |\n|----------|-------|\n"))
	for _, p := range []alerts.Priority{alerts.PriorityHigh, alerts.PriorityMedium, alerts.PriorityLow} {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", priorityLabel(p), counts[p]))
	}
	sb.WriteString("\n")

	sb.WriteString("### Findings\n\n")
	if len(res.Findings) == 0 {
		sb.WriteString("_No findings._\n")
	}
	for _, f := range res.Findings {
		who := f.ClientName
		if who == "" {
			who = f.ClientID
		}
		sb.WriteString(fmt.Sprintf("- %s **%s**: %s — %s\n", priorityIcon(f.Priority), who, f.Title, f.Description))
	}
	sb.WriteString("\n")

	if len(res.Skipped) > 0 {
		sb.WriteString("### Skipped rules\n\n")
		for _, s := range res.Skipped {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", s.Rule, s.Reason))
		}
		sb.WriteString("\n")
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("### Suggestions\n\n")
		for _, sg := range report.Suggestions {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", sg.Title, sg.Action))
		}
	}

	return sb.String()
}

func displayName(rep ScoreReport) string {
	if rep.Client.Name != "" {
		return rep.Client.Name
	}
	return rep.Result.ClientID
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func priorityIcon(p alerts.Priority) string {
	switch p {
	case alerts.PriorityHigh:
		return ":red_circle:"
	case alerts.PriorityMedium:
		return ":orange_circle:"
	default:
		return ":yellow_circle:"
	}
}

func priorityLabel(p alerts.Priority) string {
	return strings.ToUpper(string(p))
}
