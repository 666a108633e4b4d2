package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agencypulse/agencypulse/pkg/alerts"
)

// TerminalRenderer renders reports as colored terminal output.
type TerminalRenderer struct{}

// maxEvidence caps evidence lines shown per factor.
const maxEvidence = 5

type palette struct {
	plain bool
	title lipgloss.Style
	dim   lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func newPalette(w io.Writer) palette {
	if noColor() {
		return palette{plain: true}
	}
	re := lipgloss.NewRenderer(w)
	return palette{
		title: re.NewStyle().Bold(true),
		dim:   re.NewStyle().Foreground(lipgloss.Color("241")),
		good:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warn:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		bad:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

func (p palette) render(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p palette) grade(grade string) lipgloss.Style {
	switch grade {
	case "A", "B":
		return p.good
	case "C":
		return p.warn
	default:
		return p.bad
	}
}

func (p palette) priority(pr alerts.Priority) lipgloss.Style {
	switch pr {
	case alerts.PriorityHigh:
		return p.bad
	case alerts.PriorityMedium:
		return p.warn
	default:
		return p.dim
	}
}

func (r *TerminalRenderer) RenderScores(w io.Writer, reports []ScoreReport) error {
	p := newPalette(w)
	if len(reports) == 0 {
		fmt.Fprintln(w, "No clients scored.")
		return nil
	}
	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderScore(w, p, rep)
	}
	if len(reports) > 1 {
		fmt.Fprintln(w)
		renderDistribution(w, p, reports)
	}
	return nil
}

func renderScore(w io.Writer, p palette, rep ScoreReport) {
	res := rep.Result
	name := rep.Client.Name
	if name == "" {
		name = res.ClientID
	}

	fmt.Fprintf(w, "%s %s\n", p.render(p.title, name), p.render(p.dim, fmt.Sprintf("(%s, %s)", res.ClientID, marketLabel(rep.Client.Market))))

	trend := fmt.Sprintf("trend %s %s", trendArrow(rep.Trend), rep.Trend)
	if rep.PreviousScore != nil {
		trend += fmt.Sprintf(" (was %d)", *rep.PreviousScore)
	}
	fmt.Fprintf(w, "  %s  %s\n\n",
		p.render(p.grade(res.Grade), fmt.Sprintf("Grade %s · %d/100 · %s", res.Grade, res.Score, res.Tier)),
		trend)

	for _, fr := range res.Breakdown {
		fmt.Fprintf(w, "  %-18s %3d  %s\n", fr.Name, fr.Score, p.render(p.dim, fmt.Sprintf("weight %.2f", fr.Weight)))
		shown := len(fr.Evidence)
		if shown > maxEvidence {
			shown = maxEvidence
		}
		for _, ev := range fr.Evidence[:shown] {
			fmt.Fprintf(w, "      %s\n", p.render(p.dim, ev.Summary))
		}
		if len(fr.Evidence) > maxEvidence {
			fmt.Fprintf(w, "      %s\n", p.render(p.dim, fmt.Sprintf("... and %d more", len(fr.Evidence)-maxEvidence)))
		}
	}

	if rep.Narrative != "" {
		fmt.Fprintln(w)
		for _, line := range wrapText(rep.Narrative, 72) {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func renderDistribution(w io.Writer, p palette, reports []ScoreReport) {
	var parts []string
	for _, gc := range gradeCounts(reports) {
		parts = append(parts, p.render(p.grade(gc.grade), fmt.Sprintf("%s:%d", gc.grade, gc.count)))
	}
	fmt.Fprintf(w, "%s %s\n", p.render(p.title, fmt.Sprintf("%d clients", len(reports))), strings.Join(parts, "  "))
}

type gradeCount struct {
	grade string
	count int
}

// gradeCounts tallies reports per grade, standard grades first and any
// custom grades after them in first-seen order.
func gradeCounts(reports []ScoreReport) []gradeCount {
	counts := make(map[string]int)
	var custom []string
	for _, rep := range reports {
		g := rep.Result.Grade
		if _, seen := counts[g]; !seen && !standardGrade(g) {
			custom = append(custom, g)
		}
		counts[g]++
	}
	var out []gradeCount
	for _, g := range append(append([]string{}, gradeOrder...), custom...) {
		if n := counts[g]; n > 0 {
			out = append(out, gradeCount{grade: g, count: n})
		}
	}
	return out
}

func standardGrade(g string) bool {
	for _, s := range gradeOrder {
		if s == g {
			return true
		}
	}
	return false
}

func (r *TerminalRenderer) RenderSweep(w io.Writer, report SweepReport) error {
	p := newPalette(w)
	res := report.Result
	counts := res.CountByPriority()

	fmt.Fprintf(w, "%s\n",
		p.render(p.title, fmt.Sprintf("Alert sweep (%s): %d finding(s), %d high / %d medium / %d low",
			marketLabel(report.Market), len(res.Findings),
			counts[alerts.PriorityHigh], counts[alerts.PriorityMedium], counts[alerts.PriorityLow])))
	if report.RunID != "" {
		fmt.Fprintf(w, "%s\n", p.render(p.dim, "run "+report.RunID))
	}
	fmt.Fprintln(w)

	if len(res.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		fmt.Fprintln(w)
	}

	var current alerts.Priority
	for _, f := range res.Findings {
		if f.Priority != current {
			current = f.Priority
			fmt.Fprintln(w, p.render(p.priority(current), strings.ToUpper(string(current))))
		}
		who := f.ClientName
		if who == "" {
			who = f.ClientID
		}
		fmt.Fprintf(w, "  %s %s · %s %s\n",
			p.render(p.priority(f.Priority), "●"), p.render(p.title, who), f.Title,
			p.render(p.dim, "["+string(f.Category)+"]"))
		for _, line := range wrapText(f.Description, 70) {
			fmt.Fprintf(w, "    %s\n", p.render(p.dim, line))
		}
	}
	if len(res.Findings) > 0 {
		fmt.Fprintln(w)
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped rules:")
		for _, s := range res.Skipped {
			fmt.Fprintf(w, "  %s %s\n", s.Rule, p.render(p.dim, "("+s.Reason+")"))
		}
		fmt.Fprintln(w)
	}

	if len(report.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggested actions:")
		for _, sg := range report.Suggestions {
			fmt.Fprintf(w, "  • %s %s\n", p.render(p.priority(sg.Priority), "["+string(sg.Priority)+"]"), sg.Title)
			for _, line := range wrapText(sg.Action, 70) {
				fmt.Fprintf(w, "    %s\n", p.render(p.dim, line))
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// gradeOrder is the display order of the default grades.
var gradeOrder = []string{"A", "B", "C", "D", "F"}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
