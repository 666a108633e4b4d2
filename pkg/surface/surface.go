// Package surface renders health scores and alert sweeps for people:
// colored terminal output, JSON for scripts and markdown for reports.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/health"
	"github.com/agencypulse/agencypulse/pkg/records"
)

// Renderer produces formatted output for scores and sweeps.
type Renderer interface {
	// RenderScores writes one or more client score reports.
	RenderScores(w io.Writer, reports []ScoreReport) error
	// RenderSweep writes the findings of one alert sweep.
	RenderSweep(w io.Writer, report SweepReport) error
}

// ScoreReport is one client's computed health with its explanation.
type ScoreReport struct {
	Client        records.Client `json:"client"`
	Result        *health.Result `json:"result"`
	Trend         health.Trend   `json:"trend"`
	PreviousScore *int           `json:"previous_score,omitempty"`
	Narrative     string         `json:"narrative,omitempty"`
}

// Suggestion is a packaged action shown alongside sweep findings.
type Suggestion struct {
	Priority alerts.Priority `json:"priority"`
	Title    string          `json:"title"`
	Action   string          `json:"action,omitempty"`
}

// SweepReport is the output of one alert sweep.
type SweepReport struct {
	RunID       string              `json:"run_id,omitempty"`
	Market      records.Market      `json:"market,omitempty"`
	Result      *alerts.SweepResult `json:"result"`
	Suggestions []Suggestion        `json:"suggestions,omitempty"`
}

// ForFormat returns the renderer for an --output value.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text", "terminal":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or markdown)", format)
	}
}

func marketLabel(m records.Market) string {
	if m == "" {
		return "all markets"
	}
	return string(m) + " market"
}

func trendArrow(t health.Trend) string {
	switch t {
	case health.TrendUp:
		return "↑"
	case health.TrendDown:
		return "↓"
	default:
		return "→"
	}
}
