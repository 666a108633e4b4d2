package surface_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/health"
	"github.com/agencypulse/agencypulse/pkg/records"
	"github.com/agencypulse/agencypulse/pkg/surface"
)

var asOf = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func loadFixture(t *testing.T) *records.Dataset {
	t.Helper()
	ds, err := records.LoadDataset("../../testdata/dataset.json")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return ds
}

func scoreReports(t *testing.T, ids ...string) []surface.ScoreReport {
	t.Helper()
	ds := loadFixture(t)
	engine := health.NewDefaultEngine()
	var out []surface.ScoreReport
	for _, id := range ids {
		c := ds.FindClient(id)
		res, err := engine.Score(ds.ForClient(*c), asOf)
		if err != nil {
			t.Fatalf("score %s: %v", id, err)
		}
		out = append(out, surface.ScoreReport{Client: *c, Result: res, Trend: health.TrendFlat})
	}
	return out
}

func sweepReport(t *testing.T) surface.SweepReport {
	t.Helper()
	res, err := alerts.NewDefaultEngine().Sweep(loadFixture(t), "", asOf)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	return surface.SweepReport{
		RunID:  "run-1",
		Result: res,
		Suggestions: []surface.Suggestion{
			{Priority: alerts.PriorityHigh, Title: "Chase the Dune Outdoor invoice", Action: "Call their finance contact today."},
		},
	}
}

func TestTerminalRenderer_Scores(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	reports := scoreReports(t, "c-bolt", "c-acme")
	prev := 70
	reports[0].Trend = health.TrendDown
	reports[0].PreviousScore = &prev
	reports[0].Narrative = "Bolt Fitness is late on its launch video."

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).RenderScores(&buf, reports); err != nil {
		t.Fatalf("RenderScores() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Bolt Fitness",
		"Grade C · 64/100 · Watch",
		"trend ↓ down (was 70)",
		"On-time delivery",
		"Bolt Fitness is late on its launch video.",
		"Grade A · 97/100",
		"2 clients",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\033[") {
		t.Error("expected no ANSI escape codes with NO_COLOR set")
	}
}

func TestTerminalRenderer_Sweep(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).RenderSweep(&buf, sweepReport(t)); err != nil {
		t.Fatalf("RenderSweep() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"all markets", "7 finding(s)", "HIGH", "MEDIUM", "LOW", "Dune Outdoor", "Suggested actions:", "run run-1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Index(output, "HIGH") > strings.Index(output, "LOW") {
		t.Error("expected high priority findings before low")
	}
}

func TestTerminalRenderer_Empty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := &surface.TerminalRenderer{}
	_ = r.RenderScores(&buf, nil)
	_ = r.RenderSweep(&buf, surface.SweepReport{Market: records.MarketID, Result: &alerts.SweepResult{}})

	output := buf.String()
	if !strings.Contains(output, "No clients scored.") || !strings.Contains(output, "No findings.") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if !strings.Contains(output, "ID market") {
		t.Errorf("expected market label in output:\n%s", output)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	md := surface.BuildScoresMarkdown(scoreReports(t, "c-dune"))
	for _, want := range []string{"## Client Health", "| Dune Outdoor | SG |", "### Dune Outdoor: Grade D", "| Payment | 30 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}

	sweep := surface.BuildSweepMarkdown(sweepReport(t))
	for _, want := range []string{"## Alert Sweep: all markets", "| HIGH | 2 |", ":red_circle: **Dune Outdoor**", "### Suggestions"} {
		if !strings.Contains(sweep, want) {
			t.Errorf("expected %q in markdown:\n%s", want, sweep)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).RenderScores(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty scores = %q, want []", buf.String())
	}

	buf.Reset()
	if err := (&surface.JSONRenderer{}).RenderSweep(&buf, sweepReport(t)); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID  string `json:"run_id"`
		Result struct {
			Findings []alerts.Finding `json:"findings"`
		} `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Result.Findings) != 7 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"", "text", "json", "markdown", "MD"} {
		if _, err := surface.ForFormat(f); err != nil {
			t.Errorf("ForFormat(%q) error: %v", f, err)
		}
	}
	if _, err := surface.ForFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
