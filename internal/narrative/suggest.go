package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agencypulse/agencypulse/pkg/alerts"
)

// maxPromptFindings bounds how many findings are sent for packaging.
const maxPromptFindings = 25

// Suggestion is a finding rewritten as an action for an account manager.
type Suggestion struct {
	Priority      alerts.Priority `json:"priority"`
	Category      alerts.Category `json:"category"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Action        string          `json:"action"`
	SuggestedTask *SuggestedTask  `json:"suggestedTask,omitempty"`
}

// SuggestedTask is a task the caller may create from a suggestion.
type SuggestedTask struct {
	Title    string `json:"title"`
	ClientID string `json:"clientId,omitempty"`
	DueDate  string `json:"dueDate,omitempty"`
}

// Suggester packages sweep findings into suggestions.
type Suggester struct {
	gen       Generator
	timeout   time.Duration
	maxTokens int
}

// NewSuggester creates a suggester. A nil generator always yields no suggestions.
func NewSuggester(gen Generator, timeout time.Duration, maxTokens int) *Suggester {
	return &Suggester{gen: gen, timeout: timeout, maxTokens: maxTokens}
}

// Suggest asks the generator to package findings. On any failure it returns
// an empty, non-nil slice and the error.
func (s *Suggester) Suggest(ctx context.Context, findings []alerts.Finding) ([]Suggestion, error) {
	empty := []Suggestion{}
	if s == nil || s.gen == nil || len(findings) == 0 {
		return empty, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, BuildSuggestionPrompt(findings), s.maxTokens)
	if err != nil {
		return empty, err
	}
	out, err := ParseSuggestions(text)
	if err != nil {
		return empty, err
	}
	return out, nil
}

// BuildSuggestionPrompt renders findings as a compact list and asks for JSON.
func BuildSuggestionPrompt(findings []alerts.Finding) string {
	var b strings.Builder
	b.WriteString("Operational findings for the agency, most urgent first:\n")
	for i, f := range findings {
		if i == maxPromptFindings {
			fmt.Fprintf(&b, "(%d more omitted)\n", len(findings)-i)
			break
		}
		fmt.Fprintf(&b, "- [%s/%s] %s: %s (client %s)\n", f.Priority, f.Category, f.Title, f.Description, f.ClientID)
	}
	b.WriteString("\nReturn a JSON array. Each element has priority (high|medium|low), " +
		"category (overdue|invoice|deadline|deliverable|content), title, description, action, " +
		"and optionally suggestedTask {title, clientId, dueDate YYYY-MM-DD}. Return only the JSON array.")
	return b.String()
}

// ParseSuggestions extracts the JSON array from a completion, tolerating
// surrounding prose or code fences. Elements with an unknown priority or
// category are dropped.
func ParseSuggestions(text string) ([]Suggestion, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, &MalformedResponseError{Reason: "no JSON array in response"}
	}

	var raw []Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error()}
	}

	out := make([]Suggestion, 0, len(raw))
	for _, sg := range raw {
		if sg.Priority.Rank() > 2 || !validCategory(sg.Category) || strings.TrimSpace(sg.Title) == "" {
			continue
		}
		out = append(out, sg)
	}
	return out, nil
}

func validCategory(c alerts.Category) bool {
	switch c {
	case alerts.CategoryOverdue, alerts.CategoryInvoice, alerts.CategoryDeadline,
		alerts.CategoryDeliverable, alerts.CategoryContent:
		return true
	}
	return false
}
