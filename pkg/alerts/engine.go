package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// Rule is the interface that all alert rules implement.
type Rule interface {
	// Key returns the machine-readable rule identifier.
	Key() string
	// Requires lists the collections the rule reads besides clients.
	Requires() []records.Collection
	// Evaluate returns the rule's findings for the scope as of an instant.
	Evaluate(s *Scope, asOf time.Time) []Finding
}

// Engine runs all configured rules over a dataset.
type Engine struct {
	rules []Rule
}

// NewEngine creates an alert engine with the given rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// NewDefaultEngine creates an engine with the standard rules and windows.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules(DefaultWindows(), PerClient)...)
}

// Rules returns the configured rules.
func (e *Engine) Rules() []Rule { return e.rules }

// Sweep evaluates every rule whose collections loaded and returns the
// findings in priority order. Rules that depend on an unavailable collection
// are reported in Skipped and do not abort the sweep.
func (e *Engine) Sweep(ds *records.Dataset, market records.Market, asOf time.Time) (*SweepResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("as-of time is required")
	}

	result := &SweepResult{Market: market, Findings: []Finding{}}
	scope := NewScope(ds, market)

	for _, r := range e.rules {
		if missing, ok := firstUnavailable(ds, r); ok {
			result.Skipped = append(result.Skipped, SkippedRule{
				Rule:       r.Key(),
				Collection: missing,
				Reason:     fmt.Sprintf("%s unavailable: %v", missing, ds.Unavailable[missing]),
			})
			continue
		}
		for _, f := range r.Evaluate(scope, asOf) {
			if f.Rule == "" {
				f.Rule = r.Key()
			}
			if f.ClientName == "" {
				f.ClientName = scope.ClientName(f.ClientID)
			}
			result.Findings = append(result.Findings, f)
		}
	}

	SortFindings(result.Findings)
	return result, nil
}

func firstUnavailable(ds *records.Dataset, r Rule) (records.Collection, bool) {
	if !ds.Available(records.CollectionClients) {
		return records.CollectionClients, true
	}
	for _, c := range r.Requires() {
		if !ds.Available(c) {
			return c, true
		}
	}
	return "", false
}

// SortFindings orders findings by priority, then category, client and subject.
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		return a.SubjectID < b.SubjectID
	})
}
