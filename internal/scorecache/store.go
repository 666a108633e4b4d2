// Package scorecache persists the latest health score per client. It holds
// exactly one record per client ID, overwritten on every recomputation, so
// the next computation can classify its trend.
package scorecache

import (
	"context"
	"errors"
	"time"

	"github.com/agencypulse/agencypulse/pkg/health"
)

// ErrNotFound is returned by Get when no record exists for the client.
var ErrNotFound = errors.New("score record not found")

// Record is the cached health score of one client.
type Record struct {
	ClientID      string         `json:"client_id"`
	Score         int            `json:"score"`
	PreviousScore *int           `json:"previous_score,omitempty"`
	Factors       health.Factors `json:"factors"`
	Grade         string         `json:"grade"`
	Tier          string         `json:"tier"`
	Trend         health.Trend   `json:"trend"`
	Narrative     string         `json:"narrative"`
	CalculatedAt  time.Time      `json:"calculated_at"`
}

// Store is a keyed score cache. Upsert is idempotent and last write wins.
type Store interface {
	Get(ctx context.Context, clientID string) (*Record, error)
	Upsert(ctx context.Context, rec Record) error
	Ping(ctx context.Context) error
}

// FromResult builds a cache record from a freshly computed result.
func FromResult(r *health.Result, previous *int, narrative string) Record {
	return Record{
		ClientID:      r.ClientID,
		Score:         r.Score,
		PreviousScore: previous,
		Factors:       r.Factors,
		Grade:         r.Grade,
		Tier:          r.Tier,
		Trend:         health.CompareTrend(r.Score, previous),
		Narrative:     narrative,
		CalculatedAt:  r.CalculatedAt,
	}
}
