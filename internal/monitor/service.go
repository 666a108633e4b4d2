// Package monitor orchestrates health scoring and alert sweeps: it loads the
// agency dataset, runs the engines, keeps the score cache current and asks
// the narrative layer for explanations.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agencypulse/agencypulse/internal/narrative"
	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/internal/source"
	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/health"
	"github.com/agencypulse/agencypulse/pkg/records"
)

var (
	// ErrClientNotFound is returned when the client ID is not in the dataset.
	ErrClientNotFound = errors.New("client not found")
	// ErrClientNotScorable is returned when the client is not Active.
	ErrClientNotScorable = errors.New("client is not active")
	// ErrIncompleteData is returned when a collection the score depends on
	// failed to load.
	ErrIncompleteData = errors.New("scoring data incomplete")
)

// scoringCollections are the collections the health factors read.
var scoringCollections = []records.Collection{
	records.CollectionDeliverables,
	records.CollectionInvoices,
	records.CollectionTasks,
}

// checkScorable reports the first scoring collection that failed to load.
func checkScorable(ds *records.Dataset) error {
	for _, c := range scoringCollections {
		if !ds.Available(c) {
			return fmt.Errorf("%w: %s unavailable: %v", ErrIncompleteData, c, ds.Unavailable[c])
		}
	}
	return nil
}

// Outcome is the result of scoring one client.
type Outcome struct {
	Client        records.Client
	Result        *health.Result
	Trend         health.Trend
	PreviousScore *int
	Narrative     string
}

// ClientError records a per-client failure in a batch.
type ClientError struct {
	ClientID string `json:"clientId"`
	Error    string `json:"error"`
}

// Batch is the result of recomputing many clients.
type Batch struct {
	Computed []Outcome
	Errors   []ClientError
}

// SweepReport is the result of one alert sweep.
type SweepReport struct {
	RunID       string
	Suggestions []narrative.Suggestion
	Result      *alerts.SweepResult
}

// Service runs scoring and sweeps against a dataset source.
type Service struct {
	engine      *health.Engine
	alerts      *alerts.Engine
	source      source.Source
	store       scorecache.Store
	narrator    *narrative.Narrator
	suggester   *narrative.Suggester
	concurrency int
	now         func() time.Time
}

// NewService creates a Service. narrator and suggester may be nil, in which
// case templated narratives and no suggestions are produced.
func NewService(engine *health.Engine, alertEngine *alerts.Engine, src source.Source, store scorecache.Store, narrator *narrative.Narrator, suggester *narrative.Suggester) *Service {
	return &Service{
		engine:      engine,
		alerts:      alertEngine,
		source:      src,
		store:       store,
		narrator:    narrator,
		suggester:   suggester,
		concurrency: 4,
		now:         time.Now,
	}
}

// WithClock sets the as-of clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithConcurrency bounds the number of clients scored in parallel by ScoreAll.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Store returns the score cache.
func (s *Service) Store() scorecache.Store { return s.store }

// Dataset loads the current dataset from the configured source.
func (s *Service) Dataset(ctx context.Context) (*records.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

// ScoreClient computes, caches and explains one client's health score.
func (s *Service) ScoreClient(ctx context.Context, clientID string) (*Outcome, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, ds, clientID, s.now())
}

func (s *Service) score(ctx context.Context, ds *records.Dataset, clientID string, asOf time.Time) (*Outcome, error) {
	client := ds.FindClient(clientID)
	if client == nil {
		return nil, fmt.Errorf("score %s: %w", clientID, ErrClientNotFound)
	}

	result, err := s.engine.Score(ds.ForClient(*client), asOf)
	if errors.Is(err, health.ErrNotScorable) {
		return nil, fmt.Errorf("score %s (status %q): %w", clientID, client.Status, ErrClientNotScorable)
	}
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", clientID, err)
	}
	if err := checkScorable(ds); err != nil {
		return nil, fmt.Errorf("score %s: %w", clientID, err)
	}

	var previous *int
	var previousNarrative string
	rec, err := s.store.Get(ctx, clientID)
	switch {
	case err == nil:
		score := rec.Score
		previous = &score
		previousNarrative = rec.Narrative
	case errors.Is(err, scorecache.ErrNotFound):
	default:
		log.Printf("score %s: cache read failed, treating as first computation: %v", clientID, err)
	}

	// Numeric result first; the narrative is filled in by the second write.
	// The cache keeps the last generated narrative, never the fallback.
	out := scorecache.FromResult(result, previous, previousNarrative)
	if err := s.store.Upsert(ctx, out); err != nil {
		log.Printf("score %s: cache write failed: %v", clientID, err)
	}

	text, err := s.narrator.Narrate(ctx, *client, result, out.Trend)
	if err != nil {
		log.Printf("score %s: narrative unavailable, using fallback: %v", clientID, err)
	} else {
		out.Narrative = text
		if err := s.store.Upsert(ctx, out); err != nil {
			log.Printf("score %s: cache write failed: %v", clientID, err)
		}
	}

	return &Outcome{
		Client:        *client,
		Result:        result,
		Trend:         out.Trend,
		PreviousScore: previous,
		Narrative:     text,
	}, nil
}

// Cached returns the last stored score for a client.
func (s *Service) Cached(ctx context.Context, clientID string) (*scorecache.Record, error) {
	rec, err := s.store.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("cached score %s: %w", clientID, err)
	}
	return rec, nil
}

// BatchOptions controls ScoreAll.
type BatchOptions struct {
	// Market restricts recomputation to one market. Zero means all markets.
	Market records.Market
	// OnStart is called once with the number of clients to compute.
	OnStart func(total int)
	// OnDone is called after each client finishes, from worker goroutines.
	OnDone func(clientID string, err error)
}

// Targets lists the Active client IDs in a market, sorted. A zero market
// means every market.
func Targets(ds *records.Dataset, market records.Market) []string {
	var ids []string
	for _, c := range ds.Clients {
		if !c.Status.Scorable() {
			continue
		}
		if market != "" && c.Market != market {
			continue
		}
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

// ScoreAll recomputes every Active client against one dataset load and one
// as-of instant. Per-client failures are collected, not returned.
func (s *Service) ScoreAll(ctx context.Context, opts BatchOptions) (*Batch, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	asOf := s.now()
	ids := Targets(ds, opts.Market)
	if opts.OnStart != nil {
		opts.OnStart(len(ids))
	}

	var mu sync.Mutex
	batch := &Batch{Computed: []Outcome{}, Errors: []ClientError{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.score(gctx, ds, id, asOf)
			mu.Lock()
			if err != nil {
				batch.Errors = append(batch.Errors, ClientError{ClientID: id, Error: err.Error()})
			} else {
				batch.Computed = append(batch.Computed, *out)
			}
			mu.Unlock()
			if opts.OnDone != nil {
				opts.OnDone(id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recompute: %w", err)
	}

	sort.Slice(batch.Computed, func(i, j int) bool {
		return batch.Computed[i].Client.ID < batch.Computed[j].Client.ID
	})
	sort.Slice(batch.Errors, func(i, j int) bool {
		return batch.Errors[i].ClientID < batch.Errors[j].ClientID
	})
	log.Printf("recompute: %d computed, %d failed", len(batch.Computed), len(batch.Errors))
	return batch, nil
}

// Sweep runs the alert rules and packages the findings into suggestions.
// Suggestion failures leave the suggestions empty.
func (s *Service) Sweep(ctx context.Context, market records.Market) (*SweepReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	result, err := s.alerts.Sweep(ds, market, s.now())
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", runID, err)
	}
	for _, sk := range result.Skipped {
		log.Printf("sweep %s: skipped rule %s: %s", runID, sk.Rule, sk.Reason)
	}

	suggestions, err := s.suggester.Suggest(ctx, result.Findings)
	if err != nil {
		log.Printf("sweep %s: suggestions unavailable: %v", runID, err)
	}

	return &SweepReport{RunID: runID, Suggestions: suggestions, Result: result}, nil
}
