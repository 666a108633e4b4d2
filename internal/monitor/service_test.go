package monitor_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/internal/narrative"
	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/internal/source"
	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/health"
	"github.com/agencypulse/agencypulse/pkg/records"
)

var asOf = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f.text, f.err
}

// brokenStore fails every read and write.
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, clientID string) (*scorecache.Record, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Upsert(ctx context.Context, rec scorecache.Record) error {
	return errors.New("connection refused")
}

func (brokenStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func newService(t *testing.T, store scorecache.Store, gen narrative.Generator) *monitor.Service {
	t.Helper()
	src := source.NewBlobSource(source.NewLocalStorage("../../testdata"), "dataset.json")
	var narrator *narrative.Narrator
	var suggester *narrative.Suggester
	if gen != nil {
		narrator = narrative.NewNarrator(gen, time.Second, 200)
		suggester = narrative.NewSuggester(gen, time.Second, 400)
	}
	svc := monitor.NewService(health.NewDefaultEngine(), alerts.NewDefaultEngine(), src, store, narrator, suggester)
	return svc.WithClock(func() time.Time { return asOf })
}

func TestScoreClientIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := scorecache.NewMemoryStore()
	svc := newService(t, store, &fakeGenerator{text: "Acme is in great shape."})

	first, err := svc.ScoreClient(ctx, "c-acme")
	if err != nil {
		t.Fatalf("first ScoreClient: %v", err)
	}
	if first.Result.Score != 97 || first.Result.Grade != "A" {
		t.Errorf("score = %d (%s), want 97 (A)", first.Result.Score, first.Result.Grade)
	}
	if first.Trend != health.TrendFlat || first.PreviousScore != nil {
		t.Errorf("first computation: trend %s, previous %v; want flat, nil", first.Trend, first.PreviousScore)
	}
	if first.Narrative != "Acme is in great shape." {
		t.Errorf("narrative = %q", first.Narrative)
	}

	second, err := svc.ScoreClient(ctx, "c-acme")
	if err != nil {
		t.Fatalf("second ScoreClient: %v", err)
	}
	if second.Result.Score != first.Result.Score {
		t.Errorf("second score = %d, want %d", second.Result.Score, first.Result.Score)
	}
	if second.Trend != health.TrendFlat {
		t.Errorf("second trend = %s, want flat", second.Trend)
	}
	if second.PreviousScore == nil || *second.PreviousScore != first.Result.Score {
		t.Errorf("second previous = %v, want %d", second.PreviousScore, first.Result.Score)
	}

	rec, err := svc.Cached(ctx, "c-acme")
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	if rec.Score != 97 || rec.Narrative != "Acme is in great shape." {
		t.Errorf("cached record = %+v", rec)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d records, want 1", store.Len())
	}
}

func TestScoreClientTrendAgainstCachedScore(t *testing.T) {
	ctx := context.Background()
	store := scorecache.NewMemoryStore()
	prev := 50
	if err := store.Upsert(ctx, scorecache.Record{ClientID: "c-bolt", Score: 80, PreviousScore: &prev}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := newService(t, store, nil).ScoreClient(ctx, "c-bolt")
	if err != nil {
		t.Fatalf("ScoreClient: %v", err)
	}
	if out.Result.Score != 64 {
		t.Errorf("score = %d, want 64", out.Result.Score)
	}
	if out.Trend != health.TrendDown {
		t.Errorf("trend = %s, want down", out.Trend)
	}
	rec, _ := store.Get(ctx, "c-bolt")
	if rec.PreviousScore == nil || *rec.PreviousScore != 80 {
		t.Errorf("stored previous = %v, want 80", rec.PreviousScore)
	}
}

func TestScoreClientCacheFailureDegrades(t *testing.T) {
	out, err := newService(t, brokenStore{}, nil).ScoreClient(context.Background(), "c-bolt")
	if err != nil {
		t.Fatalf("cache failures must not fail scoring: %v", err)
	}
	if out.Trend != health.TrendFlat || out.PreviousScore != nil {
		t.Errorf("trend %s previous %v; want flat, nil", out.Trend, out.PreviousScore)
	}
	if out.Result.Score != 64 {
		t.Errorf("score = %d, want 64", out.Result.Score)
	}
}

func TestScoreClientNarrativeFallback(t *testing.T) {
	ctx := context.Background()
	store := scorecache.NewMemoryStore()
	gen := &fakeGenerator{text: "Generated explanation."}
	svc := newService(t, store, gen)

	if _, err := svc.ScoreClient(ctx, "c-bolt"); err != nil {
		t.Fatalf("first ScoreClient: %v", err)
	}

	gen.text, gen.err = "", &narrative.AuthError{Reason: "invalid key"}
	out, err := svc.ScoreClient(ctx, "c-bolt")
	if err != nil {
		t.Fatalf("narrative failures must not fail scoring: %v", err)
	}
	if !strings.HasPrefix(out.Narrative, "Bolt") {
		t.Errorf("expected templated fallback, got %q", out.Narrative)
	}

	rec, err := store.Get(ctx, "c-bolt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Narrative != "Generated explanation." {
		t.Errorf("cached narrative = %q, want the last generated text", rec.Narrative)
	}
	if rec.Score != out.Result.Score {
		t.Errorf("cached score = %d, want %d", rec.Score, out.Result.Score)
	}
}

func TestScoreClientNarrativeFallbackFirstRun(t *testing.T) {
	gen := &fakeGenerator{err: &narrative.TimeoutError{Err: context.DeadlineExceeded}}
	store := scorecache.NewMemoryStore()
	out, err := newService(t, store, gen).ScoreClient(context.Background(), "c-bolt")
	if err != nil {
		t.Fatalf("ScoreClient: %v", err)
	}
	if out.Narrative == "" {
		t.Error("expected fallback narrative in the outcome")
	}
	rec, err := store.Get(context.Background(), "c-bolt")
	if err != nil {
		t.Fatalf("numeric result should be cached: %v", err)
	}
	if rec.Narrative != "" {
		t.Errorf("cached narrative = %q, want empty", rec.Narrative)
	}
}

// degradedSource loads the fixture and marks collections as failed.
type degradedSource struct {
	base   source.Source
	failed []records.Collection
}

func (d degradedSource) Load(ctx context.Context) (*records.Dataset, error) {
	ds, err := d.base.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range d.failed {
		switch c {
		case records.CollectionInvoices:
			ds.Invoices = nil
		case records.CollectionDeliverables:
			ds.Deliverables = nil
		case records.CollectionTasks:
			ds.Tasks = nil
		case records.CollectionContent:
			ds.Content = nil
		}
		ds.MarkUnavailable(c, errors.New("query timeout"))
	}
	return ds, nil
}

func newDegradedService(store scorecache.Store, failed ...records.Collection) *monitor.Service {
	src := degradedSource{
		base:   source.NewBlobSource(source.NewLocalStorage("../../testdata"), "dataset.json"),
		failed: failed,
	}
	svc := monitor.NewService(health.NewDefaultEngine(), alerts.NewDefaultEngine(), src, store, nil, nil)
	return svc.WithClock(func() time.Time { return asOf })
}

func TestScoreClientIncompleteData(t *testing.T) {
	ctx := context.Background()
	store := scorecache.NewMemoryStore()

	full, err := newService(t, store, nil).ScoreClient(ctx, "c-dune")
	if err != nil {
		t.Fatalf("ScoreClient: %v", err)
	}

	for _, c := range []records.Collection{records.CollectionInvoices, records.CollectionDeliverables, records.CollectionTasks} {
		t.Run(string(c), func(t *testing.T) {
			_, err := newDegradedService(store, c).ScoreClient(ctx, "c-dune")
			if !errors.Is(err, monitor.ErrIncompleteData) {
				t.Fatalf("err = %v, want ErrIncompleteData", err)
			}
			rec, err := store.Get(ctx, "c-dune")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if rec.Score != full.Result.Score || rec.Factors.PaymentScore != full.Result.Factors.PaymentScore {
				t.Errorf("cached record changed to %+v after a failed load", rec)
			}
		})
	}
}

func TestScoreClientIgnoresUnusedCollection(t *testing.T) {
	out, err := newDegradedService(scorecache.NewMemoryStore(), records.CollectionContent).ScoreClient(context.Background(), "c-acme")
	if err != nil {
		t.Fatalf("content does not feed the score: %v", err)
	}
	if out.Result.Score != 97 {
		t.Errorf("score = %d, want 97", out.Result.Score)
	}
}

func TestScoreAllIncompleteData(t *testing.T) {
	store := scorecache.NewMemoryStore()
	batch, err := newDegradedService(store, records.CollectionInvoices).ScoreAll(context.Background(), monitor.BatchOptions{})
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if len(batch.Computed) != 0 {
		t.Errorf("computed %d clients on incomplete data", len(batch.Computed))
	}
	if len(batch.Errors) != 4 {
		t.Fatalf("errors = %+v, want one per active client", batch.Errors)
	}
	for _, ce := range batch.Errors {
		if !strings.Contains(ce.Error, "invoices unavailable") {
			t.Errorf("%s: error %q does not name the failed collection", ce.ClientID, ce.Error)
		}
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d records, want 0", store.Len())
	}
}

func TestSweepIncompleteData(t *testing.T) {
	report, err := newDegradedService(scorecache.NewMemoryStore(), records.CollectionInvoices).Sweep(context.Background(), "")
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(report.Result.Skipped) == 0 {
		t.Error("expected invoice rules to be reported as skipped")
	}
	for _, f := range report.Result.Findings {
		if f.Category == alerts.CategoryInvoice {
			t.Errorf("invoice finding %s produced from a failed load", f.Rule)
		}
	}
	if len(report.Result.Findings) == 0 {
		t.Error("rules over loaded collections should still report findings")
	}
}

func TestScoreClientInputErrors(t *testing.T) {
	svc := newService(t, scorecache.NewMemoryStore(), nil)
	tests := []struct {
		id   string
		want error
	}{
		{"c-missing", monitor.ErrClientNotFound},
		{"c-echo", monitor.ErrClientNotScorable},
		{"c-fern", monitor.ErrClientNotScorable},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := svc.ScoreClient(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestScoreAll(t *testing.T) {
	store := scorecache.NewMemoryStore()
	svc := newService(t, store, nil).WithConcurrency(2)

	var mu sync.Mutex
	var done []string
	batch, err := svc.ScoreAll(context.Background(), monitor.BatchOptions{
		OnDone: func(id string, err error) {
			mu.Lock()
			done = append(done, id)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}

	var ids []string
	for _, o := range batch.Computed {
		ids = append(ids, o.Client.ID)
	}
	want := "c-acme,c-bolt,c-cora,c-dune"
	if strings.Join(ids, ",") != want {
		t.Errorf("computed = %v, want %s", ids, want)
	}
	if len(batch.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", batch.Errors)
	}
	if len(done) != 4 || store.Len() != 4 {
		t.Errorf("progress calls %d, stored %d; want 4, 4", len(done), store.Len())
	}
}

func TestScoreAllMarketFilter(t *testing.T) {
	batch, err := newService(t, scorecache.NewMemoryStore(), nil).ScoreAll(context.Background(), monitor.BatchOptions{Market: records.MarketSG})
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if len(batch.Computed) != 2 {
		t.Fatalf("computed %d clients, want 2", len(batch.Computed))
	}
	for _, o := range batch.Computed {
		if o.Client.Market != records.MarketSG {
			t.Errorf("client %s in market %s", o.Client.ID, o.Client.Market)
		}
	}
}

func TestSweep(t *testing.T) {
	gen := &fakeGenerator{text: `[{"priority":"high","category":"invoice","title":"Chase Dune","description":"Overdue invoice","action":"Call finance"}]`}
	report, err := newService(t, scorecache.NewMemoryStore(), gen).Sweep(context.Background(), "")
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(report.Result.Findings) != 7 {
		t.Errorf("findings = %d, want 7", len(report.Result.Findings))
	}
	if len(report.Suggestions) != 1 || report.Suggestions[0].Title != "Chase Dune" {
		t.Errorf("suggestions = %+v", report.Suggestions)
	}
}

func TestSweepSuggestionFailure(t *testing.T) {
	gen := &fakeGenerator{err: &narrative.AuthError{Reason: "invalid key"}}
	report, err := newService(t, scorecache.NewMemoryStore(), gen).Sweep(context.Background(), records.MarketSG)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Suggestions == nil || len(report.Suggestions) != 0 {
		t.Errorf("expected empty suggestions, got %+v", report.Suggestions)
	}
	if len(report.Result.Findings) != 5 {
		t.Errorf("findings = %d, want 5", len(report.Result.Findings))
	}
}
