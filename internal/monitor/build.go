package monitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agencypulse/agencypulse/internal/narrative"
	"github.com/agencypulse/agencypulse/internal/platform"
	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/internal/source"
	"github.com/agencypulse/agencypulse/pkg/config"
)

// stripeLookback bounds how far back the Stripe overlay lists invoices.
const stripeLookback = 180 * 24 * time.Hour

// Runtime is a configured Service plus the connections it owns.
type Runtime struct {
	Service *Service
	DB      *sql.DB
	Dialect scorecache.Dialect
	closers []func() error
}

// Close releases every connection opened by Build.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildOptions controls Build.
type BuildOptions struct {
	// Migrate applies pending schema migrations after connecting.
	Migrate bool
}

// Build wires a Service from configuration: the dataset source, the score
// cache backend and the narrative generator.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Runtime, error) {
	alertEngine, err := cfg.AlertEngine()
	if err != nil {
		return nil, err
	}
	rt := &Runtime{}

	needDB := cfg.Source.Dataset == "" || cfg.Cache.Backend == "sql"
	if needDB {
		if cfg.Source.DatabaseURL == "" {
			return nil, fmt.Errorf("no dataset or database configured (set source.dataset, PULSE_DATASET or DATABASE_URL)")
		}
		db, dialect, err := platform.Open(ctx, cfg.Source.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.DB, rt.Dialect = db, dialect
		rt.closers = append(rt.closers, db.Close)
		if opts.Migrate {
			if err := platform.AutoMigrate(db, dialect); err != nil {
				rt.Close()
				return nil, err
			}
		}
	}

	var src source.Source
	if cfg.Source.Dataset != "" {
		blob, err := source.OpenBlobSource(ctx, cfg.Source.Dataset)
		if err != nil {
			rt.Close()
			return nil, err
		}
		src = blob
	} else {
		src = source.NewSQLSource(rt.DB, rt.Dialect)
	}
	if cfg.Source.StripeAPIKey != "" {
		src = source.NewInvoiceOverlay(src, source.NewStripeInvoices(cfg.Source.StripeAPIKey, stripeLookback), nil)
	}

	var store scorecache.Store
	switch cfg.Cache.Backend {
	case "sql":
		store = scorecache.NewSQLStore(rt.DB, rt.Dialect)
	case "redis":
		rs := scorecache.NewRedisStore(cfg.Cache.RedisAddr, "", 0, cfg.Cache.RedisPrefix)
		rt.closers = append(rt.closers, rs.Close)
		store = rs
	default:
		store = scorecache.NewMemoryStore()
	}

	var narrator *narrative.Narrator
	var suggester *narrative.Suggester
	if cfg.Narrative.Enabled && cfg.Narrative.APIKey != "" {
		gen := narrative.NewOpenAIGenerator(cfg.Narrative.APIKey, cfg.Narrative.Model, cfg.Narrative.BaseURL)
		narrator = narrative.NewNarrator(gen, cfg.NarrativeTimeout(), cfg.Narrative.MaxTokens)
		suggester = narrative.NewSuggester(gen, cfg.NarrativeTimeout(), cfg.Narrative.MaxTokens)
	} else {
		log.Printf("narrative: generator disabled, using templated explanations")
	}

	rt.Service = NewService(cfg.HealthEngine(), alertEngine, src, store, narrator, suggester).
		WithConcurrency(cfg.Scoring.Concurrency)
	return rt, nil
}
