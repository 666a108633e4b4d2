package monitor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/internal/scorecache"
	"github.com/agencypulse/agencypulse/pkg/config"
)

func TestBuildFromDataset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Dataset = "../../testdata/dataset.json"

	rt, err := monitor.Build(context.Background(), cfg, monitor.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rt.Close()

	if rt.DB != nil {
		t.Error("dataset source with memory cache should not open a database")
	}
	if _, ok := rt.Service.Store().(*scorecache.MemoryStore); !ok {
		t.Errorf("store = %T, want *scorecache.MemoryStore", rt.Service.Store())
	}

	out, err := rt.Service.WithClock(func() time.Time { return asOf }).ScoreClient(context.Background(), "c-acme")
	if err != nil {
		t.Fatalf("ScoreClient: %v", err)
	}
	if out.Result.Score != 97 {
		t.Errorf("score = %d, want 97", out.Result.Score)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"no source", func(c *config.Config) {}, "no dataset or database configured"},
		{"sql cache without database", func(c *config.Config) {
			c.Source.Dataset = "../../testdata/dataset.json"
			c.Cache.Backend = "sql"
		}, "no dataset or database configured"},
		{"missing dataset file", func(c *config.Config) {
			c.Source.Dataset = "../../testdata/missing.json"
		}, ""},
		{"bad granularity", func(c *config.Config) {
			c.Source.Dataset = "../../testdata/dataset.json"
			c.Alerts.Granularity = "weekly"
		}, "granularity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			rt, err := monitor.Build(context.Background(), cfg, monitor.BuildOptions{})
			if tt.want == "" {
				// The local blob source defers reading until Load.
				if err != nil {
					t.Fatalf("Build: %v", err)
				}
				defer rt.Close()
				if _, err := rt.Service.Dataset(context.Background()); err == nil {
					t.Error("expected load error for missing dataset")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
