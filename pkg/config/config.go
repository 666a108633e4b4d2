// Package config handles loading and managing Agency Pulse configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/health"
)

// Config is the top-level configuration for Agency Pulse.
type Config struct {
	Scoring   ScoringConfig   `yaml:"scoring"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Cache     CacheConfig     `yaml:"cache"`
	Source    SourceConfig    `yaml:"source"`
	Server    ServerConfig    `yaml:"server"`
}

// ScoringConfig controls health scoring.
type ScoringConfig struct {
	Weights     health.Weights    `yaml:"weights"`
	Grades      health.GradeTable `yaml:"grades"`
	Policy      health.Policy     `yaml:"policy"`
	Concurrency int               `yaml:"concurrency"` // parallel clients in batch recomputation
}

// AlertsConfig controls the alert sweep.
type AlertsConfig struct {
	Windows     alerts.Windows `yaml:"windows"`
	Granularity string         `yaml:"granularity"` // "client" or "item"
}

// NarrativeConfig controls the text-generation collaborator.
type NarrativeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
	APIKey    string `yaml:"-"`
}

// CacheConfig selects the score cache backend.
type CacheConfig struct {
	Backend     string `yaml:"backend"` // memory, sql or redis
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// SourceConfig says where operational records are read from.
type SourceConfig struct {
	// Dataset is a local path or s3:// / gs:// URL of a dataset snapshot.
	// When empty, records are read from the database.
	Dataset      string `yaml:"dataset"`
	DatabaseURL  string `yaml:"-"`
	StripeAPIKey string `yaml:"-"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	APIKey         string   `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Weights:     health.DefaultWeights(),
			Grades:      health.DefaultGradeTable(),
			Policy:      health.DefaultPolicy(),
			Concurrency: 4,
		},
		Alerts: AlertsConfig{
			Windows:     alerts.DefaultWindows(),
			Granularity: string(alerts.PerClient),
		},
		Narrative: NarrativeConfig{
			Enabled:   true,
			Model:     "gpt-4o-mini",
			Timeout:   15,
			MaxTokens: 300,
		},
		Cache: CacheConfig{
			Backend:     "memory",
			RedisPrefix: "pulse:health",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .pulse/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".pulse", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// ApplyEnv overlays secrets and deployment settings from the environment.
// Secrets are never read from the config file.
func (c *Config) ApplyEnv() {
	c.Source.DatabaseURL = envOrDefault("DATABASE_URL", c.Source.DatabaseURL)
	c.Source.StripeAPIKey = envOrDefault("STRIPE_API_KEY", c.Source.StripeAPIKey)
	c.Source.Dataset = envOrDefault("PULSE_DATASET", c.Source.Dataset)
	c.Narrative.APIKey = envOrDefault("OPENAI_API_KEY", c.Narrative.APIKey)
	c.Narrative.BaseURL = envOrDefault("OPENAI_BASE_URL", c.Narrative.BaseURL)
	c.Cache.RedisAddr = envOrDefault("REDIS_ADDR", c.Cache.RedisAddr)
	c.Server.Port = envOrDefault("PORT", c.Server.Port)
	c.Server.APIKey = envOrDefault("API_KEY", c.Server.APIKey)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
}

// Validate checks that the configuration is internally consistent and
// reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Scoring.Weights.Validate(); err != nil {
		errs = append(errs, "scoring.weights: "+err.Error())
	}
	if err := c.Scoring.Grades.Validate(); err != nil {
		errs = append(errs, "scoring.grades: "+err.Error())
	}
	p := c.Scoring.Policy
	if p.OverdueItemPenalty < 0 || p.OverdueInvoicePenalty < 0 {
		errs = append(errs, "scoring.policy: penalties must be >= 0")
	}
	if p.EngagementWindowDays < 0 {
		errs = append(errs, "scoring.policy.engagement_window_days must be >= 0")
	}
	for name, v := range map[string]int{
		"active_engagement":     p.ActiveEngagement,
		"new_client_engagement": p.NewClientEngagement,
		"dormant_engagement":    p.DormantEngagement,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Sprintf("scoring.policy.%s must be between 0 and 100", name))
		}
	}
	if c.Scoring.Concurrency < 1 {
		errs = append(errs, "scoring.concurrency must be >= 1")
	}

	if err := c.Alerts.Windows.Validate(); err != nil {
		errs = append(errs, "alerts.windows: "+err.Error())
	}
	if _, err := alerts.ParseGranularity(c.Alerts.Granularity); err != nil {
		errs = append(errs, "alerts.granularity: "+err.Error())
	}

	if c.Narrative.Timeout < 1 {
		errs = append(errs, "narrative.timeout must be >= 1 second")
	}
	if c.Narrative.MaxTokens < 1 {
		errs = append(errs, "narrative.max_tokens must be >= 1")
	}

	switch c.Cache.Backend {
	case "memory", "sql":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend %q is not one of memory, sql, redis", c.Cache.Backend))
	}

	if len(errs) > 0 {
		return eris.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NarrativeTimeout returns the narrative request timeout.
func (c *Config) NarrativeTimeout() time.Duration {
	return time.Duration(c.Narrative.Timeout) * time.Second
}

// HealthEngine builds a scoring engine from the scoring section.
func (c *Config) HealthEngine() *health.Engine {
	s := c.Scoring
	return health.NewEngine(s.Weights, s.Grades, s.Policy, health.DefaultFactors(s.Policy)...)
}

// AlertEngine builds an alert engine from the alerts section.
func (c *Config) AlertEngine() (*alerts.Engine, error) {
	g, err := alerts.ParseGranularity(c.Alerts.Granularity)
	if err != nil {
		return nil, err
	}
	return alerts.NewEngine(alerts.DefaultRules(c.Alerts.Windows, g)...), nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
