package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agencypulse/agencypulse/pkg/config"
	"github.com/agencypulse/agencypulse/pkg/records"
)

// loadConfig resolves the config file, overlays the environment and any
// --dataset override, then validates the result.
func loadConfig(cmd *cobra.Command, dataset string) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(wd)
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if dataset != "" {
		cfg.Source.Dataset = dataset
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAsOf turns an --as-of value into a clock. Empty means now.
func parseAsOf(value string) (func() time.Time, error) {
	if value == "" {
		return time.Now, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return func() time.Time { return t.UTC() }, nil
	}
	d, err := records.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD or RFC 3339)", value)
	}
	return func() time.Time { return d.Time() }, nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
