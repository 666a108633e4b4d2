package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "cache:\n  backend: redis\n  redis_addr: localhost:6379\nserver:\n  port: \"9090\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("API_KEY", "s3cret")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Server.Port != "9090" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.APIKey != "s3cret" {
		t.Errorf("API key = %q, want value from env", cfg.Server.APIKey)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDIS_ADDR", "")

	if _, err := loadConfig(path); err == nil {
		t.Error("expected validation error for redis backend without address")
	}
}
