package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "NATS_URL", "READINGS_API_URL", "READINGS_API_TOKEN", "QUERY_TIMEOUT_SECONDS", "REPORT_WORKERS", "DISPLAY_TIMEZONE"} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
sources:
  local:
    type: sql
    connection:
      type: sqlite
      database: ./data/readings.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "8090" {
		t.Fatalf("expected default port 8090, got %s", cfg.Server.Port)
	}
	if cfg.Limits.QueryTimeout != 10*time.Second {
		t.Fatalf("expected default query timeout 10s, got %s", cfg.Limits.QueryTimeout)
	}
	if cfg.Limits.Workers != 4 {
		t.Fatalf("expected default workers 4, got %d", cfg.Limits.Workers)
	}
	if cfg.DefaultSource != "local" {
		t.Fatalf("expected single source to become default, got %q", cfg.DefaultSource)
	}
	if cfg.NATS.RequestSubject != "report.requested" {
		t.Fatalf("unexpected request subject %s", cfg.NATS.RequestSubject)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
limits:
  query_timeout: 3s
  max_window: 168h
  workers: 2
sources:
  api:
    type: rest
    endpoint: http://readings.local
    timeout: 2s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	limits := cfg.SecurityLimits()
	if limits.MaxQueryDuration != 3*time.Second || limits.MaxWindow != 168*time.Hour || limits.ReportWorkers != 2 {
		t.Fatalf("unexpected limits %+v", limits)
	}
	if cfg.Sources["api"].Timeout != 2*time.Second {
		t.Fatalf("unexpected source timeout %s", cfg.Sources["api"].Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("READINGS_API_URL", "https://api.example.test")
	t.Setenv("READINGS_API_TOKEN", "secret")
	t.Setenv("QUERY_TIMEOUT_SECONDS", "20")
	t.Setenv("REPORT_WORKERS", "8")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port override, got %s", cfg.Server.Port)
	}
	api, ok := cfg.Sources["api"]
	if !ok || api.Type != "rest" || api.Endpoint != "https://api.example.test" || api.Token != "secret" {
		t.Fatalf("expected api source from env, got %+v", api)
	}
	if cfg.DefaultSource != "api" {
		t.Fatalf("expected api default source, got %q", cfg.DefaultSource)
	}
	if cfg.Limits.QueryTimeout != 20*time.Second || cfg.Limits.Workers != 8 {
		t.Fatalf("unexpected limits %+v", cfg.Limits)
	}
}

func TestLoadRejectsInvalidSources(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"unknown type": "sources:\n  x:\n    type: ftp\n",
		"rest without endpoint": "sources:\n  x:\n    type: rest\n",
		"nats without subject": "sources:\n  x:\n    type: nats\n",
		"missing default": "default_source: y\nsources:\n  x:\n    type: nats\n    subject: readings.query\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, data)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDisplayTimezone(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "display:\n  timezone: America/Sao_Paulo\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loc, err := cfg.DisplayLocation()
	if err != nil {
		t.Fatalf("DisplayLocation: %v", err)
	}
	if loc.String() != "America/Sao_Paulo" {
		t.Fatalf("expected America/Sao_Paulo, got %s", loc)
	}

	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	cfg, err = Load(writeConfig(t, "display:\n  timezone: America/Sao_Paulo\n"))
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if loc, _ := cfg.DisplayLocation(); loc != time.UTC {
		t.Fatalf("expected env override to UTC, got %s", loc)
	}

	clearEnv(t)
	if _, err := Load(writeConfig(t, "display:\n  timezone: Mars/Olympus\n")); err == nil {
		t.Fatalf("expected unknown timezone to be rejected")
	}
}
