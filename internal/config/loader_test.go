package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.DemoMode {
		t.Error("expected demo mode off by default")
	}
	if cfg.Operator.Timeout != 15*time.Second {
		t.Errorf("expected operator timeout 15s, got %v", cfg.Operator.Timeout)
	}
	if cfg.Cache.CostTTL != 30*time.Second {
		t.Errorf("expected cost TTL 30s, got %v", cfg.Cache.CostTTL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
demo_mode: true
operator:
  base_url: "http://operator:8090"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.DemoMode {
		t.Error("expected demo mode on")
	}
	if cfg.Operator.BaseURL != "http://operator:8090" {
		t.Errorf("expected operator URL override, got %s", cfg.Operator.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Metrics.Timeout != 10*time.Second {
		t.Errorf("expected default metrics timeout, got %v", cfg.Metrics.Timeout)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("PERCH_PORT", "7070")
	t.Setenv("PERCH_DEMO_MODE", "true")
	t.Setenv("PERCH_OPERATOR_URL", "http://op.internal:9000")
	t.Setenv("PERCH_PROMETHEUS_URL", "http://prom:9090")
	t.Setenv("PERCH_LOG_LEVEL", "warn")
	t.Setenv("PERCH_COST_CACHE_TTL", "1m")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if !cfg.DemoMode {
		t.Error("expected demo mode on")
	}
	if cfg.Operator.BaseURL != "http://op.internal:9000" {
		t.Errorf("expected operator URL override, got %s", cfg.Operator.BaseURL)
	}
	if cfg.Metrics.BaseURL != "http://prom:9090" {
		t.Errorf("expected prometheus URL override, got %s", cfg.Metrics.BaseURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Cache.CostTTL != time.Minute {
		t.Errorf("expected cost TTL 1m, got %v", cfg.Cache.CostTTL)
	}
}

func TestValidateOperatorRequired(t *testing.T) {
	cfg := Defaults()
	cfg.Operator.BaseURL = ""

	if err := validate(&cfg); err == nil {
		t.Error("expected error for missing operator URL outside demo mode")
	}

	cfg.DemoMode = true
	if err := validate(&cfg); err != nil {
		t.Errorf("demo mode should not require operator URL, got %v", err)
	}
}
