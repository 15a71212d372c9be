package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "perch.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PERCH_PORT")
	setString(&cfg.Server.CORSOrigin, "PERCH_CORS_ORIGIN")
	setBool(&cfg.DemoMode, "PERCH_DEMO_MODE")
	setString(&cfg.Operator.BaseURL, "PERCH_OPERATOR_URL")
	setDuration(&cfg.Operator.Timeout, "PERCH_OPERATOR_TIMEOUT")
	setString(&cfg.Metrics.BaseURL, "PERCH_PROMETHEUS_URL")
	setString(&cfg.Metrics.DashboardURL, "PERCH_METRICS_DASHBOARD_URL")
	setDuration(&cfg.Metrics.Timeout, "PERCH_PROMETHEUS_TIMEOUT")
	setString(&cfg.Realtime.ProxyURL, "PERCH_WS_PROXY_URL")
	setBool(&cfg.Realtime.Direct, "PERCH_WS_DIRECT")
	setString(&cfg.Logging.Level, "PERCH_LOG_LEVEL")
	setString(&cfg.Logging.Service, "PERCH_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "PERCH_LOG_ASYNC")
	setInt64(&cfg.Cache.MaxSizeMB, "PERCH_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.CostTTL, "PERCH_COST_CACHE_TTL")
	setString(&cfg.Telemetry.OTLPEndpoint, "PERCH_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "PERCH_OTLP_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if !cfg.DemoMode && cfg.Operator.BaseURL == "" {
		return errors.New("operator.base_url is required outside demo mode")
	}
	if cfg.Cache.MaxSizeMB < 1 {
		return errors.New("cache.max_size_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
