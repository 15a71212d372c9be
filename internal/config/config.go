// Package config provides hierarchical configuration loading for Perch.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the Perch dashboard service.
type Config struct {
	Server    Server    `yaml:"server"`
	DemoMode  bool      `yaml:"demo_mode"`
	Operator  Operator  `yaml:"operator"`
	Metrics   Metrics   `yaml:"metrics"`
	Realtime  Realtime  `yaml:"realtime"`
	Logging   Logging   `yaml:"logging"`
	Cache     Cache     `yaml:"cache"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Operator holds the orchestration backend's REST endpoint configuration.
type Operator struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Metrics holds the metrics backend (Prometheus-compatible) configuration.
// DashboardURL is surfaced to the frontend for external dashboard links.
// An empty BaseURL means cost queries degrade to an unavailable result.
type Metrics struct {
	BaseURL      string        `yaml:"base_url"`
	DashboardURL string        `yaml:"dashboard_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Realtime holds agent WebSocket configuration. When Direct is true the
// connection dials the operator endpoint straight instead of ProxyURL.
type Realtime struct {
	ProxyURL string `yaml:"proxy_url"`
	Direct   bool   `yaml:"direct"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Cache holds in-process cache sizing for cost reports.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	CostTTL   time.Duration `yaml:"cost_ttl"`
}

// Telemetry holds OpenTelemetry exporter configuration. An empty endpoint
// disables export.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Operator: Operator{
			BaseURL: "http://localhost:8090",
			Timeout: 15 * time.Second,
		},
		Metrics: Metrics{
			Timeout: 10 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "perch",
		},
		Cache: Cache{
			MaxSizeMB: 16,
			CostTTL:   30 * time.Second,
		},
		Telemetry: Telemetry{
			Insecure: true,
		},
	}
}
