package config

import (
	"time"

	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/recompute"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
)

// Config is the root configuration structure for Saturn. It contains all
// configuration sections for the API server, storage, the metric
// calculators, policy sourcing, scheduled recomputation, and telemetry.
type Config struct {
	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Storage contains SQLite store configuration.
	Storage store.Config `yaml:"storage"`

	// Drift contains drift calculator configuration.
	Drift drift.Config `yaml:"drift"`

	// Fairness contains fairness calculator configuration.
	Fairness fairness.Config `yaml:"fairness"`

	// Risk contains risk aggregation weights.
	Risk risk.Config `yaml:"risk"`

	// Simulation contains orchestrator and synthetic generator settings.
	Simulation SimulationConfig `yaml:"simulation"`

	// Policy contains policy sourcing configuration.
	Policy PolicyConfig `yaml:"policy"`

	// Recompute contains the scheduled recomputation settings.
	Recompute recompute.Config `yaml:"recompute"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// SimulationConfig groups the orchestrator and generator settings.
type SimulationConfig struct {
	// Orchestrator contains pipeline settings (protected attribute).
	Orchestrator simulation.Config `yaml:"orchestrator"`

	// Generator contains synthetic population sizes and seed.
	Generator simulation.GeneratorConfig `yaml:"generator"`
}

// PolicyConfig contains policy sourcing configuration.
type PolicyConfig struct {
	// File is an optional path to a YAML policy file. When set, the
	// policy is activated at startup; with Watch it is re-activated on
	// every change to the file.
	File string `yaml:"file"`

	// Watch enables watching the policy file for changes.
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text. Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains prometheus metrics settings.
type MetricsConfig struct {
	// Enabled exposes the /metrics endpoint. Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "saturn"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label. Default: "governance"
	Subsystem string `yaml:"subsystem"`
}
