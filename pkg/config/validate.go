package config

import (
	"fmt"
	"net"
)

// Validate checks the full configuration for invalid values. Section
// validation is delegated to the owning packages so the rules live next to
// the code that consumes them.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not host:port: %w", cfg.Server.ListenAddress, err)
	}

	if err := cfg.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := cfg.Drift.Validate(); err != nil {
		return fmt.Errorf("drift: %w", err)
	}
	if err := cfg.Fairness.Validate(); err != nil {
		return fmt.Errorf("fairness: %w", err)
	}
	if err := cfg.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := cfg.Simulation.Orchestrator.Validate(); err != nil {
		return fmt.Errorf("simulation.orchestrator: %w", err)
	}
	if err := cfg.Simulation.Generator.Validate(); err != nil {
		return fmt.Errorf("simulation.generator: %w", err)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text", cfg.Telemetry.Logging.Format)
	}

	if cfg.Policy.Watch && cfg.Policy.File == "" {
		return fmt.Errorf("policy.watch requires policy.file")
	}

	return nil
}
