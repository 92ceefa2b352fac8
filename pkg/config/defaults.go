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

// ApplyDefaults fills zero-valued fields with their defaults. Explicit
// settings are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8090"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = store.DefaultConfig().Path
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = store.DefaultConfig().Driver
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = store.DefaultConfig().BusyTimeout
	}
	if cfg.Storage.WALMode == nil {
		cfg.Storage.WALMode = store.DefaultConfig().WALMode
	}

	applyDriftDefaults(&cfg.Drift)
	applyFairnessDefaults(&cfg.Fairness)

	if cfg.Risk.DriftWeight == 0 && cfg.Risk.FairnessWeight == 0 {
		cfg.Risk = *risk.DefaultConfig()
	}

	if cfg.Simulation.Orchestrator.ProtectedAttribute == "" {
		cfg.Simulation.Orchestrator = *simulation.DefaultConfig()
	}
	if cfg.Simulation.Generator.BaselineCount == 0 {
		cfg.Simulation.Generator.BaselineCount = simulation.DefaultGeneratorConfig().BaselineCount
	}
	if cfg.Simulation.Generator.CurrentCount == 0 {
		cfg.Simulation.Generator.CurrentCount = simulation.DefaultGeneratorConfig().CurrentCount
	}

	if cfg.Recompute.Actor == "" {
		cfg.Recompute.Actor = recompute.DefaultConfig().Actor
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.Namespace = "saturn"
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = "governance"
	}
}

func applyDriftDefaults(c *drift.Config) {
	def := drift.DefaultConfig()
	if c.Bins == 0 {
		c.Bins = def.Bins
		c.MonitorPrediction = def.MonitorPrediction
	}
	if c.Epsilon == 0 {
		c.Epsilon = def.Epsilon
	}
	if c.PSIThreshold == 0 {
		c.PSIThreshold = def.PSIThreshold
	}
	if c.KSThreshold == 0 {
		c.KSThreshold = def.KSThreshold
	}
	if c.MinSamples == 0 {
		c.MinSamples = def.MinSamples
	}
	if c.ComponentScale == 0 {
		c.ComponentScale = def.ComponentScale
	}
}

func applyFairnessDefaults(c *fairness.Config) {
	def := fairness.DefaultConfig()
	if c.DisparityThreshold == 0 {
		c.DisparityThreshold = def.DisparityThreshold
	}
	if c.MinGroupSize == 0 {
		c.MinGroupSize = def.MinGroupSize
	}
	if c.PositiveThreshold == 0 {
		c.PositiveThreshold = def.PositiveThreshold
	}
}
