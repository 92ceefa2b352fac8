package recompute

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
)

// Config contains configuration for the recompute scheduler.
type Config struct {
	// Schedule is a standard cron expression (e.g. "0 */6 * * *" for
	// every six hours). Empty disables scheduled recomputation.
	Schedule string `yaml:"schedule"`

	// Actor is recorded on audit entries written by scheduled runs.
	// Default: "scheduler"
	Actor string `yaml:"actor"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{Actor: "scheduler"}
}

// Scheduler runs metric recomputation for deployed models on a schedule.
type Scheduler struct {
	config  *Config
	store   *store.Store
	orch    *simulation.Orchestrator
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new recompute scheduler.
func NewScheduler(config *Config, st *store.Store, orch *simulation.Orchestrator) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Actor == "" {
		config.Actor = "scheduler"
	}
	return &Scheduler{
		config: config,
		store:  st,
		orch:   orch,
		cron:   cron.New(),
		logger: slog.Default().With("component", "recompute.scheduler"),
	}
}

// Start begins scheduled recomputation. If no schedule is configured the
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("recompute schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule recomputation: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("recompute scheduler started", "schedule", s.config.Schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runCycle recomputes every deployed model once. Failures are logged per
// model and do not stop the cycle; each model's run rolls back on its own.
func (s *Scheduler) runCycle(ctx context.Context) {
	models, err := s.store.ListModels(ctx)
	if err != nil {
		s.logger.Error("recompute cycle failed to list models", "error", err)
		return
	}

	var refreshed, degraded int
	for i := range models {
		m := &models[i]
		if m.Status != governance.StatusDeployed {
			continue
		}
		outcome, err := s.orch.Recompute(ctx, m.ID, s.config.Actor)
		if err != nil {
			s.logger.Error("scheduled recompute failed",
				"model_id", m.ID,
				"error", err,
			)
			continue
		}
		refreshed++
		if outcome.NewStatus != governance.StatusDeployed {
			degraded++
			s.logger.Warn("deployed model degraded on recompute",
				"model_id", m.ID,
				"new_status", string(outcome.NewStatus),
				"risk_score", outcome.RiskPoint.RiskScore,
			)
		}
	}

	if refreshed > 0 {
		s.logger.Info("recompute cycle completed",
			"refreshed", refreshed,
			"degraded", degraded,
		)
	} else {
		s.logger.Debug("recompute cycle completed, no deployed models")
	}
}

// Stop stops the scheduler and waits for any running cycle to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("recompute scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
