package fairness

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mercator-hq/saturn/pkg/governance"
)

// Config contains configuration for the fairness calculator.
type Config struct {
	// DisparityThreshold flags the metric when the disparity score meets
	// or exceeds it. Default: 0.10
	DisparityThreshold float64 `yaml:"disparity_threshold"`

	// MinGroupSize is the minimum number of samples per compared group.
	// Smaller groups fail with InsufficientGroupDataError. Default: 10
	MinGroupSize int `yaml:"min_group_size"`

	// PositiveThreshold is the predicted-outcome cutoff above which a
	// prediction counts as a positive outcome. Default: 0.5
	PositiveThreshold float64 `yaml:"positive_threshold"`
}

// DefaultConfig returns the default fairness configuration.
func DefaultConfig() *Config {
	return &Config{
		DisparityThreshold: 0.10,
		MinGroupSize:       10,
		PositiveThreshold:  0.5,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DisparityThreshold <= 0 || c.DisparityThreshold > 1 {
		return fmt.Errorf("disparity_threshold must be in (0,1], got %g", c.DisparityThreshold)
	}
	if c.MinGroupSize < 1 {
		return fmt.Errorf("min_group_size must be at least 1, got %d", c.MinGroupSize)
	}
	if c.PositiveThreshold <= 0 || c.PositiveThreshold >= 1 {
		return fmt.Errorf("positive_threshold must be in (0,1), got %g", c.PositiveThreshold)
	}
	return nil
}

// Calculator computes disparity metrics over a current population.
type Calculator struct {
	config *Config
	logger *slog.Logger
}

// Result is the output of one fairness computation.
type Result struct {
	Metric    governance.FairnessMetric
	Component float64
}

// NewCalculator creates a new fairness calculator.
func NewCalculator(config *Config, logger *slog.Logger) (*Calculator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fairness config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		config: config,
		logger: logger.With("component", "fairness.calculator"),
	}, nil
}

// Compute calculates the positive-outcome rate per protected-attribute group
// over the current population and the resulting disparity score. It fails
// with InsufficientGroupDataError when fewer than two groups are observed or
// any group is below the configured minimum size.
func (c *Calculator) Compute(modelID, attribute string, current []governance.Sample, computedAt time.Time) (*Result, error) {
	type groupStat struct {
		total    int
		positive int
	}
	stats := make(map[string]*groupStat)

	for _, s := range current {
		if s.ProtectedValue == "" {
			continue
		}
		g, ok := stats[s.ProtectedValue]
		if !ok {
			g = &groupStat{}
			stats[s.ProtectedValue] = g
		}
		g.total++
		if s.PredictedOutcome > c.config.PositiveThreshold {
			g.positive++
		}
	}

	if len(stats) < 2 {
		return nil, &governance.InsufficientGroupDataError{Min: c.config.MinGroupSize}
	}

	groups := make([]string, 0, len(stats))
	for name := range stats {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	rates := make(map[string]float64, len(stats))
	var (
		minRate = 1.0
		maxRate = 0.0
	)
	for _, name := range groups {
		g := stats[name]
		if g.total < c.config.MinGroupSize {
			return nil, &governance.InsufficientGroupDataError{
				Group: name,
				Count: g.total,
				Min:   c.config.MinGroupSize,
			}
		}
		rate := float64(g.positive) / float64(g.total)
		rates[name] = rate
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}

	disparity := maxRate - minRate
	flagged := disparity >= c.config.DisparityThreshold

	metric := governance.FairnessMetric{
		ModelID:            modelID,
		ProtectedAttribute: attribute,
		GroupRates:         rates,
		GroupARate:         maxRate,
		GroupBRate:         minRate,
		DisparityScore:     disparity,
		Flagged:            flagged,
		ComputedAt:         computedAt,
	}

	c.logger.Info("fairness computed",
		"model_id", modelID,
		"attribute", attribute,
		"groups", len(rates),
		"disparity", disparity,
		"flagged", flagged,
	)

	return &Result{Metric: metric, Component: disparity * 100}, nil
}
