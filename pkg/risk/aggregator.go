package risk

import (
	"fmt"
	"math"
)

// weightTolerance absorbs float rounding when validating that the two
// weights sum to 1.
const weightTolerance = 1e-9

// Config contains the component weights for risk aggregation.
type Config struct {
	// DriftWeight is the weight of the drift component. Default: 0.6
	DriftWeight float64 `yaml:"drift_weight"`

	// FairnessWeight is the weight of the fairness component. Default: 0.4
	FairnessWeight float64 `yaml:"fairness_weight"`
}

// DefaultConfig returns the default risk weights.
func DefaultConfig() *Config {
	return &Config{
		DriftWeight:    0.6,
		FairnessWeight: 0.4,
	}
}

// Validate checks that both weights are non-negative and sum to 1.
func (c *Config) Validate() error {
	if c.DriftWeight < 0 || c.FairnessWeight < 0 {
		return fmt.Errorf("risk weights must be non-negative, got drift=%g fairness=%g",
			c.DriftWeight, c.FairnessWeight)
	}
	if math.Abs(c.DriftWeight+c.FairnessWeight-1) > weightTolerance {
		return fmt.Errorf("risk weights must sum to 1, got drift=%g fairness=%g",
			c.DriftWeight, c.FairnessWeight)
	}
	return nil
}

// Aggregator computes composite risk scores.
type Aggregator struct {
	config *Config
}

// NewAggregator creates a new risk aggregator.
func NewAggregator(config *Config) (*Aggregator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk config: %w", err)
	}
	return &Aggregator{config: config}, nil
}

// Score computes the composite risk score from the drift and fairness
// components (both on a 0-100 scale), rounded to two decimals and clamped
// to [0,100].
func (a *Aggregator) Score(driftComponent, fairnessComponent float64) float64 {
	score := driftComponent*a.config.DriftWeight + fairnessComponent*a.config.FairnessWeight
	return clamp(round2(score), 0, 100)
}

// round2 rounds to two decimal places, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
