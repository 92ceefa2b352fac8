package drift

import "fmt"

// Config contains configuration for the drift calculator.
type Config struct {
	// Bins is the number of equal-frequency bins cut from the baseline's
	// quantile boundaries. Coincident boundaries (heavy ties in the
	// baseline) are collapsed, so the effective bin count may be lower.
	// Default: 10
	Bins int `yaml:"bins"`

	// Epsilon is the smoothing floor added to both sides of any bin whose
	// raw proportion is zero, keeping ln(current/baseline) defined.
	// Proportions are renormalized after smoothing.
	// Default: 1e-4
	Epsilon float64 `yaml:"epsilon"`

	// PSIThreshold flags a feature as drifted when its PSI meets or
	// exceeds it. Default: 0.25
	PSIThreshold float64 `yaml:"psi_threshold"`

	// KSThreshold flags a feature as drifted when its KS statistic meets
	// or exceeds it. Default: 0.20
	KSThreshold float64 `yaml:"ks_threshold"`

	// MinSamples is the minimum size of each population. Smaller
	// populations fail with InsufficientDataError rather than producing
	// unstable metrics. Default: 30
	MinSamples int `yaml:"min_samples"`

	// ComponentScale converts the average PSI across features into the
	// 0-100 drift component: min(100, avg_psi * ComponentScale).
	// Default: 200
	ComponentScale float64 `yaml:"component_scale"`

	// MonitorPrediction adds the predicted outcome as a monitored
	// pseudo-feature alongside the input features. Default: true
	MonitorPrediction bool `yaml:"monitor_prediction"`
}

// DefaultConfig returns the default drift configuration.
func DefaultConfig() *Config {
	return &Config{
		Bins:              10,
		Epsilon:           1e-4,
		PSIThreshold:      0.25,
		KSThreshold:       0.20,
		MinSamples:        30,
		ComponentScale:    200,
		MonitorPrediction: true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Bins < 2 {
		return fmt.Errorf("bins must be at least 2, got %d", c.Bins)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.PSIThreshold <= 0 {
		return fmt.Errorf("psi_threshold must be positive, got %g", c.PSIThreshold)
	}
	if c.KSThreshold <= 0 || c.KSThreshold > 1 {
		return fmt.Errorf("ks_threshold must be in (0,1], got %g", c.KSThreshold)
	}
	if c.MinSamples < 2 {
		return fmt.Errorf("min_samples must be at least 2, got %d", c.MinSamples)
	}
	if c.ComponentScale <= 0 {
		return fmt.Errorf("component_scale must be positive, got %g", c.ComponentScale)
	}
	return nil
}
