package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"mercator-hq/saturn/pkg/governance"
)

// SampleGenerator materializes the baseline and current populations for a
// governance run. Real ingestion and synthetic demonstration data implement
// the same interface so both share the orchestrator's transaction and
// idempotency machinery.
type SampleGenerator interface {
	Generate(modelID string, now time.Time) (baseline, current []governance.Sample, err error)
}

// GeneratorConfig configures the synthetic sample generator.
type GeneratorConfig struct {
	// BaselineCount is the size of the baseline population. Default: 300
	BaselineCount int `yaml:"baseline_count"`

	// CurrentCount is the size of the current population. Default: 200
	CurrentCount int `yaml:"current_count"`

	// Seed makes generation deterministic. A zero seed derives one from
	// the clock.
	Seed int64 `yaml:"seed"`
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		BaselineCount: 300,
		CurrentCount:  200,
	}
}

// Validate checks the configuration for invalid values.
func (c *GeneratorConfig) Validate() error {
	if c.BaselineCount < 1 {
		return fmt.Errorf("baseline_count must be positive, got %d", c.BaselineCount)
	}
	if c.CurrentCount < 1 {
		return fmt.Errorf("current_count must be positive, got %d", c.CurrentCount)
	}
	return nil
}

// SyntheticGenerator produces a fraud-detection scenario with a stable
// baseline and a severely drifted, demographically biased current
// population: transaction amounts shift from N(200,80) to N(900,300), the
// customer base ages, country and device mixes collapse onto single values,
// and the positive-outcome rate diverges between genders. All metrics
// downstream are computed from these samples as-is; nothing is forced or
// back-filled.
type SyntheticGenerator struct {
	config *GeneratorConfig
	rng    *rand.Rand
}

// NewSyntheticGenerator creates a synthetic generator.
func NewSyntheticGenerator(config *GeneratorConfig) (*SyntheticGenerator, error) {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate produces the baseline and current populations. Baseline samples
// are timestamped before current ones so the stored series reads
// chronologically.
func (g *SyntheticGenerator) Generate(modelID string, now time.Time) ([]governance.Sample, []governance.Sample, error) {
	start := now.Add(-30 * 24 * time.Hour)
	baseline := make([]governance.Sample, 0, g.config.BaselineCount)
	for i := 0; i < g.config.BaselineCount; i++ {
		baseline = append(baseline, g.baselineSample(modelID, start.Add(time.Duration(i)*time.Hour)))
	}

	currentStart := start.Add(time.Duration(g.config.BaselineCount) * time.Hour)
	current := make([]governance.Sample, 0, g.config.CurrentCount)
	for i := 0; i < g.config.CurrentCount; i++ {
		current = append(current, g.currentSample(modelID, currentStart.Add(time.Duration(i)*time.Hour)))
	}

	return baseline, current, nil
}

func (g *SyntheticGenerator) baselineSample(modelID string, ts time.Time) governance.Sample {
	gender := g.pick([]string{"Male", "Female"}, []float64{0.5, 0.5})
	return governance.Sample{
		ModelID:   modelID,
		Timestamp: ts,
		Features: map[string]governance.FeatureValue{
			"transaction_amount": governance.Num(g.gauss(200, 80, 10, 800)),
			"customer_age":       governance.Num(float64(int(g.gauss(40, 12, 18, 80)))),
			"country":            governance.Cat(g.pick([]string{"USA", "UK", "Canada", "Germany", "France"}, []float64{0.4, 0.2, 0.15, 0.15, 0.1})),
			"device_type":        governance.Cat(g.pick([]string{"mobile", "desktop", "tablet"}, []float64{0.5, 0.35, 0.15})),
		},
		// Both genders score alike in the baseline.
		PredictedOutcome: g.gauss(0.30, 0.15, 0.01, 0.99),
		ProtectedValue:   gender,
		Batch:            governance.BatchBaseline,
	}
}

func (g *SyntheticGenerator) currentSample(modelID string, ts time.Time) governance.Sample {
	gender := g.pick([]string{"Male", "Female"}, []float64{0.5, 0.5})

	// The bias lives in the outcome, not the population mix: female
	// samples score markedly higher (fewer positive outcomes).
	outcomeMean := 0.30
	if gender == "Female" {
		outcomeMean = 0.60
	}

	return governance.Sample{
		ModelID:   modelID,
		Timestamp: ts,
		Features: map[string]governance.FeatureValue{
			"transaction_amount": governance.Num(g.gauss(900, 300, 200, 2000)),
			"customer_age":       governance.Num(float64(int(g.gauss(55, 18, 25, 90)))),
			"country":            governance.Cat(g.pick([]string{"USA", "UK", "Canada", "Germany", "France"}, []float64{0.95, 0.02, 0.01, 0.01, 0.01})),
			"device_type":        governance.Cat(g.pick([]string{"mobile", "desktop", "tablet"}, []float64{0.85, 0.10, 0.05})),
		},
		PredictedOutcome: g.gauss(outcomeMean, 0.15, 0.01, 0.99),
		ProtectedValue:   gender,
		Batch:            governance.BatchCurrent,
	}
}

// gauss draws from N(mean, sd) clamped to [lo, hi].
func (g *SyntheticGenerator) gauss(mean, sd, lo, hi float64) float64 {
	v := g.rng.NormFloat64()*sd + mean
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pick draws one of choices with the given weights.
func (g *SyntheticGenerator) pick(choices []string, weights []float64) string {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return choices[i]
		}
		r -= w
	}
	return choices[len(choices)-1]
}
