package drift

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/governance"
)

func testConfig() *Config {
	return &Config{
		Bins:              10,
		Epsilon:           1e-4,
		PSIThreshold:      0.25,
		KSThreshold:       0.20,
		MinSamples:        5,
		ComponentScale:    200,
		MonitorPrediction: false,
	}
}

func newTestCalculator(t *testing.T, cfg *Config) *Calculator {
	t.Helper()
	c, err := NewCalculator(cfg, nil)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

// numericSamples builds one sample per value with a single numeric feature.
func numericSamples(values []float64, batch governance.BatchTag) []governance.Sample {
	samples := make([]governance.Sample, 0, len(values))
	for _, v := range values {
		samples = append(samples, governance.Sample{
			ModelID: "m1",
			Features: map[string]governance.FeatureValue{
				"x": governance.Num(v),
			},
			PredictedOutcome: 0.5,
			Batch:            batch,
		})
	}
	return samples
}

func sequence(start float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = start + float64(i)
	}
	return values
}

func TestCalculator_Compute_IdenticalPopulations(t *testing.T) {
	c := newTestCalculator(t, testConfig())

	values := sequence(0, 50)
	baseline := numericSamples(values, governance.BatchBaseline)
	current := numericSamples(values, governance.BatchCurrent)

	res, err := c.Compute("m1", baseline, current, time.Now())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(res.Metrics))
	}

	m := res.Metrics[0]
	if m.PSI != 0 {
		t.Errorf("expected PSI 0 for identical populations, got %g", m.PSI)
	}
	if m.KSStatistic != 0 {
		t.Errorf("expected KS 0 for identical populations, got %g", m.KSStatistic)
	}
	if m.Flagged {
		t.Error("identical populations must not be flagged")
	}
	if res.Component != 0 {
		t.Errorf("expected drift component 0, got %g", res.Component)
	}
}

func TestCalculator_Compute_ShiftedPopulation(t *testing.T) {
	c := newTestCalculator(t, testConfig())

	baseline := numericSamples(sequence(0, 50), governance.BatchBaseline)
	current := numericSamples(sequence(100, 50), governance.BatchCurrent)

	res, err := c.Compute("m1", baseline, current, time.Now())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	m := res.Metrics[0]
	if m.PSI < c.config.PSIThreshold {
		t.Errorf("expected PSI above threshold for disjoint populations, got %g", m.PSI)
	}
	if m.KSStatistic != 1 {
		t.Errorf("expected KS 1 for disjoint populations, got %g", m.KSStatistic)
	}
	if !m.Flagged {
		t.Error("disjoint populations must be flagged")
	}
	if res.Component <= 0 {
		t.Errorf("expected positive drift component, got %g", res.Component)
	}
}

func TestCalculator_Compute_InsufficientData(t *testing.T) {
	c := newTestCalculator(t, testConfig())

	baseline := numericSamples(sequence(0, 3), governance.BatchBaseline)
	current := numericSamples(sequence(0, 50), governance.BatchCurrent)

	_, err := c.Compute("m1", baseline, current, time.Now())
	var insufficient *governance.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Population != governance.BatchBaseline {
		t.Errorf("expected baseline population flagged, got %s", insufficient.Population)
	}
}

func TestCalculator_Compute_NoComparableFeatures(t *testing.T) {
	c := newTestCalculator(t, testConfig())

	categorical := func(batch governance.BatchTag) []governance.Sample {
		samples := make([]governance.Sample, 10)
		for i := range samples {
			samples[i] = governance.Sample{
				ModelID: "m1",
				Features: map[string]governance.FeatureValue{
					"country": governance.Cat("USA"),
				},
				Batch: batch,
			}
		}
		return samples
	}

	_, err := c.Compute("m1", categorical(governance.BatchBaseline), categorical(governance.BatchCurrent), time.Now())
	var incomplete *governance.IncompleteComputationError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteComputationError, got %v", err)
	}
}

func TestCalculator_Compute_PredictionPseudoFeature(t *testing.T) {
	cfg := testConfig()
	cfg.MonitorPrediction = true
	c := newTestCalculator(t, cfg)

	baseline := numericSamples(sequence(0, 50), governance.BatchBaseline)
	current := numericSamples(sequence(0, 50), governance.BatchCurrent)

	res, err := c.Compute("m1", baseline, current, time.Now())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Metrics) != 2 {
		t.Fatalf("expected feature and prediction metrics, got %d", len(res.Metrics))
	}
	last := res.Metrics[len(res.Metrics)-1]
	if last.FeatureName != "prediction" {
		t.Errorf("expected prediction metric last, got %q", last.FeatureName)
	}
}

func TestKSStatistic_PartialOverlap(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{3, 4, 5, 6}

	// At value 2 the gap is 0.5: half of a observed, none of b.
	if got := ksStatistic(a, b); got != 0.5 {
		t.Errorf("expected KS 0.5, got %g", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.Bins = 1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for bins < 2")
	}
}
