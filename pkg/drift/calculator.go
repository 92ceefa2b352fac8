package drift

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"mercator-hq/saturn/pkg/governance"
)

// predictionFeature is the pseudo-feature name under which the predicted
// outcome distribution is monitored.
const predictionFeature = "prediction"

// Calculator computes distribution-shift metrics between two populations.
type Calculator struct {
	config *Config
	logger *slog.Logger
}

// Result is the output of one drift computation: one metric per monitored
// numeric feature plus the rolled-up drift component on a 0-100 scale.
type Result struct {
	Metrics   []governance.DriftMetric
	Component float64
	AvgPSI    float64
}

// NewCalculator creates a new drift calculator.
func NewCalculator(config *Config, logger *slog.Logger) (*Calculator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid drift config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		config: config,
		logger: logger.With("component", "drift.calculator"),
	}, nil
}

// Compute calculates PSI and KS for every numeric feature present in both
// populations and returns one DriftMetric per feature. It fails with
// InsufficientDataError when either population is smaller than the
// configured minimum; it never substitutes zeros for metrics it could not
// compute.
func (c *Calculator) Compute(modelID string, baseline, current []governance.Sample, computedAt time.Time) (*Result, error) {
	if len(baseline) < c.config.MinSamples {
		return nil, &governance.InsufficientDataError{
			Population: governance.BatchBaseline,
			Count:      len(baseline),
			Min:        c.config.MinSamples,
		}
	}
	if len(current) < c.config.MinSamples {
		return nil, &governance.InsufficientDataError{
			Population: governance.BatchCurrent,
			Count:      len(current),
			Min:        c.config.MinSamples,
		}
	}

	features := c.monitoredFeatures(baseline, current)

	var (
		metrics []governance.DriftMetric
		psiSum  float64
	)
	for _, name := range features {
		base := featureValues(baseline, name)
		cur := featureValues(current, name)

		// A feature must be numeric and populated on both sides to be
		// comparable; sparse features are skipped, not zeroed.
		if len(base) < c.config.MinSamples || len(cur) < c.config.MinSamples {
			c.logger.Debug("skipping sparse feature",
				"model_id", modelID,
				"feature", name,
				"baseline_values", len(base),
				"current_values", len(cur),
			)
			continue
		}

		psi := c.psi(base, cur)
		ks := ksStatistic(base, cur)
		flagged := psi >= c.config.PSIThreshold || ks >= c.config.KSThreshold

		metrics = append(metrics, governance.DriftMetric{
			ModelID:      modelID,
			FeatureName:  name,
			PSI:          psi,
			KSStatistic:  ks,
			PSIThreshold: c.config.PSIThreshold,
			KSThreshold:  c.config.KSThreshold,
			Flagged:      flagged,
			ComputedAt:   computedAt,
		})
		psiSum += psi
	}

	if len(metrics) == 0 {
		return nil, &governance.IncompleteComputationError{ModelID: modelID, Stage: "drift"}
	}

	avgPSI := psiSum / float64(len(metrics))
	component := math.Min(100, avgPSI*c.config.ComponentScale)

	c.logger.Info("drift computed",
		"model_id", modelID,
		"features", len(metrics),
		"avg_psi", avgPSI,
		"drift_component", component,
	)

	return &Result{Metrics: metrics, Component: component, AvgPSI: avgPSI}, nil
}

// monitoredFeatures returns the sorted set of feature names that appear as
// numeric in both populations, plus the prediction pseudo-feature when
// configured.
func (c *Calculator) monitoredFeatures(baseline, current []governance.Sample) []string {
	numericIn := func(samples []governance.Sample) map[string]bool {
		seen := make(map[string]bool)
		for _, s := range samples {
			for name, v := range s.Features {
				if v.Numeric {
					seen[name] = true
				}
			}
		}
		return seen
	}

	baseSeen := numericIn(baseline)
	curSeen := numericIn(current)

	var names []string
	for name := range baseSeen {
		if curSeen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if c.config.MonitorPrediction {
		names = append(names, predictionFeature)
	}
	return names
}

// featureValues extracts the numeric values of a feature from a population.
func featureValues(samples []governance.Sample, name string) []float64 {
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if name == predictionFeature {
			values = append(values, s.PredictedOutcome)
			continue
		}
		if v, ok := s.Features[name]; ok && v.Numeric {
			values = append(values, v.Value)
		}
	}
	return values
}

// psi computes the Population Stability Index between two value sets using
// equal-frequency bins cut from the baseline's quantiles.
func (c *Calculator) psi(baseline, current []float64) float64 {
	edges := quantileEdges(baseline, c.config.Bins)

	basePct := binProportions(baseline, edges)
	curPct := binProportions(current, edges)

	// Smooth any empty bin on both sides so the log ratio stays defined,
	// then renormalize each side back to a distribution.
	smoothed := false
	for i := range basePct {
		if basePct[i] == 0 || curPct[i] == 0 {
			basePct[i] += c.config.Epsilon
			curPct[i] += c.config.Epsilon
			smoothed = true
		}
	}
	if smoothed {
		normalize(basePct)
		normalize(curPct)
	}

	var psi float64
	for i := range basePct {
		psi += (curPct[i] - basePct[i]) * math.Log(curPct[i]/basePct[i])
	}
	return psi
}

// quantileEdges returns the interior bin boundaries (len bins-1) at the
// baseline's i/bins quantiles, with coincident boundaries collapsed.
func quantileEdges(values []float64, bins int) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	edges := make([]float64, 0, bins-1)
	for i := 1; i < bins; i++ {
		idx := i * n / bins
		if idx >= n {
			idx = n - 1
		}
		edge := sorted[idx]
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return edges
}

// binProportions counts values into the half-open bins defined by edges
// ((-inf,e1], (e1,e2], ..., (eK,+inf)) and returns per-bin proportions.
func binProportions(values []float64, edges []float64) []float64 {
	counts := make([]float64, len(edges)+1)
	for _, v := range values {
		idx := sort.SearchFloat64s(edges, v)
		// SearchFloat64s returns the first edge >= v, which places v in
		// the half-open bin ending at that edge.
		counts[idx]++
	}
	total := float64(len(values))
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

// normalize rescales a proportion vector to sum to 1.
func normalize(pct []float64) {
	var sum float64
	for _, p := range pct {
		sum += p
	}
	if sum == 0 {
		return
	}
	for i := range pct {
		pct[i] /= sum
	}
}

// ksStatistic computes the two-sample Kolmogorov-Smirnov statistic: the
// maximum absolute gap between the two empirical CDFs, evaluated over the
// union of observed values.
func ksStatistic(a, b []float64) float64 {
	as := make([]float64, len(a))
	copy(as, a)
	sort.Float64s(as)
	bs := make([]float64, len(b))
	copy(bs, b)
	sort.Float64s(bs)

	na := float64(len(as))
	nb := float64(len(bs))

	var (
		i, j int
		max  float64
	)
	for i < len(as) && j < len(bs) {
		var v float64
		if as[i] <= bs[j] {
			v = as[i]
		} else {
			v = bs[j]
		}
		for i < len(as) && as[i] <= v {
			i++
		}
		for j < len(bs) && bs[j] <= v {
			j++
		}
		gap := math.Abs(float64(i)/na - float64(j)/nb)
		if gap > max {
			max = gap
		}
	}
	return max
}
