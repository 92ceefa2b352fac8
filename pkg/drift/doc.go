// Package drift computes per-feature distribution-shift metrics between a
// baseline and a current sample population.
//
// Two metrics are produced per numeric feature:
//
//   - PSI (Population Stability Index) over equal-frequency bins derived
//     from the baseline's own quantile boundaries, with a configurable
//     smoothing floor to keep the logarithm defined on empty bins.
//   - The two-sample KS statistic, the maximum gap between the populations'
//     empirical cumulative distribution functions evaluated over the union
//     of observed values.
//
// The calculator also rolls the per-feature PSIs up into a single drift
// component on a 0-100 scale for risk aggregation. All thresholds, the bin
// count, the smoothing epsilon, and the component scale are configuration,
// not literals.
package drift
