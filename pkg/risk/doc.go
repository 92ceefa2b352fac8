// Package risk combines the drift and fairness components into a single
// bounded risk score. The aggregation is a pure weighted sum: deterministic,
// monotonically non-decreasing in each component, rounded to two decimals,
// and clamped to [0,100]. It has no failure modes of its own; upstream
// calculators fail explicitly instead of feeding defaults in.
package risk
