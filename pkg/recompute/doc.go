// Package recompute periodically refreshes drift, fairness, and risk
// metrics for deployed models on a cron schedule. A deployed model whose
// refreshed verdict worsens is moved to at_risk or blocked by the lifecycle
// state machine; recomputation uses the same per-model exclusivity and
// snapshot rules as a first governance run.
package recompute
