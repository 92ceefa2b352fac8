// Package policy evaluates a risk score and disparity score against the
// active governance policy's thresholds and produces a verdict.
//
// Evaluation is stateless and idempotent: the same inputs always yield the
// same verdict regardless of call order. Ties resolve toward the stricter
// verdict (blocked > at_risk > approved). The blocked ceiling is hard:
// nothing downstream may override it.
package policy
