// Package governance defines the core domain types for the model governance
// decision engine: prediction samples, drift and fairness metrics, risk
// history points, governance policies, model lifecycle statuses, verdicts,
// and audit entries, together with the engine's error taxonomy.
//
// The package contains no behavior beyond validation helpers; calculators,
// the policy evaluator, the state machine, and persistence live in their own
// packages and share these types.
package governance
