// Package simulation coordinates a governance run end to end: it bulk-loads
// a model's baseline and current sample populations through the sample
// store, then drives metric computation, policy evaluation, and the
// lifecycle transition, all inside one store transaction under a per-model
// exclusive lock.
//
// Runs are at-most-once per model; a second run fails with
// AlreadyIngestedError and leaves the sample count untouched. Any failure at
// any step rolls the whole transaction back, so there is no observable state
// where samples exist without their corresponding metrics.
//
// Sample generation is an injectable strategy: the synthetic generator ships
// a drifted, biased scenario for demonstrations, and real ingestion plugs in
// through the same interface and inherits the same atomicity and idempotency
// machinery.
package simulation
