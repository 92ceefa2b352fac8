// Package lifecycle owns the governance state machine for model records.
//
// Legal transitions are a closed table keyed by (current status, action);
// anything absent from the table is rejected with InvalidStateError rather
// than inferred from scattered conditionals. Deployment carves out two
// deliberate asymmetries: an at_risk model may be deployed only with an
// override carrying a non-empty justification, and a blocked model may never
// be deployed. There is no override path for blocked, which is what
// distinguishes "needs review" from "forbidden".
//
// Every applied transition writes exactly one audit entry in the same
// transaction as the status change.
package lifecycle
