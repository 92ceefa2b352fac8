// Package store provides SQLite-backed persistence for the governance
// engine: model records, prediction samples, drift and fairness metrics,
// risk history, governance policies, and audit entries.
//
// All writes belonging to one governance run execute inside a single
// transaction via WithTx; on any failure the transaction rolls back and no
// partial state is observable. Reads inside a transaction see its snapshot,
// which is what lets recomputation read a consistent sample population while
// other models are being written.
//
// Two SQLite drivers are compiled in: the pure-Go modernc driver ("sqlite",
// the default, used by tests) and the cgo mattn driver ("sqlite3"),
// selectable through Config.Driver.
package store
