package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the governance database
// schema. Timestamps are stored as integer Unix nanoseconds so ordering and
// scanning behave identically under both compiled-in drivers.
const Schema = `
-- Model registry
CREATE TABLE IF NOT EXISTS models (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    status TEXT NOT NULL,
    last_verdict TEXT NOT NULL DEFAULT '',
    last_risk_score REAL NOT NULL DEFAULT 0,
    last_disparity REAL NOT NULL DEFAULT 0,
    last_policy_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Prediction samples, append-only, owned by their model
CREATE TABLE IF NOT EXISTS samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_id TEXT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    ts INTEGER NOT NULL,
    features TEXT NOT NULL,
    predicted_outcome REAL NOT NULL,
    protected_value TEXT NOT NULL DEFAULT '',
    batch TEXT NOT NULL
);

-- Per-feature drift metrics, one row per feature per computation run
CREATE TABLE IF NOT EXISTS drift_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_id TEXT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    feature_name TEXT NOT NULL,
    psi REAL NOT NULL,
    ks_statistic REAL NOT NULL,
    psi_threshold REAL NOT NULL,
    ks_threshold REAL NOT NULL,
    flagged INTEGER NOT NULL,
    computed_at INTEGER NOT NULL
);

-- Fairness disparity metrics, one row per computation run
CREATE TABLE IF NOT EXISTS fairness_metrics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_id TEXT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    protected_attribute TEXT NOT NULL,
    group_rates TEXT NOT NULL,
    group_a_rate REAL NOT NULL,
    group_b_rate REAL NOT NULL,
    disparity_score REAL NOT NULL,
    flagged INTEGER NOT NULL,
    computed_at INTEGER NOT NULL
);

-- Append-only risk time series
CREATE TABLE IF NOT EXISTS risk_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_id TEXT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    risk_score REAL NOT NULL,
    drift_component REAL NOT NULL,
    fairness_component REAL NOT NULL,
    policy_id TEXT NOT NULL DEFAULT '',
    computed_at INTEGER NOT NULL
);

-- Governance policies; at most one row has active = 1
CREATE TABLE IF NOT EXISTS policies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    max_risk REAL NOT NULL,
    approval_threshold REAL NOT NULL,
    max_disparity REAL NOT NULL,
    active INTEGER NOT NULL,
    version INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

-- Append-only audit trail, one entry per lifecycle transition
CREATE TABLE IF NOT EXISTS audit_entries (
    id TEXT PRIMARY KEY,
    model_id TEXT NOT NULL REFERENCES models(id) ON DELETE CASCADE,
    actor TEXT NOT NULL,
    action TEXT NOT NULL,
    prior_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    override_used INTEGER NOT NULL,
    override_reason TEXT NOT NULL DEFAULT '',
    risk_score REAL NOT NULL DEFAULT 0,
    disparity_score REAL NOT NULL DEFAULT 0,
    decided_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_samples_model ON samples(model_id, batch);
CREATE INDEX IF NOT EXISTS idx_drift_model_time ON drift_metrics(model_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_fairness_model_time ON fairness_metrics(model_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_risk_model_time ON risk_history(model_id, computed_at);
CREATE INDEX IF NOT EXISTS idx_audit_model_time ON audit_entries(model_id, decided_at DESC);
CREATE INDEX IF NOT EXISTS idx_policies_active ON policies(active);
`
