package store

import (
	"context"

	"mercator-hq/saturn/pkg/governance"
)

// InsertAuditEntry writes one lifecycle transition record. Entries are
// append-only; there is no update or delete path short of model deletion.
func (t *Tx) InsertAuditEntry(ctx context.Context, e *governance.AuditEntry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO audit_entries (id, model_id, actor, action, prior_status,
			new_status, override_used, override_reason, risk_score,
			disparity_score, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ModelID, e.Actor, e.Action, string(e.PriorStatus),
		string(e.NewStatus), boolToInt(e.OverrideUsed), e.OverrideReason,
		e.RiskScore, e.DisparityScore, e.DecidedAt.UnixNano())
	if err != nil {
		return governance.NewStorageError("insert_audit_entry", err)
	}
	return nil
}

// ListAuditEntries returns a model's audit trail, most recent first.
func (s *Store) ListAuditEntries(ctx context.Context, modelID string) ([]governance.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, actor, action, prior_status, new_status,
		       override_used, override_reason, risk_score, disparity_score,
		       decided_at
		FROM audit_entries WHERE model_id = ?
		ORDER BY decided_at DESC`, modelID)
	if err != nil {
		return nil, governance.NewStorageError("list_audit_entries", err)
	}
	defer rows.Close()

	var entries []governance.AuditEntry
	for rows.Next() {
		var (
			e            governance.AuditEntry
			prior, next  string
			overrideUsed int
			ns           int64
		)
		if err := rows.Scan(&e.ID, &e.ModelID, &e.Actor, &e.Action, &prior,
			&next, &overrideUsed, &e.OverrideReason, &e.RiskScore,
			&e.DisparityScore, &ns); err != nil {
			return nil, governance.NewStorageError("scan_audit_entry", err)
		}
		e.PriorStatus = governance.Status(prior)
		e.NewStatus = governance.Status(next)
		e.OverrideUsed = overrideUsed != 0
		e.DecidedAt = timeFromNanos(ns)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("list_audit_entries", err)
	}
	return entries, nil
}
