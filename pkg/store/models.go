package store

import (
	"context"
	"database/sql"
	"errors"

	"mercator-hq/saturn/pkg/governance"
)

const modelColumns = `id, name, version, status, last_verdict, last_risk_score,
	last_disparity, last_policy_id, created_at, updated_at`

// CreateModel inserts a new model record.
func (s *Store) CreateModel(ctx context.Context, m *governance.ModelRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO models (id, name, version, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Version, string(m.Status),
		m.CreatedAt.UnixNano(), m.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return governance.NewStorageError("create_model", err)
	}
	return nil
}

// GetModel returns the model record with the given ID.
func (s *Store) GetModel(ctx context.Context, id string) (*governance.ModelRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+modelColumns+` FROM models WHERE id = ?`, id)
	return scanModel(row)
}

// ListModels returns all model records, newest first.
func (s *Store) ListModels(ctx context.Context) ([]governance.ModelRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+modelColumns+` FROM models ORDER BY created_at DESC`)
	if err != nil {
		return nil, governance.NewStorageError("list_models", err)
	}
	defer rows.Close()

	var models []governance.ModelRecord
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("list_models", err)
	}
	return models, nil
}

// DeleteModel removes a model and, through cascading foreign keys, all of
// its samples, metrics, risk history, and audit entries.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return governance.NewStorageError("delete_model", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return governance.NewStorageError("delete_model", err)
	}
	if n == 0 {
		return &governance.NotFoundError{Kind: "model", ID: id}
	}
	return nil
}

// GetModel returns the model record within the transaction's snapshot.
func (t *Tx) GetModel(ctx context.Context, id string) (*governance.ModelRecord, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+modelColumns+` FROM models WHERE id = ?`, id)
	return scanModel(row)
}

// UpdateModelState writes the model's lifecycle status and cached verdict
// fields. Only the lifecycle state machine calls this.
func (t *Tx) UpdateModelState(ctx context.Context, m *governance.ModelRecord) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE models
		SET status = ?, last_verdict = ?, last_risk_score = ?,
		    last_disparity = ?, last_policy_id = ?, updated_at = ?
		WHERE id = ?`,
		string(m.Status), string(m.LastVerdict), m.LastRiskScore,
		m.LastDisparity, m.LastPolicyID, m.UpdatedAt.UnixNano(), m.ID,
	)
	if err != nil {
		return governance.NewStorageError("update_model_state", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return governance.NewStorageError("update_model_state", err)
	}
	if n == 0 {
		return &governance.NotFoundError{Kind: "model", ID: m.ID}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*governance.ModelRecord, error) {
	var (
		m                    governance.ModelRecord
		status, verdict      string
		createdNS, updatedNS int64
	)
	err := row.Scan(&m.ID, &m.Name, &m.Version, &status, &verdict,
		&m.LastRiskScore, &m.LastDisparity, &m.LastPolicyID,
		&createdNS, &updatedNS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.ErrModelNotFound
	}
	if err != nil {
		return nil, governance.NewStorageError("scan_model", err)
	}
	m.Status = governance.Status(status)
	m.LastVerdict = governance.Verdict(verdict)
	m.CreatedAt = timeFromNanos(createdNS)
	m.UpdatedAt = timeFromNanos(updatedNS)
	return &m, nil
}
