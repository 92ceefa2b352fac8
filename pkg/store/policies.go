package store

import (
	"context"
	"database/sql"
	"errors"

	"mercator-hq/saturn/pkg/governance"
)

// ActivatePolicy inserts a new policy as the active one, deactivating any
// previously active policy in the same transaction. The new policy's version
// is one greater than the highest stored version. Past verdicts keep the
// policy ID that produced them.
func (s *Store) ActivatePolicy(ctx context.Context, p *governance.Policy) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		var maxVersion sql.NullInt64
		if err := tx.tx.QueryRowContext(ctx,
			`SELECT MAX(version) FROM policies`).Scan(&maxVersion); err != nil {
			return governance.NewStorageError("max_policy_version", err)
		}
		p.Version = int(maxVersion.Int64) + 1
		p.Active = true

		if _, err := tx.tx.ExecContext(ctx,
			`UPDATE policies SET active = 0 WHERE active = 1`); err != nil {
			return governance.NewStorageError("deactivate_policies", err)
		}
		if _, err := tx.tx.ExecContext(ctx, `
			INSERT INTO policies (id, name, max_risk, approval_threshold,
				max_disparity, active, version, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
			p.ID, p.Name, p.MaxRisk, p.ApprovalThreshold, p.MaxDisparity,
			p.Version, p.CreatedAt.UnixNano()); err != nil {
			return governance.NewStorageError("insert_policy", err)
		}
		return nil
	})
}

const policyColumns = `id, name, max_risk, approval_threshold, max_disparity,
	active, version, created_at`

// ActivePolicy returns the currently active policy, or ErrNoActivePolicy.
func (s *Store) ActivePolicy(ctx context.Context) (*governance.Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE active = 1`)
	return scanPolicy(row)
}

// ActivePolicy returns the active policy within the transaction's snapshot,
// so one governance run evaluates against a single policy version even if an
// activation lands mid-run.
func (t *Tx) ActivePolicy(ctx context.Context) (*governance.Policy, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE active = 1`)
	return scanPolicy(row)
}

// GetPolicy returns the policy with the given ID regardless of active state.
func (s *Store) GetPolicy(ctx context.Context, id string) (*governance.Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = ?`, id)
	p, err := scanPolicy(row)
	if errors.Is(err, governance.ErrNoActivePolicy) {
		return nil, &governance.NotFoundError{Kind: "policy", ID: id}
	}
	return p, err
}

func scanPolicy(row rowScanner) (*governance.Policy, error) {
	var (
		p      governance.Policy
		active int
		ns     int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.MaxRisk, &p.ApprovalThreshold,
		&p.MaxDisparity, &active, &p.Version, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.ErrNoActivePolicy
	}
	if err != nil {
		return nil, governance.NewStorageError("scan_policy", err)
	}
	p.Active = active != 0
	p.CreatedAt = timeFromNanos(ns)
	return &p, nil
}
