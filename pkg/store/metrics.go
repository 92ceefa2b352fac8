package store

import (
	"context"
	"encoding/json"

	"mercator-hq/saturn/pkg/governance"
)

// InsertDriftMetrics writes one computation run's per-feature drift metrics.
func (t *Tx) InsertDriftMetrics(ctx context.Context, metrics []governance.DriftMetric) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO drift_metrics (model_id, feature_name, psi, ks_statistic,
			psi_threshold, ks_threshold, flagged, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return governance.NewStorageError("prepare_insert_drift", err)
	}
	defer stmt.Close()

	for i := range metrics {
		m := &metrics[i]
		if _, err := stmt.ExecContext(ctx, m.ModelID, m.FeatureName, m.PSI,
			m.KSStatistic, m.PSIThreshold, m.KSThreshold, boolToInt(m.Flagged),
			m.ComputedAt.UnixNano()); err != nil {
			return governance.NewStorageError("insert_drift", err)
		}
	}
	return nil
}

// ListDriftMetrics returns a model's drift metrics, most recent computation
// first.
func (s *Store) ListDriftMetrics(ctx context.Context, modelID string) ([]governance.DriftMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_id, feature_name, psi, ks_statistic, psi_threshold,
		       ks_threshold, flagged, computed_at
		FROM drift_metrics WHERE model_id = ?
		ORDER BY computed_at DESC, feature_name ASC`, modelID)
	if err != nil {
		return nil, governance.NewStorageError("list_drift", err)
	}
	defer rows.Close()

	var metrics []governance.DriftMetric
	for rows.Next() {
		var (
			m       governance.DriftMetric
			flagged int
			ns      int64
		)
		if err := rows.Scan(&m.ModelID, &m.FeatureName, &m.PSI, &m.KSStatistic,
			&m.PSIThreshold, &m.KSThreshold, &flagged, &ns); err != nil {
			return nil, governance.NewStorageError("scan_drift", err)
		}
		m.Flagged = flagged != 0
		m.ComputedAt = timeFromNanos(ns)
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("list_drift", err)
	}
	return metrics, nil
}

// CountDriftMetrics returns the number of stored drift metric rows for a
// model.
func (s *Store) CountDriftMetrics(ctx context.Context, modelID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM drift_metrics WHERE model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, governance.NewStorageError("count_drift", err)
	}
	return count, nil
}

// InsertFairnessMetric writes one computation run's fairness metric.
func (t *Tx) InsertFairnessMetric(ctx context.Context, m *governance.FairnessMetric) error {
	rates, err := json.Marshal(m.GroupRates)
	if err != nil {
		return governance.NewStorageError("encode_group_rates", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO fairness_metrics (model_id, protected_attribute, group_rates,
			group_a_rate, group_b_rate, disparity_score, flagged, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ModelID, m.ProtectedAttribute, string(rates), m.GroupARate,
		m.GroupBRate, m.DisparityScore, boolToInt(m.Flagged), m.ComputedAt.UnixNano())
	if err != nil {
		return governance.NewStorageError("insert_fairness", err)
	}
	return nil
}

// ListFairnessMetrics returns a model's fairness metrics, most recent first.
func (s *Store) ListFairnessMetrics(ctx context.Context, modelID string) ([]governance.FairnessMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_id, protected_attribute, group_rates, group_a_rate,
		       group_b_rate, disparity_score, flagged, computed_at
		FROM fairness_metrics WHERE model_id = ?
		ORDER BY computed_at DESC`, modelID)
	if err != nil {
		return nil, governance.NewStorageError("list_fairness", err)
	}
	defer rows.Close()

	var metrics []governance.FairnessMetric
	for rows.Next() {
		var (
			m         governance.FairnessMetric
			ratesJSON string
			flagged   int
			ns        int64
		)
		if err := rows.Scan(&m.ModelID, &m.ProtectedAttribute, &ratesJSON,
			&m.GroupARate, &m.GroupBRate, &m.DisparityScore, &flagged, &ns); err != nil {
			return nil, governance.NewStorageError("scan_fairness", err)
		}
		if err := json.Unmarshal([]byte(ratesJSON), &m.GroupRates); err != nil {
			return nil, governance.NewStorageError("decode_group_rates", err)
		}
		m.Flagged = flagged != 0
		m.ComputedAt = timeFromNanos(ns)
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("list_fairness", err)
	}
	return metrics, nil
}

// CountFairnessMetrics returns the number of stored fairness metric rows for
// a model.
func (s *Store) CountFairnessMetrics(ctx context.Context, modelID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fairness_metrics WHERE model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, governance.NewStorageError("count_fairness", err)
	}
	return count, nil
}

// InsertRiskPoint appends one point to a model's risk time series.
func (t *Tx) InsertRiskPoint(ctx context.Context, p *governance.RiskHistoryPoint) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO risk_history (model_id, risk_score, drift_component,
			fairness_component, policy_id, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ModelID, p.RiskScore, p.DriftComponent, p.FairnessComponent,
		p.PolicyID, p.ComputedAt.UnixNano())
	if err != nil {
		return governance.NewStorageError("insert_risk_point", err)
	}
	return nil
}

// ListRiskHistory returns a model's risk time series in chronological order.
func (s *Store) ListRiskHistory(ctx context.Context, modelID string) ([]governance.RiskHistoryPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_id, risk_score, drift_component, fairness_component,
		       policy_id, computed_at
		FROM risk_history WHERE model_id = ?
		ORDER BY computed_at ASC`, modelID)
	if err != nil {
		return nil, governance.NewStorageError("list_risk_history", err)
	}
	defer rows.Close()

	var points []governance.RiskHistoryPoint
	for rows.Next() {
		var (
			p  governance.RiskHistoryPoint
			ns int64
		)
		if err := rows.Scan(&p.ModelID, &p.RiskScore, &p.DriftComponent,
			&p.FairnessComponent, &p.PolicyID, &ns); err != nil {
			return nil, governance.NewStorageError("scan_risk_point", err)
		}
		p.ComputedAt = timeFromNanos(ns)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("list_risk_history", err)
	}
	return points, nil
}

// CountRiskPoints returns the number of stored risk history points for a
// model.
func (s *Store) CountRiskPoints(ctx context.Context, modelID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM risk_history WHERE model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, governance.NewStorageError("count_risk_points", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
