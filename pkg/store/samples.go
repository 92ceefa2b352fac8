package store

import (
	"context"
	"encoding/json"

	"mercator-hq/saturn/pkg/governance"
)

// AppendSamples writes samples for a model inside the transaction. The
// default mode is initialize-once: if the model already has stored samples
// the call fails with DuplicateIngestionError unless additive is set. Either
// all samples in the call become visible on commit or none do.
func (t *Tx) AppendSamples(ctx context.Context, modelID string, samples []governance.Sample, additive bool) (int, error) {
	if !additive {
		existing, err := t.CountSamples(ctx, modelID)
		if err != nil {
			return 0, err
		}
		if existing > 0 {
			return 0, &governance.DuplicateIngestionError{ModelID: modelID, Count: existing}
		}
	}

	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO samples (model_id, ts, features, predicted_outcome, protected_value, batch)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, governance.NewStorageError("prepare_append_samples", err)
	}
	defer stmt.Close()

	written := 0
	for i := range samples {
		sm := &samples[i]
		features, err := json.Marshal(sm.Features)
		if err != nil {
			return 0, governance.NewStorageError("encode_features", err)
		}
		if _, err := stmt.ExecContext(ctx, modelID, sm.Timestamp.UnixNano(),
			string(features), sm.PredictedOutcome, sm.ProtectedValue, string(sm.Batch)); err != nil {
			return 0, governance.NewStorageError("append_samples", err)
		}
		written++
	}
	return written, nil
}

// CountSamples returns the number of stored samples for a model within the
// transaction's snapshot.
func (t *Tx) CountSamples(ctx context.Context, modelID string) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM samples WHERE model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, governance.NewStorageError("count_samples", err)
	}
	return count, nil
}

// CountSamples returns the number of stored samples for a model.
func (s *Store) CountSamples(ctx context.Context, modelID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM samples WHERE model_id = ?`, modelID).Scan(&count)
	if err != nil {
		return 0, governance.NewStorageError("count_samples", err)
	}
	return count, nil
}

// SamplesByBatch returns a model's samples for one batch tag, oldest first,
// read within the transaction's snapshot so recomputation never observes a
// population that is concurrently being appended to.
func (t *Tx) SamplesByBatch(ctx context.Context, modelID string, batch governance.BatchTag) ([]governance.Sample, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT model_id, ts, features, predicted_outcome, protected_value, batch
		FROM samples WHERE model_id = ? AND batch = ? ORDER BY ts ASC`,
		modelID, string(batch))
	if err != nil {
		return nil, governance.NewStorageError("samples_by_batch", err)
	}
	defer rows.Close()

	var samples []governance.Sample
	for rows.Next() {
		var (
			sm           governance.Sample
			ns           int64
			featuresJSON string
			batchStr     string
		)
		if err := rows.Scan(&sm.ModelID, &ns, &featuresJSON,
			&sm.PredictedOutcome, &sm.ProtectedValue, &batchStr); err != nil {
			return nil, governance.NewStorageError("scan_sample", err)
		}
		if err := json.Unmarshal([]byte(featuresJSON), &sm.Features); err != nil {
			return nil, governance.NewStorageError("decode_features", err)
		}
		sm.Timestamp = timeFromNanos(ns)
		sm.Batch = governance.BatchTag(batchStr)
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("samples_by_batch", err)
	}
	return samples, nil
}
