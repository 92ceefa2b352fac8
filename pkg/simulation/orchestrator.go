package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/store"
)

// RunRecorder receives run telemetry. The prometheus-backed implementation
// lives in pkg/telemetry/metrics; a nil recorder disables recording.
type RunRecorder interface {
	RecordRun(outcome string, verdict governance.Verdict, duration time.Duration)
	RecordRollback()
}

// Config contains configuration for the orchestrator.
type Config struct {
	// ProtectedAttribute is the sample attribute whose groups fairness
	// compares. Default: "gender"
	ProtectedAttribute string `yaml:"protected_attribute"`
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() *Config {
	return &Config{ProtectedAttribute: "gender"}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.ProtectedAttribute == "" {
		return fmt.Errorf("protected_attribute cannot be empty")
	}
	return nil
}

// Orchestrator runs the governance pipeline inside one transaction per run,
// with at most one run in flight per model.
type Orchestrator struct {
	config   *Config
	store    *store.Store
	drift    *drift.Calculator
	fairness *fairness.Calculator
	risk     *risk.Aggregator
	machine  *lifecycle.Machine
	locks    *modelLocks
	recorder RunRecorder
	logger   *slog.Logger
}

// NewOrchestrator creates a new orchestrator. recorder may be nil.
func NewOrchestrator(config *Config, st *store.Store, dc *drift.Calculator, fc *fairness.Calculator, ra *risk.Aggregator, machine *lifecycle.Machine, recorder RunRecorder, logger *slog.Logger) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orchestrator config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		config:   config,
		store:    st,
		drift:    dc,
		fairness: fc,
		risk:     ra,
		machine:  machine,
		locks:    newModelLocks(),
		recorder: recorder,
		logger:   logger.With("component", "simulation.orchestrator"),
	}, nil
}

// Run executes a one-shot governance run for a model: verify it is in draft
// or staging, verify no samples exist yet, materialize both populations from
// gen, then compute drift, fairness, and risk, evaluate the active policy,
// and apply the verdict transition. Everything runs inside one transaction
// under the model's exclusive lock; any failure rolls back every write and
// leaves the model exactly as it was.
func (o *Orchestrator) Run(ctx context.Context, modelID, actor string, gen SampleGenerator) (*governance.Outcome, error) {
	release, err := o.locks.acquire(ctx, modelID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	var outcome *governance.Outcome

	err = o.store.WithTx(ctx, func(tx *store.Tx) error {
		now := time.Now().UTC()

		model, err := tx.GetModel(ctx, modelID)
		if err != nil {
			return o.failStep(modelID, "verify_model", err)
		}
		if !lifecycle.CanIngest(model.Status) {
			return o.failStep(modelID, "verify_model", &governance.InvalidStateError{
				ModelID: modelID,
				Status:  model.Status,
				Action:  "run_simulation",
			})
		}

		existing, err := tx.CountSamples(ctx, modelID)
		if err != nil {
			return o.failStep(modelID, "verify_empty", err)
		}
		if existing > 0 {
			return o.failStep(modelID, "verify_empty", &governance.AlreadyIngestedError{
				ModelID: modelID,
				Count:   existing,
			})
		}

		baseline, current, err := gen.Generate(modelID, now)
		if err != nil {
			return o.failStep(modelID, "generate_samples", err)
		}

		all := make([]governance.Sample, 0, len(baseline)+len(current))
		all = append(all, baseline...)
		all = append(all, current...)
		written, err := tx.AppendSamples(ctx, modelID, all, false)
		if err != nil {
			return o.failStep(modelID, "append_samples", err)
		}

		outcome, err = o.computeAndGovern(ctx, tx, model, baseline, current, actor, lifecycle.ActionSubmitForReview, now)
		if err != nil {
			return err
		}
		outcome.SamplesIngested = written
		return nil
	})

	return o.finish(outcome, started, err)
}

// Recompute refreshes a model's metrics from its stored samples without new
// ingestion, under the same per-model exclusivity and snapshot rules. It
// drives the recompute_verdict transition, which is how a deployed model
// degrades to at_risk or blocked.
func (o *Orchestrator) Recompute(ctx context.Context, modelID, actor string) (*governance.Outcome, error) {
	release, err := o.locks.acquire(ctx, modelID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	var outcome *governance.Outcome

	err = o.store.WithTx(ctx, func(tx *store.Tx) error {
		now := time.Now().UTC()

		model, err := tx.GetModel(ctx, modelID)
		if err != nil {
			return o.failStep(modelID, "verify_model", err)
		}

		baseline, err := tx.SamplesByBatch(ctx, modelID, governance.BatchBaseline)
		if err != nil {
			return o.failStep(modelID, "load_baseline", err)
		}
		current, err := tx.SamplesByBatch(ctx, modelID, governance.BatchCurrent)
		if err != nil {
			return o.failStep(modelID, "load_current", err)
		}

		outcome, err = o.computeAndGovern(ctx, tx, model, baseline, current, actor, lifecycle.ActionRecomputeVerdict, now)
		return err
	})

	return o.finish(outcome, started, err)
}

// computeAndGovern runs the decision half of a governance run inside tx:
// drift, fairness, risk, policy evaluation, and the lifecycle transition.
// An empty metric set is a hard IncompleteComputationError, never a silent
// zero.
func (o *Orchestrator) computeAndGovern(ctx context.Context, tx *store.Tx, model *governance.ModelRecord, baseline, current []governance.Sample, actor string, action lifecycle.Action, now time.Time) (*governance.Outcome, error) {
	modelID := model.ID

	activePolicy, err := tx.ActivePolicy(ctx)
	if err != nil {
		return nil, o.failStep(modelID, "load_policy", err)
	}

	driftRes, err := o.drift.Compute(modelID, baseline, current, now)
	if err != nil {
		return nil, o.failStep(modelID, "compute_drift", err)
	}
	if len(driftRes.Metrics) == 0 {
		return nil, o.failStep(modelID, "compute_drift", &governance.IncompleteComputationError{ModelID: modelID, Stage: "drift"})
	}

	fairRes, err := o.fairness.Compute(modelID, o.config.ProtectedAttribute, current, now)
	if err != nil {
		return nil, o.failStep(modelID, "compute_fairness", err)
	}

	score := o.risk.Score(driftRes.Component, fairRes.Component)

	if err := tx.InsertDriftMetrics(ctx, driftRes.Metrics); err != nil {
		return nil, o.failStep(modelID, "persist_drift", err)
	}
	if err := tx.InsertFairnessMetric(ctx, &fairRes.Metric); err != nil {
		return nil, o.failStep(modelID, "persist_fairness", err)
	}

	point := governance.RiskHistoryPoint{
		ModelID:           modelID,
		RiskScore:         score,
		DriftComponent:    driftRes.Component,
		FairnessComponent: fairRes.Component,
		PolicyID:          activePolicy.ID,
		ComputedAt:        now,
	}
	if err := tx.InsertRiskPoint(ctx, &point); err != nil {
		return nil, o.failStep(modelID, "persist_risk", err)
	}

	eval := policy.Evaluate(score, fairRes.Metric.DisparityScore, activePolicy)

	entry, err := o.machine.Apply(ctx, tx, model, action, lifecycle.Input{
		Actor:          actor,
		Verdict:        eval.Verdict,
		VerdictReason:  eval.Reason,
		PolicyID:       eval.PolicyID,
		RiskScore:      score,
		DisparityScore: fairRes.Metric.DisparityScore,
		DecidedAt:      now,
	})
	if err != nil {
		return nil, o.failStep(modelID, "apply_transition", err)
	}

	return &governance.Outcome{
		ModelID:           modelID,
		DriftMetrics:      driftRes.Metrics,
		FairnessMetric:    fairRes.Metric,
		RiskPoint:         point,
		Verdict:           eval.Verdict,
		VerdictReason:     eval.Reason,
		PolicyID:          eval.PolicyID,
		PriorStatus:       entry.PriorStatus,
		NewStatus:         entry.NewStatus,
		DriftComponent:    driftRes.Component,
		FairnessComponent: fairRes.Component,
		CompletedAt:       now,
	}, nil
}

// failStep logs the step at which a run failed and passes the error through
// unchanged so its type survives to the API layer.
func (o *Orchestrator) failStep(modelID, step string, err error) error {
	o.logger.Error("governance run step failed",
		"model_id", modelID,
		"step", step,
		"error", err,
	)
	return err
}

// finish records run telemetry and logs the result.
func (o *Orchestrator) finish(outcome *governance.Outcome, started time.Time, err error) (*governance.Outcome, error) {
	duration := time.Since(started)
	if err != nil {
		if o.recorder != nil {
			o.recorder.RecordRun("failed", "", duration)
			o.recorder.RecordRollback()
		}
		return nil, err
	}

	if o.recorder != nil {
		o.recorder.RecordRun("succeeded", outcome.Verdict, duration)
	}
	o.logger.Info("governance run completed",
		"model_id", outcome.ModelID,
		"samples_ingested", outcome.SamplesIngested,
		"risk_score", outcome.RiskPoint.RiskScore,
		"verdict", string(outcome.Verdict),
		"new_status", string(outcome.NewStatus),
		"duration", duration,
	)
	return outcome, nil
}
