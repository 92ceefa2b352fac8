package simulation

import (
	"context"
	"time"

	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/store"
)

// Deploy promotes a reviewed model to production. Approved models deploy
// unconditionally; at_risk models require an explicit override with a
// justification; blocked models are refused outright. The transition and its
// audit entry commit atomically under the model's exclusive lock.
func (o *Orchestrator) Deploy(ctx context.Context, modelID, actor string, override bool, justification string) (*governance.AuditEntry, error) {
	return o.transition(ctx, modelID, lifecycle.ActionDeploy, func(model *governance.ModelRecord, now time.Time) lifecycle.Input {
		return lifecycle.Input{
			Actor:          actor,
			Verdict:        model.LastVerdict,
			PolicyID:       model.LastPolicyID,
			RiskScore:      model.LastRiskScore,
			DisparityScore: model.LastDisparity,
			Override:       override,
			OverrideReason: justification,
			DecidedAt:      now,
		}
	})
}

// Archive retires a model that is not currently deployed.
func (o *Orchestrator) Archive(ctx context.Context, modelID, actor string) (*governance.AuditEntry, error) {
	return o.transition(ctx, modelID, lifecycle.ActionArchive, func(model *governance.ModelRecord, now time.Time) lifecycle.Input {
		return lifecycle.Input{
			Actor:          actor,
			Verdict:        model.LastVerdict,
			PolicyID:       model.LastPolicyID,
			RiskScore:      model.LastRiskScore,
			DisparityScore: model.LastDisparity,
			DecidedAt:      now,
		}
	})
}

// transition applies a single lifecycle action inside one transaction.
func (o *Orchestrator) transition(ctx context.Context, modelID string, action lifecycle.Action, input func(*governance.ModelRecord, time.Time) lifecycle.Input) (*governance.AuditEntry, error) {
	release, err := o.locks.acquire(ctx, modelID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entry *governance.AuditEntry
	err = o.store.WithTx(ctx, func(tx *store.Tx) error {
		now := time.Now().UTC()

		model, err := tx.GetModel(ctx, modelID)
		if err != nil {
			return o.failStep(modelID, "verify_model", err)
		}

		entry, err = o.machine.Apply(ctx, tx, model, action, input(model, now))
		if err != nil {
			return o.failStep(modelID, "apply_transition", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
