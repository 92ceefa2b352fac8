package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/store"
)

// Action is a state machine input.
type Action string

const (
	// ActionSubmitForReview moves a draft or staging model to the status
	// named by the policy verdict.
	ActionSubmitForReview Action = "submit_for_review"

	// ActionDeploy promotes a reviewed model to production.
	ActionDeploy Action = "deploy"

	// ActionArchive retires a model that is not currently deployed.
	ActionArchive Action = "archive"

	// ActionRecomputeVerdict refreshes a model's verdict from newly
	// computed metrics. A deployed model degrades to at_risk or blocked
	// when the verdict worsens and stays deployed when it remains
	// approved.
	ActionRecomputeVerdict Action = "recompute_verdict"
)

// target describes how a table entry resolves its destination status.
type target int

const (
	// toVerdict resolves to the status named by the policy verdict.
	toVerdict target = iota
	// toDeployed resolves to deployed (override rules apply).
	toDeployed
	// toArchived resolves to archived.
	toArchived
	// toVerdictOrStay degrades on a worse verdict but keeps the current
	// status on an approved one.
	toVerdictOrStay
)

type transitionKey struct {
	from   governance.Status
	action Action
}

// transitionTable is the closed set of legal transitions. Any
// (status, action) pair not present here is an InvalidStateError.
var transitionTable = map[transitionKey]target{
	{governance.StatusDraft, ActionSubmitForReview}:   toVerdict,
	{governance.StatusStaging, ActionSubmitForReview}: toVerdict,

	{governance.StatusApproved, ActionDeploy}: toDeployed,
	{governance.StatusAtRisk, ActionDeploy}:   toDeployed,

	{governance.StatusDraft, ActionArchive}:    toArchived,
	{governance.StatusStaging, ActionArchive}:  toArchived,
	{governance.StatusApproved, ActionArchive}: toArchived,
	{governance.StatusAtRisk, ActionArchive}:   toArchived,
	{governance.StatusBlocked, ActionArchive}:  toArchived,

	{governance.StatusApproved, ActionRecomputeVerdict}: toVerdict,
	{governance.StatusAtRisk, ActionRecomputeVerdict}:   toVerdict,
	{governance.StatusBlocked, ActionRecomputeVerdict}:  toVerdict,
	{governance.StatusDeployed, ActionRecomputeVerdict}: toVerdictOrStay,
}

// Input carries everything a transition may need: who asked, what the last
// evaluation said, and override details for deployment.
type Input struct {
	Actor          string
	Verdict        governance.Verdict
	VerdictReason  string
	PolicyID       string
	RiskScore      float64
	DisparityScore float64
	Override       bool
	OverrideReason string
	DecidedAt      time.Time
}

// Machine applies governance transitions to model records.
type Machine struct {
	logger *slog.Logger
}

// NewMachine creates a new governance state machine.
func NewMachine(logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{logger: logger.With("component", "lifecycle.machine")}
}

// CanIngest reports whether ingestion or simulation is permitted for a model
// in the given status. Only draft and staging models accept new samples;
// everything else would corrupt a live metric history.
func CanIngest(s governance.Status) bool {
	return s == governance.StatusDraft || s == governance.StatusStaging
}

// Apply executes one transition inside the caller's transaction: it resolves
// the destination status from the transition table, updates the model record,
// and writes exactly one audit entry. The returned entry reflects what was
// persisted.
func (m *Machine) Apply(ctx context.Context, tx *store.Tx, model *governance.ModelRecord, action Action, in Input) (*governance.AuditEntry, error) {
	next, err := m.resolve(model, action, in)
	if err != nil {
		return nil, err
	}

	prior := model.Status
	model.Status = next
	if action == ActionSubmitForReview || action == ActionRecomputeVerdict {
		model.LastVerdict = in.Verdict
		model.LastRiskScore = in.RiskScore
		model.LastDisparity = in.DisparityScore
		model.LastPolicyID = in.PolicyID
	}
	model.UpdatedAt = in.DecidedAt

	if err := tx.UpdateModelState(ctx, model); err != nil {
		return nil, err
	}

	// An override counts only where it gated the transition: deploying an
	// at_risk model. A spurious override flag on an already approved deploy
	// is ignored, keeping override_reason present iff override_used.
	overrideGated := action == ActionDeploy && prior == governance.StatusAtRisk

	entry := &governance.AuditEntry{
		ID:             uuid.NewString(),
		ModelID:        model.ID,
		Actor:          in.Actor,
		Action:         string(action),
		PriorStatus:    prior,
		NewStatus:      next,
		OverrideUsed:   overrideGated,
		OverrideReason: in.OverrideReason,
		RiskScore:      in.RiskScore,
		DisparityScore: in.DisparityScore,
		DecidedAt:      in.DecidedAt,
	}
	if !entry.OverrideUsed {
		entry.OverrideReason = ""
	}
	if err := tx.InsertAuditEntry(ctx, entry); err != nil {
		return nil, err
	}

	m.logger.Info("lifecycle transition applied",
		"model_id", model.ID,
		"action", string(action),
		"prior_status", string(prior),
		"new_status", string(next),
		"actor", in.Actor,
		"override_used", entry.OverrideUsed,
	)

	return entry, nil
}

// resolve maps (status, action, input) to the destination status, enforcing
// the deploy override rules.
func (m *Machine) resolve(model *governance.ModelRecord, action Action, in Input) (governance.Status, error) {
	// Blocked deployments get their own error so callers can tell
	// "forbidden" apart from "not in the table".
	if action == ActionDeploy && model.Status == governance.StatusBlocked {
		return "", &governance.BlockedError{ModelID: model.ID, Reason: "model is blocked by policy, no override path exists"}
	}

	tgt, ok := transitionTable[transitionKey{model.Status, action}]
	if !ok {
		return "", &governance.InvalidStateError{
			ModelID: model.ID,
			Status:  model.Status,
			Action:  string(action),
		}
	}

	switch tgt {
	case toDeployed:
		if model.Status == governance.StatusAtRisk {
			if !in.Override || in.OverrideReason == "" {
				return "", &governance.OverrideRequiredError{ModelID: model.ID}
			}
		}
		return governance.StatusDeployed, nil

	case toArchived:
		return governance.StatusArchived, nil

	case toVerdict:
		return verdictStatus(in.Verdict), nil

	case toVerdictOrStay:
		if in.Verdict == governance.VerdictApproved {
			return model.Status, nil
		}
		return verdictStatus(in.Verdict), nil
	}

	// Unreachable: every table entry is one of the targets above.
	return "", &governance.InvalidStateError{ModelID: model.ID, Status: model.Status, Action: string(action)}
}

func verdictStatus(v governance.Verdict) governance.Status {
	switch v {
	case governance.VerdictBlocked:
		return governance.StatusBlocked
	case governance.VerdictAtRisk:
		return governance.StatusAtRisk
	default:
		return governance.StatusApproved
	}
}
