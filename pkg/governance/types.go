package governance

import (
	"fmt"
	"time"
)

// BatchTag identifies which population a sample belongs to.
type BatchTag string

const (
	// BatchBaseline marks samples belonging to the reference population.
	BatchBaseline BatchTag = "baseline"

	// BatchCurrent marks samples belonging to the production population
	// compared against the baseline.
	BatchCurrent BatchTag = "current"
)

// Status is the lifecycle status of a governed model. Only the lifecycle
// state machine writes it.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusStaging  Status = "staging"
	StatusApproved Status = "approved"
	StatusAtRisk   Status = "at_risk"
	StatusBlocked  Status = "blocked"
	StatusDeployed Status = "deployed"
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusStaging, StatusApproved, StatusAtRisk,
		StatusBlocked, StatusDeployed, StatusArchived:
		return true
	}
	return false
}

// Verdict is the outcome of evaluating a risk score and disparity against
// the active governance policy.
type Verdict string

const (
	// VerdictApproved means all policy checks passed.
	VerdictApproved Verdict = "approved"

	// VerdictAtRisk means the model needs human review before deployment.
	VerdictAtRisk Verdict = "at_risk"

	// VerdictBlocked means the risk ceiling was exceeded. There is no
	// override path out of a blocked verdict.
	VerdictBlocked Verdict = "blocked"
)

// Sample is a single prediction record. Samples are immutable once written,
// owned by the model they belong to, and created only through the ingestion
// orchestrator.
type Sample struct {
	ModelID string `json:"model_id"`

	// Timestamp is when the prediction was made.
	Timestamp time.Time `json:"timestamp"`

	// Features maps feature name to its value. Numeric features carry a
	// float; categorical features carry a string.
	Features map[string]FeatureValue `json:"features"`

	// PredictedOutcome is the model's raw prediction, typically a
	// probability in [0,1].
	PredictedOutcome float64 `json:"predicted_outcome"`

	// ProtectedValue is the sample's value for the protected attribute
	// under fairness monitoring (e.g. "Male", "Female").
	ProtectedValue string `json:"protected_value"`

	// Batch tags the sample as baseline or current.
	Batch BatchTag `json:"batch"`
}

// FeatureValue holds a numeric or categorical feature value. Exactly one of
// the two carries meaning, selected by Numeric.
type FeatureValue struct {
	Numeric  bool    `json:"numeric"`
	Value    float64 `json:"value,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Num returns a numeric feature value.
func Num(v float64) FeatureValue { return FeatureValue{Numeric: true, Value: v} }

// Cat returns a categorical feature value.
func Cat(s string) FeatureValue { return FeatureValue{Category: s} }

// DriftMetric is the distribution-shift result for a single feature in a
// single computation run. Recomputation supersedes prior rows rather than
// merging with them.
type DriftMetric struct {
	ModelID      string    `json:"model_id"`
	FeatureName  string    `json:"feature_name"`
	PSI          float64   `json:"psi"`
	KSStatistic  float64   `json:"ks_statistic"`
	PSIThreshold float64   `json:"psi_threshold"`
	KSThreshold  float64   `json:"ks_threshold"`
	Flagged      bool      `json:"flagged"`
	ComputedAt   time.Time `json:"computed_at"`
}

// FairnessMetric is the outcome-disparity result for one protected attribute
// in a single computation run.
type FairnessMetric struct {
	ModelID            string             `json:"model_id"`
	ProtectedAttribute string             `json:"protected_attribute"`
	GroupRates         map[string]float64 `json:"group_rates"`
	GroupARate         float64            `json:"group_a_rate"`
	GroupBRate         float64            `json:"group_b_rate"`
	DisparityScore     float64            `json:"disparity_score"`
	Flagged            bool               `json:"flagged"`
	ComputedAt         time.Time          `json:"computed_at"`
}

// RiskHistoryPoint is one append-only point in a model's risk time series.
// Invariant: RiskScore = round2(DriftComponent*wd + FairnessComponent*wf)
// with wd+wf = 1.
type RiskHistoryPoint struct {
	ModelID           string    `json:"model_id"`
	RiskScore         float64   `json:"risk_score"`
	DriftComponent    float64   `json:"drift_component"`
	FairnessComponent float64   `json:"fairness_component"`
	PolicyID          string    `json:"policy_id"`
	ComputedAt        time.Time `json:"computed_at"`
}

// Policy is an administrator-defined set of governance thresholds. Exactly
// one policy is active at a time; verdicts record which policy produced them
// and are never rewritten when the active policy changes.
type Policy struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	MaxRisk           float64   `json:"max_risk"`
	ApprovalThreshold float64   `json:"approval_threshold"`
	MaxDisparity      float64   `json:"max_disparity"`
	Active            bool      `json:"active"`
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
}

// Validate checks the policy thresholds for invalid values.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name cannot be empty")
	}
	if p.MaxRisk <= 0 || p.MaxRisk > 100 {
		return fmt.Errorf("max_risk must be in (0,100], got %g", p.MaxRisk)
	}
	if p.ApprovalThreshold <= 0 || p.ApprovalThreshold >= p.MaxRisk {
		return fmt.Errorf("approval_threshold must be in (0, max_risk), got %g", p.ApprovalThreshold)
	}
	if p.MaxDisparity <= 0 || p.MaxDisparity > 1 {
		return fmt.Errorf("max_disparity must be in (0,1], got %g", p.MaxDisparity)
	}
	return nil
}

// ModelRecord is the registry entry for a governed model. The verdict fields
// are a cache of the last evaluation; the authoritative history lives in the
// risk_history and audit_entries tables.
type ModelRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Status        Status    `json:"status"`
	LastVerdict   Verdict   `json:"last_verdict,omitempty"`
	LastRiskScore float64   `json:"last_risk_score"`
	LastDisparity float64   `json:"last_disparity"`
	LastPolicyID  string    `json:"last_policy_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AuditEntry records a single lifecycle transition. Entries are written once,
// in the same transaction as the transition, and never modified.
type AuditEntry struct {
	ID             string    `json:"id"`
	ModelID        string    `json:"model_id"`
	Actor          string    `json:"actor"`
	Action         string    `json:"action"`
	PriorStatus    Status    `json:"prior_status"`
	NewStatus      Status    `json:"new_status"`
	OverrideUsed   bool      `json:"override_used"`
	OverrideReason string    `json:"override_reason,omitempty"`
	RiskScore      float64   `json:"risk_score"`
	DisparityScore float64   `json:"disparity_score"`
	DecidedAt      time.Time `json:"decided_at"`
}

// Outcome summarizes a completed governance run: what was computed, what the
// policy said, and where the state machine left the model.
type Outcome struct {
	ModelID           string           `json:"model_id"`
	SamplesIngested   int              `json:"samples_ingested"`
	DriftMetrics      []DriftMetric    `json:"drift_metrics"`
	FairnessMetric    FairnessMetric   `json:"fairness_metric"`
	RiskPoint         RiskHistoryPoint `json:"risk_point"`
	Verdict           Verdict          `json:"verdict"`
	VerdictReason     string           `json:"verdict_reason"`
	PolicyID          string           `json:"policy_id"`
	PriorStatus       Status           `json:"prior_status"`
	NewStatus         Status           `json:"new_status"`
	DriftComponent    float64          `json:"drift_component"`
	FairnessComponent float64          `json:"fairness_component"`
	CompletedAt       time.Time        `json:"completed_at"`
}
