package policy

import (
	"fmt"

	"mercator-hq/saturn/pkg/governance"
)

// Evaluation is the result of applying a policy to a risk and disparity
// score. It records the producing policy so past verdicts stay auditable
// after the active policy changes.
type Evaluation struct {
	Verdict  governance.Verdict
	Reason   string
	PolicyID string
}

// Evaluate maps a risk score and disparity score, under the given policy's
// thresholds, to a governance verdict:
//
//   - blocked when risk_score exceeds the policy's hard ceiling (never
//     overridable downstream),
//   - otherwise at_risk when risk_score exceeds the approval threshold or
//     disparity exceeds the allowed maximum,
//   - otherwise approved.
//
// When several conditions hold at once the stricter verdict wins. The
// function is pure: no reads, no writes, no hidden defaults.
func Evaluate(riskScore, disparityScore float64, p *governance.Policy) Evaluation {
	switch {
	case riskScore > p.MaxRisk:
		return Evaluation{
			Verdict:  governance.VerdictBlocked,
			Reason:   fmt.Sprintf("risk score %.2f exceeds hard ceiling %.2f", riskScore, p.MaxRisk),
			PolicyID: p.ID,
		}
	case disparityScore > p.MaxDisparity:
		return Evaluation{
			Verdict:  governance.VerdictAtRisk,
			Reason:   fmt.Sprintf("disparity %.4f exceeds allowed maximum %.4f", disparityScore, p.MaxDisparity),
			PolicyID: p.ID,
		}
	case riskScore > p.ApprovalThreshold:
		return Evaluation{
			Verdict:  governance.VerdictAtRisk,
			Reason:   fmt.Sprintf("risk score %.2f exceeds approval threshold %.2f", riskScore, p.ApprovalThreshold),
			PolicyID: p.ID,
		}
	default:
		return Evaluation{
			Verdict:  governance.VerdictApproved,
			Reason:   "all governance checks passed",
			PolicyID: p.ID,
		}
	}
}
