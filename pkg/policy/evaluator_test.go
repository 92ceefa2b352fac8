package policy

import (
	"testing"

	"mercator-hq/saturn/pkg/governance"
)

func testPolicy() *governance.Policy {
	return &governance.Policy{
		ID:                "pol-1",
		Name:              "default",
		MaxRisk:           80,
		ApprovalThreshold: 60,
		MaxDisparity:      0.10,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		risk      float64
		disparity float64
		want      governance.Verdict
	}{
		{"clean model approved", 40, 0.03, governance.VerdictApproved},
		{"risk above approval threshold", 65, 0.02, governance.VerdictAtRisk},
		{"disparity above maximum", 40, 0.25, governance.VerdictAtRisk},
		{"risk above hard ceiling", 85, 0.02, governance.VerdictBlocked},
		{"blocked wins over disparity", 85, 0.25, governance.VerdictBlocked},
		{"thresholds are exclusive bounds", 60, 0.10, governance.VerdictApproved},
		{"ceiling is an exclusive bound", 80, 0.02, governance.VerdictAtRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(tt.risk, tt.disparity, testPolicy())
			if eval.Verdict != tt.want {
				t.Errorf("Evaluate(%g, %g) = %s, want %s", tt.risk, tt.disparity, eval.Verdict, tt.want)
			}
			if eval.PolicyID != "pol-1" {
				t.Errorf("expected policy ID recorded, got %q", eval.PolicyID)
			}
			if eval.Reason == "" {
				t.Error("expected a non-empty reason")
			}
		})
	}
}
