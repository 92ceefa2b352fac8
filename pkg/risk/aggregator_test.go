package risk

import "testing"

func TestAggregator_Score(t *testing.T) {
	a, err := NewAggregator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}

	tests := []struct {
		name     string
		drift    float64
		fairness float64
		want     float64
	}{
		{"weighted blend", 50, 25, 40},
		{"all zero", 0, 0, 0},
		{"drift only", 100, 0, 60},
		{"fairness only", 0, 100, 40},
		{"both maxed", 100, 100, 100},
		{"rounded to two decimals", 33.333, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Score(tt.drift, tt.fairness); got != tt.want {
				t.Errorf("Score(%g, %g) = %g, want %g", tt.drift, tt.fairness, got, tt.want)
			}
		})
	}
}

func TestAggregator_Score_Clamped(t *testing.T) {
	a, err := NewAggregator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	if got := a.Score(150, 150); got != 100 {
		t.Errorf("expected score clamped to 100, got %g", got)
	}
	if got := a.Score(-10, -10); got != 0 {
		t.Errorf("expected score clamped to 0, got %g", got)
	}
}

func TestAggregator_Score_MonotonicInEachComponent(t *testing.T) {
	a, err := NewAggregator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}

	// Raising one component with the other held fixed never lowers the
	// score.
	pairs := []struct {
		name              string
		drift1, fairness1 float64
		drift2, fairness2 float64
	}{
		{"drift raised", 50, 25, 60, 25},
		{"fairness raised", 50, 25, 50, 35},
		{"drift raised at zero fairness", 0, 0, 10, 0},
		{"fairness raised near clamp", 90, 80, 90, 95},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			lo := a.Score(tt.drift1, tt.fairness1)
			hi := a.Score(tt.drift2, tt.fairness2)
			if hi < lo {
				t.Errorf("Score(%g, %g) = %g dropped below Score(%g, %g) = %g",
					tt.drift2, tt.fairness2, hi, tt.drift1, tt.fairness1, lo)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	bad := &Config{DriftWeight: 0.5, FairnessWeight: 0.6}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for weights not summing to 1")
	}

	negative := &Config{DriftWeight: 1.5, FairnessWeight: -0.5}
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}

	if _, err := NewAggregator(&Config{DriftWeight: 0.7, FairnessWeight: 0.3}); err != nil {
		t.Errorf("expected 0.7/0.3 weights to validate: %v", err)
	}
}
