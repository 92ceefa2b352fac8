package policyfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/store"
)

func writePolicyFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const validPolicy = `
name: production
max_risk: 80
approval_threshold: 60
max_disparity: 0.10
`

func TestLoad(t *testing.T) {
	path := writePolicyFile(t, t.TempDir(), validPolicy)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "production" || p.MaxRisk != 80 || p.ApprovalThreshold != 60 || p.MaxDisparity != 0.10 {
		t.Errorf("unexpected policy: %+v", p)
	}
	if p.ID == "" {
		t.Error("expected a generated policy ID")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "max_risk: 80\napproval_threshold: 60\nmax_disparity: 0.1\n"},
		{"risk out of range", "name: p\nmax_risk: 150\napproval_threshold: 60\nmax_disparity: 0.1\n"},
		{"approval above ceiling", "name: p\nmax_risk: 50\napproval_threshold: 60\nmax_disparity: 0.1\n"},
		{"disparity out of range", "name: p\nmax_risk: 80\napproval_threshold: 60\nmax_disparity: 1.5\n"},
		{"not yaml", ":\n  - {{\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePolicyFile(t, t.TempDir(), tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected load error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcher_ActivateOnce(t *testing.T) {
	st, err := store.Open(&store.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		Driver:      "sqlite",
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	path := writePolicyFile(t, t.TempDir(), validPolicy)
	w := NewWatcher(path, st, nil)

	if err := w.ActivateOnce(context.Background()); err != nil {
		t.Fatalf("ActivateOnce: %v", err)
	}

	active, err := st.ActivePolicy(context.Background())
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}
	if active.Name != "production" || active.Version != 1 {
		t.Errorf("unexpected active policy: %+v", active)
	}

	// Re-activating the same file produces a new version.
	if err := w.ActivateOnce(context.Background()); err != nil {
		t.Fatalf("second ActivateOnce: %v", err)
	}
	active, err = st.ActivePolicy(context.Background())
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}
	if active.Version != 2 {
		t.Errorf("expected version 2 after reactivation, got %d", active.Version)
	}
}
