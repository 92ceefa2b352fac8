//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/server"
	"mercator-hq/saturn/pkg/server/handlers"
	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
)

// TestEngineIntegration exercises the full stack end to end: HTTP request
// through middleware and handlers into the orchestrator and the store.
func TestEngineIntegration(t *testing.T) {
	st, err := store.Open(&store.Config{
		Path:        filepath.Join(t.TempDir(), "integration.db"),
		Driver:      "sqlite",
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	driftCalc, err := drift.NewCalculator(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create drift calculator: %v", err)
	}
	fairCalc, err := fairness.NewCalculator(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create fairness calculator: %v", err)
	}
	riskAgg, err := risk.NewAggregator(nil)
	if err != nil {
		t.Fatalf("Failed to create risk aggregator: %v", err)
	}
	orch, err := simulation.NewOrchestrator(nil, st, driftCalc, fairCalc,
		riskAgg, lifecycle.NewMachine(nil), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}
	gen, err := simulation.NewSyntheticGenerator(&simulation.GeneratorConfig{
		BaselineCount: 150,
		CurrentCount:  150,
		Seed:          42,
	})
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	cfg := config.Default()
	api := handlers.NewAPI(st, orch, gen, nil, nil)
	srv := server.NewServer(&cfg.Server, api.Routes(), nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	postJSON := func(t *testing.T, path string, body any) *http.Response {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("Failed to marshal request: %v", err)
			}
		}
		resp, err := http.Post(ts.URL+path, "application/json", &buf)
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		return resp
	}
	decode := func(t *testing.T, resp *http.Response, v any) {
		t.Helper()
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}

	var modelID string

	t.Run("activate policy", func(t *testing.T) {
		resp := postJSON(t, "/api/v1/policies", map[string]any{
			"name":               "integration",
			"max_risk":           80,
			"approval_threshold": 60,
			"max_disparity":      0.10,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		var p governance.Policy
		decode(t, resp, &p)
		if !p.Active || p.Version != 1 {
			t.Errorf("Unexpected policy: %+v", p)
		}
	})

	t.Run("register model", func(t *testing.T) {
		resp := postJSON(t, "/api/v1/models", map[string]string{
			"name":    "fraud-detector",
			"version": "2",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		var m governance.ModelRecord
		decode(t, resp, &m)
		if m.Status != governance.StatusDraft {
			t.Errorf("Expected draft, got %s", m.Status)
		}
		modelID = m.ID
	})

	var outcome governance.Outcome

	t.Run("governance run", func(t *testing.T) {
		resp := postJSON(t, "/api/v1/models/"+modelID+"/simulate", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		decode(t, resp, &outcome)
		if outcome.SamplesIngested != 300 {
			t.Errorf("Expected 300 samples, got %d", outcome.SamplesIngested)
		}
		if outcome.PolicyID == "" {
			t.Error("Expected verdict to record its policy")
		}
		if outcome.Verdict == governance.VerdictApproved {
			t.Errorf("Drifted synthetic data must not approve, got %s", outcome.Verdict)
		}
	})

	t.Run("deploy", func(t *testing.T) {
		switch outcome.NewStatus {
		case governance.StatusAtRisk:
			resp := postJSON(t, "/api/v1/models/"+modelID+"/deploy", nil)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("Expected 422 without override, got %d", resp.StatusCode)
			}
			resp.Body.Close()

			resp = postJSON(t, "/api/v1/models/"+modelID+"/deploy", map[string]any{
				"override":      true,
				"justification": "accepted for limited rollout",
			})
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected 200 with override, got %d", resp.StatusCode)
			}
			var entry governance.AuditEntry
			decode(t, resp, &entry)
			if entry.NewStatus != governance.StatusDeployed {
				t.Errorf("Expected deployed, got %s", entry.NewStatus)
			}
		case governance.StatusBlocked:
			resp := postJSON(t, "/api/v1/models/"+modelID+"/deploy", map[string]any{
				"override":      true,
				"justification": "attempted override",
			})
			if resp.StatusCode != http.StatusForbidden {
				t.Fatalf("Expected 403 for blocked model, got %d", resp.StatusCode)
			}
			resp.Body.Close()
		default:
			t.Fatalf("Unexpected post-run status: %s", outcome.NewStatus)
		}
	})

	t.Run("audit trail", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/models/" + modelID + "/audit")
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var entries []governance.AuditEntry
		decode(t, resp, &entries)
		if len(entries) == 0 {
			t.Error("Expected at least one audit entry")
		}
		for _, e := range entries {
			if e.ModelID != modelID {
				t.Errorf("Audit entry for wrong model: %+v", e)
			}
		}
	})

	t.Run("request id propagation", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(),
			http.MethodGet, ts.URL+"/healthz", nil)
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}
		req.Header.Set("X-Request-ID", "integration-test-1")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Failed to send request: %v", err)
		}
		defer resp.Body.Close()
		if got := resp.Header.Get("X-Request-ID"); got != "integration-test-1" {
			t.Errorf("Expected request id echoed, got %q", got)
		}
	})
}
