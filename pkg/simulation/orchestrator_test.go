package simulation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/governance"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/store"
)

type testEnv struct {
	store *store.Store
	orch  *Orchestrator
	gen   *SyntheticGenerator
}

func setupTestEnv(t *testing.T, withPolicy bool) *testEnv {
	t.Helper()

	st, err := store.Open(&store.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		Driver:      "sqlite",
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if withPolicy {
		err := st.ActivatePolicy(context.Background(), &governance.Policy{
			ID: "pol-1", Name: "default", MaxRisk: 80,
			ApprovalThreshold: 60, MaxDisparity: 0.10,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("ActivatePolicy: %v", err)
		}
	}

	driftCalc, err := drift.NewCalculator(nil, nil)
	if err != nil {
		t.Fatalf("drift.NewCalculator: %v", err)
	}
	fairCalc, err := fairness.NewCalculator(nil, nil)
	if err != nil {
		t.Fatalf("fairness.NewCalculator: %v", err)
	}
	riskAgg, err := risk.NewAggregator(nil)
	if err != nil {
		t.Fatalf("risk.NewAggregator: %v", err)
	}

	orch, err := NewOrchestrator(nil, st, driftCalc, fairCalc, riskAgg,
		lifecycle.NewMachine(nil), nil, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	gen, err := NewSyntheticGenerator(&GeneratorConfig{
		BaselineCount: 150,
		CurrentCount:  150,
		Seed:          42,
	})
	if err != nil {
		t.Fatalf("NewSyntheticGenerator: %v", err)
	}

	return &testEnv{store: st, orch: orch, gen: gen}
}

func createDraftModel(t *testing.T, st *store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.CreateModel(context.Background(), &governance.ModelRecord{
		ID: id, Name: "fraud-detector", Version: "1",
		Status: governance.StatusDraft, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateModel: %v", err)
	}
}

// failingGenerator always errors.
type failingGenerator struct{}

func (failingGenerator) Generate(string, time.Time) ([]governance.Sample, []governance.Sample, error) {
	return nil, nil, errors.New("generation failed")
}

// singleGroupGenerator produces populations with only one protected group so
// drift succeeds but fairness cannot be computed.
type singleGroupGenerator struct {
	inner *SyntheticGenerator
}

func (g singleGroupGenerator) Generate(modelID string, now time.Time) ([]governance.Sample, []governance.Sample, error) {
	baseline, current, err := g.inner.Generate(modelID, now)
	if err != nil {
		return nil, nil, err
	}
	for i := range current {
		current[i].ProtectedValue = "Male"
	}
	return baseline, current, nil
}

func TestOrchestrator_Run(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	outcome, err := env.orch.Run(ctx, "m1", "tester", env.gen)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.SamplesIngested != 300 {
		t.Errorf("expected 300 samples ingested, got %d", outcome.SamplesIngested)
	}
	if len(outcome.DriftMetrics) == 0 {
		t.Error("expected drift metrics")
	}
	// The synthetic scenario is heavily drifted and biased, so the verdict
	// can never be approved.
	if outcome.Verdict == governance.VerdictApproved {
		t.Errorf("expected at_risk or blocked verdict, got %s", outcome.Verdict)
	}
	if outcome.PolicyID != "pol-1" {
		t.Errorf("expected policy pol-1 recorded, got %s", outcome.PolicyID)
	}
	if outcome.PriorStatus != governance.StatusDraft {
		t.Errorf("expected prior status draft, got %s", outcome.PriorStatus)
	}

	model, err := env.store.GetModel(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModel: %v", err)
	}
	if model.Status != outcome.NewStatus {
		t.Errorf("stored status %s does not match outcome %s", model.Status, outcome.NewStatus)
	}
	if model.LastVerdict != outcome.Verdict {
		t.Errorf("verdict cache %s does not match outcome %s", model.LastVerdict, outcome.Verdict)
	}

	points, err := env.store.ListRiskHistory(ctx, "m1")
	if err != nil {
		t.Fatalf("ListRiskHistory: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("expected one risk point, got %d", len(points))
	}

	entries, err := env.store.ListAuditEntries(ctx, "m1")
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one audit entry, got %d", len(entries))
	}
}

func TestOrchestrator_Run_AtMostOnce(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	if _, err := env.orch.Run(ctx, "m1", "tester", env.gen); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	before, err := env.store.CountSamples(ctx, "m1")
	if err != nil {
		t.Fatalf("CountSamples: %v", err)
	}

	_, err = env.orch.Run(ctx, "m1", "tester", env.gen)
	// The first run moves the model out of draft, so the second is refused
	// on lifecycle state before the sample check is reached.
	var invalidState *governance.InvalidStateError
	var alreadyDone *governance.AlreadyIngestedError
	if !errors.As(err, &invalidState) && !errors.As(err, &alreadyDone) {
		t.Fatalf("expected InvalidStateError or AlreadyIngestedError, got %v", err)
	}

	after, err := env.store.CountSamples(ctx, "m1")
	if err != nil {
		t.Fatalf("CountSamples: %v", err)
	}
	if after != before {
		t.Errorf("refused run changed sample count: %d -> %d", before, after)
	}
}

func TestOrchestrator_Run_AlreadyIngested(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	// Pre-load samples while leaving the model in draft.
	err := env.store.WithTx(ctx, func(tx *store.Tx) error {
		baseline, current, err := env.gen.Generate("m1", time.Now().UTC())
		if err != nil {
			return err
		}
		_, err = tx.AppendSamples(ctx, "m1", append(baseline, current...), false)
		return err
	})
	if err != nil {
		t.Fatalf("preload: %v", err)
	}

	_, err = env.orch.Run(ctx, "m1", "tester", env.gen)
	var alreadyDone *governance.AlreadyIngestedError
	if !errors.As(err, &alreadyDone) {
		t.Fatalf("expected AlreadyIngestedError, got %v", err)
	}
}

func TestOrchestrator_Run_InvalidState(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	now := time.Now().UTC()
	err := env.store.CreateModel(ctx, &governance.ModelRecord{
		ID: "m1", Name: "fraud-detector", Version: "1",
		Status: governance.StatusDeployed, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateModel: %v", err)
	}

	_, err = env.orch.Run(ctx, "m1", "tester", env.gen)
	var invalidState *governance.InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestOrchestrator_Run_ModelNotFound(t *testing.T) {
	env := setupTestEnv(t, true)

	_, err := env.orch.Run(context.Background(), "missing", "tester", env.gen)
	if !errors.Is(err, governance.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestOrchestrator_Run_NoActivePolicy(t *testing.T) {
	env := setupTestEnv(t, false)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	_, err := env.orch.Run(ctx, "m1", "tester", env.gen)
	if !errors.Is(err, governance.ErrNoActivePolicy) {
		t.Fatalf("expected ErrNoActivePolicy, got %v", err)
	}

	// The failed run must leave no trace.
	count, err := env.store.CountSamples(ctx, "m1")
	if err != nil {
		t.Fatalf("CountSamples: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to discard samples, got %d", count)
	}
}

func TestOrchestrator_Run_RollbackOnGeneratorFailure(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	if _, err := env.orch.Run(ctx, "m1", "tester", failingGenerator{}); err == nil {
		t.Fatal("expected generator failure")
	}

	count, _ := env.store.CountSamples(ctx, "m1")
	if count != 0 {
		t.Errorf("expected no samples after rollback, got %d", count)
	}
	model, err := env.store.GetModel(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModel: %v", err)
	}
	if model.Status != governance.StatusDraft {
		t.Errorf("failed run must not change status, got %s", model.Status)
	}
}

func TestOrchestrator_Run_RollbackOnFairnessFailure(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	_, err := env.orch.Run(ctx, "m1", "tester", singleGroupGenerator{inner: env.gen})
	var insufficient *governance.InsufficientGroupDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientGroupDataError, got %v", err)
	}

	// Samples written earlier in the same transaction roll back with it.
	if count, _ := env.store.CountSamples(ctx, "m1"); count != 0 {
		t.Errorf("expected no samples after rollback, got %d", count)
	}
	if count, _ := env.store.CountDriftMetrics(ctx, "m1"); count != 0 {
		t.Errorf("expected no drift metrics after rollback, got %d", count)
	}
	if count, _ := env.store.CountRiskPoints(ctx, "m1"); count != 0 {
		t.Errorf("expected no risk points after rollback, got %d", count)
	}
}

func TestOrchestrator_Recompute(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	if _, err := env.orch.Run(ctx, "m1", "tester", env.gen); err != nil {
		t.Fatalf("Run: %v", err)
	}

	outcome, err := env.orch.Recompute(ctx, "m1", "scheduler")
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if outcome.SamplesIngested != 0 {
		t.Errorf("recompute must not ingest, got %d", outcome.SamplesIngested)
	}

	points, err := env.store.ListRiskHistory(ctx, "m1")
	if err != nil {
		t.Fatalf("ListRiskHistory: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("expected two risk points after recompute, got %d", len(points))
	}
}

func TestOrchestrator_Deploy(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	outcome, err := env.orch.Run(ctx, "m1", "tester", env.gen)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	switch outcome.NewStatus {
	case governance.StatusAtRisk:
		if _, err := env.orch.Deploy(ctx, "m1", "deployer", false, ""); err == nil {
			t.Fatal("expected at_risk deploy without override to fail")
		}
		entry, err := env.orch.Deploy(ctx, "m1", "deployer", true, "risk accepted by governance board")
		if err != nil {
			t.Fatalf("Deploy with override: %v", err)
		}
		if entry.NewStatus != governance.StatusDeployed || !entry.OverrideUsed {
			t.Errorf("unexpected deploy entry: %+v", entry)
		}
	case governance.StatusBlocked:
		_, err := env.orch.Deploy(ctx, "m1", "deployer", true, "risk accepted")
		var blocked *governance.BlockedError
		if !errors.As(err, &blocked) {
			t.Fatalf("expected BlockedError, got %v", err)
		}
	default:
		t.Fatalf("unexpected status after drifted run: %s", outcome.NewStatus)
	}
}

func TestOrchestrator_Archive(t *testing.T) {
	env := setupTestEnv(t, true)
	ctx := context.Background()
	createDraftModel(t, env.store, "m1")

	entry, err := env.orch.Archive(ctx, "m1", "owner")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if entry.NewStatus != governance.StatusArchived {
		t.Errorf("expected archived, got %s", entry.NewStatus)
	}
}

func TestModelLocks_ContextCancelled(t *testing.T) {
	locks := newModelLocks()

	release, err := locks.acquire(context.Background(), "m1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := locks.acquire(ctx, "m1"); err == nil {
		t.Fatal("expected second acquire to time out while lock is held")
	}

	release()
	release2, err := locks.acquire(context.Background(), "m1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}
