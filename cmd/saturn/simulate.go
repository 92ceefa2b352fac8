package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
	"mercator-hq/saturn/pkg/telemetry/logging"
)

var simulateFlags struct {
	modelID string
	actor   string
	seed    int64
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a one-shot governance simulation for a model",
	Long: `Run the full governance pipeline against a model directly on the
configured database: generate synthetic baseline and current populations,
compute drift and fairness metrics, aggregate the risk score, evaluate the
active policy, and apply the verdict transition.

Simulation runs at most once per model; a model with existing samples is
refused.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFlags.modelID, "model", "m", "", "model ID (required)")
	simulateCmd.Flags().StringVar(&simulateFlags.actor, "actor", "cli", "actor recorded on the audit entry")
	simulateCmd.Flags().Int64Var(&simulateFlags.seed, "seed", 0, "override generator seed")
	_ = simulateCmd.MarkFlagRequired("model")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}
	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	st, err := store.Open(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	driftCalc, err := drift.NewCalculator(&cfg.Drift, logger)
	if err != nil {
		return err
	}
	fairCalc, err := fairness.NewCalculator(&cfg.Fairness, logger)
	if err != nil {
		return err
	}
	riskAgg, err := risk.NewAggregator(&cfg.Risk)
	if err != nil {
		return err
	}

	orch, err := simulation.NewOrchestrator(&cfg.Simulation.Orchestrator,
		st, driftCalc, fairCalc, riskAgg, lifecycle.NewMachine(logger), nil, logger)
	if err != nil {
		return err
	}

	genCfg := cfg.Simulation.Generator
	if simulateFlags.seed != 0 {
		genCfg.Seed = simulateFlags.seed
	}
	gen, err := simulation.NewSyntheticGenerator(&genCfg)
	if err != nil {
		return err
	}

	outcome, err := orch.Run(context.Background(), simulateFlags.modelID, simulateFlags.actor, gen)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}
