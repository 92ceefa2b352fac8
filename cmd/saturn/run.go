package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/drift"
	"mercator-hq/saturn/pkg/fairness"
	"mercator-hq/saturn/pkg/lifecycle"
	"mercator-hq/saturn/pkg/policyfile"
	"mercator-hq/saturn/pkg/recompute"
	"mercator-hq/saturn/pkg/risk"
	"mercator-hq/saturn/pkg/server"
	"mercator-hq/saturn/pkg/server/handlers"
	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Saturn API server",
	Long: `Start the Saturn API server with the specified configuration.

The server exposes the governance API: model registration, simulation runs,
drift and fairness metrics, risk history, audit trails, deployment, and
policy administration.

Examples:
  # Start with defaults
  saturn run

  # Start with a custom config
  saturn run --config /etc/saturn/config.yaml

  # Override listen address
  saturn run --listen 0.0.0.0:8090

  # Validate config without starting the server
  saturn run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadRuntimeConfig loads the config file named by --config, or a fully
// defaulted configuration (plus environment overrides) when none is given.
func loadRuntimeConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
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
	machine := lifecycle.NewMachine(logger)

	var (
		engineMetrics  *metrics.EngineMetrics
		recorder       simulation.RunRecorder
		metricsHandler http.Handler
	)
	if cfg.Telemetry.Metrics.Enabled {
		engineMetrics = metrics.NewEngineMetrics(cfg.Telemetry.Metrics)
		recorder = engineMetrics
		metricsHandler = engineMetrics.Handler()
	}

	orch, err := simulation.NewOrchestrator(&cfg.Simulation.Orchestrator,
		st, driftCalc, fairCalc, riskAgg, machine, recorder, logger)
	if err != nil {
		return err
	}

	gen, err := simulation.NewSyntheticGenerator(&cfg.Simulation.Generator)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Policy sourcing: activate from file at startup, optionally watching
	// for changes. Without a file, policies come in through the API.
	if cfg.Policy.File != "" {
		watcher := policyfile.NewWatcher(cfg.Policy.File, st, logger)
		if cfg.Policy.Watch {
			if err := watcher.Watch(ctx); err != nil {
				return fmt.Errorf("failed to watch policy file: %w", err)
			}
		} else {
			if err := watcher.ActivateOnce(ctx); err != nil {
				return fmt.Errorf("failed to activate policy file: %w", err)
			}
		}
	}

	scheduler := recompute.NewScheduler(&cfg.Recompute, st, orch)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	api := handlers.NewAPI(st, orch, gen, metricsHandler, logger)
	srv := server.NewServer(&cfg.Server, api.Routes(), logger)

	fmt.Printf("Saturn v%s\n", Version)
	fmt.Printf("✓ Store: %s (%s)\n", cfg.Storage.Path, cfg.Storage.Driver)
	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}
