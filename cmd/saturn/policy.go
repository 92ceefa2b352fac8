package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/policyfile"
	"mercator-hq/saturn/pkg/store"
	"mercator-hq/saturn/pkg/telemetry/logging"
)

var policyFlags struct {
	file string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage governance policies",
}

var policyLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a policy file without activating it",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := policyfile.Load(policyFlags.file)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Policy %q valid (max_risk=%.2f approval_threshold=%.2f max_disparity=%.2f)\n",
			p.Name, p.MaxRisk, p.ApprovalThreshold, p.MaxDisparity)
		return nil
	},
}

var policyActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate the policy in a YAML file",
	Long: `Load a policy file, validate it, and activate it as the current
governance policy. The previously active policy is deactivated in the same
transaction; verdicts it produced keep their original policy reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		watcher := policyfile.NewWatcher(policyFlags.file, st, logger)
		if err := watcher.ActivateOnce(context.Background()); err != nil {
			return err
		}
		fmt.Println("✓ Policy activated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyLintCmd)
	policyCmd.AddCommand(policyActivateCmd)

	policyCmd.PersistentFlags().StringVarP(&policyFlags.file, "file", "f", "policy.yaml", "policy file path")
}
