package main

import (
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/services"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one budget alert sweep cycle",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.notifier(cmd.Context())
	if err != nil {
		return err
	}
	defer n.Cleanup()

	sweeper := services.NewBudgetAlertSweeper(e.repo, n.Notifier, services.BudgetAlertSweeperConfig{
		Interval:         e.cfg.AlertSweepInterval,
		ThresholdPercent: e.cfg.AlertThresholdPercent,
	})
	res, err := sweeper.SweepOnce(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	return printJSON(res)
}
