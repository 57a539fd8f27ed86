package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/services"
)

var flagMonth string

var monthlyEmailCmd = &cobra.Command{
	Use:   "monthly-email",
	Short: "Send the monthly report emails for a month",
	Long:  "Send the monthly report emails for --month (YYYY-MM). Defaults to the previous calendar month.",
	RunE:  runMonthlyEmail,
}

func init() {
	monthlyEmailCmd.Flags().StringVar(&flagMonth, "month", "", "Month to report, YYYY-MM")
	rootCmd.AddCommand(monthlyEmailCmd)
}

func runMonthlyEmail(cmd *cobra.Command, _ []string) error {
	year, month, err := parseMonth(flagMonth, time.Now().UTC())
	if err != nil {
		return err
	}

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

	svc := cli.NewServices(e.repo, n.Notifier)
	job := services.NewMonthlyEmailJob(e.repo, svc.Reports, n.Notifier, services.MonthlyEmailJobConfig{
		Schedule: e.cfg.MonthlyEmailSchedule,
		Throttle: e.cfg.MonthlyEmailThrottle,
	})
	res, err := job.RunForMonth(cmd.Context(), year, month)
	if err != nil {
		return err
	}
	return printJSON(res)
}

// parseMonth reads YYYY-MM, or the month before now when s is empty.
func parseMonth(s string, now time.Time) (int, int, error) {
	if s == "" {
		year, month := core.PreviousMonth(now)
		return year, month, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --month %q, want YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}
