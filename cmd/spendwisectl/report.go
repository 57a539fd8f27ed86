package main

import (
	"github.com/spf13/cobra"

	"spendwise/internal/adapters"
	"spendwise/internal/cli"
)

var (
	flagUser     int64
	flagYear     int
	flagMonthNum int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print analytics reports as JSON",
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly totals and category lines",
	RunE:  runReportMonthly,
}

var reportYearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Month-by-month trends and top categories",
	RunE:  runReportYearly,
}

func init() {
	reportCmd.PersistentFlags().Int64Var(&flagUser, "user", 0, "User ID")
	reportCmd.PersistentFlags().IntVar(&flagYear, "year", 0, "Year")
	reportMonthlyCmd.Flags().IntVar(&flagMonthNum, "month", 0, "Month (1-12)")
	_ = reportCmd.MarkPersistentFlagRequired("user")
	_ = reportCmd.MarkPersistentFlagRequired("year")
	_ = reportMonthlyCmd.MarkFlagRequired("month")

	reportCmd.AddCommand(reportMonthlyCmd, reportYearlyCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportMonthly(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	svc := cli.NewServices(e.repo, adapters.NewLogNotifier(e.logger.Logger))
	rep, err := svc.Analytics.MonthlyReport(cmd.Context(), flagUser, flagYear, flagMonthNum)
	if err != nil {
		return err
	}
	return printJSON(rep)
}

func runReportYearly(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	svc := cli.NewServices(e.repo, adapters.NewLogNotifier(e.logger.Logger))
	trends, err := svc.Analytics.YearlyTrends(cmd.Context(), flagUser, flagYear)
	if err != nil {
		return err
	}
	return printJSON(trends)
}
