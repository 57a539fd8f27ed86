package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spendwise/internal/adapters"
	"spendwise/internal/cli"
)

var flagImportUser int64

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import expenses from a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().Int64Var(&flagImportUser, "user", 0, "User ID that owns the imported expenses")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	svc := cli.NewServices(e.repo, adapters.NewLogNotifier(e.logger.Logger))
	res, err := svc.Imports.Import(cmd.Context(), flagImportUser, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	return printJSON(res)
}
