// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscan/internal/report"
	"github.com/pdiddy/litscan/internal/store"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List papers accumulated across scans",
	Long: `Papers prints every record in the local scan database, newest first.
With --csv the full report schema is written to stdout instead of the
summary table.`,
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().Bool("csv", false, "emit the full CSV schema instead of a table")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	asCSV, _ := cmd.Flags().GetBool("csv")

	cfg := loadPipelineConfig()
	s, err := store.Open(cfg.Report.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.ListPapers(cmd.Context())
	if err != nil {
		return err
	}

	if asCSV {
		return report.WriteCSV(papers, os.Stdout)
	}
	report.FormatTable(papers, 0, os.Stdout)
	return nil
}
