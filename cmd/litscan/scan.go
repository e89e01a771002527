// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscan/internal/pipeline"
	"github.com/pdiddy/litscan/internal/report"
	"github.com/pdiddy/litscan/internal/sources"
	"github.com/pdiddy/litscan/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a full literature scan",
	Long: `Scan queries every enabled source for the primary keywords, merges
duplicate records, acquires open-access PDFs, scans them for secondary
keywords, and writes the report CSV. Merged records are also upserted into
the local scan database.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSlice("primary", nil, "primary keywords driving the source queries (required)")
	scanCmd.Flags().StringSlice("secondary", nil, "secondary keywords counted in retrieved full texts")
	scanCmd.Flags().StringSlice("sources", nil, "sources to query (default: all)")
	scanCmd.Flags().Int("from", 0, "earliest publication year")
	scanCmd.Flags().Int("to", 0, "latest publication year")
	scanCmd.Flags().Int("max-results", 0, "maximum hits requested per source (default 20)")
	scanCmd.Flags().String("output", "", "report CSV path (default papers.csv)")
	scanCmd.Flags().String("run-file", "", "also save the full run as YAML to this path")
	scanCmd.Flags().Bool("no-store", false, "skip writing to the scan database")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	primary, _ := cmd.Flags().GetStringSlice("primary")
	if len(primary) == 0 {
		return fmt.Errorf("provide at least one primary keyword via --primary")
	}
	secondary, _ := cmd.Flags().GetStringSlice("secondary")
	enabled, _ := cmd.Flags().GetStringSlice("sources")
	yearFrom, _ := cmd.Flags().GetInt("from")
	yearTo, _ := cmd.Flags().GetInt("to")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	output, _ := cmd.Flags().GetString("output")
	runFile, _ := cmd.Flags().GetString("run-file")
	noStore, _ := cmd.Flags().GetBool("no-store")

	cfg := loadPipelineConfig()
	if len(enabled) > 0 {
		cfg.Sources.Enabled = enabled
	}
	if output != "" {
		cfg.Report.OutputPath = output
	}

	client := &http.Client{Timeout: httpTimeout(cfg)}

	adapters, err := sources.Enabled(cfg.Sources, client)
	if err != nil {
		return err
	}

	out, err := pipeline.Run(cmd.Context(), pipeline.Input{
		PrimaryKeywords:   primary,
		SecondaryKeywords: secondary,
		YearFrom:          yearFrom,
		YearTo:            yearTo,
		MaxResults:        maxResults,
	}, adapters, cfg, client, os.Stderr)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.Report.OutputPath)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := report.WriteCSV(out.Papers, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d papers)\n", cfg.Report.OutputPath, len(out.Papers))

	if runFile != "" {
		query := report.RunQuery{
			PrimaryKeywords:   primary,
			SecondaryKeywords: secondary,
			YearFrom:          yearFrom,
			YearTo:            yearTo,
		}
		if err := report.WriteRunFile(runFile, query, out.Papers, out.DupsRemoved, out.SourceErrors); err != nil {
			return err
		}
	}

	if !noStore {
		s, err := store.Open(cfg.Report.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()
		meta := store.RunMeta{
			PrimaryKeywords:   primary,
			SecondaryKeywords: secondary,
			YearFrom:          yearFrom,
			YearTo:            yearTo,
			Total:             len(out.Papers),
			DupsRemoved:       out.DupsRemoved,
		}
		if err := s.SaveRun(cmd.Context(), meta, out.Papers); err != nil {
			return err
		}
	}

	report.FormatTable(out.Papers, out.DupsRemoved, os.Stdout)

	if len(out.SourceErrors) > 0 {
		fmt.Fprintf(os.Stderr, "%d source(s) failed:\n", len(out.SourceErrors))
		for _, e := range out.SourceErrors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}
	return nil
}
