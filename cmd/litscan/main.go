// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litscan CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litscan/internal/secrets"
	"github.com/pdiddy/litscan/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the litscan CLI.
var rootCmd = &cobra.Command{
	Use:   "litscan",
	Short: "Aggregate research paper metadata for literature reviews",
	Long: `litscan queries scholarly sources (arXiv, Semantic Scholar, IEEE Xplore,
ACM via CrossRef, Google Scholar) for papers matching a set of primary
keywords, merges duplicate records across sources, retrieves open-access
PDFs where possible, scans their text for secondary keywords, and writes a
tabular report for literature review work.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litscan.yaml or ~/.config/litscan/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litscan"))
		}
	}

	viper.SetEnvPrefix("LITSCAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPipelineConfig assembles the stage configuration from config file
// values, secrets, and defaults.
func loadPipelineConfig() types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.Sources.Timeout = viper.GetDuration("sources.timeout")
	cfg.Sources.UserAgent = viper.GetString("sources.user_agent")
	cfg.Sources.Enabled = viper.GetStringSlice("sources.enabled")
	cfg.Sources.MaxResults = viper.GetInt("sources.max_results")
	cfg.Sources.ScholarCommand = viper.GetString("sources.scholar_command")
	cfg.Sources.ScholarWorkDir = viper.GetString("sources.scholar_work_dir")
	cfg.Sources.SemanticScholarAPIKey = secretDefault("semantic-scholar-api-key",
		viper.GetString("sources.semantic_scholar_api_key"))
	cfg.Sources.IEEEAPIKey = secretDefault("ieee-api-key",
		viper.GetString("sources.ieee_api_key"))

	cfg.Dedupe.FuzzyThreshold = viper.GetFloat64("dedupe.fuzzy_threshold")

	cfg.PDF.Timeout = viper.GetDuration("pdf.timeout")
	cfg.PDF.UserAgent = viper.GetString("pdf.user_agent")
	cfg.PDF.CacheDir = viper.GetString("pdf.cache_dir")
	cfg.PDF.Concurrency = viper.GetInt("pdf.concurrency")
	cfg.PDF.HostRate = viper.GetFloat64("pdf.host_rate")
	cfg.PDF.SnippetWindow = viper.GetInt("pdf.snippet_window")
	cfg.PDF.MaxRetries = viper.GetInt("pdf.max_retries")
	cfg.PDF.OpenAlexEmail = secretDefault("openalex-email",
		viper.GetString("pdf.openalex_email"))

	cfg.Report.OutputPath = viper.GetString("report.output_path")
	cfg.Report.StorePath = viper.GetString("report.store_path")

	cfg.Defaults()
	return cfg
}

// httpTimeout picks a usable client timeout from the stage configs.
func httpTimeout(cfg types.PipelineConfig) time.Duration {
	if cfg.PDF.Timeout > cfg.Sources.Timeout {
		return cfg.PDF.Timeout
	}
	return cfg.Sources.Timeout
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
