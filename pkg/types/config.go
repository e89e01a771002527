// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Source names accepted by the pipeline.
const (
	SourceArxiv           = "arxiv"
	SourceSemanticScholar = "semantic_scholar"
	SourceIEEE            = "ieee"
	SourceACM             = "acm"
	SourceGoogleScholar   = "google_scholar"
)

// AllSources lists every implemented source adapter name.
var AllSources = []string{
	SourceArxiv,
	SourceSemanticScholar,
	SourceIEEE,
	SourceACM,
	SourceGoogleScholar,
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-call HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litscan/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the source adapter stage.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled names the sources to query. Empty means all.
	Enabled []string `json:"enabled" yaml:"enabled"`

	// MaxResults caps the number of hits requested per source (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SemanticScholarAPIKey raises Semantic Scholar rate limits when set.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// IEEEAPIKey authenticates against the IEEE Xplore API. The IEEE
	// adapter reports itself unavailable when the key is empty.
	IEEEAPIKey string `json:"ieee_api_key,omitempty" yaml:"ieee_api_key,omitempty"`

	// ScholarCommand is the external proxy tool invoked for Google Scholar
	// queries (default "paperbot"). The tool writes result.csv into
	// ScholarWorkDir.
	ScholarCommand string `json:"scholar_command" yaml:"scholar_command"`

	// ScholarWorkDir is where the proxy tool drops its output (default
	// "downloads").
	ScholarWorkDir string `json:"scholar_work_dir" yaml:"scholar_work_dir"`
}

// DedupeConfig holds settings for identity resolution.
type DedupeConfig struct {
	// FuzzyThreshold is the minimum token-set Jaccard similarity between
	// normalized titles for two records to be considered the same
	// publication when no DOI or exact title match decides it
	// (default 0.85).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`
}

// PDFConfig holds settings for the PDF acquisition and scanning stage.
type PDFConfig struct {
	HTTPConfig `yaml:",inline"`

	// CacheDir is the directory for downloaded PDFs, keyed by paper ID
	// (default "pdfcache").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Concurrency bounds simultaneous downloads (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// HostRate limits requests per second against a single host
	// (default 2).
	HostRate float64 `json:"host_rate" yaml:"host_rate"`

	// SnippetWindow is the number of characters kept on each side of a
	// keyword's first occurrence in snippet excerpts (default 40).
	SnippetWindow int `json:"snippet_window" yaml:"snippet_window"`

	// MaxRetries bounds download retries on rate-limited responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// OpenAlexEmail identifies the caller to OpenAlex for its polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`
}

// ReportConfig holds settings for the report sink.
type ReportConfig struct {
	// OutputPath is the CSV file the scan command writes (default
	// "papers.csv").
	OutputPath string `json:"output_path" yaml:"output_path"`

	// StorePath is the SQLite database for persisted runs (default
	// "litscan.db").
	StorePath string `json:"store_path" yaml:"store_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Dedupe  DedupeConfig  `json:"dedupe" yaml:"dedupe"`
	PDF     PDFConfig     `json:"pdf" yaml:"pdf"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}

// Defaults fills zero-valued fields with working defaults.
func (c *PipelineConfig) Defaults() {
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 30 * time.Second
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "litscan/0.1"
	}
	if c.Sources.MaxResults <= 0 {
		c.Sources.MaxResults = 20
	}
	if c.Sources.ScholarCommand == "" {
		c.Sources.ScholarCommand = "paperbot"
	}
	if c.Sources.ScholarWorkDir == "" {
		c.Sources.ScholarWorkDir = "downloads"
	}
	if c.Dedupe.FuzzyThreshold == 0 {
		c.Dedupe.FuzzyThreshold = 0.85
	}
	if c.PDF.Timeout == 0 {
		c.PDF.Timeout = 60 * time.Second
	}
	if c.PDF.UserAgent == "" {
		c.PDF.UserAgent = c.Sources.UserAgent
	}
	if c.PDF.CacheDir == "" {
		c.PDF.CacheDir = "pdfcache"
	}
	if c.PDF.Concurrency <= 0 {
		c.PDF.Concurrency = 4
	}
	if c.PDF.HostRate <= 0 {
		c.PDF.HostRate = 2
	}
	if c.PDF.SnippetWindow <= 0 {
		c.PDF.SnippetWindow = 40
	}
	if c.Report.OutputPath == "" {
		c.Report.OutputPath = "papers.csv"
	}
	if c.Report.StorePath == "" {
		c.Report.StorePath = "litscan.db"
	}
}
