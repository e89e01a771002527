// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litscan/pkg/types"
)

// RunFile is the on-disk record of a scan: the keywords that drove it, the
// stage summary, and the merged records. A saved run can be re-rendered
// without touching the source APIs again.
type RunFile struct {
	Query   RunQuery      `yaml:"query"`
	Summary RunSummary    `yaml:"summary"`
	Papers  []types.Paper `yaml:"papers"`
}

// RunQuery stores the scan parameters in a serializable form.
type RunQuery struct {
	PrimaryKeywords   []string `yaml:"primary_keywords"`
	SecondaryKeywords []string `yaml:"secondary_keywords,omitempty"`
	YearFrom          int      `yaml:"year_from,omitempty"`
	YearTo            int      `yaml:"year_to,omitempty"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	SourceErrors      []string  `yaml:"source_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteRunFile saves a completed scan to a YAML file.
func WriteRunFile(path string, query RunQuery, papers []types.Paper, dupsRemoved int, sourceErrors []string) error {
	rf := RunFile{
		Query: query,
		Summary: RunSummary{
			Total:             len(papers),
			DuplicatesRemoved: dupsRemoved,
			SourceErrors:      sourceErrors,
			Timestamp:         time.Now(),
		},
		Papers: papers,
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run file: %w", err)
	}
	return nil
}

// ReadRunFile loads a previously saved scan.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
