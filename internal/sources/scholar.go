// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/litscan/pkg/types"
)

// scholarResultFile is the CSV the proxy tool writes into its work
// directory.
const scholarResultFile = "result.csv"

// ScholarAdapter queries Google Scholar through an external proxy tool.
// Scholar has no public API; the tool handles querying and drops a
// result.csv manifest into the work directory. Rows that carry a DOI are
// enriched with full CrossRef metadata.
type ScholarAdapter struct {
	Client *http.Client
}

// Name returns the source identifier.
func (a *ScholarAdapter) Name() string { return types.SourceGoogleScholar }

// Fetch runs the proxy tool and converts its CSV output to raw hits.
func (a *ScholarAdapter) Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error) {
	if query.IsEmpty() {
		return nil, unavailable("empty Scholar query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	if err := os.MkdirAll(cfg.ScholarWorkDir, 0o755); err != nil {
		return nil, unavailable("creating work directory: %v", err)
	}

	cmd := exec.CommandContext(ctx, cfg.ScholarCommand,
		"--query="+strings.Join(query.PrimaryKeywords, " "),
		fmt.Sprintf("--results=%d", maxResults),
		"--out-dir="+cfg.ScholarWorkDir,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return nil, unavailable("scholar proxy tool: %v", err)
	}

	rows, err := readScholarCSV(filepath.Join(cfg.ScholarWorkDir, scholarResultFile))
	if err != nil {
		return nil, err
	}

	var hits []RawHit
	for _, row := range rows {
		doi := firstNonEmpty(row["doi"], row["DOI"])
		if doi != "" {
			if enriched, err := LookupDOI(ctx, a.Client, doi, cfg.UserAgent); err == nil && enriched.Title != "" {
				hits = append(hits, enriched)
				continue
			}
		}

		// Fall back to the CSV row when enrichment is impossible.
		h := RawHit{
			Title:    firstNonEmpty(row["title"], row["name"]),
			Venue:    firstNonEmpty(row["journal"], row["venue"]),
			DOI:      doi,
			SourceID: firstNonEmpty(doi, row["id"]),
			Abstract: row["abstract"],
			PDFURL:   row["pdf_url"],
			YearRaw:  row["year"],
			Updated:  row["year"],
		}
		for _, au := range strings.Split(row["authors"], ";") {
			if au = strings.TrimSpace(au); au != "" {
				h.Authors = append(h.Authors, au)
			}
		}
		if h.Title == "" {
			continue
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// readScholarCSV parses the proxy tool's manifest into header-keyed rows.
func readScholarCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, unavailable("reading scholar results: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, malformed("scholar results header: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed("scholar results row: %v", err)
		}
		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(field)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
