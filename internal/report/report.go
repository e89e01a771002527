// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders merged paper records into the tabular outputs a
// literature review works from: a fixed-schema CSV file and a console
// table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litscan/pkg/types"
)

// Header is the CSV column order. Consumers key on these names; the order
// never changes between runs.
var Header = []string{
	"paper_id",
	"title",
	"authors",
	"venue",
	"year",
	"doi",
	"source",
	"abstract",
	"abstract_hit",
	"primary_keywords",
	"pdf_status",
	"pdf_url",
	"secondary_keywords_present",
	"secondary_keyword_counts",
	"paper_type",
	"last_updated",
}

// Row flattens a paper record into CSV cells, in Header order.
func Row(p types.Paper) []string {
	year := ""
	if p.Year != types.YearUnknown {
		year = strconv.Itoa(p.Year)
	}
	updated := ""
	if !p.LastUpdated.IsZero() {
		updated = p.LastUpdated.UTC().Format(time.RFC3339)
	}
	return []string{
		p.ID,
		p.Title,
		strings.Join(p.Authors, "; "),
		p.Venue,
		year,
		p.DOI,
		strings.Join(p.Sources, "; "),
		p.Abstract,
		strconv.FormatBool(p.AbstractHit),
		strings.Join(p.PrimaryKeywords, "; "),
		string(p.PDFStatus),
		p.PDFURL,
		strings.Join(p.SecondaryPresent, "; "),
		formatCounts(p.SecondaryCounts),
		string(p.Type),
		updated,
	}
}

// formatCounts renders keyword counts as "kw1=n1;kw2=n2", sorted by
// keyword so output is stable.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ";")
}

// WriteCSV writes the full report to w, header first.
func WriteCSV(papers []types.Paper, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range papers {
		if err := cw.Write(Row(p)); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// FormatTable writes a human-readable summary table to w.
func FormatTable(papers []types.Paper, dupsRemoved int, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-4s  %-11s  %-4s  %s\n",
		"#", "Title", "Year", "PDF", "Hit", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, p := range papers {
		title := p.Title
		if r := []rune(title); len(r) > 60 {
			title = string(r[:57]) + "..."
		}
		year := ""
		if p.Year != types.YearUnknown {
			year = strconv.Itoa(p.Year)
		}
		hit := ""
		if p.AbstractHit {
			hit = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-4s  %-11s  %-4s  %s\n",
			i+1, title, year, p.PDFStatus, hit, strings.Join(p.Sources, ","))
	}

	fmt.Fprintf(w, "\n%d papers", len(papers))
	if dupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", dupsRemoved)
	}
	fmt.Fprintln(w)
}
