// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the scan stages together: fetch from every
// enabled source, normalize, merge duplicates, acquire and scan PDFs, and
// flatten the survivors into report rows. Merging starts only after every
// adapter has returned or timed out, so a slow source can delay a run but
// never splits a paper's identity.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/litscan/internal/dedupe"
	"github.com/pdiddy/litscan/internal/normalize"
	"github.com/pdiddy/litscan/internal/pdfscan"
	"github.com/pdiddy/litscan/internal/report"
	"github.com/pdiddy/litscan/internal/sources"
	"github.com/pdiddy/litscan/pkg/types"
)

// Input holds the scan parameters.
type Input struct {
	PrimaryKeywords   []string
	SecondaryKeywords []string
	YearFrom          int
	YearTo            int
	MaxResults        int
}

// Output holds everything a completed scan produced.
type Output struct {
	Papers       []types.Paper
	Rows         [][]string
	SourceErrors []string
	DupsRemoved  int
}

// Run executes a full scan over the given adapters. Individual source
// failures are reported in Output.SourceErrors and do not abort the run;
// an empty query or an adapterless run does.
func Run(ctx context.Context, in Input, adapters []sources.Adapter, cfg types.PipelineConfig, client *http.Client, w io.Writer) (*Output, error) {
	query := sources.Query{
		PrimaryKeywords: in.PrimaryKeywords,
		YearFrom:        in.YearFrom,
		YearTo:          in.YearTo,
		MaxResults:      in.MaxResults,
	}
	if query.IsEmpty() {
		return nil, fmt.Errorf("no primary keywords given")
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}

	allHits, sourceErrors := sources.FetchAll(ctx, adapters, query, cfg.Sources, w)

	var papers []types.Paper
	for _, sh := range allHits {
		for _, hit := range sh.Hits {
			papers = append(papers, normalize.Paper(hit, sh.Source, in.PrimaryKeywords))
		}
	}

	merged, dupsRemoved := dedupe.Merge(papers, cfg.Dedupe)

	fetcher := pdfscan.NewFetcher(client, cfg.PDF)
	fetcher.ProcessAll(ctx, merged, in.SecondaryKeywords, w)

	rows := make([][]string, len(merged))
	for i, p := range merged {
		rows[i] = report.Row(p)
	}

	return &Output{
		Papers:       merged,
		Rows:         rows,
		SourceErrors: sourceErrors,
		DupsRemoved:  dupsRemoved,
	}, nil
}
