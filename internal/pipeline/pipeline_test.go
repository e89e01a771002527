package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pdiddy/litscan/internal/report"
	"github.com/pdiddy/litscan/internal/sources"
	"github.com/pdiddy/litscan/pkg/types"
)

type stubAdapter struct {
	name string
	hits []sources.RawHit
	err  error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(_ context.Context, _ sources.Query, _ types.SourcesConfig) ([]sources.RawHit, error) {
	return s.hits, s.err
}

// blockedAdapter never returns before its context expires.
type blockedAdapter struct{ name string }

func (b *blockedAdapter) Name() string { return b.name }

func (b *blockedAdapter) Fetch(ctx context.Context, _ sources.Query, _ types.SourcesConfig) ([]sources.RawHit, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testPipelineCfg() types.PipelineConfig {
	var cfg types.PipelineConfig
	cfg.Defaults()
	cfg.Sources.Timeout = 200 * time.Millisecond
	return cfg
}

// notFoundTransport answers every request with 404 so resolver lookups
// fail deterministically without touching the network.
type notFoundTransport struct{}

func (notFoundTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       http.NoBody,
		Header:     make(http.Header),
		Request:    r,
	}, nil
}

func offlineClient() *http.Client {
	return &http.Client{Transport: notFoundTransport{}}
}

func TestRunMergesAcrossSources(t *testing.T) {
	a := &stubAdapter{name: types.SourceIEEE, hits: []sources.RawHit{
		{Title: "A Study of Things", DOI: "10.1/X", YearRaw: "2021", Abstract: "We study things carefully."},
	}}
	b := &stubAdapter{name: types.SourceACM, hits: []sources.RawHit{
		{Title: "A Study of Things", DOI: "10.1/x", YearRaw: "2021"},
		{Title: "An Unrelated Paper", YearRaw: "2020"},
	}}

	cfg := testPipelineCfg()
	cfg.PDF.CacheDir = t.TempDir()

	var buf bytes.Buffer
	out, err := Run(context.Background(),
		Input{PrimaryKeywords: []string{"things"}, SecondaryKeywords: []string{"method"}},
		[]sources.Adapter{a, b}, cfg, offlineClient(), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(out.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(out.Papers))
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if len(out.SourceErrors) != 0 {
		t.Errorf("SourceErrors = %v", out.SourceErrors)
	}

	var merged *types.Paper
	for i := range out.Papers {
		if out.Papers[i].DOI == "10.1/x" {
			merged = &out.Papers[i]
		}
	}
	if merged == nil {
		t.Fatal("merged DOI record missing")
	}
	if len(merged.Sources) != 2 {
		t.Errorf("Sources = %v, want both contributors", merged.Sources)
	}
	if !merged.AbstractHit {
		t.Error("AbstractHit should survive the merge")
	}

	// No source offered a PDF link and the records carry unregistered DOIs,
	// so acquisition cannot succeed; the records still appear in the rows.
	if len(out.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(out.Rows))
	}
	for _, row := range out.Rows {
		if len(row) != len(report.Header) {
			t.Errorf("row width = %d, want %d", len(row), len(report.Header))
		}
	}
}

func TestRunContinuesPastTimedOutSource(t *testing.T) {
	fast := &stubAdapter{name: types.SourceArxiv, hits: []sources.RawHit{
		{Title: "Prompt Paper", YearRaw: "2022"},
	}}
	stuck := &blockedAdapter{name: types.SourceIEEE}

	var buf bytes.Buffer
	out, err := Run(context.Background(),
		Input{PrimaryKeywords: []string{"x"}},
		[]sources.Adapter{fast, stuck}, testPipelineCfg(), offlineClient(), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(out.Papers) != 1 || out.Papers[0].Title != "Prompt Paper" {
		t.Fatalf("Papers = %+v, want the fast source's paper", out.Papers)
	}
	if len(out.SourceErrors) != 1 {
		t.Errorf("SourceErrors = %v, want one timeout", out.SourceErrors)
	}
}

func TestRunFailedSourceStillReportsOthers(t *testing.T) {
	working := &stubAdapter{name: types.SourceArxiv, hits: []sources.RawHit{
		{Title: "Working Paper", YearRaw: "2021"},
	}}
	broken := &stubAdapter{name: types.SourceACM, err: sources.ErrSourceUnavailable}

	var buf bytes.Buffer
	out, err := Run(context.Background(),
		Input{PrimaryKeywords: []string{"x"}},
		[]sources.Adapter{working, broken}, testPipelineCfg(), offlineClient(), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Papers) != 1 {
		t.Fatalf("len(Papers) = %d, want 1", len(out.Papers))
	}
	if len(out.SourceErrors) != 1 {
		t.Errorf("SourceErrors = %v", out.SourceErrors)
	}
}

func TestRunEmptyQuery(t *testing.T) {
	_, err := Run(context.Background(), Input{},
		[]sources.Adapter{&stubAdapter{name: "a"}}, testPipelineCfg(), offlineClient(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestRunNoAdapters(t *testing.T) {
	_, err := Run(context.Background(), Input{PrimaryKeywords: []string{"x"}},
		nil, testPipelineCfg(), offlineClient(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error with no adapters")
	}
}
