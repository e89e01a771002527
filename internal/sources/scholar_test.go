package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const sampleScholarCSV = `title,authors,year,journal,doi,pdf_url
Robot Learning Survey,Alice Smith; Bob Jones,2022,Annual Review of Robotics,,https://example.org/survey.pdf
,orphan row without a title,2020,,,
Federated Optimization,Carol White,2021,,10.9999/fed.opt,
`

func writeScholarResults(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, scholarResultFile), []byte(sampleScholarCSV), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadScholarCSV(t *testing.T) {
	dir := t.TempDir()
	writeScholarResults(t, dir)

	rows, err := readScholarCSV(filepath.Join(dir, scholarResultFile))
	if err != nil {
		t.Fatalf("readScholarCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0]["title"] != "Robot Learning Survey" {
		t.Errorf("title = %q", rows[0]["title"])
	}
	if rows[2]["doi"] != "10.9999/fed.opt" {
		t.Errorf("doi = %q", rows[2]["doi"])
	}
}

func TestReadScholarCSVMissingFile(t *testing.T) {
	_, err := readScholarCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScholarAdapterFetch(t *testing.T) {
	dir := t.TempDir()
	writeScholarResults(t, dir)

	// CrossRef enrichment 404s, so DOI rows fall back to their CSV fields.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	old := crossrefAPIBase
	crossrefAPIBase = ts.URL
	defer func() { crossrefAPIBase = old }()

	cfg := testCfg()
	cfg.ScholarCommand = "true" // results are pre-staged; the tool is a no-op here
	cfg.ScholarWorkDir = dir

	a := &ScholarAdapter{Client: ts.Client()}
	hits, err := a.Fetch(context.Background(), Query{PrimaryKeywords: []string{"robot learning"}}, cfg)
	if err != nil {
		t.Fatalf("ScholarAdapter.Fetch: %v", err)
	}

	// The titleless row is dropped.
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Title != "Robot Learning Survey" {
		t.Errorf("Title = %q", hits[0].Title)
	}
	if len(hits[0].Authors) != 2 || hits[0].Authors[1] != "Bob Jones" {
		t.Errorf("Authors = %v", hits[0].Authors)
	}
	if hits[0].PDFURL != "https://example.org/survey.pdf" {
		t.Errorf("PDFURL = %q", hits[0].PDFURL)
	}
	if hits[1].DOI != "10.9999/fed.opt" {
		t.Errorf("DOI = %q", hits[1].DOI)
	}
}

func TestScholarAdapterCommandFailure(t *testing.T) {
	cfg := testCfg()
	cfg.ScholarCommand = "false"
	cfg.ScholarWorkDir = t.TempDir()

	a := &ScholarAdapter{Client: http.DefaultClient}
	_, err := a.Fetch(context.Background(), Query{PrimaryKeywords: []string{"x"}}, cfg)
	if err == nil {
		t.Fatal("expected error when the proxy tool fails")
	}
}
