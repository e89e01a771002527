package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleSemanticJSON = `{
  "total": 2,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "Attention Is All You Need",
      "abstract": "We propose a new architecture.",
      "venue": "NeurIPS",
      "year": 2017,
      "authors": [
        {"authorId": "1", "name": "Ashish Vaswani"},
        {"authorId": "2", "name": "Noam Shazeer"}
      ],
      "externalIds": {"ArXiv": "1706.03762", "DOI": "10.5555/3295222.3295349"},
      "openAccessPdf": {"url": "https://example.org/1706.03762.pdf"}
    },
    {
      "paperId": "def456",
      "title": "GPT-4 Technical Report",
      "abstract": "We report the development of GPT-4.",
      "venue": "",
      "year": 2023,
      "authors": [{"authorId": "3", "name": "OpenAI"}],
      "externalIds": {"DOI": "10.48550/arXiv.2303.08774"}
    }
  ]
}`

func TestSemanticScholarAdapterFetch(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticJSON)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	a := &SemanticScholarAdapter{Client: ts.Client(), APIKey: "sk_test"}
	hits, err := a.Fetch(context.Background(), Query{PrimaryKeywords: []string{"attention"}}, testCfg())
	if err != nil {
		t.Fatalf("SemanticScholarAdapter.Fetch: %v", err)
	}
	if gotKey != "sk_test" {
		t.Errorf("x-api-key = %q, want sk_test", gotKey)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}

	h0 := hits[0]
	if h0.DOI != "10.5555/3295222.3295349" {
		t.Errorf("DOI = %q", h0.DOI)
	}
	if h0.PDFURL != "https://example.org/1706.03762.pdf" {
		t.Errorf("PDFURL = %q, want open-access link", h0.PDFURL)
	}
	if h0.Venue != "NeurIPS" {
		t.Errorf("Venue = %q", h0.Venue)
	}

	// Second paper has no openAccessPdf field.
	if hits[1].PDFURL != "" {
		t.Errorf("PDFURL = %q, want empty", hits[1].PDFURL)
	}
	if hits[1].YearRaw != "2023" {
		t.Errorf("YearRaw = %q, want 2023", hits[1].YearRaw)
	}
}

func TestSemanticScholarAdapterMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	a := &SemanticScholarAdapter{Client: ts.Client()}
	_, err := a.Fetch(context.Background(), Query{PrimaryKeywords: []string{"x"}}, testCfg())
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBuildSemanticQuery(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"single", Query{PrimaryKeywords: []string{"attention"}}, "attention"},
		{"multiple", Query{PrimaryKeywords: []string{"attention", "transformers"}}, "attention transformers"},
		{"empty", Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSemanticQuery(tt.query)
			if got != tt.want {
				t.Errorf("buildSemanticQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSemanticYearRange(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"both", Query{YearFrom: 2020, YearTo: 2023}, "2020-2023"},
		{"from only", Query{YearFrom: 2020}, "2020-"},
		{"to only", Query{YearTo: 2023}, "-2023"},
		{"neither", Query{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSemanticYearRange(tt.query)
			if got != tt.want {
				t.Errorf("buildSemanticYearRange = %q, want %q", got, tt.want)
			}
		})
	}
}
