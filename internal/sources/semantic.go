// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/litscan/internal/httputil"
	"github.com/pdiddy/litscan/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,venue,openAccessPdf,publicationTypes"

// SemanticScholarAdapter queries the Semantic Scholar graph API.
type SemanticScholarAdapter struct {
	Client *http.Client
	APIKey string
}

// Name returns the source identifier.
func (a *SemanticScholarAdapter) Name() string { return types.SourceSemanticScholar }

// Fetch queries the Semantic Scholar API and returns its papers as raw hits.
func (a *SemanticScholarAdapter) Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error) {
	q := buildSemanticQuery(query)
	if q == "" {
		return nil, unavailable("empty Semantic Scholar query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(maxResults)},
		"fields": {semanticFields},
	}
	if yr := buildSemanticYearRange(query); yr != "" {
		params.Set("year", yr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, unavailable("creating request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if a.APIKey != "" {
		req.Header.Set("x-api-key", a.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, unavailable("Semantic Scholar API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, malformed("parsing Semantic Scholar response: %v", err)
	}

	var hits []RawHit
	for _, paper := range sr.Data {
		h := RawHit{
			Title:    paper.Title,
			Venue:    paper.Venue,
			DOI:      paper.ExternalIDs.DOI,
			SourceID: paper.PaperID,
			Abstract: paper.Abstract,
		}
		if paper.Year > 0 {
			h.YearRaw = strconv.Itoa(paper.Year)
			h.Updated = h.YearRaw
		}
		for _, au := range paper.Authors {
			h.Authors = append(h.Authors, au.Name)
		}
		if paper.OpenAccessPDF != nil {
			h.PDFURL = paper.OpenAccessPDF.URL
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// buildSemanticQuery joins the primary keywords into one quoted-phrase-free
// search string; Semantic Scholar handles term matching itself.
func buildSemanticQuery(q Query) string {
	var parts []string
	for _, kw := range q.PrimaryKeywords {
		if kw != "" {
			parts = append(parts, kw)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}

// buildSemanticYearRange returns a year filter string (e.g. "2020-2023").
func buildSemanticYearRange(q Query) string {
	switch {
	case q.YearFrom > 0 && q.YearTo > 0:
		return fmt.Sprintf("%d-%d", q.YearFrom, q.YearTo)
	case q.YearFrom > 0:
		return fmt.Sprintf("%d-", q.YearFrom)
	case q.YearTo > 0:
		return fmt.Sprintf("-%d", q.YearTo)
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Venue         string              `json:"venue"`
	Year          int                 `json:"year"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF *semanticOpenAccess `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}

type semanticOpenAccess struct {
	URL string `json:"url"`
}
