// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litscan/pkg/types"
)

// ieeeAPIBase is the IEEE Xplore article search endpoint. Declared as a
// var so tests can substitute an httptest server.
var ieeeAPIBase = "https://ieeexploreapi.ieee.org/api/v1/search/articles"

// IEEEAdapter queries the IEEE Xplore metadata API. The API requires a
// key; without one the adapter reports itself unavailable.
type IEEEAdapter struct {
	Client *http.Client
	APIKey string
}

// Name returns the source identifier.
func (a *IEEEAdapter) Name() string { return types.SourceIEEE }

// Fetch queries the IEEE Xplore API and returns its articles as raw hits.
func (a *IEEEAdapter) Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error) {
	if a.APIKey == "" {
		return nil, unavailable("no IEEE API key configured")
	}
	if query.IsEmpty() {
		return nil, unavailable("empty IEEE query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	params := url.Values{
		"apikey":      {a.APIKey},
		"querytext":   {strings.Join(query.PrimaryKeywords, " AND ")},
		"max_records": {strconv.Itoa(maxResults)},
		"format":      {"json"},
	}
	if query.YearFrom > 0 {
		params.Set("start_year", strconv.Itoa(query.YearFrom))
	}
	if query.YearTo > 0 {
		params.Set("end_year", strconv.Itoa(query.YearTo))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ieeeAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, unavailable("creating request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, unavailable("IEEE API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("IEEE API returned HTTP %d", resp.StatusCode)
	}

	var ir ieeeResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, malformed("parsing IEEE response: %v", err)
	}

	var hits []RawHit
	for _, article := range ir.Articles {
		h := RawHit{
			Title:    article.Title,
			Venue:    article.PublicationTitle,
			DOI:      article.DOI,
			SourceID: article.ArticleNumber,
			Abstract: article.Abstract,
			PDFURL:   article.PDFURL,
			YearRaw:  article.PublicationYear,
		}
		for _, au := range article.Authors.Authors {
			h.Authors = append(h.Authors, au.FullName)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// IEEE Xplore API JSON structures.
type ieeeResponse struct {
	TotalRecords int           `json:"total_records"`
	Articles     []ieeeArticle `json:"articles"`
}

type ieeeArticle struct {
	Title            string      `json:"title"`
	PublicationTitle string      `json:"publication_title"`
	PublicationYear  string      `json:"publication_year"`
	ArticleNumber    string      `json:"article_number"`
	DOI              string      `json:"doi"`
	Abstract         string      `json:"abstract"`
	PDFURL           string      `json:"pdf_url"`
	Authors          ieeeAuthors `json:"authors"`
}

type ieeeAuthors struct {
	Authors []ieeeAuthor `json:"authors"`
}

type ieeeAuthor struct {
	FullName string `json:"full_name"`
}
