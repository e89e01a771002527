// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/litscan/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivPDFBase is the arXiv full-text endpoint.
var arxivPDFBase = "https://arxiv.org/pdf/"

// ArxivAdapter queries the arXiv Atom API.
type ArxivAdapter struct {
	Client *http.Client
}

// Name returns the source identifier.
func (a *ArxivAdapter) Name() string { return types.SourceArxiv }

// Fetch queries the arXiv API and returns its entries as raw hits.
func (a *ArxivAdapter) Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, unavailable("empty arXiv query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable("creating request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, unavailable("arXiv API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, malformed("parsing arXiv response: %v", err)
	}

	var hits []RawHit
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		h := RawHit{
			Title:    strings.TrimSpace(entry.Title),
			Venue:    "arXiv",
			DOI:      strings.TrimSpace(entry.DOI),
			SourceID: arxivID,
			Abstract: strings.TrimSpace(entry.Summary),
			PDFURL:   arxivPDFBase + arxivID,
			Updated:  entry.Updated,
		}
		if len(entry.Published) >= 4 {
			h.YearRaw = entry.Published[:4]
		}
		for _, au := range entry.Authors {
			h.Authors = append(h.Authors, strings.TrimSpace(au.Name))
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// buildArxivQuery constructs the search_query parameter. Each primary
// keyword becomes an all: clause; a year range becomes a submittedDate
// clause.
func buildArxivQuery(q Query) string {
	var parts []string
	for _, kw := range q.PrimaryKeywords {
		terms := strings.Fields(kw)
		if len(terms) == 0 {
			continue
		}
		parts = append(parts, "all:"+strings.Join(terms, "+"))
	}
	if len(parts) == 0 {
		return ""
	}

	if q.YearFrom > 0 || q.YearTo > 0 {
		from, to := q.YearFrom, q.YearTo
		if from == 0 {
			from = 1900
		}
		if to == 0 {
			to = 2100
		}
		parts = append(parts, fmt.Sprintf("submittedDate:[%d+TO+%d]", from*10000, (to+1)*10000))
	}

	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivXMLEntry `xml:"entry"`
}

type arxivXMLEntry struct {
	ID        string           `xml:"id"`
	Title     string           `xml:"title"`
	Summary   string           `xml:"summary"`
	Published string           `xml:"published"`
	Updated   string           `xml:"updated"`
	DOI       string           `xml:"doi"`
	Authors   []arxivXMLAuthor `xml:"author"`
}

type arxivXMLAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
