// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/litscan/internal/httputil"
	"github.com/pdiddy/litscan/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// acmMemberFilter restricts CrossRef works to the ACM member account.
const acmMemberFilter = "member:320"

// ACMAdapter queries the ACM Digital Library through the CrossRef works
// API, filtered to ACM's CrossRef member ID. CrossRef needs no key but
// asks for an identifying User-Agent.
type ACMAdapter struct {
	Client *http.Client
}

// Name returns the source identifier.
func (a *ACMAdapter) Name() string { return types.SourceACM }

// Fetch queries CrossRef for ACM works and returns them as raw hits.
func (a *ACMAdapter) Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error) {
	if query.IsEmpty() {
		return nil, unavailable("empty ACM query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	filters := []string{acmMemberFilter}
	if query.YearFrom > 0 {
		filters = append(filters, "from-pub-date:"+strconv.Itoa(query.YearFrom)+"-01-01")
	}
	if query.YearTo > 0 {
		filters = append(filters, "until-pub-date:"+strconv.Itoa(query.YearTo)+"-12-31")
	}

	params := url.Values{
		"query":  {strings.Join(query.PrimaryKeywords, " ")},
		"rows":   {strconv.Itoa(maxResults)},
		"filter": {strings.Join(filters, ",")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, unavailable("creating request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, unavailable("CrossRef API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefListResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, malformed("parsing CrossRef response: %v", err)
	}

	var hits []RawHit
	for _, item := range cr.Message.Items {
		hits = append(hits, crossrefHit(item, "ACM Digital Library"))
	}
	return hits, nil
}

// LookupDOI fetches a single CrossRef work record and converts it to a
// raw hit. The Google Scholar adapter uses it to enrich proxy-tool rows
// that carry only a DOI.
func LookupDOI(ctx context.Context, client *http.Client, doi, userAgent string) (RawHit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"/"+url.PathEscape(doi), nil)
	if err != nil {
		return RawHit{}, unavailable("creating request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return RawHit{}, unavailable("CrossRef API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RawHit{}, unavailable("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return RawHit{}, malformed("parsing CrossRef response: %v", err)
	}

	return crossrefHit(cr.Message, ""), nil
}

// crossrefHit maps a CrossRef work item to a raw hit. defaultVenue is
// used when the record has no container title.
func crossrefHit(item crossrefWork, defaultVenue string) RawHit {
	h := RawHit{
		DOI:      item.DOI,
		SourceID: item.DOI,
		Venue:    defaultVenue,
		Abstract: item.Abstract,
	}
	if len(item.Title) > 0 {
		h.Title = item.Title[0]
	}
	if len(item.ContainerTitle) > 0 {
		h.Venue = item.ContainerTitle[0]
	}
	for _, au := range item.Author {
		name := strings.TrimSpace(au.Given + " " + au.Family)
		if name != "" {
			h.Authors = append(h.Authors, name)
		}
	}
	if parts := item.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		h.YearRaw = strconv.Itoa(parts[0][0])
		dateStrs := make([]string, len(parts[0]))
		for i, p := range parts[0] {
			dateStrs[i] = strconv.Itoa(p)
		}
		h.Updated = strings.Join(dateStrs, "-")
	}
	for _, link := range item.Link {
		if strings.EqualFold(link.ContentType, "application/pdf") {
			h.PDFURL = link.URL
			break
		}
	}
	return h
}

// CrossRef API JSON structures.
type crossrefListResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefItemResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Abstract       string           `json:"abstract"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
	Link           []crossrefLink   `json:"link"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}
