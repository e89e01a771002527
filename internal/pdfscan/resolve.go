// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfscan acquires open-access PDFs for merged paper records and
// scans the extracted text for secondary keywords. Acquisition is best
// effort: a paper whose full text cannot be retrieved keeps its metadata
// and is marked manual or unavailable, never dropped.
package pdfscan

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	cache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/litscan/internal/httputil"
	"github.com/pdiddy/litscan/pkg/types"
)

// openalexAPIBase is the OpenAlex works endpoint. Variable so tests can
// point it at a local server.
var openalexAPIBase = "https://api.openalex.org/works"

// Resolver turns a paper record into a concrete full-text URL. OpenAlex
// lookups are memoized because merged records from a rerun frequently
// repeat the same DOIs.
type Resolver struct {
	Client *http.Client
	cache  *cache.Cache
}

func NewResolver(client *http.Client) *Resolver {
	return &Resolver{
		Client: client,
		cache:  cache.New(30*time.Minute, 10*time.Minute),
	}
}

// Resolve returns the most promising full-text URL for a paper, or empty
// when no link can be derived. Source-reported links win; a DOI-based
// OpenAlex lookup is the fallback.
func (r *Resolver) Resolve(ctx context.Context, p types.Paper, cfg types.PDFConfig) string {
	if p.PDFURL != "" {
		return RewriteArxivURL(p.PDFURL)
	}
	if p.HasDOI() {
		return r.lookupOpenAlex(ctx, p.DOI, cfg)
	}
	return ""
}

// RewriteArxivURL maps arXiv abstract pages to their PDF counterpart.
// Other URLs pass through unchanged.
func RewriteArxivURL(u string) string {
	if strings.Contains(u, "arxiv.org/abs/") {
		return strings.Replace(u, "arxiv.org/abs/", "arxiv.org/pdf/", 1)
	}
	return u
}

type openalexWork struct {
	BestOALocation *openalexLocation `json:"best_oa_location"`
}

type openalexLocation struct {
	PDFURL         string `json:"pdf_url"`
	LandingPageURL string `json:"landing_page_url"`
}

// lookupOpenAlex asks OpenAlex for the best open-access location of a DOI.
// Failures resolve to empty: the caller treats a missing URL as
// unavailable, not as a pipeline error.
func (r *Resolver) lookupOpenAlex(ctx context.Context, doi string, cfg types.PDFConfig) string {
	if v, ok := r.cache.Get(doi); ok {
		return v.(string)
	}

	url := openalexAPIBase + "/https://doi.org/" + doi
	if cfg.OpenAlexEmail != "" {
		url += "?mailto=" + cfg.OpenAlexEmail
	}
	resp, err := httputil.Get(ctx, r.Client, url, cfg.UserAgent, cfg.MaxRetries)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	result := ""
	if resp.StatusCode == http.StatusOK {
		var work openalexWork
		if err := json.NewDecoder(resp.Body).Decode(&work); err == nil && work.BestOALocation != nil {
			result = work.BestOALocation.PDFURL
			if result == "" {
				result = work.BestOALocation.LandingPageURL
			}
			result = RewriteArxivURL(result)
		}
	}
	r.cache.Set(doi, result, cache.DefaultExpiration)
	return result
}

// FindPDFLink extracts the citation_pdf_url meta tag from a publisher
// landing page. Scholarly landing pages advertise their full-text link
// this way for indexers.
func FindPDFLink(body io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return ""
	}
	if href, ok := doc.Find(`meta[name="citation_pdf_url"]`).Attr("content"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}
