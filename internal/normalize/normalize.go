// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw source hits into canonical paper records.
// Every hit passes through here exactly once, before deduplication; the
// invariants the merger relies on (normalized DOIs, collapsed titles, the
// year sentinel) are established in this package and nowhere else.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/litscan/internal/sources"
	"github.com/pdiddy/litscan/pkg/types"
)

// Paper builds a canonical record from a single raw hit. The source name
// becomes the record's only provenance entry; merging widens it later.
func Paper(hit sources.RawHit, source string, primaryKeywords []string) types.Paper {
	p := types.Paper{
		Title:     CollapseTitle(hit.Title),
		Authors:   cleanAuthors(hit.Authors),
		Venue:     strings.TrimSpace(hit.Venue),
		Year:      ParseYear(hit.YearRaw),
		DOI:       NormalizeDOI(hit.DOI),
		Sources:   []string{source},
		Abstract:  strings.TrimSpace(hit.Abstract),
		PDFURL:    strings.TrimSpace(hit.PDFURL),
		PDFStatus: types.PDFUnavailable,
	}
	p.NormTitle = NormalizeTitle(p.Title)
	p.Type = inferType(source, p.Venue)
	p.AbstractHit, p.PrimaryKeywords = matchKeywords(p.Abstract, primaryKeywords)
	p.ID = PaperID(p.DOI, p.NormTitle, p.Year, source)
	p.LastUpdated = time.Now().UTC()
	return p
}

// CollapseTitle trims and collapses internal whitespace, preserving case.
func CollapseTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// NormalizeTitle returns a lowercased, punctuation-stripped version of the
// title used for identity matching.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes so that the
// same work reported by different sources compares equal.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{
		"https://doi.org/",
		"http://doi.org/",
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"doi:",
	} {
		d = strings.TrimPrefix(d, prefix)
	}
	return d
}

// ParseYear extracts a four-digit year from a source's raw year field.
// Unparseable input maps to the YearUnknown sentinel, never to an error;
// a missing year must not block the rest of the record.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	for i := 0; i+4 <= len(raw); i++ {
		if !isDigit(raw[i]) {
			continue
		}
		if i+4 < len(raw) && isDigit(raw[i+4]) {
			continue
		}
		y, err := strconv.Atoi(raw[i : i+4])
		if err == nil && y >= 1800 && y <= 2200 {
			return y
		}
	}
	return types.YearUnknown
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// PaperID derives the stable identifier for a record. DOI-bearing papers
// get "doi:" plus the normalized DOI; the rest get a short hash of the
// normalized title, year, and contributing source.
func PaperID(doi, normTitle string, year int, source string) string {
	if doi != "" {
		return "doi:" + doi
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", normTitle, year, source)))
	return "t:" + hex.EncodeToString(sum[:])[:12]
}

// matchKeywords reports whether any primary keyword appears in the abstract
// (case-insensitive) and returns the sorted matched subset.
func matchKeywords(abstract string, keywords []string) (bool, []string) {
	if abstract == "" || len(keywords) == 0 {
		return false, nil
	}
	lower := strings.ToLower(abstract)
	var matched []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && strings.Contains(lower, k) {
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)
	return len(matched) > 0, matched
}

// inferType classifies a publication from its source and venue name.
func inferType(source, venue string) types.PaperType {
	if source == types.SourceArxiv {
		return types.TypePreprint
	}
	v := strings.ToLower(venue)
	switch {
	case v == "":
		return types.TypeOther
	case strings.Contains(v, "arxiv"):
		return types.TypePreprint
	case strings.Contains(v, "proceedings"),
		strings.Contains(v, "conference"),
		strings.Contains(v, "symposium"),
		strings.Contains(v, "workshop"):
		return types.TypeConference
	case strings.Contains(v, "journal"),
		strings.Contains(v, "transactions"),
		strings.Contains(v, "letters"),
		strings.Contains(v, "annual review"):
		return types.TypeJournal
	default:
		return types.TypeOther
	}
}

func cleanAuthors(authors []string) []string {
	var out []string
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
