// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe folds observations of the same paper from different
// sources into a single record. Identity is decided by DOI first, exact
// normalized title plus year second, and fuzzy title overlap last. Merging
// is order-independent: any permutation of the input produces the same set
// of records.
package dedupe

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/litscan/internal/normalize"
	"github.com/pdiddy/litscan/pkg/types"
)

// Merge deduplicates normalized papers and returns the surviving records
// plus the number of duplicates folded away.
func Merge(papers []types.Paper, cfg types.DedupeConfig) ([]types.Paper, int) {
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}

	byDOI := make(map[string]int)         // normalized DOI → index in merged
	byTitleYear := make(map[string][]int) // normTitle + year → candidate indices
	var merged []types.Paper
	removed := 0

	for _, p := range papers {
		idx := findMatch(merged, byDOI, byTitleYear, p, threshold)
		if idx >= 0 {
			mergeInto(&merged[idx], p)
			reindex(byDOI, byTitleYear, merged[idx], idx)
			removed++
			continue
		}
		idx = len(merged)
		merged = append(merged, p)
		reindex(byDOI, byTitleYear, p, idx)
	}

	// Recompute hash IDs so they do not depend on which observation
	// arrived first.
	for i := range merged {
		rekey(&merged[i])
	}
	return merged, removed
}

// findMatch locates an existing record the candidate should fold into, or
// returns -1. Papers with different DOIs are never the same work, no matter
// how similar their titles are. When several same-title records with
// distinct DOIs qualify, the smallest DOI wins so the outcome does not
// depend on which record was indexed first.
func findMatch(merged []types.Paper, byDOI map[string]int, byTitleYear map[string][]int, p types.Paper, threshold float64) int {
	if p.HasDOI() {
		if idx, ok := byDOI[p.DOI]; ok {
			return idx
		}
	}
	if p.NormTitle == "" {
		return -1
	}
	best := -1
	for _, idx := range byTitleYear[titleYearKey(p)] {
		if doisCompatible(merged[idx], p) && better(merged, idx, best) {
			best = idx
		}
	}
	if best >= 0 {
		return best
	}
	for idx := range merged {
		if !doisCompatible(merged[idx], p) || !yearsCompatible(merged[idx].Year, p.Year) {
			continue
		}
		if titleSimilarity(merged[idx].NormTitle, p.NormTitle) >= threshold && better(merged, idx, best) {
			best = idx
		}
	}
	return best
}

// better reports whether candidate idx beats the current best match,
// ordering by DOI and falling back to normalized title.
func better(merged []types.Paper, idx, best int) bool {
	if best < 0 {
		return true
	}
	if merged[idx].DOI != merged[best].DOI {
		return merged[idx].DOI < merged[best].DOI
	}
	return merged[idx].NormTitle < merged[best].NormTitle
}

func titleYearKey(p types.Paper) string {
	return p.NormTitle + "\x00" + strconv.Itoa(p.Year)
}

// doisCompatible reports whether two records could be the same work as far
// as DOIs go: equal DOIs, or at least one side has none.
func doisCompatible(a, b types.Paper) bool {
	return a.DOI == "" || b.DOI == "" || a.DOI == b.DOI
}

func yearsCompatible(a, b int) bool {
	return a == types.YearUnknown || b == types.YearUnknown || a == b
}

// titleSimilarity is the Jaccard overlap of the two titles' token sets.
func titleSimilarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// mergeInto combines a new observation into an existing record. The field
// preferences are chosen so the result does not depend on arrival order.
func mergeInto(dst *types.Paper, src types.Paper) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if richer(src.Title, dst.Title) {
		dst.Title = src.Title
		dst.NormTitle = src.NormTitle
	}
	if len(src.Authors) > len(dst.Authors) {
		dst.Authors = src.Authors
	}
	if richer(src.Venue, dst.Venue) {
		dst.Venue = src.Venue
	}
	if richer(src.Abstract, dst.Abstract) {
		dst.Abstract = src.Abstract
	}
	if dst.Year == types.YearUnknown || (src.Year != types.YearUnknown && src.Year < dst.Year) {
		dst.Year = src.Year
	}
	if richer(src.PDFURL, dst.PDFURL) {
		dst.PDFURL = src.PDFURL
	}
	dst.AbstractHit = dst.AbstractHit || src.AbstractHit
	dst.PrimaryKeywords = unionSorted(dst.PrimaryKeywords, src.PrimaryKeywords)
	dst.Sources = unionSorted(dst.Sources, src.Sources)
	if src.Type != types.TypeOther && (dst.Type == types.TypeOther || dst.Type == "") {
		dst.Type = src.Type
	}
	if src.LastUpdated.After(dst.LastUpdated) {
		dst.LastUpdated = src.LastUpdated
	}
}

// richer prefers the longer of two strings, breaking ties lexicographically
// so merging stays commutative.
func richer(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate < current
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range a {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// rekey recomputes the record ID after merging. A DOI learned from any
// contributor promotes the record to a DOI-based ID; hash IDs are derived
// from the lexicographically first source so they are permutation-stable.
func rekey(p *types.Paper) {
	source := ""
	if len(p.Sources) > 0 {
		source = p.Sources[0]
	}
	p.ID = normalize.PaperID(p.DOI, p.NormTitle, p.Year, source)
}

// reindex records the identity keys of a merged record. Several records may
// share a title+year key (same title, different DOIs), so all of them stay
// indexed.
func reindex(byDOI map[string]int, byTitleYear map[string][]int, p types.Paper, idx int) {
	if p.HasDOI() {
		byDOI[p.DOI] = idx
	}
	if p.NormTitle == "" {
		return
	}
	key := titleYearKey(p)
	for _, existing := range byTitleYear[key] {
		if existing == idx {
			return
		}
	}
	byTitleYear[key] = append(byTitleYear[key], idx)
}
