// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfscan

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrPDFUnparseable marks files the PDF reader cannot open. Callers treat
// the text as empty; the download itself still stands.
var ErrPDFUnparseable = errors.New("pdf unparseable")

// ExtractText pulls plain text from a PDF file, page by page. Pages that
// fail to decode are skipped; an unreadable file returns an error and the
// caller treats the text as empty.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPDFUnparseable, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ScanText counts secondary keyword occurrences in extracted text and
// captures a snippet around each keyword's first occurrence. Matching is
// case-insensitive and non-overlapping; keywords, counts, and snippets are
// reported in lowered form, and keywords absent from the text are omitted
// from all three results.
func ScanText(text string, keywords []string, window int) (present []string, counts map[string]int, snippets map[string]string) {
	if text == "" || len(keywords) == 0 {
		return nil, nil, nil
	}
	// Lowering can change byte lengths, so offsets into the lowered text
	// are not valid in the original. Snippets are cut from the same
	// representation the match positions come from.
	lower := strings.ToLower(text)

	counts = make(map[string]int)
	snippets = make(map[string]string)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		n := strings.Count(lower, k)
		if n == 0 {
			continue
		}
		counts[k] = n
		present = append(present, k)
		snippets[k] = snippet(lower, strings.Index(lower, k), len(k), window)
	}
	if len(present) == 0 {
		return nil, nil, nil
	}
	sort.Strings(present)
	return present, counts, snippets
}

// snippet returns up to window characters of context on each side of the
// match, with line breaks flattened to spaces.
func snippet(text string, pos, matchLen, window int) string {
	start := pos - window
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + window
	if end > len(text) {
		end = len(text)
	}
	return strings.Join(strings.Fields(text[start:end]), " ")
}
