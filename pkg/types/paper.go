// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PDFStatus indicates the outcome of full-text acquisition for a paper.
type PDFStatus string

const (
	// PDFDownloaded means an open-access PDF was retrieved and its text
	// (possibly empty, for scanned documents) was extracted.
	PDFDownloaded PDFStatus = "downloaded"

	// PDFManual means the link resolved to a paywall or bot-blocked page;
	// a human can likely retrieve the file, the pipeline cannot.
	PDFManual PDFStatus = "manual"

	// PDFUnavailable means no usable link existed or the download failed
	// after the retry budget.
	PDFUnavailable PDFStatus = "unavailable"
)

// PaperType classifies a publication by its venue.
type PaperType string

const (
	TypePreprint   PaperType = "preprint"
	TypeJournal    PaperType = "journal"
	TypeConference PaperType = "conference"
	TypeOther      PaperType = "other"
)

// YearUnknown is the sentinel for a publication year that no source reported.
const YearUnknown = 0

// Paper is the canonical publication record carried through the pipeline.
// Adapters never produce it directly; the normalizer builds it from raw
// source hits, the merger combines duplicate observations, and the PDF
// stage augments it with full-text evidence. Once handed to the report
// assembler it is treated as immutable.
type Paper struct {
	// ID is a stable identifier: "doi:" plus the normalized DOI slug when a
	// DOI is known, otherwise a short hash of normalized title, year, and
	// the first contributing source.
	ID string `json:"paper_id" yaml:"paper_id"`

	// Title is the display title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// NormTitle is the lowercased, punctuation-stripped title used for
	// identity matching. Not exported to reports.
	NormTitle string `json:"-" yaml:"-"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal, proceedings, or archive name.
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year, or YearUnknown.
	Year int `json:"year" yaml:"year"`

	// DOI is the normalized DOI (lowercase, no resolver prefix), or empty.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Sources names every source that reported this paper, sorted.
	Sources []string `json:"source" yaml:"source"`

	// Abstract is the richest abstract seen across sources, or empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// AbstractHit reports whether any primary keyword appeared in the abstract.
	AbstractHit bool `json:"abstract_hit" yaml:"abstract_hit"`

	// PrimaryKeywords is the subset of primary keywords matched in the
	// abstract, sorted.
	PrimaryKeywords []string `json:"primary_keywords" yaml:"primary_keywords"`

	// PDFStatus records the outcome of full-text acquisition.
	PDFStatus PDFStatus `json:"pdf_status" yaml:"pdf_status"`

	// PDFURL is the resolved full-text link, or empty.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PDFPath is the local cache path of the downloaded file, or empty.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// SecondaryPresent lists secondary keywords found in the extracted
	// text, sorted.
	SecondaryPresent []string `json:"secondary_keywords_present" yaml:"secondary_keywords_present"`

	// SecondaryCounts maps each secondary keyword to its occurrence count
	// in the extracted text. Empty unless PDFStatus is PDFDownloaded.
	SecondaryCounts map[string]int `json:"secondary_keyword_counts" yaml:"secondary_keyword_counts"`

	// SecondarySnippets maps each found keyword to a short excerpt around
	// its first occurrence.
	SecondarySnippets map[string]string `json:"secondary_keyword_snippets,omitempty" yaml:"secondary_keyword_snippets,omitempty"`

	// Type classifies the publication from venue and source heuristics.
	Type PaperType `json:"paper_type" yaml:"paper_type"`

	// LastUpdated is the timestamp of the last mutation of this record.
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// HasDOI reports whether the paper carries a non-empty DOI.
func (p *Paper) HasDOI() bool { return p.DOI != "" }
