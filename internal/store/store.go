// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scan runs and merged paper records in SQLite so
// successive scans accumulate a local corpus instead of overwriting it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litscan/pkg/types"
)

// Store manages the scan database.
type Store struct {
	db *sql.DB
}

// RunMeta describes one scan invocation for the runs table.
type RunMeta struct {
	PrimaryKeywords   []string
	SecondaryKeywords []string
	YearFrom          int
	YearTo            int
	Total             int
	DupsRemoved       int
}

// Open opens or creates the scan database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			primary_keywords TEXT,
			secondary_keywords TEXT,
			year_from INTEGER,
			year_to INTEGER,
			total INTEGER,
			dups_removed INTEGER,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			venue TEXT,
			year INTEGER,
			doi TEXT,
			sources TEXT,
			abstract TEXT,
			abstract_hit INTEGER,
			primary_keywords TEXT,
			pdf_status TEXT,
			pdf_url TEXT,
			pdf_path TEXT,
			secondary_present TEXT,
			secondary_counts TEXT,
			paper_type TEXT,
			last_updated TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun records a scan invocation and upserts every merged paper.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, papers []types.Paper) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (primary_keywords, secondary_keywords, year_from, year_to, total, dups_removed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.Join(meta.PrimaryKeywords, "; "),
		strings.Join(meta.SecondaryKeywords, "; "),
		meta.YearFrom, meta.YearTo, meta.Total, meta.DupsRemoved,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for _, p := range papers {
		if err := s.UpsertPaper(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPaper inserts or replaces a paper record keyed by paper ID.
func (s *Store) UpsertPaper(ctx context.Context, p types.Paper) error {
	authors, _ := json.Marshal(p.Authors)
	counts, _ := json.Marshal(p.SecondaryCounts)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, authors, venue, year, doi, sources, abstract, abstract_hit,
			primary_keywords, pdf_status, pdf_url, pdf_path, secondary_present, secondary_counts,
			paper_type, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			venue = excluded.venue,
			year = excluded.year,
			doi = excluded.doi,
			sources = excluded.sources,
			abstract = excluded.abstract,
			abstract_hit = excluded.abstract_hit,
			primary_keywords = excluded.primary_keywords,
			pdf_status = excluded.pdf_status,
			pdf_url = excluded.pdf_url,
			pdf_path = excluded.pdf_path,
			secondary_present = excluded.secondary_present,
			secondary_counts = excluded.secondary_counts,
			paper_type = excluded.paper_type,
			last_updated = excluded.last_updated`,
		p.ID, p.Title, string(authors), p.Venue, p.Year, p.DOI,
		strings.Join(p.Sources, "; "), p.Abstract, boolToInt(p.AbstractHit),
		strings.Join(p.PrimaryKeywords, "; "), string(p.PDFStatus), p.PDFURL, p.PDFPath,
		strings.Join(p.SecondaryPresent, "; "), string(counts),
		string(p.Type), p.LastUpdated.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}
	return nil
}

// ListPapers returns every stored paper, most recent year first.
func (s *Store) ListPapers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, venue, year, doi, sources, abstract, abstract_hit,
			primary_keywords, pdf_status, pdf_url, pdf_path, secondary_present, secondary_counts,
			paper_type, last_updated
		 FROM papers ORDER BY year DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		var authors, sources, primary, secondary, counts, status, ptype, updated string
		var hit int
		if err := rows.Scan(&p.ID, &p.Title, &authors, &p.Venue, &p.Year, &p.DOI, &sources,
			&p.Abstract, &hit, &primary, &status, &p.PDFURL, &p.PDFPath, &secondary, &counts,
			&ptype, &updated); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		json.Unmarshal([]byte(authors), &p.Authors)
		json.Unmarshal([]byte(counts), &p.SecondaryCounts)
		p.Sources = splitList(sources)
		p.PrimaryKeywords = splitList(primary)
		p.SecondaryPresent = splitList(secondary)
		p.AbstractHit = hit != 0
		p.PDFStatus = types.PDFStatus(status)
		p.Type = types.PaperType(ptype)
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			p.LastUpdated = t
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// CountRuns returns the number of recorded scan invocations.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "; ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
