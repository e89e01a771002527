// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries scholarly APIs and returns raw, source-shaped hits.
// Each source (arXiv, Semantic Scholar, IEEE Xplore, ACM via CrossRef, Google
// Scholar via an external proxy tool) implements the Adapter interface; its
// query-construction rules and response shapes stay private to its file.
// Consumers only ever see RawHit.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/pdiddy/litscan/pkg/types"
)

// ErrSourceUnavailable marks adapter-level failures: network errors, auth
// or rate-limit rejections. The run continues without that source.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrMalformedResponse marks responses the adapter could not parse. Treated
// like unavailability for run purposes.
var ErrMalformedResponse = errors.New("malformed response")

// RawHit is a single result item in a source's native shape. It lives only
// until the normalizer consumes it.
type RawHit struct {
	Title    string
	Authors  []string
	YearRaw  string
	Venue    string
	DOI      string
	SourceID string
	Abstract string
	PDFURL   string
	Updated  string
}

// Query holds the caller's search parameters shared by all adapters.
type Query struct {
	PrimaryKeywords []string
	YearFrom        int
	YearTo          int
	MaxResults      int
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool { return len(q.PrimaryKeywords) == 0 }

// Adapter searches a single scholarly source. Adapters share no state and
// are safe to run concurrently.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query Query, cfg types.SourcesConfig) ([]RawHit, error)
}

// Hits pairs one adapter's results with its source name.
type Hits struct {
	Source string
	Hits   []RawHit
}

// Enabled returns the adapters selected by cfg.Enabled (all when empty).
// Unknown names are reported through the returned error but do not block
// the known ones.
func Enabled(cfg types.SourcesConfig, client *http.Client) ([]Adapter, error) {
	all := map[string]Adapter{
		types.SourceArxiv:           &ArxivAdapter{Client: client},
		types.SourceSemanticScholar: &SemanticScholarAdapter{Client: client, APIKey: cfg.SemanticScholarAPIKey},
		types.SourceIEEE:            &IEEEAdapter{Client: client, APIKey: cfg.IEEEAPIKey},
		types.SourceACM:             &ACMAdapter{Client: client},
		types.SourceGoogleScholar:   &ScholarAdapter{Client: client},
	}

	names := cfg.Enabled
	if len(names) == 0 {
		names = types.AllSources
	}

	var adapters []Adapter
	var unknown []string
	for _, name := range names {
		a, ok := all[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		adapters = append(adapters, a)
	}

	if len(unknown) > 0 {
		return adapters, fmt.Errorf("unknown sources: %v", unknown)
	}
	return adapters, nil
}

// FetchAll fans the query out to all adapters concurrently and collects
// their hits. A failing adapter contributes nothing and a warning line on
// w; it never aborts the run. The returned errors slice holds one entry
// per failed source.
func FetchAll(ctx context.Context, adapters []Adapter, query Query, cfg types.SourcesConfig, w io.Writer) ([]Hits, []string) {
	type fetchResult struct {
		source string
		hits   []RawHit
		err    error
	}

	ch := make(chan fetchResult, len(adapters))
	var wg sync.WaitGroup

	for _, a := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			actx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
			hits, err := a.Fetch(actx, query, cfg)
			ch <- fetchResult{source: a.Name(), hits: hits, err: err}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []Hits
	var sourceErrors []string
	for fr := range ch {
		if fr.err != nil {
			msg := fmt.Sprintf("%s: %v", fr.source, fr.err)
			sourceErrors = append(sourceErrors, msg)
			fmt.Fprintf(w, "warning: source %s failed: %v\n", fr.source, fr.err)
			continue
		}
		all = append(all, Hits{Source: fr.source, Hits: fr.hits})
	}

	return all, sourceErrors
}

// unavailable wraps err as a source-unavailable failure.
func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSourceUnavailable}, args...)...)
}

// malformed wraps err as a malformed-response failure.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedResponse}, args...)...)
}
