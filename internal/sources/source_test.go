package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litscan/pkg/types"
)

// --- mock adapter ---

type mockAdapter struct {
	name string
	hits []RawHit
	err  error
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Fetch(_ context.Context, _ Query, _ types.SourcesConfig) ([]RawHit, error) {
	return m.hits, m.err
}

func testCfg() types.SourcesConfig {
	return types.SourcesConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults: 20,
	}
}

func TestQueryIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty", Query{}, true},
		{"keywords", Query{PrimaryKeywords: []string{"robotics"}}, false},
		{"year only is empty", Query{YearFrom: 2020}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchAllCollectsEverySource(t *testing.T) {
	a := &mockAdapter{name: "a", hits: []RawHit{{Title: "Paper A"}}}
	b := &mockAdapter{name: "b", hits: []RawHit{{Title: "Paper B"}, {Title: "Paper C"}}}

	var buf bytes.Buffer
	all, errs := FetchAll(context.Background(), []Adapter{a, b}, Query{PrimaryKeywords: []string{"x"}}, testCfg(), &buf)
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	total := 0
	for _, h := range all {
		total += len(h.Hits)
	}
	if total != 3 {
		t.Errorf("total hits = %d, want 3", total)
	}
}

func TestFetchAllContinuesAfterSourceFailure(t *testing.T) {
	failing := &mockAdapter{name: "failing", err: unavailable("network error")}
	working := &mockAdapter{name: "working", hits: []RawHit{{Title: "Paper A"}}}

	var buf bytes.Buffer
	all, errs := FetchAll(context.Background(), []Adapter{failing, working}, Query{PrimaryKeywords: []string{"x"}}, testCfg(), &buf)
	if len(all) != 1 || all[0].Source != "working" {
		t.Errorf("all = %+v, want only the working source", all)
	}
	if len(errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(errs))
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Error("output should contain a warning about the failed source")
	}
}

func TestFetchAllAllSourcesFail(t *testing.T) {
	failing1 := &mockAdapter{name: "f1", err: unavailable("down")}
	failing2 := &mockAdapter{name: "f2", err: malformed("bad json")}

	var buf bytes.Buffer
	all, errs := FetchAll(context.Background(), []Adapter{failing1, failing2}, Query{PrimaryKeywords: []string{"x"}}, testCfg(), &buf)
	if len(all) != 0 {
		t.Errorf("all = %+v, want empty", all)
	}
	if len(errs) != 2 {
		t.Errorf("len(errs) = %d, want 2", len(errs))
	}
}

func TestErrorKinds(t *testing.T) {
	if !errors.Is(unavailable("x"), ErrSourceUnavailable) {
		t.Error("unavailable() should wrap ErrSourceUnavailable")
	}
	if !errors.Is(malformed("x"), ErrMalformedResponse) {
		t.Error("malformed() should wrap ErrMalformedResponse")
	}
	err := unavailable("HTTP %d", 503)
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("formatted error = %q", err)
	}
}

func TestEnabledDefaultsToAllSources(t *testing.T) {
	adapters, err := Enabled(testCfg(), http.DefaultClient)
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	if len(adapters) != len(types.AllSources) {
		t.Errorf("len(adapters) = %d, want %d", len(adapters), len(types.AllSources))
	}
}

func TestEnabledSubsetAndUnknown(t *testing.T) {
	cfg := testCfg()
	cfg.Enabled = []string{types.SourceArxiv, "bogus"}

	adapters, err := Enabled(cfg, http.DefaultClient)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("err = %v, want unknown-source error", err)
	}
	if len(adapters) != 1 {
		t.Fatalf("len(adapters) = %d, want 1", len(adapters))
	}
	if adapters[0].Name() != types.SourceArxiv {
		t.Errorf("adapter = %s, want arxiv", adapters[0].Name())
	}
}

func TestFetchAllIsOrderAgnostic(t *testing.T) {
	var adapters []Adapter
	for i := 0; i < 5; i++ {
		adapters = append(adapters, &mockAdapter{
			name: fmt.Sprintf("s%d", i),
			hits: []RawHit{{Title: fmt.Sprintf("Paper %d", i)}},
		})
	}

	var buf bytes.Buffer
	all, _ := FetchAll(context.Background(), adapters, Query{PrimaryKeywords: []string{"x"}}, testCfg(), &buf)

	seen := map[string]bool{}
	for _, h := range all {
		seen[h.Source] = true
	}
	for i := 0; i < 5; i++ {
		if !seen[fmt.Sprintf("s%d", i)] {
			t.Errorf("missing contribution from s%d", i)
		}
	}
}
