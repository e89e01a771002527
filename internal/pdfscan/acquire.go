// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litscan/internal/httputil"
	"github.com/pdiddy/litscan/pkg/types"
)

// ErrPDFUnreachable marks download failures: transport errors and
// non-paywall HTTP rejections after the retry budget.
var ErrPDFUnreachable = errors.New("pdf unreachable")

// Fetcher downloads and scans full texts for a batch of papers. Downloads
// are bounded by a semaphore and rate-limited per publisher host; results
// land in a read-through disk cache keyed by paper ID.
type Fetcher struct {
	Client   *http.Client
	Resolver *Resolver
	cfg      types.PDFConfig

	hostMu   sync.Mutex
	hosts    map[string]*rate.Limiter
	paperMu  sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewFetcher(client *http.Client, cfg types.PDFConfig) *Fetcher {
	return &Fetcher{
		Client:   client,
		Resolver: NewResolver(client),
		cfg:      cfg,
		hosts:    make(map[string]*rate.Limiter),
		inflight: make(map[string]*sync.Mutex),
	}
}

// ProcessAll runs acquisition and keyword scanning over every paper,
// mutating the slice in place. Concurrency is bounded by cfg.Concurrency;
// per-paper failures downgrade that paper's status and never abort the
// batch.
func (f *Fetcher) ProcessAll(ctx context.Context, papers []types.Paper, secondary []string, w io.Writer) {
	concurrency := f.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i := range papers {
		wg.Add(1)
		sem <- struct{}{}
		go func(p *types.Paper) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := f.Process(ctx, p, secondary); err != nil {
				fmt.Fprintf(w, "warning: pdf %s: %v\n", p.ID, err)
			}
		}(&papers[i])
	}
	wg.Wait()
}

// Process acquires and scans a single paper. The returned error reports
// unexpected conditions only; a clean "no full text exists" outcome is not
// an error.
func (f *Fetcher) Process(ctx context.Context, p *types.Paper, secondary []string) error {
	unlock := f.lockPaper(p.ID)
	defer unlock()

	path := f.cachePath(p.ID)

	// Read-through cache: a prior run's download is reused as-is.
	if _, err := os.Stat(path); err == nil {
		p.PDFStatus = types.PDFDownloaded
		p.PDFPath = path
		f.scanInto(p, secondary)
		return nil
	}

	resolved := f.Resolver.Resolve(ctx, *p, f.cfg)
	if resolved == "" {
		p.PDFStatus = types.PDFUnavailable
		return nil
	}
	p.PDFURL = resolved

	status, err := f.download(ctx, resolved, path, true)
	if err != nil {
		p.PDFStatus = types.PDFUnavailable
		return err
	}
	p.PDFStatus = status
	if status != types.PDFDownloaded {
		return nil
	}
	p.PDFPath = path
	f.scanInto(p, secondary)
	return nil
}

func (f *Fetcher) scanInto(p *types.Paper, secondary []string) {
	text, err := ExtractText(p.PDFPath)
	if err != nil {
		// Corrupt or image-only PDFs yield no text; the download still
		// counts, the keyword sets stay empty.
		text = ""
	}
	p.SecondaryPresent, p.SecondaryCounts, p.SecondarySnippets = ScanText(text, secondary, f.cfg.SnippetWindow)
}

// download fetches a URL into the cache path via a temp file. It returns
// the resulting PDF status: manual for paywalls and bot blocks, and for
// landing pages whose advertised PDF link also fails.
func (f *Fetcher) download(ctx context.Context, rawURL, destPath string, followLanding bool) (types.PDFStatus, error) {
	if err := f.waitHost(ctx, rawURL); err != nil {
		return types.PDFUnavailable, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.PDFUnavailable, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, f.cfg.MaxRetries)
	if err != nil {
		return types.PDFUnavailable, fmt.Errorf("%w: %v", ErrPDFUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTeapot:
		// Paywall or bot detection. A human with institutional access can
		// likely fetch this.
		return types.PDFManual, nil
	case resp.StatusCode != http.StatusOK:
		return types.PDFUnavailable, fmt.Errorf("%w: HTTP %d from %s", ErrPDFUnreachable, resp.StatusCode, rawURL)
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		if followLanding {
			if link := FindPDFLink(resp.Body); link != "" {
				return f.download(ctx, link, destPath, false)
			}
		}
		return types.PDFManual, nil
	}

	if err := saveBody(resp.Body, destPath); err != nil {
		return types.PDFUnavailable, err
	}
	return types.PDFDownloaded, nil
}

func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

// saveBody streams a response body to destPath through a temp file so a
// torn download never appears in the cache.
func saveBody(body io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".litscan-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (f *Fetcher) cachePath(paperID string) string {
	return filepath.Join(f.cfg.CacheDir, sanitizeID(paperID)+".pdf")
}

// sanitizeID maps a paper ID to a filesystem-safe slug. DOIs contain
// slashes and colons that must not become path components.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// waitHost applies the per-host rate limit before a download.
func (f *Fetcher) waitHost(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing URL: %w", err)
	}

	f.hostMu.Lock()
	limiter, ok := f.hosts[parsed.Host]
	if !ok {
		perSecond := f.cfg.HostRate
		if perSecond <= 0 {
			perSecond = 1
		}
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		f.hosts[parsed.Host] = limiter
	}
	f.hostMu.Unlock()

	return limiter.Wait(ctx)
}

// lockPaper serializes work on a single paper ID so a rerun cannot race
// two downloads into the same cache file.
func (f *Fetcher) lockPaper(id string) func() {
	f.paperMu.Lock()
	mu, ok := f.inflight[id]
	if !ok {
		mu = &sync.Mutex{}
		f.inflight[id] = mu
	}
	f.paperMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
