// Package source scrapes the published directory page for its freshness
// marker and spreadsheet links. The publisher exposes no structured feed,
// so both come from the raw HTML.
package source

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/bankfeeds/branchsync/internal/fetcher"
)

// ErrNoFreshnessMarker means the page fetched cleanly but carried no
// parseable "updated as on" marker. Callers can tell this apart from a
// failed fetch, which surfaces as a different error.
var ErrNoFreshnessMarker = eris.New("source: no freshness marker on page")

// dateLayout matches the publisher's long-form date, e.g. "January 5, 2024".
const dateLayout = "January 2, 2006"

var (
	updatedRe = regexp.MustCompile(`(?i)updated as on\s+([A-Za-z]+ \d{1,2}, \d{4})`)
	anchorRe  = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']+)["']`)
)

// Scanner extracts the update date and spreadsheet links from the
// directory status page.
type Scanner struct {
	fetcher     fetcher.Fetcher
	docsBaseURL string
}

// NewScanner creates a Scanner that resolves spreadsheet links against
// the given docs base URL.
func NewScanner(f fetcher.Fetcher, docsBaseURL string) *Scanner {
	if !strings.HasSuffix(docsBaseURL, "/") {
		docsBaseURL += "/"
	}
	return &Scanner{fetcher: f, docsBaseURL: docsBaseURL}
}

// UpdateDate fetches the page and parses its "updated as on <Month D,
// YYYY>" marker into a calendar date.
func (s *Scanner) UpdateDate(ctx context.Context, pageURL string) (time.Time, error) {
	body, err := s.fetcher.DownloadBytes(ctx, pageURL)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "source: fetch page")
	}

	m := updatedRe.FindSubmatch(body)
	if len(m) < 2 {
		return time.Time{}, ErrNoFreshnessMarker
	}

	d, err := time.Parse(dateLayout, string(m[1]))
	if err != nil {
		return time.Time{}, ErrNoFreshnessMarker
	}

	return d, nil
}

// SheetLinks fetches the page and returns the canonical download URL for
// every .xlsx anchor, in document order. The source mixes relative and
// absolute hrefs, so only the filename is kept and prefixed with the
// fixed docs base URL. Exact duplicates are dropped.
func (s *Scanner) SheetLinks(ctx context.Context, pageURL string) ([]string, error) {
	body, err := s.fetcher.DownloadBytes(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: fetch page")
	}

	var links []string
	seen := make(map[string]bool)
	for _, m := range anchorRe.FindAllSubmatch(body, -1) {
		href := strings.TrimSpace(string(m[1]))
		if !strings.HasSuffix(strings.ToLower(href), ".xlsx") {
			continue
		}
		name := href
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if name == "" {
			continue
		}
		link := s.docsBaseURL + name
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links, nil
}
