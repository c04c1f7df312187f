package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
}

func TestDownloadBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	data, err := f.DownloadBytes(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownloadBytes_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.DownloadBytes(context.Background(), srv.URL+"/missing.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadBytes_NoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher()
	_, err := f.DownloadBytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "single-attempt policy: no retries")
}

func TestDownloadBytes_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher()
	_, err := f.DownloadBytes(ctx, srv.URL)
	require.Error(t, err)
}

func TestDownloadBytes_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 1024})
	data, err := f.DownloadBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, data, 1024)
}

func TestLimiterFor(t *testing.T) {
	perHost := rate.NewLimiter(rate.Every(time.Second), 1)
	f := NewHTTPFetcher(HTTPOptions{
		RateLimiters: map[string]*rate.Limiter{"rbidocs.rbi.org.in": perHost},
	})

	assert.Same(t, perHost, f.limiterFor("https://rbidocs.rbi.org.in/rdocs/Content/DOCs/IFCB.xlsx"))
	assert.Same(t, f.fallback, f.limiterFor("https://example.com/x"))

	// Unparseable URLs fall back too.
	_, parseErr := url.Parse("http://bad url")
	require.Error(t, parseErr)
	assert.Same(t, f.fallback, f.limiterFor("http://bad url"))
}

func TestDefaultRateLimiters(t *testing.T) {
	lims := DefaultRateLimiters()
	assert.Contains(t, lims, "m.rbi.org.in")
	assert.Contains(t, lims, "rbidocs.rbi.org.in")
}
