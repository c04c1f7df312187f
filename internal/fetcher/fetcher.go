package fetcher

import "context"

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// DownloadBytes fetches the URL and returns the full response body.
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}
