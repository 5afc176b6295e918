package pluto

import "context"

// Fetcher performs a single HTTP GET against the provider and returns the body.
// Implementations report non-200 answers as errors and never retry.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Get calls f(ctx, url).
func (f FetcherFunc) Get(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
