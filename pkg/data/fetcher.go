// Package data fetches provider documents over HTTP and keeps the program
// guide warm in the background.
package data

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/savid/plutotv-proxy/pkg/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrUnexpectedStatus is returned when the HTTP response has an unexpected status code.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrUnsupportedEncoding is returned for a Content-Encoding the fetcher did not ask for.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)

// DefaultUserAgent is sent when FetcherConfig.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// FetcherConfig configures an HTTPFetcher.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration // per request; 0 means 30s
	RateLimit float64       // requests per second; 0 disables limiting
}

// HTTPFetcher performs single GET requests and returns the decoded body.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    logrus.FieldLogger
}

// NewFetcher creates a new fetcher instance.
func NewFetcher(cfg FetcherConfig, logger logrus.FieldLogger) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger.WithField("component", "fetcher"),
	}
	if cfg.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return f
}

// Get fetches rawURL. Any status other than 200 fails with ErrUnexpectedStatus
// and the body is discarded.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	endpoint := endpointLabel(rawURL)
	started := time.Now()

	body, err := f.get(ctx, rawURL)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.RecordUpstreamFetch(endpoint, outcome, time.Since(started))

	logger := f.logger.WithFields(logrus.Fields{
		"url":      rawURL,
		"duration": time.Since(started),
	})
	if err != nil {
		logger.WithError(err).Warn("Upstream fetch failed")
		return nil, err
	}
	logger.WithField("bytes", len(body)).Debug("Upstream fetch completed")

	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return resp.Body, nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip body: %w", err)
		}
		return gz, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, resp.Header.Get("Content-Encoding"))
	}
}

// endpointLabel keeps metric cardinality bounded by dropping the query.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return u.Path
}
