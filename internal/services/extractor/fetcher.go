package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/capsa/internal/common"
)

// fetcher performs plain HTTP downloads with a politeness limit per host.
// Each host gets its own token bucket so a burst of ingests against one
// site never hammers it while other hosts proceed at full speed.
type fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	rps         float64
	logger      arbor.ILogger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newFetcher(config *common.ExtractorConfig, logger arbor.ILogger) *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: common.Duration(config.Timeout, 10*time.Second),
		},
		userAgent:   config.UserAgent,
		maxBodySize: config.MaxBodySize,
		rps:         config.RequestsPerSecond,
		logger:      logger,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for a host, creating it on first contact.
func (f *fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.rps), 1)
		f.limiters[host] = l
	}
	return l
}

// Fetch downloads the page body and reports the response content type.
func (f *fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url: %w", err)
	}

	if err := f.limiter(parsed.Host).Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, "", fmt.Errorf("response exceeds %d byte limit", f.maxBodySize)
	}

	f.logger.Debug().
		Str("url", pageURL).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched page")

	return body, resp.Header.Get("Content-Type"), nil
}
