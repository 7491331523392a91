package extractor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
)

// renderer drives a single headless browser for pages that only produce
// their content after JavaScript runs. The browser starts lazily on first
// use; chromedp contexts do not support concurrent Run calls, so a mutex
// serializes rendering.
type renderer struct {
	userAgent string
	waitTime  time.Duration
	timeout   time.Duration
	logger    arbor.ILogger

	mu              sync.Mutex
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	started         bool
}

func newRenderer(config *common.ExtractorConfig, logger arbor.ILogger) *renderer {
	return &renderer{
		userAgent: config.UserAgent,
		waitTime:  common.Duration(config.JavaScriptWaitTime, 2*time.Second),
		timeout:   common.Duration(config.Timeout, 10*time.Second),
		logger:    logger,
	}
}

// start launches the browser. Caller must hold the mutex.
func (r *renderer) start() error {
	if r.started {
		return nil
	}

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Startup probe so a missing Chrome binary surfaces here rather than
	// mid-extraction
	probeCtx, probeCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	r.allocatorCancel = allocatorCancel
	r.started = true

	r.logger.Info().Msg("Headless browser started for JavaScript rendering")
	return nil
}

// Render navigates to the page, waits for scripts to settle, and returns
// the resulting DOM as HTML.
func (r *renderer) Render(ctx context.Context, pageURL string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(); err != nil {
		return "", err
	}

	// Run contexts must derive from the browser context, so caller
	// cancellation is propagated by hand
	runCtx, cancel := context.WithTimeout(r.browserCtx, r.timeout+r.waitTime)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	r.logger.Debug().
		Str("url", pageURL).
		Dur("duration", time.Since(start)).
		Msg("Rendered page with JavaScript")

	return html, nil
}

// Close shuts the browser down. Safe to call when it never started.
func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}

	r.browserCancel()
	r.allocatorCancel()
	r.started = false
	r.logger.Debug().Msg("Headless browser stopped")
}
