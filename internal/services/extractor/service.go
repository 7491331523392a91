// Package extractor turns a web page into readable text for ingestion.
// HTML pages are cleaned and converted to markdown, PDF responses go
// through pdfcpu, and an optional headless browser renders
// JavaScript-heavy pages first. Every failure on the way maps to
// ErrExtractionFailed so callers see a single error kind.
package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// Service implements the ExtractorService interface
type Service struct {
	config   *common.ExtractorConfig
	fetcher  *fetcher
	renderer *renderer // nil unless JavaScript rendering is enabled
	logger   arbor.ILogger
}

var _ interfaces.ExtractorService = (*Service)(nil)

// NewService creates a page extractor from the extractor config section.
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	s := &Service{
		config:  &config.Extractor,
		fetcher: newFetcher(&config.Extractor, logger),
		logger:  logger,
	}

	if config.Extractor.EnableJavaScript {
		s.renderer = newRenderer(&config.Extractor, logger)
	}

	return s
}

// Extract fetches the page and returns its title and readable text.
func (s *Service) Extract(ctx context.Context, pageURL string) (*interfaces.ExtractResult, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", models.ErrExtractionFailed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported url scheme '%s'", models.ErrExtractionFailed, parsed.Scheme)
	}

	// Rendered pages skip the plain fetch and always come back as HTML
	if s.renderer != nil {
		html, err := s.renderer.Render(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: render: %v", models.ErrExtractionFailed, err)
		}
		return s.fromHTML(html, pageURL)
	}

	body, contentType, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", models.ErrExtractionFailed, err)
	}

	if isPDF(contentType, parsed.Path) {
		text, err := extractPDFText(body, s.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: pdf: %v", models.ErrExtractionFailed, err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: pdf contained no extractable text", models.ErrExtractionFailed)
		}
		return &interfaces.ExtractResult{
			Title: pdfTitle(parsed),
			Text:  text,
		}, nil
	}

	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: unsupported content type '%s'", models.ErrExtractionFailed, contentType)
	}

	return s.fromHTML(string(body), pageURL)
}

// Close releases the headless browser if one was started.
func (s *Service) Close() {
	if s.renderer != nil {
		s.renderer.Close()
	}
}

func (s *Service) fromHTML(html, pageURL string) (*interfaces.ExtractResult, error) {
	title, text, err := processHTML(html, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", models.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: page contained no readable text", models.ErrExtractionFailed)
	}

	s.logger.Debug().
		Str("url", pageURL).
		Str("title", title).
		Int("text_length", len(text)).
		Msg("Extracted page content")

	return &interfaces.ExtractResult{
		Title: title,
		Text:  text,
	}, nil
}

// isHTML accepts text/html and xhtml responses. A missing Content-Type is
// treated as HTML since that is by far the most common sloppy server
// behavior.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml")
}

// isPDF detects a PDF by Content-Type or by path extension.
func isPDF(contentType, path string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// pdfTitle derives a display title from the PDF's filename.
func pdfTitle(parsed *url.URL) string {
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	name := segments[len(segments)-1]
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".pdf"), ".PDF")
	return strings.ReplaceAll(name, "-", " ")
}
