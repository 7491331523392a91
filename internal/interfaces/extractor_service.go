package interfaces

import "context"

// ExtractResult is the readable content pulled from one page
type ExtractResult struct {
	Title string
	Text  string // markdown
}

// ExtractorService fetches a URL and reduces it to readable text. Every
// failure mode (bad scheme, transport error, non-success status, unsupported
// content type, empty text after cleanup) surfaces as
// models.ErrExtractionFailed with stage detail in the wrapped message.
type ExtractorService interface {
	Extract(ctx context.Context, url string) (*ExtractResult, error)
}
