package models

import "errors"

// Failure kinds surfaced by the ingestion and query pipelines. Callers match
// with errors.Is to decide how to report a failure; layers add context with
// fmt.Errorf("%w: ...", kind) so the kind survives wrapping.
var (
	// ErrInvalidContent rejects empty, whitespace-only, or oversized note content
	ErrInvalidContent = errors.New("invalid content")

	// ErrInvalidQuery rejects an empty or whitespace-only question
	ErrInvalidQuery = errors.New("invalid query")

	// ErrExtractionFailed marks a URL whose page could not be fetched or reduced to text
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingUnavailable marks a failed call to the embedding provider
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable marks a failed call to the generation provider
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrNotFound is returned by the record store for unknown item ids
	ErrNotFound = errors.New("item not found")
)
