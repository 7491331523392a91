package interfaces

import (
	"context"

	"github.com/ternarybob/capsa/internal/models"
)

// RebuildResult reports one index rebuild pass over the record store
type RebuildResult struct {
	Items   int // items successfully re-chunked, re-embedded, and indexed
	Chunks  int // chunks inserted
	Skipped int // items skipped because embedding or indexing failed
}

// ImportResult reports one bulk import run
type ImportResult struct {
	Ingested int
	Failed   int
	Errors   []string
}

// IngestService owns the write side of the pipeline: turning notes and URLs
// into stored items with indexed chunks, and removing them again. Visible
// state is all-or-nothing: a failed ingest leaves neither a stored item nor
// indexed chunks behind.
type IngestService interface {
	// Ingest creates a new item from the given source. For SourceURL the
	// content is the page address; for SourceNote it is the note text.
	Ingest(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error)

	// Delete removes the item from the record store and its chunks from the
	// index. Unknown ids return models.ErrNotFound without touching the
	// index.
	Delete(ctx context.Context, id string) error

	// RebuildIndex repopulates the vector index from the record store by
	// re-running the chunker and embedding gateway over every stored item.
	// Per-item failures are logged and counted, not fatal.
	RebuildIndex(ctx context.Context) (*RebuildResult, error)

	// Refresh re-extracts a url item's page and re-ingests it under a new
	// id, removing the old item. Note items are rejected.
	Refresh(ctx context.Context, id string) (*models.Item, error)

	// ImportFile bulk-ingests entries from a YAML seed file through the
	// normal pipeline. Per-entry failures are collected, not fatal.
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}
