package interfaces

import "github.com/ternarybob/capsa/internal/models"

// Chunker splits raw text into overlapping fixed-size windows.
// Deterministic and side-effect free; window size and overlap are fixed at
// construction time.
type Chunker interface {
	// Chunk returns the fragments of text in left-to-right order. Empty text
	// yields an empty slice; text no longer than the window yields exactly
	// one fragment spanning the whole text.
	Chunk(text string) []models.Fragment

	// WindowSize returns the configured window size in characters
	WindowSize() int

	// Overlap returns the configured overlap in characters
	Overlap() int
}
