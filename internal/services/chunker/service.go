// Package chunker splits item text into overlapping fragments sized for
// embedding. Fragments are rune-based so multi-byte text never splits
// mid-character.
package chunker

import (
	"fmt"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

const (
	// DefaultWindowSize is the default fragment length in characters.
	DefaultWindowSize = 500

	// DefaultOverlap is the default number of characters shared between
	// consecutive fragments.
	DefaultOverlap = 50
)

// Service implements the Chunker interface with a sliding character window.
type Service struct {
	windowSize int
	overlap    int
}

var _ interfaces.Chunker = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithWindowSize sets a custom window size.
func WithWindowSize(windowSize int) Option {
	return func(s *Service) {
		s.windowSize = windowSize
	}
}

// WithOverlap sets a custom overlap.
func WithOverlap(overlap int) Option {
	return func(s *Service) {
		s.overlap = overlap
	}
}

// NewService creates a chunker. The overlap must stay below the window size,
// violations are configuration errors reported here and never at chunk time.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.windowSize <= 0 {
		return nil, fmt.Errorf("chunker window size must be positive, got %d", s.windowSize)
	}
	if s.overlap < 0 {
		return nil, fmt.Errorf("chunker overlap cannot be negative, got %d", s.overlap)
	}
	if s.overlap >= s.windowSize {
		return nil, fmt.Errorf("chunker overlap (%d) must be smaller than window size (%d)", s.overlap, s.windowSize)
	}

	return s, nil
}

// Chunk splits text into ordered fragments. Each fragment starts
// windowSize-overlap characters after the previous one and runs for
// windowSize characters, truncated at the text end. Text that fits in a
// single window produces exactly one fragment; empty text produces none.
func (s *Service) Chunk(text string) []models.Fragment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.windowSize {
		return []models.Fragment{{
			Text:        text,
			StartOffset: 0,
			EndOffset:   len(runes),
		}}
	}

	step := s.windowSize - s.overlap
	fragments := make([]models.Fragment, 0, (len(runes)+step-1)/step)

	for start := 0; start < len(runes); start += step {
		end := start + s.windowSize
		if end > len(runes) {
			end = len(runes)
		}
		fragments = append(fragments, models.Fragment{
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
	}

	return fragments
}

// WindowSize returns the configured window size.
func (s *Service) WindowSize() int {
	return s.windowSize
}

// Overlap returns the configured overlap.
func (s *Service) Overlap() int {
	return s.overlap
}
