package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunker(t *testing.T, window, overlap int) *Service {
	t.Helper()
	s, err := NewService(WithWindowSize(window), WithOverlap(overlap))
	require.NoError(t, err)
	return s
}

func TestNewService_Defaults(t *testing.T) {
	s, err := NewService()
	require.NoError(t, err)

	assert.Equal(t, DefaultWindowSize, s.WindowSize())
	assert.Equal(t, DefaultOverlap, s.Overlap())
}

func TestNewService_RejectsInvalidGeometry(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		overlap int
	}{
		{"overlap equals window", 100, 100},
		{"overlap exceeds window", 100, 150},
		{"negative overlap", 100, -1},
		{"zero window", 0, 0},
		{"negative window", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(WithWindowSize(tt.window), WithOverlap(tt.overlap))
			assert.Error(t, err)
		})
	}
}

func TestChunk_EmptyText(t *testing.T) {
	s := newTestChunker(t, 10, 3)
	assert.Empty(t, s.Chunk(""))
}

func TestChunk_TextWithinWindow(t *testing.T) {
	s := newTestChunker(t, 10, 3)

	fragments := s.Chunk("short")
	require.Len(t, fragments, 1)
	assert.Equal(t, "short", fragments[0].Text)
	assert.Equal(t, 0, fragments[0].StartOffset)
	assert.Equal(t, 5, fragments[0].EndOffset)
}

func TestChunk_TextExactlyWindow(t *testing.T) {
	s := newTestChunker(t, 10, 3)

	fragments := s.Chunk("0123456789")
	require.Len(t, fragments, 1)
	assert.Equal(t, "0123456789", fragments[0].Text)
	assert.Equal(t, 10, fragments[0].EndOffset)
}

func TestChunk_SlidingWindowOffsets(t *testing.T) {
	// window 10, overlap 3 -> step 7
	s := newTestChunker(t, 10, 3)
	text := "abcdefghijklmnopqrst" // 20 chars

	fragments := s.Chunk(text)
	require.Len(t, fragments, 3)

	assert.Equal(t, "abcdefghij", fragments[0].Text)
	assert.Equal(t, 0, fragments[0].StartOffset)
	assert.Equal(t, 10, fragments[0].EndOffset)

	assert.Equal(t, "hijklmnopq", fragments[1].Text)
	assert.Equal(t, 7, fragments[1].StartOffset)
	assert.Equal(t, 17, fragments[1].EndOffset)

	assert.Equal(t, "opqrst", fragments[2].Text)
	assert.Equal(t, 14, fragments[2].StartOffset)
	assert.Equal(t, 20, fragments[2].EndOffset)
}

func TestChunk_ConsecutiveFragmentsOverlap(t *testing.T) {
	s := newTestChunker(t, 10, 3)
	text := strings.Repeat("abcdefg", 10) // 70 chars

	fragments := s.Chunk(text)
	require.Greater(t, len(fragments), 1)

	for i := 1; i < len(fragments); i++ {
		prev, curr := fragments[i-1], fragments[i]
		assert.Equal(t, prev.StartOffset+7, curr.StartOffset, "fragment %d start", i)

		// Shared region reads identically from both fragments
		if prev.EndOffset > curr.StartOffset {
			shared := prev.EndOffset - curr.StartOffset
			prevTail := prev.Text[len(prev.Text)-shared:]
			currHead := curr.Text[:shared]
			assert.Equal(t, prevTail, currHead, "fragment %d overlap", i)
		}
	}
}

func TestChunk_CoversEntireText(t *testing.T) {
	s := newTestChunker(t, 10, 3)
	text := strings.Repeat("x", 95)

	fragments := s.Chunk(text)
	require.NotEmpty(t, fragments)

	assert.Equal(t, 0, fragments[0].StartOffset)
	assert.Equal(t, len(text), fragments[len(fragments)-1].EndOffset)

	// No gap between consecutive fragments
	for i := 1; i < len(fragments); i++ {
		assert.LessOrEqual(t, fragments[i].StartOffset, fragments[i-1].EndOffset)
	}
}

func TestChunk_OffsetsIndexOriginalText(t *testing.T) {
	s := newTestChunker(t, 10, 3)
	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	runes := []rune(text)

	for _, f := range s.Chunk(text) {
		assert.Equal(t, string(runes[f.StartOffset:f.EndOffset]), f.Text)
	}
}

func TestChunk_MultiByteCharacters(t *testing.T) {
	s := newTestChunker(t, 4, 1)
	text := "héllø wörld" // 11 runes, 14 bytes

	fragments := s.Chunk(text)
	require.NotEmpty(t, fragments)

	runes := []rune(text)
	for _, f := range fragments {
		assert.Equal(t, string(runes[f.StartOffset:f.EndOffset]), f.Text)
	}
	assert.Equal(t, len(runes), fragments[len(fragments)-1].EndOffset)
}

func TestChunk_ZeroOverlap(t *testing.T) {
	s := newTestChunker(t, 5, 0)
	text := "0123456789abcde" // 15 chars -> 3 contiguous fragments

	fragments := s.Chunk(text)
	require.Len(t, fragments, 3)
	assert.Equal(t, "01234", fragments[0].Text)
	assert.Equal(t, "56789", fragments[1].Text)
	assert.Equal(t, "abcde", fragments[2].Text)
}

func TestChunk_Deterministic(t *testing.T) {
	s := newTestChunker(t, 10, 3)
	text := strings.Repeat("deterministic ", 20)

	first := s.Chunk(text)
	second := s.Chunk(text)
	assert.Equal(t, first, second)
}

func TestChunk_DefaultGeometry(t *testing.T) {
	s, err := NewService()
	require.NoError(t, err)

	// 1000 chars with window 500, overlap 50 -> starts at 0, 450, 900
	text := strings.Repeat("a", 1000)
	fragments := s.Chunk(text)
	require.Len(t, fragments, 3)

	assert.Equal(t, 0, fragments[0].StartOffset)
	assert.Equal(t, 500, fragments[0].EndOffset)
	assert.Equal(t, 450, fragments[1].StartOffset)
	assert.Equal(t, 950, fragments[1].EndOffset)
	assert.Equal(t, 900, fragments[2].StartOffset)
	assert.Equal(t, 1000, fragments[2].EndOffset)
}
