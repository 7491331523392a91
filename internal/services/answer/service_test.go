package answer

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
	"github.com/ternarybob/capsa/internal/services/embeddings"
	"github.com/ternarybob/capsa/internal/services/events"
	"github.com/ternarybob/capsa/internal/services/index"
	"github.com/ternarybob/capsa/internal/storage/badger"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

const trigramDims = 64

func embedText(text string) []float32 {
	vector := make([]float32, trigramDims)
	runes := []rune(strings.ToLower(text))
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vector[h.Sum32()%trigramDims]++
	}
	return vector
}

type trigramEmbedder struct{}

func (e *trigramEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedText(text)
	}
	return vectors, nil
}

func (e *trigramEmbedder) ModelName() string { return "trigram-test-embedder" }

type failingEmbedder struct{}

func (e *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("provider down")
}

func (e *failingEmbedder) ModelName() string { return "failing-embedder" }

type mockGenerator struct {
	generateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	calls        int
	lastSystem   string
	lastUser     string
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	if m.generateFunc != nil {
		return m.generateFunc(ctx, systemPrompt, userPrompt)
	}
	return "mock answer", nil
}

func (m *mockGenerator) ModelName() string { return "mock-generation-model" }

type answerFixture struct {
	service   *Service
	storage   interfaces.ItemStorage
	index     *index.Service
	generator *mockGenerator
}

func newAnswerFixture(t *testing.T, client interfaces.EmbeddingClient, generator *mockGenerator) *answerFixture {
	t.Helper()
	logger := createTestLogger()

	config := common.NewDefaultConfig()
	config.Storage.Dir = t.TempDir()

	manager, err := badger.NewManager(logger, &config.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	if client == nil {
		client = &trigramEmbedder{}
	}
	if generator == nil {
		generator = &mockGenerator{}
	}

	gateway := embeddings.NewService(client, 0, logger)
	idx := index.NewService(logger)
	eventService := events.NewService(logger)
	t.Cleanup(func() { eventService.Close() })

	service := NewService(config, manager.ItemStorage(), gateway, idx, generator, eventService, logger)

	return &answerFixture{
		service:   service,
		storage:   manager.ItemStorage(),
		index:     idx,
		generator: generator,
	}
}

// seed stores an item and indexes one chunk per text with its trigram vector
func (f *answerFixture) seed(t *testing.T, item *models.Item, chunkTexts ...string) {
	t.Helper()
	require.NoError(t, f.storage.Save(context.Background(), item))
	for i, text := range chunkTexts {
		f.index.Insert(models.Chunk{
			ChunkID:     fmt.Sprintf("chunk_%s_%d", item.ID, i),
			ItemID:      item.ID,
			Text:        text,
			StartOffset: 0,
			EndOffset:   len([]rune(text)),
		}, embedText(text))
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)

	_, err := f.service.Answer(context.Background(), "", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidQuery)
	assert.Equal(t, 0, f.generator.calls)
}

func TestAnswer_WhitespaceQuestion(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)

	_, err := f.service.Answer(context.Background(), "  \n\t ", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidQuery)
}

func TestAnswer_EmptyIndexStillCallsGeneration(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "I have nothing stored about that.", nil
		},
	}
	f := newAnswerFixture(t, nil, generator)

	answer, err := f.service.Answer(context.Background(), "What is in my inbox?", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, "I have nothing stored about that.", answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Contains(t, f.generator.lastUser, "(no stored knowledge matched this question)")
}

func TestAnswer_CitationOrder(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)

	sky := &models.Item{ID: "item_sky", SourceKind: models.SourceNote, RawText: "The sky is blue."}
	cats := &models.Item{ID: "item_cats", SourceKind: models.SourceNote, RawText: "Cats are mammals."}
	f.seed(t, sky, "The sky is blue.")
	f.seed(t, cats, "Cats are mammals.")

	answer, err := f.service.Answer(context.Background(), "What color is the sky?", 5)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "item_sky", answer.Citations[0].ItemID)
	assert.Equal(t, models.SourceNote, answer.Citations[0].SourceKind)
	assert.Equal(t, "The sky is blue.", answer.Citations[0].Snippet)
	assert.Greater(t, answer.Citations[0].Score, answer.Citations[1].Score)
}

func TestAnswer_PromptCarriesContextAndInstructions(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)
	f.seed(t, &models.Item{ID: "item_1", SourceKind: models.SourceNote, RawText: "Gophers live in burrows."}, "Gophers live in burrows.")

	_, err := f.service.Answer(context.Background(), "Where do gophers live?", 5)
	require.NoError(t, err)

	assert.Equal(t, systemPrompt, f.generator.lastSystem)
	assert.Contains(t, f.generator.lastUser, "[Source 1 | note | relevance ")
	assert.Contains(t, f.generator.lastUser, "Gophers live in burrows.")
	assert.Contains(t, f.generator.lastUser, "Question: Where do gophers live?")
	assert.Contains(t, f.generator.lastUser, "Cite the sources you used by their number.")
}

func TestAnswer_URLCitationCarriesOrigin(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)
	f.seed(t, &models.Item{
		ID:         "item_page",
		SourceKind: models.SourceURL,
		OriginURL:  "https://example.org/guide",
		Title:      "The Guide",
		RawText:    "Always bring a towel.",
	}, "Always bring a towel.")

	answer, err := f.service.Answer(context.Background(), "What should I bring?", 5)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 1)
	citation := answer.Citations[0]
	assert.Equal(t, models.SourceURL, citation.SourceKind)
	assert.Equal(t, "https://example.org/guide", citation.OriginURL)
	assert.Equal(t, "The Guide", citation.Title)

	assert.Contains(t, f.generator.lastUser, "[Source 1 | url | https://example.org/guide | relevance ")
}

func TestAnswer_SnippetTruncatesLongChunks(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)
	long := strings.Repeat("lorem ipsum ", 30) // well past the snippet bound
	f.seed(t, &models.Item{ID: "item_long", SourceKind: models.SourceNote, RawText: long}, long)

	answer, err := f.service.Answer(context.Background(), "lorem ipsum", 5)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 1)
	got := answer.Citations[0].Snippet
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, string([]rune(long)[:200])+"...", got)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", fmt.Errorf("model overloaded")
		},
	}
	f := newAnswerFixture(t, nil, generator)

	_, err := f.service.Answer(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	f := newAnswerFixture(t, &failingEmbedder{}, nil)

	_, err := f.service.Answer(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
	assert.Equal(t, 0, f.generator.calls)
}

func TestAnswer_RendersHTML(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "# Summary\n\nSome **bold** claim.", nil
		},
	}
	f := newAnswerFixture(t, nil, generator)

	answer, err := f.service.Answer(context.Background(), "summarize", 5)
	require.NoError(t, err)

	assert.Equal(t, "mock-generation-model", answer.Model)
	assert.Contains(t, answer.HTML, "<h1")
	assert.Contains(t, answer.HTML, "<strong>bold</strong>")
}

func TestAnswer_MaxResultsFallsBackToConfig(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("item_%d", i)
		text := fmt.Sprintf("gopher fact number %d", i)
		f.seed(t, &models.Item{ID: id, SourceKind: models.SourceNote, RawText: text}, text)
	}

	// Default retrieval.max_results is 5
	answer, err := f.service.Answer(context.Background(), "gopher facts", 0)
	require.NoError(t, err)
	assert.Len(t, answer.Citations, 5)

	answer, err = f.service.Answer(context.Background(), "gopher facts", 2)
	require.NoError(t, err)
	assert.Len(t, answer.Citations, 2)
}

func TestAnswer_SkipsChunksOfVanishedItems(t *testing.T) {
	f := newAnswerFixture(t, nil, nil)
	f.seed(t, &models.Item{ID: "item_real", SourceKind: models.SourceNote, RawText: "a real stored note"}, "a real stored note")

	// Indexed chunk with no stored item behind it
	f.index.Insert(models.Chunk{
		ChunkID: "chunk_ghost",
		ItemID:  "item_ghost",
		Text:    "a real stored note",
	}, embedText("a real stored note"))

	answer, err := f.service.Answer(context.Background(), "real stored note", 5)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "item_real", answer.Citations[0].ItemID)
}

func TestBuildUserPrompt_EmptyContext(t *testing.T) {
	prompt := buildUserPrompt("any question", nil)
	assert.Contains(t, prompt, emptyContextNotice)
	assert.Contains(t, prompt, "Question: any question")
}

func TestFormatContextBlock(t *testing.T) {
	note := &models.Item{ID: "item_n", SourceKind: models.SourceNote}
	block := formatContextBlock(2, note, interfaces.SearchResult{
		Chunk: models.Chunk{Text: "note text"},
		Score: 0.876,
	})
	assert.Equal(t, "[Source 2 | note | relevance 0.88]\nnote text", block)

	page := &models.Item{ID: "item_u", SourceKind: models.SourceURL, OriginURL: "https://example.org/"}
	block = formatContextBlock(1, page, interfaces.SearchResult{
		Chunk: models.Chunk{Text: "page text"},
		Score: 0.5,
	})
	assert.Equal(t, "[Source 1 | url | https://example.org/ | relevance 0.50]\npage text", block)
}
