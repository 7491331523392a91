package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

type mockIngestService struct {
	ingestFunc func(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockIngestService) Ingest(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error) {
	return m.ingestFunc(ctx, kind, content)
}

func (m *mockIngestService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockIngestService) RebuildIndex(ctx context.Context) (*interfaces.RebuildResult, error) {
	return &interfaces.RebuildResult{}, nil
}

func (m *mockIngestService) Refresh(ctx context.Context, id string) (*models.Item, error) {
	return nil, fmt.Errorf("not supported in test")
}

func (m *mockIngestService) ImportFile(ctx context.Context, path string) (*interfaces.ImportResult, error) {
	return nil, fmt.Errorf("not supported in test")
}

type mockItemStorage struct {
	getFunc   func(ctx context.Context, id string) (*models.Item, error)
	listFunc  func(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error)
	countFunc func(ctx context.Context) (int, error)
}

func (m *mockItemStorage) Save(ctx context.Context, item *models.Item) error { return nil }

func (m *mockItemStorage) Get(ctx context.Context, id string) (*models.Item, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockItemStorage) List(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, kind, limit)
	}
	return nil, nil
}

func (m *mockItemStorage) Delete(ctx context.Context, id string) error { return models.ErrNotFound }

func (m *mockItemStorage) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockExportService struct {
	itemToPDFFunc func(item *models.Item) ([]byte, error)
}

func (m *mockExportService) ItemToPDF(item *models.Item) ([]byte, error) {
	return m.itemToPDFFunc(item)
}

func TestIngestHandler_CreatesNote(t *testing.T) {
	var gotKind models.SourceKind
	var gotContent string

	ingest := &mockIngestService{
		ingestFunc: func(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error) {
			gotKind = kind
			gotContent = content
			return &models.Item{
				ID:         "item_1",
				SourceKind: kind,
				RawText:    content,
				CreatedAt:  time.Now().UTC(),
			}, nil
		},
	}

	handler := NewItemHandler(ingest, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	body, _ := json.Marshal(IngestRequest{SourceKind: "note", Content: "The sky is blue."})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.IngestHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.SourceNote, gotKind)
	assert.Equal(t, "The sky is blue.", gotContent)

	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "item_1", item.ID)
}

func TestIngestHandler_RejectsUnknownSourceKind(t *testing.T) {
	handler := NewItemHandler(&mockIngestService{}, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	body := []byte(`{"source_kind":"rss","content":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.IngestHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandler_MapsFailureKindsToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid content", fmt.Errorf("%w: note is empty", models.ErrInvalidContent), http.StatusBadRequest},
		{"extraction failed", fmt.Errorf("%w: host unreachable", models.ErrExtractionFailed), http.StatusUnprocessableEntity},
		{"embedding unavailable", fmt.Errorf("%w: provider down", models.ErrEmbeddingUnavailable), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := &mockIngestService{
				ingestFunc: func(ctx context.Context, kind models.SourceKind, content string) (*models.Item, error) {
					return nil, tt.err
				},
			}
			handler := NewItemHandler(ingest, &mockItemStorage{}, &mockExportService{}, createTestLogger())

			body := []byte(`{"source_kind":"note","content":"x"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.IngestHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestIngestHandler_MethodNotAllowed(t *testing.T) {
	handler := NewItemHandler(&mockIngestService{}, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/ingest", nil)
	rec := httptest.NewRecorder()

	handler.IngestHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListHandler_TruncatesPreviews(t *testing.T) {
	long := strings.Repeat("a", 500)
	storage := &mockItemStorage{
		listFunc: func(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error) {
			return []*models.Item{
				{ID: "item_1", SourceKind: models.SourceNote, RawText: long},
				{ID: "item_2", SourceKind: models.SourceURL, OriginURL: "https://example.com", RawText: "short"},
			}, nil
		},
	}
	handler := NewItemHandler(&mockIngestService{}, storage, &mockExportService{}, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []itemSummary `json:"items"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Len(t, []rune(resp.Items[0].Preview), previewChars+3) // 200 runes plus "..."
	assert.Equal(t, 500, resp.Items[0].Chars)
	assert.Equal(t, "short", resp.Items[1].Preview)
}

func TestListHandler_PassesKindFilter(t *testing.T) {
	var gotKind models.SourceKind
	var gotLimit int
	storage := &mockItemStorage{
		listFunc: func(ctx context.Context, kind models.SourceKind, limit int) ([]*models.Item, error) {
			gotKind = kind
			gotLimit = limit
			return nil, nil
		},
	}
	handler := NewItemHandler(&mockIngestService{}, storage, &mockExportService{}, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/items?source_kind=url&limit=3", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SourceURL, gotKind)
	assert.Equal(t, 3, gotLimit)
}

func TestListHandler_RejectsBadKind(t *testing.T) {
	handler := NewItemHandler(&mockIngestService{}, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/items?source_kind=feed", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandler_NotFound(t *testing.T) {
	handler := NewItemHandler(&mockIngestService{}, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/items/item_missing", nil)
	rec := httptest.NewRecorder()

	handler.GetHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHandler_SecondDeleteReportsNotFound(t *testing.T) {
	deleted := map[string]bool{}
	ingest := &mockIngestService{
		deleteFunc: func(ctx context.Context, id string) error {
			if deleted[id] {
				return fmt.Errorf("%w: %s", models.ErrNotFound, id)
			}
			deleted[id] = true
			return nil
		},
	}
	handler := NewItemHandler(ingest, &mockItemStorage{}, &mockExportService{}, createTestLogger())

	rec := httptest.NewRecorder()
	handler.DeleteHandler(rec, httptest.NewRequest(http.MethodDelete, "/api/items/item_1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.DeleteHandler(rec, httptest.NewRequest(http.MethodDelete, "/api/items/item_1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandler_ReturnsPDF(t *testing.T) {
	storage := &mockItemStorage{
		getFunc: func(ctx context.Context, id string) (*models.Item, error) {
			return &models.Item{ID: id, SourceKind: models.SourceNote, RawText: "# Title"}, nil
		},
	}
	export := &mockExportService{
		itemToPDFFunc: func(item *models.Item) ([]byte, error) {
			return []byte("%PDF-1.7 fake"), nil
		},
	}
	handler := NewItemHandler(&mockIngestService{}, storage, export, createTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/items/item_1/export", nil)
	rec := httptest.NewRecorder()

	handler.ExportHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "item_1.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}
