package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/models"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func newTestService(mutate func(*common.Config)) *Service {
	config := common.NewDefaultConfig()
	if mutate != nil {
		mutate(config)
	}
	return NewService(config, createTestLogger())
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func TestExtract_HTMLPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	service := newTestService(nil)
	result, err := service.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Go Memory Model", result.Title)
	assert.Contains(t, result.Text, "memory model specifies")
	assert.NotContains(t, result.Text, "trackVisitor")
}

func TestExtract_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>ok</p></body></html>`))
	}))
	defer server.Close()

	service := newTestService(nil)
	_, err := service.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestExtract_RejectsUnsupportedScheme(t *testing.T) {
	service := newTestService(nil)

	_, err := service.Extract(context.Background(), "ftp://example.org/file")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "scheme")
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	service := newTestService(nil)
	_, err := service.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "404")
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not": "a page"}`))
	}))
	defer server.Close()

	service := newTestService(nil)
	_, err := service.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "application/json")
}

func TestExtract_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><script>only();</script></body></html>`))
	}))
	defer server.Close()

	service := newTestService(nil)
	_, err := service.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "no readable text")
}

func TestExtract_BodySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>` + string(make([]byte, 4096)) + `</p></body></html>`))
	}))
	defer server.Close()

	service := newTestService(func(config *common.Config) {
		config.Extractor.MaxBodySize = 64
	})

	_, err := service.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "limit")
}

func TestExtract_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	service := newTestService(nil)
	_, err := service.Extract(context.Background(), deadURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestExtract_MissingContentTypeTreatedAsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No explicit Content-Type; Go sniffs HTML from the body
		w.Write([]byte(`<html><head><title>Sniffed</title></head><body><p>hello there</p></body></html>`))
	}))
	defer server.Close()

	service := newTestService(nil)
	result, err := service.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Sniffed", result.Title)
	assert.Contains(t, result.Text, "hello there")
}

func TestClose_WithoutRenderer(t *testing.T) {
	service := newTestService(nil)
	assert.NotPanics(t, func() { service.Close() })
}
