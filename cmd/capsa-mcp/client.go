package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/capsa/internal/models"
)

// apiClient is a thin JSON client for the Capsa HTTP API
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http: &http.Client{
			// Queries wait on a generation call; match the server's write
			// timeout
			Timeout: 120 * time.Second,
		},
	}
}

// listItem mirrors one row of the GET /api/items response
type listItem struct {
	ID         string    `json:"id"`
	SourceKind string    `json:"source_kind"`
	OriginURL  string    `json:"origin_url,omitempty"`
	Title      string    `json:"title,omitempty"`
	Preview    string    `json:"preview"`
	Chars      int       `json:"chars"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ask runs POST /api/query
func (c *apiClient) Ask(ctx context.Context, question string, maxResults int) (*models.Answer, error) {
	payload := map[string]interface{}{"question": question}
	if maxResults > 0 {
		payload["max_results"] = maxResults
	}

	var answer models.Answer
	if err := c.postJSON(ctx, "/api/query", payload, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// Ingest runs POST /api/ingest
func (c *apiClient) Ingest(ctx context.Context, kind, content string) (*models.Item, error) {
	payload := map[string]string{"source_kind": kind, "content": content}

	var item models.Item
	if err := c.postJSON(ctx, "/api/ingest", payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems runs GET /api/items
func (c *apiClient) ListItems(ctx context.Context, kind string, limit int) ([]listItem, error) {
	query := url.Values{}
	if kind != "" {
		query.Set("source_kind", kind)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/items"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp struct {
		Items []listItem `json:"items"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DeleteItem runs DELETE /api/items/{id}
func (c *apiClient) DeleteItem(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/items/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *apiClient) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *apiClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request, surfacing the server's error message on non-2xx
// responses
func (c *apiClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("capsa server unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("capsa API %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("capsa API %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
