// Package client talks to the generation endpoints over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"zapp_server/internal/types"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client calls a zapp server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. Generation chains several
// model calls, so timeout should be generous; zero disables it.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate runs initial generation (nil filesystem) or an iterative change.
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	var res types.GenerateResponse
	if err := c.post(ctx, "/api/generate", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Preview re-derives preview code for the given active file.
func (c *Client) Preview(ctx context.Context, req types.PreviewRequest) (*types.GenerateResponse, error) {
	var res types.GenerateResponse
	if err := c.post(ctx, "/api/generate/preview", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GenerateSingle runs the single-file workflow.
func (c *Client) GenerateSingle(ctx context.Context, req types.SingleFileRequest) (*types.SingleFileResponse, error) {
	var res types.SingleFileResponse
	if err := c.post(ctx, "/api/generate/single", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateGist publishes Flutter preview code for DartPad.
func (c *Client) CreateGist(ctx context.Context, code string) (*types.GistResponse, error) {
	var res types.GistResponse
	if err := c.post(ctx, "/api/create-gist", types.GistRequest{Code: code}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %s", resp.Status)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
