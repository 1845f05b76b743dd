package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ErrMissingCode is returned before any request when there is nothing to share.
var ErrMissingCode = errors.New("missing code")

const (
	description = "Zapp Flutter preview"
	fileName    = "main.dart"
)

// Client creates public single-file gists that DartPad can load.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a gist client against baseURL (e.g. https://api.github.com).
func NewClient(token, baseURL string, log *logrus.Entry) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type createRequest struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]file `json:"files"`
}

type file struct {
	Content string `json:"content"`
}

// Create uploads code as main.dart and returns the new gist id.
func (c *Client) Create(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrMissingCode
	}

	jsonData, err := json.Marshal(createRequest{
		Description: description,
		Public:      true,
		Files:       map[string]file{fileName: {Content: code}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal gist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gists", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create gist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send gist request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gist response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnf("Gist API error response body: %s", string(body))
		return "", fmt.Errorf("gist API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", fmt.Errorf("gist API response has no id")
	}
	c.log.WithField("gist_id", id).Info("Created gist")
	return id, nil
}
