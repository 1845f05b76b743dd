package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiClient completes prompts with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient opens a Gemini client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Model implements Completer.
func (c *GeminiClient) Model() string { return c.model }

// Close releases the underlying connection.
func (c *GeminiClient) Close() error { return c.client.Close() }

// Complete implements Completer. Only data: URL images can be inlined;
// other image references are skipped.
func (c *GeminiClient) Complete(ctx context.Context, in Completion) (string, error) {
	m := c.client.GenerativeModel(c.model)
	if in.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(in.System))
	}

	parts := []genai.Part{genai.Text(in.Prompt)}
	for i, img := range in.Images {
		format, data, err := decodeDataURL(img)
		if err != nil {
			logrus.WithField("component", "gemini").Warnf("Skipping image %d: %v", i, err)
			continue
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate content failed: %w", ErrUpstream, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty response", ErrUpstream)
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
