package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"zapp_server/config"
)

// Completion is one single-turn request to the model. Nothing is carried
// over between completions.
type Completion struct {
	System string
	Prompt string
	Images []string // data: URLs or https URLs
}

// Completer is a text-completion backend.
type Completer interface {
	Complete(ctx context.Context, c Completion) (string, error)
	Model() string
}

// NewCompleter builds the backend selected by cfg.LLMProvider. The result
// may implement io.Closer.
func NewCompleter(ctx context.Context, cfg config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey(), cfg.OpenAIBaseURL, cfg.ModelID), nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey(), cfg.ModelID)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

// decodeDataURL splits "data:image/png;base64,...." into the image subtype
// ("png") and the decoded bytes.
func decodeDataURL(u string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	mime, enc, _ := strings.Cut(meta, ";")
	format, ok := strings.CutPrefix(mime, "image/")
	if !ok || format == "" {
		return "", nil, fmt.Errorf("data URL is not an image (%q)", mime)
	}
	if enc != "base64" {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return format, data, nil
}
