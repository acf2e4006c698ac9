package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// TextGenerator generates text from a system prompt and user prompt.
// Gemini and OpenAI-compatible providers implement this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider names accepted by NewGenerator.
const (
	ProviderGemini       = "gemini"
	ProviderOpenAICompat = "openai-compat"
)

// GeneratorConfig selects and configures a provider.
type GeneratorConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewGenerator builds the configured provider. A missing API key for Gemini is
// an error; callers treat it as "assistant unavailable".
func NewGenerator(cfg GeneratorConfig) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		client, err := NewGeminiClient(cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return NewGeminiGenerator(client, cfg.Model), nil
	case ProviderOpenAICompat:
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, errors.New("openai-compat base url required")
		}
		return NewOpenAICompatGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, errors.New("unknown ai provider: " + cfg.Provider)
	}
}
