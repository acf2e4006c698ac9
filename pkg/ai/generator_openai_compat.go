package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAICompatGenerator calls any OpenAI-compatible /chat/completions endpoint,
// including local runtimes such as Ollama, vLLM and LiteLLM.
type OpenAICompatGenerator struct {
	model string
	http  *resty.Client
}

// NewOpenAICompatGenerator builds an OpenAI-compatible TextGenerator.
// baseURL should include the /v1 prefix, e.g. "http://localhost:11434/v1".
// apiKey can be empty for local models.
func NewOpenAICompatGenerator(baseURL, apiKey, model string) *OpenAICompatGenerator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(120*time.Second).
		SetHeader("Content-Type", "application/json")
	if key := strings.TrimSpace(apiKey); key != "" {
		client.SetAuthToken(key)
	}
	return &OpenAICompatGenerator{model: strings.TrimSpace(model), http: client}
}

// GenerateText implements TextGenerator using the chat completions API.
func (g *OpenAICompatGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.model == "" {
		return "", fmt.Errorf("openai-compat generation model required")
	}
	messages := make([]oaiMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, oaiMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: userPrompt})

	var (
		out     oaiChatResponse
		errBody oaiErrorResponse
	)
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(oaiChatRequest{Model: g.model, Messages: messages}).
		SetResult(&out).
		SetError(&errBody).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai-compat request: %w", err)
	}
	if resp.IsError() {
		if errBody.Error.Message != "" {
			return "", fmt.Errorf("openai-compat api error: %s", errBody.Error.Message)
		}
		return "", fmt.Errorf("openai-compat api error: %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
