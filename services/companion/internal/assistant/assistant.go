// Package assistant wraps the text generator used by the guide chat and the
// scene narration on the impaired main screen.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"irisguide/pkg/ai"
	"irisguide/pkg/domain"
)

const (
	Greeting       = "Hello! I'm your guide assistant. How can I help you support your user today?"
	MissingKey     = "Error: GEMINI_API_KEY missing. I cannot connect to the AI. Please ask your app developer to fix this."
	ChatFailure    = "I'm sorry, I encountered an error. Please try again."
	NarrateFailure = "I'm sorry, I couldn't process that. Please try again."
	// CannedScene is narrated when no generator is configured.
	CannedScene = "You are looking at a wooden desk with a laptop, a coffee mug, and a notebook on it. The laptop is open."

	narrateSystem = "You narrate surroundings for a visually impaired person wearing camera glasses. Answer in two short sentences."
)

// Assistant answers guide questions and narrates scenes.
type Assistant struct {
	gen ai.TextGenerator
}

// New returns nil when cfg has no API key, which callers render as unavailable.
func New(cfg ai.GeneratorConfig) (*Assistant, error) {
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.Provider != ai.ProviderOpenAICompat {
		return nil, nil
	}
	gen, err := ai.NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("init assistant: %w", err)
	}
	return &Assistant{gen: gen}, nil
}

// NewWithGenerator wraps an existing generator.
func NewWithGenerator(gen ai.TextGenerator) *Assistant {
	return &Assistant{gen: gen}
}

// Available reports whether a generator is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.gen != nil
}

// GuidePrompt is the prompt sent for a guide's question.
func GuidePrompt(question string) string {
	return fmt.Sprintf("You are an AI assistant for a guide helping a visually impaired person. The guide's question is: %q. Provide a helpful, empathetic, and concise response.", question)
}

// Ask answers a guide question.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if !a.Available() {
		return "", domain.ErrAssistantUnavailable
	}
	return a.gen.GenerateText(ctx, "", GuidePrompt(strings.TrimSpace(question)))
}

// Narrate describes a captured scene for the prompt. Without a generator it
// returns CannedScene; on generator failure it returns NarrateFailure.
func (a *Assistant) Narrate(ctx context.Context, prompt, scene string) string {
	if !a.Available() {
		return CannedScene
	}
	text, err := a.gen.GenerateText(ctx, narrateSystem,
		fmt.Sprintf("The camera sees: %s\nThe user asks: %s", scene, prompt))
	if err != nil {
		slog.Warn("narration failed", "err", err)
		return NarrateFailure
	}
	return text
}
