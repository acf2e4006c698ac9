package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"irisguide/pkg/ai"
	"irisguide/pkg/domain"
)

type fakeGen struct {
	prompt string
	err    error
}

func (f *fakeGen) GenerateText(_ context.Context, _, userPrompt string) (string, error) {
	f.prompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return "stay calm", nil
}

func TestNewWithoutKeyIsUnavailable(t *testing.T) {
	a, err := New(ai.GeneratorConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.Available() {
		t.Fatalf("expected unavailable assistant")
	}
	if _, err := a.Ask(context.Background(), "hi"); !errors.Is(err, domain.ErrAssistantUnavailable) {
		t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
	}
	if got := a.Narrate(context.Background(), "What's in front of me?", "desk"); got != CannedScene {
		t.Fatalf("narrate = %q", got)
	}
}

func TestAskUsesGuidePrompt(t *testing.T) {
	gen := &fakeGen{}
	a := NewWithGenerator(gen)
	got, err := a.Ask(context.Background(), "  How do I calm them?  ")
	if err != nil || got != "stay calm" {
		t.Fatalf("ask: %q %v", got, err)
	}
	if !strings.Contains(gen.prompt, `The guide's question is: "How do I calm them?"`) {
		t.Fatalf("prompt = %q", gen.prompt)
	}
}

func TestNarrateFailure(t *testing.T) {
	a := NewWithGenerator(&fakeGen{err: errors.New("down")})
	if got := a.Narrate(context.Background(), "p", "s"); got != NarrateFailure {
		t.Fatalf("narrate = %q", got)
	}
}
