package nav

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"irisguide/pkg/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNavigator() (*Navigator, *Registry) {
	reg := NewRegistry(HandlerFunc(func(context.Context, State) error { return nil }))
	return New(reg, quietLogger()), reg
}

func TestNavigatorStartsAtWelcome(t *testing.T) {
	n, _ := newTestNavigator()
	if st := n.State(); st.Screen != Welcome || st.Payload != nil {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestGotoCarriesPayload(t *testing.T) {
	n, _ := newTestNavigator()
	p := LegalTextPayload{Title: "Terms of Service", Content: "...", Return: Register}
	n.Goto(LegalText, p)
	st := n.State()
	if st.Screen != LegalText {
		t.Fatalf("screen = %s", st.Screen)
	}
	got, ok := st.Payload.(LegalTextPayload)
	if !ok || got.Return != Register || got.Title != "Terms of Service" {
		t.Fatalf("payload not carried: %#v", st.Payload)
	}
}

func TestGotoWithoutPayloadClearsPrevious(t *testing.T) {
	n, _ := newTestNavigator()
	n.Goto(LegalText, LegalTextPayload{Title: "Privacy Policy", Return: Settings})
	n.Goto(Settings, nil)
	if st := n.State(); st.Screen != Settings || st.Payload != nil {
		t.Fatalf("payload should be cleared: %+v", st)
	}
}

func TestGotoDropsMismatchedPayload(t *testing.T) {
	n, _ := newTestNavigator()
	n.Goto(Settings, LegalTextPayload{Title: "Terms", Return: Settings})
	if st := n.State(); st.Screen != Settings || st.Payload != nil {
		t.Fatalf("expected payload dropped, got %+v", st)
	}
	n.Goto(GuideLogin, NoticePayload{To: GuideLogin, Text: "Registration successful! Please log in."})
	if _, ok := n.State().Payload.(NoticePayload); !ok {
		t.Fatalf("notice for matching screen should be kept")
	}
	n.Goto(ImpairedLogin, RolePayload{To: GuideLogin, Role: domain.RoleGuide})
	if n.State().Payload != nil {
		t.Fatalf("role payload for other screen should be dropped")
	}
}

func TestGotoUnknownFallsBackToWelcome(t *testing.T) {
	n, _ := newTestNavigator()
	n.Goto(Settings, nil)
	var seen Transition
	n.OnTransition(func(tr Transition) { seen = tr })

	n.Goto(Screen("BOGUS"), NoticePayload{To: Screen("BOGUS"), Text: "x"})
	if st := n.State(); st.Screen != Welcome || st.Payload != nil {
		t.Fatalf("expected fallback to welcome, got %+v", st)
	}
	if seen.From.Screen != Settings || seen.To.Screen != Welcome || seen.Requested != "BOGUS" {
		t.Fatalf("unexpected transition: %+v", seen)
	}
}

func TestActiveFollowsState(t *testing.T) {
	n, reg := newTestNavigator()
	var shown Screen
	reg.Register(Help, HandlerFunc(func(_ context.Context, st State) error {
		shown = st.Screen
		return nil
	}))
	n.Goto(Help, nil)
	if err := n.Active().Show(context.Background(), n.State()); err != nil {
		t.Fatalf("show: %v", err)
	}
	if shown != Help {
		t.Fatalf("help handler not resolved")
	}
}

func TestRegistryMissingAndDefault(t *testing.T) {
	called := false
	reg := NewRegistry(HandlerFunc(func(context.Context, State) error {
		called = true
		return nil
	}))
	if got := len(reg.Missing()); got != len(All()) {
		t.Fatalf("missing = %d, want %d", got, len(All()))
	}
	for _, s := range All() {
		reg.Register(s, HandlerFunc(func(context.Context, State) error { return nil }))
	}
	if missing := reg.Missing(); len(missing) != 0 {
		t.Fatalf("unexpected missing screens: %v", missing)
	}
	_ = reg.Resolve(Screen("NOPE")).Show(context.Background(), State{})
	if !called {
		t.Fatalf("default handler should serve unknown screens")
	}

	called = false
	bogus := false
	reg.Register(Screen("BOGUS"), HandlerFunc(func(context.Context, State) error {
		bogus = true
		return nil
	}))
	_ = reg.Resolve(Screen("BOGUS")).Show(context.Background(), State{})
	if bogus || !called {
		t.Fatalf("screen outside the enum must resolve to the default, bogus=%v default=%v", bogus, called)
	}
}

func TestScreenTitle(t *testing.T) {
	if got := GuideAIChat.Title(); got != "Guide Ai Chat" {
		t.Fatalf("title = %q", got)
	}
	if !LegalText.Valid() || Screen("x").Valid() {
		t.Fatalf("validity check broken")
	}
}
