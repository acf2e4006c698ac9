package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"irisguide/pkg/auth"
	"irisguide/pkg/authstub"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/device"
)

func newApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	store := localstore.New(localstore.NewMemoryBackend(), nil)
	out := &bytes.Buffer{}
	a, err := New(Config{
		Store:   store,
		Auth:    authstub.NewLocal(store, auth.Plaintext{}),
		Camera:  &device.SimCamera{},
		Locator: device.SimLocator{},
		In:      strings.NewReader(input),
		Out:     out,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, out
}

func TestRunStopsOnQuit(t *testing.T) {
	a, out := newApp(t, "2\nquit\n1\n")
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := a.Navigator().State().Screen; got != nav.GuideLogin {
		t.Fatalf("expected GUIDE_LOGIN, got %s", got)
	}
	if !strings.Contains(out.String(), "== Welcome to IRIS ==") {
		t.Fatalf("welcome not rendered:\n%s", out.String())
	}
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	a, _ := newApp(t, "2\nr")
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := a.Navigator().State().Screen; got != nav.GuideRegister {
		t.Fatalf("expected GUIDE_REGISTER, got %s", got)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	a, _ := newApp(t, "1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected missing store to fail")
	}
	store := localstore.New(localstore.NewMemoryBackend(), nil)
	if _, err := New(Config{Store: store}); err == nil {
		t.Fatalf("expected missing authenticator to fail")
	}
}
