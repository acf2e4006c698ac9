// Package app wires the companion screens to their collaborators and runs
// the screen loop.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"irisguide/pkg/authstub"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/device"
	"irisguide/services/companion/internal/geo"
	"irisguide/services/companion/internal/screens"
)

// Config holds the collaborators of one companion session. Backend is nil
// when running offline.
type Config struct {
	Store     *localstore.Store
	Auth      authstub.Authenticator
	Passwords authstub.PasswordChanger
	Backend   screens.Backend
	Camera    device.Camera
	Locator   device.Locator
	Geocoder  geo.Geocoder
	Assistant *assistant.Assistant
	In        io.Reader
	Out       io.Writer
	Logger    *slog.Logger
}

// App owns the navigation state and the screen environment.
type App struct {
	env    *screens.Env
	nav    *nav.Navigator
	logger *slog.Logger
}

// New builds the registry and a navigator at WELCOME.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("local store is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if cfg.Passwords == nil {
		pc, ok := cfg.Auth.(authstub.PasswordChanger)
		if !ok {
			return nil, errors.New("password changer is required")
		}
		cfg.Passwords = pc
	}
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("input and output are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	env := &screens.Env{
		Store:     cfg.Store,
		Auth:      cfg.Auth,
		Passwords: cfg.Passwords,
		Backend:   cfg.Backend,
		Camera:    cfg.Camera,
		Locator:   cfg.Locator,
		Geocoder:  cfg.Geocoder,
		Assistant: cfg.Assistant,
		Prompt:    screens.NewPrompter(cfg.In, cfg.Out),
		Out:       cfg.Out,
	}
	navigator := nav.New(screens.NewRegistry(env), logger)
	env.Nav = navigator
	navigator.OnTransition(env.Track)
	navigator.OnTransition(func(t nav.Transition) {
		logger.Debug("navigate", "from", string(t.From.Screen), "to", string(t.To.Screen))
	})
	return &App{env: env, nav: navigator, logger: logger}, nil
}

// Navigator exposes the navigation state.
func (a *App) Navigator() *nav.Navigator {
	return a.nav
}

// Run shows the active screen until input ends, the user quits or ctx is
// done. Ending input and quitting are not errors.
func (a *App) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st := a.nav.State()
		err := a.nav.Active().Show(ctx, st)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, screens.ErrQuit) {
			a.logger.Info("companion session ended", "screen", string(st.Screen))
			return nil
		}
		return err
	}
}
