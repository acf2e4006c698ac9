// Package screens implements one text handler per companion screen. Handlers
// render, read a single command and either stay (with an inline message) or
// ask the navigator for the next screen.
package screens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"irisguide/pkg/authstub"
	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/backendclient"
	"irisguide/services/companion/internal/device"
	"irisguide/services/companion/internal/geo"
)

// Backend is the part of the REST client the screens call after login.
type Backend interface {
	Logout(ctx context.Context, token string) error
	UpdateSettings(ctx context.Context, token, id string, settings domain.Settings) (domain.Account, error)
	AddFace(ctx context.Context, token string, in backendclient.FaceInput) (domain.Face, error)
	ListFaces(ctx context.Context, token, userID string) ([]domain.Face, error)
	RaiseSOS(ctx context.Context, token, message string) (domain.Alert, error)
	Alerts(ctx context.Context, token string) ([]domain.Alert, error)
}

// Env is everything a screen may touch. The controller owns it and hands the
// same value to every handler.
type Env struct {
	Nav       *nav.Navigator
	Store     *localstore.Store
	Auth      authstub.Authenticator
	Passwords authstub.PasswordChanger
	// Backend is nil when the companion runs offline.
	Backend   Backend
	Camera    device.Camera
	Locator   device.Locator
	Geocoder  geo.Geocoder
	Assistant *assistant.Assistant
	Prompt    *Prompter
	Out       io.Writer
	Now       func() time.Time

	mu       sync.Mutex
	session  *authstub.Session
	previous nav.Screen
	noticed  bool
	resets   []func()
}

// Track records the screen left by each transition. Register it with
// Navigator.OnTransition.
func (e *Env) Track(t nav.Transition) {
	e.mu.Lock()
	e.previous = t.From.Screen
	e.noticed = false
	e.mu.Unlock()
}

// Previous is the screen shown before the current one.
func (e *Env) Previous() nav.Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previous
}

// SetSession makes s the signed-in session. State kept for the previous
// account is reset.
func (e *Env) SetSession(s authstub.Session) {
	e.mu.Lock()
	e.session = &s
	e.mu.Unlock()
	e.sessionChanged()
}

// signIn sets sess and loads its account's settings onto the device.
func (e *Env) signIn(sess authstub.Session) {
	settings := sess.Account.Settings
	if settings == (domain.Settings{}) {
		settings = domain.DefaultSettings()
	}
	sess.Account.Settings = settings.Normalize()
	if err := localstore.Set(e.Store, localstore.KeyAppSettings, sess.Account.Settings); err != nil {
		slog.Warn("load account settings", "account_id", sess.Account.ID, "err", err)
	}
	e.SetSession(sess)
}

// onSessionChange registers fn to run on every sign-in and sign-out.
func (e *Env) onSessionChange(fn func()) {
	e.mu.Lock()
	e.resets = append(e.resets, fn)
	e.mu.Unlock()
}

func (e *Env) sessionChanged() {
	e.mu.Lock()
	fns := append([]func(){}, e.resets...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// setToken replaces the token of the current session, keeping its state.
func (e *Env) setToken(token string) {
	e.mu.Lock()
	if e.session != nil {
		e.session.Token = token
	}
	e.mu.Unlock()
}

func (e *Env) setSettings(settings domain.Settings) {
	e.mu.Lock()
	if e.session != nil {
		e.session.Account.Settings = settings
	}
	e.mu.Unlock()
}

// Session returns the signed-in session, if any.
func (e *Env) Session() (authstub.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return authstub.Session{}, false
	}
	return *e.session, true
}

func (e *Env) clearSession() {
	e.mu.Lock()
	e.session = nil
	e.mu.Unlock()
	e.sessionChanged()
}

// online reports whether backend calls can be made for the current session.
func (e *Env) online() (authstub.Session, bool) {
	sess, ok := e.Session()
	return sess, ok && e.Backend != nil
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) stamp() string {
	return e.now().Format("3:04 PM")
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

// header clears a line and prints the screen title.
func (e *Env) header(title string) {
	e.printf("\n== %s ==\n", title)
}

type option struct {
	key   string
	label string
}

func (e *Env) menu(opts ...option) {
	for _, o := range opts {
		e.printf("  [%s] %s\n", o.key, o.label)
	}
}

// command reads the next menu choice, lower-cased.
func (e *Env) command() (string, error) {
	line, err := e.Prompt.Line("> ")
	return strings.ToLower(line), err
}

// inline prints a pending message once and clears it.
func (e *Env) inline(msg *string) {
	if *msg != "" {
		e.printf("! %s\n", *msg)
		*msg = ""
	}
}

// notice prints the message carried by the current payload, once per visit.
func (e *Env) notice(st nav.State) {
	var text string
	switch p := st.Payload.(type) {
	case nav.NoticePayload:
		text = p.Text
	case nav.AddPersonDone:
		text = p.Name + " added successfully"
	}
	if text == "" {
		return
	}
	e.mu.Lock()
	seen := e.noticed
	e.noticed = true
	e.mu.Unlock()
	if !seen {
		e.printf("* %s\n", text)
	}
}

// mainFor is the home screen of a role.
func mainFor(role domain.Role) nav.Screen {
	if role == domain.RoleGuide {
		return nav.GuideMain
	}
	return nav.ImpairedMain
}

func loginFor(role domain.Role) nav.Screen {
	if role == domain.RoleGuide {
		return nav.GuideLogin
	}
	return nav.ImpairedLogin
}

// fatal reports whether err must stop the controller loop.
func fatal(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrQuit) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

const unknownOption = "Unknown option."

// validationMessage extracts the inline text of a ValidationError.
func validationMessage(err error) (string, bool) {
	var v *domain.ValidationError
	if errors.As(err, &v) {
		return v.Message, true
	}
	return "", false
}

// NewRegistry builds the registry with every screen handler. WELCOME is the
// fallback handler.
func NewRegistry(env *Env) *nav.Registry {
	welcome := &Welcome{env: env}
	reg := nav.NewRegistry(welcome)
	reg.Register(nav.Welcome, welcome)
	reg.Register(nav.AccessibilityOptions, &Accessibility{env: env})
	reg.Register(nav.ImpairedLogin, &Login{env: env, role: domain.RoleImpaired})
	reg.Register(nav.GuideLogin, &Login{env: env, role: domain.RoleGuide})
	reg.Register(nav.Register, &Registration{env: env, role: domain.RoleImpaired})
	reg.Register(nav.GuideRegister, &Registration{env: env, role: domain.RoleGuide})
	reg.Register(nav.ForgotPassword, &ForgotPassword{env: env})
	reg.Register(nav.Pairing, &Pairing{env: env})
	impairedMain := newImpairedMain(env)
	reg.Register(nav.ImpairedMain, impairedMain)
	reg.Register(nav.EmergencyAlert, &Emergency{env: env})
	reg.Register(nav.GuideMain, &GuideMain{env: env})
	reg.Register(nav.AddPerson, &AddPerson{env: env})
	chat := &GuideChat{env: env}
	reg.Register(nav.GuideAIChat, chat)
	reg.Register(nav.History, &History{env: env})
	reg.Register(nav.Settings, &SettingsScreen{env: env})
	reg.Register(nav.ChangePassword, &ChangePassword{env: env})
	reg.Register(nav.LegalText, &Legal{env: env})
	reg.Register(nav.Help, &Help{env: env})
	env.onSessionChange(impairedMain.reset)
	env.onSessionChange(chat.reset)
	return reg
}
