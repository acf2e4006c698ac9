package screens

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"irisguide/pkg/auth"
	"irisguide/pkg/authstub"
	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/backendclient"
	"irisguide/services/companion/internal/device"
	"irisguide/services/companion/internal/geo"
)

type fakeGeocoder struct{}

func (fakeGeocoder) Reverse(context.Context, device.Position) (geo.Address, error) {
	return geo.Address{Street: "1 Test St", City: "Testville"}, nil
}

type fakeBackend struct {
	faces    []backendclient.FaceInput
	sos      int
	settings []domain.Settings
	logouts  int
	err      error
}

func (f *fakeBackend) Logout(context.Context, string) error {
	f.logouts++
	return nil
}

func (f *fakeBackend) UpdateSettings(_ context.Context, _, _ string, s domain.Settings) (domain.Account, error) {
	f.settings = append(f.settings, s)
	return domain.Account{Settings: s}, f.err
}

func (f *fakeBackend) AddFace(_ context.Context, _ string, in backendclient.FaceInput) (domain.Face, error) {
	if f.err != nil {
		return domain.Face{}, f.err
	}
	f.faces = append(f.faces, in)
	return domain.Face{ID: "f1", UserID: in.UserID, Name: in.Name, Relationship: in.Relationship}, nil
}

func (f *fakeBackend) ListFaces(context.Context, string, string) ([]domain.Face, error) {
	return []domain.Face{{Name: "Jane", Relationship: "Friend"}}, nil
}

func (f *fakeBackend) RaiseSOS(_ context.Context, _, msg string) (domain.Alert, error) {
	f.sos++
	return domain.Alert{Kind: domain.AlertSOS, Message: msg}, f.err
}

func (f *fakeBackend) Alerts(context.Context, string) ([]domain.Alert, error) {
	return nil, nil
}

type fakeGen struct{ answer string }

func (f fakeGen) GenerateText(context.Context, string, string) (string, error) {
	return f.answer, nil
}

type harness struct {
	env         *Env
	out         *bytes.Buffer
	cam         *device.SimCamera
	backend     *localstore.MemoryBackend
	transitions []nav.Transition
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{out: &bytes.Buffer{}, cam: &device.SimCamera{}, backend: localstore.NewMemoryBackend()}
	store := localstore.New(h.backend, nil)
	local := authstub.NewLocal(store, auth.Plaintext{})
	h.env = &Env{
		Store:     store,
		Auth:      local,
		Passwords: local,
		Camera:    h.cam,
		Locator:   device.SimLocator{},
		Geocoder:  fakeGeocoder{},
		Prompt:    NewPrompter(strings.NewReader(input), h.out),
		Out:       h.out,
		Now:       func() time.Time { return time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC) },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.env.Nav = nav.New(NewRegistry(h.env), logger)
	h.env.Nav.OnTransition(h.env.Track)
	h.env.Nav.OnTransition(func(tr nav.Transition) { h.transitions = append(h.transitions, tr) })
	return h
}

// run drives the active screen until the scripted input runs out.
func (h *harness) run(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		err := h.env.Nav.Active().Show(ctx, h.env.Nav.State())
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}
		t.Fatalf("screen %s: %v", h.env.Nav.State().Screen, err)
	}
	t.Fatalf("input not consumed after 100 renders")
}

func (h *harness) screen() nav.Screen {
	return h.env.Nav.State().Screen
}

func (h *harness) signIn(role domain.Role) {
	h.env.SetSession(authstub.Session{
		Token:   "tok",
		Account: domain.Account{ID: "acct-1", FullName: "John", Role: role, DeviceID: "D1"},
	})
}

func TestRegistryCoversEveryScreen(t *testing.T) {
	h := newHarness(t, "")
	reg := NewRegistry(h.env)
	if missing := reg.Missing(); len(missing) != 0 {
		t.Fatalf("screens without handler: %v", missing)
	}
	if reg.Resolve(nav.Screen("NOPE")) != reg.Default() {
		t.Fatalf("unknown screen should resolve to the default handler")
	}
}

func TestGuideRegisterThenLoginReachesDashboard(t *testing.T) {
	h := newHarness(t, strings.Join([]string{
		"2",
		"r",
		"s", "John", "john@g.com", "12345678", "12345678", "D1",
		"l", "john@g.com", "12345678",
	}, "\n")+"\n")
	h.run(t)

	if h.screen() != nav.GuideMain {
		t.Fatalf("expected GUIDE_MAIN, got %s", h.screen())
	}
	out := h.out.String()
	if !strings.Contains(out, Registered) {
		t.Fatalf("registration notice missing:\n%s", out)
	}
	if !strings.Contains(out, "Hello, John") || !strings.Contains(out, "Location: 1 Test St, Testville") {
		t.Fatalf("dashboard not rendered:\n%s", out)
	}
	sess, ok := h.env.Session()
	if !ok || sess.Account.Role != domain.RoleGuide || sess.Account.DeviceID != "D1" {
		t.Fatalf("unexpected session: %+v ok=%v", sess, ok)
	}
	if got := localstore.Get(h.env.Store, localstore.KeyGuideAuthToken, ""); !strings.HasPrefix(got, "mock-jwt-token-for-guide-") {
		t.Fatalf("token not persisted: %q", got)
	}
	if h.cam.Opened() == 0 || h.cam.Active() != 0 {
		t.Fatalf("camera not released: opened=%d active=%d", h.cam.Opened(), h.cam.Active())
	}
}

func TestUnregisteredLoginStaysOnScreen(t *testing.T) {
	h := newHarness(t, "1\nl\nnobody@x.com\npassword1\n")
	h.run(t)

	if h.screen() != nav.ImpairedLogin {
		t.Fatalf("expected IMPAIRED_LOGIN, got %s", h.screen())
	}
	if len(h.transitions) != 1 {
		t.Fatalf("login failure must not transition, got %d transitions", len(h.transitions))
	}
	if !strings.Contains(h.out.String(), impairedNotFound) {
		t.Fatalf("inline error missing:\n%s", h.out.String())
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t, "2\nl\nnot-an-email\n12345678\nl\n\n\n")
	h.run(t)

	out := h.out.String()
	if !strings.Contains(out, auth.ErrInvalidEmail.Error()) {
		t.Fatalf("email error missing:\n%s", out)
	}
	if !strings.Contains(out, "Please enter both email and password.") {
		t.Fatalf("required error missing:\n%s", out)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	form := "s\nJane\njane@x.com\n12345678\n12345678\nD9\n"
	h := newHarness(t, "1\nr\n"+form+"r\n"+form)
	h.run(t)

	if h.screen() != nav.Register {
		t.Fatalf("expected REGISTER, got %s", h.screen())
	}
	if !strings.Contains(h.out.String(), domain.ErrDuplicateAccount.Error()) {
		t.Fatalf("duplicate error missing:\n%s", h.out.String())
	}
}

func TestNarrationSpeedPersistsAcrossReload(t *testing.T) {
	h := newHarness(t, "4\n80\n2\n")
	h.env.Nav.Goto(nav.Settings, nil)
	h.run(t)

	reloaded := localstore.New(h.backend, nil)
	got := localstore.Get(reloaded, localstore.KeyAppSettings, domain.DefaultSettings())
	if got.NarrationSpeed != 80 {
		t.Fatalf("narration speed = %d, want 80", got.NarrationSpeed)
	}
	if got.DarkMode {
		t.Fatalf("dark mode toggle not persisted")
	}
}

func TestNarrationSpeedClampedAndSynced(t *testing.T) {
	h := newHarness(t, "4\n150\n4\nfast\n")
	fb := &fakeBackend{}
	h.env.Backend = fb
	h.signIn(domain.RoleImpaired)
	h.env.Nav.Goto(nav.Settings, nil)
	h.run(t)

	if got := localstore.Get(h.env.Store, localstore.KeyAppSettings, domain.DefaultSettings()).NarrationSpeed; got != 100 {
		t.Fatalf("narration speed = %d, want 100", got)
	}
	if len(fb.settings) != 1 || fb.settings[0].NarrationSpeed != 100 {
		t.Fatalf("settings not pushed: %+v", fb.settings)
	}
	if !strings.Contains(h.out.String(), "Narration speed must be a number") {
		t.Fatalf("parse error missing:\n%s", h.out.String())
	}
}

func TestGuideChatWithoutKeyRefusesInput(t *testing.T) {
	h := newHarness(t, "hello\n")
	h.env.Nav.Goto(nav.GuideAIChat, nil)
	h.run(t)

	out := h.out.String()
	if !strings.Contains(out, assistant.MissingKey) || !strings.Contains(out, "The AI assistant is unavailable.") {
		t.Fatalf("unavailable message missing:\n%s", out)
	}
	if strings.Contains(out, "You: hello") {
		t.Fatalf("input should be refused:\n%s", out)
	}
}

func TestGuideChatAnswers(t *testing.T) {
	h := newHarness(t, "how do I help?\nback\n")
	h.env.Assistant = assistant.NewWithGenerator(fakeGen{answer: "Describe the path ahead."})
	h.env.Nav.Goto(nav.GuideAIChat, nil)
	h.run(t)

	out := h.out.String()
	if !strings.Contains(out, "[3:04 PM] You: how do I help?") || !strings.Contains(out, "AI Assistant: Describe the path ahead.") {
		t.Fatalf("transcript missing:\n%s", out)
	}
	if h.screen() != nav.GuideMain {
		t.Fatalf("expected GUIDE_MAIN after back, got %s", h.screen())
	}
}

func TestGuideMainDeviceErrorsRenderInline(t *testing.T) {
	h := newHarness(t, "")
	h.cam.Deny = true
	h.env.Locator = device.SimLocator{Deny: true}
	h.env.Nav.Goto(nav.GuideMain, nil)
	h.run(t)

	out := h.out.String()
	for _, want := range []string{liveCameraDenied, locationDenied, geo.FallbackStreet} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
	if h.screen() != nav.GuideMain {
		t.Fatalf("device errors must not transition, got %s", h.screen())
	}
}

func TestAddPersonSendsFrame(t *testing.T) {
	h := newHarness(t, "s\nJane\nFriend\n")
	fb := &fakeBackend{}
	h.env.Backend = fb
	h.signIn(domain.RoleGuide)
	h.env.Nav.Goto(nav.AddPerson, nil)
	h.run(t)

	if h.screen() != nav.GuideMain {
		t.Fatalf("expected GUIDE_MAIN, got %s", h.screen())
	}
	if len(fb.faces) != 1 || fb.faces[0].UserID != "acct-1" || !strings.HasPrefix(fb.faces[0].ImageURL, "data:image/png;base64,") {
		t.Fatalf("unexpected face request: %+v", fb.faces)
	}
	if !strings.Contains(h.out.String(), "Jane added successfully") {
		t.Fatalf("confirmation missing:\n%s", h.out.String())
	}
	if h.cam.Active() != 0 {
		t.Fatalf("camera left open")
	}
}

func TestAddPersonOffline(t *testing.T) {
	h := newHarness(t, "s\nJane\n\n")
	h.signIn(domain.RoleGuide)
	h.env.Nav.Goto(nav.AddPerson, nil)
	h.run(t)

	if h.screen() != nav.AddPerson {
		t.Fatalf("expected ADD_PERSON, got %s", h.screen())
	}
	if !strings.Contains(h.out.String(), "needs a connection") {
		t.Fatalf("offline message missing:\n%s", h.out.String())
	}
}

func TestSOSNotifiesGuide(t *testing.T) {
	h := newHarness(t, "e\nc\nd\n")
	fb := &fakeBackend{}
	h.env.Backend = fb
	h.signIn(domain.RoleImpaired)
	h.env.Nav.Goto(nav.ImpairedMain, nil)
	h.run(t)

	if fb.sos != 1 {
		t.Fatalf("expected one SOS, got %d", fb.sos)
	}
	out := h.out.String()
	if !strings.Contains(out, "Your guide has been notified.") || !strings.Contains(out, "Calling John...") {
		t.Fatalf("alert screen not rendered:\n%s", out)
	}
	if h.screen() != nav.ImpairedMain {
		t.Fatalf("dismiss should return to IMPAIRED_MAIN, got %s", h.screen())
	}
}

func TestSpeakNarratesScene(t *testing.T) {
	h := newHarness(t, "s\n")
	h.env.Nav.Goto(nav.ImpairedMain, nil)
	h.run(t)

	out := h.out.String()
	if !strings.Contains(out, "[3:04 PM] You: "+speakPrompt) {
		t.Fatalf("question missing:\n%s", out)
	}
	if strings.Count(out, assistant.CannedScene) < 3 {
		t.Fatalf("expected canned narration in the transcript:\n%s", out)
	}
	if h.cam.Opened() != 1 || h.cam.Active() != 0 {
		t.Fatalf("camera not scoped: opened=%d active=%d", h.cam.Opened(), h.cam.Active())
	}
}

func TestPairingRequiresConnectedGlass(t *testing.T) {
	h := newHarness(t, "c\ns\nc\n")
	h.env.Nav.Goto(nav.Pairing, nil)
	h.run(t)

	if !strings.Contains(h.out.String(), glassNotReady) {
		t.Fatalf("expected pairing hint:\n%s", h.out.String())
	}
	if h.screen() != nav.ImpairedMain {
		t.Fatalf("expected IMPAIRED_MAIN, got %s", h.screen())
	}
	if !localstore.Get(h.env.Store, localstore.KeyDeviceConnected, false) {
		t.Fatalf("pairing not persisted")
	}
}

func TestChangePasswordLocal(t *testing.T) {
	h := newHarness(t, "s\nwrongpass\nnewpassword\nnewpassword\ns\n12345678\nnewpassword\nnewpassword\n")
	ctx := context.Background()
	form := authstub.RegistrationForm{
		FullName: "John", Email: "john@g.com", Password: "12345678",
		ConfirmPassword: "12345678", DeviceID: "D1", Role: domain.RoleGuide,
	}
	if _, err := h.env.Auth.Register(ctx, form.Account()); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := h.env.Auth.Login(ctx, domain.RoleGuide, "john@g.com", "12345678")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	h.env.SetSession(sess)
	h.env.Nav.Goto(nav.ChangePassword, nil)
	h.run(t)

	out := h.out.String()
	if !strings.Contains(out, "Your current password is incorrect.") {
		t.Fatalf("wrong password error missing:\n%s", out)
	}
	if h.screen() != nav.Settings || !strings.Contains(out, "Password updated successfully!") {
		t.Fatalf("expected SETTINGS with notice, got %s:\n%s", h.screen(), out)
	}
	if _, err := h.env.Auth.Login(ctx, domain.RoleGuide, "john@g.com", "newpassword"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestCheckNewPassword(t *testing.T) {
	tests := []struct {
		current, next, confirm string
		want                   string
	}{
		{"", "newpassword", "newpassword", "Please fill in all fields."},
		{"old", "short", "short", "New password must be at least 8 characters long."},
		{"old", "newpassword", "newpassw0rd", "New passwords do not match."},
		{"old", "newpassword", "newpassword", ""},
	}
	for _, tc := range tests {
		if got := checkNewPassword(tc.current, tc.next, tc.confirm); got != tc.want {
			t.Fatalf("checkNewPassword(%q,%q,%q) = %q, want %q", tc.current, tc.next, tc.confirm, got, tc.want)
		}
	}
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t, "l\n")
	fb := &fakeBackend{}
	h.env.Backend = fb
	h.signIn(domain.RoleGuide)
	if err := localstore.Set(h.env.Store, localstore.KeyGuideAuthToken, "tok"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	h.env.Nav.Goto(nav.Settings, nil)
	h.run(t)

	if h.screen() != nav.Welcome {
		t.Fatalf("expected WELCOME, got %s", h.screen())
	}
	if _, ok := h.env.Session(); ok {
		t.Fatalf("session not cleared")
	}
	if got := localstore.Get(h.env.Store, localstore.KeyGuideAuthToken, ""); got != "" {
		t.Fatalf("token not removed: %q", got)
	}
	if fb.logouts != 1 {
		t.Fatalf("backend logout not called")
	}
}

func TestLegalReturnsToPayloadScreen(t *testing.T) {
	h := newHarness(t, "p\nb\n")
	h.env.Nav.Goto(nav.Settings, nil)
	h.run(t)

	if h.screen() != nav.Settings {
		t.Fatalf("expected SETTINGS, got %s", h.screen())
	}
	if !strings.Contains(h.out.String(), "== "+privacyTitle+" ==") {
		t.Fatalf("legal title missing:\n%s", h.out.String())
	}
}

func TestHelpReturnsToPreviousScreen(t *testing.T) {
	h := newHarness(t, "h\nb\n")
	h.env.Nav.Goto(nav.Pairing, nil)
	h.run(t)

	if h.screen() != nav.Pairing {
		t.Fatalf("expected PAIRING, got %s", h.screen())
	}
	if !strings.Contains(h.out.String(), "About Your IRIS Glass") {
		t.Fatalf("help not rendered:\n%s", h.out.String())
	}
}

func TestForgotPasswordMessages(t *testing.T) {
	for email, want := range map[string]string{
		"":           "Please enter your email address.",
		"nope":       "Please enter a valid email address.",
		"a@b.co":     "If an account exists for a@b.co, you will receive a password reset link.",
		"  a@b.co  ": "If an account exists for a@b.co, you will receive a password reset link.",
	} {
		if got := resetMessage(email); got != want {
			t.Fatalf("resetMessage(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestAccessibilityToggles(t *testing.T) {
	h := newHarness(t, "a\nv\nc\nd\n")
	h.run(t)

	got := localstore.Get(h.env.Store, localstore.KeyAccessibilityPrefs, DefaultAccessibilityPrefs())
	if got.VoiceNarration || !got.HighContrast {
		t.Fatalf("unexpected prefs: %+v", got)
	}
	if h.screen() != nav.Welcome {
		t.Fatalf("expected WELCOME, got %s", h.screen())
	}
}

func TestNoticeShownOncePerVisit(t *testing.T) {
	h := newHarness(t, "x\n")
	h.env.Nav.Goto(nav.GuideLogin, nav.NoticePayload{To: nav.GuideLogin, Text: Registered})
	h.run(t)

	if n := strings.Count(h.out.String(), Registered); n != 1 {
		t.Fatalf("notice printed %d times", n)
	}
}

func TestSettingsFollowTheSignedInAccount(t *testing.T) {
	h := newHarness(t, strings.Join([]string{
		"1", "r",
		"s", "Amy", "amy@x.com", "12345678", "12345678", "D1",
		"l", "amy@x.com", "12345678",
		"s", "c", "g",
		"4", "80",
		"l",
		"2", "r",
		"s", "Ben", "ben@x.com", "12345678", "12345678", "D1",
		"l", "ben@x.com", "12345678",
		"s", "2",
	}, "\n")+"\n")
	fb := &fakeBackend{}
	h.env.Backend = fb
	h.run(t)

	if h.screen() != nav.Settings {
		t.Fatalf("expected SETTINGS, got %s", h.screen())
	}
	if len(fb.settings) != 2 {
		t.Fatalf("expected two pushes, got %+v", fb.settings)
	}
	if fb.settings[0].NarrationSpeed != 80 {
		t.Fatalf("first account push = %+v", fb.settings[0])
	}
	if got := fb.settings[1]; got.NarrationSpeed != domain.DefaultNarrationSpeed || got.DarkMode {
		t.Fatalf("second account received the first account's settings: %+v", got)
	}
	if got := localstore.Get(h.env.Store, localstore.KeyAppSettings, domain.Settings{}); got.NarrationSpeed != domain.DefaultNarrationSpeed || got.DarkMode {
		t.Fatalf("device settings = %+v", got)
	}

	ctx := context.Background()
	amy, err := h.env.Auth.Login(ctx, domain.RoleImpaired, "amy@x.com", "12345678")
	if err != nil {
		t.Fatalf("login amy: %v", err)
	}
	if amy.Account.Settings.NarrationSpeed != 80 || !amy.Account.Settings.DarkMode {
		t.Fatalf("first account record = %+v", amy.Account.Settings)
	}
	ben, err := h.env.Auth.Login(ctx, domain.RoleGuide, "ben@x.com", "12345678")
	if err != nil {
		t.Fatalf("login ben: %v", err)
	}
	if ben.Account.Settings.NarrationSpeed != domain.DefaultNarrationSpeed || ben.Account.Settings.DarkMode {
		t.Fatalf("second account record = %+v", ben.Account.Settings)
	}
}

type expiringPasswords struct{}

func (expiringPasswords) ChangePassword(context.Context, domain.Role, string, string) error {
	return authstub.ErrSignInAgain
}

func TestPasswordChangeWithoutNewSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t, "s\n12345678\nnewpassword\nnewpassword\n")
	h.env.Passwords = expiringPasswords{}
	h.signIn(domain.RoleImpaired)
	h.env.Nav.Goto(nav.ChangePassword, nil)
	h.run(t)

	if h.screen() != nav.ImpairedLogin {
		t.Fatalf("expected IMPAIRED_LOGIN, got %s", h.screen())
	}
	if _, ok := h.env.Session(); ok {
		t.Fatalf("revoked session kept")
	}
	if !strings.Contains(h.out.String(), passwordChangedSignIn) {
		t.Fatalf("notice missing:\n%s", h.out.String())
	}
}

func TestPasswordChangeKeepsRenewedToken(t *testing.T) {
	h := newHarness(t, "s\n12345678\nnewpassword\nnewpassword\n")
	h.env.Passwords = renewingPasswords{store: h.env.Store}
	h.signIn(domain.RoleGuide)
	h.env.Nav.Goto(nav.ChangePassword, nil)
	h.run(t)

	sess, ok := h.env.Session()
	if !ok || sess.Token != "renewed" {
		t.Fatalf("session token not renewed: %+v ok=%v", sess, ok)
	}
}

type renewingPasswords struct{ store *localstore.Store }

func (r renewingPasswords) ChangePassword(_ context.Context, role domain.Role, _, _ string) error {
	return localstore.Set(r.store, authstub.TokenKey(role), "renewed")
}

func TestSignOutClearsTranscripts(t *testing.T) {
	h := newHarness(t, "what is ahead?\nback\ns\nl\n")
	h.env.Assistant = assistant.NewWithGenerator(fakeGen{answer: "A crossing."})
	h.signIn(domain.RoleGuide)
	h.env.Nav.Goto(nav.GuideAIChat, nil)
	h.run(t)
	if h.screen() != nav.Welcome {
		t.Fatalf("expected WELCOME after logout, got %s", h.screen())
	}

	h.out.Reset()
	h.env.Prompt = NewPrompter(strings.NewReader("back\n"), h.out)
	h.signIn(domain.RoleGuide)
	h.env.Nav.Goto(nav.GuideAIChat, nil)
	h.run(t)
	if strings.Contains(h.out.String(), "what is ahead?") {
		t.Fatalf("previous chat shown to the next session:\n%s", h.out.String())
	}

	h.out.Reset()
	h.env.Prompt = NewPrompter(strings.NewReader("s\ng\nl\n"), h.out)
	h.signIn(domain.RoleImpaired)
	h.env.Nav.Goto(nav.ImpairedMain, nil)
	h.run(t)
	if !strings.Contains(h.out.String(), "You: "+speakPrompt) {
		t.Fatalf("speak not recorded:\n%s", h.out.String())
	}

	h.out.Reset()
	h.env.Prompt = NewPrompter(strings.NewReader(""), h.out)
	h.signIn(domain.RoleImpaired)
	h.env.Nav.Goto(nav.ImpairedMain, nil)
	h.run(t)
	if strings.Contains(h.out.String(), "You: "+speakPrompt) {
		t.Fatalf("previous narration shown to the next session:\n%s", h.out.String())
	}
}

func TestSecretKeepsInputAsTyped(t *testing.T) {
	p := NewPrompter(strings.NewReader(" pass word \r\nquit\n"), io.Discard)
	got, err := p.Secret("Password: ")
	if err != nil || got != " pass word " {
		t.Fatalf("secret = %q err=%v", got, err)
	}
	if got, err := p.Secret("Password: "); err != nil || got != "quit" {
		t.Fatalf("secret = %q err=%v", got, err)
	}
	if _, err := p.Secret("Password: "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
