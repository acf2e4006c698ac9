package screens

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"irisguide/pkg/auth"
	"irisguide/pkg/authstub"
	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
)

const (
	termsTitle   = "Terms of Service"
	privacyTitle = "Privacy Policy"

	termsText = `By using IRIS you agree to use the glass and the app as an aid, not as a replacement for a cane, a guide dog or your own judgement.
IRIS descriptions are generated automatically and may be incomplete or wrong. Always confirm traffic and obstacles before acting.
Guides paired to your device can see the camera feed and your location while the app is running.
We may update these terms. Continued use after an update means you accept the new terms.`

	privacyText = `IRIS stores your name, email, device ID and app settings so you can sign in and pair your glass.
Camera frames are processed to describe your surroundings. Photos of known people are kept only when a guide saves them.
Your location is shared with the guides paired to your device and is not sold to anyone.
You can ask for your account and data to be deleted at any time by contacting support.`
)

// SettingsScreen edits the signed-in account's preferences.
type SettingsScreen struct {
	env *Env
	msg string
}

func (s *SettingsScreen) settings() localstore.Value[domain.Settings] {
	return localstore.Bind(s.env.Store, localstore.KeyAppSettings, domain.DefaultSettings())
}

func (s *SettingsScreen) Show(ctx context.Context, st nav.State) error {
	e := s.env
	cur := s.settings().Get()
	e.header("Settings")
	e.notice(st)
	e.println("Account")
	e.menu(option{"1", "Change Password"})
	e.println("Display & Feedback")
	e.menu(
		option{"2", "Dark Mode: " + onOff(cur.DarkMode)},
		option{"3", "Haptic Feedback: " + onOff(cur.HapticFeedback)},
		option{"4", "Narration Speed: " + strconv.Itoa(cur.NarrationSpeed)},
	)
	e.println("Notifications")
	e.menu(
		option{"5", "Low Battery Alerts: " + onOff(cur.LowBatteryAlerts)},
		option{"6", "Connection Status: " + onOff(cur.ConnectionStatus)},
		option{"7", "Guide Messages: " + onOff(cur.GuideMessages)},
	)
	e.println("Support & Legal")
	e.menu(
		option{"h", "Help Center"},
		option{"t", termsTitle},
		option{"p", privacyTitle},
		option{"l", "Logout"},
		option{"b", "Back"},
	)
	e.inline(&s.msg)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	next := cur
	switch cmd {
	case "1":
		e.Nav.Goto(nav.ChangePassword, nil)
		return nil
	case "2":
		next.DarkMode = !next.DarkMode
	case "3":
		next.HapticFeedback = !next.HapticFeedback
	case "4":
		raw, err := e.Prompt.Line("Narration speed (0-100): ")
		if err != nil {
			return err
		}
		speed, err := strconv.Atoi(raw)
		if err != nil {
			s.msg = "Narration speed must be a number between 0 and 100."
			return nil
		}
		next.NarrationSpeed = speed
	case "5":
		next.LowBatteryAlerts = !next.LowBatteryAlerts
	case "6":
		next.ConnectionStatus = !next.ConnectionStatus
	case "7":
		next.GuideMessages = !next.GuideMessages
	case "h":
		e.Nav.Goto(nav.Help, nil)
		return nil
	case "t":
		e.Nav.Goto(nav.LegalText, nav.LegalTextPayload{Title: termsTitle, Content: termsText, Return: nav.Settings})
		return nil
	case "p":
		e.Nav.Goto(nav.LegalText, nav.LegalTextPayload{Title: privacyTitle, Content: privacyText, Return: nav.Settings})
		return nil
	case "l":
		s.logout(ctx)
		return nil
	case "b":
		e.Nav.Goto(mainFor(s.role()), nil)
		return nil
	default:
		s.msg = unknownOption
		return nil
	}
	s.save(ctx, next.Normalize())
	return nil
}

func (s *SettingsScreen) role() domain.Role {
	if sess, ok := s.env.Session(); ok {
		return sess.Account.Role
	}
	return domain.RoleImpaired
}

// save writes settings locally and into the signed-in account: the device
// record when accounts live on the device, the backend when online. A failed
// push keeps the local value.
func (s *SettingsScreen) save(ctx context.Context, next domain.Settings) {
	e := s.env
	if err := s.settings().Set(next); err != nil {
		slog.Warn("save settings", "err", err)
		s.msg = "Could not save your settings."
		return
	}
	sess, ok := e.Session()
	if !ok {
		return
	}
	e.setSettings(next)
	if saver, ok := e.Auth.(authstub.SettingsSaver); ok {
		err := saver.SaveSettings(ctx, sess.Account.Role, sess.Account.ID, next)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("save account settings", "account_id", sess.Account.ID, "err", err)
			s.msg = "Could not save your settings."
			return
		}
	}
	if e.Backend == nil {
		return
	}
	if _, err := e.Backend.UpdateSettings(ctx, sess.Token, sess.Account.ID, next); err != nil {
		slog.Warn("sync settings failed", "account_id", sess.Account.ID, "err", err)
		s.msg = "Saved on this device. Could not sync with the IRIS service."
	}
}

func (s *SettingsScreen) logout(ctx context.Context) {
	e := s.env
	role := s.role()
	if err := authstub.Logout(e.Store, role); err != nil {
		slog.Warn("clear local session", "err", err)
	}
	if sess, ok := e.online(); ok {
		if err := e.Backend.Logout(ctx, sess.Token); err != nil {
			slog.Warn("backend logout failed", "account_id", sess.Account.ID, "err", err)
		}
	}
	e.clearSession()
	slog.Info("logout", "role", role.Short())
	e.Nav.Goto(nav.Welcome, nil)
}

const passwordChangedSignIn = "Password updated. Please log in again."

// ChangePassword replaces the signed-in account's password.
type ChangePassword struct {
	env *Env
	msg string
}

func (s *ChangePassword) Show(ctx context.Context, _ nav.State) error {
	e := s.env
	e.header("Change Password")
	e.inline(&s.msg)
	e.menu(
		option{"s", "Update Password"},
		option{"b", "Back"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "s":
		return s.change(ctx)
	case "b":
		e.Nav.Goto(nav.Settings, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

func (s *ChangePassword) change(ctx context.Context) error {
	e := s.env
	var current, next, confirm string
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Current Password: ", &current},
		{"New Password: ", &next},
		{"Confirm New Password: ", &confirm},
	} {
		v, err := e.Prompt.Secret(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if msg := checkNewPassword(current, next, confirm); msg != "" {
		s.msg = msg
		return nil
	}
	sess, ok := e.Session()
	if !ok {
		s.msg = "Please log in again."
		return nil
	}
	role := sess.Account.Role
	err := e.Passwords.ChangePassword(ctx, role, current, next)
	switch {
	case err == nil:
	case fatal(err):
		return err
	case errors.Is(err, authstub.ErrSignInAgain):
		slog.Warn("renew session after password change", "account_id", sess.Account.ID, "err", err)
		e.clearSession()
		e.Nav.Goto(loginFor(role), nav.NoticePayload{To: loginFor(role), Text: passwordChangedSignIn})
		return nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		s.msg = "Your current password is incorrect."
		return nil
	case errors.Is(err, domain.ErrNotFound):
		s.msg = "Please log in again."
		return nil
	default:
		slog.Warn("change password failed", "account_id", sess.Account.ID, "err", err)
		if m, ok := validationMessage(err); ok {
			s.msg = m
		} else {
			s.msg = "Could not update your password. Please try again."
		}
		return nil
	}
	if token := localstore.Get(e.Store, authstub.TokenKey(role), ""); token != "" && token != sess.Token {
		e.setToken(token)
	}
	slog.Info("password changed", "account_id", sess.Account.ID)
	e.Nav.Goto(nav.Settings, nav.NoticePayload{To: nav.Settings, Text: "Password updated successfully!"})
	return nil
}

func checkNewPassword(current, next, confirm string) string {
	switch {
	case current == "" || next == "" || confirm == "":
		return "Please fill in all fields."
	case auth.ValidatePassword(next) != nil:
		return "New password must be at least 8 characters long."
	case next != confirm:
		return "New passwords do not match."
	}
	return ""
}

// Legal renders a LegalTextPayload.
type Legal struct {
	env *Env
}

func (s *Legal) Show(_ context.Context, st nav.State) error {
	e := s.env
	doc, _ := st.Payload.(nav.LegalTextPayload)
	back := doc.Return
	if back == "" {
		back = nav.Settings
	}
	e.header(doc.Title)
	for _, para := range strings.Split(doc.Content, "\n") {
		if para = strings.TrimSpace(para); para != "" {
			e.printf("  %s\n\n", para)
		}
	}
	e.menu(option{"b", "Back"})
	cmd, err := e.command()
	if err != nil {
		return err
	}
	if cmd == "b" || cmd == "back" {
		e.Nav.Goto(back, nil)
	}
	return nil
}

type helpSection struct {
	title string
	items [][2]string
}

var helpSections = []helpSection{
	{"About Your IRIS Glass", [][2]string{
		{"Powering On/Off", "Press and hold the power button on the right arm for 3 seconds."},
		{"Charging", "Connect the magnetic charger to the port behind the right arm. A full charge takes about 90 minutes."},
		{"Status Light", "Green means connected, blinking blue means pairing and red means the battery is low."},
	}},
	{"About the IRIS App", [][2]string{
		{"Signing In", "Choose your role on the welcome screen and log in with the email you registered."},
		{"Pairing", "Turn on your glass, scan the QR code on its box and keep Bluetooth enabled."},
		{"Main Screen", "Ask IRIS to describe your surroundings or press SOS to alert your guide."},
	}},
	{"Troubleshooting", [][2]string{
		{"The glass will not connect", "Restart the glass and make sure Bluetooth is on, then scan again."},
		{"IRIS does not answer", "Check your internet connection. Descriptions need a connection to the IRIS service."},
		{"The camera is not working", "Allow camera access for IRIS in your device settings."},
	}},
	{"Contact Support", [][2]string{
		{"Email", "support@iris.example"},
	}},
}

// Help lists the help sections. Back returns to whichever screen opened it.
type Help struct {
	env *Env
}

func (s *Help) Show(_ context.Context, _ nav.State) error {
	e := s.env
	e.header("Help Center")
	for _, sec := range helpSections {
		e.println(sec.title)
		for _, item := range sec.items {
			e.printf("  %s: %s\n", item[0], item[1])
		}
	}
	e.menu(option{"b", "Back"})
	cmd, err := e.command()
	if err != nil {
		return err
	}
	if cmd == "b" || cmd == "back" {
		back := e.Previous()
		if back == "" || back == nav.Help {
			back = nav.Welcome
		}
		e.Nav.Goto(back, nil)
	}
	return nil
}
