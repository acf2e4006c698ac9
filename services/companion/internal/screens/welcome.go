package screens

import (
	"context"

	"irisguide/pkg/localstore"
	"irisguide/pkg/nav"
)

// Welcome lets the user pick a role.
type Welcome struct {
	env *Env
	msg string
}

func (s *Welcome) Show(_ context.Context, st nav.State) error {
	e := s.env
	e.header("Welcome to IRIS")
	e.println("Your AI companion for seeing the world.")
	e.notice(st)
	e.inline(&s.msg)
	e.menu(
		option{"1", "I am visually impaired"},
		option{"2", "I am a guide"},
		option{"a", "Accessibility Options"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "1":
		e.Nav.Goto(nav.ImpairedLogin, nil)
	case "2":
		e.Nav.Goto(nav.GuideLogin, nil)
	case "a":
		e.Nav.Goto(nav.AccessibilityOptions, nil)
	default:
		s.msg = unknownOption
	}
	return nil
}

// AccessibilityPrefs are the toggles offered before login.
type AccessibilityPrefs struct {
	VoiceNarration bool `json:"voiceNarration"`
	HighContrast   bool `json:"highContrast"`
}

// DefaultAccessibilityPrefs has narration on and high contrast off.
func DefaultAccessibilityPrefs() AccessibilityPrefs {
	return AccessibilityPrefs{VoiceNarration: true}
}

// Accessibility edits AccessibilityPrefs.
type Accessibility struct {
	env *Env
	msg string
}

func (s *Accessibility) Show(_ context.Context, _ nav.State) error {
	e := s.env
	prefs := localstore.Bind(e.Store, localstore.KeyAccessibilityPrefs, DefaultAccessibilityPrefs())
	cur := prefs.Get()
	e.header("Accessibility Options")
	e.printf("  Voice Narration:    %s\n", onOff(cur.VoiceNarration))
	e.printf("  High-Contrast Mode: %s\n", onOff(cur.HighContrast))
	e.println("You can change these settings at any time from the login screen or in-app settings.")
	e.inline(&s.msg)
	e.menu(
		option{"v", "Toggle Voice Narration"},
		option{"c", "Toggle High-Contrast Mode"},
		option{"d", "Done"},
	)
	cmd, err := e.command()
	if err != nil {
		return err
	}
	switch cmd {
	case "v":
		cur.VoiceNarration = !cur.VoiceNarration
	case "c":
		cur.HighContrast = !cur.HighContrast
	case "d", "done", "back":
		e.Nav.Goto(nav.Welcome, nil)
		return nil
	default:
		s.msg = unknownOption
		return nil
	}
	if err := prefs.Set(cur); err != nil {
		s.msg = "Could not save your preferences."
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}
