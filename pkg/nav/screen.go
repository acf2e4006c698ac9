// Package nav holds the companion's navigation state machine: the closed set
// of screens, the payloads that travel with a transition, the navigator that
// owns the current state and the registry mapping screens to handlers.
package nav

import "strings"

// Screen identifies one view of the companion.
type Screen string

const (
	Welcome              Screen = "WELCOME"
	ImpairedLogin        Screen = "IMPAIRED_LOGIN"
	GuideLogin           Screen = "GUIDE_LOGIN"
	Pairing              Screen = "PAIRING"
	ImpairedMain         Screen = "IMPAIRED_MAIN"
	GuideMain            Screen = "GUIDE_MAIN"
	EmergencyAlert       Screen = "EMERGENCY_ALERT"
	AddPerson            Screen = "ADD_PERSON"
	Settings             Screen = "SETTINGS"
	AccessibilityOptions Screen = "ACCESSIBILITY_OPTIONS"
	Register             Screen = "REGISTER"
	Help                 Screen = "HELP"
	GuideRegister        Screen = "GUIDE_REGISTER"
	GuideAIChat          Screen = "GUIDE_AI_CHAT"
	History              Screen = "HISTORY"
	ForgotPassword       Screen = "FORGOT_PASSWORD"
	ChangePassword       Screen = "CHANGE_PASSWORD"
	LegalText            Screen = "LEGAL_TEXT"
)

var allScreens = []Screen{
	Welcome, ImpairedLogin, GuideLogin, Pairing, ImpairedMain, GuideMain,
	EmergencyAlert, AddPerson, Settings, AccessibilityOptions, Register, Help,
	GuideRegister, GuideAIChat, History, ForgotPassword, ChangePassword, LegalText,
}

// All returns every screen in declaration order.
func All() []Screen {
	out := make([]Screen, len(allScreens))
	copy(out, allScreens)
	return out
}

// Valid reports whether s is a member of the closed set.
func (s Screen) Valid() bool {
	for _, known := range allScreens {
		if s == known {
			return true
		}
	}
	return false
}

// Title is a human label, e.g. "Guide Ai Chat".
func (s Screen) Title() string {
	words := strings.Split(strings.ToLower(string(s)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
