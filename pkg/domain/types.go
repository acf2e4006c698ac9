package domain

import "time"

// Role identifies which side of the pairing an account belongs to.
type Role string

const (
	RoleImpaired Role = "VISUALLY_IMPAIRED"
	RoleGuide    Role = "GUIDE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleImpaired || r == RoleGuide
}

// Short returns the lower-case label used in tokens and logs.
func (r Role) Short() string {
	if r == RoleGuide {
		return "guide"
	}
	return "user"
}

// ParseRole accepts the wire names and a few loose spellings.
func ParseRole(raw string) (Role, bool) {
	switch raw {
	case string(RoleImpaired), "impaired", "user":
		return RoleImpaired, true
	case string(RoleGuide), "guide":
		return RoleGuide, true
	default:
		return "", false
	}
}

const (
	MinNarrationSpeed     = 0
	MaxNarrationSpeed     = 100
	DefaultNarrationSpeed = 50
	DefaultRelationship   = "Known"
)

// Settings is the preference block owned by exactly one account.
type Settings struct {
	DarkMode         bool `json:"darkMode"`
	HapticFeedback   bool `json:"hapticFeedback"`
	NarrationSpeed   int  `json:"narrationSpeed"`
	LowBatteryAlerts bool `json:"lowBatteryAlerts"`
	ConnectionStatus bool `json:"connectionStatus"`
	GuideMessages    bool `json:"guideMessages"`
}

// DefaultSettings returns the values a new account starts with.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:         true,
		HapticFeedback:   true,
		NarrationSpeed:   DefaultNarrationSpeed,
		LowBatteryAlerts: true,
		ConnectionStatus: false,
		GuideMessages:    true,
	}
}

// Normalize clamps NarrationSpeed into [0,100].
func (s Settings) Normalize() Settings {
	if s.NarrationSpeed < MinNarrationSpeed {
		s.NarrationSpeed = MinNarrationSpeed
	}
	if s.NarrationSpeed > MaxNarrationSpeed {
		s.NarrationSpeed = MaxNarrationSpeed
	}
	return s
}

// Account is a registered user of either role.
// Password holds whatever the active PasswordHasher produced; it never leaves the process.
type Account struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"userType"`
	DeviceID  string    `json:"deviceId"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"createdAt"`
}

// Face is a known person enrolled by an account.
type Face struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"imageUrl"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AlertKind string

const AlertSOS AlertKind = "sos"

// Alert is raised by an impaired user and read by guides paired to the same device.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DeviceID  string    `json:"deviceId"`
	Kind      AlertKind `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sender names the author of a chat line.
type Sender string

const (
	SenderYou       Sender = "You"
	SenderIRIS      Sender = "IRIS"
	SenderAssistant Sender = "AI Assistant"
)

// Message is one line of an assistant transcript.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
