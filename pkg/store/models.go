package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	ID           string `gorm:"primaryKey"`
	FullName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;index"`
	DeviceID     string `gorm:"index"`
	Settings     datatypes.JSONType[SettingsColumn]
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

// SettingsColumn is the jsonb shape of AccountModel.Settings.
type SettingsColumn struct {
	DarkMode         bool `json:"darkMode"`
	HapticFeedback   bool `json:"hapticFeedback"`
	NarrationSpeed   int  `json:"narrationSpeed"`
	LowBatteryAlerts bool `json:"lowBatteryAlerts"`
	ConnectionStatus bool `json:"connectionStatus"`
	GuideMessages    bool `json:"guideMessages"`
}

type FaceModel struct {
	ID           string    `gorm:"primaryKey"`
	UserID       string    `gorm:"not null;index"`
	Name         string    `gorm:"not null"`
	ImageURL     string    `gorm:"type:text"`
	Relationship string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index"`
}
