package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"irisguide/pkg/alerts"
	"irisguide/pkg/auth"
	"irisguide/pkg/domain"
	"irisguide/pkg/storage"
	"irisguide/pkg/store"
)

// Config holds runtime configuration for the backend core.
type Config struct {
	DatabaseURL string
	PresignTTL  time.Duration
	Store       store.Store
	Sessions    store.SessionStore
	// Objects is optional; without it image data URLs are stored as sent.
	Objects storage.ObjectStore
	// Alerts is optional; without it the SOS endpoints report ErrAlertsDisabled.
	Alerts alerts.Feed
	Hasher auth.PasswordHasher
}

// App wires storage, sessions and the alert feed together.
type App struct {
	store      store.Store
	sessions   store.SessionStore
	objects    storage.ObjectStore
	alerts     alerts.Feed
	hasher     auth.PasswordHasher
	presignTTL time.Duration
}

// New constructs the application. Sessions are required; the account store
// falls back to postgres at DatabaseURL.
func New(cfg Config) (*App, error) {
	if cfg.PresignTTL == 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.Hasher == nil {
		cfg.Hasher = auth.Bcrypt{}
	}
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &App{
		store:      dataStore,
		sessions:   cfg.Sessions,
		objects:    cfg.Objects,
		alerts:     cfg.Alerts,
		hasher:     cfg.Hasher,
		presignTTL: cfg.PresignTTL,
	}, nil
}

// Registration is the register request body.
type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	DeviceID string `json:"deviceId"`
}

// Register creates an account with default settings.
func (a *App) Register(req Registration) (domain.Account, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := auth.NormalizeEmail(req.Email)
	if fullName == "" || email == "" || req.Password == "" || strings.TrimSpace(req.UserType) == "" {
		return domain.Account{}, ErrRequiredFields
	}
	role, ok := domain.ParseRole(strings.TrimSpace(req.UserType))
	if !ok {
		return domain.Account{}, ErrInvalidUserType
	}
	if err := auth.ValidateEmail(email); err != nil {
		return domain.Account{}, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return domain.Account{}, err
	}
	if _, exists, err := a.store.GetAccountByEmail(email); err != nil {
		return domain.Account{}, fmt.Errorf("lookup email: %w", err)
	} else if exists {
		return domain.Account{}, ErrUserExists
	}
	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acct := domain.Account{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Password:  hash,
		Role:      role,
		DeviceID:  strings.TrimSpace(req.DeviceID),
		Settings:  domain.DefaultSettings(),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.CreateAccount(acct); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return domain.Account{}, ErrUserExists
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return acct, nil
}

// Login verifies credentials and issues a session token.
func (a *App) Login(email, password string) (domain.Account, string, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Account{}, "", ErrRequiredFields
	}
	acct, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("lookup email: %w", err)
	}
	if !ok {
		return domain.Account{}, "", ErrUserNotFound
	}
	if !a.hasher.Check(password, acct.Password) {
		return domain.Account{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(acct.ID)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("create session: %w", err)
	}
	return acct, token, nil
}

// Logout revokes a single session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// AccountFromToken resolves the account behind a session token.
func (a *App) AccountFromToken(token string) (domain.Account, bool) {
	id, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.Account{}, false
	}
	acct, found, err := a.store.GetAccountByID(id)
	if err != nil || !found {
		return domain.Account{}, false
	}
	return acct, true
}

// GetAccount returns the account with the given id.
func (a *App) GetAccount(id string) (domain.Account, error) {
	acct, ok, err := a.store.GetAccountByID(strings.TrimSpace(id))
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrUserNotFound
	}
	return acct, nil
}

// SettingsPatch carries the fields a settings update touches.
type SettingsPatch struct {
	DarkMode         *bool `json:"darkMode"`
	HapticFeedback   *bool `json:"hapticFeedback"`
	NarrationSpeed   *int  `json:"narrationSpeed"`
	LowBatteryAlerts *bool `json:"lowBatteryAlerts"`
	ConnectionStatus *bool `json:"connectionStatus"`
	GuideMessages    *bool `json:"guideMessages"`
}

// Apply merges the patch into s and clamps the result.
func (p SettingsPatch) Apply(s domain.Settings) domain.Settings {
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.HapticFeedback != nil {
		s.HapticFeedback = *p.HapticFeedback
	}
	if p.NarrationSpeed != nil {
		s.NarrationSpeed = *p.NarrationSpeed
	}
	if p.LowBatteryAlerts != nil {
		s.LowBatteryAlerts = *p.LowBatteryAlerts
	}
	if p.ConnectionStatus != nil {
		s.ConnectionStatus = *p.ConnectionStatus
	}
	if p.GuideMessages != nil {
		s.GuideMessages = *p.GuideMessages
	}
	return s.Normalize()
}

// UpdateSettings merges patch into the account's settings.
func (a *App) UpdateSettings(id string, patch SettingsPatch) (domain.Account, error) {
	acct, err := a.GetAccount(id)
	if err != nil {
		return domain.Account{}, err
	}
	updated, ok, err := a.store.UpdateSettings(acct.ID, patch.Apply(acct.Settings))
	if err != nil {
		return domain.Account{}, fmt.Errorf("update settings: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrUserNotFound
	}
	return updated, nil
}

// ChangePassword replaces the password and revokes every session issued so far.
func (a *App) ChangePassword(id, current, next string) error {
	if current == "" || next == "" {
		return ErrPasswordRequired
	}
	acct, err := a.GetAccount(id)
	if err != nil {
		return err
	}
	if !a.hasher.Check(current, acct.Password) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := a.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.store.UpdatePassword(acct.ID, hash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	if revoker, ok := a.sessions.(store.UserSessionRevoker); ok {
		if err := revoker.RevokeUserSessions(acct.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return nil
}
