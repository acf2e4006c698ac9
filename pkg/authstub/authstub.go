// Package authstub is the companion's sign-in layer. Local checks credentials
// against the one account stored on the device per role; Remote defers to the
// backend. Either way the resulting session is written to the local store for
// later screens.
package authstub

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"irisguide/pkg/auth"
	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
)

// Authenticator registers accounts and signs them in.
type Authenticator interface {
	Register(ctx context.Context, acct domain.Account) (domain.Account, error)
	Login(ctx context.Context, role domain.Role, email, password string) (Session, error)
}

// Session is the outcome of a successful login. The token proves nothing
// beyond "login succeeded at IssuedAt".
type Session struct {
	Token    string
	Account  domain.Account
	IssuedAt time.Time
}

var (
	tokenMu   sync.Mutex
	lastToken int64
)

// SessionToken returns "mock-jwt-token-for-<user|guide>-<millis>". The
// timestamp part is strictly increasing within a process.
func SessionToken(role domain.Role) string {
	tokenMu.Lock()
	now := time.Now().UnixMilli()
	if now <= lastToken {
		now = lastToken + 1
	}
	lastToken = now
	tokenMu.Unlock()
	return fmt.Sprintf("mock-jwt-token-for-%s-%d", role.Short(), now)
}

// TokenKey is the local store key holding the session token for role.
func TokenKey(role domain.Role) string {
	if role == domain.RoleGuide {
		return localstore.KeyGuideAuthToken
	}
	return localstore.KeyUserAuthToken
}

// Persist writes the session token and profile fields to the local store.
func Persist(store *localstore.Store, sess Session) error {
	role := sess.Account.Role
	for _, err := range []error{
		localstore.Set(store, TokenKey(role), sess.Token),
		localstore.Set(store, localstore.KeyUserProfileName, sess.Account.FullName),
		localstore.Set(store, localstore.KeyUserProfileEmail, sess.Account.Email),
		localstore.Set(store, localstore.KeySessionAccountID, sess.Account.ID),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Logout clears the token for role, the shared profile fields and the
// account's settings copy.
func Logout(store *localstore.Store, role domain.Role) error {
	for _, key := range []string{
		TokenKey(role),
		localstore.KeyUserProfileName,
		localstore.KeyUserProfileEmail,
		localstore.KeySessionAccountID,
		localstore.KeyAppSettings,
	} {
		if err := store.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// LoginForm is what the login screens collect.
type LoginForm struct {
	Email    string
	Password string
}

// Validate returns the first inline error for the form.
func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return domain.Invalid("email", "Please enter both email and password.")
	}
	if err := auth.ValidateEmail(f.Email); err != nil {
		return domain.Invalid("email", err.Error())
	}
	return nil
}

// RegistrationForm is what both sign-up screens collect.
type RegistrationForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	DeviceID        string
	Role            domain.Role
}

// Validate returns the first inline error for the form.
func (f RegistrationForm) Validate() error {
	for _, v := range []string{f.FullName, f.Email, f.Password, f.ConfirmPassword, f.DeviceID} {
		if strings.TrimSpace(v) == "" {
			return domain.Invalid("form", "Please fill in all required fields.")
		}
	}
	if err := auth.ValidateEmail(f.Email); err != nil {
		return domain.Invalid("email", err.Error())
	}
	if err := auth.ValidatePassword(f.Password); err != nil {
		return domain.Invalid("password", err.Error())
	}
	if f.Password != f.ConfirmPassword {
		return domain.Invalid("confirmPassword", "Passwords do not match.")
	}
	if !f.Role.Valid() {
		return domain.Invalid("role", "Please choose an account type.")
	}
	return nil
}

// Account converts a validated form into a new account with default settings.
func (f RegistrationForm) Account() domain.Account {
	return domain.Account{
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     f.Role,
		DeviceID: strings.TrimSpace(f.DeviceID),
		Settings: domain.DefaultSettings(),
	}
}

// SettingsSaver is implemented by authenticators that keep accounts on the
// device.
type SettingsSaver interface {
	SaveSettings(ctx context.Context, role domain.Role, accountID string, settings domain.Settings) error
}

// PasswordChanger is implemented by both authenticators.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, role domain.Role, current, next string) error
}
