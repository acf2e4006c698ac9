package store

import (
	"errors"
	"time"

	"irisguide/pkg/domain"
)

// ErrEmailTaken is returned by CreateAccount when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// Store defines persistence operations for accounts and known faces.
type Store interface {
	// accounts
	CreateAccount(domain.Account) error
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(id string) (domain.Account, bool, error)
	UpdateSettings(id string, settings domain.Settings) (domain.Account, bool, error)
	UpdatePassword(id string, passwordHash string) error
	AccountCount() (int, error)

	// faces
	SaveFace(domain.Face) error
	ListFacesByUser(userID string) ([]domain.Face, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

// UserSessionRevoker is an optional capability that revokes all sessions
// issued for a user up to a cutoff time.
type UserSessionRevoker interface {
	RevokeUserSessions(userID string, since time.Time) error
}
