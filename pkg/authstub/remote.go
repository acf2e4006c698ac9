package authstub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
)

// AccountAPI is the slice of the backend client Remote needs.
type AccountAPI interface {
	Register(ctx context.Context, acct domain.Account) (domain.Account, error)
	Login(ctx context.Context, email, password string) (domain.Account, string, error)
	ChangePassword(ctx context.Context, token, accountID, current, next string) error
	Logout(ctx context.Context, token string) error
}

// ErrSignInAgain is returned when a password change succeeded but no new
// session could be opened with the new password.
var ErrSignInAgain = errors.New("password changed, please log in again")

// Remote treats the backend as the source of truth for accounts.
type Remote struct {
	api   AccountAPI
	store *localstore.Store
}

func NewRemote(api AccountAPI, store *localstore.Store) *Remote {
	return &Remote{api: api, store: store}
}

func (r *Remote) Register(ctx context.Context, acct domain.Account) (domain.Account, error) {
	if !acct.Role.Valid() {
		return domain.Account{}, domain.Invalid("role", "Please choose an account type.")
	}
	return r.api.Register(ctx, acct)
}

// Login signs in through the backend. An account registered for the other
// role is reported as not found for this one.
func (r *Remote) Login(ctx context.Context, role domain.Role, email, password string) (Session, error) {
	acct, token, err := r.api.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if acct.Role != role {
		if err := r.api.Logout(ctx, token); err != nil {
			slog.Warn("close session of other role", "account_id", acct.ID, "err", err)
		}
		return Session{}, domain.ErrNotFound
	}
	sess := Session{Token: token, Account: acct, IssuedAt: time.Now().UTC()}
	if err := Persist(r.store, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ChangePassword uses the stored session for role. The backend revokes every
// session of the account on success, so Remote signs in again with the new
// password and stores the fresh session.
func (r *Remote) ChangePassword(ctx context.Context, role domain.Role, current, next string) error {
	token := localstore.Get(r.store, TokenKey(role), "")
	id := localstore.Get(r.store, localstore.KeySessionAccountID, "")
	if token == "" || id == "" {
		return domain.ErrNotFound
	}
	if err := r.api.ChangePassword(ctx, token, id, current, next); err != nil {
		return err
	}
	email := localstore.Get(r.store, localstore.KeyUserProfileEmail, "")
	if _, err := r.Login(ctx, role, email, next); err != nil {
		if lerr := Logout(r.store, role); lerr != nil {
			slog.Warn("clear revoked session", "account_id", id, "err", lerr)
		}
		return fmt.Errorf("%w: %v", ErrSignInAgain, err)
	}
	return nil
}
