package authstub

import (
	"context"
	"time"

	"github.com/google/uuid"
	"irisguide/pkg/auth"
	"irisguide/pkg/domain"
	"irisguide/pkg/localstore"
)

// record is the on-device form of an account; unlike domain.Account it keeps
// the stored password.
type record struct {
	ID        string          `json:"id"`
	FullName  string          `json:"fullName"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	DeviceID  string          `json:"deviceId"`
	Settings  domain.Settings `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Local authenticates against a single record per role kept in the local store.
type Local struct {
	store  *localstore.Store
	hasher auth.PasswordHasher
	now    func() time.Time
}

// NewLocal builds a Local authenticator. A nil hasher stores passwords as given.
func NewLocal(store *localstore.Store, hasher auth.PasswordHasher) *Local {
	if hasher == nil {
		hasher = auth.Plaintext{}
	}
	return &Local{store: store, hasher: hasher, now: time.Now}
}

func recordKey(role domain.Role) string {
	if role == domain.RoleGuide {
		return localstore.KeyRegisteredGuide
	}
	return localstore.KeyRegisteredUser
}

func (l *Local) load(role domain.Role) (record, bool) {
	rec := localstore.Get(l.store, recordKey(role), record{})
	return rec, rec.Email != ""
}

// Register stores acct as the device's account for its role. A second
// registration with the same email for that role fails and leaves the first
// record untouched; a different email replaces it.
func (l *Local) Register(_ context.Context, acct domain.Account) (domain.Account, error) {
	if !acct.Role.Valid() {
		return domain.Account{}, domain.Invalid("role", "Please choose an account type.")
	}
	if existing, ok := l.load(acct.Role); ok && auth.NormalizeEmail(existing.Email) == auth.NormalizeEmail(acct.Email) {
		return domain.Account{}, domain.ErrDuplicateAccount
	}
	stored, err := l.hasher.Hash(acct.Password)
	if err != nil {
		return domain.Account{}, err
	}
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = l.now().UTC()
	}
	acct.Settings = acct.Settings.Normalize()
	rec := record{
		ID:        acct.ID,
		FullName:  acct.FullName,
		Email:     acct.Email,
		Password:  stored,
		DeviceID:  acct.DeviceID,
		Settings:  acct.Settings,
		CreatedAt: acct.CreatedAt,
	}
	if err := localstore.Set(l.store, recordKey(acct.Role), rec); err != nil {
		return domain.Account{}, err
	}
	acct.Password = ""
	return acct, nil
}

// Login checks email and password against the role's record.
func (l *Local) Login(_ context.Context, role domain.Role, email, password string) (Session, error) {
	rec, ok := l.load(role)
	if !ok || auth.NormalizeEmail(rec.Email) != auth.NormalizeEmail(email) {
		return Session{}, domain.ErrNotFound
	}
	if !l.hasher.Check(password, rec.Password) {
		return Session{}, domain.ErrInvalidCredentials
	}
	sess := Session{
		Token: SessionToken(role),
		Account: domain.Account{
			ID:        rec.ID,
			FullName:  rec.FullName,
			Email:     rec.Email,
			Role:      role,
			DeviceID:  rec.DeviceID,
			Settings:  rec.Settings,
			CreatedAt: rec.CreatedAt,
		},
		IssuedAt: l.now().UTC(),
	}
	if err := Persist(l.store, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ChangePassword replaces the stored password after checking the current one.
func (l *Local) ChangePassword(_ context.Context, role domain.Role, current, next string) error {
	rec, ok := l.load(role)
	if !ok {
		return domain.ErrNotFound
	}
	if !l.hasher.Check(current, rec.Password) {
		return domain.ErrInvalidCredentials
	}
	stored, err := l.hasher.Hash(next)
	if err != nil {
		return err
	}
	rec.Password = stored
	return localstore.Set(l.store, recordKey(role), rec)
}

// SaveSettings replaces the settings of the role's record. accountID must
// match the stored account.
func (l *Local) SaveSettings(_ context.Context, role domain.Role, accountID string, settings domain.Settings) error {
	rec, ok := l.load(role)
	if !ok || rec.ID != accountID {
		return domain.ErrNotFound
	}
	rec.Settings = settings.Normalize()
	return localstore.Set(l.store, recordKey(role), rec)
}
