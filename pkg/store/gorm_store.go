package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"irisguide/pkg/domain"
)

const migrateLockID int64 = 47124712

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&AccountModel{}, &FaceModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// withMigrationLock serializes migrations across replicas with a Postgres advisory lock.
func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// CreateAccount inserts a new account. The unique email index decides races.
func (s *GormStore) CreateAccount(a domain.Account) error {
	model := accountToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetAccountByEmail looks up an account by normalized email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// GetAccountByID returns an account by ID.
func (s *GormStore) GetAccountByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// UpdateSettings overwrites the settings block and returns the updated account.
func (s *GormStore) UpdateSettings(id string, settings domain.Settings) (domain.Account, bool, error) {
	var model AccountModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		model.Settings = datatypes.NewJSONType(settingsToColumn(settings))
		model.UpdatedAt = time.Now().UTC()
		return tx.Model(&AccountModel{}).Where("id = ?", id).Updates(map[string]any{
			"settings":   model.Settings,
			"updated_at": model.UpdatedAt,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// UpdatePassword replaces the stored credential hash.
func (s *GormStore) UpdatePassword(id string, passwordHash string) error {
	res := s.db.Model(&AccountModel{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AccountCount returns number of accounts.
func (s *GormStore) AccountCount() (int, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SaveFace stores a face record. Records are append-only.
func (s *GormStore) SaveFace(f domain.Face) error {
	model := faceToModel(f)
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// ListFacesByUser returns faces owned by userID, oldest first.
func (s *GormStore) ListFacesByUser(userID string) ([]domain.Face, error) {
	var models []FaceModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Face, 0, len(models))
	for _, m := range models {
		res = append(res, faceFromModel(m))
	}
	return res, nil
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:           a.ID,
		FullName:     a.FullName,
		Email:        strings.ToLower(strings.TrimSpace(a.Email)),
		PasswordHash: a.Password,
		Role:         string(a.Role),
		DeviceID:     a.DeviceID,
		Settings:     datatypes.NewJSONType(settingsToColumn(a.Settings)),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.CreatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		Password:  m.PasswordHash,
		Role:      domain.Role(m.Role),
		DeviceID:  m.DeviceID,
		Settings:  settingsFromColumn(m.Settings.Data()),
		CreatedAt: m.CreatedAt,
	}
}

func settingsToColumn(s domain.Settings) SettingsColumn {
	return SettingsColumn(s.Normalize())
}

func settingsFromColumn(c SettingsColumn) domain.Settings {
	return domain.Settings(c).Normalize()
}

func faceToModel(f domain.Face) FaceModel {
	return FaceModel{
		ID:           f.ID,
		UserID:       f.UserID,
		Name:         f.Name,
		ImageURL:     f.ImageURL,
		Relationship: f.Relationship,
		CreatedAt:    f.CreatedAt,
	}
}

func faceFromModel(m FaceModel) domain.Face {
	return domain.Face{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		ImageURL:     m.ImageURL,
		Relationship: m.Relationship,
		CreatedAt:    m.CreatedAt,
	}
}
