package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{db}
}

// Upsert creates the user on first contact and refreshes name and last_seen
// afterwards. Users are never deleted.
func (r *UserRepository) Upsert(ctx context.Context, platformID int64, name string) (*model.User, error) {
	entity := &UserEntity{
		PlatformID: platformID,
		Name:       name,
		LastSeen:   time.Now(),
	}

	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "last_seen"}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}

	// The RETURNING id from an upsert is unreliable across drivers, re-read.
	return r.GetByPlatformID(ctx, platformID)
}

func (r *UserRepository) GetByPlatformID(ctx context.Context, platformID int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("platform_id = ?", platformID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

// GetSettings returns stored settings or the defaults when the user has never
// saved any.
func (r *UserRepository) GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	var entity UserSettingsEntity
	err := r.Read(ctx).Where("user_id = ?", userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserSettings{
				UserID:            userID,
				PreferredCurrency: "VND",
				AllowNegative:     true,
			}, nil
		}
		return nil, err
	}
	return toSettingsModel(&entity), nil
}

func (r *UserRepository) SaveSettings(ctx context.Context, s *model.UserSettings) error {
	entity := &UserSettingsEntity{
		UserID:            s.UserID,
		PreferredCurrency: s.PreferredCurrency,
		AllowNegative:     s.AllowNegative,
	}
	return r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"preferred_currency", "allow_negative"}),
		}).
		Create(entity).Error
}
