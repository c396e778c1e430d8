package repository

import (
	"time"

	"github.com/tdnguyen/tripledger/internal/model"
)

type UserEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	PlatformID int64     `db:"platform_id" gorm:"column:platform_id;not null;uniqueIndex"`
	Name       string    `db:"name"        gorm:"column:name;not null"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	LastSeen   time.Time `db:"last_seen"   gorm:"column:last_seen"`
}

func (UserEntity) TableName() string { return "users" }

type UserSettingsEntity struct {
	UserID            int64  `db:"user_id"            gorm:"primaryKey;column:user_id"`
	PreferredCurrency string `db:"preferred_currency" gorm:"column:preferred_currency;not null;default:VND"`
	AllowNegative     bool   `db:"allow_negative"     gorm:"column:allow_negative;not null;default:true"`
}

func (UserSettingsEntity) TableName() string { return "user_settings" }

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:         m.ID,
		PlatformID: m.PlatformID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		LastSeen:   m.LastSeen,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:         e.ID,
		PlatformID: e.PlatformID,
		Name:       e.Name,
		CreatedAt:  e.CreatedAt,
		LastSeen:   e.LastSeen,
	}
}

func toSettingsModel(e *UserSettingsEntity) *model.UserSettings {
	if e == nil {
		return nil
	}
	return &model.UserSettings{
		UserID:            e.UserID,
		PreferredCurrency: e.PreferredCurrency,
		AllowNegative:     e.AllowNegative,
	}
}
