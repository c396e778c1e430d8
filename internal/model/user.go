package model

import (
	"errors"
	"time"
)

type User struct {
	ID         int64     `json:"id"           db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	PlatformID int64     `json:"platform_id"  db:"platform_id"   gorm:"column:platform_id;not null;uniqueIndex"`
	Name       string    `json:"name"         db:"name"          gorm:"column:name;not null"`
	CreatedAt  time.Time `json:"created_at"   db:"created_at"    gorm:"column:created_at;autoCreateTime"`
	LastSeen   time.Time `json:"last_seen"    db:"last_seen"     gorm:"column:last_seen"`
}

func (User) TableName() string { return "users" }

// UserSettings drives wallet suggestion for group deductions.
type UserSettings struct {
	UserID            int64  `json:"user_id"            db:"user_id"            gorm:"primaryKey;column:user_id"`
	PreferredCurrency string `json:"preferred_currency" db:"preferred_currency" gorm:"column:preferred_currency;not null;default:VND"`
	AllowNegative     bool   `json:"allow_negative"     db:"allow_negative"     gorm:"column:allow_negative;not null;default:true"`
}

func (UserSettings) TableName() string { return "user_settings" }

// UpsertUserRequest is the input for create_or_get_user.
type UpsertUserRequest struct {
	PlatformID int64
	Name       string
}

func (p UpsertUserRequest) Validate() error {
	if p.PlatformID == 0 {
		return errors.New("platform_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
