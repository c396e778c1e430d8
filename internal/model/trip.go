package model

import (
	"errors"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Trip is a named expense-sharing group with a base currency and a short
// alphanumeric join code.
type Trip struct {
	ID           int64     `json:"id"            db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Code         string    `json:"code"          db:"code"           gorm:"column:code;not null;uniqueIndex"`
	Name         string    `json:"name"          db:"name"           gorm:"column:name;not null"`
	BaseCurrency string    `json:"base_currency" db:"base_currency"  gorm:"column:base_currency;not null"`
	OwnerUserID  int64     `json:"owner_user_id" db:"owner_user_id"  gorm:"column:owner_user_id;not null;index"`
	Owner        *User     `json:"-"                                 gorm:"foreignKey:OwnerUserID;references:ID"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (Trip) TableName() string { return "trips" }

type TripMember struct {
	TripID   int64     `json:"trip_id"   db:"trip_id"   gorm:"primaryKey;column:trip_id"`
	UserID   int64     `json:"user_id"   db:"user_id"   gorm:"primaryKey;column:user_id"`
	Role     string    `json:"role"      db:"role"      gorm:"column:role;not null;default:member"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at" gorm:"column:joined_at;autoCreateTime"`
}

func (TripMember) TableName() string { return "trip_members" }

// MemberWithUser pairs a trip member's role with the user record.
type MemberWithUser struct {
	User User   `json:"user"`
	Role string `json:"role"`
}

type CreateTripRequest struct {
	Name         string
	BaseCurrency string
	OwnerUserID  int64
}

func (p CreateTripRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.OwnerUserID == 0 {
		return errors.New("owner_user_id is required")
	}
	return ValidateCurrency(p.BaseCurrency)
}
