package repository

import (
	"time"

	"github.com/tdnguyen/tripledger/internal/model"
)

type TripEntity struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Code         string    `gorm:"column:code;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	BaseCurrency string    `gorm:"column:base_currency;not null"`
	OwnerUserID  int64     `gorm:"column:owner_user_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TripEntity) TableName() string { return "trips" }

type TripMemberEntity struct {
	TripID   int64     `gorm:"primaryKey;column:trip_id"`
	UserID   int64     `gorm:"primaryKey;column:user_id"`
	Role     string    `gorm:"column:role;not null;default:member"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (TripMemberEntity) TableName() string { return "trip_members" }

func toTripEntity(m *model.Trip) *TripEntity {
	return &TripEntity{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		BaseCurrency: m.BaseCurrency,
		OwnerUserID:  m.OwnerUserID,
		CreatedAt:    m.CreatedAt,
	}
}

func toTripModel(e *TripEntity) *model.Trip {
	return &model.Trip{
		ID:           e.ID,
		Code:         e.Code,
		Name:         e.Name,
		BaseCurrency: e.BaseCurrency,
		OwnerUserID:  e.OwnerUserID,
		CreatedAt:    e.CreatedAt,
	}
}
