package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
)

type TripRepository struct {
	*pg.DB
}

func NewTripRepository(db *pg.DB) *TripRepository {
	return &TripRepository{db}
}

// CreateWithOwner inserts the trip and enrolls the owner as admin. Run inside
// WithinTransaction. Returns ErrDuplicateCode when the join code is taken so
// the caller can regenerate and retry.
func (r *TripRepository) CreateWithOwner(ctx context.Context, t *model.Trip) (*model.Trip, error) {
	entity := toTripEntity(t)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	member := &TripMemberEntity{
		TripID: entity.ID,
		UserID: entity.OwnerUserID,
		Role:   model.RoleAdmin,
	}
	if err := r.Write(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return toTripModel(entity), nil
}

func (r *TripRepository) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	var entity TripEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return toTripModel(&entity), nil
}

func (r *TripRepository) GetByCode(ctx context.Context, code string) (*model.Trip, error) {
	var entity TripEntity
	err := r.Read(ctx).Where("code = ?", strings.ToUpper(code)).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return toTripModel(&entity), nil
}

func (r *TripRepository) Join(ctx context.Context, tripID, userID int64) error {
	var existing TripMemberEntity
	err := r.Write(ctx).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		First(&existing).Error
	if err == nil {
		return ErrAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member := &TripMemberEntity{TripID: tripID, UserID: userID, Role: model.RoleMember}
	return r.Write(ctx).Create(member).Error
}

func (r *TripRepository) IsMember(ctx context.Context, tripID, userID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).
		Model(&TripMemberEntity{}).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TripRepository) Members(ctx context.Context, tripID int64) ([]*model.MemberWithUser, error) {
	type row struct {
		UserEntity
		Role string
	}
	var rows []row
	err := r.Read(ctx).
		Table("trip_members").
		Select("users.*, trip_members.role AS role").
		Joins("JOIN users ON users.id = trip_members.user_id").
		Where("trip_members.trip_id = ?", tripID).
		Order("trip_members.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.MemberWithUser, len(rows))
	for i, rw := range rows {
		entity := rw.UserEntity
		out[i] = &model.MemberWithUser{User: *toUserModel(&entity), Role: rw.Role}
	}
	return out, nil
}

func (r *TripRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Trip, error) {
	var entities []*TripEntity
	err := r.Read(ctx).
		Joins("JOIN trip_members ON trip_members.trip_id = trips.id").
		Where("trip_members.user_id = ?", userID).
		Order("trips.created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.Trip, len(entities))
	for i, e := range entities {
		out[i] = toTripModel(e)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
