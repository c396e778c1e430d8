package repository

import (
	"context"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
)

type GroupExpenseRepository struct {
	*pg.DB
}

func NewGroupExpenseRepository(db *pg.DB) *GroupExpenseRepository {
	return &GroupExpenseRepository{db}
}

// Create inserts the expense together with its shares. Run inside
// WithinTransaction alongside the debt updates derived from the split.
func (r *GroupExpenseRepository) Create(ctx context.Context, e *model.GroupExpense, shares []*model.ExpenseShare) (*model.GroupExpense, error) {
	entity := toGroupExpenseEntity(e)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	for _, s := range shares {
		shareEntity := &ExpenseShareEntity{
			ExpenseID:  entity.ID,
			UserID:     s.UserID,
			ShareRatio: s.ShareRatio,
		}
		if err := r.Write(ctx).Create(shareEntity).Error; err != nil {
			return nil, err
		}
	}
	return toGroupExpenseModel(entity), nil
}

func (r *GroupExpenseRepository) GetByID(ctx context.Context, id int64) (*model.GroupExpense, error) {
	var entity GroupExpenseEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return toGroupExpenseModel(&entity), nil
}

// GetLatestByTrip returns the trip's most recently recorded group expense,
// which is the only one eligible for undo.
func (r *GroupExpenseRepository) GetLatestByTrip(ctx context.Context, tripID int64) (*model.GroupExpense, error) {
	var entity GroupExpenseEntity
	err := r.Read(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return toGroupExpenseModel(&entity), nil
}

func (r *GroupExpenseRepository) ListByTrip(ctx context.Context, tripID int64, limit int) ([]*model.GroupExpense, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}
	var entities []*GroupExpenseEntity
	err := r.Read(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.GroupExpense, len(entities))
	for i, e := range entities {
		out[i] = toGroupExpenseModel(e)
	}
	return out, nil
}

func (r *GroupExpenseRepository) Shares(ctx context.Context, expenseID int64) ([]*model.ExpenseShare, error) {
	var entities []*ExpenseShareEntity
	err := r.Read(ctx).
		Where("expense_id = ?", expenseID).
		Order("user_id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.ExpenseShare, len(entities))
	for i, e := range entities {
		out[i] = toShareModel(e)
	}
	return out, nil
}

// Delete removes the expense and its shares. Run inside WithinTransaction
// alongside the debt reversal.
func (r *GroupExpenseRepository) Delete(ctx context.Context, expenseID int64) error {
	if err := r.Write(ctx).
		Where("expense_id = ?", expenseID).
		Delete(&ExpenseShareEntity{}).Error; err != nil {
		return err
	}

	result := r.Write(ctx).Delete(&GroupExpenseEntity{}, expenseID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *GroupExpenseRepository) MarkSettled(ctx context.Context, tripID int64) error {
	return r.Write(ctx).
		Model(&GroupExpenseEntity{}).
		Where("trip_id = ? AND settled = ?", tripID, false).
		Update("settled", true).Error
}
