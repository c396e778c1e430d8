package repository

import (
	"context"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	*pg.DB
}

func NewExpenseRepository(db *pg.DB) *ExpenseRepository {
	return &ExpenseRepository{db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *model.PersonalExpense) (*model.PersonalExpense, error) {
	entity := toExpenseEntity(e)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toExpenseModel(entity), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*model.PersonalExpense, error) {
	var entity PersonalExpenseEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return toExpenseModel(&entity), nil
}

// GetLatestByUser returns the user's most recently recorded expense, which is
// the only one eligible for undo.
func (r *ExpenseRepository) GetLatestByUser(ctx context.Context, userID int64) (*model.PersonalExpense, error) {
	var entity PersonalExpenseEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return toExpenseModel(&entity), nil
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PersonalExpense, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}
	var entities []*PersonalExpenseEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toExpenseModels(entities), nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Delete(&PersonalExpenseEntity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
