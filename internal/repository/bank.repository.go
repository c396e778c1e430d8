package repository

import (
	"context"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
)

type BankRepository struct {
	*pg.DB
}

func NewBankRepository(db *pg.DB) *BankRepository {
	return &BankRepository{db}
}

// Add inserts an account. The first account a user registers becomes their
// default.
func (r *BankRepository) Add(ctx context.Context, p model.AddBankAccountRequest) (*model.BankAccount, error) {
	var count int64
	err := r.Write(ctx).
		Model(&BankAccountEntity{}).
		Where("user_id = ?", p.UserID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}

	entity := &BankAccountEntity{
		UserID:        p.UserID,
		BankCode:      p.BankCode,
		BankName:      p.BankName,
		AccountNumber: p.AccountNumber,
		AccountName:   p.AccountName,
		IsDefault:     count == 0,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toBankModel(entity), nil
}

func (r *BankRepository) GetDefault(ctx context.Context, userID int64) (*model.BankAccount, error) {
	var entity BankAccountEntity
	err := r.Read(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	return toBankModel(&entity), nil
}

func (r *BankRepository) ListByUser(ctx context.Context, userID int64) ([]*model.BankAccount, error) {
	var entities []*BankAccountEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.BankAccount, len(entities))
	for i, e := range entities {
		out[i] = toBankModel(e)
	}
	return out, nil
}

// SetDefault flips the default flag to the given account. Run inside
// WithinTransaction.
func (r *BankRepository) SetDefault(ctx context.Context, userID, accountID int64) error {
	var entity BankAccountEntity
	err := r.Write(ctx).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBankNotFound
		}
		return err
	}

	err = r.Write(ctx).
		Model(&BankAccountEntity{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
	if err != nil {
		return err
	}
	return r.Write(ctx).
		Model(&BankAccountEntity{}).
		Where("id = ?", accountID).
		Update("is_default", true).Error
}

func (r *BankRepository) Delete(ctx context.Context, userID, accountID int64) error {
	result := r.Write(ctx).
		Where("id = ? AND user_id = ?", accountID, userID).
		Delete(&BankAccountEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBankNotFound
	}
	return nil
}
