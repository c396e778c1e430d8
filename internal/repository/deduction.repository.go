package repository

import (
	"context"
	"errors"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
)

type DeductionRepository struct {
	*pg.DB
}

func NewDeductionRepository(db *pg.DB) *DeductionRepository {
	return &DeductionRepository{db}
}

func (r *DeductionRepository) CreatePending(ctx context.Context, p *model.PendingDeduction) (*model.PendingDeduction, error) {
	entity := toPendingEntity(p)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toPendingModel(entity), nil
}

func (r *DeductionRepository) GetPending(ctx context.Context, id int64) (*model.PendingDeduction, error) {
	var entity PendingDeductionEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	return toPendingModel(&entity), nil
}

func (r *DeductionRepository) ListPendingByUser(ctx context.Context, userID int64) ([]*model.PendingDeduction, error) {
	var entities []*PendingDeductionEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.PendingDeduction, len(entities))
	for i, e := range entities {
		out[i] = toPendingModel(e)
	}
	return out, nil
}

// DeletePending removes a pending row. Confirmation and cancellation both end
// here; only confirmation also writes a GroupDeduction and debits a wallet.
func (r *DeductionRepository) DeletePending(ctx context.Context, id int64) error {
	result := r.Write(ctx).Delete(&PendingDeductionEntity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

func (r *DeductionRepository) DeletePendingByExpense(ctx context.Context, expenseID int64) error {
	return r.Write(ctx).
		Where("expense_id = ?", expenseID).
		Delete(&PendingDeductionEntity{}).Error
}

func (r *DeductionRepository) CreateDeduction(ctx context.Context, d *model.GroupDeduction) (*model.GroupDeduction, error) {
	entity := &GroupDeductionEntity{
		UserID:         d.UserID,
		TripID:         d.TripID,
		ExpenseID:      d.ExpenseID,
		ShareAmount:    d.ShareAmount,
		ShareCurrency:  d.ShareCurrency,
		WalletID:       d.WalletID,
		FxRateUsed:     d.FxRateUsed,
		DeductedAmount: d.DeductedAmount,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toGroupDeductionModel(entity), nil
}

func (r *DeductionRepository) ListDeductionsByTrip(ctx context.Context, tripID int64) ([]*model.GroupDeduction, error) {
	var entities []*GroupDeductionEntity
	err := r.Read(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.GroupDeduction, len(entities))
	for i, e := range entities {
		out[i] = toGroupDeductionModel(e)
	}
	return out, nil
}
