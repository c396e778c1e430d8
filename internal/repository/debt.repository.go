package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DebtRepository struct {
	*pg.DB
}

func NewDebtRepository(db *pg.DB) *DebtRepository {
	return &DebtRepository{db}
}

// Update applies a signed delta to the (trip, debtor, creditor, currency) row.
// A row driven to exactly zero is deleted; a zero delta with no existing row
// inserts nothing. Callers keep a single canonical direction per semantic
// debt. Run inside WithinTransaction when combined with other writes.
func (r *DebtRepository) Update(ctx context.Context, tripID, debtorID, creditorID int64, delta decimal.Decimal, currency string) error {
	var entity GroupDebtEntity
	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND debtor_user_id = ? AND creditor_user_id = ? AND currency = ?",
			tripID, debtorID, creditorID, currency).
		First(&entity).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if delta.IsZero() {
			return nil
		}
		entity = GroupDebtEntity{
			TripID:         tripID,
			DebtorUserID:   debtorID,
			CreditorUserID: creditorID,
			Amount:         delta,
			Currency:       currency,
		}
		return r.Write(ctx).Create(&entity).Error
	}
	if err != nil {
		return err
	}

	newAmount := entity.Amount.Add(delta)
	if newAmount.IsZero() {
		return r.Write(ctx).Delete(&GroupDebtEntity{}, entity.ID).Error
	}
	return r.Write(ctx).
		Model(&GroupDebtEntity{}).
		Where("id = ?", entity.ID).
		Update("amount", newAmount).Error
}

// ListByTrip returns positive debts only, largest first, with both parties
// resolved.
func (r *DebtRepository) ListByTrip(ctx context.Context, tripID int64) ([]*model.DebtWithUsers, error) {
	var entities []*GroupDebtEntity
	err := r.Read(ctx).
		Where("trip_id = ? AND amount > 0", tripID).
		Order("amount DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.DebtWithUsers, 0, len(entities))
	for _, e := range entities {
		var debtor, creditor UserEntity
		if err := r.Read(ctx).Where("id = ?", e.DebtorUserID).First(&debtor).Error; err != nil {
			return nil, err
		}
		if err := r.Read(ctx).Where("id = ?", e.CreditorUserID).First(&creditor).Error; err != nil {
			return nil, err
		}
		out = append(out, &model.DebtWithUsers{
			Debt:     *toDebtModel(e),
			Debtor:   *toUserModel(&debtor),
			Creditor: *toUserModel(&creditor),
		})
	}
	return out, nil
}

func (r *DebtRepository) ListByTripAndCurrency(ctx context.Context, tripID int64, currency string) ([]*model.GroupDebt, error) {
	var entities []*GroupDebtEntity
	err := r.Read(ctx).
		Where("trip_id = ? AND currency = ? AND amount > 0", tripID, currency).
		Order("amount DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.GroupDebt, len(entities))
	for i, e := range entities {
		out[i] = toDebtModel(e)
	}
	return out, nil
}

// Currencies lists the distinct currencies with outstanding debt in a trip.
func (r *DebtRepository) Currencies(ctx context.Context, tripID int64) ([]string, error) {
	var currencies []string
	err := r.Read(ctx).
		Model(&GroupDebtEntity{}).
		Where("trip_id = ? AND amount > 0", tripID).
		Distinct().
		Order("currency ASC").
		Pluck("currency", &currencies).Error
	if err != nil {
		return nil, err
	}
	return currencies, nil
}

func (r *DebtRepository) AddContribution(ctx context.Context, c *model.DebtContribution) error {
	entity := &DebtContributionEntity{
		ExpenseID:      c.ExpenseID,
		TripID:         c.TripID,
		DebtorUserID:   c.DebtorUserID,
		CreditorUserID: c.CreditorUserID,
		Amount:         c.Amount,
		Currency:       c.Currency,
	}
	return r.Write(ctx).Create(entity).Error
}

func (r *DebtRepository) ContributionsByExpense(ctx context.Context, expenseID int64) ([]*model.DebtContribution, error) {
	var entities []*DebtContributionEntity
	err := r.Read(ctx).
		Where("expense_id = ?", expenseID).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.DebtContribution, len(entities))
	for i, e := range entities {
		out[i] = toContributionModel(e)
	}
	return out, nil
}

func (r *DebtRepository) DeleteContributionsByExpense(ctx context.Context, expenseID int64) error {
	return r.Write(ctx).
		Where("expense_id = ?", expenseID).
		Delete(&DebtContributionEntity{}).Error
}
