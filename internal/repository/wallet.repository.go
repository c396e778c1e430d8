package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	*pg.DB
}

func NewWalletRepository(db *pg.DB) *WalletRepository {
	return &WalletRepository{db}
}

// Create inserts the wallet plus its opening adjustment row. Callers must run
// it inside WithinTransaction so both writes commit together.
func (r *WalletRepository) Create(ctx context.Context, w *model.Wallet) (*model.Wallet, error) {
	var existing WalletEntity
	err := r.Write(ctx).
		Where("user_id = ? AND currency = ?", w.UserID, w.Currency).
		First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateWallet
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entity := toWalletEntity(w)
	entity.CurrentBalance = entity.InitialAmount
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	adj := &WalletAdjustmentEntity{
		WalletID: entity.ID,
		Delta:    entity.InitialAmount,
		Reason:   "wallet created",
	}
	if err := r.Write(ctx).Create(adj).Error; err != nil {
		return nil, err
	}

	return toWalletModel(entity), nil
}

func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*model.Wallet, error) {
	var entity WalletEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletModel(&entity), nil
}

func (r *WalletRepository) GetByUserAndCurrency(ctx context.Context, userID int64, currency string) (*model.Wallet, error) {
	var entity WalletEntity
	err := r.Read(ctx).
		Where("user_id = ? AND currency = ?", userID, currency).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletModel(&entity), nil
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Wallet, error) {
	var entities []*WalletEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("currency ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toWalletModels(entities), nil
}

// AdjustBalance applies a signed delta and appends the matching adjustment
// row. The row is locked for the read-modify-write; negative balances are
// allowed, so there is no insufficient-funds rejection here. Run inside
// WithinTransaction so the balance update and the log row commit atomically.
func (r *WalletRepository) AdjustBalance(ctx context.Context, walletID int64, delta decimal.Decimal, reason string) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := r.adjustBalanceAttempt(ctx, walletID, delta, reason)
		if err == nil {
			return nil
		}

		if errors.Is(err, ErrWalletNotFound) {
			return err
		}

		if attempt < maxRetries {
			delay := baseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}

	return ErrMaxRetriesExceeded
}

func (r *WalletRepository) adjustBalanceAttempt(ctx context.Context, walletID int64, delta decimal.Decimal, reason string) error {
	var entity WalletEntity
	err := r.Write(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", walletID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return err
	}

	newBalance := entity.CurrentBalance.Add(delta)
	result := r.Write(ctx).
		Model(&WalletEntity{}).
		Where("id = ?", walletID).
		Update("current_balance", newBalance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	adj := &WalletAdjustmentEntity{
		WalletID: walletID,
		Delta:    delta,
		Reason:   reason,
	}
	return r.Write(ctx).Create(adj).Error
}

// Delete removes the wallet unconditionally and reports the balance it held,
// so callers can warn when a non-zero amount was forfeited.
func (r *WalletRepository) Delete(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	var entity WalletEntity
	err := r.Write(ctx).Where("id = ?", walletID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}

	if err := r.Write(ctx).Delete(&WalletEntity{}, entity.ID).Error; err != nil {
		return decimal.Zero, err
	}
	return entity.CurrentBalance, nil
}

func (r *WalletRepository) ListAdjustments(ctx context.Context, walletID int64, limit int) ([]*model.WalletAdjustment, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	var entities []*WalletAdjustmentEntity
	err := r.Read(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.WalletAdjustment, len(entities))
	for i, e := range entities {
		out[i] = toAdjustmentModel(e)
	}
	return out, nil
}

// GetTransactions merges adjustments and personal expenses into one view,
// expenses rendered as negative amounts, newest first.
func (r *WalletRepository) GetTransactions(ctx context.Context, walletID int64, limit int) ([]*model.WalletTransaction, error) {
	if limit <= 0 || limit > 1000 {
		limit = 10
	}

	adjustments, err := r.ListAdjustments(ctx, walletID, limit)
	if err != nil {
		return nil, err
	}

	var expenses []*PersonalExpenseEntity
	err = r.Read(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	txs := make([]*model.WalletTransaction, 0, len(adjustments)+len(expenses))
	for _, a := range adjustments {
		txs = append(txs, &model.WalletTransaction{
			Amount:      a.Delta,
			Description: a.Reason,
			Kind:        "adjustment",
			CreatedAt:   a.CreatedAt,
		})
	}
	for _, e := range expenses {
		description := e.Note
		if description == "" {
			description = "personal expense"
		}
		txs = append(txs, &model.WalletTransaction{
			Amount:      e.debitedAmount().Neg(),
			Description: description,
			Kind:        "expense",
			CreatedAt:   e.CreatedAt,
		})
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}
