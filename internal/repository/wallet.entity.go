package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type WalletEntity struct {
	ID             int64           `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64           `db:"user_id"         gorm:"column:user_id;not null;uniqueIndex:idx_wallet_user_currency"`
	Currency       string          `db:"currency"        gorm:"column:currency;not null;uniqueIndex:idx_wallet_user_currency"`
	InitialAmount  decimal.Decimal `db:"initial_amount"  gorm:"column:initial_amount;type:numeric(18,2);not null"`
	CurrentBalance decimal.Decimal `db:"current_balance" gorm:"column:current_balance;type:numeric(18,2);not null"`
	Note           string          `db:"note"            gorm:"column:note"`
	CreatedAt      time.Time       `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `db:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
}

func (WalletEntity) TableName() string { return "wallets" }

type WalletAdjustmentEntity struct {
	ID        int64           `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	WalletID  int64           `db:"wallet_id"  gorm:"column:wallet_id;not null;index"`
	Delta     decimal.Decimal `db:"delta"      gorm:"column:delta;type:numeric(18,2);not null"`
	Reason    string          `db:"reason"     gorm:"column:reason;not null"`
	CreatedAt time.Time       `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (WalletAdjustmentEntity) TableName() string { return "wallet_adjustments" }

func toWalletEntity(m *model.Wallet) *WalletEntity {
	if m == nil {
		return nil
	}
	return &WalletEntity{
		ID:             m.ID,
		UserID:         m.UserID,
		Currency:       m.Currency,
		InitialAmount:  m.InitialAmount,
		CurrentBalance: m.CurrentBalance,
		Note:           m.Note,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toWalletModel(e *WalletEntity) *model.Wallet {
	if e == nil {
		return nil
	}
	return &model.Wallet{
		ID:             e.ID,
		UserID:         e.UserID,
		Currency:       e.Currency,
		InitialAmount:  e.InitialAmount,
		CurrentBalance: e.CurrentBalance,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toWalletModels(entities []*WalletEntity) []*model.Wallet {
	if entities == nil {
		return nil
	}
	models := make([]*model.Wallet, len(entities))
	for i, e := range entities {
		models[i] = toWalletModel(e)
	}
	return models
}

func toAdjustmentModel(e *WalletAdjustmentEntity) *model.WalletAdjustment {
	if e == nil {
		return nil
	}
	return &model.WalletAdjustment{
		ID:        e.ID,
		WalletID:  e.WalletID,
		Delta:     e.Delta,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}
