package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type PendingDeductionEntity struct {
	ID                int64            `gorm:"primaryKey;autoIncrement;column:id"`
	UserID            int64            `gorm:"column:user_id;not null;index"`
	TripID            int64            `gorm:"column:trip_id;not null;index"`
	ExpenseID         int64            `gorm:"column:expense_id;not null;index"`
	ShareAmount       decimal.Decimal  `gorm:"column:share_amount;type:numeric(18,2);not null"`
	ShareCurrency     string           `gorm:"column:share_currency;not null"`
	SuggestedWalletID *int64           `gorm:"column:suggested_wallet_id"`
	SuggestedFxRate   *decimal.Decimal `gorm:"column:suggested_fx_rate;type:numeric(18,6)"`
	SuggestedAmount   *decimal.Decimal `gorm:"column:suggested_amount;type:numeric(18,2)"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (PendingDeductionEntity) TableName() string { return "pending_deductions" }

type GroupDeductionEntity struct {
	ID             int64           `gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64           `gorm:"column:user_id;not null;index"`
	TripID         int64           `gorm:"column:trip_id;not null;index"`
	ExpenseID      int64           `gorm:"column:expense_id;not null;index"`
	ShareAmount    decimal.Decimal `gorm:"column:share_amount;type:numeric(18,2);not null"`
	ShareCurrency  string          `gorm:"column:share_currency;not null"`
	WalletID       int64           `gorm:"column:wallet_id;not null"`
	FxRateUsed     decimal.Decimal `gorm:"column:fx_rate_used;type:numeric(18,6);not null"`
	DeductedAmount decimal.Decimal `gorm:"column:deducted_amount;type:numeric(18,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (GroupDeductionEntity) TableName() string { return "group_deductions" }

func toPendingEntity(m *model.PendingDeduction) *PendingDeductionEntity {
	return &PendingDeductionEntity{
		ID:                m.ID,
		UserID:            m.UserID,
		TripID:            m.TripID,
		ExpenseID:         m.ExpenseID,
		ShareAmount:       m.ShareAmount,
		ShareCurrency:     m.ShareCurrency,
		SuggestedWalletID: m.SuggestedWalletID,
		SuggestedFxRate:   m.SuggestedFxRate,
		SuggestedAmount:   m.SuggestedAmount,
		CreatedAt:         m.CreatedAt,
	}
}

func toPendingModel(e *PendingDeductionEntity) *model.PendingDeduction {
	return &model.PendingDeduction{
		ID:                e.ID,
		UserID:            e.UserID,
		TripID:            e.TripID,
		ExpenseID:         e.ExpenseID,
		ShareAmount:       e.ShareAmount,
		ShareCurrency:     e.ShareCurrency,
		SuggestedWalletID: e.SuggestedWalletID,
		SuggestedFxRate:   e.SuggestedFxRate,
		SuggestedAmount:   e.SuggestedAmount,
		CreatedAt:         e.CreatedAt,
	}
}

func toGroupDeductionModel(e *GroupDeductionEntity) *model.GroupDeduction {
	return &model.GroupDeduction{
		ID:             e.ID,
		UserID:         e.UserID,
		TripID:         e.TripID,
		ExpenseID:      e.ExpenseID,
		ShareAmount:    e.ShareAmount,
		ShareCurrency:  e.ShareCurrency,
		WalletID:       e.WalletID,
		FxRateUsed:     e.FxRateUsed,
		DeductedAmount: e.DeductedAmount,
		CreatedAt:      e.CreatedAt,
	}
}
