package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type PersonalExpenseEntity struct {
	ID              int64            `gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int64            `gorm:"column:user_id;not null;index"`
	WalletID        int64            `gorm:"column:wallet_id;not null;index"`
	Amount          decimal.Decimal  `gorm:"column:amount;type:numeric(18,2);not null"`
	Currency        string           `gorm:"column:currency;not null"`
	Note            string           `gorm:"column:note"`
	FxRate          *decimal.Decimal `gorm:"column:fx_rate;type:numeric(18,6)"`
	ConvertedAmount *decimal.Decimal `gorm:"column:converted_amount;type:numeric(18,2)"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UndoUntil       time.Time        `gorm:"column:undo_until;not null"`
}

func (PersonalExpenseEntity) TableName() string { return "personal_expenses" }

func (e *PersonalExpenseEntity) debitedAmount() decimal.Decimal {
	if e.ConvertedAmount != nil {
		return *e.ConvertedAmount
	}
	return e.Amount
}

func toExpenseEntity(m *model.PersonalExpense) *PersonalExpenseEntity {
	return &PersonalExpenseEntity{
		ID:              m.ID,
		UserID:          m.UserID,
		WalletID:        m.WalletID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Note:            m.Note,
		FxRate:          m.FxRate,
		ConvertedAmount: m.ConvertedAmount,
		CreatedAt:       m.CreatedAt,
		UndoUntil:       m.UndoUntil,
	}
}

func toExpenseModel(e *PersonalExpenseEntity) *model.PersonalExpense {
	return &model.PersonalExpense{
		ID:              e.ID,
		UserID:          e.UserID,
		WalletID:        e.WalletID,
		Amount:          e.Amount,
		Currency:        e.Currency,
		Note:            e.Note,
		FxRate:          e.FxRate,
		ConvertedAmount: e.ConvertedAmount,
		CreatedAt:       e.CreatedAt,
		UndoUntil:       e.UndoUntil,
	}
}

func toExpenseModels(entities []*PersonalExpenseEntity) []*model.PersonalExpense {
	out := make([]*model.PersonalExpense, len(entities))
	for i, e := range entities {
		out[i] = toExpenseModel(e)
	}
	return out
}
