package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type GroupExpenseEntity struct {
	ID          int64           `gorm:"primaryKey;autoIncrement;column:id"`
	TripID      int64           `gorm:"column:trip_id;not null;index"`
	PayerUserID int64           `gorm:"column:payer_user_id;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`
	Currency    string          `gorm:"column:currency;not null"`
	RateToBase  decimal.Decimal `gorm:"column:rate_to_base;type:numeric(18,6);not null"`
	AmountBase  decimal.Decimal `gorm:"column:amount_base;type:numeric(18,2);not null"`
	Note        string          `gorm:"column:note"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UndoUntil   time.Time       `gorm:"column:undo_until;not null"`
	Settled     bool            `gorm:"column:settled;not null;default:false"`
}

func (GroupExpenseEntity) TableName() string { return "group_expenses" }

type ExpenseShareEntity struct {
	ID         int64           `gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID  int64           `gorm:"column:expense_id;not null;index"`
	UserID     int64           `gorm:"column:user_id;not null;index"`
	ShareRatio decimal.Decimal `gorm:"column:share_ratio;type:numeric(12,9);not null"`
}

func (ExpenseShareEntity) TableName() string { return "expense_shares" }

func toGroupExpenseEntity(m *model.GroupExpense) *GroupExpenseEntity {
	return &GroupExpenseEntity{
		ID:          m.ID,
		TripID:      m.TripID,
		PayerUserID: m.PayerUserID,
		Amount:      m.Amount,
		Currency:    m.Currency,
		RateToBase:  m.RateToBase,
		AmountBase:  m.AmountBase,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
		UndoUntil:   m.UndoUntil,
		Settled:     m.Settled,
	}
}

func toGroupExpenseModel(e *GroupExpenseEntity) *model.GroupExpense {
	return &model.GroupExpense{
		ID:          e.ID,
		TripID:      e.TripID,
		PayerUserID: e.PayerUserID,
		Amount:      e.Amount,
		Currency:    e.Currency,
		RateToBase:  e.RateToBase,
		AmountBase:  e.AmountBase,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
		UndoUntil:   e.UndoUntil,
		Settled:     e.Settled,
	}
}

func toShareModel(e *ExpenseShareEntity) *model.ExpenseShare {
	return &model.ExpenseShare{
		ID:         e.ID,
		ExpenseID:  e.ExpenseID,
		UserID:     e.UserID,
		ShareRatio: e.ShareRatio,
	}
}
