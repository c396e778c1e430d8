package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type GroupExpense struct {
	ID          int64           `json:"id"            db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TripID      int64           `json:"trip_id"       db:"trip_id"        gorm:"column:trip_id;not null;index"`
	Trip        *Trip           `json:"-"                                 gorm:"foreignKey:TripID;references:ID;constraint:OnDelete:CASCADE"`
	PayerUserID int64           `json:"payer_user_id" db:"payer_user_id"  gorm:"column:payer_user_id;not null;index"`
	Amount      decimal.Decimal `json:"amount"        db:"amount"         gorm:"column:amount;type:numeric(18,2);not null"`
	Currency    string          `json:"currency"      db:"currency"       gorm:"column:currency;not null"`
	RateToBase  decimal.Decimal `json:"rate_to_base"  db:"rate_to_base"   gorm:"column:rate_to_base;type:numeric(18,6);not null"`
	AmountBase  decimal.Decimal `json:"amount_base"   db:"amount_base"    gorm:"column:amount_base;type:numeric(18,2);not null"`
	Note        string          `json:"note,omitempty" db:"note"          gorm:"column:note"`
	CreatedAt   time.Time       `json:"created_at"    db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	UndoUntil   time.Time       `json:"undo_until"    db:"undo_until"     gorm:"column:undo_until;not null"`
	Settled     bool            `json:"settled"       db:"settled"        gorm:"column:settled;not null;default:false"`
}

func (GroupExpense) TableName() string { return "group_expenses" }

// ExpenseShare holds one participant's ratio of a group expense. Ratios for an
// expense must sum to 1.
type ExpenseShare struct {
	ID         int64           `json:"id"          db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID  int64           `json:"expense_id"  db:"expense_id"  gorm:"column:expense_id;not null;index"`
	Expense    *GroupExpense   `json:"-"                            gorm:"foreignKey:ExpenseID;references:ID;constraint:OnDelete:CASCADE"`
	UserID     int64           `json:"user_id"     db:"user_id"     gorm:"column:user_id;not null;index"`
	ShareRatio decimal.Decimal `json:"share_ratio" db:"share_ratio" gorm:"column:share_ratio;type:numeric(12,9);not null"`
}

func (ExpenseShare) TableName() string { return "expense_shares" }

type AddGroupExpenseRequest struct {
	TripID       int64
	PayerUserID  int64
	Amount       decimal.Decimal
	Currency     string
	Note         string
	Participants []int64 // equal split; payer normally included
}

func (p AddGroupExpenseRequest) Validate() error {
	if p.TripID == 0 {
		return errors.New("trip_id is required")
	}
	if p.PayerUserID == 0 {
		return errors.New("payer_user_id is required")
	}
	if !p.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if len(p.Participants) == 0 {
		return errors.New("at least one participant is required")
	}
	return ValidateCurrency(p.Currency)
}
