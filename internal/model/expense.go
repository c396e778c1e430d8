package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// UndoWindow bounds how long an expense can be reversed after recording.
const UndoWindow = 24 * time.Hour

type PersonalExpense struct {
	ID              int64            `json:"id"               db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int64            `json:"user_id"          db:"user_id"           gorm:"column:user_id;not null;index"`
	WalletID        int64            `json:"wallet_id"        db:"wallet_id"         gorm:"column:wallet_id;not null;index"`
	Amount          decimal.Decimal  `json:"amount"           db:"amount"            gorm:"column:amount;type:numeric(18,2);not null"`
	Currency        string           `json:"currency"         db:"currency"          gorm:"column:currency;not null"`
	Note            string           `json:"note,omitempty"   db:"note"              gorm:"column:note"`
	FxRate          *decimal.Decimal `json:"fx_rate,omitempty"          db:"fx_rate"          gorm:"column:fx_rate;type:numeric(18,6)"`
	ConvertedAmount *decimal.Decimal `json:"converted_amount,omitempty" db:"converted_amount" gorm:"column:converted_amount;type:numeric(18,2)"`
	CreatedAt       time.Time        `json:"created_at"       db:"created_at"        gorm:"column:created_at;autoCreateTime"`
	UndoUntil       time.Time        `json:"undo_until"       db:"undo_until"        gorm:"column:undo_until;not null"`
}

func (PersonalExpense) TableName() string { return "personal_expenses" }

// DebitedAmount is what actually left the wallet: the converted amount when a
// currency conversion happened at recording time, the raw amount otherwise.
func (e *PersonalExpense) DebitedAmount() decimal.Decimal {
	if e.ConvertedAmount != nil {
		return *e.ConvertedAmount
	}
	return e.Amount
}

type AddPersonalExpenseRequest struct {
	UserID   int64
	WalletID int64
	Amount   decimal.Decimal
	Currency string
	Note     string
}

func (p AddPersonalExpenseRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.WalletID == 0 {
		return errors.New("wallet_id is required")
	}
	if !p.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return ValidateCurrency(p.Currency)
}
