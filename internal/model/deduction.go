package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingDeduction is a proposed wallet debit awaiting explicit confirmation.
// Confirming converts it into a GroupDeduction plus a wallet debit; canceling
// deletes it with no side effect. The suggested wallet may be absent when the
// participant has no wallets at all.
type PendingDeduction struct {
	ID                int64            `json:"id"             db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID            int64            `json:"user_id"        db:"user_id"         gorm:"column:user_id;not null;index"`
	TripID            int64            `json:"trip_id"        db:"trip_id"         gorm:"column:trip_id;not null;index"`
	ExpenseID         int64            `json:"expense_id"     db:"expense_id"      gorm:"column:expense_id;not null;index"`
	ShareAmount       decimal.Decimal  `json:"share_amount"   db:"share_amount"    gorm:"column:share_amount;type:numeric(18,2);not null"`
	ShareCurrency     string           `json:"share_currency" db:"share_currency"  gorm:"column:share_currency;not null"`
	SuggestedWalletID *int64           `json:"suggested_wallet_id,omitempty" db:"suggested_wallet_id" gorm:"column:suggested_wallet_id"`
	SuggestedFxRate   *decimal.Decimal `json:"suggested_fx_rate,omitempty"   db:"suggested_fx_rate"   gorm:"column:suggested_fx_rate;type:numeric(18,6)"`
	SuggestedAmount   *decimal.Decimal `json:"suggested_amount,omitempty"    db:"suggested_amount"    gorm:"column:suggested_amount;type:numeric(18,2)"`
	CreatedAt         time.Time        `json:"created_at"     db:"created_at"      gorm:"column:created_at;autoCreateTime"`
}

func (PendingDeduction) TableName() string { return "pending_deductions" }

// GroupDeduction is the immutable record of a confirmed deduction.
type GroupDeduction struct {
	ID             int64           `json:"id"              db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64           `json:"user_id"         db:"user_id"          gorm:"column:user_id;not null;index"`
	TripID         int64           `json:"trip_id"         db:"trip_id"          gorm:"column:trip_id;not null;index"`
	ExpenseID      int64           `json:"expense_id"      db:"expense_id"       gorm:"column:expense_id;not null;index"`
	ShareAmount    decimal.Decimal `json:"share_amount"    db:"share_amount"     gorm:"column:share_amount;type:numeric(18,2);not null"`
	ShareCurrency  string          `json:"share_currency"  db:"share_currency"   gorm:"column:share_currency;not null"`
	WalletID       int64           `json:"wallet_id"       db:"wallet_id"        gorm:"column:wallet_id;not null"`
	FxRateUsed     decimal.Decimal `json:"fx_rate_used"    db:"fx_rate_used"     gorm:"column:fx_rate_used;type:numeric(18,6);not null"`
	DeductedAmount decimal.Decimal `json:"deducted_amount" db:"deducted_amount"  gorm:"column:deducted_amount;type:numeric(18,2);not null"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"       gorm:"column:created_at;autoCreateTime"`
}

func (GroupDeduction) TableName() string { return "group_deductions" }

// WalletSuggestion is one candidate wallet for settling a share, with the
// conversion already worked out.
type WalletSuggestion struct {
	Wallet Wallet          `json:"wallet"`
	FxRate decimal.Decimal `json:"fx_rate"`
	Amount decimal.Decimal `json:"amount"`
}
