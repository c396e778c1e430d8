package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupDebt is the materialized net debt for one (trip, debtor, creditor,
// currency) key. At most one row exists per key; a debt settled to exactly
// zero is deleted rather than stored.
type GroupDebt struct {
	ID             int64           `json:"id"               db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	TripID         int64           `json:"trip_id"          db:"trip_id"          gorm:"column:trip_id;not null;uniqueIndex:idx_debt_key"`
	DebtorUserID   int64           `json:"debtor_user_id"   db:"debtor_user_id"   gorm:"column:debtor_user_id;not null;uniqueIndex:idx_debt_key"`
	CreditorUserID int64           `json:"creditor_user_id" db:"creditor_user_id" gorm:"column:creditor_user_id;not null;uniqueIndex:idx_debt_key"`
	Amount         decimal.Decimal `json:"amount"           db:"amount"           gorm:"column:amount;type:numeric(18,2);not null"`
	Currency       string          `json:"currency"         db:"currency"         gorm:"column:currency;not null;uniqueIndex:idx_debt_key"`
	UpdatedAt      time.Time       `json:"updated_at"       db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (GroupDebt) TableName() string { return "group_debts" }

// DebtWithUsers joins a debt row with both parties for presentation.
type DebtWithUsers struct {
	Debt     GroupDebt `json:"debt"`
	Debtor   User      `json:"debtor"`
	Creditor User      `json:"creditor"`
}

// DebtContribution is one debt delta produced by an expense split, recorded so
// an undo can reverse exactly what the split applied.
type DebtContribution struct {
	ID             int64           `json:"id"               db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID      int64           `json:"expense_id"       db:"expense_id"       gorm:"column:expense_id;not null;index"`
	TripID         int64           `json:"trip_id"          db:"trip_id"          gorm:"column:trip_id;not null;index"`
	DebtorUserID   int64           `json:"debtor_user_id"   db:"debtor_user_id"   gorm:"column:debtor_user_id;not null"`
	CreditorUserID int64           `json:"creditor_user_id" db:"creditor_user_id" gorm:"column:creditor_user_id;not null"`
	Amount         decimal.Decimal `json:"amount"           db:"amount"           gorm:"column:amount;type:numeric(18,2);not null"`
	Currency       string          `json:"currency"         db:"currency"         gorm:"column:currency;not null"`
}

func (DebtContribution) TableName() string { return "debt_contributions" }
