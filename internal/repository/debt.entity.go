package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type GroupDebtEntity struct {
	ID             int64           `gorm:"primaryKey;autoIncrement;column:id"`
	TripID         int64           `gorm:"column:trip_id;not null;uniqueIndex:idx_debt_key"`
	DebtorUserID   int64           `gorm:"column:debtor_user_id;not null;uniqueIndex:idx_debt_key"`
	CreditorUserID int64           `gorm:"column:creditor_user_id;not null;uniqueIndex:idx_debt_key"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`
	Currency       string          `gorm:"column:currency;not null;uniqueIndex:idx_debt_key"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (GroupDebtEntity) TableName() string { return "group_debts" }

type DebtContributionEntity struct {
	ID             int64           `gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID      int64           `gorm:"column:expense_id;not null;index"`
	TripID         int64           `gorm:"column:trip_id;not null;index"`
	DebtorUserID   int64           `gorm:"column:debtor_user_id;not null"`
	CreditorUserID int64           `gorm:"column:creditor_user_id;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(18,2);not null"`
	Currency       string          `gorm:"column:currency;not null"`
}

func (DebtContributionEntity) TableName() string { return "debt_contributions" }

func toDebtModel(e *GroupDebtEntity) *model.GroupDebt {
	return &model.GroupDebt{
		ID:             e.ID,
		TripID:         e.TripID,
		DebtorUserID:   e.DebtorUserID,
		CreditorUserID: e.CreditorUserID,
		Amount:         e.Amount,
		Currency:       e.Currency,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toContributionModel(e *DebtContributionEntity) *model.DebtContribution {
	return &model.DebtContribution{
		ID:             e.ID,
		ExpenseID:      e.ExpenseID,
		TripID:         e.TripID,
		DebtorUserID:   e.DebtorUserID,
		CreditorUserID: e.CreditorUserID,
		Amount:         e.Amount,
		Currency:       e.Currency,
	}
}
