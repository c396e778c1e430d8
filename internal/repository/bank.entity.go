package repository

import (
	"time"

	"github.com/tdnguyen/tripledger/internal/model"
)

type BankAccountEntity struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64     `gorm:"column:user_id;not null;index"`
	BankCode      string    `gorm:"column:bank_code;not null"`
	BankName      string    `gorm:"column:bank_name;not null"`
	AccountNumber string    `gorm:"column:account_number;not null"`
	AccountName   string    `gorm:"column:account_name;not null"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (BankAccountEntity) TableName() string { return "bank_accounts" }

func toBankModel(e *BankAccountEntity) *model.BankAccount {
	return &model.BankAccount{
		ID:            e.ID,
		UserID:        e.UserID,
		BankCode:      e.BankCode,
		BankName:      e.BankName,
		AccountNumber: e.AccountNumber,
		AccountName:   e.AccountName,
		IsDefault:     e.IsDefault,
		CreatedAt:     e.CreatedAt,
	}
}
