package model

import (
	"errors"
	"time"
)

// BankAccount is used only to fill payment-QR requests; the core never parses
// bank routing data beyond passing these fields through.
type BankAccount struct {
	ID            int64     `json:"id"             db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64     `json:"user_id"        db:"user_id"        gorm:"column:user_id;not null;index"`
	BankCode      string    `json:"bank_code"      db:"bank_code"      gorm:"column:bank_code;not null"`
	BankName      string    `json:"bank_name"      db:"bank_name"      gorm:"column:bank_name;not null"`
	AccountNumber string    `json:"account_number" db:"account_number" gorm:"column:account_number;not null"`
	AccountName   string    `json:"account_name"   db:"account_name"   gorm:"column:account_name;not null"`
	IsDefault     bool      `json:"is_default"     db:"is_default"     gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (BankAccount) TableName() string { return "bank_accounts" }

type AddBankAccountRequest struct {
	UserID        int64
	BankCode      string
	BankName      string
	AccountNumber string
	AccountName   string
}

func (p AddBankAccountRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.BankCode == "" || p.AccountNumber == "" || p.AccountName == "" {
		return errors.New("bank_code, account_number and account_name are required")
	}
	return nil
}
