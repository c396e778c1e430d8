package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID             int64           `json:"id"              db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64           `json:"user_id"         db:"user_id"         gorm:"column:user_id;not null;uniqueIndex:idx_wallet_user_currency"`
	User           *User           `json:"-"                                    gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Currency       string          `json:"currency"        db:"currency"        gorm:"column:currency;not null;uniqueIndex:idx_wallet_user_currency"`
	InitialAmount  decimal.Decimal `json:"initial_amount"  db:"initial_amount"  gorm:"column:initial_amount;type:numeric(18,2);not null"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance" gorm:"column:current_balance;type:numeric(18,2);not null"`
	Note           string          `json:"note,omitempty"  db:"note"            gorm:"column:note"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"      gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at"      db:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
}

func (Wallet) TableName() string { return "wallets" }

// WalletAdjustment is an append-only log entry. The wallet balance must always
// equal initial_amount plus the sum of all adjustment deltas.
type WalletAdjustment struct {
	ID        int64           `json:"id"         db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	WalletID  int64           `json:"wallet_id"  db:"wallet_id"   gorm:"column:wallet_id;not null;index"`
	Wallet    *Wallet         `json:"-"                           gorm:"foreignKey:WalletID;references:ID;constraint:OnDelete:CASCADE"`
	Delta     decimal.Decimal `json:"delta"      db:"delta"       gorm:"column:delta;type:numeric(18,2);not null"`
	Reason    string          `json:"reason"     db:"reason"      gorm:"column:reason;not null"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (WalletAdjustment) TableName() string { return "wallet_adjustments" }

// WalletTransaction is a unified view over adjustments and personal expenses,
// expenses rendered as negative amounts.
type WalletTransaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"` // "adjustment" | "expense"
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateWalletRequest struct {
	UserID        int64
	Currency      string
	InitialAmount decimal.Decimal
	Note          string
}

func (p CreateWalletRequest) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if err := ValidateCurrency(p.Currency); err != nil {
		return err
	}
	if p.InitialAmount.IsNegative() {
		return errors.New("initial_amount must not be negative")
	}
	return nil
}

// ValidateCurrency accepts ISO-like uppercase alphabetic codes of length 3.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return errors.New("currency must be uppercase letters")
		}
	}
	return nil
}
