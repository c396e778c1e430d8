package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is an operator-set fixed rate. It takes priority over any
// cached or externally fetched rate and never expires.
type ExchangeRate struct {
	ID           int64           `json:"id"            db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	FromCurrency string          `json:"from_currency" db:"from_currency" gorm:"column:from_currency;not null;uniqueIndex:idx_rate_pair"`
	ToCurrency   string          `json:"to_currency"   db:"to_currency"   gorm:"column:to_currency;not null;uniqueIndex:idx_rate_pair"`
	Rate         decimal.Decimal `json:"rate"          db:"rate"          gorm:"column:rate;type:numeric(18,6);not null"`
	SetBy        *int64          `json:"set_by,omitempty" db:"set_by"     gorm:"column:set_by"`
	CreatedAt    time.Time       `json:"created_at"    db:"created_at"    gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at"    db:"updated_at"    gorm:"column:updated_at;autoUpdateTime"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }

type SetExchangeRateRequest struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	SetBy        *int64
}

func (p SetExchangeRateRequest) Validate() error {
	if err := ValidateCurrency(p.FromCurrency); err != nil {
		return err
	}
	if err := ValidateCurrency(p.ToCurrency); err != nil {
		return err
	}
	if p.FromCurrency == p.ToCurrency {
		return errors.New("currencies must differ")
	}
	if !p.Rate.IsPositive() {
		return errors.New("rate must be positive")
	}
	return nil
}
