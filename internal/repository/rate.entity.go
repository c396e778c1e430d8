package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

type ExchangeRateEntity struct {
	ID           int64           `gorm:"primaryKey;autoIncrement;column:id"`
	FromCurrency string          `gorm:"column:from_currency;not null;uniqueIndex:idx_rate_pair"`
	ToCurrency   string          `gorm:"column:to_currency;not null;uniqueIndex:idx_rate_pair"`
	Rate         decimal.Decimal `gorm:"column:rate;type:numeric(18,6);not null"`
	SetBy        *int64          `gorm:"column:set_by"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExchangeRateEntity) TableName() string { return "exchange_rates" }

func toRateModel(e *ExchangeRateEntity) *model.ExchangeRate {
	return &model.ExchangeRate{
		ID:           e.ID,
		FromCurrency: e.FromCurrency,
		ToCurrency:   e.ToCurrency,
		Rate:         e.Rate,
		SetBy:        e.SetBy,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
