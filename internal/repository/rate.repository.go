package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateRepository struct {
	*pg.DB
}

func NewRateRepository(db *pg.DB) *RateRepository {
	return &RateRepository{db}
}

// Set upserts the rate for the (from, to) pair. Operator-set rates never
// expire.
func (r *RateRepository) Set(ctx context.Context, p model.SetExchangeRateRequest) (*model.ExchangeRate, error) {
	entity := &ExchangeRateEntity{
		FromCurrency: p.FromCurrency,
		ToCurrency:   p.ToCurrency,
		Rate:         p.Rate,
		SetBy:        p.SetBy,
	}
	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "set_by", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}

	var saved ExchangeRateEntity
	err = r.Write(ctx).
		Where("from_currency = ? AND to_currency = ?", p.FromCurrency, p.ToCurrency).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return toRateModel(&saved), nil
}

// Get resolves the effective rate for the pair: the direct row first, then the
// reciprocal of the reverse row. Returns ErrRateNotFound when neither exists.
func (r *RateRepository) Get(ctx context.Context, from, to string) (decimal.Decimal, error) {
	var entity ExchangeRateEntity
	err := r.Read(ctx).
		Where("from_currency = ? AND to_currency = ?", from, to).
		First(&entity).Error
	if err == nil {
		return entity.Rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	err = r.Read(ctx).
		Where("from_currency = ? AND to_currency = ?", to, from).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrRateNotFound
		}
		return decimal.Zero, err
	}
	if entity.Rate.IsZero() {
		return decimal.Zero, ErrRateNotFound
	}
	return decimal.NewFromInt(1).DivRound(entity.Rate, 6), nil
}

func (r *RateRepository) List(ctx context.Context) ([]*model.ExchangeRate, error) {
	var entities []*ExchangeRateEntity
	err := r.Read(ctx).
		Order("from_currency ASC, to_currency ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.ExchangeRate, len(entities))
	for i, e := range entities {
		out[i] = toRateModel(e)
	}
	return out, nil
}
