package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/prom"
	"github.com/tdnguyen/tripledger/pkg/redis"
)

var ErrConversionUnavailable = errors.New("exchange rate unavailable")

// cached rates carry the calendar date in the key, so a stale entry from
// yesterday is never served even if its TTL has not run out.
const rateCacheTTL = 26 * time.Hour

type RateRepository interface {
	Set(ctx context.Context, p model.SetExchangeRateRequest) (*model.ExchangeRate, error)
	Get(ctx context.Context, from, to string) (decimal.Decimal, error)
	List(ctx context.Context) ([]*model.ExchangeRate, error)
}

type RateFetcher interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

type RateCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

type CurrencyService struct {
	rateRepo RateRepository
	fetcher  RateFetcher
	cache    RateCache
	now      func() time.Time
}

func NewCurrencyService(rateRepo RateRepository, fetcher RateFetcher, cache RateCache) *CurrencyService {
	return &CurrencyService{
		rateRepo: rateRepo,
		fetcher:  fetcher,
		cache:    cache,
		now:      time.Now,
	}
}

// Convert resolves a rate for from→to and applies it. Resolution order:
// operator-set rate (never expires), same-day cached rate, external fetch
// (cached afterwards under today's date). The converted amount is rounded to
// 2 decimal places; rates keep 6.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), amount, nil
	}

	rate, source, err := s.resolveRate(ctx, from, to)
	if err != nil {
		prom.IncCounter(prom.SystemLedger, prom.MetricConversionFailures)
		return decimal.Zero, decimal.Zero, err
	}

	prom.IncCounterVec(prom.SystemLedger, prom.MetricConversions, source)
	return rate, amount.Mul(rate).Round(2), nil
}

// GetRate resolves the rate without converting an amount.
func (s *CurrencyService) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	rate, _, err := s.resolveRate(ctx, from, to)
	return rate, err
}

func (s *CurrencyService) SetRate(ctx context.Context, p model.SetExchangeRateRequest) (*model.ExchangeRate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.rateRepo.Set(ctx, p)
}

func (s *CurrencyService) ListRates(ctx context.Context) ([]*model.ExchangeRate, error) {
	return s.rateRepo.List(ctx)
}

func (s *CurrencyService) resolveRate(ctx context.Context, from, to string) (decimal.Decimal, string, error) {
	rate, err := s.rateRepo.Get(ctx, from, to)
	if err == nil {
		return rate, "admin", nil
	}
	if !errors.Is(err, repository.ErrRateNotFound) {
		return decimal.Zero, "", err
	}

	cacheKey := s.cacheKey(from, to)
	if s.cache != nil {
		if raw, err := s.cache.Get(cacheKey); err == nil {
			cached, err := decimal.NewFromString(string(raw))
			if err == nil && cached.IsPositive() {
				return cached, "cache", nil
			}
		} else if !errors.Is(err, redis.NilError) {
			logger.Warn("rate cache read failed", "key", cacheKey, "error", err)
		}
	}

	if s.fetcher == nil {
		return decimal.Zero, "", ErrConversionUnavailable
	}
	fetched, err := s.fetcher.GetRate(ctx, from, to)
	if err != nil {
		logger.Error("rate fetch failed", "from", from, "to", to, "error", err)
		return decimal.Zero, "", ErrConversionUnavailable
	}

	fetched = fetched.Round(6)
	if s.cache != nil {
		if err := s.cache.Set(cacheKey, []byte(fetched.String()), rateCacheTTL); err != nil {
			logger.Warn("rate cache write failed", "key", cacheKey, "error", err)
		}
	}
	return fetched, "fetch", nil
}

func (s *CurrencyService) cacheKey(from, to string) string {
	return fmt.Sprintf("fx:%s:%s:%s", from, to, s.now().Format("2006-01-02"))
}

var currencySymbols = map[string]string{
	"TWD": "NT$",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"VND": "₫",
	"KRW": "₩",
	"IDR": "Rp",
}

// zeroDecimalCurrencies are quoted in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"VND": true,
	"JPY": true,
	"KRW": true,
	"IDR": true,
}

// FormatAmount renders an amount with thousands separators and a currency
// symbol: "1,500,000 ₫" for whole-unit currencies, "NT$ 1,234.56" otherwise.
func FormatAmount(amount decimal.Decimal, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}

	if zeroDecimalCurrencies[currency] {
		return fmt.Sprintf("%s %s", groupThousands(amount.Round(0).String()), symbol)
	}
	return fmt.Sprintf("%s %s", symbol, groupThousands(amount.StringFixed(2)))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
