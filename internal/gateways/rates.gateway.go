package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/valyala/fasthttp"
)

var ErrRateUnavailable = errors.New("no provider returned a rate")

// RateResponse is the wire shape every rate provider must return.
type RateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
	Date string          `json:"date"`
}

type RateClientConfig struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
	MaxConns    int
}

// RateClient fetches exchange rates from an external provider, falling back
// to a secondary provider when the primary fails. A failure of both is
// surfaced as ErrRateUnavailable; conversions never guess a rate.
type RateClient struct {
	config RateClientConfig
	urls   []string
	client *fasthttp.Client
}

func NewRateClient(config RateClientConfig) (*RateClient, error) {
	if config.PrimaryURL == "" {
		return nil, errors.New("primary provider url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 3 * time.Second
	}
	if config.MaxConns <= 0 {
		config.MaxConns = 64
	}

	urls := []string{config.PrimaryURL}
	if config.FallbackURL != "" {
		urls = append(urls, config.FallbackURL)
	}

	return &RateClient{
		config: config,
		urls:   urls,
		client: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}, nil
}

// GetRate fetches the from→to rate, trying providers in order.
func (c *RateClient) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	var lastErr error
	for _, base := range c.urls {
		rate, err := c.fetch(ctx, base, from, to)
		if err == nil {
			return rate, nil
		}
		lastErr = err
		logger.Warn("rate provider failed", "url", base, "from", from, "to", to, "error", err)
	}
	if lastErr != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRateUnavailable, lastErr)
	}
	return decimal.Zero, ErrRateUnavailable
}

func (c *RateClient) fetch(ctx context.Context, base, from, to string) (decimal.Decimal, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/rates?from=%s&to=%s", base, from, to))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentType("application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.Body())
	}

	var parsed RateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !parsed.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("provider returned non-positive rate %s", parsed.Rate)
	}
	return parsed.Rate, nil
}
