package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/services"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type CurrencyService interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	SetRate(ctx context.Context, p model.SetExchangeRateRequest) (*model.ExchangeRate, error)
	ListRates(ctx context.Context) ([]*model.ExchangeRate, error)
}

type RateHandler struct {
	svc CurrencyService
}

func RegisterRateRoutes(e *router.Group, h *RateHandler) {
	e.PUT("/rates", h.SetRate)
	e.GET("/rates", h.ListRates)
	e.GET("/rates/convert", h.Convert)
}

func NewRateHandler(svc CurrencyService) *RateHandler {
	return &RateHandler{svc: svc}
}

type setRateRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	SetBy        *int64          `json:"set_by"`
}

type convertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted"`
}

// SetRate pins an admin rate that outranks cached and fetched ones and never
// expires.
func (h *RateHandler) SetRate(ctx *xhttp.RequestCtx) {
	var req setRateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	rate, err := h.svc.SetRate(ctx, model.SetExchangeRateRequest{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Rate:         req.Rate,
		SetBy:        req.SetBy,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rate)
}

func (h *RateHandler) ListRates(ctx *xhttp.RequestCtx) {
	rates, err := h.svc.ListRates(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rates)
}

func (h *RateHandler) Convert(ctx *xhttp.RequestCtx) {
	amount, err := decimal.NewFromString(query(ctx, "amount"))
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid amount")
		return
	}
	from := query(ctx, "from")
	to := query(ctx, "to")

	rate, converted, err := h.svc.Convert(ctx, amount, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, convertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Converted: converted,
		Formatted: services.FormatAmount(converted, to),
	})
}
