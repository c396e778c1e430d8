package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/settlement"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type SettlementService interface {
	Debts(ctx context.Context, userID, tripID int64) ([]*model.DebtWithUsers, error)
	Balances(ctx context.Context, userID, tripID int64) (map[string]map[int64]decimal.Decimal, error)
	Optimize(ctx context.Context, userID, tripID int64, currency string) ([]settlement.Transfer, error)
	OptimizeAll(ctx context.Context, userID, tripID int64) (map[string][]settlement.Transfer, error)
}

type SettlementHandler struct {
	svc SettlementService
}

func RegisterSettlementRoutes(e *router.Group, h *SettlementHandler) {
	e.GET("/trips/{id}/debts", h.ListDebts)
	e.GET("/trips/{id}/balances", h.GetBalances)
	e.POST("/trips/{id}/settle", h.Settle)
}

func NewSettlementHandler(svc SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

type settleRequest struct {
	UserID   int64  `json:"user_id"`
	Currency string `json:"currency"`
}

func (h *SettlementHandler) ListDebts(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	debts, err := h.svc.Debts(ctx, userID, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, debts)
}

func (h *SettlementHandler) GetBalances(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	balances, err := h.svc.Balances(ctx, userID, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, balances)
}

// Settle computes the minimal transfer plan. Without a currency in the body
// it plans every currency with outstanding debt.
func (h *SettlementHandler) Settle(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	var req settleRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Currency != "" {
		transfers, err := h.svc.Optimize(ctx, req.UserID, tripID, req.Currency)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, map[string][]settlement.Transfer{req.Currency: transfers})
		return
	}

	plans, err := h.svc.OptimizeAll(ctx, req.UserID, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, plans)
}
