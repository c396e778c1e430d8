package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type WalletService interface {
	Create(ctx context.Context, p model.CreateWalletRequest) (*model.Wallet, error)
	Get(ctx context.Context, userID, walletID int64) (*model.Wallet, error)
	List(ctx context.Context, userID int64) ([]*model.Wallet, error)
	Adjust(ctx context.Context, userID, walletID int64, delta decimal.Decimal, reason string) (*model.Wallet, error)
	Delete(ctx context.Context, userID, walletID int64) (decimal.Decimal, error)
	Transactions(ctx context.Context, userID, walletID int64, limit int) ([]*model.WalletTransaction, error)
}

type WalletHandler struct {
	svc WalletService
}

func RegisterWalletRoutes(e *router.Group, h *WalletHandler) {
	e.POST("/wallets", h.CreateWallet)
	e.GET("/wallets", h.ListWallets)
	e.GET("/wallets/{id}", h.GetWallet)
	e.POST("/wallets/{id}/adjust", h.AdjustWallet)
	e.DELETE("/wallets/{id}", h.DeleteWallet)
	e.GET("/wallets/{id}/transactions", h.ListTransactions)
}

func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

type createWalletRequest struct {
	UserID        int64           `json:"user_id"`
	Currency      string          `json:"currency"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Note          string          `json:"note"`
}

type adjustWalletRequest struct {
	UserID int64           `json:"user_id"`
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

func (h *WalletHandler) CreateWallet(ctx *xhttp.RequestCtx) {
	var req createWalletRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	wallet, err := h.svc.Create(ctx, model.CreateWalletRequest{
		UserID:        req.UserID,
		Currency:      req.Currency,
		InitialAmount: req.InitialAmount,
		Note:          req.Note,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, wallet)
}

func (h *WalletHandler) ListWallets(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	wallets, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, wallets)
}

func (h *WalletHandler) GetWallet(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	walletID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid wallet id")
		return
	}

	wallet, err := h.svc.Get(ctx, userID, walletID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, wallet)
}

func (h *WalletHandler) AdjustWallet(ctx *xhttp.RequestCtx) {
	walletID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid wallet id")
		return
	}

	var req adjustWalletRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	wallet, err := h.svc.Adjust(ctx, req.UserID, walletID, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, wallet)
}

func (h *WalletHandler) DeleteWallet(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	walletID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid wallet id")
		return
	}

	forfeited, err := h.svc.Delete(ctx, userID, walletID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]decimal.Decimal{"forfeited_balance": forfeited})
}

func (h *WalletHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	walletID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid wallet id")
		return
	}

	transactions, err := h.svc.Transactions(ctx, userID, walletID, queryInt(ctx, "limit", 0))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, transactions)
}
