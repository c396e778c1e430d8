package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type BankService interface {
	Add(ctx context.Context, p model.AddBankAccountRequest) (*model.BankAccount, error)
	List(ctx context.Context, userID int64) ([]*model.BankAccount, error)
	SetDefault(ctx context.Context, userID, accountID int64) error
	Delete(ctx context.Context, userID, accountID int64) error
	PaymentQR(ctx context.Context, userID int64, amount decimal.Decimal, currency, description string) (string, error)
}

type BankHandler struct {
	svc BankService
}

func RegisterBankRoutes(e *router.Group, h *BankHandler) {
	e.POST("/banks", h.AddAccount)
	e.GET("/banks", h.ListAccounts)
	e.POST("/banks/{id}/default", h.SetDefaultAccount)
	e.DELETE("/banks/{id}", h.DeleteAccount)
	e.GET("/banks/qr", h.PaymentQR)
}

func NewBankHandler(svc BankService) *BankHandler {
	return &BankHandler{svc: svc}
}

type addBankAccountRequest struct {
	UserID        int64  `json:"user_id"`
	BankCode      string `json:"bank_code"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

func (h *BankHandler) AddAccount(ctx *xhttp.RequestCtx) {
	var req addBankAccountRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	account, err := h.svc.Add(ctx, model.AddBankAccountRequest{
		UserID:        req.UserID,
		BankCode:      req.BankCode,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, account)
}

func (h *BankHandler) ListAccounts(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	accounts, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, accounts)
}

func (h *BankHandler) SetDefaultAccount(ctx *xhttp.RequestCtx) {
	accountID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid account id")
		return
	}

	var req undoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.SetDefault(ctx, req.UserID, accountID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"default": true})
}

func (h *BankHandler) DeleteAccount(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	accountID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.svc.Delete(ctx, userID, accountID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"deleted": true})
}

// PaymentQR renders a VietQR image URL against the user's default bank
// account for the given amount.
func (h *BankHandler) PaymentQR(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(query(ctx, "amount"))
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid amount")
		return
	}
	currency := query(ctx, "currency")
	if currency == "" {
		currency = "VND"
	}

	url, err := h.svc.PaymentQR(ctx, userID, amount, currency, query(ctx, "description"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"qr_url": url})
}
