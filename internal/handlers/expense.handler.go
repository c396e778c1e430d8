package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type ExpenseService interface {
	Add(ctx context.Context, p model.AddPersonalExpenseRequest) (*model.PersonalExpense, error)
	Reverse(ctx context.Context, userID, expenseID int64) error
	ReverseLatest(ctx context.Context, userID int64) (*model.PersonalExpense, error)
	HardDelete(ctx context.Context, userID, expenseID int64) error
	List(ctx context.Context, userID int64, limit int) ([]*model.PersonalExpense, error)
}

type ExpenseHandler struct {
	svc ExpenseService
}

func RegisterExpenseRoutes(e *router.Group, h *ExpenseHandler) {
	e.POST("/expenses", h.AddExpense)
	e.GET("/expenses", h.ListExpenses)
	e.POST("/expenses/undo", h.UndoLatestExpense)
	e.POST("/expenses/{id}/undo", h.UndoExpense)
	e.DELETE("/expenses/{id}", h.DeleteExpense)
}

func NewExpenseHandler(svc ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

type addExpenseRequest struct {
	UserID   int64           `json:"user_id"`
	WalletID int64           `json:"wallet_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Note     string          `json:"note"`
}

type undoRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *ExpenseHandler) AddExpense(ctx *xhttp.RequestCtx) {
	var req addExpenseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.Add(ctx, model.AddPersonalExpenseRequest{
		UserID:   req.UserID,
		WalletID: req.WalletID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Note:     req.Note,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, expense)
}

func (h *ExpenseHandler) ListExpenses(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	expenses, err := h.svc.List(ctx, userID, queryInt(ctx, "limit", 0))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, expenses)
}

// UndoLatestExpense reverses the caller's most recent personal expense and
// returns the reversed record.
func (h *ExpenseHandler) UndoLatestExpense(ctx *xhttp.RequestCtx) {
	var req undoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.ReverseLatest(ctx, req.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, expense)
}

func (h *ExpenseHandler) UndoExpense(ctx *xhttp.RequestCtx) {
	expenseID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid expense id")
		return
	}

	var req undoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.Reverse(ctx, req.UserID, expenseID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"reversed": true})
}

// DeleteExpense removes the record without touching the wallet balance,
// unlike an undo.
func (h *ExpenseHandler) DeleteExpense(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	expenseID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid expense id")
		return
	}

	if err := h.svc.HardDelete(ctx, userID, expenseID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"deleted": true})
}
