package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type GroupExpenseService interface {
	Add(ctx context.Context, p model.AddGroupExpenseRequest) (*model.GroupExpense, error)
	Undo(ctx context.Context, userID, expenseID int64) error
	UndoLatest(ctx context.Context, userID, tripID int64) (*model.GroupExpense, error)
	List(ctx context.Context, userID, tripID int64, limit int) ([]*model.GroupExpense, error)
	Shares(ctx context.Context, expenseID int64) ([]*model.ExpenseShare, error)
}

type GroupExpenseHandler struct {
	svc GroupExpenseService
}

func RegisterGroupExpenseRoutes(e *router.Group, h *GroupExpenseHandler) {
	e.POST("/trips/{id}/expenses", h.AddGroupExpense)
	e.GET("/trips/{id}/expenses", h.ListGroupExpenses)
	e.POST("/trips/{id}/expenses/undo", h.UndoLatestGroupExpense)
	e.POST("/group-expenses/{id}/undo", h.UndoGroupExpense)
	e.GET("/group-expenses/{id}/shares", h.ListShares)
}

func NewGroupExpenseHandler(svc GroupExpenseService) *GroupExpenseHandler {
	return &GroupExpenseHandler{svc: svc}
}

type addGroupExpenseRequest struct {
	PayerUserID  int64           `json:"payer_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Note         string          `json:"note"`
	Participants []int64         `json:"participants"`
}

func (h *GroupExpenseHandler) AddGroupExpense(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	var req addGroupExpenseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.Add(ctx, model.AddGroupExpenseRequest{
		TripID:       tripID,
		PayerUserID:  req.PayerUserID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Note:         req.Note,
		Participants: req.Participants,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, expense)
}

func (h *GroupExpenseHandler) ListGroupExpenses(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	expenses, err := h.svc.List(ctx, userID, tripID, queryInt(ctx, "limit", 0))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, expenses)
}

func (h *GroupExpenseHandler) UndoLatestGroupExpense(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	var req undoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.UndoLatest(ctx, req.UserID, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, expense)
}

func (h *GroupExpenseHandler) UndoGroupExpense(ctx *xhttp.RequestCtx) {
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

	if err := h.svc.Undo(ctx, req.UserID, expenseID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"reversed": true})
}

func (h *GroupExpenseHandler) ListShares(ctx *xhttp.RequestCtx) {
	expenseID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid expense id")
		return
	}

	shares, err := h.svc.Shares(ctx, expenseID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, shares)
}
