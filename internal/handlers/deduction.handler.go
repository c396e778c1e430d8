package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type DeductionService interface {
	ListPending(ctx context.Context, userID int64) ([]*model.PendingDeduction, error)
	Confirm(ctx context.Context, userID, pendingID int64, walletID *int64) (*model.GroupDeduction, error)
	Cancel(ctx context.Context, userID, pendingID int64) error
	ListByTrip(ctx context.Context, tripID int64) ([]*model.GroupDeduction, error)
}

type DeductionHandler struct {
	svc DeductionService
}

func RegisterDeductionRoutes(e *router.Group, h *DeductionHandler) {
	e.GET("/deductions/pending", h.ListPending)
	e.POST("/deductions/pending/{id}/confirm", h.ConfirmPending)
	e.POST("/deductions/pending/{id}/cancel", h.CancelPending)
	e.GET("/trips/{id}/deductions", h.ListByTrip)
}

func NewDeductionHandler(svc DeductionService) *DeductionHandler {
	return &DeductionHandler{svc: svc}
}

type confirmDeductionRequest struct {
	UserID   int64  `json:"user_id"`
	WalletID *int64 `json:"wallet_id"`
}

func (h *DeductionHandler) ListPending(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	pending, err := h.svc.ListPending(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, pending)
}

// ConfirmPending debits the suggested wallet, or the wallet_id from the body
// when the user picked a different one.
func (h *DeductionHandler) ConfirmPending(ctx *xhttp.RequestCtx) {
	pendingID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid pending deduction id")
		return
	}

	var req confirmDeductionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	deduction, err := h.svc.Confirm(ctx, req.UserID, pendingID, req.WalletID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, deduction)
}

func (h *DeductionHandler) CancelPending(ctx *xhttp.RequestCtx) {
	pendingID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid pending deduction id")
		return
	}

	var req undoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.Cancel(ctx, req.UserID, pendingID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]bool{"canceled": true})
}

func (h *DeductionHandler) ListByTrip(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	deductions, err := h.svc.ListByTrip(ctx, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, deductions)
}
