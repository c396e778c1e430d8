package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type TripService interface {
	Create(ctx context.Context, p model.CreateTripRequest) (*model.Trip, error)
	Get(ctx context.Context, tripID int64) (*model.Trip, error)
	Join(ctx context.Context, code string, userID int64) (*model.Trip, error)
	Members(ctx context.Context, tripID int64) ([]*model.MemberWithUser, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Trip, error)
}

type TripHandler struct {
	svc TripService
}

func RegisterTripRoutes(e *router.Group, h *TripHandler) {
	e.POST("/trips", h.CreateTrip)
	e.POST("/trips/join", h.JoinTrip)
	e.GET("/trips", h.ListTrips)
	e.GET("/trips/{id}", h.GetTrip)
	e.GET("/trips/{id}/members", h.ListMembers)
}

func NewTripHandler(svc TripService) *TripHandler {
	return &TripHandler{svc: svc}
}

type createTripRequest struct {
	OwnerUserID  int64  `json:"owner_user_id"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
}

type joinTripRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code"`
}

func (h *TripHandler) CreateTrip(ctx *xhttp.RequestCtx) {
	var req createTripRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	trip, err := h.svc.Create(ctx, model.CreateTripRequest{
		OwnerUserID:  req.OwnerUserID,
		Name:         req.Name,
		BaseCurrency: req.BaseCurrency,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, trip)
}

func (h *TripHandler) JoinTrip(ctx *xhttp.RequestCtx) {
	var req joinTripRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	trip, err := h.svc.Join(ctx, req.Code, req.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, trip)
}

func (h *TripHandler) ListTrips(ctx *xhttp.RequestCtx) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	trips, err := h.svc.ListByUser(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, trips)
}

func (h *TripHandler) GetTrip(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	trip, err := h.svc.Get(ctx, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, trip)
}

func (h *TripHandler) ListMembers(ctx *xhttp.RequestCtx) {
	tripID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid trip id")
		return
	}

	members, err := h.svc.Members(ctx, tripID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, members)
}
