package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/tdnguyen/tripledger/internal/model"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type UserService interface {
	Upsert(ctx context.Context, p model.UpsertUserRequest) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
	SetPreferredCurrency(ctx context.Context, userID int64, currency string) error
}

type UserHandler struct {
	svc UserService
}

func RegisterUserRoutes(e *router.Group, h *UserHandler) {
	e.POST("/users", h.UpsertUser)
	e.GET("/users/{id}", h.GetUser)
	e.GET("/users/{id}/settings", h.GetSettings)
	e.PUT("/users/{id}/settings", h.UpdateSettings)
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type upsertUserRequest struct {
	PlatformID int64  `json:"platform_id"`
	Name       string `json:"name"`
}

type updateSettingsRequest struct {
	PreferredCurrency string `json:"preferred_currency"`
}

func (h *UserHandler) UpsertUser(ctx *xhttp.RequestCtx) {
	var req upsertUserRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	user, err := h.svc.Upsert(ctx, model.UpsertUserRequest{
		PlatformID: req.PlatformID,
		Name:       req.Name,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, user)
}

func (h *UserHandler) GetUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

func (h *UserHandler) GetSettings(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid user id")
		return
	}

	settings, err := h.svc.GetSettings(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, settings)
}

func (h *UserHandler) UpdateSettings(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid user id")
		return
	}

	var req updateSettingsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.SetPreferredCurrency(ctx, id, req.PreferredCurrency); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"preferred_currency": req.PreferredCurrency})
}
