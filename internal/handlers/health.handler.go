package handlers

import (
	"github.com/fasthttp/router"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

type HealthChecker interface {
	Check() error
}

type HealthHandler struct {
	checker HealthChecker
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if h.checker != nil {
		if err := h.checker.Check(); err != nil {
			writeError(ctx, xhttp.StatusInternalServerError, err.Error())
			return
		}
	}
	ctx.Response.SetBodyString("success")
}
