package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/tdnguyen/tripledger/internal/services"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
)

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the service sentinels onto HTTP statuses so every
// handler reports them the same way.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrExpenseNotFound),
		errors.Is(err, services.ErrTripNotFound),
		errors.Is(err, services.ErrPendingNotFound),
		errors.Is(err, services.ErrBankNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotWalletOwner),
		errors.Is(err, services.ErrNotExpenseOwner),
		errors.Is(err, services.ErrNotExpensePayer),
		errors.Is(err, services.ErrNotPendingOwner),
		errors.Is(err, services.ErrNotTripMember),
		errors.Is(err, services.ErrParticipantOutside):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrDuplicateWallet),
		errors.Is(err, services.ErrAlreadyMember):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUndoWindowClosed):
		writeError(ctx, xhttp.StatusGone, err.Error())
	case errors.Is(err, services.ErrConversionUnavailable):
		writeError(ctx, xhttp.StatusBadGateway, err.Error())
	default:
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt64(ctx *xhttp.RequestCtx, key string) (int64, error) {
	return strconv.ParseInt(query(ctx, key), 10, 64)
}

func queryInt(ctx *xhttp.RequestCtx, key string, fallback int) int {
	if v := query(ctx, key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

// requireUserID reads the acting user from the user_id query parameter and
// writes the error response itself when it is missing.
func requireUserID(ctx *xhttp.RequestCtx) (int64, bool) {
	id, err := queryInt64(ctx, "user_id")
	if err != nil || id <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "user_id query parameter is required")
		return 0, false
	}
	return id, true
}
