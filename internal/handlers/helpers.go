package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/services"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/nimasrn/household-ledger/pkg/logger"
)

// UserHeader carries the authenticated user id set by the upstream gateway.
const UserHeader = "X-User-Id"

var errMissingUser = errors.New("missing " + UserHeader + " header")

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
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

// writeServiceError maps service errors onto status codes.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrCardRequired):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrVirtualOccurrence),
		errors.Is(err, services.ErrNotEditable),
		errors.Is(err, services.ErrLinkedTransaction),
		errors.Is(err, services.ErrAlreadyMaterialized),
		errors.Is(err, services.ErrAlreadySettled),
		errors.Is(err, services.ErrNotSettled),
		errors.Is(err, services.ErrNotSettleable),
		errors.Is(err, services.ErrConfirmInProgress),
		errors.Is(err, services.ErrInsufficientBalance):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	default:
		logger.Error("[handlers] request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

func currentUser(ctx *xhttp.RequestCtx) (string, bool) {
	id := string(ctx.Request.Header.Peek(UserHeader))
	if id == "" {
		writeError(ctx, xhttp.StatusUnauthorized, errMissingUser.Error())
		return "", false
	}
	return id, true
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func pathKind(ctx *xhttp.RequestCtx) (model.Kind, bool) {
	kind := model.Kind(pathParam(ctx, "kind"))
	if !kind.Valid() {
		writeError(ctx, xhttp.StatusBadRequest, services.ErrInvalidKind.Error())
		return "", false
	}
	return kind, true
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// Date is a calendar date in YYYY-MM-DD form.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
