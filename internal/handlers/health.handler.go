package handlers

import (
	"context"

	xhttp "github.com/nimasrn/household-ledger/pkg/http"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db HealthChecker
}

func RegisterHealthRoutes(e *xhttp.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.db.Ping(ctx); err != nil {
		writeJSON(ctx, xhttp.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ok"})
}
