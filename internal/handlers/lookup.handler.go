package handlers

import (
	"context"

	"github.com/nimasrn/household-ledger/internal/model"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
)

type LookupService interface {
	CreatePaymentType(ctx context.Context, p model.PaymentType) (model.PaymentType, error)
	PaymentTypes(ctx context.Context, userID string) ([]model.PaymentType, error)
	CreateCreditCard(ctx context.Context, c model.CreditCard) (model.CreditCard, error)
	CreditCards(ctx context.Context, userID string) ([]model.CreditCard, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	Categories(ctx context.Context, userID string, kind model.Kind) ([]model.Category, error)
}

type LookupHandler struct {
	svc LookupService
}

func RegisterLookupRoutes(e *xhttp.Group, h *LookupHandler) {
	e.GET("/payment-types", h.ListPaymentTypes)
	e.POST("/payment-types", h.CreatePaymentType)
	e.GET("/credit-cards", h.ListCreditCards)
	e.POST("/credit-cards", h.CreateCreditCard)
	e.GET("/categories", h.ListCategories)
	e.POST("/categories", h.CreateCategory)
}

func NewLookupHandler(svc LookupService) *LookupHandler {
	return &LookupHandler{
		svc: svc,
	}
}

func (h *LookupHandler) CreatePaymentType(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req model.PaymentType
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.UserID = userID
	created, err := h.svc.CreatePaymentType(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *LookupHandler) ListPaymentTypes(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, err := h.svc.PaymentTypes(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"items": items})
}

func (h *LookupHandler) CreateCreditCard(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req model.CreditCard
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.UserID = userID
	created, err := h.svc.CreateCreditCard(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *LookupHandler) ListCreditCards(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, err := h.svc.CreditCards(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"items": items})
}

func (h *LookupHandler) CreateCategory(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req model.Category
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.UserID = userID
	created, err := h.svc.CreateCategory(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

// ListCategories filters by the optional kind query parameter.
func (h *LookupHandler) ListCategories(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	items, err := h.svc.Categories(ctx, userID, model.Kind(query(ctx, "kind")))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"items": items})
}
