package handlers

import (
	"context"
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/shopspring/decimal"
)

type ObligationService interface {
	Create(ctx context.Context, req model.ObligationCreateRequest) ([]model.Obligation, error)
	Month(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) ([]recurrence.Occurrence, error)
	Summary(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) (recurrence.Summary, error)
	Resolve(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Occurrence, error)
	ResolveReal(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Real, error)
	Update(ctx context.Context, r recurrence.Real, patch model.ObligationPatch) (model.Obligation, error)
	Confirm(ctx context.Context, occ recurrence.Occurrence, date time.Time) (model.ConfirmResult, error)
	Reverse(ctx context.Context, r recurrence.Real) error
	Delete(ctx context.Context, r recurrence.Real) error
}

type ObligationHandler struct {
	svc ObligationService
}

func RegisterObligationRoutes(e *xhttp.Group, h *ObligationHandler) {
	e.GET("/obligations/{kind}", h.ListMonth)
	e.GET("/obligations/{kind}/summary", h.GetSummary)
	e.POST("/obligations/{kind}", h.Create)
	e.PUT("/obligations/{kind}/{id}", h.Update)
	e.POST("/obligations/{kind}/{id}/confirm", h.Confirm)
	e.POST("/obligations/{kind}/{id}/reverse", h.Reverse)
	e.DELETE("/obligations/{kind}/{id}", h.Delete)
}

func NewObligationHandler(svc ObligationService) *ObligationHandler {
	return &ObligationHandler{
		svc: svc,
	}
}

type createObligationRequest struct {
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Date               Date            `json:"date"`
	IsFixed            bool            `json:"is_fixed"`
	Installments       int             `json:"installments"`
	CategoryID         *string         `json:"category_id"`
	PaymentTypeID      *string         `json:"payment_type_id"`
	CardID             *string         `json:"card_id"`
	ResponsiblePartyID *string         `json:"responsible_party_id"`
	IncomeSourceID     *string         `json:"income_source_id"`
	PayerID            *string         `json:"payer_id"`
}

type updateObligationRequest struct {
	Description        *string          `json:"description"`
	Amount             *decimal.Decimal `json:"amount"`
	Date               *Date            `json:"date"`
	CategoryID         *string          `json:"category_id"`
	PaymentTypeID      *string          `json:"payment_type_id"`
	CardID             *string          `json:"card_id"`
	ResponsiblePartyID *string          `json:"responsible_party_id"`
}

type confirmRequest struct {
	Date Date `json:"date"`
}

// createResponse lists the stored rows; TotalValue is the whole purchase
// across every installment.
type createResponse struct {
	Items      []model.Obligation `json:"items"`
	TotalValue decimal.Decimal    `json:"total_value"`
}

type monthResponse struct {
	Month string             `json:"month"`
	Items []model.Obligation `json:"items"`
}

func (h *ObligationHandler) ListMonth(ctx *xhttp.RequestCtx) {
	userID, kind, month, ok := h.monthParams(ctx)
	if !ok {
		return
	}
	occ, err := h.svc.Month(ctx, kind, userID, month)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, monthResponse{Month: month.String(), Items: recurrence.Records(occ)})
}

func (h *ObligationHandler) GetSummary(ctx *xhttp.RequestCtx) {
	userID, kind, month, ok := h.monthParams(ctx)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(ctx, kind, userID, month)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

func (h *ObligationHandler) Create(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	kind, ok := pathKind(ctx)
	if !ok {
		return
	}
	var req createObligationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	created, err := h.svc.Create(ctx, model.ObligationCreateRequest{
		Kind:               kind,
		UserID:             userID,
		Description:        req.Description,
		Amount:             req.Amount,
		AnchorDate:         req.Date.Time,
		IsFixed:            req.IsFixed,
		Installments:       req.Installments,
		CategoryID:         req.CategoryID,
		PaymentTypeID:      req.PaymentTypeID,
		CardID:             req.CardID,
		ResponsiblePartyID: req.ResponsiblePartyID,
		IncomeSourceID:     req.IncomeSourceID,
		PayerID:            req.PayerID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	response := createResponse{Items: created, TotalValue: decimal.Zero}
	if len(created) > 0 {
		response.TotalValue = recurrence.TotalValue(created[0])
	}
	writeJSON(ctx, xhttp.StatusCreated, response)
}

func (h *ObligationHandler) Update(ctx *xhttp.RequestCtx) {
	r, ok := h.resolveReal(ctx)
	if !ok {
		return
	}
	var req updateObligationRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	patch := model.ObligationPatch{
		Description:        req.Description,
		Amount:             req.Amount,
		CategoryID:         req.CategoryID,
		PaymentTypeID:      req.PaymentTypeID,
		CardID:             req.CardID,
		ResponsiblePartyID: req.ResponsiblePartyID,
	}
	if req.Date != nil {
		d := req.Date.value()
		patch.AnchorDate = &d
	}

	updated, err := h.svc.Update(ctx, r, patch)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, updated)
}

// Confirm accepts real and virtual ids.
func (h *ObligationHandler) Confirm(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	kind, ok := pathKind(ctx)
	if !ok {
		return
	}
	var req confirmRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Date.IsZero() {
		writeError(ctx, xhttp.StatusBadRequest, "date is required")
		return
	}

	occ, err := h.svc.Resolve(ctx, kind, userID, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	result, err := h.svc.Confirm(ctx, occ, req.Date.Time)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	status := xhttp.StatusOK
	if result.Materialized {
		status = xhttp.StatusCreated
	}
	writeJSON(ctx, status, result)
}

func (h *ObligationHandler) Reverse(ctx *xhttp.RequestCtx) {
	r, ok := h.resolveReal(ctx)
	if !ok {
		return
	}
	if err := h.svc.Reverse(ctx, r); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *ObligationHandler) Delete(ctx *xhttp.RequestCtx) {
	r, ok := h.resolveReal(ctx)
	if !ok {
		return
	}
	if err := h.svc.Delete(ctx, r); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *ObligationHandler) resolveReal(ctx *xhttp.RequestCtx) (recurrence.Real, bool) {
	userID, ok := currentUser(ctx)
	if !ok {
		return recurrence.Real{}, false
	}
	kind, ok := pathKind(ctx)
	if !ok {
		return recurrence.Real{}, false
	}
	r, err := h.svc.ResolveReal(ctx, kind, userID, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return recurrence.Real{}, false
	}
	return r, true
}

func (h *ObligationHandler) monthParams(ctx *xhttp.RequestCtx) (string, model.Kind, recurrence.YearMonth, bool) {
	userID, ok := currentUser(ctx)
	if !ok {
		return "", "", recurrence.YearMonth{}, false
	}
	kind, ok := pathKind(ctx)
	if !ok {
		return "", "", recurrence.YearMonth{}, false
	}
	month, err := recurrence.ParseYearMonth(query(ctx, "month"))
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "month must be YYYY-MM")
		return "", "", recurrence.YearMonth{}, false
	}
	return userID, kind, month, true
}
