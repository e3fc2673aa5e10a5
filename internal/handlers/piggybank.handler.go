package handlers

import (
	"context"

	"github.com/nimasrn/household-ledger/internal/model"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/shopspring/decimal"
)

type PiggyBankService interface {
	Deposit(ctx context.Context, m model.PiggyBankMovement) (model.PiggyBankEntry, error)
	Withdraw(ctx context.Context, m model.PiggyBankMovement) (model.PiggyBankEntry, error)
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	List(ctx context.Context, userID string) ([]model.PiggyBankEntry, error)
}

type PiggyBankHandler struct {
	svc PiggyBankService
}

func RegisterPiggyBankRoutes(e *xhttp.Group, h *PiggyBankHandler) {
	e.GET("/piggy-bank", h.ListEntries)
	e.GET("/piggy-bank/balance", h.GetBalance)
	e.POST("/piggy-bank", h.Deposit)
	e.POST("/piggy-bank/withdraw", h.Withdraw)
}

func NewPiggyBankHandler(svc PiggyBankService) *PiggyBankHandler {
	return &PiggyBankHandler{
		svc: svc,
	}
}

type piggyBankRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
}

func (h *PiggyBankHandler) Deposit(ctx *xhttp.RequestCtx) {
	h.move(ctx, h.svc.Deposit)
}

func (h *PiggyBankHandler) Withdraw(ctx *xhttp.RequestCtx) {
	h.move(ctx, h.svc.Withdraw)
}

func (h *PiggyBankHandler) move(ctx *xhttp.RequestCtx, fn func(context.Context, model.PiggyBankMovement) (model.PiggyBankEntry, error)) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req piggyBankRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	entry, err := fn(ctx, model.PiggyBankMovement{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		EntryDate:   req.Date.Time,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, entry)
}

func (h *PiggyBankHandler) GetBalance(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	balance, err := h.svc.Balance(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

func (h *PiggyBankHandler) ListEntries(ctx *xhttp.RequestCtx) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	entries, err := h.svc.List(ctx, userID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"items": entries})
}
