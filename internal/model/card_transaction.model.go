package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardTransaction is a row of credit_card_transactions as seen by the
// confirmation engine: the charge created when a bill is paid with a card.
type CardTransaction struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	CardID             string          `json:"card_id"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	PurchaseDate       time.Time       `json:"purchase_date"`
	Installments       int             `json:"installments"`
	CurrentInstallment int             `json:"current_installment"`
	CategoryID         *string         `json:"category_id,omitempty"`
	PayableID          string          `json:"account_payable_id"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CreditCard is a card a user can charge; ClosingDay and DueDay describe its
// statement cycle.
type CreditCard struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}
