package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PiggyBankEntry is one movement of the savings ledger. Deposits are stored
// with a positive amount and withdrawals with a negative one.
type PiggyBankEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PiggyBankMovement struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
	EntryDate   time.Time
}

func (m PiggyBankMovement) Validate() error {
	if m.UserID == "" {
		return errors.New("user_id is required")
	}
	if !m.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}
