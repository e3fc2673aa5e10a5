package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// obligationJSON carries the column names of every kind; an obligation fills
// only those of its own table.
type obligationJSON struct {
	ID                 string          `json:"id"`
	Kind               Kind            `json:"kind"`
	UserID             string          `json:"user_id"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	DueDate            *string         `json:"due_date,omitempty"`
	ReceiveDate        *string         `json:"receive_date,omitempty"`
	PurchaseDate       *string         `json:"purchase_date,omitempty"`
	IsFixed            bool            `json:"is_fixed"`
	Installments       int             `json:"installments"`
	CurrentInstallment int             `json:"current_installment"`

	OriginalFixedAccountID     *string `json:"original_fixed_account_id,omitempty"`
	OriginalFixedTransactionID *string `json:"original_fixed_transaction_id,omitempty"`

	Paid         *bool   `json:"paid,omitempty"`
	PaidDate     *string `json:"paid_date,omitempty"`
	Received     *bool   `json:"received,omitempty"`
	ReceivedDate *string `json:"received_date,omitempty"`

	CategoryID         *string `json:"category_id,omitempty"`
	PaymentTypeID      *string `json:"payment_type_id,omitempty"`
	CardID             *string `json:"card_id,omitempty"`
	ResponsiblePartyID *string `json:"responsible_party_id,omitempty"`
	IncomeSourceID     *string `json:"income_source_id,omitempty"`
	PayerID            *string `json:"payer_id,omitempty"`
	AccountPayableID   *string `json:"account_payable_id,omitempty"`

	GeneratedFixedInstance bool      `json:"is_generated_fixed_instance"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// MarshalJSON writes o with the column names of its table: due_date, paid and
// paid_date for payables, receive_date, received and received_date for
// receivables, purchase_date and account_payable_id for card transactions.
func (o Obligation) MarshalJSON() ([]byte, error) {
	w := obligationJSON{
		ID:                     o.ID,
		Kind:                   o.Kind,
		UserID:                 o.UserID,
		Description:            o.Description,
		Amount:                 o.Amount,
		IsFixed:                o.IsFixed,
		Installments:           o.Installments,
		CurrentInstallment:     o.CurrentInstallment,
		CategoryID:             o.CategoryID,
		PaymentTypeID:          o.PaymentTypeID,
		CardID:                 o.CardID,
		ResponsiblePartyID:     o.ResponsiblePartyID,
		IncomeSourceID:         o.IncomeSourceID,
		PayerID:                o.PayerID,
		GeneratedFixedInstance: o.GeneratedFixedInstance,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
	anchor := formatDate(o.AnchorDate)
	settled := o.Settled
	switch o.Kind {
	case KindReceivable:
		w.ReceiveDate = anchor
		w.OriginalFixedAccountID = o.OriginalFixedID
		w.Received = &settled
		w.ReceivedDate = formatDatePtr(o.SettledDate)
	case KindCardTransaction:
		w.PurchaseDate = anchor
		w.OriginalFixedTransactionID = o.OriginalFixedID
		w.AccountPayableID = o.LinkedPayableID
	default:
		w.DueDate = anchor
		w.OriginalFixedAccountID = o.OriginalFixedID
		w.Paid = &settled
		w.PaidDate = formatDatePtr(o.SettledDate)
	}
	return json.Marshal(w)
}

func (o *Obligation) UnmarshalJSON(b []byte) error {
	var w obligationJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*o = Obligation{
		ID:                     w.ID,
		Kind:                   w.Kind,
		UserID:                 w.UserID,
		Description:            w.Description,
		Amount:                 w.Amount,
		IsFixed:                w.IsFixed,
		Installments:           w.Installments,
		CurrentInstallment:     w.CurrentInstallment,
		CategoryID:             w.CategoryID,
		PaymentTypeID:          w.PaymentTypeID,
		CardID:                 w.CardID,
		ResponsiblePartyID:     w.ResponsiblePartyID,
		IncomeSourceID:         w.IncomeSourceID,
		PayerID:                w.PayerID,
		GeneratedFixedInstance: w.GeneratedFixedInstance,
		CreatedAt:              w.CreatedAt,
		UpdatedAt:              w.UpdatedAt,
	}

	var anchor, settledDate *string
	switch w.Kind {
	case KindReceivable:
		anchor, settledDate = w.ReceiveDate, w.ReceivedDate
		o.OriginalFixedID = w.OriginalFixedAccountID
		o.Settled = w.Received != nil && *w.Received
	case KindCardTransaction:
		anchor = w.PurchaseDate
		o.OriginalFixedID = w.OriginalFixedTransactionID
		o.LinkedPayableID = w.AccountPayableID
	default:
		anchor, settledDate = w.DueDate, w.PaidDate
		o.OriginalFixedID = w.OriginalFixedAccountID
		o.Settled = w.Paid != nil && *w.Paid
	}

	var err error
	if anchor != nil {
		if o.AnchorDate, err = parseDate(*anchor); err != nil {
			return err
		}
	}
	if settledDate != nil {
		d, err := parseDate(*settledDate)
		if err != nil {
			return err
		}
		o.SettledDate = &d
	}
	return nil
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

// parseDate reads a calendar date; full timestamps are accepted too.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
