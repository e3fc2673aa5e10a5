package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which store an obligation lives in.
type Kind string

const (
	KindPayable         Kind = "payable"
	KindReceivable      Kind = "receivable"
	KindCardTransaction Kind = "card_transaction"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPayable, KindReceivable, KindCardTransaction:
		return true
	}
	return false
}

// Settleable reports whether obligations of this kind carry a paid/received state.
func (k Kind) Settleable() bool {
	return k == KindPayable || k == KindReceivable
}

// Obligation is the shape shared by bills payable, bills receivable and card
// transactions. AnchorDate is the due, receive or purchase date depending on
// the kind; Settled and SettledDate are paid/received and their date. On the
// wire each kind uses its own column names, see MarshalJSON.
type Obligation struct {
	ID                 string
	Kind               Kind
	UserID             string
	Description        string
	Amount             decimal.Decimal // per installment
	AnchorDate         time.Time
	IsFixed            bool
	Installments       int
	CurrentInstallment int
	// OriginalFixedID points at the template for fixed materializations and at
	// the series head for installment rows after the first.
	OriginalFixedID *string
	Settled         bool
	SettledDate     *time.Time

	CategoryID         *string
	PaymentTypeID      *string
	CardID             *string
	ResponsiblePartyID *string
	IncomeSourceID     *string
	PayerID            *string
	// LinkedPayableID is set on card transactions created by paying a bill.
	LinkedPayableID *string

	// GeneratedFixedInstance marks a virtual occurrence; never persisted.
	GeneratedFixedInstance bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no pointers with o.
func (o Obligation) Clone() Obligation {
	c := o
	c.OriginalFixedID = cloneString(o.OriginalFixedID)
	c.CategoryID = cloneString(o.CategoryID)
	c.PaymentTypeID = cloneString(o.PaymentTypeID)
	c.CardID = cloneString(o.CardID)
	c.ResponsiblePartyID = cloneString(o.ResponsiblePartyID)
	c.IncomeSourceID = cloneString(o.IncomeSourceID)
	c.PayerID = cloneString(o.PayerID)
	c.LinkedPayableID = cloneString(o.LinkedPayableID)
	if o.SettledDate != nil {
		d := *o.SettledDate
		c.SettledDate = &d
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ObligationCreateRequest is the input for creating a single obligation, a
// fixed template or a whole installment series.
type ObligationCreateRequest struct {
	Kind               Kind
	UserID             string
	Description        string
	Amount             decimal.Decimal
	AnchorDate         time.Time
	IsFixed            bool
	Installments       int
	CategoryID         *string
	PaymentTypeID      *string
	CardID             *string
	ResponsiblePartyID *string
	IncomeSourceID     *string
	PayerID            *string
}

func (p ObligationCreateRequest) Validate() error {
	if !p.Kind.Valid() {
		return errors.New("kind is invalid")
	}
	if p.UserID == "" {
		return errors.New("user_id is required")
	}
	if p.Description == "" {
		return errors.New("description is required")
	}
	if !p.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	if p.AnchorDate.IsZero() {
		return errors.New("date is required")
	}
	if p.Installments < 0 {
		return errors.New("installments cannot be negative")
	}
	if p.IsFixed && p.Installments > 1 {
		return errors.New("fixed obligations cannot have installments")
	}
	if p.Kind == KindCardTransaction && p.CardID == nil {
		return errors.New("card_id is required")
	}
	return nil
}

// ObligationPatch carries the editable fields; nil fields are left unchanged.
type ObligationPatch struct {
	Description        *string
	Amount             *decimal.Decimal
	AnchorDate         *time.Time
	CategoryID         *string
	PaymentTypeID      *string
	CardID             *string
	ResponsiblePartyID *string
}

func (p ObligationPatch) Validate() error {
	if p.Description != nil && *p.Description == "" {
		return errors.New("description cannot be empty")
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	if p.AnchorDate != nil && p.AnchorDate.IsZero() {
		return errors.New("date cannot be empty")
	}
	return nil
}

// ChangesCharge reports whether p touches what a card charge was built from.
func (p ObligationPatch) ChangesCharge() bool {
	return p.Amount != nil || p.CardID != nil || p.PaymentTypeID != nil
}

// Apply copies the set fields of p onto o.
func (p ObligationPatch) Apply(o *Obligation) {
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.Amount != nil {
		o.Amount = *p.Amount
	}
	if p.AnchorDate != nil {
		o.AnchorDate = *p.AnchorDate
	}
	if p.CategoryID != nil {
		o.CategoryID = cloneString(p.CategoryID)
	}
	if p.PaymentTypeID != nil {
		o.PaymentTypeID = cloneString(p.PaymentTypeID)
	}
	if p.CardID != nil {
		o.CardID = cloneString(p.CardID)
	}
	if p.ResponsiblePartyID != nil {
		o.ResponsiblePartyID = cloneString(p.ResponsiblePartyID)
	}
}

// ConfirmResult is the outcome of confirming an occurrence.
type ConfirmResult struct {
	Persisted         *Obligation      `json:"persisted"`
	Materialized      bool             `json:"materialized"`
	LinkedTransaction *CardTransaction `json:"linked_transaction,omitempty"`
	// LinkError is set only in best-effort mode when the card transaction
	// could not be written after the obligation was committed.
	LinkError string `json:"link_error,omitempty"`
}
