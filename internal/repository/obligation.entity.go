package repository

import (
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type PayableEntity struct {
	pg.Model
	UserID                 string          `gorm:"column:user_id;type:uuid;not null;index"`
	Description            string          `gorm:"column:description;not null"`
	Amount                 decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	DueDate                time.Time       `gorm:"column:due_date;type:date;not null;index"`
	IsFixed                bool            `gorm:"column:is_fixed;not null"`
	Installments           int             `gorm:"column:installments;not null"`
	CurrentInstallment     int             `gorm:"column:current_installment;not null"`
	OriginalFixedAccountID *string         `gorm:"column:original_fixed_account_id;type:uuid;index"`
	Paid                   bool            `gorm:"column:paid;not null"`
	PaidDate               *time.Time      `gorm:"column:paid_date;type:date"`
	CategoryID             *string         `gorm:"column:category_id;type:uuid"`
	PaymentTypeID          *string         `gorm:"column:payment_type_id;type:uuid"`
	CardID                 *string         `gorm:"column:card_id;type:uuid"`
	ResponsiblePartyID     *string         `gorm:"column:responsible_party_id;type:uuid"`
}

func (PayableEntity) TableName() string {
	return "accounts_payable"
}

func toPayableEntity(o model.Obligation) *PayableEntity {
	return &PayableEntity{
		Model:                  pg.Model{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt},
		UserID:                 o.UserID,
		Description:            o.Description,
		Amount:                 o.Amount,
		DueDate:                recurrence.DateOf(o.AnchorDate),
		IsFixed:                o.IsFixed,
		Installments:           o.Installments,
		CurrentInstallment:     o.CurrentInstallment,
		OriginalFixedAccountID: o.OriginalFixedID,
		Paid:                   o.Settled,
		PaidDate:               dateOrNil(o.SettledDate),
		CategoryID:             o.CategoryID,
		PaymentTypeID:          o.PaymentTypeID,
		CardID:                 o.CardID,
		ResponsiblePartyID:     o.ResponsiblePartyID,
	}
}

func toPayableModel(e *PayableEntity) model.Obligation {
	return model.Obligation{
		ID:                 e.ID,
		Kind:               model.KindPayable,
		UserID:             e.UserID,
		Description:        e.Description,
		Amount:             e.Amount,
		AnchorDate:         recurrence.DateOf(e.DueDate),
		IsFixed:            e.IsFixed,
		Installments:       e.Installments,
		CurrentInstallment: e.CurrentInstallment,
		OriginalFixedID:    e.OriginalFixedAccountID,
		Settled:            e.Paid,
		SettledDate:        dateOrNil(e.PaidDate),
		CategoryID:         e.CategoryID,
		PaymentTypeID:      e.PaymentTypeID,
		CardID:             e.CardID,
		ResponsiblePartyID: e.ResponsiblePartyID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

type ReceivableEntity struct {
	pg.Model
	UserID                 string          `gorm:"column:user_id;type:uuid;not null;index"`
	Description            string          `gorm:"column:description;not null"`
	Amount                 decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	ReceiveDate            time.Time       `gorm:"column:receive_date;type:date;not null;index"`
	IsFixed                bool            `gorm:"column:is_fixed;not null"`
	Installments           int             `gorm:"column:installments;not null"`
	CurrentInstallment     int             `gorm:"column:current_installment;not null"`
	OriginalFixedAccountID *string         `gorm:"column:original_fixed_account_id;type:uuid;index"`
	Received               bool            `gorm:"column:received;not null"`
	ReceivedDate           *time.Time      `gorm:"column:received_date;type:date"`
	CategoryID             *string         `gorm:"column:category_id;type:uuid"`
	IncomeSourceID         *string         `gorm:"column:income_source_id;type:uuid"`
	PayerID                *string         `gorm:"column:payer_id;type:uuid"`
}

func (ReceivableEntity) TableName() string {
	return "accounts_receivable"
}

func toReceivableEntity(o model.Obligation) *ReceivableEntity {
	return &ReceivableEntity{
		Model:                  pg.Model{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt},
		UserID:                 o.UserID,
		Description:            o.Description,
		Amount:                 o.Amount,
		ReceiveDate:            recurrence.DateOf(o.AnchorDate),
		IsFixed:                o.IsFixed,
		Installments:           o.Installments,
		CurrentInstallment:     o.CurrentInstallment,
		OriginalFixedAccountID: o.OriginalFixedID,
		Received:               o.Settled,
		ReceivedDate:           dateOrNil(o.SettledDate),
		CategoryID:             o.CategoryID,
		IncomeSourceID:         o.IncomeSourceID,
		PayerID:                o.PayerID,
	}
}

func toReceivableModel(e *ReceivableEntity) model.Obligation {
	return model.Obligation{
		ID:                 e.ID,
		Kind:               model.KindReceivable,
		UserID:             e.UserID,
		Description:        e.Description,
		Amount:             e.Amount,
		AnchorDate:         recurrence.DateOf(e.ReceiveDate),
		IsFixed:            e.IsFixed,
		Installments:       e.Installments,
		CurrentInstallment: e.CurrentInstallment,
		OriginalFixedID:    e.OriginalFixedAccountID,
		Settled:            e.Received,
		SettledDate:        dateOrNil(e.ReceivedDate),
		CategoryID:         e.CategoryID,
		IncomeSourceID:     e.IncomeSourceID,
		PayerID:            e.PayerID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

type CardTransactionEntity struct {
	pg.Model
	UserID                     string          `gorm:"column:user_id;type:uuid;not null;index"`
	CardID                     string          `gorm:"column:card_id;type:uuid;not null"`
	Description                string          `gorm:"column:description;not null"`
	Amount                     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	PurchaseDate               time.Time       `gorm:"column:purchase_date;type:date;not null;index"`
	IsFixed                    bool            `gorm:"column:is_fixed;not null"`
	Installments               int             `gorm:"column:installments;not null"`
	CurrentInstallment         int             `gorm:"column:current_installment;not null"`
	OriginalFixedTransactionID *string         `gorm:"column:original_fixed_transaction_id;type:uuid;index"`
	AccountPayableID           *string         `gorm:"column:account_payable_id;type:uuid;index"`
	CategoryID                 *string         `gorm:"column:category_id;type:uuid"`
}

func (CardTransactionEntity) TableName() string {
	return "credit_card_transactions"
}

func toCardTransactionEntity(o model.Obligation) *CardTransactionEntity {
	var cardID string
	if o.CardID != nil {
		cardID = *o.CardID
	}
	return &CardTransactionEntity{
		Model:                      pg.Model{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt},
		UserID:                     o.UserID,
		CardID:                     cardID,
		Description:                o.Description,
		Amount:                     o.Amount,
		PurchaseDate:               recurrence.DateOf(o.AnchorDate),
		IsFixed:                    o.IsFixed,
		Installments:               o.Installments,
		CurrentInstallment:         o.CurrentInstallment,
		OriginalFixedTransactionID: o.OriginalFixedID,
		AccountPayableID:           o.LinkedPayableID,
		CategoryID:                 o.CategoryID,
	}
}

func toCardTransactionModel(e *CardTransactionEntity) model.Obligation {
	cardID := e.CardID
	return model.Obligation{
		ID:                 e.ID,
		Kind:               model.KindCardTransaction,
		UserID:             e.UserID,
		Description:        e.Description,
		Amount:             e.Amount,
		AnchorDate:         recurrence.DateOf(e.PurchaseDate),
		IsFixed:            e.IsFixed,
		Installments:       e.Installments,
		CurrentInstallment: e.CurrentInstallment,
		OriginalFixedID:    e.OriginalFixedTransactionID,
		CardID:             &cardID,
		CategoryID:         e.CategoryID,
		LinkedPayableID:    e.AccountPayableID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func toLinkedTransactionEntity(t model.CardTransaction) *CardTransactionEntity {
	payableID := t.PayableID
	return &CardTransactionEntity{
		Model:              pg.Model{ID: t.ID},
		UserID:             t.UserID,
		CardID:             t.CardID,
		Description:        t.Description,
		Amount:             t.Amount,
		PurchaseDate:       recurrence.DateOf(t.PurchaseDate),
		Installments:       t.Installments,
		CurrentInstallment: t.CurrentInstallment,
		AccountPayableID:   &payableID,
		CategoryID:         t.CategoryID,
	}
}

func toLinkedTransactionModel(e *CardTransactionEntity) model.CardTransaction {
	t := model.CardTransaction{
		ID:                 e.ID,
		UserID:             e.UserID,
		CardID:             e.CardID,
		Description:        e.Description,
		Amount:             e.Amount,
		PurchaseDate:       recurrence.DateOf(e.PurchaseDate),
		Installments:       e.Installments,
		CurrentInstallment: e.CurrentInstallment,
		CategoryID:         e.CategoryID,
		CreatedAt:          e.CreatedAt,
	}
	if e.AccountPayableID != nil {
		t.PayableID = *e.AccountPayableID
	}
	return t
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := recurrence.DateOf(*t)
	return &d
}
