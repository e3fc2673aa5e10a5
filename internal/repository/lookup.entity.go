package repository

import (
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type PaymentTypeEntity struct {
	pg.Model
	UserID       string `gorm:"column:user_id;type:uuid;not null;index"`
	Name         string `gorm:"column:name;not null"`
	IsCreditCard bool   `gorm:"column:is_credit_card;not null"`
}

func (PaymentTypeEntity) TableName() string {
	return "payment_types"
}

func toPaymentTypeModel(e *PaymentTypeEntity) model.PaymentType {
	return model.PaymentType{ID: e.ID, UserID: e.UserID, Name: e.Name, IsCreditCard: e.IsCreditCard}
}

type CreditCardEntity struct {
	pg.Model
	UserID     string `gorm:"column:user_id;type:uuid;not null;index"`
	Name       string `gorm:"column:name;not null"`
	ClosingDay int    `gorm:"column:closing_day;not null"`
	DueDay     int    `gorm:"column:due_day;not null"`
}

func (CreditCardEntity) TableName() string {
	return "credit_cards"
}

func toCreditCardModel(e *CreditCardEntity) model.CreditCard {
	return model.CreditCard{ID: e.ID, UserID: e.UserID, Name: e.Name, ClosingDay: e.ClosingDay, DueDay: e.DueDay}
}

type CategoryEntity struct {
	pg.Model
	UserID string `gorm:"column:user_id;type:uuid;not null;index"`
	Name   string `gorm:"column:name;not null"`
	Kind   string `gorm:"column:kind;not null"`
}

func (CategoryEntity) TableName() string {
	return "categories"
}

func toCategoryModel(e *CategoryEntity) model.Category {
	return model.Category{ID: e.ID, UserID: e.UserID, Name: e.Name, Kind: model.Kind(e.Kind)}
}

// ProfileEntity ids come from the identity provider.
type ProfileEntity struct {
	ID        string    `gorm:"primaryKey;type:uuid;column:id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name"`
	FamilyID  *string   `gorm:"column:family_id;type:uuid;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProfileEntity) TableName() string {
	return "profiles"
}

func toProfileEntity(p model.Profile) *ProfileEntity {
	return &ProfileEntity{ID: p.ID, Email: p.Email, FullName: p.FullName, FamilyID: p.FamilyID, CreatedAt: p.CreatedAt}
}

func toProfileModel(e *ProfileEntity) model.Profile {
	return model.Profile{ID: e.ID, Email: e.Email, FullName: e.FullName, FamilyID: e.FamilyID, CreatedAt: e.CreatedAt}
}

type PiggyBankEntryEntity struct {
	pg.Model
	UserID      string          `gorm:"column:user_id;type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Description string          `gorm:"column:description"`
	EntryDate   time.Time       `gorm:"column:entry_date;type:date;not null"`
}

func (PiggyBankEntryEntity) TableName() string {
	return "piggy_bank_entries"
}

func toPiggyBankEntryModel(e *PiggyBankEntryEntity) model.PiggyBankEntry {
	return model.PiggyBankEntry{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Description: e.Description,
		EntryDate:   recurrence.DateOf(e.EntryDate),
		CreatedAt:   e.CreatedAt,
	}
}
