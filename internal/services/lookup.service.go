package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/household-ledger/internal/model"
)

type LookupStore interface {
	CreatePaymentType(ctx context.Context, p model.PaymentType) (model.PaymentType, error)
	ListPaymentTypes(ctx context.Context, owners []string) ([]model.PaymentType, error)
	CreateCreditCard(ctx context.Context, c model.CreditCard) (model.CreditCard, error)
	ListCreditCards(ctx context.Context, owners []string) ([]model.CreditCard, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	ListCategories(ctx context.Context, owners []string, kind model.Kind) ([]model.Category, error)
}

// LookupService manages payment types, cards and categories.
type LookupService struct {
	store  LookupStore
	owners OwnerResolver
}

func NewLookupService(store LookupStore, owners OwnerResolver) *LookupService {
	return &LookupService{
		store:  store,
		owners: owners,
	}
}

func (s *LookupService) CreatePaymentType(ctx context.Context, p model.PaymentType) (model.PaymentType, error) {
	if p.UserID == "" || p.Name == "" {
		return model.PaymentType{}, invalid(errors.New("user_id and name are required"))
	}
	return s.store.CreatePaymentType(ctx, p)
}

func (s *LookupService) PaymentTypes(ctx context.Context, userID string) ([]model.PaymentType, error) {
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	return s.store.ListPaymentTypes(ctx, owners)
}

func (s *LookupService) CreateCreditCard(ctx context.Context, c model.CreditCard) (model.CreditCard, error) {
	if c.UserID == "" || c.Name == "" {
		return model.CreditCard{}, invalid(errors.New("user_id and name are required"))
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return model.CreditCard{}, invalid(errors.New("closing_day and due_day must be between 1 and 31"))
	}
	return s.store.CreateCreditCard(ctx, c)
}

func (s *LookupService) CreditCards(ctx context.Context, userID string) ([]model.CreditCard, error) {
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	return s.store.ListCreditCards(ctx, owners)
}

func (s *LookupService) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if c.UserID == "" || c.Name == "" {
		return model.Category{}, invalid(errors.New("user_id and name are required"))
	}
	if !c.Kind.Valid() {
		return model.Category{}, ErrInvalidKind
	}
	return s.store.CreateCategory(ctx, c)
}

// Categories lists the categories of kind, or all of them when kind is empty.
func (s *LookupService) Categories(ctx context.Context, userID string, kind model.Kind) ([]model.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, ErrInvalidKind
	}
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	return s.store.ListCategories(ctx, owners, kind)
}
