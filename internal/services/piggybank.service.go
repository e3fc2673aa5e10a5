package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/nimasrn/household-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

type PiggyBankStore interface {
	Create(ctx context.Context, e model.PiggyBankEntry) (model.PiggyBankEntry, error)
	Balance(ctx context.Context, owners []string) (decimal.Decimal, error)
	// LockedBalance is Balance holding the owners' entries until the
	// transaction ends.
	LockedBalance(ctx context.Context, owners []string) (decimal.Decimal, error)
	List(ctx context.Context, owners []string) ([]model.PiggyBankEntry, error)
}

type PiggyBankService struct {
	store  PiggyBankStore
	owners OwnerResolver
	tx     Transactor
	now    func() time.Time
}

func NewPiggyBankService(store PiggyBankStore, owners OwnerResolver, tx Transactor) *PiggyBankService {
	return &PiggyBankService{
		store:  store,
		owners: owners,
		tx:     tx,
		now:    time.Now,
	}
}

func (s *PiggyBankService) Deposit(ctx context.Context, m model.PiggyBankMovement) (model.PiggyBankEntry, error) {
	if err := m.Validate(); err != nil {
		return model.PiggyBankEntry{}, invalid(err)
	}
	entry, err := s.store.Create(ctx, s.entry(m, m.Amount))
	if err != nil {
		return model.PiggyBankEntry{}, fmt.Errorf("create deposit: %w", err)
	}
	prom.AddPiggyBankEntry("deposit")
	return entry, nil
}

// Withdraw records a negative entry; the shared balance may not go below zero.
func (s *PiggyBankService) Withdraw(ctx context.Context, m model.PiggyBankMovement) (model.PiggyBankEntry, error) {
	if err := m.Validate(); err != nil {
		return model.PiggyBankEntry{}, invalid(err)
	}
	owners, err := s.owners.OwnerIDs(ctx, m.UserID)
	if err != nil {
		return model.PiggyBankEntry{}, fmt.Errorf("resolve owners: %w", err)
	}

	var entry model.PiggyBankEntry
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.store.LockedBalance(ctx, owners)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if balance.LessThan(m.Amount) {
			logger.Info("[piggy-bank] withdrawal exceeds balance", "user_id", m.UserID, "balance", balance.String(), "amount", m.Amount.String())
			return ErrInsufficientBalance
		}
		created, err := s.store.Create(ctx, s.entry(m, m.Amount.Neg()))
		entry = created
		return err
	})
	if err != nil {
		return model.PiggyBankEntry{}, err
	}
	prom.AddPiggyBankEntry("withdraw")
	return entry, nil
}

func (s *PiggyBankService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve owners: %w", err)
	}
	return s.store.Balance(ctx, owners)
}

func (s *PiggyBankService) List(ctx context.Context, userID string) ([]model.PiggyBankEntry, error) {
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	return s.store.List(ctx, owners)
}

func (s *PiggyBankService) entry(m model.PiggyBankMovement, amount decimal.Decimal) model.PiggyBankEntry {
	date := m.EntryDate
	if date.IsZero() {
		date = s.now()
	}
	return model.PiggyBankEntry{
		UserID:      m.UserID,
		Amount:      amount,
		Description: m.Description,
		EntryDate:   date,
	}
}
