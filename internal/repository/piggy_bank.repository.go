package repository

import (
	"context"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type PiggyBankRepository struct {
	*pg.DB
}

func NewPiggyBankRepository(db *pg.DB) *PiggyBankRepository {
	return &PiggyBankRepository{
		db,
	}
}

func (r *PiggyBankRepository) Create(ctx context.Context, e model.PiggyBankEntry) (model.PiggyBankEntry, error) {
	entity := &PiggyBankEntryEntity{
		Model:       pg.Model{ID: e.ID},
		UserID:      e.UserID,
		Amount:      e.Amount,
		Description: e.Description,
		EntryDate:   recurrence.DateOf(e.EntryDate),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.PiggyBankEntry{}, err
	}
	return toPiggyBankEntryModel(entity), nil
}

// Balance sums the signed amounts of every entry of owners.
func (r *PiggyBankRepository) Balance(ctx context.Context, owners []string) (decimal.Decimal, error) {
	var row struct {
		Balance decimal.Decimal
	}
	err := r.Read(ctx).
		Model(&PiggyBankEntryEntity{}).
		Select("COALESCE(SUM(amount), 0) AS balance").
		Where("user_id IN ?", owners).
		Scan(&row).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Balance, nil
}

// LockedBalance locks every entry of owners, then sums them. Inside a
// transaction a second caller for the same owners waits for the first to
// commit and sums what it wrote.
func (r *PiggyBankRepository) LockedBalance(ctx context.Context, owners []string) (decimal.Decimal, error) {
	var ids []string
	err := r.Write(ctx).
		Model(&PiggyBankEntryEntity{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id IN ?", owners).
		Pluck("id", &ids).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	return r.Balance(ctx, owners)
}

func (r *PiggyBankRepository) List(ctx context.Context, owners []string) ([]model.PiggyBankEntry, error) {
	var entities []*PiggyBankEntryEntity
	err := r.Read(ctx).
		Where("user_id IN ?", owners).
		Order("entry_date DESC").
		Order("created_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]model.PiggyBankEntry, len(entities))
	for i, e := range entities {
		out[i] = toPiggyBankEntryModel(e)
	}
	return out, nil
}
