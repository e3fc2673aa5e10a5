package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrObligationNotFound      = errors.New("obligation not found")
	ErrCardTransactionNotFound = errors.New("card transaction not found")
	// ErrSettlementUnsupported is returned by stores without a settlement state.
	ErrSettlementUnsupported = errors.New("store has no settlement state")
)

// columns names the kind-specific columns of an obligation table.
type columns struct {
	anchor      string
	original    string
	settled     string
	settledDate string
	editable    []string
}

// obligationTable implements the shared obligation store operations over one
// table. E is the gorm entity of that table.
type obligationTable[E any] struct {
	*pg.DB
	cols     columns
	toEntity func(model.Obligation) *E
	toModel  func(*E) model.Obligation
}

func (r *obligationTable[E]) Create(ctx context.Context, o model.Obligation) (model.Obligation, error) {
	entity := r.toEntity(o)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.Obligation{}, err
	}
	return r.toModel(entity), nil
}

// CreateBatch inserts rows in one statement, in order.
func (r *obligationTable[E]) CreateBatch(ctx context.Context, rows []model.Obligation) ([]model.Obligation, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	entities := make([]*E, len(rows))
	for i, o := range rows {
		entities[i] = r.toEntity(o)
	}
	if err := r.Write(ctx).Create(entities).Error; err != nil {
		return nil, err
	}
	return r.toModels(entities), nil
}

func (r *obligationTable[E]) Get(ctx context.Context, id string) (model.Obligation, error) {
	var entity E
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Obligation{}, ErrObligationNotFound
		}
		return model.Obligation{}, err
	}
	return r.toModel(&entity), nil
}

// ListByOwners returns every row owned by any of owners, ordered by anchor date.
func (r *obligationTable[E]) ListByOwners(ctx context.Context, owners []string) ([]model.Obligation, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	var entities []*E
	err := r.Read(ctx).
		Where("user_id IN ?", owners).
		Order(r.cols.anchor + " ASC").
		Order("created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return r.toModels(entities), nil
}

// FindMaterialization returns the real row standing for templateID in month.
func (r *obligationTable[E]) FindMaterialization(ctx context.Context, templateID string, month recurrence.YearMonth) (model.Obligation, error) {
	var entities []*E
	err := r.Read(ctx).
		Where(r.cols.original+" = ?", templateID).
		Where("is_fixed = ?", false).
		Where(r.cols.anchor+" >= ? AND "+r.cols.anchor+" <= ?", month.Start(), month.End()).
		Find(&entities).
		Error
	if err != nil {
		return model.Obligation{}, err
	}
	for _, o := range r.toModels(entities) {
		if recurrence.IsMaterializationOf(o, templateID, month) {
			return o, nil
		}
	}
	return model.Obligation{}, ErrObligationNotFound
}

// Update writes the editable columns of o.
func (r *obligationTable[E]) Update(ctx context.Context, o model.Obligation) (model.Obligation, error) {
	result := r.Write(ctx).
		Model(new(E)).
		Where("id = ?", o.ID).
		Select(r.cols.editable).
		Updates(r.toEntity(o))
	if result.Error != nil {
		return model.Obligation{}, result.Error
	}
	if result.RowsAffected == 0 {
		return model.Obligation{}, ErrObligationNotFound
	}
	return r.Get(ctx, o.ID)
}

func (r *obligationTable[E]) MarkSettled(ctx context.Context, id string, date time.Time) error {
	if r.cols.settled == "" {
		return ErrSettlementUnsupported
	}
	return r.updateSettlement(ctx, id, map[string]any{
		r.cols.settled:     true,
		r.cols.settledDate: recurrence.DateOf(date),
	})
}

func (r *obligationTable[E]) ClearSettlement(ctx context.Context, id string) error {
	if r.cols.settled == "" {
		return ErrSettlementUnsupported
	}
	return r.updateSettlement(ctx, id, map[string]any{
		r.cols.settled:     false,
		r.cols.settledDate: nil,
	})
}

func (r *obligationTable[E]) updateSettlement(ctx context.Context, id string, values map[string]any) error {
	result := r.Write(ctx).
		Model(new(E)).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrObligationNotFound
	}
	return nil
}

func (r *obligationTable[E]) Delete(ctx context.Context, id string) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(new(E))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrObligationNotFound
	}
	return nil
}

func (r *obligationTable[E]) toModels(entities []*E) []model.Obligation {
	models := make([]model.Obligation, len(entities))
	for i, e := range entities {
		models[i] = r.toModel(e)
	}
	return models
}

type PayableRepository struct {
	obligationTable[PayableEntity]
}

func NewPayableRepository(db *pg.DB) *PayableRepository {
	return &PayableRepository{obligationTable[PayableEntity]{
		DB: db,
		cols: columns{
			anchor:      "due_date",
			original:    "original_fixed_account_id",
			settled:     "paid",
			settledDate: "paid_date",
			editable: []string{
				"description", "amount", "due_date", "category_id",
				"payment_type_id", "card_id", "responsible_party_id",
			},
		},
		toEntity: toPayableEntity,
		toModel:  toPayableModel,
	}}
}

type ReceivableRepository struct {
	obligationTable[ReceivableEntity]
}

func NewReceivableRepository(db *pg.DB) *ReceivableRepository {
	return &ReceivableRepository{obligationTable[ReceivableEntity]{
		DB: db,
		cols: columns{
			anchor:      "receive_date",
			original:    "original_fixed_account_id",
			settled:     "received",
			settledDate: "received_date",
			editable: []string{
				"description", "amount", "receive_date", "category_id",
				"income_source_id", "payer_id",
			},
		},
		toEntity: toReceivableEntity,
		toModel:  toReceivableModel,
	}}
}

// CardTransactionRepository stores card purchases and the charges created by
// paying a bill with a card, the latter linked through account_payable_id.
type CardTransactionRepository struct {
	obligationTable[CardTransactionEntity]
}

func NewCardTransactionRepository(db *pg.DB) *CardTransactionRepository {
	return &CardTransactionRepository{obligationTable[CardTransactionEntity]{
		DB: db,
		cols: columns{
			anchor:   "purchase_date",
			original: "original_fixed_transaction_id",
			editable: []string{
				"description", "amount", "purchase_date", "card_id", "category_id",
			},
		},
		toEntity: toCardTransactionEntity,
		toModel:  toCardTransactionModel,
	}}
}

func (r *CardTransactionRepository) CreateLinked(ctx context.Context, t model.CardTransaction) (model.CardTransaction, error) {
	entity := toLinkedTransactionEntity(t)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.CardTransaction{}, err
	}
	return toLinkedTransactionModel(entity), nil
}

func (r *CardTransactionRepository) FindByPayableID(ctx context.Context, payableID string) (model.CardTransaction, error) {
	var entity CardTransactionEntity
	err := r.Read(ctx).Where("account_payable_id = ?", payableID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CardTransaction{}, ErrCardTransactionNotFound
		}
		return model.CardTransaction{}, err
	}
	return toLinkedTransactionModel(&entity), nil
}

// DeleteByPayableID removes the transactions linked to payableID and returns
// ErrCardTransactionNotFound when there were none.
func (r *CardTransactionRepository) DeleteByPayableID(ctx context.Context, payableID string) error {
	result := r.Write(ctx).Where("account_payable_id = ?", payableID).Delete(&CardTransactionEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardTransactionNotFound
	}
	return nil
}
