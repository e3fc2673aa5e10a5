package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrPaymentTypeNotFound = errors.New("payment type not found")
	ErrCreditCardNotFound  = errors.New("credit card not found")
)

// LookupRepository serves the small per-user reference tables.
type LookupRepository struct {
	*pg.DB
}

func NewLookupRepository(db *pg.DB) *LookupRepository {
	return &LookupRepository{
		db,
	}
}

func (r *LookupRepository) CreatePaymentType(ctx context.Context, p model.PaymentType) (model.PaymentType, error) {
	entity := &PaymentTypeEntity{Model: pg.Model{ID: p.ID}, UserID: p.UserID, Name: p.Name, IsCreditCard: p.IsCreditCard}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.PaymentType{}, err
	}
	return toPaymentTypeModel(entity), nil
}

func (r *LookupRepository) GetPaymentType(ctx context.Context, id string) (model.PaymentType, error) {
	var entity PaymentTypeEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PaymentType{}, ErrPaymentTypeNotFound
		}
		return model.PaymentType{}, err
	}
	return toPaymentTypeModel(&entity), nil
}

func (r *LookupRepository) ListPaymentTypes(ctx context.Context, owners []string) ([]model.PaymentType, error) {
	var entities []*PaymentTypeEntity
	if err := r.Read(ctx).Where("user_id IN ?", owners).Order("name").Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make([]model.PaymentType, len(entities))
	for i, e := range entities {
		out[i] = toPaymentTypeModel(e)
	}
	return out, nil
}

func (r *LookupRepository) CreateCreditCard(ctx context.Context, c model.CreditCard) (model.CreditCard, error) {
	entity := &CreditCardEntity{Model: pg.Model{ID: c.ID}, UserID: c.UserID, Name: c.Name, ClosingDay: c.ClosingDay, DueDay: c.DueDay}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.CreditCard{}, err
	}
	return toCreditCardModel(entity), nil
}

func (r *LookupRepository) GetCreditCard(ctx context.Context, id string) (model.CreditCard, error) {
	var entity CreditCardEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CreditCard{}, ErrCreditCardNotFound
		}
		return model.CreditCard{}, err
	}
	return toCreditCardModel(&entity), nil
}

func (r *LookupRepository) ListCreditCards(ctx context.Context, owners []string) ([]model.CreditCard, error) {
	var entities []*CreditCardEntity
	if err := r.Read(ctx).Where("user_id IN ?", owners).Order("name").Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make([]model.CreditCard, len(entities))
	for i, e := range entities {
		out[i] = toCreditCardModel(e)
	}
	return out, nil
}

func (r *LookupRepository) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	entity := &CategoryEntity{Model: pg.Model{ID: c.ID}, UserID: c.UserID, Name: c.Name, Kind: string(c.Kind)}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return model.Category{}, err
	}
	return toCategoryModel(entity), nil
}

func (r *LookupRepository) ListCategories(ctx context.Context, owners []string, kind model.Kind) ([]model.Category, error) {
	q := r.Read(ctx).Where("user_id IN ?", owners)
	if kind != "" {
		q = q.Where("kind = ?", string(kind))
	}
	var entities []*CategoryEntity
	if err := q.Order("name").Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make([]model.Category, len(entities))
	for i, e := range entities {
		out[i] = toCategoryModel(e)
	}
	return out, nil
}
