package services

import (
	"context"
	"time"

	"github.com/nimasrn/household-ledger/internal/locker"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockObligationStore struct {
	mock.Mock
}

func (m *MockObligationStore) Create(ctx context.Context, o model.Obligation) (model.Obligation, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(model.Obligation), args.Error(1)
}

func (m *MockObligationStore) CreateBatch(ctx context.Context, rows []model.Obligation) ([]model.Obligation, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Obligation), args.Error(1)
}

func (m *MockObligationStore) Get(ctx context.Context, id string) (model.Obligation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Obligation), args.Error(1)
}

func (m *MockObligationStore) ListByOwners(ctx context.Context, owners []string) ([]model.Obligation, error) {
	args := m.Called(ctx, owners)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Obligation), args.Error(1)
}

func (m *MockObligationStore) FindMaterialization(ctx context.Context, templateID string, month recurrence.YearMonth) (model.Obligation, error) {
	args := m.Called(ctx, templateID, month)
	return args.Get(0).(model.Obligation), args.Error(1)
}

func (m *MockObligationStore) Update(ctx context.Context, o model.Obligation) (model.Obligation, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(model.Obligation), args.Error(1)
}

func (m *MockObligationStore) MarkSettled(ctx context.Context, id string, date time.Time) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}

func (m *MockObligationStore) ClearSettlement(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockObligationStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockLinkedTransactionStore struct {
	mock.Mock
}

func (m *MockLinkedTransactionStore) CreateLinked(ctx context.Context, t model.CardTransaction) (model.CardTransaction, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.CardTransaction), args.Error(1)
}

func (m *MockLinkedTransactionStore) FindByPayableID(ctx context.Context, payableID string) (model.CardTransaction, error) {
	args := m.Called(ctx, payableID)
	return args.Get(0).(model.CardTransaction), args.Error(1)
}

func (m *MockLinkedTransactionStore) DeleteByPayableID(ctx context.Context, payableID string) error {
	args := m.Called(ctx, payableID)
	return args.Error(0)
}

type MockPaymentTypeReader struct {
	mock.Mock
}

func (m *MockPaymentTypeReader) GetPaymentType(ctx context.Context, id string) (model.PaymentType, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.PaymentType), args.Error(1)
}

type MockOwnerResolver struct {
	mock.Mock
}

func (m *MockOwnerResolver) OwnerIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTransactor struct {
	mock.Mock
}

// WithinTransaction runs fn unless an error is configured; the error fn
// returns is passed through like a rolled back transaction.
func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string) (*locker.Lease, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*locker.Lease), args.Error(1)
}

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, id string) (model.Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockProfileStore) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockProfileStore) SetFamilyID(ctx context.Context, id string, familyID string) error {
	args := m.Called(ctx, id, familyID)
	return args.Error(0)
}

func (m *MockProfileStore) ListByFamily(ctx context.Context, familyID string) ([]model.Profile, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

type MockPiggyBankStore struct {
	mock.Mock
}

func (m *MockPiggyBankStore) Create(ctx context.Context, e model.PiggyBankEntry) (model.PiggyBankEntry, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(model.PiggyBankEntry), args.Error(1)
}

func (m *MockPiggyBankStore) Balance(ctx context.Context, owners []string) (decimal.Decimal, error) {
	args := m.Called(ctx, owners)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPiggyBankStore) LockedBalance(ctx context.Context, owners []string) (decimal.Decimal, error) {
	args := m.Called(ctx, owners)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPiggyBankStore) List(ctx context.Context, owners []string) ([]model.PiggyBankEntry, error) {
	args := m.Called(ctx, owners)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PiggyBankEntry), args.Error(1)
}
