package handlers

import (
	"context"
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockObligationService struct {
	mock.Mock
}

func (m *MockObligationService) Create(ctx context.Context, req model.ObligationCreateRequest) ([]model.Obligation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Obligation), args.Error(1)
}

func (m *MockObligationService) Month(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) ([]recurrence.Occurrence, error) {
	args := m.Called(ctx, kind, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recurrence.Occurrence), args.Error(1)
}

func (m *MockObligationService) Summary(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) (recurrence.Summary, error) {
	args := m.Called(ctx, kind, userID, month)
	return args.Get(0).(recurrence.Summary), args.Error(1)
}

func (m *MockObligationService) Resolve(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Occurrence, error) {
	args := m.Called(ctx, kind, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(recurrence.Occurrence), args.Error(1)
}

func (m *MockObligationService) ResolveReal(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Real, error) {
	args := m.Called(ctx, kind, userID, id)
	return args.Get(0).(recurrence.Real), args.Error(1)
}

func (m *MockObligationService) Update(ctx context.Context, r recurrence.Real, patch model.ObligationPatch) (model.Obligation, error) {
	args := m.Called(ctx, r, patch)
	return args.Get(0).(model.Obligation), args.Error(1)
}

func (m *MockObligationService) Confirm(ctx context.Context, occ recurrence.Occurrence, date time.Time) (model.ConfirmResult, error) {
	args := m.Called(ctx, occ, date)
	return args.Get(0).(model.ConfirmResult), args.Error(1)
}

func (m *MockObligationService) Reverse(ctx context.Context, r recurrence.Real) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockObligationService) Delete(ctx context.Context, r recurrence.Real) error {
	return m.Called(ctx, r).Error(0)
}

type MockPiggyBankService struct {
	mock.Mock
}

func (m *MockPiggyBankService) Deposit(ctx context.Context, mv model.PiggyBankMovement) (model.PiggyBankEntry, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(model.PiggyBankEntry), args.Error(1)
}

func (m *MockPiggyBankService) Withdraw(ctx context.Context, mv model.PiggyBankMovement) (model.PiggyBankEntry, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(model.PiggyBankEntry), args.Error(1)
}

func (m *MockPiggyBankService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPiggyBankService) List(ctx context.Context, userID string) ([]model.PiggyBankEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PiggyBankEntry), args.Error(1)
}

type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) CreatePaymentType(ctx context.Context, p model.PaymentType) (model.PaymentType, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.PaymentType), args.Error(1)
}

func (m *MockLookupService) PaymentTypes(ctx context.Context, userID string) ([]model.PaymentType, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.PaymentType), args.Error(1)
}

func (m *MockLookupService) CreateCreditCard(ctx context.Context, c model.CreditCard) (model.CreditCard, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.CreditCard), args.Error(1)
}

func (m *MockLookupService) CreditCards(ctx context.Context, userID string) ([]model.CreditCard, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.CreditCard), args.Error(1)
}

func (m *MockLookupService) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *MockLookupService) Categories(ctx context.Context, userID string, kind model.Kind) ([]model.Category, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).([]model.Category), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

// setupTestContext builds a request as the router would hand it over; params
// are set as path values.
func setupTestContext(method, path string, body []byte, params ...string) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	ctx.Request.Header.Set(UserHeader, "user-1")
	if body != nil {
		ctx.Request.SetBody(body)
	}
	for i := 0; i+1 < len(params); i += 2 {
		ctx.SetUserValue(params[i], params[i+1])
	}
	return ctx
}
