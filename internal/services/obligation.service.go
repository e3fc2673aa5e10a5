package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/household-ledger/internal/locker"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/pkg/prom"
)

type ObligationStore interface {
	Create(ctx context.Context, o model.Obligation) (model.Obligation, error)
	CreateBatch(ctx context.Context, rows []model.Obligation) ([]model.Obligation, error)
	Get(ctx context.Context, id string) (model.Obligation, error)
	ListByOwners(ctx context.Context, owners []string) ([]model.Obligation, error)
	FindMaterialization(ctx context.Context, templateID string, month recurrence.YearMonth) (model.Obligation, error)
	Update(ctx context.Context, o model.Obligation) (model.Obligation, error)
	MarkSettled(ctx context.Context, id string, date time.Time) error
	ClearSettlement(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// LinkedTransactionStore holds the card transactions created by paying bills.
type LinkedTransactionStore interface {
	CreateLinked(ctx context.Context, t model.CardTransaction) (model.CardTransaction, error)
	FindByPayableID(ctx context.Context, payableID string) (model.CardTransaction, error)
	DeleteByPayableID(ctx context.Context, payableID string) error
}

type PaymentTypeReader interface {
	GetPaymentType(ctx context.Context, id string) (model.PaymentType, error)
}

type OwnerResolver interface {
	OwnerIDs(ctx context.Context, userID string) ([]string, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Stores struct {
	Payables         ObligationStore
	Receivables      ObligationStore
	CardTransactions ObligationStore
	Linked           LinkedTransactionStore
}

type Option func(*ObligationService)

// WithBestEffortCardLink commits a confirmation before writing its card
// transaction; a failed card write is reported in ConfirmResult.LinkError.
func WithBestEffortCardLink() Option {
	return func(s *ObligationService) {
		s.bestEffortCardLink = true
	}
}

func WithLocker(l locker.Locker) Option {
	return func(s *ObligationService) {
		s.locker = l
	}
}

type ObligationService struct {
	stores             map[model.Kind]ObligationStore
	linked             LinkedTransactionStore
	paymentTypes       PaymentTypeReader
	owners             OwnerResolver
	tx                 Transactor
	locker             locker.Locker
	bestEffortCardLink bool
}

func NewObligationService(stores Stores, paymentTypes PaymentTypeReader, owners OwnerResolver, tx Transactor, opts ...Option) *ObligationService {
	s := &ObligationService{
		stores: map[model.Kind]ObligationStore{
			model.KindPayable:         stores.Payables,
			model.KindReceivable:      stores.Receivables,
			model.KindCardTransaction: stores.CardTransactions,
		},
		linked:       stores.Linked,
		paymentTypes: paymentTypes,
		owners:       owners,
		tx:           tx,
		locker:       locker.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ObligationService) store(kind model.Kind) (ObligationStore, error) {
	st, ok := s.stores[kind]
	if !ok || st == nil {
		return nil, ErrInvalidKind
	}
	return st, nil
}

// Create stores a single obligation, a fixed template, or every row of an
// installment series at once.
func (s *ObligationService) Create(ctx context.Context, req model.ObligationCreateRequest) ([]model.Obligation, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	st, err := s.store(req.Kind)
	if err != nil {
		return nil, err
	}

	head := model.Obligation{
		ID:                 uuid.NewString(),
		Kind:               req.Kind,
		UserID:             req.UserID,
		Description:        req.Description,
		Amount:             req.Amount,
		AnchorDate:         recurrence.DateOf(req.AnchorDate),
		IsFixed:            req.IsFixed,
		Installments:       max(req.Installments, 1),
		CurrentInstallment: 1,
		CategoryID:         req.CategoryID,
		PaymentTypeID:      req.PaymentTypeID,
		CardID:             req.CardID,
		ResponsiblePartyID: req.ResponsiblePartyID,
		IncomeSourceID:     req.IncomeSourceID,
		PayerID:            req.PayerID,
	}
	if _, err := s.paysByCard(ctx, head); err != nil {
		return nil, err
	}

	rows := []model.Obligation{head}
	if head.Installments > 1 {
		rows = recurrence.BuildSeries(head, head.Installments)
	}

	var created []model.Obligation
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		batch, err := st.CreateBatch(ctx, rows)
		created = batch
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create obligation: %w", err)
	}
	return created, nil
}

// Month is the view of kind for month across the user's owner scope.
func (s *ObligationService) Month(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) ([]recurrence.Occurrence, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	rows, err := st.ListByOwners(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}

	start := time.Now()
	occ := recurrence.Project(rows, month)
	prom.AddProjectionDuration(time.Since(start).Seconds(), string(kind))
	return occ, nil
}

func (s *ObligationService) Summary(ctx context.Context, kind model.Kind, userID string, month recurrence.YearMonth) (recurrence.Summary, error) {
	occ, err := s.Month(ctx, kind, userID, month)
	if err != nil {
		return recurrence.Summary{}, err
	}
	return recurrence.Summarize(month, occ), nil
}

// Resolve turns an id from a month view into an occurrence. Virtual ids are
// re-derived from the stored template; nothing else the client sent is used.
func (s *ObligationService) Resolve(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Occurrence, error) {
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if !recurrence.IsVirtualID(id) {
		row, err := s.load(ctx, st, userID, id)
		if err != nil {
			return nil, err
		}
		return recurrence.Real{Row: row}, nil
	}

	templateID, month, err := recurrence.ParseVirtualID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	tpl, err := s.load(ctx, st, userID, templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsFixed || tpl.AnchorDate.After(month.End()) {
		return nil, ErrNotFound
	}
	if month.Contains(tpl.AnchorDate) {
		return recurrence.Real{Row: tpl}, nil
	}
	return recurrence.Synthesize(tpl, month), nil
}

// ResolveReal is Resolve for operations that only accept persisted rows.
// Virtual ids are rejected before the store is touched.
func (s *ObligationService) ResolveReal(ctx context.Context, kind model.Kind, userID, id string) (recurrence.Real, error) {
	if recurrence.IsVirtualID(id) {
		return recurrence.Real{}, ErrVirtualOccurrence
	}
	occ, err := s.Resolve(ctx, kind, userID, id)
	if err != nil {
		return recurrence.Real{}, err
	}
	return occ.(recurrence.Real), nil
}

// Update patches a persisted row. Materialized occurrences of a template
// and card transactions created by paying a bill cannot be edited on their
// own, and a bill paid by card keeps its charge fields until it is reversed.
func (s *ObligationService) Update(ctx context.Context, r recurrence.Real, patch model.ObligationPatch) (model.Obligation, error) {
	if err := patch.Validate(); err != nil {
		return model.Obligation{}, invalid(err)
	}
	if _, ok := recurrence.Classify(r.Row).(recurrence.FixedMaterialization); ok {
		return model.Obligation{}, ErrNotEditable
	}
	if err := ownedByPayable(r.Row); err != nil {
		return model.Obligation{}, err
	}
	if r.Row.Kind == model.KindPayable && r.Row.Settled && patch.ChangesCharge() {
		if err := s.ensureNoCardCharge(ctx, r.Row.ID); err != nil {
			return model.Obligation{}, err
		}
	}
	st, err := s.store(r.Row.Kind)
	if err != nil {
		return model.Obligation{}, err
	}

	row := r.Row.Clone()
	patch.Apply(&row)
	row.AnchorDate = recurrence.DateOf(row.AnchorDate)
	if _, err := s.paysByCard(ctx, row); err != nil {
		return model.Obligation{}, err
	}

	updated, err := st.Update(ctx, row)
	if err != nil {
		return model.Obligation{}, notFound(err)
	}
	return updated, nil
}

// ensureNoCardCharge fails with ErrAlreadySettled when paying payableID
// created a card transaction.
func (s *ObligationService) ensureNoCardCharge(ctx context.Context, payableID string) error {
	_, err := s.linked.FindByPayableID(ctx, payableID)
	switch {
	case err == nil:
		return ErrAlreadySettled
	case errors.Is(err, repository.ErrCardTransactionNotFound):
		return nil
	default:
		return fmt.Errorf("find card transaction: %w", err)
	}
}

// ownedByPayable rejects card transactions written by a bill payment; they
// only change through the bill.
func ownedByPayable(row model.Obligation) error {
	if row.Kind == model.KindCardTransaction && row.LinkedPayableID != nil {
		return ErrLinkedTransaction
	}
	return nil
}

func (s *ObligationService) load(ctx context.Context, st ObligationStore, userID, id string) (model.Obligation, error) {
	row, err := st.Get(ctx, id)
	if err != nil {
		return model.Obligation{}, notFound(err)
	}
	owners, err := s.owners.OwnerIDs(ctx, userID)
	if err != nil {
		return model.Obligation{}, fmt.Errorf("resolve owners: %w", err)
	}
	if !slices.Contains(owners, row.UserID) {
		return model.Obligation{}, ErrNotFound
	}
	return row, nil
}

// paysByCard reports whether o is a bill paid with a credit card payment
// type; such bills must name the card.
func (s *ObligationService) paysByCard(ctx context.Context, o model.Obligation) (bool, error) {
	if o.Kind != model.KindPayable || o.PaymentTypeID == nil {
		return false, nil
	}
	pt, err := s.paymentTypes.GetPaymentType(ctx, *o.PaymentTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentTypeNotFound) {
			return false, invalid(err)
		}
		return false, fmt.Errorf("load payment type: %w", err)
	}
	if !pt.IsCreditCard {
		return false, nil
	}
	if o.CardID == nil || *o.CardID == "" {
		return false, ErrCardRequired
	}
	return true, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrObligationNotFound) {
		return ErrNotFound
	}
	return err
}
