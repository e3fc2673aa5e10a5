package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/household-ledger/internal/locker"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/recurrence"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/nimasrn/household-ledger/pkg/prom"
)

// Confirm settles occ on date. A virtual occurrence, or a fixed template in
// its own month, becomes a new settled row pointing at the template; any
// other row is settled in place. Bills paid with a credit card also get one
// card transaction referencing the settled row.
func (s *ObligationService) Confirm(ctx context.Context, occ recurrence.Occurrence, date time.Time) (model.ConfirmResult, error) {
	row := occ.Record()
	if !row.Kind.Settleable() {
		return model.ConfirmResult{}, ErrNotSettleable
	}
	if date.IsZero() {
		return model.ConfirmResult{}, invalid(errors.New("settlement date is required"))
	}
	st, err := s.store(row.Kind)
	if err != nil {
		return model.ConfirmResult{}, err
	}
	withCard, err := s.paysByCard(ctx, row)
	if err != nil {
		return model.ConfirmResult{}, err
	}
	date = recurrence.DateOf(date)

	switch o := occ.(type) {
	case recurrence.Virtual:
		return s.materialize(ctx, st, o.Row, o.TemplateID, o.Month, date, withCard)
	case recurrence.Real:
		if o.Row.IsFixed {
			return s.materialize(ctx, st, o.Row, o.Row.ID, recurrence.Of(o.Row.AnchorDate), date, withCard)
		}
		if o.Row.Settled {
			return model.ConfirmResult{}, ErrAlreadySettled
		}
		return s.settle(ctx, row.Kind, false, withCard, date, func(ctx context.Context) (model.Obligation, error) {
			if err := st.MarkSettled(ctx, o.Row.ID, date); err != nil {
				return model.Obligation{}, notFound(err)
			}
			return st.Get(ctx, o.Row.ID)
		})
	}
	return model.ConfirmResult{}, fmt.Errorf("unsupported occurrence %T", occ)
}

func (s *ObligationService) materialize(ctx context.Context, st ObligationStore, row model.Obligation, templateID string, month recurrence.YearMonth, date time.Time, withCard bool) (model.ConfirmResult, error) {
	lease, err := s.locker.Acquire(ctx, locker.OccurrenceKey(templateID, month.String()))
	if err != nil {
		if errors.Is(err, locker.ErrLockHeld) {
			return model.ConfirmResult{}, ErrConfirmInProgress
		}
		return model.ConfirmResult{}, err
	}
	defer func() {
		_ = lease.Release(context.WithoutCancel(ctx))
	}()

	newRow := recurrence.Materialize(row, templateID, date)
	return s.settle(ctx, row.Kind, true, withCard, date, func(ctx context.Context) (model.Obligation, error) {
		_, err := st.FindMaterialization(ctx, templateID, month)
		if err == nil {
			return model.Obligation{}, ErrAlreadyMaterialized
		}
		if !errors.Is(err, repository.ErrObligationNotFound) {
			return model.Obligation{}, fmt.Errorf("find materialization: %w", err)
		}
		return st.Create(ctx, newRow)
	})
}

// settle runs write and, for card payments, the card transaction insert. By
// default both share one transaction; in best-effort mode the card insert
// runs after commit and its failure only lands in LinkError.
func (s *ObligationService) settle(ctx context.Context, kind model.Kind, materialized, withCard bool, date time.Time, write func(ctx context.Context) (model.Obligation, error)) (model.ConfirmResult, error) {
	var result model.ConfirmResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		persisted, err := write(ctx)
		if err != nil {
			return err
		}
		result.Persisted = &persisted
		if !withCard || s.bestEffortCardLink {
			return nil
		}
		txn, err := s.linkCardTransaction(ctx, persisted, date)
		if err != nil {
			return fmt.Errorf("create card transaction: %w", err)
		}
		result.LinkedTransaction = &txn
		return nil
	})
	if err != nil {
		return model.ConfirmResult{}, err
	}
	result.Materialized = materialized

	if withCard && s.bestEffortCardLink {
		txn, err := s.linkCardTransaction(ctx, *result.Persisted, date)
		if err != nil {
			logger.Warn("[obligations] card transaction not created, obligation stays settled",
				"obligation_id", result.Persisted.ID,
				"error", err)
			prom.AddCardLinkFailure()
			result.LinkError = err.Error()
		} else {
			result.LinkedTransaction = &txn
		}
	}

	prom.AddObligationConfirmed(string(kind), materialized)
	logger.Info("[obligations] obligation confirmed",
		"kind", kind,
		"obligation_id", result.Persisted.ID,
		"materialized", materialized,
		"settled_date", date.Format(time.DateOnly))
	return result, nil
}

func (s *ObligationService) linkCardTransaction(ctx context.Context, o model.Obligation, date time.Time) (model.CardTransaction, error) {
	return s.linked.CreateLinked(ctx, model.CardTransaction{
		UserID:             o.UserID,
		CardID:             *o.CardID,
		Description:        o.Description,
		Amount:             o.Amount,
		PurchaseDate:       date,
		Installments:       max(o.Installments, 1),
		CurrentInstallment: max(o.CurrentInstallment, 1),
		CategoryID:         o.CategoryID,
		PayableID:          o.ID,
	})
}

// Reverse clears the settlement of r and removes the card transaction its
// payment created. A failure to remove that transaction aborts the reverse.
func (s *ObligationService) Reverse(ctx context.Context, r recurrence.Real) error {
	row := r.Row
	if !row.Kind.Settleable() {
		return ErrNotSettleable
	}
	if !row.Settled {
		return ErrNotSettled
	}
	st, err := s.store(row.Kind)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.unlinkCardTransaction(ctx, row); err != nil {
			return err
		}
		return notFound(st.ClearSettlement(ctx, row.ID))
	})
	if err != nil {
		return err
	}

	prom.AddObligationReversed(string(row.Kind))
	logger.Info("[obligations] obligation reversed", "kind", row.Kind, "obligation_id", row.ID)
	return nil
}

// Delete removes r together with any card transaction linked to it.
func (s *ObligationService) Delete(ctx context.Context, r recurrence.Real) error {
	row := r.Row
	if err := ownedByPayable(row); err != nil {
		return err
	}
	st, err := s.store(row.Kind)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.unlinkCardTransaction(ctx, row); err != nil {
			return err
		}
		return notFound(st.Delete(ctx, row.ID))
	})
	if err != nil {
		return err
	}

	prom.AddObligationDeleted(string(row.Kind))
	logger.Info("[obligations] obligation deleted", "kind", row.Kind, "obligation_id", row.ID)
	return nil
}

// unlinkCardTransaction deletes the card transaction created by paying row.
// Having none is not an error.
func (s *ObligationService) unlinkCardTransaction(ctx context.Context, row model.Obligation) error {
	if row.Kind != model.KindPayable {
		return nil
	}
	err := s.linked.DeleteByPayableID(ctx, row.ID)
	if err != nil && !errors.Is(err, repository.ErrCardTransactionNotFound) {
		return fmt.Errorf("delete card transaction: %w", err)
	}
	return nil
}
