package recurrence

import (
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// Summary totals one month view. Amounts are per-occurrence: an installment
// row counts its own share, not the whole purchase.
type Summary struct {
	Month        string          `json:"month"`
	Count        int             `json:"count"`
	SettledCount int             `json:"settled_count"`
	VirtualCount int             `json:"virtual_count"`
	Total        decimal.Decimal `json:"total"`
	Settled      decimal.Decimal `json:"settled"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

func Summarize(month YearMonth, occ []Occurrence) Summary {
	s := Summary{
		Month:       month.String(),
		Total:       decimal.Zero,
		Settled:     decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, o := range occ {
		row := o.Record()
		s.Count++
		s.Total = s.Total.Add(row.Amount)
		if _, ok := o.(Virtual); ok {
			s.VirtualCount++
		}
		if row.Settled {
			s.SettledCount++
			s.Settled = s.Settled.Add(row.Amount)
		} else {
			s.Outstanding = s.Outstanding.Add(row.Amount)
		}
	}
	return s
}

// TotalValue is the full value of a purchase: amount times installments for
// series rows, the amount alone for fixed and single obligations.
func TotalValue(o model.Obligation) decimal.Decimal {
	if o.IsFixed || o.Installments <= 1 {
		return o.Amount
	}
	return o.Amount.Mul(decimal.NewFromInt(int64(o.Installments)))
}
