package recurrence

import (
	"time"

	"github.com/nimasrn/household-ledger/internal/model"
)

// BuildSeries expands head into n installment rows, one per month starting at
// the head's anchor month. head.ID must already be assigned: rows 2..n point
// back at it. Each row keeps the head's day of month, clamped in short months.
func BuildSeries(head model.Obligation, n int) []model.Obligation {
	if n < 1 {
		n = 1
	}
	start := Of(head.AnchorDate)
	day := head.AnchorDate.Day()
	rows := make([]model.Obligation, 0, n)
	for i := 0; i < n; i++ {
		row := head.Clone()
		row.Installments = n
		row.CurrentInstallment = i + 1
		row.AnchorDate = start.Add(i).Day(day)
		if i > 0 {
			row.ID = ""
			headID := head.ID
			row.OriginalFixedID = &headID
		}
		rows = append(rows, row)
	}
	return rows
}

// Materialize builds the real row that replaces occurrence o of templateID
// once it is settled on date. The store assigns the id.
func Materialize(o model.Obligation, templateID string, date time.Time) model.Obligation {
	row := o.Clone()
	row.ID = ""
	row.IsFixed = false
	row.Installments = 1
	row.CurrentInstallment = 1
	row.Settled = true
	settled := DateOf(date)
	row.SettledDate = &settled
	row.OriginalFixedID = &templateID
	row.GeneratedFixedInstance = false
	row.CreatedAt = time.Time{}
	row.UpdatedAt = time.Time{}
	return row
}
