package recurrence

import (
	"sort"

	"github.com/nimasrn/household-ledger/internal/model"
)

// Project returns the occurrences visible in month: non-fixed rows dated in
// the month, templates in their home month, and one virtual occurrence for
// each earlier template that has no materialization in the month yet. The
// result is ordered by anchor date, keeping input order on ties.
func Project(all []model.Obligation, month YearMonth) []Occurrence {
	materialized := make(map[string]bool)
	for _, o := range all {
		if fm, ok := Classify(o).(FixedMaterialization); ok && month.Contains(o.AnchorDate) {
			materialized[fm.TemplateID] = true
		}
	}

	end := month.End()
	out := make([]Occurrence, 0, len(all))
	for _, o := range all {
		switch {
		case !o.IsFixed:
			if month.Contains(o.AnchorDate) {
				out = append(out, Real{Row: o})
			}
		case materialized[o.ID]:
			// the real row stands for the template this month
		case month.Contains(o.AnchorDate):
			out = append(out, Real{Row: o})
		case !o.AnchorDate.After(end):
			out = append(out, Synthesize(o, month))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Record().AnchorDate.Before(out[j].Record().AnchorDate)
	})
	return out
}

// Records unwraps occurrences into plain rows.
func Records(occ []Occurrence) []model.Obligation {
	rows := make([]model.Obligation, len(occ))
	for i, o := range occ {
		rows[i] = o.Record()
	}
	return rows
}
