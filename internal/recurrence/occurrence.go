package recurrence

import (
	"errors"
	"strings"

	"github.com/nimasrn/household-ledger/internal/model"
)

const virtualPrefix = "temp-"

var ErrNotVirtualID = errors.New("not a virtual occurrence id")

// Occurrence is one entry of a month view: either a persisted row or a
// synthesized instance of a fixed template. Only Real may be edited,
// reversed or deleted.
type Occurrence interface {
	Record() model.Obligation
	isOccurrence()
}

// Real wraps a persisted row.
type Real struct {
	Row model.Obligation
}

// Virtual is a fixed template projected into a month where it has no
// materialization yet.
type Virtual struct {
	Row        model.Obligation
	TemplateID string
	Month      YearMonth
}

func (r Real) Record() model.Obligation    { return r.Row }
func (v Virtual) Record() model.Obligation { return v.Row }
func (Real) isOccurrence()                 {}
func (Virtual) isOccurrence()              {}

// VirtualID is the display id of a template projected into month.
func VirtualID(templateID string, month YearMonth) string {
	return virtualPrefix + templateID + "-" + month.String()
}

func IsVirtualID(id string) bool {
	return strings.HasPrefix(id, virtualPrefix)
}

// ParseVirtualID splits a virtual id into its template id and month. The month
// is read from the end since template ids contain dashes themselves.
func ParseVirtualID(id string) (string, YearMonth, error) {
	if !IsVirtualID(id) {
		return "", YearMonth{}, ErrNotVirtualID
	}
	rest := strings.TrimPrefix(id, virtualPrefix)
	n := len(monthLayout)
	if len(rest) < n+2 || rest[len(rest)-n-1] != '-' {
		return "", YearMonth{}, ErrNotVirtualID
	}
	month, err := ParseYearMonth(rest[len(rest)-n:])
	if err != nil {
		return "", YearMonth{}, ErrNotVirtualID
	}
	return rest[:len(rest)-n-1], month, nil
}

// Synthesize builds the virtual occurrence of template t in month.
func Synthesize(t model.Obligation, month YearMonth) Virtual {
	row := t.Clone()
	row.ID = VirtualID(t.ID, month)
	row.AnchorDate = month.Day(t.AnchorDate.Day())
	row.Settled = false
	row.SettledDate = nil
	row.GeneratedFixedInstance = true
	templateID := t.ID
	row.OriginalFixedID = &templateID
	return Virtual{Row: row, TemplateID: t.ID, Month: month}
}
