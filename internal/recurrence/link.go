package recurrence

import "github.com/nimasrn/household-ledger/internal/model"

// Link is the resolved meaning of a row's recurrence columns. The persisted
// original_fixed_* column points at a template for materializations and at
// the series head for installment rows; Classify tells the two apart.
type Link interface {
	isLink()
}

type Standalone struct{}

type FixedTemplate struct{}

type InstallmentChild struct {
	HeadID string
}

type FixedMaterialization struct {
	TemplateID string
}

func (Standalone) isLink()           {}
func (FixedTemplate) isLink()        {}
func (InstallmentChild) isLink()     {}
func (FixedMaterialization) isLink() {}

func Classify(o model.Obligation) Link {
	if o.IsFixed {
		return FixedTemplate{}
	}
	if o.OriginalFixedID == nil || *o.OriginalFixedID == "" {
		return Standalone{}
	}
	if o.Installments > 1 {
		return InstallmentChild{HeadID: *o.OriginalFixedID}
	}
	return FixedMaterialization{TemplateID: *o.OriginalFixedID}
}

// IsMaterializationOf reports whether o is the materialization of templateID
// in month.
func IsMaterializationOf(o model.Obligation, templateID string, month YearMonth) bool {
	fm, ok := Classify(o).(FixedMaterialization)
	return ok && fm.TemplateID == templateID && month.Contains(o.AnchorDate)
}
