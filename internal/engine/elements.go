package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/pkg/money"
)

// ElementAggregation is the result of folding one employee's variable
// elements for one period. GrossAdjustment is the net signed change to gross
// pay; PreNetDeductions holds the advance-type amounts, which net out after
// tax rather than adjusting taxable income.
type ElementAggregation struct {
	GrossAdjustment  decimal.Decimal
	PreNetDeductions decimal.Decimal
}

// AggregateElements folds the month's ad-hoc entries for one employee. An
// overtime element's amount is recomputed as hours x hourly rate, never read
// from the stored amount, which may be stale.
func AggregateElements(elements []*domain.VariableElement) (*ElementAggregation, error) {
	agg := &ElementAggregation{
		GrossAdjustment:  decimal.Zero,
		PreNetDeductions: decimal.Zero,
	}

	for _, el := range elements {
		if !domain.KnownElementType(el.Type) {
			return nil, customError.WrapValidationf("unknown element type %q", el.Type)
		}

		amount := el.Amount
		if el.Type == domain.ElementOvertime {
			if money.IsNegative(el.Hours) || money.IsNegative(el.HourlyRate) {
				return nil, customError.WrapValidation("overtime hours and rate cannot be negative")
			}
			amount = money.Round(el.Hours.Mul(el.HourlyRate))
		}

		if money.IsNegative(amount) && el.Type != domain.ElementOther {
			return nil, customError.WrapValidationf("element %s carries a negative amount", el.Type)
		}

		switch el.Type {
		case domain.ElementOvertime, domain.ElementBonus, domain.ElementLeave, domain.ElementOther:
			agg.GrossAdjustment = agg.GrossAdjustment.Add(amount)
		case domain.ElementAbsence, domain.ElementLate:
			agg.GrossAdjustment = agg.GrossAdjustment.Sub(amount)
		case domain.ElementAdvance:
			agg.PreNetDeductions = agg.PreNetDeductions.Add(amount)
		}
	}

	return agg, nil
}
