package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/pkg/money"
)

var monthsPerYear = decimal.NewFromInt(12)

// ComputeMonthlyTax derives the income tax withheld for one month. Brackets
// are defined on the annual axis while payroll is monthly, so the monthly
// taxable base is annualized, family deductions are subtracted (floored at
// zero), the bracket table is walked, and the annual tax is divided back by
// twelve. This function is the only place the monthly/annual conversion
// happens.
func ComputeMonthlyTax(monthlyTaxableBase decimal.Decimal, dependents int, maritalStatus string, rules *domain.RuleSet) (decimal.Decimal, error) {
	if money.IsNegative(monthlyTaxableBase) {
		return decimal.Zero, customError.WrapValidation("taxable base cannot be negative")
	}
	if dependents < 0 {
		return decimal.Zero, customError.WrapValidation("dependent count cannot be negative")
	}
	if err := rules.Validate(); err != nil {
		return decimal.Zero, err
	}

	annualBase := monthlyTaxableBase.Mul(monthsPerYear)

	deductions := rules.DependentDeduction.Mul(decimal.NewFromInt(int64(dependents)))
	if maritalStatus == domain.MaritalStatusMarried {
		deductions = deductions.Add(rules.MarriedDeduction)
	}

	annualBase = annualBase.Sub(deductions)
	if money.IsNegative(annualBase) {
		annualBase = decimal.Zero
	}

	annualTax := walkBrackets(annualBase, rules.Brackets)
	return money.Round(annualTax.Div(monthsPerYear)), nil
}

// walkBrackets accumulates marginal tax over the bracket table. Boundaries
// are inclusive on the lower edge and exclusive on the upper edge; income
// below the first bracket's lower bound is untaxed.
func walkBrackets(base decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range brackets {
		if base.LessThanOrEqual(b.Lower) {
			break
		}
		upper := base
		if !b.Unbounded() {
			upper = money.Min(base, b.Upper.Decimal)
		}
		slice := upper.Sub(b.Lower)
		if slice.GreaterThan(decimal.Zero) {
			tax = tax.Add(slice.Mul(b.Rate))
		}
	}
	return tax
}
