package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/ysekkat/payroll-engine/pkg/errors"
)

// ContributionRule is one statutory levy applied to gross pay. Ceiling, when
// set, caps the base the rate applies to. A rule marked residual applies to
// gross pay minus the amounts of the rules before it instead of to gross pay
// directly.
type ContributionRule struct {
	Name     string              `json:"name" db:"name"`
	Rate     decimal.Decimal     `json:"rate" db:"rate"`
	Ceiling  decimal.NullDecimal `json:"ceiling" db:"ceiling"`
	Residual bool                `json:"residual" db:"residual"`
}

// TaxBracket is one marginal-rate band on the annual taxable-income axis.
// An invalid (null) Upper marks the final unbounded bracket.
type TaxBracket struct {
	Lower decimal.Decimal     `json:"lower" db:"lower_bound"`
	Upper decimal.NullDecimal `json:"upper" db:"upper_bound"`
	Rate  decimal.Decimal     `json:"rate" db:"rate"`
}

// Unbounded reports whether the bracket has no upper edge.
func (b TaxBracket) Unbounded() bool {
	return !b.Upper.Valid
}

// RuleSet is one fiscal year's versioned tax and contribution configuration.
// Rates and brackets change across fiscal years, so the engine accepts the
// table as input rather than embedding jurisdiction numbers.
type RuleSet struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	Version            string             `json:"version" db:"version"`
	FiscalYear         int                `json:"fiscal_year" db:"fiscal_year"`
	Contributions      []ContributionRule `json:"contributions"`
	Brackets           []TaxBracket       `json:"brackets"`
	DependentDeduction decimal.Decimal    `json:"dependent_deduction" db:"dependent_deduction"`
	MarriedDeduction   decimal.Decimal    `json:"married_deduction" db:"married_deduction"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

// Validate checks the rule set's structural invariants: contribution rates
// strictly positive, brackets contiguous with no gaps or overlaps, lower
// bounds strictly increasing, and the last bracket unbounded.
func (rs *RuleSet) Validate() error {
	for _, rule := range rs.Contributions {
		if rule.Name == "" {
			return customError.WrapValidation("contribution rule is missing a name")
		}
		if rule.Rate.LessThanOrEqual(decimal.Zero) {
			return customError.WrapValidationf("contribution rule %s has a non-positive rate", rule.Name)
		}
		if rule.Ceiling.Valid && rule.Ceiling.Decimal.LessThanOrEqual(decimal.Zero) {
			return customError.WrapValidationf("contribution rule %s has a non-positive ceiling", rule.Name)
		}
	}

	if len(rs.Brackets) == 0 {
		return customError.WrapValidation("rule set has no tax brackets")
	}

	for i, b := range rs.Brackets {
		if b.Rate.IsNegative() {
			return customError.WrapValidationf("tax bracket %d has a negative rate", i+1)
		}
		if i == len(rs.Brackets)-1 {
			if !b.Unbounded() {
				return customError.WrapValidation("final tax bracket must be unbounded")
			}
			continue
		}
		if b.Unbounded() {
			return customError.WrapValidationf("tax bracket %d is unbounded but not last", i+1)
		}
		if b.Upper.Decimal.LessThanOrEqual(b.Lower) {
			return customError.WrapValidationf("tax bracket %d has upper bound not above lower bound", i+1)
		}
		next := rs.Brackets[i+1]
		if !next.Lower.Equal(b.Upper.Decimal) {
			return customError.WrapValidationf("tax brackets %d and %d are not contiguous", i+1, i+2)
		}
	}

	// A first bracket starting above zero is allowed: income below it is
	// simply untaxed.
	if rs.Brackets[0].Lower.IsNegative() {
		return customError.WrapValidation("first tax bracket cannot start below zero")
	}

	if rs.DependentDeduction.IsNegative() || rs.MarriedDeduction.IsNegative() {
		return customError.WrapValidation("family deductions cannot be negative")
	}

	return nil
}
