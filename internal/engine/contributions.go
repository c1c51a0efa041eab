package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/pkg/money"
)

// ComputeContributions applies each statutory rule to gross pay and returns
// the itemized lines plus their total. Rules apply independently to the same
// gross pay unless marked residual, in which case the base is gross pay minus
// the amounts of the rules that came before. A ceiling caps the base the rate
// applies to, not the resulting amount.
func ComputeContributions(grossPay decimal.Decimal, rules []domain.ContributionRule) ([]domain.ContributionLine, decimal.Decimal, error) {
	if money.IsNegative(grossPay) {
		return nil, decimal.Zero, customError.WrapValidation("gross pay cannot be negative")
	}

	lines := make([]domain.ContributionLine, 0, len(rules))
	total := decimal.Zero

	for _, rule := range rules {
		if rule.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, customError.WrapValidationf(
				"contribution rule %s has a non-positive rate", rule.Name)
		}

		base := grossPay
		if rule.Residual {
			base = grossPay.Sub(total)
			if money.IsNegative(base) {
				base = decimal.Zero
			}
		}
		if rule.Ceiling.Valid {
			base = money.Min(base, rule.Ceiling.Decimal)
		}

		amount := money.Round(base.Mul(rule.Rate))
		lines = append(lines, domain.ContributionLine{
			Name:   rule.Name,
			Base:   base,
			Rate:   rule.Rate,
			Amount: amount,
		})
		total = total.Add(amount)
	}

	return lines, total, nil
}
