package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/pkg/money"
	"github.com/ysekkat/payroll-engine/pkg/utils"
)

var one = decimal.NewFromInt(1)

// GenerateSchedule produces the full installment sequence for a loan or
// advance. The schedule is created once, together with the loan, and is never
// regenerated afterwards.
//
// Interest-bearing case: a level payment from the annuity formula
// payment = P*r / (1 - (1+r)^-n) with r the monthly rate; each period pays
// interest on the remaining balance and the rest amortizes principal. The
// final installment's principal is forced to the exact remaining balance so
// rounding never leaks: the principal components always sum to the original
// principal and the running balance reaches exactly zero.
//
// Zero-interest case (advances, or loans with a zero rate): the principal is
// split evenly with the last installment absorbing the rounding remainder.
//
// Due dates advance one calendar month per installment from the start date,
// clamped to the end of shorter months.
func GenerateSchedule(loan *domain.Loan) ([]*domain.Installment, error) {
	if loan == nil {
		return nil, customError.WrapValidation("loan is required")
	}
	if loan.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapValidation("principal must be positive")
	}
	if loan.TermMonths <= 0 {
		return nil, customError.WrapValidation("installment count must be positive")
	}
	if money.IsNegative(loan.AnnualRate) {
		return nil, customError.WrapValidation("interest rate cannot be negative")
	}
	if money.IsNegative(loan.InsuranceRate) {
		return nil, customError.WrapValidation("insurance rate cannot be negative")
	}
	if loan.StartDate.IsZero() {
		return nil, customError.WrapValidation("start date is required")
	}

	monthlyRate := loan.AnnualRate.Div(monthsPerYear)
	monthlyInsuranceRate := loan.InsuranceRate.Div(monthsPerYear)

	var schedule []*domain.Installment
	if monthlyRate.IsZero() {
		schedule = evenSplit(loan, monthlyInsuranceRate)
	} else {
		schedule = annuity(loan, monthlyRate, monthlyInsuranceRate)
	}

	if err := checkPrincipalInvariant(loan, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

// LevelPayment returns the per-period payment for the interest-bearing case,
// rounded at the minor unit.
func LevelPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	if monthlyRate.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(termMonths))))
	}
	// payment = P * r * (1+r)^n / ((1+r)^n - 1)
	factor := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(termMonths)))
	return money.Round(principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)))
}

func annuity(loan *domain.Loan, monthlyRate, monthlyInsuranceRate decimal.Decimal) []*domain.Installment {
	payment := LevelPayment(loan.Principal, monthlyRate, loan.TermMonths)

	schedule := make([]*domain.Installment, 0, loan.TermMonths)
	remaining := loan.Principal

	for seq := 1; seq <= loan.TermMonths; seq++ {
		interest := money.Round(remaining.Mul(monthlyRate))
		insurance := money.Round(remaining.Mul(monthlyInsuranceRate))

		principal := payment.Sub(interest)
		if seq == loan.TermMonths {
			// Absorb accumulated rounding: the last installment clears the
			// balance exactly instead of trusting the formula output.
			principal = remaining
		}

		remaining = remaining.Sub(principal)

		schedule = append(schedule, &domain.Installment{
			LoanID:           loan.LoanID,
			Sequence:         seq,
			DueDate:          utils.AddMonthsClamped(loan.StartDate, seq),
			Principal:        principal,
			Interest:         interest,
			Insurance:        insurance,
			Total:            principal.Add(interest).Add(insurance),
			RemainingBalance: remaining,
			Status:           domain.InstallmentStatusPending,
		})
	}

	return schedule
}

func evenSplit(loan *domain.Loan, monthlyInsuranceRate decimal.Decimal) []*domain.Installment {
	count := loan.TermMonths
	share := money.Round(loan.Principal.Div(decimal.NewFromInt(int64(count))))

	schedule := make([]*domain.Installment, 0, count)
	remaining := loan.Principal

	for seq := 1; seq <= count; seq++ {
		insurance := money.Round(remaining.Mul(monthlyInsuranceRate))

		principal := share
		if seq == count {
			principal = remaining
		}
		remaining = remaining.Sub(principal)

		schedule = append(schedule, &domain.Installment{
			LoanID:           loan.LoanID,
			Sequence:         seq,
			DueDate:          utils.AddMonthsClamped(loan.StartDate, seq),
			Principal:        principal,
			Interest:         decimal.Zero,
			Insurance:        insurance,
			Total:            principal.Add(insurance),
			RemainingBalance: remaining,
			Status:           domain.InstallmentStatusPending,
		})
	}

	return schedule
}

// checkPrincipalInvariant verifies that the principal components sum exactly
// to the original principal and that the running balance ends at zero. The
// forced last installment guarantees this, so a failure here means the
// generator itself is broken; schedule creation aborts rather than persisting
// drifted money.
func checkPrincipalInvariant(loan *domain.Loan, schedule []*domain.Installment) error {
	sum := decimal.Zero
	for _, inst := range schedule {
		sum = sum.Add(inst.Principal)
	}
	if !sum.Equal(loan.Principal) {
		return customError.WrapRoundingInvariant(
			"schedule principal components do not sum to the original principal")
	}
	if !schedule[len(schedule)-1].RemainingBalance.IsZero() {
		return customError.WrapRoundingInvariant(
			"schedule does not reach a zero balance at the final installment")
	}
	return nil
}
