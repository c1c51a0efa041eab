package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	"github.com/ysekkat/payroll-engine/pkg/money"
	"github.com/ysekkat/payroll-engine/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// TrackProgress reports repayment progress for a loan as of a date. When the
// full schedule is available it is authoritative: progress is repaid
// principal over total principal and lateness means an unpaid installment
// past its due date. Without a schedule (legacy balance-only records) the
// tracker falls back to time-based estimation. Both modes fill the same
// ProgressInfo shape, so callers never see which one ran.
func TrackProgress(loan *domain.Loan, schedule []*domain.Installment, asOf time.Time) *domain.ProgressInfo {
	info := &domain.ProgressInfo{
		LoanID:             loan.LoanID,
		Percentage:         decimal.Zero,
		ExpectedPercentage: decimal.Zero,
		AmountDue:          decimal.Zero,
	}

	// Zero-principal records short-circuit instead of dividing by zero.
	if loan.Principal.LessThanOrEqual(decimal.Zero) {
		return info
	}

	info.MonthsElapsed = utils.ElapsedMonths(loan.StartDate, asOf)

	if len(schedule) > 0 {
		trackFromSchedule(info, loan, schedule, asOf)
	} else {
		trackFromBalances(info, loan)
	}

	return info
}

func trackFromSchedule(info *domain.ProgressInfo, loan *domain.Loan, schedule []*domain.Installment, asOf time.Time) {
	paidPrincipal := decimal.Zero
	duePrincipal := decimal.Zero

	for _, inst := range schedule {
		switch {
		case inst.Status == domain.InstallmentStatusPaid:
			paidPrincipal = paidPrincipal.Add(inst.Principal)
		case inst.Due() && utils.IsOverdue(inst.DueDate, asOf):
			info.MonthsLate++
			info.AmountDue = info.AmountDue.Add(inst.Total)
		}
		if !inst.DueDate.After(asOf) && inst.Status != domain.InstallmentStatusCancelled {
			duePrincipal = duePrincipal.Add(inst.Principal)
		}
	}

	info.Percentage = money.Round(paidPrincipal.Mul(hundred).Div(loan.Principal))
	info.ExpectedPercentage = money.Round(duePrincipal.Mul(hundred).Div(loan.Principal))
	info.IsLate = info.MonthsLate > 0 && loan.IsActive()
	if !info.IsLate {
		info.MonthsLate = 0
		info.AmountDue = decimal.Zero
	}
}

func trackFromBalances(info *domain.ProgressInfo, loan *domain.Loan) {
	info.Percentage = money.Round(money.Min(
		hundred,
		loan.AmountRepaid.Mul(hundred).Div(loan.Principal),
	))

	if loan.TermMonths > 0 {
		term := decimal.NewFromInt(int64(loan.TermMonths))
		elapsed := decimal.NewFromInt(int64(info.MonthsElapsed))
		info.ExpectedPercentage = money.Round(money.Min(hundred, elapsed.Mul(hundred).Div(term)))
	}

	info.IsLate = info.Percentage.LessThan(info.ExpectedPercentage) && loan.IsActive()
	if !info.IsLate {
		return
	}

	if loan.PaymentAmount.GreaterThan(decimal.Zero) {
		expectedMonths := info.MonthsElapsed
		if expectedMonths > loan.TermMonths {
			expectedMonths = loan.TermMonths
		}
		expectedRepaid := loan.PaymentAmount.Mul(decimal.NewFromInt(int64(expectedMonths)))
		shortfall := expectedRepaid.Sub(loan.AmountRepaid)
		if shortfall.GreaterThan(decimal.Zero) {
			info.AmountDue = money.Round(shortfall)
			info.MonthsLate = int(shortfall.Div(loan.PaymentAmount).Ceil().IntPart())
		}
	}
}
