package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

func testLoan(principal int64, annualRate float64, termMonths int) *domain.Loan {
	return &domain.Loan{
		LoanID:     "LN-001",
		EmployeeID: "EMP-001",
		Kind:       domain.LoanKindLoan,
		Principal:  decimal.NewFromInt(principal),
		AnnualRate: decimal.NewFromFloat(annualRate),
		TermMonths: termMonths,
		StartDate:  time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		Status:     domain.LoanStatusActive,
	}
}

func TestGenerateSchedule_ZeroInterestEvenSplit(t *testing.T) {
	loan := testLoan(12000, 0, 6)
	loan.Kind = domain.LoanKindAdvance

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)
	require.Len(t, schedule, 6)

	expectedBalances := []int64{10000, 8000, 6000, 4000, 2000, 0}
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Sequence)
		assert.True(t, inst.Principal.Equal(decimal.NewFromInt(2000)),
			"installment %d principal: got %s", i+1, inst.Principal)
		assert.True(t, inst.Interest.IsZero())
		assert.True(t, inst.RemainingBalance.Equal(decimal.NewFromInt(expectedBalances[i])),
			"installment %d balance: expected %d, got %s", i+1, expectedBalances[i], inst.RemainingBalance)
		assert.Equal(t, domain.InstallmentStatusPending, inst.Status)
	}
}

func TestGenerateSchedule_UnevenSplitLastAbsorbsRemainder(t *testing.T) {
	loan := testLoan(1000, 0, 3)
	loan.Kind = domain.LoanKindAdvance

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.True(t, schedule[0].Principal.Equal(decimal.NewFromFloat(333.33)))
	assert.True(t, schedule[1].Principal.Equal(decimal.NewFromFloat(333.33)))
	assert.True(t, schedule[2].Principal.Equal(decimal.NewFromFloat(333.34)),
		"last installment must absorb the remainder, got %s", schedule[2].Principal)
	assert.True(t, schedule[2].RemainingBalance.IsZero())
}

func TestGenerateSchedule_AnnuityInvariants(t *testing.T) {
	tests := []struct {
		name       string
		principal  int64
		annualRate float64
		termMonths int
	}{
		{"One year at 6 percent", 50000, 0.06, 12},
		{"Five years at 4.5 percent", 120000, 0.045, 60},
		{"Awkward amount", 33333, 0.0715, 37},
		{"Single installment", 9999, 0.12, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := testLoan(tt.principal, tt.annualRate, tt.termMonths)

			schedule, err := GenerateSchedule(loan)
			require.NoError(t, err)
			require.Len(t, schedule, tt.termMonths)

			sum := decimal.Zero
			previous := loan.Principal
			for _, inst := range schedule {
				sum = sum.Add(inst.Principal)
				assert.True(t, inst.RemainingBalance.LessThanOrEqual(previous),
					"balance increased at installment %d", inst.Sequence)
				previous = inst.RemainingBalance
			}

			// No rounding leakage: principal components sum exactly.
			assert.True(t, sum.Equal(loan.Principal),
				"principal sum %s != %s", sum, loan.Principal)
			assert.True(t, schedule[len(schedule)-1].RemainingBalance.IsZero())
		})
	}
}

func TestGenerateSchedule_AnnuityInterestDeclines(t *testing.T) {
	loan := testLoan(50000, 0.06, 12)

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)

	// First period interest: 50000 * 0.06/12 = 250.
	assert.True(t, schedule[0].Interest.Equal(decimal.NewFromInt(250)),
		"got %s", schedule[0].Interest)

	for i := 1; i < len(schedule); i++ {
		assert.True(t, schedule[i].Interest.LessThanOrEqual(schedule[i-1].Interest),
			"interest rose at installment %d", i+1)
	}
}

func TestGenerateSchedule_InsuranceComponent(t *testing.T) {
	loan := testLoan(60000, 0.06, 12)
	loan.InsuranceRate = decimal.NewFromFloat(0.012)

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)

	// First period insurance: 60000 * 0.012/12 = 60.
	assert.True(t, schedule[0].Insurance.Equal(decimal.NewFromInt(60)),
		"got %s", schedule[0].Insurance)
	assert.True(t, schedule[0].Total.Equal(
		schedule[0].Principal.Add(schedule[0].Interest).Add(schedule[0].Insurance)))
}

func TestGenerateSchedule_DueDatesAdvanceMonthly(t *testing.T) {
	loan := testLoan(12000, 0, 6)
	loan.StartDate = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC), schedule[5].DueDate)
}

func TestGenerateSchedule_DueDateClampsToEndOfMonth(t *testing.T) {
	loan := testLoan(10000, 0, 4)
	loan.StartDate = time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	schedule, err := GenerateSchedule(loan)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	assert.Equal(t, time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC), schedule[3].DueDate)
}

func TestGenerateSchedule_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Loan)
	}{
		{"Zero principal", func(l *domain.Loan) { l.Principal = decimal.Zero }},
		{"Negative principal", func(l *domain.Loan) { l.Principal = decimal.NewFromInt(-100) }},
		{"Zero installment count", func(l *domain.Loan) { l.TermMonths = 0 }},
		{"Negative rate", func(l *domain.Loan) { l.AnnualRate = decimal.NewFromFloat(-0.05) }},
		{"Missing start date", func(l *domain.Loan) { l.StartDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := testLoan(10000, 0.05, 12)
			tt.mutate(loan)

			_, err := GenerateSchedule(loan)
			assert.Error(t, err)
		})
	}
}
