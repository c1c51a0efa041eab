package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PayslipStatusPending   = "pending"
	PayslipStatusComputed  = "computed"
	PayslipStatusFinalized = "finalized"
)

// ContributionLine is one itemized statutory contribution on a payslip.
type ContributionLine struct {
	Name   string          `json:"name" db:"name"`
	Base   decimal.Decimal `json:"base" db:"base"`
	Rate   decimal.Decimal `json:"rate" db:"rate"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
}

// PayslipResult is the outcome of one net-pay resolution for one employee and
// period. Once finalized it is immutable; a correction is a new computation
// with an incremented version, never a mutation.
type PayslipResult struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	EmployeeID        string             `json:"employee_id" db:"employee_id"`
	Month             int                `json:"month" db:"month"`
	Year              int                `json:"year" db:"year"`
	Version           int                `json:"version" db:"version"`
	GrossPay          decimal.Decimal    `json:"gross_pay" db:"gross_pay"`
	Contributions     []ContributionLine `json:"contributions"`
	ContributionTotal decimal.Decimal    `json:"contribution_total" db:"contribution_total"`
	TaxableBase       decimal.Decimal    `json:"taxable_base" db:"taxable_base"`
	TaxDue            decimal.Decimal    `json:"tax_due" db:"tax_due"`
	PreNetDeductions  decimal.Decimal    `json:"pre_net_deductions" db:"pre_net_deductions"`
	DueInstallment    decimal.Decimal    `json:"due_installment" db:"due_installment"`
	NetPay            decimal.Decimal    `json:"net_pay" db:"net_pay"`
	Status            string             `json:"status" db:"status"`
	ComputedAt        time.Time          `json:"computed_at" db:"computed_at"`
	FinalizedAt       *time.Time         `json:"finalized_at,omitempty" db:"finalized_at"`
}

func (p *PayslipResult) Period() Period {
	return Period{Month: p.Month, Year: p.Year}
}

func (p *PayslipResult) IsFinalized() bool {
	return p.Status == PayslipStatusFinalized
}

// PayrollFailure records one employee whose payslip could not be computed
// during a payroll run.
type PayrollFailure struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// PayrollRunReport is the partial-failure result of one payroll run. A single
// employee's bad data never aborts the other employees' payslips.
type PayrollRunReport struct {
	Month    int              `json:"month"`
	Year     int              `json:"year"`
	Payslips []*PayslipResult `json:"payslips"`
	Failures []PayrollFailure `json:"failures"`
}

// ProgressInfo is the single output shape for repayment progress, whether it
// was derived from a full schedule or from the balance-only fallback.
type ProgressInfo struct {
	LoanID             string          `json:"loan_id"`
	Percentage         decimal.Decimal `json:"percentage"`
	ExpectedPercentage decimal.Decimal `json:"expected_percentage"`
	MonthsElapsed      int             `json:"months_elapsed"`
	IsLate             bool            `json:"is_late"`
	MonthsLate         int             `json:"months_late"`
	AmountDue          decimal.Decimal `json:"amount_due"`
}
