package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanKindLoan    = "loan"
	LoanKindAdvance = "advance"
)

const (
	LoanStatusActive    = "active"
	LoanStatusRepaid    = "repaid"
	LoanStatusSuspended = "suspended"
	LoanStatusCancelled = "cancelled"
)

// Loan represents an interest-bearing employee loan or a zero-interest salary
// advance. An advance is the degenerate case: zero rate, fixed installment
// count, no insurance. Version supports the optimistic check that serializes
// concurrent payments against the same loan.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           string          `json:"loan_id" db:"loan_id"`
	EmployeeID       string          `json:"employee_id" db:"employee_id"`
	Kind             string          `json:"kind" db:"kind"`
	Principal        decimal.Decimal `json:"principal" db:"principal"`
	AnnualRate       decimal.Decimal `json:"annual_rate" db:"annual_rate"`
	InsuranceRate    decimal.Decimal `json:"insurance_rate" db:"insurance_rate"`
	TermMonths       int             `json:"term_months" db:"term_months"`
	PaymentAmount    decimal.Decimal `json:"payment_amount" db:"payment_amount"`
	StartDate        time.Time       `json:"start_date" db:"start_date"`
	Status           string          `json:"status" db:"status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	AmountRepaid     decimal.Decimal `json:"amount_repaid" db:"amount_repaid"`
	Version          int64           `json:"version" db:"version"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanID        string          `json:"loan_id" validate:"required"`
	EmployeeID    string          `json:"employee_id" validate:"required"`
	Principal     decimal.Decimal `json:"principal" validate:"required"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	InsuranceRate decimal.Decimal `json:"insurance_rate"`
	TermMonths    int             `json:"term_months" validate:"required,gt=0"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
}

type CreateAdvanceRequest struct {
	LoanID           string          `json:"loan_id" validate:"required"`
	EmployeeID       string          `json:"employee_id" validate:"required"`
	Principal        decimal.Decimal `json:"principal" validate:"required"`
	InstallmentCount int             `json:"installment_count" validate:"gte=0"`
	StartDate        time.Time       `json:"start_date" validate:"required"`
}

type CreateLoanResponse struct {
	Loan     *Loan          `json:"loan"`
	Schedule []*Installment `json:"schedule"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate time.Time       `json:"payment_date" validate:"required"`
	Notes       string          `json:"notes"`
}

type RecordPaymentResponse struct {
	Installment *Installment `json:"installment"`
	Loan        *Loan        `json:"loan"`
}

type ScheduleResponse struct {
	LoanID   string         `json:"loan_id"`
	Schedule []*Installment `json:"schedule"`
}
