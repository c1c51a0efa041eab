package repository

import (
	"context"
	"time"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

// EmployeeRepository defines read access to employee records
type EmployeeRepository interface {
	// GetByEmployeeID retrieves an employee by its business identifier
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error)

	// ListActive retrieves all employees eligible for a payroll run
	ListActive(ctx context.Context) ([]*domain.Employee, error)
}

// ElementRepository defines read access to variable payroll elements
type ElementRepository interface {
	// ListByEmployeeAndPeriod retrieves one employee's elements for a period
	ListByEmployeeAndPeriod(ctx context.Context, employeeID string, period domain.Period) ([]*domain.VariableElement, error)
}

// RuleRepository defines access to versioned tax/contribution rule sets
type RuleRepository interface {
	// GetByFiscalYear retrieves the rule set in force for a fiscal year
	GetByFiscalYear(ctx context.Context, fiscalYear int) (*domain.RuleSet, error)
}

// LoanRepository defines the interface for loan and installment data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanID retrieves a loan by its loan ID
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListActiveByEmployeeID retrieves an employee's active loans and advances
	ListActiveByEmployeeID(ctx context.Context, employeeID string) ([]*domain.Loan, error)

	// SettleInstallment applies one payment in a single transaction: the
	// loan's balance advance and the installment's transition to paid. The
	// loan update applies only when the stored version matches
	// expectedVersion; the installment update applies only while the
	// installment is still due. A version mismatch reports a concurrent
	// update, a no-longer-due installment reports an immutability violation,
	// and either failure rolls back both writes.
	SettleInstallment(ctx context.Context, loan *domain.Loan, expectedVersion int64, installment *domain.Installment) error

	// CreateSchedule creates a loan's installment sequence
	CreateSchedule(ctx context.Context, installments []*domain.Installment) error

	// GetScheduleByLoanID retrieves a loan's installments ordered by sequence
	GetScheduleByLoanID(ctx context.Context, loanID string) ([]*domain.Installment, error)

	// GetInstallmentByID retrieves a single installment
	GetInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error)

	// MarkOverdue flips pending installments past their due date to overdue,
	// returning the number of rows affected
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// PayslipRepository defines the interface for payslip result persistence
type PayslipRepository interface {
	// Create stores a computed payslip
	Create(ctx context.Context, payslip *domain.PayslipResult) error

	// Update rewrites an open payslip's figures and contribution lines under
	// its existing identity. Finalized payslips are never updated.
	Update(ctx context.Context, payslip *domain.PayslipResult) error

	// GetLatest retrieves the highest-version payslip for an employee/period
	GetLatest(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error)

	// Finalize transitions a computed payslip to finalized
	Finalize(ctx context.Context, payslipID string, finalizedAt time.Time) error
}
