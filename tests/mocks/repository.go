package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ListActive(ctx context.Context) ([]*domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Employee), args.Error(1)
}

type MockElementRepository struct {
	mock.Mock
}

func (m *MockElementRepository) ListByEmployeeAndPeriod(ctx context.Context, employeeID string, period domain.Period) ([]*domain.VariableElement, error) {
	args := m.Called(ctx, employeeID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VariableElement), args.Error(1)
}

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) GetByFiscalYear(ctx context.Context, fiscalYear int) (*domain.RuleSet, error) {
	args := m.Called(ctx, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RuleSet), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActiveByEmployeeID(ctx context.Context, employeeID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SettleInstallment(ctx context.Context, loan *domain.Loan, expectedVersion int64, installment *domain.Installment) error {
	args := m.Called(ctx, loan, expectedVersion, installment)
	return args.Error(0)
}

func (m *MockLoanRepository) CreateSchedule(ctx context.Context, installments []*domain.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockLoanRepository) GetScheduleByLoanID(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockLoanRepository) GetInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockLoanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type MockPayslipRepository struct {
	mock.Mock
}

func (m *MockPayslipRepository) Create(ctx context.Context, payslip *domain.PayslipResult) error {
	args := m.Called(ctx, payslip)
	return args.Error(0)
}

func (m *MockPayslipRepository) Update(ctx context.Context, payslip *domain.PayslipResult) error {
	args := m.Called(ctx, payslip)
	return args.Error(0)
}

func (m *MockPayslipRepository) GetLatest(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	args := m.Called(ctx, employeeID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayslipResult), args.Error(1)
}

func (m *MockPayslipRepository) Finalize(ctx context.Context, payslipID string, finalizedAt time.Time) error {
	args := m.Called(ctx, payslipID, finalizedAt)
	return args.Error(0)
}
