package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ysekkat/payroll-engine/internal/config"
	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/tests/mocks"
)

func testRuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		Version:    "2026-v1",
		FiscalYear: 2026,
		Contributions: []domain.ContributionRule{
			{Name: "pension", Rate: decimal.NewFromFloat(0.05)},
		},
		Brackets: []domain.TaxBracket{
			{Lower: decimal.Zero, Upper: decimal.NullDecimal{Decimal: decimal.NewFromInt(40000), Valid: true}, Rate: decimal.Zero},
			{Lower: decimal.NewFromInt(40000), Rate: decimal.NewFromFloat(0.10)},
		},
		DependentDeduction: decimal.NewFromInt(360),
		MarriedDeduction:   decimal.NewFromInt(3000),
	}
}

func testEmployee(employeeID string) *domain.Employee {
	return &domain.Employee{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		BaseSalary:    decimal.NewFromInt(5000),
		MaritalStatus: domain.MaritalStatusSingle,
		Status:        domain.EmployeeStatusActive,
	}
}

func newPayrollService(
	employeeRepo *mocks.MockEmployeeRepository,
	elementRepo *mocks.MockElementRepository,
	ruleRepo *mocks.MockRuleRepository,
	loanRepo *mocks.MockLoanRepository,
	payslipRepo *mocks.MockPayslipRepository,
) *PayrollService {
	return NewPayrollService(employeeRepo, elementRepo, ruleRepo, loanRepo, payslipRepo, &config.Config{
		Payroll: config.PayrollConfig{FiscalYear: 2026, RunWorkers: 2, AdvanceInstallments: 4},
	})
}

func TestComputePayslip_NewPayslip(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(nil, sql.ErrNoRows)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)
	mockPayslipRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.PayslipResult) bool {
		return p.EmployeeID == "EMP001" && p.Version == 1
	})).Return(nil)

	payslip, err := service.ComputePayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	// gross 5000, pension 250, taxable 4750, annual 57000 -> annual tax 1700
	assert.True(t, payslip.GrossPay.Equal(decimal.NewFromInt(5000)))
	assert.True(t, payslip.ContributionTotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, payslip.TaxableBase.Equal(decimal.NewFromInt(4750)))
	assert.True(t, payslip.TaxDue.Equal(decimal.NewFromFloat(141.67)))
	assert.True(t, payslip.NetPay.Equal(decimal.NewFromFloat(4608.33)))
	assert.Equal(t, domain.PayslipStatusComputed, payslip.Status)
	assert.NotEqual(t, uuid.Nil, payslip.ID)

	mockPayslipRepo.AssertExpectations(t)
	mockEmployeeRepo.AssertExpectations(t)
}

func TestComputePayslip_RecomputeKeepsIdentity(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	computedAt := time.Date(2026, 3, 25, 10, 0, 0, 0, time.UTC)
	existing := &domain.PayslipResult{
		ID:         uuid.New(),
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Version:    1,
		Status:     domain.PayslipStatusComputed,
		ComputedAt: computedAt,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)
	mockPayslipRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.PayslipResult) bool {
		return p.ID == existing.ID && p.Version == 1
	})).Return(nil)

	payslip, err := service.ComputePayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, payslip.ID)
	assert.Equal(t, 1, payslip.Version)
	assert.Equal(t, computedAt, payslip.ComputedAt)

	// The recompute rewrites the existing row, never inserts a new one.
	mockPayslipRepo.AssertExpectations(t)
	mockPayslipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComputePayslip_RecomputePersistsChangedFigures(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	existing := &domain.PayslipResult{
		ID:         uuid.New(),
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Version:    1,
		NetPay:     decimal.NewFromFloat(4608.33),
		Status:     domain.PayslipStatusComputed,
		ComputedAt: time.Date(2026, 3, 25, 10, 0, 0, 0, time.UTC),
	}

	// A bonus entered after the first computation changes the figures.
	bonus := &domain.VariableElement{
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Type:       domain.ElementBonus,
		Amount:     decimal.NewFromInt(1000),
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{bonus}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)
	mockPayslipRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.PayslipResult) bool {
		// gross 6000, pension 300, taxable 5700, tax 236.67
		return p.ID == existing.ID && p.NetPay.Equal(decimal.NewFromFloat(5463.33))
	})).Return(nil)

	payslip, err := service.ComputePayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, payslip.ID)
	assert.True(t, payslip.NetPay.Equal(decimal.NewFromFloat(5463.33)))

	// Finalization reads the stored row, so the fresh figures must be there.
	mockPayslipRepo.AssertExpectations(t)
	mockPayslipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComputePayslip_RecomputeLosesFinalizeRace(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	existing := &domain.PayslipResult{
		ID:         uuid.New(),
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Version:    1,
		Status:     domain.PayslipStatusComputed,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)
	// The payslip was finalized between our read and our write.
	mockPayslipRepo.On("Update", mock.Anything, mock.Anything).
		Return(customError.WrapImmutability("payslip is already finalized"))

	_, err := service.ComputePayslip(context.Background(), "EMP001", period)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodePeriodClosed, businessErr.Code)
}

func TestComputePayslip_FinalizedPeriodIsClosed(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 2, Year: 2026}
	finalizedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.PayslipResult{
		ID:          uuid.New(),
		EmployeeID:  "EMP001",
		Month:       2,
		Year:        2026,
		Version:     1,
		Status:      domain.PayslipStatusFinalized,
		FinalizedAt: &finalizedAt,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)

	payslip, err := service.ComputePayslip(context.Background(), "EMP001", period)

	assert.Error(t, err)
	assert.Nil(t, payslip)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodePeriodClosed, businessErr.Code)
}

func TestComputePayslip_EmployeeNotFound(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}

	mockPayslipRepo.On("GetLatest", mock.Anything, "GHOST", period).Return(nil, sql.ErrNoRows)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "GHOST").Return(nil, sql.ErrNoRows)

	_, err := service.ComputePayslip(context.Background(), "GHOST", period)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeEmployeeNotFound, businessErr.Code)
}

func TestComputePayslip_DeductsDueInstallment(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	loan := &domain.Loan{
		LoanID:           "LOAN001",
		EmployeeID:       "EMP001",
		Status:           domain.LoanStatusActive,
		RemainingBalance: decimal.NewFromInt(4000),
	}
	schedule := []*domain.Installment{
		{LoanID: "LOAN001", Sequence: 1, DueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(500), Status: domain.InstallmentStatusPaid},
		{LoanID: "LOAN001", Sequence: 2, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(500), Status: domain.InstallmentStatusPending},
		{LoanID: "LOAN001", Sequence: 3, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(500), Status: domain.InstallmentStatusPending},
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(nil, sql.ErrNoRows)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{loan}, nil)
	mockLoanRepo.On("GetScheduleByLoanID", mock.Anything, "LOAN001").Return(schedule, nil)
	mockPayslipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	payslip, err := service.ComputePayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	// Only the March installment falls due in the period.
	assert.True(t, payslip.DueInstallment.Equal(decimal.NewFromInt(500)))
	assert.True(t, payslip.NetPay.Equal(decimal.NewFromFloat(4108.33)))
}

func TestComputePayslip_ActiveLoanWithoutBalance(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	loan := &domain.Loan{
		LoanID:           "LOAN001",
		EmployeeID:       "EMP001",
		Status:           domain.LoanStatusActive,
		RemainingBalance: decimal.Zero,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(nil, sql.ErrNoRows)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{loan}, nil)

	_, err := service.ComputePayslip(context.Background(), "EMP001", period)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeDataIntegrity, businessErr.Code)
}

func TestCorrectPayslip_IncrementsVersion(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 2, Year: 2026}
	finalizedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.PayslipResult{
		ID:          uuid.New(),
		EmployeeID:  "EMP001",
		Month:       2,
		Year:        2026,
		Version:     1,
		Status:      domain.PayslipStatusFinalized,
		FinalizedAt: &finalizedAt,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(testEmployee("EMP001"), nil)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, "EMP001", period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)
	mockPayslipRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.PayslipResult) bool {
		return p.Version == 2 && p.ID != existing.ID
	})).Return(nil)

	payslip, err := service.CorrectPayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	assert.Equal(t, 2, payslip.Version)
	assert.NotEqual(t, existing.ID, payslip.ID)

	mockPayslipRepo.AssertExpectations(t)
}

func TestFinalizePayslip_Success(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	existing := &domain.PayslipResult{
		ID:         uuid.New(),
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Version:    1,
		Status:     domain.PayslipStatusComputed,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	mockPayslipRepo.On("Finalize", mock.Anything, existing.ID.String(), mock.Anything).Return(nil)

	payslip, err := service.FinalizePayslip(context.Background(), "EMP001", period)

	assert.NoError(t, err)
	assert.Equal(t, domain.PayslipStatusFinalized, payslip.Status)
	assert.NotNil(t, payslip.FinalizedAt)

	mockPayslipRepo.AssertExpectations(t)
}

func TestFinalizePayslip_AlreadyFinalized(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	finalizedAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.PayslipResult{
		ID:          uuid.New(),
		EmployeeID:  "EMP001",
		Status:      domain.PayslipStatusFinalized,
		FinalizedAt: &finalizedAt,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)

	_, err := service.FinalizePayslip(context.Background(), "EMP001", period)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeImmutability, businessErr.Code)

	mockPayslipRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalizePayslip_ConcurrentFinalize(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	existing := &domain.PayslipResult{
		ID:         uuid.New(),
		EmployeeID: "EMP001",
		Month:      3,
		Year:       2026,
		Version:    1,
		Status:     domain.PayslipStatusComputed,
	}

	mockPayslipRepo.On("GetLatest", mock.Anything, "EMP001", period).Return(existing, nil)
	// Another caller finalized first: the guarded UPDATE matches no row.
	mockPayslipRepo.On("Finalize", mock.Anything, existing.ID.String(), mock.Anything).
		Return(customError.WrapImmutability("payslip is already finalized"))

	_, err := service.FinalizePayslip(context.Background(), "EMP001", period)

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeImmutability, businessErr.Code)
}

func TestRunPayroll_IsolatesFailures(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	good := testEmployee("EMP001")
	bad := testEmployee("EMP002")

	mockEmployeeRepo.On("ListActive", mock.Anything).Return([]*domain.Employee{good, bad}, nil)

	mockPayslipRepo.On("GetLatest", mock.Anything, mock.Anything, period).Return(nil, sql.ErrNoRows)
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil)
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, mock.Anything, period).Return([]*domain.VariableElement{}, nil)
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, "EMP001").Return([]*domain.Loan{}, nil)

	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP001").Return(good, nil)
	// The second employee's row disappeared between listing and resolution.
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, "EMP002").Return(nil, sql.ErrNoRows)

	mockPayslipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	report, err := service.RunPayroll(context.Background(), period)

	assert.NoError(t, err)
	assert.Len(t, report.Payslips, 1)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, "EMP001", report.Payslips[0].EmployeeID)
	assert.Equal(t, "EMP002", report.Failures[0].EmployeeID)
	assert.Equal(t, customError.ErrCodeEmployeeNotFound, report.Failures[0].Code)
}

func TestRunPayroll_CancelledContext(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	period := domain.Period{Month: 3, Year: 2026}
	employees := make([]*domain.Employee, 0, 100)
	for i := 0; i < 100; i++ {
		employees = append(employees, testEmployee("EMP001"))
	}

	mockEmployeeRepo.On("ListActive", mock.Anything).Return(employees, nil)
	mockPayslipRepo.On("GetLatest", mock.Anything, mock.Anything, period).Return(nil, sql.ErrNoRows).Maybe()
	mockEmployeeRepo.On("GetByEmployeeID", mock.Anything, mock.Anything).Return(testEmployee("EMP001"), nil).Maybe()
	mockRuleRepo.On("GetByFiscalYear", mock.Anything, 2026).Return(testRuleSet(), nil).Maybe()
	mockElementRepo.On("ListByEmployeeAndPeriod", mock.Anything, mock.Anything, period).Return([]*domain.VariableElement{}, nil).Maybe()
	mockLoanRepo.On("ListActiveByEmployeeID", mock.Anything, mock.Anything).Return([]*domain.Loan{}, nil).Maybe()
	mockPayslipRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := service.RunPayroll(ctx, period)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, report)
	assert.Less(t, len(report.Payslips)+len(report.Failures), 100)
}

func TestRunPayroll_InvalidPeriod(t *testing.T) {
	mockEmployeeRepo := &mocks.MockEmployeeRepository{}
	mockElementRepo := &mocks.MockElementRepository{}
	mockRuleRepo := &mocks.MockRuleRepository{}
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPayslipRepo := &mocks.MockPayslipRepository{}

	service := newPayrollService(mockEmployeeRepo, mockElementRepo, mockRuleRepo, mockLoanRepo, mockPayslipRepo)

	_, err := service.RunPayroll(context.Background(), domain.Period{Month: 13, Year: 2026})

	var businessErr *customError.BusinessError
	assert.ErrorAs(t, err, &businessErr)
	assert.Equal(t, customError.ErrCodeValidation, businessErr.Code)
}
