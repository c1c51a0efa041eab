package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/config"
	"github.com/ysekkat/payroll-engine/internal/domain"
	"github.com/ysekkat/payroll-engine/internal/engine"
	"github.com/ysekkat/payroll-engine/internal/repository"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
)

type PayrollService struct {
	EmployeeRepo repository.EmployeeRepository
	ElementRepo  repository.ElementRepository
	RuleRepo     repository.RuleRepository
	LoanRepo     repository.LoanRepository
	PayslipRepo  repository.PayslipRepository
	Config       *config.Config
}

func NewPayrollService(
	employeeRepo repository.EmployeeRepository,
	elementRepo repository.ElementRepository,
	ruleRepo repository.RuleRepository,
	loanRepo repository.LoanRepository,
	payslipRepo repository.PayslipRepository,
	cfg *config.Config,
) *PayrollService {
	return &PayrollService{
		EmployeeRepo: employeeRepo,
		ElementRepo:  elementRepo,
		RuleRepo:     ruleRepo,
		LoanRepo:     loanRepo,
		PayslipRepo:  payslipRepo,
		Config:       cfg,
	}
}

// ComputePayslip resolves one employee's payslip for a period. Recomputing an
// already computed, non-finalized payslip returns the same figures (the
// resolution is deterministic); recomputing a finalized one is refused.
func (s *PayrollService) ComputePayslip(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	if !period.Valid() {
		return nil, customError.WrapValidationf("invalid period %s", period)
	}

	existing, err := s.PayslipRepo.GetLatest(ctx, employeeID, period)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil && existing.IsFinalized() {
		return nil, customError.WrapPeriodClosed(period.String())
	}

	result, err := s.resolve(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// Recompute of an open payslip keeps its identity but persists the
		// fresh figures: inputs may have changed since the stored row was
		// written (a bonus entered post-compute), and finalization archives
		// whatever is stored.
		result.ID = existing.ID
		result.Version = existing.Version
		result.ComputedAt = existing.ComputedAt
		if err := s.PayslipRepo.Update(ctx, result); err != nil {
			if errors.Is(err, customError.ErrImmutability) {
				return nil, customError.WrapPeriodClosed(period.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}
		return result, nil
	}

	result.ID = uuid.New()
	result.ComputedAt = time.Now().UTC()
	if err := s.PayslipRepo.Create(ctx, result); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return result, nil
}

// CorrectPayslip creates a new, explicitly versioned computation for a period
// whose payslip was already finalized. The finalized result stays untouched.
func (s *PayrollService) CorrectPayslip(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	existing, err := s.PayslipRepo.GetLatest(ctx, employeeID, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapValidationf("no payslip exists for %s in %s", employeeID, period)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.resolve(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}

	result.ID = uuid.New()
	result.Version = existing.Version + 1
	result.ComputedAt = time.Now().UTC()
	if err := s.PayslipRepo.Create(ctx, result); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return result, nil
}

// FinalizePayslip transitions the latest computed payslip for the period to
// finalized. A finalized payslip is immutable from then on.
func (s *PayrollService) FinalizePayslip(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	payslip, err := s.PayslipRepo.GetLatest(ctx, employeeID, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapValidationf("no payslip exists for %s in %s", employeeID, period)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if payslip.IsFinalized() {
		return nil, customError.WrapImmutability("payslip is already finalized")
	}

	now := time.Now().UTC()
	if err := s.PayslipRepo.Finalize(ctx, payslip.ID.String(), now); err != nil {
		if errors.Is(err, customError.ErrImmutability) {
			// A concurrent caller finalized between our read and write.
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payslip.Status = domain.PayslipStatusFinalized
	payslip.FinalizedAt = &now
	return payslip, nil
}

// RunPayroll computes payslips for every active employee in the period.
// Employees are independent, so the run fans out across a bounded worker
// pool; one employee's failure is reported, never propagated to the others.
// Cancelling the context stops the run between employees without corrupting
// anything already written.
func (s *PayrollService) RunPayroll(ctx context.Context, period domain.Period) (*domain.PayrollRunReport, error) {
	if !period.Valid() {
		return nil, customError.WrapValidationf("invalid period %s", period)
	}

	employees, err := s.EmployeeRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	report := &domain.PayrollRunReport{Month: period.Month, Year: period.Year}

	workers := s.Config.Payroll.RunWorkers
	if workers > len(employees) {
		workers = len(employees)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *domain.Employee)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				payslip, err := s.ComputePayslip(ctx, emp.EmployeeID, period)

				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, failureFor(emp.EmployeeID, err))
				} else {
					report.Payslips = append(report.Payslips, payslip)
				}
				mu.Unlock()
			}
		}()
	}

	for _, emp := range employees {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return report, ctx.Err()
		case jobs <- emp:
		}
	}
	close(jobs)
	wg.Wait()

	return report, nil
}

func (s *PayrollService) resolve(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	employee, err := s.EmployeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapEmployeeNotFound(employeeID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if !employee.IsActive() {
		return nil, customError.WrapValidationf("employee %s is not active", employeeID)
	}

	rules, err := s.RuleRepo.GetByFiscalYear(ctx, period.Year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapRuleSetNotFound(period.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	elements, err := s.ElementRepo.ListByEmployeeAndPeriod(ctx, employeeID, period)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	dueInstallment, err := s.dueInstallmentFor(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}

	return engine.ResolveNetPay(engine.NetPayInput{
		Employee:       employee,
		Period:         period,
		Elements:       elements,
		Rules:          rules,
		DueInstallment: dueInstallment,
	})
}

// dueInstallmentFor sums the installments falling due in the period across
// the employee's active loans and advances. An active loan with nothing left
// to repay is inconsistent data, surfaced rather than guessed around.
func (s *PayrollService) dueInstallmentFor(ctx context.Context, employeeID string, period domain.Period) (decimal.Decimal, error) {
	loans, err := s.LoanRepo.ListActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	due := decimal.Zero
	for _, loan := range loans {
		if loan.RemainingBalance.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, customError.WrapDataIntegrityf(
				"loan %s is active with no remaining balance", loan.LoanID)
		}

		schedule, err := s.LoanRepo.GetScheduleByLoanID(ctx, loan.LoanID)
		if err != nil {
			return decimal.Zero, customError.WrapDatabaseError(err)
		}

		for _, inst := range schedule {
			if inst.Due() && period.Contains(inst.DueDate) {
				due = due.Add(inst.Total)
			}
		}
	}

	return due, nil
}

func failureFor(employeeID string, err error) domain.PayrollFailure {
	failure := domain.PayrollFailure{
		EmployeeID: employeeID,
		Code:       customError.ErrCodeDatabaseError,
		Message:    err.Error(),
	}

	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		failure.Code = businessErr.Code
		failure.Message = businessErr.Message
	}

	return failure
}
