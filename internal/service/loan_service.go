package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/config"
	"github.com/ysekkat/payroll-engine/internal/domain"
	"github.com/ysekkat/payroll-engine/internal/engine"
	"github.com/ysekkat/payroll-engine/internal/repository"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
)

// payment recording retries this many times on a lost optimistic-version race
const paymentRetries = 3

type LoanService struct {
	LoanRepo     repository.LoanRepository
	EmployeeRepo repository.EmployeeRepository
	Redis        *redis.Client
	Config       *config.Config
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	employeeRepo repository.EmployeeRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		LoanRepo:     loanRepo,
		EmployeeRepo: employeeRepo,
		Redis:        redisClient,
		Config:       cfg,
	}
}

// CreateLoan creates an interest-bearing loan together with its full
// installment schedule. The schedule is fixed at creation; only installment
// payment state changes afterwards.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.Installment, error) {
	loan := &domain.Loan{
		ID:            uuid.New(),
		LoanID:        request.LoanID,
		EmployeeID:    request.EmployeeID,
		Kind:          domain.LoanKindLoan,
		Principal:     request.Principal,
		AnnualRate:    request.AnnualRate,
		InsuranceRate: request.InsuranceRate,
		TermMonths:    request.TermMonths,
		StartDate:     request.StartDate,
	}

	schedule, err := s.createWithSchedule(ctx, loan)
	if err != nil {
		return nil, nil, err
	}
	return loan, schedule, nil
}

// CreateAdvance creates a zero-interest salary advance. When the request
// leaves the installment count unset, the configured default applies.
func (s *LoanService) CreateAdvance(ctx context.Context, request *domain.CreateAdvanceRequest) (*domain.Loan, []*domain.Installment, error) {
	count := request.InstallmentCount
	if count == 0 {
		count = s.Config.Payroll.AdvanceInstallments
	}

	loan := &domain.Loan{
		ID:         uuid.New(),
		LoanID:     request.LoanID,
		EmployeeID: request.EmployeeID,
		Kind:       domain.LoanKindAdvance,
		Principal:  request.Principal,
		AnnualRate: decimal.Zero,
		TermMonths: count,
		StartDate:  request.StartDate,
	}

	schedule, err := s.createWithSchedule(ctx, loan)
	if err != nil {
		return nil, nil, err
	}
	return loan, schedule, nil
}

func (s *LoanService) createWithSchedule(ctx context.Context, loan *domain.Loan) ([]*domain.Installment, error) {
	// Check if a loan with this ID already exists
	existing, err := s.LoanRepo.GetByLoanID(ctx, loan.LoanID)
	if err == nil && existing != nil {
		return nil, customError.WrapLoanAlreadyExists(loan.LoanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if _, err := s.EmployeeRepo.GetByEmployeeID(ctx, loan.EmployeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapEmployeeNotFound(loan.EmployeeID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := engine.GenerateSchedule(loan)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.PaymentAmount = schedule[0].Total
	loan.Status = domain.LoanStatusActive
	loan.RemainingBalance = loan.Principal
	loan.AmountRepaid = decimal.Zero
	loan.Version = 1
	loan.CreatedAt = now
	loan.UpdatedAt = now

	for _, inst := range schedule {
		inst.ID = uuid.New()
		inst.CreatedAt = now
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := s.LoanRepo.CreateSchedule(ctx, schedule); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return schedule, nil
}

// GetSchedule returns a loan's installment sequence.
func (s *LoanService) GetSchedule(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	if _, err := s.loadLoan(ctx, loanID); err != nil {
		return nil, err
	}

	schedule, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return schedule, nil
}

// RecordPayment settles one installment. The installment keeps its due date
// and amount decomposition; only payment state changes. The loan's balance
// advance and the installment's transition commit in one transaction, guarded
// by an optimistic version check on the loan and a status guard on the
// installment, so concurrent payments never lose an update or settle the same
// installment twice.
func (s *LoanService) RecordPayment(ctx context.Context, installmentID string, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	if request.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapValidation("payment amount must be positive")
	}
	if request.PaymentDate.IsZero() {
		return nil, customError.WrapValidation("payment date is required")
	}

	installment, err := s.LoanRepo.GetInstallmentByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(installmentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	switch installment.Status {
	case domain.InstallmentStatusPaid:
		return nil, customError.WrapImmutability("installment has already been paid")
	case domain.InstallmentStatusCancelled:
		return nil, customError.WrapValidation("installment has been cancelled")
	}

	if !request.Amount.Equal(installment.Total) {
		return nil, customError.WrapValidationf(
			"payment amount %s does not match installment total %s",
			request.Amount, installment.Total)
	}

	paymentDate := request.PaymentDate
	installment.Status = domain.InstallmentStatusPaid
	installment.PaymentDate = &paymentDate
	installment.AmountPaid = decimal.NullDecimal{Decimal: request.Amount, Valid: true}
	installment.Notes = request.Notes

	var loan *domain.Loan
	for attempt := 0; attempt < paymentRetries; attempt++ {
		loan, err = s.loadLoan(ctx, installment.LoanID)
		if err != nil {
			return nil, err
		}
		if !loan.IsActive() {
			return nil, customError.WrapValidationf("loan %s is not active", loan.LoanID)
		}
		if loan.RemainingBalance.LessThanOrEqual(decimal.Zero) {
			return nil, customError.WrapDataIntegrityf(
				"loan %s is active with no remaining balance", loan.LoanID)
		}

		expectedVersion := loan.Version
		loan.RemainingBalance = loan.RemainingBalance.Sub(installment.Principal)
		loan.AmountRepaid = loan.AmountRepaid.Add(request.Amount)
		if loan.RemainingBalance.LessThanOrEqual(decimal.Zero) {
			loan.Status = domain.LoanStatusRepaid
		}

		err = s.LoanRepo.SettleInstallment(ctx, loan, expectedVersion, installment)
		if err == nil {
			break
		}
		if errors.Is(err, customError.ErrConcurrentUpdate) {
			continue
		}
		if errors.Is(err, customError.ErrImmutability) {
			// A racing payment settled this installment first.
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if err != nil {
		return nil, customError.WrapConcurrentUpdate(installment.LoanID)
	}

	s.invalidateProgress(ctx, installment.LoanID)

	return &domain.RecordPaymentResponse{Installment: installment, Loan: loan}, nil
}

// GetProgress reports repayment progress as of a date, serving from Redis
// when a fresh entry exists. Cache failures degrade to a recompute, never to
// an error.
func (s *LoanService) GetProgress(ctx context.Context, loanID string, asOf time.Time) (*domain.ProgressInfo, error) {
	key := progressKey(loanID, asOf)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var info domain.ProgressInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info, nil
			}
		}
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	info := engine.TrackProgress(loan, schedule, asOf)

	if s.Redis != nil {
		if payload, err := json.Marshal(info); err == nil {
			if err := s.Redis.Set(ctx, key, payload, s.Config.Redis.CacheTTL).Err(); err != nil {
				log.Printf("progress cache write for %s failed: %v", loanID, err)
			}
		}
	}

	return info, nil
}

// MarkOverdueInstallments flips pending installments past their due date to
// overdue. The scheduler binary runs this daily.
func (s *LoanService) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	affected, err := s.LoanRepo.MarkOverdue(ctx, asOf)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}
	return affected, nil
}

func (s *LoanService) loadLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LoanService) invalidateProgress(ctx context.Context, loanID string) {
	if s.Redis == nil {
		return
	}
	keys, err := s.Redis.Keys(ctx, progressKeyPrefix(loanID)+"*").Result()
	if err != nil {
		log.Printf("progress cache invalidation for %s failed: %v", loanID, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("progress cache invalidation for %s failed: %v", loanID, err)
	}
}

func progressKeyPrefix(loanID string) string {
	return "progress:" + loanID + ":"
}

func progressKey(loanID string, asOf time.Time) string {
	return fmt.Sprintf("%s%s", progressKeyPrefix(loanID), asOf.Format("2006-01-02"))
}
