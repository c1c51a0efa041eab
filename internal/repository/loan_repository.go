package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, loan_id, employee_id, kind, principal, annual_rate,
		                   insurance_rate, term_months, payment_amount, start_date, status,
		                   remaining_balance, amount_repaid, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanID,
		loan.EmployeeID,
		loan.Kind,
		loan.Principal,
		loan.AnnualRate,
		loan.InsuranceRate,
		loan.TermMonths,
		loan.PaymentAmount,
		loan.StartDate,
		loan.Status,
		loan.RemainingBalance,
		loan.AmountRepaid,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT id, loan_id, employee_id, kind, principal, annual_rate, insurance_rate,
		       term_months, payment_amount, start_date, status, remaining_balance,
		       amount_repaid, version, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanID)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListActiveByEmployeeID(ctx context.Context, employeeID string) ([]*domain.Loan, error) {
	query := `
		SELECT id, loan_id, employee_id, kind, principal, annual_rate, insurance_rate,
		       term_months, payment_amount, start_date, status, remaining_balance,
		       amount_repaid, version, created_at, updated_at
		FROM loans
		WHERE employee_id = $1 AND status = $2
		ORDER BY start_date
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, employeeID, domain.LoanStatusActive)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

// SettleInstallment applies the single read-modify-write that payment
// recording performs: the loan's balance advance and the installment's
// transition to paid commit or roll back together. The loan WHERE clause
// carries the optimistic version check (zero rows affected means another
// writer got there first); the installment WHERE clause only matches while
// the installment is still due, so two payments of the same installment can
// never both deduct its principal.
func (r *loanRepository) SettleInstallment(ctx context.Context, loan *domain.Loan, expectedVersion int64, installment *domain.Installment) error {
	loanQuery := `
		UPDATE loans
		SET remaining_balance = $2, amount_repaid = $3, status = $4,
		    version = version + 1, updated_at = $5
		WHERE loan_id = $1 AND version = $6
	`

	installmentQuery := `
		UPDATE installments
		SET status = $2, payment_date = $3, amount_paid = $4, notes = $5
		WHERE id = $1 AND status IN ($6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, loanQuery,
		loan.LoanID,
		loan.RemainingBalance,
		loan.AmountRepaid,
		loan.Status,
		time.Now(),
		expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapConcurrentUpdate(loan.LoanID)
	}

	result, err = tx.ExecContext(ctx, installmentQuery,
		installment.ID,
		installment.Status,
		installment.PaymentDate,
		installment.AmountPaid,
		installment.Notes,
		domain.InstallmentStatusPending,
		domain.InstallmentStatusOverdue,
	)
	if err != nil {
		return err
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapImmutability("installment has already been settled")
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	loan.Version = expectedVersion + 1
	return nil
}

func (r *loanRepository) CreateSchedule(ctx context.Context, installments []*domain.Installment) error {
	query := `
		INSERT INTO installments (id, loan_id, sequence, due_date, principal, interest,
		                          insurance, total, remaining_balance, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, query,
			inst.ID,
			inst.LoanID,
			inst.Sequence,
			inst.DueDate,
			inst.Principal,
			inst.Interest,
			inst.Insurance,
			inst.Total,
			inst.RemainingBalance,
			inst.Status,
			inst.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID string) ([]*domain.Installment, error) {
	query := `
		SELECT id, loan_id, sequence, due_date, principal, interest, insurance, total,
		       remaining_balance, status, payment_date, amount_paid, notes, created_at
		FROM installments
		WHERE loan_id = $1
		ORDER BY sequence
	`

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, loanID)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) GetInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	query := `
		SELECT id, loan_id, sequence, due_date, principal, interest, insurance, total,
		       remaining_balance, status, payment_date, amount_paid, notes, created_at
		FROM installments
		WHERE id = $1
	`

	var installment domain.Installment
	err := r.db.GetContext(ctx, &installment, query, installmentID)
	if err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *loanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE installments
		SET status = $1
		WHERE status = $2 AND due_date < $3
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.InstallmentStatusOverdue,
		domain.InstallmentStatusPending,
		asOf,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
