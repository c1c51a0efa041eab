package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
)

type payslipRepository struct {
	db *sqlx.DB
}

func NewPayslipRepository(db *sqlx.DB) PayslipRepository {
	return &payslipRepository{db: db}
}

func (r *payslipRepository) Create(ctx context.Context, payslip *domain.PayslipResult) error {
	query := `
		INSERT INTO payslips (id, employee_id, month, year, version, gross_pay,
		                      contribution_total, taxable_base, tax_due, pre_net_deductions,
		                      due_installment, net_pay, status, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	lineQuery := `
		INSERT INTO payslip_contributions (payslip_id, name, base, rate, amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, query,
		payslip.ID,
		payslip.EmployeeID,
		payslip.Month,
		payslip.Year,
		payslip.Version,
		payslip.GrossPay,
		payslip.ContributionTotal,
		payslip.TaxableBase,
		payslip.TaxDue,
		payslip.PreNetDeductions,
		payslip.DueInstallment,
		payslip.NetPay,
		payslip.Status,
		payslip.ComputedAt,
	)
	if err != nil {
		return err
	}

	for _, line := range payslip.Contributions {
		_, err = tx.ExecContext(ctx, lineQuery,
			payslip.ID,
			line.Name,
			line.Base,
			line.Rate,
			line.Amount,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Update rewrites an open payslip row in place, replacing its contribution
// lines. Finalized rows never match the status guard.
func (r *payslipRepository) Update(ctx context.Context, payslip *domain.PayslipResult) error {
	query := `
		UPDATE payslips
		SET gross_pay = $2, contribution_total = $3, taxable_base = $4, tax_due = $5,
		    pre_net_deductions = $6, due_installment = $7, net_pay = $8
		WHERE id = $1 AND status = $9
	`

	lineQuery := `
		INSERT INTO payslip_contributions (payslip_id, name, base, rate, amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query,
		payslip.ID,
		payslip.GrossPay,
		payslip.ContributionTotal,
		payslip.TaxableBase,
		payslip.TaxDue,
		payslip.PreNetDeductions,
		payslip.DueInstallment,
		payslip.NetPay,
		domain.PayslipStatusComputed,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapImmutability("payslip is already finalized")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payslip_contributions WHERE payslip_id = $1`, payslip.ID); err != nil {
		return err
	}
	for _, line := range payslip.Contributions {
		_, err = tx.ExecContext(ctx, lineQuery,
			payslip.ID,
			line.Name,
			line.Base,
			line.Rate,
			line.Amount,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *payslipRepository) GetLatest(ctx context.Context, employeeID string, period domain.Period) (*domain.PayslipResult, error) {
	query := `
		SELECT id, employee_id, month, year, version, gross_pay, contribution_total,
		       taxable_base, tax_due, pre_net_deductions, due_installment, net_pay,
		       status, computed_at, finalized_at
		FROM payslips
		WHERE employee_id = $1 AND month = $2 AND year = $3
		ORDER BY version DESC
		LIMIT 1
	`

	var payslip domain.PayslipResult
	err := r.db.GetContext(ctx, &payslip, query, employeeID, period.Month, period.Year)
	if err != nil {
		return nil, err
	}

	lineQuery := `
		SELECT name, base, rate, amount
		FROM payslip_contributions
		WHERE payslip_id = $1
		ORDER BY name
	`
	if err := r.db.SelectContext(ctx, &payslip.Contributions, lineQuery, payslip.ID); err != nil {
		return nil, err
	}

	return &payslip, nil
}

func (r *payslipRepository) Finalize(ctx context.Context, payslipID string, finalizedAt time.Time) error {
	query := `
		UPDATE payslips
		SET status = $2, finalized_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		payslipID,
		domain.PayslipStatusFinalized,
		finalizedAt,
		domain.PayslipStatusComputed,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row is gone or a concurrent caller finalized it first.
		return customError.WrapImmutability("payslip is already finalized")
	}

	return nil
}
