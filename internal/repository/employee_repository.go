package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

type employeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	query := `
		SELECT id, employee_id, base_salary, transport_allowance, housing_allowance,
		       representation_allowance, marital_status, dependents, hire_date, status,
		       created_at, updated_at
		FROM employees
		WHERE employee_id = $1
	`

	var employee domain.Employee
	err := r.db.GetContext(ctx, &employee, query, employeeID)
	if err != nil {
		return nil, err
	}

	return &employee, nil
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, employee_id, base_salary, transport_allowance, housing_allowance,
		       representation_allowance, marital_status, dependents, hire_date, status,
		       created_at, updated_at
		FROM employees
		WHERE status = $1
		ORDER BY employee_id
	`

	var employees []*domain.Employee
	err := r.db.SelectContext(ctx, &employees, query, domain.EmployeeStatusActive)
	if err != nil {
		return nil, err
	}

	return employees, nil
}
