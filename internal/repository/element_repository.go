package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

type elementRepository struct {
	db *sqlx.DB
}

func NewElementRepository(db *sqlx.DB) ElementRepository {
	return &elementRepository{db: db}
}

func (r *elementRepository) ListByEmployeeAndPeriod(ctx context.Context, employeeID string, period domain.Period) ([]*domain.VariableElement, error) {
	query := `
		SELECT id, employee_id, month, year, type, hours, hourly_rate, amount, created_at
		FROM variable_elements
		WHERE employee_id = $1 AND month = $2 AND year = $3
		ORDER BY created_at
	`

	var elements []*domain.VariableElement
	err := r.db.SelectContext(ctx, &elements, query, employeeID, period.Month, period.Year)
	if err != nil {
		return nil, err
	}

	return elements, nil
}
