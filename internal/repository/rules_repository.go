package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

type ruleRepository struct {
	db *sqlx.DB
}

func NewRuleRepository(db *sqlx.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetByFiscalYear(ctx context.Context, fiscalYear int) (*domain.RuleSet, error) {
	query := `
		SELECT id, version, fiscal_year, dependent_deduction, married_deduction, created_at
		FROM rule_sets
		WHERE fiscal_year = $1
		ORDER BY version DESC
		LIMIT 1
	`

	var ruleSet domain.RuleSet
	if err := r.db.GetContext(ctx, &ruleSet, query, fiscalYear); err != nil {
		return nil, err
	}

	contributionsQuery := `
		SELECT name, rate, ceiling, residual
		FROM contribution_rules
		WHERE rule_set_id = $1
		ORDER BY position
	`
	if err := r.db.SelectContext(ctx, &ruleSet.Contributions, contributionsQuery, ruleSet.ID); err != nil {
		return nil, err
	}

	bracketsQuery := `
		SELECT lower_bound, upper_bound, rate
		FROM tax_brackets
		WHERE rule_set_id = $1
		ORDER BY lower_bound
	`
	if err := r.db.SelectContext(ctx, &ruleSet.Brackets, bracketsQuery, ruleSet.ID); err != nil {
		return nil, err
	}

	return &ruleSet, nil
}
