package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ysekkat/payroll-engine/internal/domain"
	customError "github.com/ysekkat/payroll-engine/pkg/errors"
	"github.com/ysekkat/payroll-engine/pkg/money"
)

// NetPayInput carries everything one net-pay resolution needs. The caller
// resolves the due installment from the employee's active loans so the engine
// stays free of repository access.
type NetPayInput struct {
	Employee       *domain.Employee
	Period         domain.Period
	Elements       []*domain.VariableElement
	Rules          *domain.RuleSet
	DueInstallment decimal.Decimal
}

// ResolveNetPay computes one employee's payslip figures for one period:
//
//	gross   = base salary + allowances + variable gross adjustment
//	taxable = gross - contributions
//	net     = taxable - tax - pre-net deductions - due installment
//
// The result is deterministic: identical inputs always produce identical
// figures. Identity and timestamps are assigned by the caller.
func ResolveNetPay(in NetPayInput) (*domain.PayslipResult, error) {
	if in.Employee == nil {
		return nil, customError.WrapValidation("employee is required")
	}
	if !in.Period.Valid() {
		return nil, customError.WrapValidationf("invalid period %s", in.Period)
	}
	if in.Rules == nil {
		return nil, customError.WrapValidation("rule set is required")
	}
	if money.IsNegative(in.Employee.BaseSalary) {
		return nil, customError.WrapValidation("base salary cannot be negative")
	}
	if money.IsNegative(in.DueInstallment) {
		return nil, customError.WrapValidation("due installment cannot be negative")
	}

	agg, err := AggregateElements(in.Elements)
	if err != nil {
		return nil, err
	}

	grossPay := money.Round(in.Employee.BaseSalary.
		Add(in.Employee.TotalAllowances()).
		Add(agg.GrossAdjustment))

	lines, contributionTotal, err := ComputeContributions(grossPay, in.Rules.Contributions)
	if err != nil {
		return nil, err
	}

	taxableBase := grossPay.Sub(contributionTotal)
	if money.IsNegative(taxableBase) {
		taxableBase = decimal.Zero
	}

	taxDue, err := ComputeMonthlyTax(taxableBase, in.Employee.Dependents, in.Employee.MaritalStatus, in.Rules)
	if err != nil {
		return nil, err
	}

	netPay := money.Round(grossPay.
		Sub(contributionTotal).
		Sub(taxDue).
		Sub(agg.PreNetDeductions).
		Sub(in.DueInstallment))

	return &domain.PayslipResult{
		EmployeeID:        in.Employee.EmployeeID,
		Month:             in.Period.Month,
		Year:              in.Period.Year,
		Version:           1,
		GrossPay:          grossPay,
		Contributions:     lines,
		ContributionTotal: contributionTotal,
		TaxableBase:       taxableBase,
		TaxDue:            taxDue,
		PreNetDeductions:  agg.PreNetDeductions,
		DueInstallment:    in.DueInstallment,
		NetPay:            netPay,
		Status:            domain.PayslipStatusComputed,
	}, nil
}
