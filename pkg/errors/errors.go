package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrRuleSetNotFound      = errors.New("rule set not found")
	ErrValidation           = errors.New("validation failed")
	ErrDataIntegrity        = errors.New("data integrity violation")
	ErrImmutability         = errors.New("immutable record cannot be modified")
	ErrRoundingInvariant    = errors.New("schedule principal does not sum to original principal")
	ErrPeriodClosed         = errors.New("payroll period is closed")
	ErrLoanAlreadyExists    = errors.New("loan already exists")
	ErrConcurrentUpdate     = errors.New("concurrent update detected")
	ErrNoOutstandingBalance = errors.New("no outstanding balance")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeDataIntegrity        = "DATA_INTEGRITY_ERROR"
	ErrCodeImmutability         = "IMMUTABILITY_VIOLATION"
	ErrCodeRoundingInvariant    = "ROUNDING_INVARIANT_FAILURE"
	ErrCodeEmployeeNotFound     = "EMPLOYEE_NOT_FOUND"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound  = "INSTALLMENT_NOT_FOUND"
	ErrCodePayslipNotFound      = "PAYSLIP_NOT_FOUND"
	ErrCodeRuleSetNotFound      = "RULE_SET_NOT_FOUND"
	ErrCodePeriodClosed         = "PERIOD_CLOSED"
	ErrCodeLoanAlreadyExists    = "LOAN_ALREADY_EXISTS"
	ErrCodeConcurrentUpdate     = "CONCURRENT_UPDATE"
	ErrCodeNoOutstandingBalance = "NO_OUTSTANDING_BALANCE"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapValidationf(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(ErrCodeValidation, fmt.Sprintf(format, args...), ErrValidation)
}

func WrapDataIntegrity(message string) *BusinessError {
	return NewBusinessError(ErrCodeDataIntegrity, message, ErrDataIntegrity)
}

func WrapDataIntegrityf(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(ErrCodeDataIntegrity, fmt.Sprintf(format, args...), ErrDataIntegrity)
}

func WrapImmutability(message string) *BusinessError {
	return NewBusinessError(ErrCodeImmutability, message, ErrImmutability)
}

func WrapRoundingInvariant(message string) *BusinessError {
	return NewBusinessError(ErrCodeRoundingInvariant, message, ErrRoundingInvariant)
}

func WrapEmployeeNotFound(employeeID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmployeeNotFound,
		fmt.Sprintf("Employee with ID %s not found", employeeID),
		ErrEmployeeNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment with ID %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapRuleSetNotFound(version string) *BusinessError {
	return NewBusinessError(
		ErrCodeRuleSetNotFound,
		fmt.Sprintf("Rule set version %s not found", version),
		ErrRuleSetNotFound,
	)
}

func WrapPeriodClosed(period string) *BusinessError {
	return NewBusinessError(
		ErrCodePeriodClosed,
		fmt.Sprintf("Payroll period %s has been finalized", period),
		ErrPeriodClosed,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapConcurrentUpdate(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Loan with ID %s was modified concurrently", loanID),
		ErrConcurrentUpdate,
	)
}

func WrapNoOutstandingBalance(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoOutstandingBalance,
		fmt.Sprintf("Loan with ID %s has no outstanding balance", loanID),
		ErrNoOutstandingBalance,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
