package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variable element types, a closed set. The type decides the sign of the
// contribution to gross pay: overtime, bonus and leave add; absence and late
// subtract; advance is collected after tax as a pre-net deduction.
const (
	ElementOvertime = "overtime"
	ElementAbsence  = "absence"
	ElementBonus    = "bonus"
	ElementLeave    = "leave"
	ElementLate     = "late"
	ElementAdvance  = "advance"
	ElementOther    = "other"
)

// VariableElement is one ad-hoc payroll entry for an employee in a period.
// An overtime element carries hours and an hourly rate; its amount is always
// recomputed as hours x rate, never trusted from storage. All other types
// carry a direct amount.
type VariableElement struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	EmployeeID string          `json:"employee_id" db:"employee_id"`
	Month      int             `json:"month" db:"month"`
	Year       int             `json:"year" db:"year"`
	Type       string          `json:"type" db:"type"`
	Hours      decimal.Decimal `json:"hours" db:"hours"`
	HourlyRate decimal.Decimal `json:"hourly_rate" db:"hourly_rate"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// KnownElementType reports whether t belongs to the closed element type set.
func KnownElementType(t string) bool {
	switch t {
	case ElementOvertime, ElementAbsence, ElementBonus, ElementLeave,
		ElementLate, ElementAdvance, ElementOther:
		return true
	}
	return false
}
