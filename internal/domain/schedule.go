package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending   = "pending"
	InstallmentStatusPaid      = "paid"
	InstallmentStatusOverdue   = "overdue"
	InstallmentStatusCancelled = "cancelled"
)

// Installment is one scheduled repayment of a loan. The schedule is fixed at
// loan creation: recording a payment changes only the status, payment date,
// amount paid and notes, never the due date or the amount decomposition.
type Installment struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	LoanID           string              `json:"loan_id" db:"loan_id"`
	Sequence         int                 `json:"sequence" db:"sequence"`
	DueDate          time.Time           `json:"due_date" db:"due_date"`
	Principal        decimal.Decimal     `json:"principal" db:"principal"`
	Interest         decimal.Decimal     `json:"interest" db:"interest"`
	Insurance        decimal.Decimal     `json:"insurance" db:"insurance"`
	Total            decimal.Decimal     `json:"total" db:"total"`
	RemainingBalance decimal.Decimal     `json:"remaining_balance" db:"remaining_balance"`
	Status           string              `json:"status" db:"status"`
	PaymentDate      *time.Time          `json:"payment_date,omitempty" db:"payment_date"`
	AmountPaid       decimal.NullDecimal `json:"amount_paid,omitempty" db:"amount_paid"`
	Notes            string              `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
}

// Due reports whether the installment is still awaiting payment, counting
// overdue entries as due.
func (i *Installment) Due() bool {
	return i.Status == InstallmentStatusPending || i.Status == InstallmentStatusOverdue
}
