package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusSuspended  = "suspended"
	EmployeeStatusTerminated = "terminated"
)

const (
	MaritalStatusSingle   = "single"
	MaritalStatusMarried  = "married"
	MaritalStatusDivorced = "divorced"
	MaritalStatusWidowed  = "widowed"
)

// Employee carries the fields the engine needs for tax and contribution
// computation. The full HR record lives outside this service.
type Employee struct {
	ID                      uuid.UUID       `json:"id" db:"id"`
	EmployeeID              string          `json:"employee_id" db:"employee_id"`
	BaseSalary              decimal.Decimal `json:"base_salary" db:"base_salary"`
	TransportAllowance      decimal.Decimal `json:"transport_allowance" db:"transport_allowance"`
	HousingAllowance        decimal.Decimal `json:"housing_allowance" db:"housing_allowance"`
	RepresentationAllowance decimal.Decimal `json:"representation_allowance" db:"representation_allowance"`
	MaritalStatus           string          `json:"marital_status" db:"marital_status"`
	Dependents              int             `json:"dependents" db:"dependents"`
	HireDate                time.Time       `json:"hire_date" db:"hire_date"`
	Status                  string          `json:"status" db:"status"`
	CreatedAt               time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalAllowances sums the optional allowance fields. Absent allowances are
// stored as zero.
func (e *Employee) TotalAllowances() decimal.Decimal {
	return e.TransportAllowance.Add(e.HousingAllowance).Add(e.RepresentationAllowance)
}

func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}
