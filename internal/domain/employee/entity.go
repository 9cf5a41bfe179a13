package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll-relevant projection of an employee row.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// HasSalary reports whether a positive base salary is configured.
func (e Employee) HasSalary() bool {
	return e.BaseSalary != nil && e.BaseSalary.IsPositive()
}
