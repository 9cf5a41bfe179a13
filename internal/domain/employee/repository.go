package employee

import "context"

// EmployeeRepository defines the read access payroll needs.
// All methods include companyID to prevent cross-company data access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
}
