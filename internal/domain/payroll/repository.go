package payroll

import (
	"context"
	"fmt"
)

// CacheKey identifies one memoized payslip.
type CacheKey struct {
	TenantID   string
	EmployeeID string
	PeriodKey  string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("payslip:%s:%s:%s", k.TenantID, k.EmployeeID, k.PeriodKey)
}

// PayslipCache memoizes computed payslips for a bounded time. It is purely an
// optimization: a miss or an error is always answered by recomputing.
type PayslipCache interface {
	Get(ctx context.Context, key CacheKey) (PaySlip, bool, error)
	Put(ctx context.Context, key CacheKey, slip PaySlip) error
	Invalidate(ctx context.Context, key CacheKey) error
}
