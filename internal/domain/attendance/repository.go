package attendance

import (
	"context"
)

// AttendanceRepository defines read access to the punch store.
// All methods include tenantID to prevent cross-tenant data access.
type AttendanceRepository interface {
	// GetDailyRecords returns every record for the employee, optionally
	// restricted to a date range. Duplicated rows are returned as stored.
	GetDailyRecords(ctx context.Context, employeeID string, tenantID string, dateRange *DateRange) ([]DailyAttendanceRecord, error)
}
