package attendance

import (
	"context"
)

// AttendanceService exposes reconciled hours to the presentation layer.
type AttendanceService interface {
	// GetDailyHours reconciles each day of the range in live mode: an open
	// session on the current day is closed provisionally at "now".
	GetDailyHours(ctx context.Context, req DailyHoursRequest) (DailyHoursResponse, error)

	// ExportAudit renders the finalized per-day derivation as an XLSX workbook.
	ExportAudit(ctx context.Context, req DailyHoursRequest) ([]byte, error)
}
