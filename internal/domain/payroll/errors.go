package payroll

import "errors"

var (
	// ErrSalaryNotConfigured is a user-correctable configuration error:
	// payslips are never produced from a zero salary.
	ErrSalaryNotConfigured = errors.New("employee has no basic salary configured")
	ErrExpectedHoursZero   = errors.New("expected hours for the period is zero; check the working calendar policy")
	ErrInvalidTaxSchedule  = errors.New("invalid tax schedule")

	// ErrAttendanceUnavailable wraps upstream fetch failures; payroll never
	// proceeds on partial attendance data.
	ErrAttendanceUnavailable = errors.New("attendance data temporarily unavailable")
)
