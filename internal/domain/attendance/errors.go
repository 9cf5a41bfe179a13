package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateRange   = errors.New("invalid date range: start must not be after end")
	ErrDateRangeTooLong   = errors.New("date range must not exceed 366 days")

	// ErrStoreUnavailable marks a failed read from the punch store. It is
	// transient and must never be confused with "no records".
	ErrStoreUnavailable = errors.New("attendance store unavailable")
)
