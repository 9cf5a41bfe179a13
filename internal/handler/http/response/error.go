package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, jwt.ErrCompanyIDMissing):
		Forbidden(w, "Token is not bound to a company")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll configuration errors
	case errors.Is(err, payroll.ErrSalaryNotConfigured):
		writeError(w, http.StatusBadRequest, "SALARY_NOT_CONFIGURED", err.Error())
	case errors.Is(err, payroll.ErrExpectedHoursZero):
		writeError(w, http.StatusBadRequest, "EXPECTED_HOURS_ZERO", err.Error())
	case errors.Is(err, payroll.ErrInvalidTaxSchedule):
		writeError(w, http.StatusBadRequest, "INVALID_TAX_SCHEDULE", err.Error())
	case errors.Is(err, schedule.ErrInvalidWorkingDays):
		writeError(w, http.StatusBadRequest, "INVALID_WORKING_CALENDAR", err.Error())

	// Upstream failures, retryable
	case errors.Is(err, payroll.ErrAttendanceUnavailable), errors.Is(err, attendance.ErrStoreUnavailable):
		slog.Error("Attendance store unavailable", "error", err)
		ServiceUnavailable(w, "Attendance data temporarily unavailable, please retry")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
