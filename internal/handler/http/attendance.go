package http

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	DailyHours(w http.ResponseWriter, r *http.Request)
	AuditExport(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func dailyHoursRequest(r *http.Request) (attendance.DailyHoursRequest, bool) {
	employeeID := chi.URLParam(r, "employeeId")
	if !validator.IsValidUUID(employeeID) {
		return attendance.DailyHoursRequest{}, false
	}
	query := r.URL.Query()
	return attendance.DailyHoursRequest{
		EmployeeID: employeeID,
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	}, true
}

// DailyHours implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyHours(w http.ResponseWriter, r *http.Request) {
	req, ok := dailyHoursRequest(r)
	if !ok {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	result, err := h.attendanceService.GetDailyHours(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AuditExport implements AttendanceHandler.
func (h *attendanceHandlerImpl) AuditExport(w http.ResponseWriter, r *http.Request) {
	req, ok := dailyHoursRequest(r)
	if !ok {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	workbook, err := h.attendanceService.ExportAudit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s_%s.xlsx", req.EmployeeID, req.StartDate, req.EndDate)
	response.File(w, xlsxContentType, filename, workbook)
}
