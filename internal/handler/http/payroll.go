package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	GetPayslip(w http.ResponseWriter, r *http.Request)
	GetPayslipPDF(w http.ResponseWriter, r *http.Request)
	InvalidatePayslip(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// payslipRequest reads the path and query parameters shared by the payslip
// endpoints.
func payslipRequest(r *http.Request) (payroll.PayslipRequest, string, bool) {
	employeeID := chi.URLParam(r, "employeeId")
	if !validator.IsValidUUID(employeeID) {
		return payroll.PayslipRequest{}, "Invalid employee ID", false
	}

	query := r.URL.Query()
	req := payroll.PayslipRequest{
		EmployeeID: employeeID,
		PayDate:    query.Get("pay_date"),
	}
	if v := query.Get("period_start"); v != "" {
		req.PeriodStart = &v
	}
	if v := query.Get("period_end"); v != "" {
		req.PeriodEnd = &v
	}
	if v := query.Get("force_refresh"); v != "" {
		force, err := strconv.ParseBool(v)
		if err != nil {
			return payroll.PayslipRequest{}, "force_refresh must be true or false", false
		}
		req.ForceRefresh = force
	}
	return req, "", true
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	req, msg, ok := payslipRequest(r)
	if !ok {
		response.BadRequest(w, msg, nil)
		return
	}

	result, err := h.payrollService.GetPayslip(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	req, msg, ok := payslipRequest(r)
	if !ok {
		response.BadRequest(w, msg, nil)
		return
	}

	pdf, err := h.payrollService.RenderPayslipPDF(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, "application/pdf", fmt.Sprintf("payslip_%s_%s.pdf", req.EmployeeID, req.PayDate), pdf)
}

func (h *payrollHandlerImpl) InvalidatePayslip(w http.ResponseWriter, r *http.Request) {
	req, msg, ok := payslipRequest(r)
	if !ok {
		response.BadRequest(w, msg, nil)
		return
	}

	if err := h.payrollService.InvalidatePayslip(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip cache invalidated", nil)
}
