package payroll

import "context"

// PayrollService exposes payslips to the presentation layer.
type PayrollService interface {
	// GetPayslip returns a cached or freshly computed payslip. ForceRefresh
	// bypasses the cache read and always re-inserts.
	GetPayslip(ctx context.Context, req PayslipRequest) (PayslipResponse, error)

	// RenderPayslipPDF renders the same payslip GetPayslip would return.
	RenderPayslipPDF(ctx context.Context, req PayslipRequest) ([]byte, error)

	// InvalidatePayslip drops the cached payslip for the request's period.
	InvalidatePayslip(ctx context.Context, req PayslipRequest) error
}
