// Package payslippdf renders a computed payslip as a one-page A4 PDF.
package payslippdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const Currency = "GHS"

// Render lays out the slip in three blocks: earnings, employee deductions and
// employer contributions. Informational lines are labelled and left out of
// the deduction total.
func Render(slip payroll.PaySlip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	employee := slip.EmployeeName
	if slip.EmployeeCode != "" {
		employee = fmt.Sprintf("%s (%s)", employee, slip.EmployeeCode)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", employee))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", attendance.DayKey(slip.PeriodStart), attendance.DayKey(slip.PeriodEnd)))
	pdf.Ln(6)
	if slip.FullSalaryMode {
		pdf.Cell(0, 7, fmt.Sprintf("Working days: %d (no attendance recorded, full salary)", slip.WorkingDays))
	} else {
		actual := 0.0
		if slip.ActualHoursWorked != nil {
			actual = *slip.ActualHoursWorked
		}
		pdf.Cell(0, 7, fmt.Sprintf("Working days: %d  Hours: %.2f of %.2f", slip.WorkingDays, actual, slip.ExpectedHours))
	}
	pdf.Ln(10)

	section(pdf, "Earnings")
	line(pdf, "Basic salary", slip.BasicSalary)
	line(pdf, "Hourly rate", slip.HourlyRate)
	line(pdf, "Gross pay", slip.GrossPay)
	pdf.Ln(4)

	section(pdf, "Deductions")
	line(pdf, "SSNIT (employee)", slip.SSNITEmployee)
	line(pdf, "PAYE", slip.PAYE)
	for _, d := range slip.OtherDeductions {
		label := strings.ReplaceAll(d.Name, "_", " ")
		if d.Informational {
			label += " (info only)"
		}
		line(pdf, label, d.Amount)
	}
	line(pdf, "Total deductions", slip.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, "Net pay", slip.NetPay)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Ln(4)

	section(pdf, "Employer contributions")
	line(pdf, "SSNIT (employer)", slip.SSNITEmployer)
	line(pdf, "Tier 1", slip.SSNITTier1)
	line(pdf, "Tier 2", slip.SSNITTier2)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(90, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, fmt.Sprintf("%s %s", Currency, amount.StringFixed(2)), "", 1, "R", false, 0, "")
}
