package payslippdf

import (
	"testing"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	actual := 150.0
	slip := payroll.PaySlip{
		EmployeeName:      "Ama Mensah",
		EmployeeCode:      "2025-0001",
		PeriodStart:       date.Date{Time: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		PeriodEnd:         date.Date{Time: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		WorkingDays:       21,
		BasicSalary:       decimal.NewFromInt(5200),
		ExpectedHours:     168,
		ActualHoursWorked: &actual,
		GrossPay:          decimal.RequireFromString("4642.86"),
		OtherDeductions: []payroll.Deduction{
			{Name: payroll.DeductionHoursShortfall, Amount: decimal.RequireFromString("557.14"), Informational: true},
		},
	}

	out, err := Render(slip)
	require.NoError(t, err)
	assert.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRender_FullSalaryMode(t *testing.T) {
	out, err := Render(payroll.PaySlip{FullSalaryMode: true, BasicSalary: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
