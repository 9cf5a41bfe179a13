package payroll

import (
	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PAYSLIP DTOs ==========

type PayslipRequest struct {
	EmployeeID   string  `json:"-"`
	PayDate      string  `json:"pay_date"`
	PeriodStart  *string `json:"period_start,omitempty"`
	PeriodEnd    *string `json:"period_end,omitempty"`
	ForceRefresh bool    `json:"force_refresh"`
}

func (r *PayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.PayDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "pay_date", Message: "must be in YYYY-MM-DD format"})
	}

	hasStart := r.PeriodStart != nil && *r.PeriodStart != ""
	hasEnd := r.PeriodEnd != nil && *r.PeriodEnd != ""
	switch {
	case hasStart && hasEnd:
		start, startOK := validator.IsValidDate(*r.PeriodStart)
		end, endOK := validator.IsValidDate(*r.PeriodEnd)
		if !startOK {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be in YYYY-MM-DD format"})
		}
		if !endOK {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be in YYYY-MM-DD format"})
		}
		if startOK && endOK && start.After(end) {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must not be before period_start"})
		}
	case hasStart || hasEnd:
		errs = append(errs, validator.ValidationError{Field: "period", Message: "period_start and period_end must be provided together"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period resolves the pay period of a validated request: the explicit range
// when given, otherwise the calendar month containing the pay date.
func (r *PayslipRequest) Period(tenantID string) PayPeriod {
	if r.PeriodStart != nil && *r.PeriodStart != "" && r.PeriodEnd != nil && *r.PeriodEnd != "" {
		start, _ := validator.IsValidDate(*r.PeriodStart)
		end, _ := validator.IsValidDate(*r.PeriodEnd)
		return PayPeriod{
			EmployeeID:  r.EmployeeID,
			TenantID:    tenantID,
			PeriodStart: date.Date{Time: start},
			PeriodEnd:   date.Date{Time: end},
		}
	}
	payDate, _ := validator.IsValidDate(r.PayDate)
	return MonthPeriod(r.EmployeeID, tenantID, date.Date{Time: payDate})
}

// Money is a decimal that always serializes with exactly two places,
// e.g. "5200.00".
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

type DeductionResponse struct {
	Name          string `json:"name"`
	Amount        Money  `json:"amount"`
	Informational bool   `json:"informational"`
}

type PayslipResponse struct {
	EmployeeID        string              `json:"employee_id"`
	EmployeeCode      string              `json:"employee_code"`
	EmployeeName      string              `json:"employee_name"`
	PeriodStart       string              `json:"period_start"`
	PeriodEnd         string              `json:"period_end"`
	WorkingDays       int                 `json:"working_days"`
	FullSalaryMode    bool                `json:"full_salary_mode"`
	BasicSalary       Money               `json:"basic_salary"`
	ExpectedHours     float64             `json:"expected_hours"`
	ActualHoursWorked *float64            `json:"actual_hours_worked"`
	HourlyRate        Money               `json:"hourly_rate"`
	GrossPay          Money               `json:"gross_pay"`
	SSNITEmployee     Money               `json:"ssnit_employee"`
	PAYE              Money               `json:"paye"`
	OtherDeductions   []DeductionResponse `json:"other_deductions"`
	TotalDeductions   Money               `json:"total_deductions"`
	NetPay            Money               `json:"net_pay"`
	SSNITEmployer     Money               `json:"ssnit_employer"`
	SSNITTier1        Money               `json:"ssnit_tier1"`
	SSNITTier2        Money               `json:"ssnit_tier2"`
	IrregularityCount int                 `json:"irregularity_count"`
	Cached            bool                `json:"cached"`
}
