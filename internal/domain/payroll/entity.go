package payroll

import (
	"fmt"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// PayPeriod is the inclusive date range a payslip covers.
type PayPeriod struct {
	EmployeeID  string
	TenantID    string
	PeriodStart date.Date
	PeriodEnd   date.Date
}

// MonthPeriod returns the calendar month containing payDate.
func MonthPeriod(employeeID, tenantID string, payDate date.Date) PayPeriod {
	first := time.Date(payDate.Year(), payDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return PayPeriod{
		EmployeeID:  employeeID,
		TenantID:    tenantID,
		PeriodStart: date.Date{Time: first},
		PeriodEnd:   date.Date{Time: last},
	}
}

func (p PayPeriod) Range() attendance.DateRange {
	return attendance.DateRange{Start: p.PeriodStart, End: p.PeriodEnd}
}

// Key identifies the period inside the payslip cache.
func (p PayPeriod) Key() string {
	return fmt.Sprintf("%s_%s", attendance.DayKey(p.PeriodStart), attendance.DayKey(p.PeriodEnd))
}

// Deduction is a named payslip line. Informational lines are shown on the
// payslip but never subtracted from net pay.
type Deduction struct {
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Informational bool            `json:"informational"`
}

const DeductionHoursShortfall = "hours_shortfall"

// PaySlip is derived entirely from attendance, policy and salary; it can be
// regenerated at any time and is cached only for performance.
type PaySlip struct {
	EmployeeID        string          `json:"employee_id"`
	EmployeeCode      string          `json:"employee_code"`
	EmployeeName      string          `json:"employee_name"`
	TenantID          string          `json:"tenant_id"`
	PeriodStart       date.Date       `json:"period_start"`
	PeriodEnd         date.Date       `json:"period_end"`
	WorkingDays       int             `json:"working_days"`
	FullSalaryMode    bool            `json:"full_salary_mode"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	ExpectedHours     float64         `json:"expected_hours"`
	ActualHoursWorked *float64        `json:"actual_hours_worked"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	GrossPay          decimal.Decimal `json:"gross_pay"`
	SSNITEmployee     decimal.Decimal `json:"ssnit_employee"`
	PAYE              decimal.Decimal `json:"paye"`
	OtherDeductions   []Deduction     `json:"other_deductions"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	NetPay            decimal.Decimal `json:"net_pay"`
	SSNITEmployer     decimal.Decimal `json:"ssnit_employer"`
	SSNITTier1        decimal.Decimal `json:"ssnit_tier1"`
	SSNITTier2        decimal.Decimal `json:"ssnit_tier2"`
	IrregularityCount int             `json:"irregularity_count"`
}

// Clone returns a copy that shares no memory with p.
func (p PaySlip) Clone() PaySlip {
	if p.ActualHoursWorked != nil {
		actual := *p.ActualHoursWorked
		p.ActualHoursWorked = &actual
	}
	if p.OtherDeductions != nil {
		p.OtherDeductions = append([]Deduction(nil), p.OtherDeductions...)
	}
	return p
}

// TaxBand is one marginal band of an annual schedule. A nil UpperBound marks
// the open-ended top band.
type TaxBand struct {
	UpperBound *decimal.Decimal
	Rate       decimal.Decimal
}

// TaxSchedule is ordered by ascending UpperBound.
type TaxSchedule []TaxBand

// Validate checks bounds are strictly increasing, rates lie in [0, 1] and
// only the last band is open-ended.
func (s TaxSchedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidTaxSchedule)
	}
	prev := decimal.Zero
	for i, band := range s {
		if band.Rate.IsNegative() || band.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: band %d rate %s out of range", ErrInvalidTaxSchedule, i+1, band.Rate)
		}
		if band.UpperBound == nil {
			if i != len(s)-1 {
				return fmt.Errorf("%w: band %d is open-ended but not last", ErrInvalidTaxSchedule, i+1)
			}
			continue
		}
		if !band.UpperBound.GreaterThan(prev) {
			return fmt.Errorf("%w: band %d upper bound %s not above %s", ErrInvalidTaxSchedule, i+1, band.UpperBound, prev)
		}
		prev = *band.UpperBound
	}
	return nil
}

// StatutoryRates holds social-insurance contribution rates.
type StatutoryRates struct {
	SSNITEmployeeRate decimal.Decimal
	SSNITEmployerRate decimal.Decimal
	Tier1Rate         decimal.Decimal
	Tier2Rate         decimal.Decimal
	TierCeiling       decimal.Decimal
}

// Rules bundles everything the pay calculator needs besides the inputs.
type Rules struct {
	Tax   TaxSchedule
	Rates StatutoryRates
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultTaxSchedule is the annual Ghana PAYE schedule in GHS.
func DefaultTaxSchedule() TaxSchedule {
	return TaxSchedule{
		{UpperBound: bound(4380), Rate: decimal.Zero},
		{UpperBound: bound(6240), Rate: decimal.RequireFromString("0.05")},
		{UpperBound: bound(34380), Rate: decimal.RequireFromString("0.10")},
		{UpperBound: bound(50760), Rate: decimal.RequireFromString("0.175")},
		{UpperBound: bound(247500), Rate: decimal.RequireFromString("0.25")},
		{UpperBound: bound(606000), Rate: decimal.RequireFromString("0.30")},
		{UpperBound: nil, Rate: decimal.RequireFromString("0.35")},
	}
}

// DefaultTierCeiling is the monthly SSNIT maximum insurable earnings.
var DefaultTierCeiling = decimal.NewFromInt(61000)

func DefaultStatutoryRates() StatutoryRates {
	return StatutoryRates{
		SSNITEmployeeRate: decimal.RequireFromString("0.055"),
		SSNITEmployerRate: decimal.RequireFromString("0.13"),
		Tier1Rate:         decimal.RequireFromString("0.135"),
		Tier2Rate:         decimal.RequireFromString("0.05"),
		TierCeiling:       DefaultTierCeiling,
	}
}

func DefaultRules() Rules {
	return Rules{Tax: DefaultTaxSchedule(), Rates: DefaultStatutoryRates()}
}
