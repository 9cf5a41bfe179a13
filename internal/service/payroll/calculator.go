package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// PayInput carries everything ComputePay needs besides the rules.
// ActualHoursWorked is nil when the period has no attendance data at all.
type PayInput struct {
	BasicSalary       decimal.Decimal
	ExpectedHours     float64
	ActualHoursWorked *float64
	OtherDeductions   []payroll.Deduction
}

// ComputePay turns salary and hours into a payslip. It is a pure function:
// identical inputs always produce an identical slip. Intermediate amounts are
// kept at full precision and rounded to 2 decimal places only on output.
func ComputePay(in PayInput, rules payroll.Rules) (payroll.PaySlip, error) {
	if !in.BasicSalary.IsPositive() {
		return payroll.PaySlip{}, payroll.ErrSalaryNotConfigured
	}

	var (
		gross      decimal.Decimal
		hourlyRate decimal.Decimal
		actual     *float64
	)
	expected := decimal.NewFromFloat(in.ExpectedHours)

	if in.ActualHoursWorked == nil {
		// No attendance at all: full salary, no proration.
		gross = in.BasicSalary
		if expected.IsPositive() {
			hourlyRate = in.BasicSalary.Div(expected)
		}
	} else {
		if !expected.IsPositive() {
			return payroll.PaySlip{}, payroll.ErrExpectedHoursZero
		}
		hours := *in.ActualHoursWorked
		if hours < 0 {
			hours = 0
		}
		worked := decimal.NewFromFloat(hours)
		hourlyRate = in.BasicSalary.Div(expected)
		gross = in.BasicSalary.Mul(worked).Div(expected)

		rounded := worked.Round(2).InexactFloat64()
		actual = &rounded
	}

	ssnitEmployee := gross.Mul(rules.Rates.SSNITEmployeeRate)
	paye := ApplyMarginalBands(gross.Mul(monthsPerYear), rules.Tax).Div(monthsPerYear)

	other := decimal.Zero
	deductions := make([]payroll.Deduction, 0, len(in.OtherDeductions))
	for _, d := range in.OtherDeductions {
		if !d.Informational {
			other = other.Add(d.Amount)
		}
		deductions = append(deductions, payroll.Deduction{
			Name:          d.Name,
			Amount:        d.Amount.Round(2),
			Informational: d.Informational,
		})
	}

	total := ssnitEmployee.Add(paye).Add(other)
	net := decimal.Max(decimal.Zero, gross.Sub(total))

	applicable := decimal.Min(gross, rules.Rates.TierCeiling)

	return payroll.PaySlip{
		FullSalaryMode:    in.ActualHoursWorked == nil,
		BasicSalary:       in.BasicSalary.Round(2),
		ExpectedHours:     in.ExpectedHours,
		ActualHoursWorked: actual,
		HourlyRate:        hourlyRate.Round(2),
		GrossPay:          gross.Round(2),
		SSNITEmployee:     ssnitEmployee.Round(2),
		PAYE:              paye.Round(2),
		OtherDeductions:   deductions,
		TotalDeductions:   total.Round(2),
		NetPay:            net.Round(2),
		SSNITEmployer:     gross.Mul(rules.Rates.SSNITEmployerRate).Round(2),
		SSNITTier1:        applicable.Mul(rules.Rates.Tier1Rate).Round(2),
		SSNITTier2:        applicable.Mul(rules.Rates.Tier2Rate).Round(2),
	}, nil
}

// ApplyMarginalBands taxes each slice of income at the rate of the band it
// falls in and returns the accumulated tax.
func ApplyMarginalBands(income decimal.Decimal, schedule payroll.TaxSchedule) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, band := range schedule {
		if !income.GreaterThan(lower) {
			break
		}
		upper := income
		if band.UpperBound != nil && band.UpperBound.LessThan(income) {
			upper = *band.UpperBound
		}
		tax = tax.Add(upper.Sub(lower).Mul(band.Rate))
		if band.UpperBound == nil {
			break
		}
		lower = *band.UpperBound
	}
	return tax
}

// ShortfallDeduction describes the pay not earned because fewer hours were
// worked than expected. The line is informational: the loss is already
// reflected in the prorated gross.
func ShortfallDeduction(basicSalary decimal.Decimal, expectedHours, actualHours float64) (payroll.Deduction, bool) {
	if expectedHours <= 0 || actualHours >= expectedHours {
		return payroll.Deduction{}, false
	}
	missing := decimal.NewFromFloat(expectedHours - actualHours)
	amount := basicSalary.Mul(missing).Div(decimal.NewFromFloat(expectedHours))
	return payroll.Deduction{
		Name:          payroll.DeductionHoursShortfall,
		Amount:        amount.Round(2),
		Informational: true,
	}, true
}
