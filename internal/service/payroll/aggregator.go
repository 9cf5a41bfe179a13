package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
)

// PeriodHours is the attendance summary of one pay period.
type PeriodHours struct {
	ActualHoursWorked float64
	ExpectedHours     float64
	WorkingDays       int
	// HasData is false when no record at all falls in the period, which is
	// distinct from records that reconcile to zero hours.
	HasData           bool
	Days              []attendance.DailyHours
	IrregularityCount int
}

// Aggregator sums reconciled daily hours over a pay period.
type Aggregator struct {
	reconciler *attendanceService.Reconciler
}

func NewAggregator(reconciler *attendanceService.Reconciler) *Aggregator {
	return &Aggregator{reconciler: reconciler}
}

func (a *Aggregator) Aggregate(records []attendance.DailyAttendanceRecord, period payroll.PayPeriod, policy schedule.WorkingCalendarPolicy, opts attendanceService.Options) PeriodHours {
	policy = policy.WithDefaults()
	dateRange := period.Range()

	hasData := false
	for _, rec := range records {
		if dateRange.Contains(rec.Date) {
			hasData = true
			break
		}
	}

	workingDays := CountWorkingDays(dateRange, policy)
	result := PeriodHours{
		ExpectedHours: float64(workingDays) * policy.WorkingHoursPerDay,
		WorkingDays:   workingDays,
		HasData:       hasData,
	}
	if !hasData {
		return result
	}

	result.Days = a.reconciler.ReconcileRange(records, dateRange, policy, opts)
	for _, day := range result.Days {
		result.ActualHoursWorked += day.Hours
		result.IrregularityCount += len(day.Irregularities)
	}
	return result
}

// CountWorkingDays counts the days in dateRange whose weekday is in the
// policy's working set. Holidays are not considered.
func CountWorkingDays(dateRange attendance.DateRange, policy schedule.WorkingCalendarPolicy) int {
	count := 0
	for _, day := range dateRange.Days() {
		if policy.IsWorkingDay(day.Weekday()) {
			count++
		}
	}
	return count
}
