package payroll

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func civil(year int, month time.Month, day int) date.Date {
	return date.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func clock(d date.Date, hour, minute int) *time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
	return &t
}

// fullDay is an 08:00-12:00, 13:00-17:00 punch record.
func fullDay(id string, d date.Date) attendance.DailyAttendanceRecord {
	return attendance.DailyAttendanceRecord{
		ID:         id,
		EmployeeID: "emp-1",
		TenantID:   "tenant-1",
		Date:       d,
		Representation: attendance.PunchList{Punches: []attendance.Punch{
			{Kind: attendance.PunchIn, Timestamp: clock(d, 8, 0)},
			{Kind: attendance.PunchOut, Timestamp: clock(d, 12, 0)},
			{Kind: attendance.PunchIn, Timestamp: clock(d, 13, 0)},
			{Kind: attendance.PunchOut, Timestamp: clock(d, 17, 0)},
		}},
	}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(attendanceService.NewReconciler(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

var march2025 = payroll.MonthPeriod("emp-1", "tenant-1", civil(2025, time.March, 15))

func TestMonthPeriod(t *testing.T) {
	assert.Equal(t, civil(2025, time.March, 1), march2025.PeriodStart)
	assert.Equal(t, civil(2025, time.March, 31), march2025.PeriodEnd)
	assert.Equal(t, "2025-03-01_2025-03-31", march2025.Key())

	feb := payroll.MonthPeriod("emp-1", "tenant-1", civil(2024, time.February, 29))
	assert.Equal(t, civil(2024, time.February, 29), feb.PeriodEnd)
}

func TestCountWorkingDays(t *testing.T) {
	policy := schedule.DefaultPolicy("tenant-1")
	assert.Equal(t, 21, CountWorkingDays(march2025.Range(), policy))

	policy.WorkingDays = append(policy.WorkingDays, time.Saturday)
	assert.Equal(t, 26, CountWorkingDays(march2025.Range(), policy))

	weekend := attendance.DateRange{Start: civil(2025, time.March, 1), End: civil(2025, time.March, 2)}
	assert.Zero(t, CountWorkingDays(weekend, schedule.DefaultPolicy("tenant-1")))
}

func TestAggregate_NoData(t *testing.T) {
	a := newTestAggregator()
	outside := fullDay("outside", civil(2025, time.April, 1))

	got := a.Aggregate([]attendance.DailyAttendanceRecord{outside}, march2025, schedule.DefaultPolicy("tenant-1"), attendanceService.Options{})

	assert.False(t, got.HasData)
	assert.Zero(t, got.ActualHoursWorked)
	assert.Equal(t, 168.0, got.ExpectedHours)
	assert.Equal(t, 21, got.WorkingDays)
	assert.Empty(t, got.Days)
}

func TestAggregate_SumsDays(t *testing.T) {
	a := newTestAggregator()
	records := []attendance.DailyAttendanceRecord{
		fullDay("mon", civil(2025, time.March, 3)),
		fullDay("tue", civil(2025, time.March, 4)),
		fullDay("tue-copy", civil(2025, time.March, 4)),
	}

	got := a.Aggregate(records, march2025, schedule.DefaultPolicy("tenant-1"), attendanceService.Options{})

	require.True(t, got.HasData)
	assert.InDelta(t, 16.0, got.ActualHoursWorked, 1e-9)
	assert.Equal(t, 168.0, got.ExpectedHours)
	assert.Len(t, got.Days, 31)
	assert.Equal(t, 1, got.IrregularityCount)
}

func TestAggregate_ZeroHoursIsStillData(t *testing.T) {
	a := newTestAggregator()
	pending := fullDay("pending", civil(2025, time.March, 3))
	pending.Adjustment = &attendance.Adjustment{Status: attendance.AdjustmentPending}

	got := a.Aggregate([]attendance.DailyAttendanceRecord{pending}, march2025, schedule.DefaultPolicy("tenant-1"), attendanceService.Options{})

	assert.True(t, got.HasData)
	assert.Zero(t, got.ActualHoursWorked)
}

func TestAggregate_ExplicitPeriodAndPolicy(t *testing.T) {
	a := newTestAggregator()
	period := payroll.PayPeriod{
		EmployeeID:  "emp-1",
		TenantID:    "tenant-1",
		PeriodStart: civil(2025, time.March, 3),
		PeriodEnd:   civil(2025, time.March, 9),
	}
	breakMinutes := 30
	policy := schedule.WorkingCalendarPolicy{TenantID: "tenant-1", WorkingHoursPerDay: 7.5, BreakDurationMinutes: &breakMinutes, WorkingDays: schedule.DefaultWorkingDays}

	got := a.Aggregate([]attendance.DailyAttendanceRecord{fullDay("mon", civil(2025, time.March, 3))}, period, policy, attendanceService.Options{})

	assert.Equal(t, 37.5, got.ExpectedHours)
	assert.Equal(t, 5, got.WorkingDays)
	assert.Len(t, got.Days, 7)
	assert.InDelta(t, 8.0, got.ActualHoursWorked, 1e-9)
}

func TestAggregate_ZeroValuePolicyUsesDefaultBreak(t *testing.T) {
	a := newTestAggregator()
	monday := civil(2025, time.March, 3)
	single := attendance.DailyAttendanceRecord{
		ID:         "mon",
		EmployeeID: "emp-1",
		TenantID:   "tenant-1",
		Date:       monday,
		Representation: attendance.PunchList{Punches: []attendance.Punch{
			{Kind: attendance.PunchIn, Timestamp: clock(monday, 8, 0)},
			{Kind: attendance.PunchOut, Timestamp: clock(monday, 17, 0)},
		}},
	}

	got := a.Aggregate([]attendance.DailyAttendanceRecord{single}, march2025, schedule.WorkingCalendarPolicy{TenantID: "tenant-1"}, attendanceService.Options{})

	assert.Equal(t, 21*8.0, got.ExpectedHours)
	assert.InDelta(t, 8.0, got.ActualHoursWorked, 1e-9)
}
