package schedule

import "time"

// WorkingCalendarPolicy is a tenant's definition of a normal working day.
// A nil BreakDurationMinutes means unset; an explicit zero disables the break.
type WorkingCalendarPolicy struct {
	TenantID             string
	WorkingHoursPerDay   float64
	BreakDurationMinutes *int
	WorkingDays          []time.Weekday
	UpdatedAt            time.Time
}

const (
	DefaultWorkingHoursPerDay   = 8.0
	DefaultBreakDurationMinutes = 60
)

// DefaultWorkingDays is Monday through Friday.
var DefaultWorkingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// DefaultPolicy returns the policy used when a tenant has none configured.
func DefaultPolicy(tenantID string) WorkingCalendarPolicy {
	days := make([]time.Weekday, len(DefaultWorkingDays))
	copy(days, DefaultWorkingDays)
	breakMinutes := DefaultBreakDurationMinutes
	return WorkingCalendarPolicy{
		TenantID:             tenantID,
		WorkingHoursPerDay:   DefaultWorkingHoursPerDay,
		BreakDurationMinutes: &breakMinutes,
		WorkingDays:          days,
	}
}

// IsWorkingDay reports whether the weekday is in the policy's working set.
func (p WorkingCalendarPolicy) IsWorkingDay(d time.Weekday) bool {
	for _, wd := range p.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

func (p WorkingCalendarPolicy) WorkingDayDuration() time.Duration {
	return time.Duration(p.WorkingHoursPerDay * float64(time.Hour))
}

func (p WorkingCalendarPolicy) BreakDuration() time.Duration {
	if p.BreakDurationMinutes == nil || *p.BreakDurationMinutes < 0 {
		return DefaultBreakDurationMinutes * time.Minute
	}
	return time.Duration(*p.BreakDurationMinutes) * time.Minute
}

// WithDefaults fills unset fields with the defaults.
func (p WorkingCalendarPolicy) WithDefaults() WorkingCalendarPolicy {
	if p.WorkingHoursPerDay <= 0 {
		p.WorkingHoursPerDay = DefaultWorkingHoursPerDay
	}
	if p.BreakDurationMinutes == nil || *p.BreakDurationMinutes < 0 {
		breakMinutes := DefaultBreakDurationMinutes
		p.BreakDurationMinutes = &breakMinutes
	}
	if len(p.WorkingDays) == 0 {
		p.WorkingDays = append([]time.Weekday(nil), DefaultWorkingDays...)
	}
	return p
}

// ISOWeekday converts 1=Monday..7=Sunday to time.Weekday.
func ISOWeekday(day int) (time.Weekday, bool) {
	if day < 1 || day > 7 {
		return 0, false
	}
	return time.Weekday(day % 7), true
}
