package attendance

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

// DailyAttendanceRecord is one employee's attendance row for a civil date.
// Rows are append-only; approval of an adjustment overlays the effective
// times instead of rewriting the punch trail.
type DailyAttendanceRecord struct {
	ID             string
	EmployeeID     string
	TenantID       string
	Date           date.Date
	Representation Representation
	Adjustment     *Adjustment
	// PunchesUnreadable is set when the punch column could not be decoded
	// and Representation fell back to the legacy clock columns.
	PunchesUnreadable bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RepresentationKind tags which schema a record was written with.
type RepresentationKind string

const (
	RepresentationPunchList RepresentationKind = "punch_list"
	RepresentationLegacy    RepresentationKind = "legacy_fields"
)

// Representation is implemented by PunchList and LegacyFields only.
type Representation interface {
	Kind() RepresentationKind
}

type PunchKind string

const (
	PunchIn  PunchKind = "in"
	PunchOut PunchKind = "out"
)

type Punch struct {
	Kind      PunchKind  `json:"kind"`
	Timestamp *time.Time `json:"timestamp"`
	Location  *string    `json:"location,omitempty"`
	PhotoRef  *string    `json:"photo_ref,omitempty"`
}

// PunchList is the current schema: an ordered, append-only list of punches.
type PunchList struct {
	Punches []Punch
}

func (PunchList) Kind() RepresentationKind { return RepresentationPunchList }

// LegacyFields is the old clock_in/clock_out schema. A second pair models a
// day split by lunch.
type LegacyFields struct {
	PrimaryIn    *time.Time
	PrimaryOut   *time.Time
	SecondaryIn  *time.Time
	SecondaryOut *time.Time
}

func (LegacyFields) Kind() RepresentationKind { return RepresentationLegacy }

type AdjustmentStatus string

const (
	AdjustmentPending   AdjustmentStatus = "pending"
	AdjustmentApproved  AdjustmentStatus = "approved"
	AdjustmentCancelled AdjustmentStatus = "cancelled"
)

// Adjustment is a time-correction request attached to a record. Once approved
// and applied, its requested times become the record's effective times.
type Adjustment struct {
	RequestedIn     *time.Time
	RequestedOut    *time.Time
	RequestedIn2    *time.Time
	RequestedOut2   *time.Time
	Reason          string
	Status          AdjustmentStatus
	AppliedToRecord bool
}

// Applied reports whether the adjustment supersedes the raw punches.
func (a *Adjustment) Applied() bool {
	return a != nil && a.AppliedToRecord
}

// DateRange is an inclusive civil date range.
type DateRange struct {
	Start date.Date
	End   date.Date
}

// Contains reports whether d falls within the range, both ends inclusive.
func (r DateRange) Contains(d date.Date) bool {
	return !d.Time.Before(r.Start.Time) && !d.Time.After(r.End.Time)
}

// Days returns every civil date in the range in ascending order.
func (r DateRange) Days() []date.Date {
	var days []date.Date
	for d := r.Start.Time; !d.After(r.End.Time); d = d.AddDate(0, 0, 1) {
		days = append(days, date.Date{Time: d})
	}
	return days
}

// CivilDate truncates t to its calendar day in loc, dropping the zone.
func CivilDate(t time.Time, loc *time.Location) date.Date {
	if loc != nil {
		t = t.In(loc)
	}
	return date.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// DayKey formats a civil date as YYYY-MM-DD.
func DayKey(d date.Date) string {
	return d.Time.Format("2006-01-02")
}
