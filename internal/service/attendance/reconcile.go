package attendance

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cespare/xxhash/v2"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
)

const (
	// breakThreshold is the raw single-session duration from which the
	// policy break is deducted.
	breakThreshold = 7 * time.Hour

	// toleranceWindow bounds how far a legacy entry may drift from a full
	// working day and still be counted.
	toleranceWindow = 10 * time.Minute
)

// Options controls how open sessions are treated.
type Options struct {
	// Live closes an open session on the current day at Now. Finalized
	// computations (payslips) must leave Live unset.
	Live     bool
	Now      time.Time
	Location *time.Location
}

func (o Options) isToday(day date.Date) bool {
	if !o.Live || o.Now.IsZero() {
		return false
	}
	return attendance.CivilDate(o.Now, o.Location).Time.Equal(day.Time)
}

// Reconciler turns raw daily attendance records into one authoritative hours
// figure per day. It holds no state besides its logger and is safe for
// concurrent use.
type Reconciler struct {
	logger *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

type session struct {
	in          time.Time
	out         time.Time
	provisional bool
}

func (s session) duration() time.Duration {
	return s.out.Sub(s.in)
}

// dayDerivation accumulates the intermediate state of one day.
type dayDerivation struct {
	day            date.Date
	recordID       string
	sessions       []session
	irregularities []attendance.Irregularity

	// recorded counts sessions as filed, including ones later rejected.
	recorded int
}

func (d *dayDerivation) flag(kind attendance.IrregularityKind, recordID, detail string) {
	d.irregularities = append(d.irregularities, attendance.Irregularity{Kind: kind, RecordID: recordID, Detail: detail})
}

// addPair validates one in/out pair and keeps it when usable.
func (d *dayDerivation) addPair(in, out *time.Time, label string, opts Options) {
	if in == nil && out == nil {
		return
	}
	d.recorded++
	switch {
	case in == nil:
		d.flag(attendance.IrregularityMissingTimestamp, d.recordID, label+": missing in")
		return
	case out == nil:
		if opts.isToday(d.day) {
			d.keep(session{in: *in, out: opts.Now, provisional: true}, label)
			return
		}
		d.flag(attendance.IrregularityMissingTimestamp, d.recordID, label+": missing out")
		return
	}
	d.keep(session{in: *in, out: *out}, label)
}

func (d *dayDerivation) keep(s session, label string) {
	if !s.out.After(s.in) {
		d.flag(attendance.IrregularityInvertedSession, d.recordID,
			fmt.Sprintf("%s: out %s not after in %s", label, s.out.Format(time.RFC3339), s.in.Format(time.RFC3339)))
		return
	}
	d.sessions = append(d.sessions, s)
}

func (d *dayDerivation) raw() time.Duration {
	var total time.Duration
	for _, s := range d.sessions {
		total += s.duration()
	}
	return total
}

// splitDay reports whether more than one session was recorded. The gap
// between sessions stands in for the break.
func (d *dayDerivation) splitDay() bool {
	return d.recorded > 1
}

func (d *dayDerivation) provisional() bool {
	for _, s := range d.sessions {
		if s.provisional {
			return true
		}
	}
	return false
}

// ReconcileDay derives the hours worked on day from every raw record filed
// for it. Irregular data never fails the call; it is flagged on the result
// and logged.
func (r *Reconciler) ReconcileDay(day date.Date, records []attendance.DailyAttendanceRecord, policy schedule.WorkingCalendarPolicy, opts Options) attendance.DailyHours {
	result := r.reconcile(day, records, policy.WithDefaults(), opts)
	for _, irr := range result.Irregularities {
		r.logger.Warn("attendance irregularity",
			"employee_id", employeeOf(records),
			"date", attendance.DayKey(day),
			"kind", irr.Kind,
			"record_id", irr.RecordID,
			"detail", irr.Detail,
		)
	}
	return result
}

// ReconcileRange reconciles every civil date in dateRange, including days
// without records. Records outside the range are ignored.
func (r *Reconciler) ReconcileRange(records []attendance.DailyAttendanceRecord, dateRange attendance.DateRange, policy schedule.WorkingCalendarPolicy, opts Options) []attendance.DailyHours {
	byDay := make(map[string][]attendance.DailyAttendanceRecord)
	for _, rec := range records {
		if !dateRange.Contains(rec.Date) {
			continue
		}
		key := attendance.DayKey(rec.Date)
		byDay[key] = append(byDay[key], rec)
	}

	days := dateRange.Days()
	results := make([]attendance.DailyHours, 0, len(days))
	for _, day := range days {
		results = append(results, r.ReconcileDay(day, byDay[attendance.DayKey(day)], policy, opts))
	}
	return results
}

func (r *Reconciler) reconcile(day date.Date, records []attendance.DailyAttendanceRecord, policy schedule.WorkingCalendarPolicy, opts Options) attendance.DailyHours {
	if len(records) == 0 {
		return attendance.DailyHours{Date: day, Reason: attendance.ReasonNoRecord}
	}

	var irregularities []attendance.Irregularity
	for _, rec := range records {
		if rec.PunchesUnreadable {
			irregularities = append(irregularities, attendance.Irregularity{
				Kind:     attendance.IrregularityUnreadablePunches,
				RecordID: rec.ID,
				Detail:   "punch list unreadable, clock columns used",
			})
		}
	}
	unique, dupes := dedupe(records)
	irregularities = append(irregularities, dupes...)

	// An applied adjustment supersedes every other row of the day.
	var applied []attendance.DailyAttendanceRecord
	for _, rec := range unique {
		if rec.Adjustment.Applied() {
			applied = append(applied, rec)
		}
	}
	if len(applied) > 0 {
		for _, rec := range applied[1:] {
			irregularities = append(irregularities, attendance.Irregularity{
				Kind:     attendance.IrregularityMultipleAdjustments,
				RecordID: rec.ID,
				Detail:   "ignored in favour of " + applied[0].ID,
			})
		}
		return r.fromAdjustment(day, applied[0], policy, opts, irregularities)
	}

	authoritative := unique[0]
	for _, rec := range unique[1:] {
		irregularities = append(irregularities, attendance.Irregularity{
			Kind:     attendance.IrregularityConflictingDuplicate,
			RecordID: rec.ID,
			Detail:   "ignored in favour of " + authoritative.ID,
		})
	}

	if adj := authoritative.Adjustment; adj != nil {
		switch adj.Status {
		case attendance.AdjustmentPending:
			return zeroDay(day, authoritative.ID, attendance.ReasonZeroPending, irregularities)
		case attendance.AdjustmentCancelled:
			return zeroDay(day, authoritative.ID, attendance.ReasonZeroCancelled, irregularities)
		}
	}

	d := &dayDerivation{day: day, recordID: authoritative.ID, irregularities: irregularities}

	switch rep := authoritative.Representation.(type) {
	case attendance.PunchList:
		pairPunches(d, rep.Punches, opts)
		worked := deductBreak(d, policy)
		if worked <= 0 {
			return d.result(0, attendance.ReasonZeroIncomplete, policy)
		}
		return d.result(worked.Hours(), attendance.ReasonValidPunches, policy)

	case attendance.LegacyFields:
		d.addPair(rep.PrimaryIn, rep.PrimaryOut, "primary", opts)
		d.addPair(rep.SecondaryIn, rep.SecondaryOut, "secondary", opts)
		raw := d.raw()
		worked := deductBreak(d, policy)
		if worked <= 0 {
			return d.result(0, attendance.ReasonZeroIncomplete, policy)
		}
		// Entries already backed by an approved correction, and a day still
		// in progress, skip the gate.
		if authoritative.Adjustment != nil || d.provisional() {
			return d.result(worked.Hours(), attendance.ReasonOkEntry, policy)
		}
		if withinTolerance(raw, policy) || withinTolerance(worked, policy) {
			return d.result(worked.Hours(), attendance.ReasonOkEntry, policy)
		}
		return d.result(0, attendance.ReasonZeroOutOfTolerance, policy)

	default:
		d.flag(attendance.IrregularityMissingTimestamp, authoritative.ID, "record has no representation")
		return d.result(0, attendance.ReasonZeroIncomplete, policy)
	}
}

func (r *Reconciler) fromAdjustment(day date.Date, rec attendance.DailyAttendanceRecord, policy schedule.WorkingCalendarPolicy, opts Options, irregularities []attendance.Irregularity) attendance.DailyHours {
	adj := rec.Adjustment
	d := &dayDerivation{day: day, recordID: rec.ID, irregularities: irregularities}
	d.addPair(adj.RequestedIn, adj.RequestedOut, "adjustment", opts)
	d.addPair(adj.RequestedIn2, adj.RequestedOut2, "adjustment second", opts)
	return d.result(deductBreak(d, policy).Hours(), attendance.ReasonApprovedAdjustment, policy)
}

// pairPunches matches punches strictly as In immediately followed by Out.
// Anything else is orphaned and contributes nothing.
func pairPunches(d *dayDerivation, punches []attendance.Punch, opts Options) {
	for i := 0; i < len(punches); i++ {
		p := punches[i]
		if p.Kind != attendance.PunchIn {
			d.flag(attendance.IrregularityOrphanedPunch, d.recordID, fmt.Sprintf("punch %d: %s without preceding in", i+1, p.Kind))
			continue
		}
		if i+1 < len(punches) && punches[i+1].Kind == attendance.PunchOut {
			d.recorded++
			label := fmt.Sprintf("punches %d-%d", i+1, i+2)
			if p.Timestamp == nil || punches[i+1].Timestamp == nil {
				d.flag(attendance.IrregularityMissingTimestamp, d.recordID, label)
			} else {
				d.keep(session{in: *p.Timestamp, out: *punches[i+1].Timestamp}, label)
			}
			i++
			continue
		}
		// Only the final open In of today may be closed provisionally.
		if i == len(punches)-1 && p.Timestamp != nil && opts.isToday(d.day) {
			d.recorded++
			d.keep(session{in: *p.Timestamp, out: opts.Now, provisional: true}, fmt.Sprintf("punch %d", i+1))
			continue
		}
		d.flag(attendance.IrregularityOrphanedPunch, d.recordID, fmt.Sprintf("punch %d: in without following out", i+1))
	}
}

// deductBreak returns the day's worked time after the policy break. Only a
// day recorded as a single session of at least breakThreshold is deducted.
func deductBreak(d *dayDerivation, policy schedule.WorkingCalendarPolicy) time.Duration {
	worked := d.raw()
	if d.breakApplies() {
		worked -= policy.BreakDuration()
		if worked < 0 {
			worked = 0
		}
	}
	return worked
}

func (d *dayDerivation) breakApplies() bool {
	return !d.splitDay() && len(d.sessions) == 1 && d.raw() >= breakThreshold
}

func withinTolerance(worked time.Duration, policy schedule.WorkingCalendarPolicy) bool {
	diff := worked - policy.WorkingDayDuration()
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceWindow
}

func (d *dayDerivation) result(hours float64, reason attendance.ReasonCode, policy schedule.WorkingCalendarPolicy) attendance.DailyHours {
	return attendance.DailyHours{
		Date:           d.day,
		Hours:          hours,
		Reason:         reason,
		Sessions:       len(d.sessions),
		BreakDeducted:  d.breakApplies() && policy.BreakDuration() > 0 && !reason.IsZero(),
		Provisional:    d.provisional() && !reason.IsZero(),
		SourceRecordID: d.recordID,
		Irregularities: d.irregularities,
	}
}

func zeroDay(day date.Date, recordID string, reason attendance.ReasonCode, irregularities []attendance.Irregularity) attendance.DailyHours {
	return attendance.DailyHours{
		Date:           day,
		Reason:         reason,
		SourceRecordID: recordID,
		Irregularities: irregularities,
	}
}

// dedupe collapses records with identical content, keeping the first of each
// and flagging the rest.
func dedupe(records []attendance.DailyAttendanceRecord) ([]attendance.DailyAttendanceRecord, []attendance.Irregularity) {
	var irregularities []attendance.Irregularity
	seen := make(map[uint64]string, len(records))
	unique := make([]attendance.DailyAttendanceRecord, 0, len(records))
	for _, rec := range records {
		h := ContentHash(rec)
		if firstID, ok := seen[h]; ok {
			irregularities = append(irregularities, attendance.Irregularity{
				Kind:     attendance.IrregularityDuplicateRecord,
				RecordID: rec.ID,
				Detail:   "identical to " + firstID,
			})
			continue
		}
		seen[h] = rec.ID
		unique = append(unique, rec)
	}
	return unique, irregularities
}

// ContentHash fingerprints what a record says about the day: its punches or
// legacy fields and its adjustment. Identity and audit timestamps are
// excluded so that re-inserted copies hash equal.
func ContentHash(rec attendance.DailyAttendanceRecord) uint64 {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.WriteString("\x1f")
	}
	writeTime := func(t *time.Time) {
		if t == nil {
			write("-")
			return
		}
		write(strconv.FormatInt(t.UnixNano(), 10))
	}
	writeOpt := func(s *string) {
		if s == nil {
			write("-")
			return
		}
		write(*s)
	}

	write(attendance.DayKey(rec.Date))
	switch rep := rec.Representation.(type) {
	case attendance.PunchList:
		write(string(rep.Kind()))
		for _, p := range rep.Punches {
			write(string(p.Kind))
			writeTime(p.Timestamp)
			writeOpt(p.Location)
			writeOpt(p.PhotoRef)
		}
	case attendance.LegacyFields:
		write(string(rep.Kind()))
		writeTime(rep.PrimaryIn)
		writeTime(rep.PrimaryOut)
		writeTime(rep.SecondaryIn)
		writeTime(rep.SecondaryOut)
	default:
		write("none")
	}
	write(strconv.FormatBool(rec.PunchesUnreadable))

	if adj := rec.Adjustment; adj != nil {
		write("adjustment")
		writeTime(adj.RequestedIn)
		writeTime(adj.RequestedOut)
		writeTime(adj.RequestedIn2)
		writeTime(adj.RequestedOut2)
		write(adj.Reason)
		write(string(adj.Status))
		write(strconv.FormatBool(adj.AppliedToRecord))
	}
	return h.Sum64()
}

func employeeOf(records []attendance.DailyAttendanceRecord) string {
	if len(records) == 0 {
		return ""
	}
	return records[0].EmployeeID
}
