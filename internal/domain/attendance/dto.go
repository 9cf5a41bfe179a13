package attendance

import (
	"github.com/Azure/go-autorest/autorest/date"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ========================================
// RECONCILIATION RESULTS
// ========================================

// ReasonCode explains, for audit, how a day's hours were derived.
type ReasonCode string

const (
	ReasonApprovedAdjustment ReasonCode = "approved_adjustment"
	ReasonOkEntry            ReasonCode = "ok_entry"
	ReasonValidPunches       ReasonCode = "valid_punches"
	ReasonZeroPending        ReasonCode = "zero_pending"
	ReasonZeroCancelled      ReasonCode = "zero_cancelled"
	ReasonZeroIncomplete     ReasonCode = "zero_incomplete"
	ReasonZeroOutOfTolerance ReasonCode = "zero_out_of_tolerance"
	ReasonNoRecord           ReasonCode = "no_record"
)

// IsZero reports whether the reason forces a zero-hour day.
func (r ReasonCode) IsZero() bool {
	switch r {
	case ReasonApprovedAdjustment, ReasonOkEntry, ReasonValidPunches:
		return false
	}
	return true
}

// IrregularityKind classifies recoverable data-quality defects.
type IrregularityKind string

const (
	IrregularityDuplicateRecord      IrregularityKind = "duplicate_record"
	IrregularityConflictingDuplicate IrregularityKind = "conflicting_duplicate"
	IrregularityMultipleAdjustments  IrregularityKind = "multiple_applied_adjustments"
	IrregularityOrphanedPunch        IrregularityKind = "orphaned_punch"
	IrregularityMissingTimestamp     IrregularityKind = "missing_timestamp"
	IrregularityInvertedSession      IrregularityKind = "inverted_session"
	IrregularityUnreadablePunches    IrregularityKind = "unreadable_punches"
)

type Irregularity struct {
	Kind     IrregularityKind `json:"kind"`
	RecordID string           `json:"record_id,omitempty"`
	Detail   string           `json:"detail,omitempty"`
}

// DailyHours is the authoritative hours figure for one civil date.
type DailyHours struct {
	Date           date.Date
	Hours          float64
	Reason         ReasonCode
	Sessions       int
	BreakDeducted  bool
	Provisional    bool
	SourceRecordID string
	Irregularities []Irregularity
}

// ========================================
// DAILY HOURS DTOs
// ========================================

type DailyHoursRequest struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// maxRangeDays bounds a single query; one leap year of days.
const maxRangeDays = 366

func (r *DailyHoursRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if startOK && endOK {
		if start.After(end) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
		} else if int(end.Sub(start).Hours()/24)+1 > maxRangeDays {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrDateRangeTooLong.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range converts a validated request into a DateRange.
func (r *DailyHoursRequest) Range() DateRange {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return DateRange{Start: date.Date{Time: start}, End: date.Date{Time: end}}
}

type IrregularityResponse struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type DailyHoursEntry struct {
	Date           string                 `json:"date"`
	Hours          float64                `json:"hours"`
	Reason         string                 `json:"reason"`
	Sessions       int                    `json:"sessions"`
	BreakDeducted  bool                   `json:"break_deducted"`
	Provisional    bool                   `json:"provisional"`
	SourceRecordID string                 `json:"source_record_id,omitempty"`
	Irregularities []IrregularityResponse `json:"irregularities,omitempty"`
}

type DailyHoursResponse struct {
	EmployeeID        string            `json:"employee_id"`
	StartDate         string            `json:"start_date"`
	EndDate           string            `json:"end_date"`
	TotalHours        float64           `json:"total_hours"`
	IrregularityCount int               `json:"irregularity_count"`
	Days              []DailyHoursEntry `json:"days"`
}
