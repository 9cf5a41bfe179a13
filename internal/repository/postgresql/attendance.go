package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// attendanceRow mirrors one row of the daily-records query before it is
// turned into the domain's tagged representation.
type attendanceRow struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	WorkDate     time.Time
	Punches      []byte
	ClockIn      *time.Time
	ClockOut     *time.Time
	ClockIn2     *time.Time
	ClockOut2    *time.Time
	AdjustmentID *string
	AdjIn        *time.Time
	AdjOut       *time.Time
	AdjIn2       *time.Time
	AdjOut2      *time.Time
	AdjReason    *string
	AdjStatus    *string
	AdjApplied   *bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetDailyRecords implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetDailyRecords(ctx context.Context, employeeID string, companyID string, dateRange *attendance.DateRange) ([]attendance.DailyAttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT a.id, a.employee_id, a.company_id, a.work_date, a.punches,
			   a.clock_in, a.clock_out, a.clock_in_2, a.clock_out_2,
			   adj.id, adj.requested_clock_in, adj.requested_clock_out,
			   adj.requested_clock_in_2, adj.requested_clock_out_2,
			   adj.reason, adj.status, adj.applied_to_record,
			   a.created_at, a.updated_at
		FROM attendance_records a
		LEFT JOIN LATERAL (
			SELECT id, requested_clock_in, requested_clock_out,
				   requested_clock_in_2, requested_clock_out_2,
				   reason, status, applied_to_record
			FROM attendance_adjustments
			WHERE attendance_record_id = a.id
			ORDER BY applied_to_record DESC, created_at DESC
			LIMIT 1
		) adj ON TRUE
		WHERE a.employee_id = $1
		  AND a.company_id = $2
	`
	args := []interface{}{employeeID, companyID}
	if dateRange != nil {
		query += ` AND a.work_date BETWEEN $3 AND $4`
		args = append(args, dateRange.Start.Time, dateRange.End.Time)
	}
	query += ` ORDER BY a.work_date ASC, a.created_at ASC, a.id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query attendance records: %w", attendance.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []attendance.DailyAttendanceRecord
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.CompanyID, &r.WorkDate, &r.Punches,
			&r.ClockIn, &r.ClockOut, &r.ClockIn2, &r.ClockOut2,
			&r.AdjustmentID, &r.AdjIn, &r.AdjOut, &r.AdjIn2, &r.AdjOut2,
			&r.AdjReason, &r.AdjStatus, &r.AdjApplied,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan attendance record: %w", attendance.ErrStoreUnavailable, err)
		}

		records = append(records, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate attendance records: %w", attendance.ErrStoreUnavailable, err)
	}

	return records, nil
}

func (r attendanceRow) toDomain() attendance.DailyAttendanceRecord {
	record := attendance.DailyAttendanceRecord{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		TenantID:   r.CompanyID,
		Date:       attendance.CivilDate(r.WorkDate, nil),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.AdjustmentID != nil {
		adj := &attendance.Adjustment{
			RequestedIn:   r.AdjIn,
			RequestedOut:  r.AdjOut,
			RequestedIn2:  r.AdjIn2,
			RequestedOut2: r.AdjOut2,
		}
		if r.AdjReason != nil {
			adj.Reason = *r.AdjReason
		}
		if r.AdjStatus != nil {
			adj.Status = attendance.AdjustmentStatus(*r.AdjStatus)
		}
		if r.AdjApplied != nil {
			adj.AppliedToRecord = *r.AdjApplied
		}
		record.Adjustment = adj
	}

	legacy := attendance.LegacyFields{
		PrimaryIn:    r.ClockIn,
		PrimaryOut:   r.ClockOut,
		SecondaryIn:  r.ClockIn2,
		SecondaryOut: r.ClockOut2,
	}
	representation, err := decodeRepresentation(r.Punches, legacy)
	if err != nil {
		slog.Warn("Unreadable punches column, falling back to clock columns", "attendance_id", r.ID, "error", err)
		record.Representation = legacy
		record.PunchesUnreadable = true
		return record
	}
	record.Representation = representation
	return record
}

// storedPunch is the jsonb shape of one punch. Timestamps are decoded one by
// one so a single unreadable value only voids its own session.
type storedPunch struct {
	Kind      string  `json:"kind"`
	Timestamp *string `json:"timestamp"`
	Location  *string `json:"location,omitempty"`
	PhotoRef  *string `json:"photo_ref,omitempty"`
}

// decodeRepresentation prefers a non-empty punches array and falls back to
// the legacy clock columns.
func decodeRepresentation(punches []byte, legacy attendance.LegacyFields) (attendance.Representation, error) {
	if len(punches) == 0 || string(punches) == "null" {
		return legacy, nil
	}

	var stored []storedPunch
	if err := json.Unmarshal(punches, &stored); err != nil {
		return nil, fmt.Errorf("invalid punches column: %w", err)
	}
	if len(stored) == 0 {
		return legacy, nil
	}

	list := make([]attendance.Punch, 0, len(stored))
	for _, sp := range stored {
		p := attendance.Punch{
			Kind:     attendance.PunchKind(sp.Kind),
			Location: sp.Location,
			PhotoRef: sp.PhotoRef,
		}
		if sp.Timestamp != nil {
			if ts, err := time.Parse(time.RFC3339Nano, *sp.Timestamp); err == nil {
				p.Timestamp = &ts
			}
		}
		list = append(list, p)
	}
	return attendance.PunchList{Punches: list}, nil
}
