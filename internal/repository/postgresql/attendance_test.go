package postgresql

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRepresentation(t *testing.T) {
	in := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	legacy := attendance.LegacyFields{PrimaryIn: &in}

	t.Run("null punches fall back to legacy columns", func(t *testing.T) {
		for _, raw := range [][]byte{nil, []byte("null"), []byte("[]")} {
			rep, err := decodeRepresentation(raw, legacy)
			require.NoError(t, err)
			assert.Equal(t, attendance.RepresentationLegacy, rep.Kind())
		}
	})

	t.Run("punch array wins", func(t *testing.T) {
		raw := []byte(`[
			{"kind":"in","timestamp":"2025-03-03T08:00:00Z","location":"HQ"},
			{"kind":"out","timestamp":"2025-03-03T12:00:00Z"}
		]`)
		rep, err := decodeRepresentation(raw, legacy)
		require.NoError(t, err)

		list, ok := rep.(attendance.PunchList)
		require.True(t, ok)
		require.Len(t, list.Punches, 2)
		assert.Equal(t, attendance.PunchIn, list.Punches[0].Kind)
		assert.True(t, in.Equal(*list.Punches[0].Timestamp))
		assert.Equal(t, "HQ", *list.Punches[0].Location)
	})

	t.Run("unparseable timestamp only voids that punch", func(t *testing.T) {
		raw := []byte(`[{"kind":"in","timestamp":"08:00"},{"kind":"out","timestamp":"2025-03-03T12:00:00Z"}]`)
		rep, err := decodeRepresentation(raw, legacy)
		require.NoError(t, err)

		list := rep.(attendance.PunchList)
		assert.Nil(t, list.Punches[0].Timestamp)
		assert.NotNil(t, list.Punches[1].Timestamp)
	})

	t.Run("malformed column is an error", func(t *testing.T) {
		_, err := decodeRepresentation([]byte(`{"kind":`), legacy)
		assert.Error(t, err)
	})
}

func TestAttendanceRowToDomain(t *testing.T) {
	workDate := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	adjID, status, applied := "adj-1", "approved", true
	row := attendanceRow{
		ID:           "rec-1",
		EmployeeID:   "emp-1",
		CompanyID:    "tenant-1",
		WorkDate:     workDate,
		AdjustmentID: &adjID,
		AdjStatus:    &status,
		AdjApplied:   &applied,
	}

	record := row.toDomain()

	assert.False(t, record.PunchesUnreadable)
	assert.Equal(t, "tenant-1", record.TenantID)
	assert.Equal(t, "2025-03-03", attendance.DayKey(record.Date))
	require.NotNil(t, record.Adjustment)
	assert.True(t, record.Adjustment.Applied())
	assert.Equal(t, attendance.AdjustmentApproved, record.Adjustment.Status)
	assert.Equal(t, attendance.RepresentationLegacy, record.Representation.Kind())
}

func TestAttendanceRowToDomain_UnreadablePunches(t *testing.T) {
	in := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 3, 16, 0, 0, 0, time.UTC)
	row := attendanceRow{
		ID:         "rec-1",
		EmployeeID: "emp-1",
		CompanyID:  "tenant-1",
		WorkDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Punches:    []byte(`{"kind":`),
		ClockIn:    &in,
		ClockOut:   &out,
	}

	record := row.toDomain()

	assert.True(t, record.PunchesUnreadable)
	legacy, ok := record.Representation.(attendance.LegacyFields)
	require.True(t, ok)
	assert.True(t, in.Equal(*legacy.PrimaryIn))
	assert.True(t, out.Equal(*legacy.PrimaryOut))
}
