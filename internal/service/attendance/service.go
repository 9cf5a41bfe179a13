package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/auditexport"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	schedule.PolicyRepository
	reconciler *Reconciler
	location   *time.Location
	now        func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policyRepo schedule.PolicyRepository,
	reconciler *Reconciler,
	location *time.Location,
) attendance.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		PolicyRepository:     policyRepo,
		reconciler:           reconciler,
		location:             location,
		now:                  time.Now,
	}
}

// GetDailyHours implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyHours(ctx context.Context, req attendance.DailyHoursRequest) (attendance.DailyHoursResponse, error) {
	days, err := s.reconcileRequest(ctx, req, Options{Live: true, Now: s.now(), Location: s.location})
	if err != nil {
		return attendance.DailyHoursResponse{}, err
	}

	resp := attendance.DailyHoursResponse{
		EmployeeID: req.EmployeeID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       make([]attendance.DailyHoursEntry, 0, len(days)),
	}
	for _, day := range days {
		resp.TotalHours += day.Hours
		resp.IrregularityCount += len(day.Irregularities)
		resp.Days = append(resp.Days, mapToDailyHoursEntry(day))
	}
	return resp, nil
}

// ExportAudit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportAudit(ctx context.Context, req attendance.DailyHoursRequest) ([]byte, error) {
	days, err := s.reconcileRequest(ctx, req, Options{})
	if err != nil {
		return nil, err
	}

	workbook, err := auditexport.Render(req.EmployeeID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to render audit export: %w", err)
	}
	return workbook, nil
}

func (s *AttendanceServiceImpl) reconcileRequest(ctx context.Context, req attendance.DailyHoursRequest, opts Options) ([]attendance.DailyHours, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dateRange := req.Range()

	var (
		policy  schedule.WorkingCalendarPolicy
		records []attendance.DailyAttendanceRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := LoadPolicy(gCtx, s.PolicyRepository, companyID)
		if err != nil {
			return err
		}
		policy = p
		return nil
	})

	g.Go(func() error {
		recs, err := s.AttendanceRepository.GetDailyRecords(gCtx, req.EmployeeID, companyID, &dateRange)
		if err != nil {
			return fmt.Errorf("failed to get attendance records: %w", err)
		}
		records = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.reconciler.ReconcileRange(records, dateRange, policy, opts), nil
}

// LoadPolicy returns the tenant's working calendar, falling back to the
// default policy when none is configured. Read failures are reported as
// attendance.ErrStoreUnavailable.
func LoadPolicy(ctx context.Context, repo schedule.PolicyRepository, tenantID string) (schedule.WorkingCalendarPolicy, error) {
	policy, err := repo.GetWorkingCalendarPolicy(ctx, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrPolicyNotFound):
			return schedule.DefaultPolicy(tenantID), nil
		case errors.Is(err, schedule.ErrInvalidWorkingDays):
			return schedule.WorkingCalendarPolicy{}, err
		}
		return schedule.WorkingCalendarPolicy{}, fmt.Errorf("%w: failed to get working calendar policy: %w", attendance.ErrStoreUnavailable, err)
	}
	return policy.WithDefaults(), nil
}

func mapToDailyHoursEntry(day attendance.DailyHours) attendance.DailyHoursEntry {
	entry := attendance.DailyHoursEntry{
		Date:           attendance.DayKey(day.Date),
		Hours:          day.Hours,
		Reason:         string(day.Reason),
		Sessions:       day.Sessions,
		BreakDeducted:  day.BreakDeducted,
		Provisional:    day.Provisional,
		SourceRecordID: day.SourceRecordID,
	}
	for _, irr := range day.Irregularities {
		entry.Irregularities = append(entry.Irregularities, attendance.IrregularityResponse{
			Kind:     string(irr.Kind),
			RecordID: irr.RecordID,
			Detail:   irr.Detail,
		})
	}
	return entry
}
