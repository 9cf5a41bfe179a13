package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/payslippdf"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	policyRepo     schedule.PolicyRepository
	aggregator     *Aggregator
	cache          payroll.PayslipCache
	rules          payroll.Rules
	logger         *slog.Logger
}

// NewPayrollService wires the payslip pipeline. cache may be nil, in which
// case every request recomputes.
func NewPayrollService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	policyRepo schedule.PolicyRepository,
	aggregator *Aggregator,
	cache payroll.PayslipCache,
	rules payroll.Rules,
	logger *slog.Logger,
) payroll.PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		policyRepo:     policyRepo,
		aggregator:     aggregator,
		cache:          cache,
		rules:          rules,
		logger:         logger,
	}
}

// ========== PAYSLIPS ==========

// GetPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, req payroll.PayslipRequest) (payroll.PayslipResponse, error) {
	slip, cached, err := s.payslip(ctx, req)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return mapToPayslipResponse(slip, cached), nil
}

// RenderPayslipPDF implements payroll.PayrollService.
func (s *PayrollServiceImpl) RenderPayslipPDF(ctx context.Context, req payroll.PayslipRequest) ([]byte, error) {
	slip, _, err := s.payslip(ctx, req)
	if err != nil {
		return nil, err
	}
	return payslippdf.Render(slip)
}

// InvalidatePayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) InvalidatePayslip(ctx context.Context, req payroll.PayslipRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}

	key := cacheKey(req.Period(companyID))
	if err := s.cache.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate cached payslip: %w", err)
	}
	s.logger.Info("Payslip cache invalidated", "employee_id", key.EmployeeID, "period", key.PeriodKey)
	return nil
}

func cacheKey(period payroll.PayPeriod) payroll.CacheKey {
	return payroll.CacheKey{TenantID: period.TenantID, EmployeeID: period.EmployeeID, PeriodKey: period.Key()}
}

// payslip serves from the cache unless a refresh is forced. Cache failures
// only cost a recomputation.
func (s *PayrollServiceImpl) payslip(ctx context.Context, req payroll.PayslipRequest) (payroll.PaySlip, bool, error) {
	if err := req.Validate(); err != nil {
		return payroll.PaySlip{}, false, err
	}
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payroll.PaySlip{}, false, err
	}

	period := req.Period(companyID)
	key := cacheKey(period)

	if s.cache != nil && !req.ForceRefresh {
		slip, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Payslip cache read failed", "employee_id", key.EmployeeID, "period", key.PeriodKey, "error", err)
		} else if ok {
			return slip, true, nil
		}
	}

	slip, err := s.Compute(ctx, period)
	if err != nil {
		return payroll.PaySlip{}, false, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, slip); err != nil {
			s.logger.Warn("Payslip cache write failed", "employee_id", key.EmployeeID, "period", key.PeriodKey, "error", err)
		}
	}
	return slip, false, nil
}

// Compute derives the payslip for period from the stores, bypassing the
// cache. Attendance is always reconciled in finalized mode.
func (s *PayrollServiceImpl) Compute(ctx context.Context, period payroll.PayPeriod) (payroll.PaySlip, error) {
	var (
		emp     employee.Employee
		policy  schedule.WorkingCalendarPolicy
		records []attendance.DailyAttendanceRecord
	)
	dateRange := period.Range()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e, err := s.employeeRepo.GetByID(gCtx, period.EmployeeID, period.TenantID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return err
			}
			return fmt.Errorf("%w: failed to get employee: %w", payroll.ErrAttendanceUnavailable, err)
		}
		emp = e
		return nil
	})

	g.Go(func() error {
		p, err := attendanceService.LoadPolicy(gCtx, s.policyRepo, period.TenantID)
		if err != nil {
			if errors.Is(err, schedule.ErrInvalidWorkingDays) {
				return err
			}
			return fmt.Errorf("%w: %w", payroll.ErrAttendanceUnavailable, err)
		}
		policy = p
		return nil
	})

	g.Go(func() error {
		recs, err := s.attendanceRepo.GetDailyRecords(gCtx, period.EmployeeID, period.TenantID, &dateRange)
		if err != nil {
			return fmt.Errorf("%w: failed to get attendance records: %w", payroll.ErrAttendanceUnavailable, err)
		}
		records = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return payroll.PaySlip{}, err
	}

	if !emp.HasSalary() {
		return payroll.PaySlip{}, payroll.ErrSalaryNotConfigured
	}

	hours := s.aggregator.Aggregate(records, period, policy, attendanceService.Options{})

	input := PayInput{
		BasicSalary:   *emp.BaseSalary,
		ExpectedHours: hours.ExpectedHours,
	}
	if hours.HasData {
		actual := hours.ActualHoursWorked
		input.ActualHoursWorked = &actual
		if line, ok := ShortfallDeduction(input.BasicSalary, hours.ExpectedHours, actual); ok {
			input.OtherDeductions = append(input.OtherDeductions, line)
		}
	}

	slip, err := ComputePay(input, s.rules)
	if err != nil {
		return payroll.PaySlip{}, err
	}

	slip.EmployeeID = emp.ID
	slip.EmployeeCode = emp.EmployeeCode
	slip.EmployeeName = emp.FullName
	slip.TenantID = period.TenantID
	slip.PeriodStart = period.PeriodStart
	slip.PeriodEnd = period.PeriodEnd
	slip.WorkingDays = hours.WorkingDays
	slip.IrregularityCount = hours.IrregularityCount

	s.logger.Info("Payslip computed",
		"employee_id", emp.ID,
		"period", period.Key(),
		"full_salary_mode", slip.FullSalaryMode,
		"irregularities", slip.IrregularityCount,
	)
	return slip, nil
}

func mapToPayslipResponse(slip payroll.PaySlip, cached bool) payroll.PayslipResponse {
	deductions := make([]payroll.DeductionResponse, 0, len(slip.OtherDeductions))
	for _, d := range slip.OtherDeductions {
		deductions = append(deductions, payroll.DeductionResponse{
			Name:          d.Name,
			Amount:        payroll.NewMoney(d.Amount),
			Informational: d.Informational,
		})
	}
	return payroll.PayslipResponse{
		EmployeeID:        slip.EmployeeID,
		EmployeeCode:      slip.EmployeeCode,
		EmployeeName:      slip.EmployeeName,
		PeriodStart:       attendance.DayKey(slip.PeriodStart),
		PeriodEnd:         attendance.DayKey(slip.PeriodEnd),
		WorkingDays:       slip.WorkingDays,
		FullSalaryMode:    slip.FullSalaryMode,
		BasicSalary:       payroll.NewMoney(slip.BasicSalary),
		ExpectedHours:     slip.ExpectedHours,
		ActualHoursWorked: slip.ActualHoursWorked,
		HourlyRate:        payroll.NewMoney(slip.HourlyRate),
		GrossPay:          payroll.NewMoney(slip.GrossPay),
		SSNITEmployee:     payroll.NewMoney(slip.SSNITEmployee),
		PAYE:              payroll.NewMoney(slip.PAYE),
		OtherDeductions:   deductions,
		TotalDeductions:   payroll.NewMoney(slip.TotalDeductions),
		NetPay:            payroll.NewMoney(slip.NetPay),
		SSNITEmployer:     payroll.NewMoney(slip.SSNITEmployer),
		SSNITTier1:        payroll.NewMoney(slip.SSNITTier1),
		SSNITTier2:        payroll.NewMoney(slip.SSNITTier2),
		IrregularityCount: slip.IrregularityCount,
		Cached:            cached,
	}
}
