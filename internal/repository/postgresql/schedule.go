package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) schedule.PolicyRepository {
	return &policyRepository{db: db}
}

// GetWorkingCalendarPolicy implements schedule.PolicyRepository.
func (r *policyRepository) GetWorkingCalendarPolicy(ctx context.Context, companyID string) (schedule.WorkingCalendarPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id, working_hours_per_day, break_duration_minutes,
			   working_days, updated_at
		FROM working_calendar_policies
		WHERE company_id = $1
	`

	var (
		p           schedule.WorkingCalendarPolicy
		workingDays []int16
	)
	err := q.QueryRow(ctx, query, companyID).Scan(
		&p.TenantID, &p.WorkingHoursPerDay, &p.BreakDurationMinutes,
		&workingDays, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkingCalendarPolicy{}, schedule.ErrPolicyNotFound
		}
		return schedule.WorkingCalendarPolicy{}, fmt.Errorf("failed to get working calendar policy: %w", err)
	}

	p.WorkingDays, err = weekdaysFromISO(workingDays)
	if err != nil {
		return schedule.WorkingCalendarPolicy{}, err
	}
	return p, nil
}

// weekdaysFromISO converts stored ISO weekdays (1=Monday..7=Sunday).
func weekdaysFromISO(days []int16) ([]time.Weekday, error) {
	result := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		wd, ok := schedule.ISOWeekday(int(d))
		if !ok {
			return nil, fmt.Errorf("%w: got %d", schedule.ErrInvalidWorkingDays, d)
		}
		result = append(result, wd)
	}
	return result, nil
}
