package schedule

import "context"

// PolicyRepository reads tenant working-calendar configuration.
type PolicyRepository interface {
	// GetWorkingCalendarPolicy returns ErrPolicyNotFound when the tenant has
	// not configured one; callers fall back to DefaultPolicy.
	GetWorkingCalendarPolicy(ctx context.Context, tenantID string) (WorkingCalendarPolicy, error)
}
