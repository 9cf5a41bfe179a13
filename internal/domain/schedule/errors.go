package schedule

import "errors"

var (
	ErrPolicyNotFound     = errors.New("working calendar policy not found")
	ErrInvalidWorkingDays = errors.New("working days must be ISO weekdays between 1 and 7")
)
