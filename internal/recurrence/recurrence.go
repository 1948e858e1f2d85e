// Package recurrence computes issuance dates for auto-issuance schedules and drives
// their enabled/disabled state machine.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

var (
	ErrInvalidInterval = errors.New("invalid interval type")
	ErrInvalidValue    = errors.New("interval value must be at least 1")
	ErrNotEligible     = errors.New("schedule is not eligible for advancement")
)

// NextIssuance returns the issuance date following current.
// Monthly and yearly steps clamp the day to the last valid day of the target month,
// so Jan 31 + 1 month is Feb 28 (or 29) and Feb 29 + 1 year is Feb 28.
func NextIssuance(current time.Time, interval models.IntervalType, value int) (time.Time, error) {
	if value < 1 {
		return time.Time{}, ErrInvalidValue
	}
	switch interval {
	case models.IntervalDaily:
		return current.AddDate(0, 0, value), nil
	case models.IntervalWeekly:
		return current.AddDate(0, 0, 7*value), nil
	case models.IntervalMonthly:
		return addMonthsClamped(current, value), nil
	case models.IntervalYearly:
		return addMonthsClamped(current, 12*value), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// day 1 never overflows, so AddDate lands in the target month
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
