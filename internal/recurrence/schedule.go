package recurrence

import (
	"time"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

// State is the enablement state of a schedule.
type State string

const (
	StateDraft  State = "draft"
	StateActive State = "active"
)

// StateOf maps the enabled flag to its state.
func StateOf(s *models.AutoIssuanceSchedule) State {
	if s.Enabled {
		return StateActive
	}
	return StateDraft
}

// Activate moves a schedule to the active state. Activating an active schedule is a no-op.
func Activate(s *models.AutoIssuanceSchedule) State {
	s.Enabled = true
	return StateActive
}

// Deactivate moves a schedule back to draft.
func Deactivate(s *models.AutoIssuanceSchedule) State {
	s.Enabled = false
	return StateDraft
}

// Expired reports whether now is past the schedule's end date.
func Expired(s *models.AutoIssuanceSchedule, now time.Time) bool {
	return s.EndDate != nil && now.After(*s.EndDate)
}

// Due reports whether the schedule should issue a document at now.
func Due(s *models.AutoIssuanceSchedule, now time.Time) bool {
	if !s.Enabled || Expired(s, now) {
		return false
	}
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	return !s.NextIssuanceDate.After(now)
}

// Advance moves NextIssuanceDate one interval forward. Draft schedules and schedules
// whose end date has passed are left untouched and ErrNotEligible is returned. When the
// new date falls after the end date the schedule is deactivated.
func Advance(s *models.AutoIssuanceSchedule, now time.Time) (time.Time, error) {
	if !s.Enabled || Expired(s, now) {
		return s.NextIssuanceDate, ErrNotEligible
	}
	next, err := NextIssuance(s.NextIssuanceDate, s.IntervalType, s.IntervalValue)
	if err != nil {
		return s.NextIssuanceDate, err
	}
	s.NextIssuanceDate = next
	if s.EndDate != nil && next.After(*s.EndDate) {
		Deactivate(s)
	}
	return next, nil
}
