package models

import "time"

// IntervalType is the recurrence unit of an auto-issuance schedule.
type IntervalType string

const (
	IntervalDaily   IntervalType = "daily"
	IntervalWeekly  IntervalType = "weekly"
	IntervalMonthly IntervalType = "monthly"
	IntervalYearly  IntervalType = "yearly"
)

// Valid reports whether t is a known interval type.
func (t IntervalType) Valid() bool {
	switch t {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// AutoIssuanceSchedule issues a copy of a template invoice to a client at a fixed interval.
// Enabled=false is the draft state; only enabled schedules advance.
type AutoIssuanceSchedule struct {
	Model

	MerchantID       string       `gorm:"size:64;index;not null" json:"merchantId"`
	ScheduleName     string       `gorm:"size:255;not null" json:"scheduleName"`
	ClientID         string       `gorm:"size:64;index;not null" json:"clientId"`
	IntervalType     IntervalType `gorm:"size:10;not null" json:"intervalType"`
	IntervalValue    int          `gorm:"not null;check:interval_value >= 1" json:"intervalValue"`
	NextIssuanceDate time.Time    `gorm:"not null" json:"nextIssuanceDate"`
	StartDate        *time.Time   `json:"startDate,omitempty"`
	EndDate          *time.Time   `json:"endDate,omitempty"`
	TemplateID       string       `gorm:"size:64;not null" json:"templateId"`
	Enabled          bool         `gorm:"not null;default:false" json:"enabled"`
	LastIssuedAt     *time.Time   `json:"lastIssuedAt,omitempty"`
}

func (s *AutoIssuanceSchedule) IDPrefix() string { return "ais" }
func (s *AutoIssuanceSchedule) ScopeID() string  { return s.MerchantID }
