package domain

import (
	"time"

	"github.com/m04kA/HPS-BookingService/pkg/types"
)

// ScheduleTemplate represents a recurring weekly availability rule for a
// health post and service: on each listed weekday within the validity
// window the template offers one bookable time with a fixed capacity.
type ScheduleTemplate struct {
	ID           string
	Name         string
	HealthPostID string
	ServiceID    string
	CityID       string
	DaysOfWeek   WeekdaySet
	TimeSlot     types.TimeString // Truncated to minute granularity at creation
	SlotsPerTime int              // Capacity per occurrence, >= 0
	StartDate    time.Time
	EndDate      *time.Time // nil = open-ended
	IsActive     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActiveOn returns true if the template produces a slot on the given date:
// the soft-disable flag is on, the date falls inside the inclusive validity
// window (open-ended when EndDate is nil) and its weekday is in DaysOfWeek.
func (t *ScheduleTemplate) IsActiveOn(date time.Time) bool {
	if !t.IsActive {
		return false
	}

	day := DateOnly(date)
	if day.Before(DateOnly(t.StartDate)) {
		return false
	}
	if t.EndDate != nil && day.After(DateOnly(*t.EndDate)) {
		return false
	}

	return t.DaysOfWeek.ContainsDate(day)
}

// DateOnly strips the clock component, keeping year/month/day in the
// date's location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
