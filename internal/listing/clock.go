package listing

import (
	"time"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// Reference is the per-request pivot date all relative filters and the
// ranking are computed against.
type Reference struct {
	Today    time.Time
	Tomorrow time.Time
}

// TodayString returns the reference date as YYYY-MM-DD.
func (r Reference) TodayString() string { return r.Today.Format(models.DateLayout) }

// TomorrowString returns the day after the reference date as YYYY-MM-DD.
func (r Reference) TomorrowString() string { return r.Tomorrow.Format(models.DateLayout) }

// WeekStart returns the first day (Sunday) of the reference date's week.
func (r Reference) WeekStart() time.Time {
	return r.Today.AddDate(0, 0, -int(r.Today.Weekday()))
}

// Clock derives the reference date from wall-clock time in a fixed UTC offset.
type Clock struct {
	offset time.Duration
	now    func() time.Time
}

// NewClock builds a clock for the given UTC offset. A nil now uses time.Now.
func NewClock(offset time.Duration, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{offset: offset, now: now}
}

// Reference computes today's reference date. It is never cached.
func (c *Clock) Reference() Reference {
	local := c.now().UTC().Add(c.offset)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return Reference{Today: today, Tomorrow: today.AddDate(0, 0, 1)}
}

// ReferenceOn pins the reference to a calendar date; used by tests and tools.
func ReferenceOn(date time.Time) Reference {
	today := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return Reference{Today: today, Tomorrow: today.AddDate(0, 0, 1)}
}
