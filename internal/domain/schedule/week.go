// Package schedule maps the rolling seven-day booking calendar onto
// concrete dates.
package schedule

import (
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/pkg/clock"
)

type WeekResolver struct {
	clock clock.Clock
}

func NewWeekResolver(c clock.Clock) *WeekResolver {
	return &WeekResolver{clock: c}
}

// CurrentWeekStart returns the Monday of the current week at midnight.
func (r *WeekResolver) CurrentWeekStart() time.Time {
	return weekStart(r.clock.Now())
}

// ResolveDate maps a weekday to its concrete date in the current week,
// rolling forward one week when that date has already passed.
func (r *WeekResolver) ResolveDate(day booking.Weekday) time.Time {
	now := r.clock.Now()
	today := truncateToDay(now)

	date := weekStart(now).AddDate(0, 0, day.Index())
	if date.Before(today) {
		date = date.AddDate(0, 0, 7)
	}
	return date
}

func weekStart(t time.Time) time.Time {
	day := truncateToDay(t)
	// time.Weekday counts Sunday as 0; the schedule is Monday-anchored.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
