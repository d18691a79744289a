package service

import (
	"time"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
)

// daysSinceMonday maps a weekday onto a Monday-based index (Monday 0 ... Sunday 6).
func daysSinceMonday(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}

// WeekAnchor returns midnight of the most recent Monday on or before now, in now's location.
// On weekends this is the Monday of the week that is ending, not the next one.
func WeekAnchor(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-daysSinceMonday(now.Weekday()), 0, 0, 0, 0, now.Location())
}

// NormalizeWeek re-projects every entry onto the week anchored at WeekAnchor(now).
//
// Each entry keeps its weekday and its start/end clock times; its calendar date is
// discarded. The end is pinned to the same day as the new start, so an entry whose
// end falls after midnight comes back with End before Start. Sub-second precision is
// dropped. Entries are read in now's location.
func NormalizeWeek(entries []dto.CalendarEntry, now time.Time) []dto.CalendarEntry {
	loc := now.Location()
	anchor := WeekAnchor(now)

	normalized := make([]dto.CalendarEntry, len(entries))
	for i, entry := range entries {
		start := entry.Start.In(loc)
		end := entry.End.In(loc)

		y, m, d := anchor.AddDate(0, 0, daysSinceMonday(start.Weekday())).Date()
		normalized[i] = dto.CalendarEntry{
			Title: entry.Title,
			Start: time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), 0, loc),
			End:   time.Date(y, m, d, end.Hour(), end.Minute(), end.Second(), 0, loc),
		}
	}
	return normalized
}
